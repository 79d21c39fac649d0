package report

import (
	"slices"

	"github.com/ppiankov/ambiguia/internal/lexicon"
)

// Example is a canned sentence showing one spelling in context
type Example struct {
	Word     string `json:"word"`
	Sentence string `json:"sentence"`
	Sense    string `json:"sense"`
}

// exampleGroups is a static lookup table keyed by group; the sentences are
// fixed text, never generated
var exampleGroups = map[string][]Example{
	"to": {
		{Word: "to", Sentence: "I want to go to the store.", Sense: "direction or infinitive"},
		{Word: "too", Sentence: "I want to go too.", Sense: "also, or excessively"},
		{Word: "two", Sentence: "I want two apples.", Sense: "the number 2"},
	},
	"there": {
		{Word: "there", Sentence: "The keys are over there.", Sense: "a place"},
		{Word: "their", Sentence: "Their house is over there.", Sense: "belonging to them"},
		{Word: "they're", Sentence: "They're coming over later.", Sense: "contraction of they are"},
	},
	"pair": {
		{Word: "pair", Sentence: "I bought a pair of shoes.", Sense: "a set of two"},
		{Word: "pairs", Sentence: "She packed three pairs of socks.", Sense: "several sets of two"},
		{Word: "pear", Sentence: "He ate a ripe pear.", Sense: "the fruit"},
		{Word: "pears", Sentence: "There are two pears on the table.", Sense: "more than one of the fruit"},
	},
}

// exampleKeys maps every normalized member to its group key
var exampleKeys = map[string]string{
	"to": "to", "too": "to", "two": "to",
	"there": "there", "their": "there", "theyre": "there",
	"pair": "pair", "pairs": "pair", "pear": "pair", "pears": "pair",
}

// ExamplesFor returns the canned sentences for the group containing word,
// or nil when the word has none
func ExamplesFor(word string) []Example {
	key, ok := exampleKeys[lexicon.Normalize(word)]
	if !ok {
		return nil
	}
	return slices.Clone(exampleGroups[key])
}
