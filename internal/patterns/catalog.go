// Package patterns holds the catalog of phrase templates whose meaning flips
// when a comma is missing, such as "let's eat grandma".
package patterns

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antzucaro/matchr"
)

// Template is a phrase shape whose object can be read either as the thing
// acted on or as the person addressed
type Template struct {
	Name        string         // Stable identifier, e.g. "lets_eat"
	Pattern     *regexp.Regexp // Case-insensitive, capture group 1 is the object word
	Explanation string         // Fixed text shown for generic hits
}

// Match describes the template hit reported for a transcript
type Match struct {
	Template Template
	Phrase   string // Matched text, original case
	Object   string // Object word, original case
	Classic  bool   // Object is a classic trigger
	Trigger  string // Canonical trigger the object matched
}

// Catalog is an ordered, read-only set of templates plus the classic triggers
type Catalog struct {
	templates []Template
	triggers  []string
}

const genericExplanation = "ambiguous phrase, missing comma may drastically change meaning"

// DefaultTemplates returns the built-in templates in evaluation order
func DefaultTemplates() []Template {
	return []Template{
		{
			Name:        "lets_eat",
			Pattern:     regexp.MustCompile(`(?i)\blet['’]?s eat ([\p{L}\p{N}_]+)`),
			Explanation: genericExplanation,
		},
		{
			Name:        "come_and_eat",
			Pattern:     regexp.MustCompile(`(?i)\bcome and eat ([\p{L}\p{N}_]+)`),
			Explanation: genericExplanation,
		},
		{
			Name:        "time_to_eat",
			Pattern:     regexp.MustCompile(`(?i)\btime to eat ([\p{L}\p{N}_]+)`),
			Explanation: genericExplanation,
		},
	}
}

// New builds a catalog. Empty or blank triggers are ignored.
func New(templates []Template, triggers []string) *Catalog {
	c := &Catalog{templates: append([]Template(nil), templates...)}
	for _, t := range triggers {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			c.triggers = append(c.triggers, t)
		}
	}
	return c
}

// Default returns the built-in catalog with "grandma" as the classic trigger
func Default() *Catalog {
	return New(DefaultTemplates(), []string{"grandma"})
}

// Templates returns a copy of the templates in evaluation order
func (c *Catalog) Templates() []Template {
	return append([]Template(nil), c.templates...)
}

// Find returns the template hit to report for text. Every occurrence of every
// template is checked so a classic trigger later in the transcript is never
// hidden by an earlier generic hit. Without a classic hit the first hit in
// declaration order is reported.
func (c *Catalog) Find(text string) (Match, bool) {
	var first Match
	found := false
	for _, t := range c.templates {
		for _, loc := range t.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			m := Match{
				Template: t,
				Phrase:   text[loc[0]:loc[1]],
				Object:   text[loc[2]:loc[3]],
			}
			m.Trigger, m.Classic = c.Trigger(m.Object)
			if m.Classic {
				return m, true
			}
			if !found {
				first, found = m, true
			}
		}
	}
	return first, found
}

// Trigger reports whether word is a classic trigger, tolerating a single
// edit for triggers of five or more letters ("gradma" still counts)
func (c *Catalog) Trigger(word string) (string, bool) {
	w := strings.ToLower(word)
	for _, t := range c.triggers {
		if w == t {
			return t, true
		}
		if len(t) >= 5 && matchr.Levenshtein(w, t) <= 1 {
			return t, true
		}
	}
	return "", false
}

// Conflict names the two readings of a classic hit, e.g.
// "eat grandma" = consume grandma vs "eat, grandma" = invitation addressed to grandma
func (m Match) Conflict() string {
	obj := strings.ToLower(m.Object)
	return fmt.Sprintf("%q = consume %s vs %q = invitation addressed to %s",
		"eat "+obj, obj, "eat, "+obj, obj)
}

// Readings spells out the two literal interpretations of the matched phrase
func (m Match) Readings() []string {
	idx := strings.LastIndex(m.Phrase, m.Object)
	if idx < 0 {
		return nil
	}
	head := strings.TrimRight(m.Phrase[:idx], " ")
	return []string{
		fmt.Sprintf("%q: %s is what gets eaten", head+" "+m.Object, m.Object),
		fmt.Sprintf("%q: %s is being invited to eat", head+", "+m.Object, m.Object),
	}
}
