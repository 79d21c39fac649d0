package detect

import (
	"strings"
	"unicode"

	"github.com/ppiankov/ambiguia/internal/model"
)

// Details splits text into tokens and sentences by rule. A token is a word
// with its internal apostrophes and hyphens kept; leading and trailing
// punctuation becomes one token per mark.
func (d *Detector) Details(text string) model.Details {
	details := model.Details{Tokens: []string{}, Sentences: splitSentences(text)}
	for _, field := range tokenize(text) {
		details.Tokens = append(details.Tokens, splitPunct(field)...)
	}
	return details
}

func splitPunct(field string) []string {
	runes := []rune(field)
	start, end := 0, len(runes)
	for start < end && !isWordRune(runes[start]) {
		start++
	}
	for end > start && !isWordRune(runes[end-1]) {
		end--
	}

	out := make([]string, 0, len(runes)-end+start+1)
	for _, r := range runes[:start] {
		out = append(out, string(r))
	}
	if start < end {
		out = append(out, string(runes[start:end]))
	}
	for _, r := range runes[end:] {
		out = append(out, string(r))
	}
	return out
}

// splitSentences cuts after a run of terminal marks that is followed by
// whitespace or the end of text, so "3.5" and "?!" stay intact
func splitSentences(text string) []string {
	sentences := []string{}
	runes := []rune(text)

	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for i, r := range runes {
		b.WriteRune(r)
		if !strings.ContainsRune(terminalMarks, r) {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		flush()
	}
	flush()

	return sentences
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
