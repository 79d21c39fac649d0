package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	terminalMarks = ".!?"
	internalMarks = ".!?,;"
	legacyMarks   = ".,!?;:"
)

var nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// tokenize splits on whitespace
func tokenize(text string) []string {
	return strings.Fields(text)
}

// alnumLength counts the letters and digits left after stripping everything else
func alnumLength(token string) int {
	return utf8.RuneCountInString(nonAlnum.ReplaceAllString(token, ""))
}

// displayWord lowercases a token and trims surrounding punctuation,
// keeping internal apostrophes ("They're," -> "they're")
func displayWord(token string) string {
	token = strings.ToLower(strings.ReplaceAll(token, "’", "'"))
	return strings.TrimFunc(token, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
