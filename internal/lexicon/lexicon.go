// Package lexicon holds the homophone table the detector consults.
//
// A Lexicon is built once and is read-only afterwards, so a single value can
// be shared by any number of goroutines. Extend returns a new Lexicon rather
// than modifying the receiver.
package lexicon

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

// Normalize lowercases word and strips every non-word character
func Normalize(word string) string {
	return nonWord.ReplaceAllString(strings.ToLower(word), "")
}

// spelling lowercases word, unifies apostrophes and trims surrounding punctuation
func spelling(word string) string {
	word = strings.ToLower(strings.ReplaceAll(word, "’", "'"))
	return strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Lexicon maps a spelling to the other spellings that sound the same
type Lexicon struct {
	entries map[string][]string // spelling -> alternatives, insertion ordered
	index   map[string][]string // normalized key -> spellings
}

// New builds a lexicon from homophone groups. Every member of a group lists
// every other member, so the table is symmetric by construction.
func New(groups ...[]string) *Lexicon {
	l := &Lexicon{
		entries: make(map[string][]string),
		index:   make(map[string][]string),
	}
	for _, g := range groups {
		l.addGroup(g)
	}
	return l
}

// Default returns the built-in English lexicon
func Default() *Lexicon {
	return New(DefaultGroups()...)
}

func (l *Lexicon) addGroup(group []string) {
	members := make([]string, 0, len(group))
	for _, w := range group {
		s := spelling(w)
		if s != "" && !slices.Contains(members, s) {
			members = append(members, s)
		}
	}
	for i, a := range members {
		l.register(a)
		for j, b := range members {
			if i != j && !slices.Contains(l.entries[a], b) {
				l.entries[a] = append(l.entries[a], b)
			}
		}
	}
}

func (l *Lexicon) register(s string) {
	if _, ok := l.entries[s]; ok {
		return
	}
	l.entries[s] = nil
	key := Normalize(s)
	l.index[key] = append(l.index[key], s)
}

// Lookup returns the spellings that share word's pronunciation, or nil when
// word is not a known homophone. The returned slice is a copy.
func (l *Lexicon) Lookup(word string) []string {
	s := spelling(word)
	if alts, ok := l.entries[s]; ok {
		return slices.Clone(alts)
	}

	// Stripped tokens such as "theyre" resolve through the normalized index
	var out []string
	for _, sp := range l.index[Normalize(word)] {
		for _, alt := range l.entries[sp] {
			if alt != s && !slices.Contains(out, alt) {
				out = append(out, alt)
			}
		}
	}
	return out
}

// Contains reports whether word has at least one homophone
func (l *Lexicon) Contains(word string) bool {
	return len(l.Lookup(word)) > 0
}

// Len returns the number of distinct spellings
func (l *Lexicon) Len() int {
	return len(l.entries)
}

// Words returns every spelling in sorted order
func (l *Lexicon) Words() []string {
	words := make([]string, 0, len(l.entries))
	for w := range l.entries {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}

// Extend returns a new lexicon holding the receiver's groups plus groups
func (l *Lexicon) Extend(groups ...[]string) *Lexicon {
	out := New()
	for _, w := range l.Words() {
		out.register(w)
		out.entries[w] = slices.Clone(l.entries[w])
	}
	for _, g := range groups {
		out.addGroup(g)
	}
	return out
}

// SoundKey returns the primary Double Metaphone code for word
func SoundKey(word string) string {
	primary, _ := matchr.DoubleMetaphone(Normalize(word))
	return primary
}

// SoundsLike lists lexicon spellings whose Double Metaphone codes overlap
// with word's. It is a browsing aid for curating groups and is not used by
// the detector.
func (l *Lexicon) SoundsLike(word string) []string {
	p, s := matchr.DoubleMetaphone(Normalize(word))
	if p == "" && s == "" {
		return nil
	}
	var out []string
	for _, w := range l.Words() {
		wp, ws := matchr.DoubleMetaphone(Normalize(w))
		if (p != "" && (p == wp || p == ws)) || (s != "" && (s == wp || s == ws)) {
			out = append(out, w)
		}
	}
	return out
}
