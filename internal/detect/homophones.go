package detect

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/ppiankov/ambiguia/internal/model"
)

// FindHomophones returns one finding per distinct homophone in text, in order
// of first appearance
func (d *Detector) FindHomophones(text string) []model.Finding {
	var findings []model.Finding
	seen := make(map[string]bool)

	for _, token := range tokenize(text) {
		key := lexicon.Normalize(token)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		word := displayWord(token)
		alts := d.lexicon.Lookup(word)
		if len(alts) == 0 {
			continue
		}

		findings = append(findings, model.Finding{
			Category:     model.CategoryHomophone,
			Rule:         model.RuleHomophone,
			Severity:     model.SeverityWarning,
			Span:         word,
			Message:      fmt.Sprintf("%q sounds like %s", word, strings.Join(alts, ", ")),
			Alternatives: alts,
		})
	}

	return findings
}
