package detect

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// PunctuationResult holds the punctuation issues found in a transcript
type PunctuationResult struct {
	Issues      []model.Finding `json:"issues"`
	HasProblems bool            `json:"has_problems"`
}

// Messages returns the issue messages in order
func (r PunctuationResult) Messages() []string {
	return messages(r.Issues)
}

// ScanPunctuation applies both punctuation rules in fixed order: missing
// terminal mark, then long text without any internal mark
func (d *Detector) ScanPunctuation(text string) PunctuationResult {
	var issues []model.Finding
	trimmed := strings.TrimSpace(text)
	tokens := tokenize(text)

	if trimmed != "" && !strings.ContainsAny(trimmed[len(trimmed)-1:], terminalMarks) {
		issues = append(issues, model.Finding{
			Category: model.CategoryPunctuationMissing,
			Rule:     model.RuleTerminalPunctuation,
			Severity: model.SeverityInfo,
			Span:     tokens[len(tokens)-1],
			Message:  "missing terminal punctuation, sentence boundary is unknown",
		})
	}

	if len(tokens) > d.tokenThreshold && !strings.ContainsAny(text, internalMarks) {
		issues = append(issues, model.Finding{
			Category: model.CategoryPunctuationMissing,
			Rule:     model.RuleNoInternalPunctuation,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("long text with no internal punctuation (%d tokens), clause structure is unknown", len(tokens)),
		})
	}

	return PunctuationResult{
		Issues:      issues,
		HasProblems: len(issues) > 0,
	}
}
