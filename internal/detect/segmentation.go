package detect

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// SegmentationResult holds the segmentation issues found in a transcript
type SegmentationResult struct {
	Issues      []model.Finding `json:"issues"`
	HasProblems bool            `json:"has_problems"`
}

// Messages returns the issue messages in order
func (r SegmentationResult) Messages() []string {
	return messages(r.Issues)
}

// ScanSegmentation checks the phrase templates and then, independently, the
// token lengths. At most one template finding is produced.
func (d *Detector) ScanSegmentation(text string) SegmentationResult {
	var issues []model.Finding

	if m, ok := d.catalog.Find(text); ok {
		if m.Classic {
			issues = append(issues, model.Finding{
				Category: model.CategorySegmentation,
				Rule:     model.RuleClassicCase,
				Severity: model.SeverityCritical,
				Span:     m.Phrase,
				Message:  "classic case, missing comma inverts the meaning: " + m.Conflict(),
				Readings: m.Readings(),
			})
		} else {
			issues = append(issues, model.Finding{
				Category: model.CategorySegmentation,
				Rule:     model.RuleAmbiguousPhrase,
				Severity: model.SeverityWarning,
				Span:     m.Phrase,
				Message:  fmt.Sprintf("%s (%q)", m.Template.Explanation, m.Phrase),
				Readings: m.Readings(),
			})
		}
	}

	if long := d.longTokens(text); len(long) > 0 {
		issues = append(issues, model.Finding{
			Category: model.CategorySegmentation,
			Rule:     model.RuleLongWord,
			Severity: model.SeverityWarning,
			Span:     strings.Join(long, ", "),
			Tokens:   long,
			Message:  "suspiciously long word, possible incorrect word-boundary merge: " + strings.Join(long, ", "),
		})
	}

	return SegmentationResult{
		Issues:      issues,
		HasProblems: len(issues) > 0,
	}
}

// longTokens lists tokens whose alphanumeric length exceeds the limit
func (d *Detector) longTokens(text string) []string {
	var long []string
	for _, token := range tokenize(text) {
		if alnumLength(token) > d.longWordLength {
			long = append(long, token)
		}
	}
	return long
}

func messages(findings []model.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Message
	}
	return out
}
