// Package report turns detector output into human-readable text. Formatting
// is pure: the caller chooses where the text goes.
package report

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// NoProblemsMarker is the single line emitted for a report without findings
const NoProblemsMarker = "No critical problems detected"

const separator = "═══════════════════════════════════════════════════════"

// Section explanations, one per category
var explanations = map[model.Category]string{
	model.CategoryHomophone: "These words sound like other words with different meanings. " +
		"A speech recognizer picks one spelling from sound alone, so downstream NLP may " +
		"receive the wrong word and misread the sentence.",
	model.CategorySegmentation: "Word boundaries or missing commas change how the sentence is " +
		"parsed. A parser sees a single structure where the speaker may have meant another.",
	model.CategoryPunctuationMissing: "Speech carries no written punctuation. Without sentence " +
		"and clause marks, tokenizers and parsers have to guess where ideas begin and end.",
}

var titles = map[model.Category]string{
	model.CategoryHomophone:          "LEXICAL AMBIGUITY (homophones)",
	model.CategorySegmentation:       "SEGMENTATION AMBIGUITY",
	model.CategoryPunctuationMissing: "MISSING PUNCTUATION",
}

// Document is the structured, displayable form of a report
type Document struct {
	Transcript string    `json:"transcript"`
	Clean      bool      `json:"clean"`
	Sections   []Section `json:"sections,omitempty"`
	Summary    Summary   `json:"summary"`
}

// Section groups the entries of one category under a heading
type Section struct {
	Category    model.Category `json:"category"`
	Title       string         `json:"title"`
	Explanation string         `json:"explanation"`
	Entries     []Entry        `json:"entries"`
}

// Entry is one finding rendered for display
type Entry struct {
	Severity model.Severity `json:"severity"`
	Text     string         `json:"text"`
	Examples []Example      `json:"examples,omitempty"`
	Extended []string       `json:"extended,omitempty"` // Spelled-out readings for the classic case
}

// Summary is the final tally
type Summary struct {
	Counts          []Count  `json:"counts"`
	Total           int      `json:"total"`
	Recommendations []string `json:"recommendations,omitempty"`
	Index           *int     `json:"index,omitempty"`
	Risk            string   `json:"risk,omitempty"`
}

// Count is the number of findings in one category
type Count struct {
	Category model.Category `json:"category"`
	Title    string         `json:"title"`
	Count    int            `json:"count"`
}

// Build projects a report into a document
func Build(r *model.Report) Document {
	doc := Document{
		Transcript: r.Transcript,
		Clean:      len(r.Findings) == 0,
	}

	counts := r.Counts()
	for _, c := range model.Categories() {
		doc.Summary.Counts = append(doc.Summary.Counts, Count{Category: c, Title: titles[c], Count: counts[c]})

		findings := r.ByCategory(c)
		if len(findings) == 0 {
			continue
		}
		section := Section{
			Category:    c,
			Title:       titles[c],
			Explanation: explanations[c],
		}
		for _, f := range findings {
			section.Entries = append(section.Entries, buildEntry(f))
		}
		doc.Sections = append(doc.Sections, section)
	}
	doc.Summary.Total = len(r.Findings)

	if r.HasClassicCase() {
		doc.Summary.Recommendations = append(doc.Summary.Recommendations,
			"CRITICAL: restore the missing comma before acting on this transcript; the two readings have opposite meanings")
	}
	if r.Score != nil {
		index := r.Score.Index
		doc.Summary.Index = &index
		doc.Summary.Risk = r.Score.Risk
	}

	return doc
}

func buildEntry(f model.Finding) Entry {
	e := Entry{Severity: f.Severity, Text: f.Message}

	switch f.Category {
	case model.CategoryHomophone:
		e.Text = fmt.Sprintf("%q may also be: %s", f.Span, strings.Join(f.Alternatives, ", "))
		e.Examples = ExamplesFor(f.Span)
	case model.CategorySegmentation:
		if f.Rule == model.RuleClassicCase {
			e.Extended = append([]string(nil), f.Readings...)
		}
	}

	return e
}

// Format renders a report as a text block. It never fails; a report
// without findings yields the no-problems marker line only.
func Format(r *model.Report) string {
	return FormatDocument(Build(r))
}

// FormatDocument renders an already built document
func FormatDocument(doc Document) string {
	if doc.Clean {
		return "✓ " + NoProblemsMarker + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", separator)
	fmt.Fprintf(&b, "TRANSCRIPT: %q\n", doc.Transcript)
	fmt.Fprintf(&b, "%s\n", separator)

	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Title)
		fmt.Fprintf(&b, "%s\n", strings.Repeat("-", len([]rune(s.Title))))
		fmt.Fprintf(&b, "%s\n\n", s.Explanation)

		for _, e := range s.Entries {
			fmt.Fprintf(&b, "  • [%s] %s\n", e.Severity, e.Text)
			if len(e.Examples) > 0 {
				b.WriteString("      Examples:\n")
				for _, ex := range e.Examples {
					fmt.Fprintf(&b, "        - %s: %q (%s)\n", ex.Word, ex.Sentence, ex.Sense)
				}
			}
			if len(e.Extended) > 0 {
				b.WriteString("      Two readings:\n")
				for i, reading := range e.Extended {
					fmt.Fprintf(&b, "        %d. %s\n", i+1, reading)
				}
			}
		}
	}

	fmt.Fprintf(&b, "\n%s\n", separator)
	b.WriteString("SUMMARY\n")
	for _, c := range doc.Summary.Counts {
		fmt.Fprintf(&b, "  %-32s %d\n", c.Title+":", c.Count)
	}
	fmt.Fprintf(&b, "  %-32s %d\n", "Total:", doc.Summary.Total)
	if doc.Summary.Index != nil {
		fmt.Fprintf(&b, "  %-32s %d/100 (%s risk)\n", "Clarity index:", *doc.Summary.Index, doc.Summary.Risk)
	}
	for _, rec := range doc.Summary.Recommendations {
		fmt.Fprintf(&b, "  ⚠️  %s\n", rec)
	}
	fmt.Fprintf(&b, "%s\n", separator)

	return b.String()
}
