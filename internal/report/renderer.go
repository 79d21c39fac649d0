package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// Renderer writes reports to files and prints summaries
type Renderer struct {
	includeFooter bool
	out           io.Writer
}

// NewRenderer creates a renderer that prints summaries to stderr
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		out:           os.Stderr,
	}
}

// SetOutput redirects RenderSummary
func (r *Renderer) SetOutput(w io.Writer) {
	r.out = w
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderLLMMarkdown writes an already rendered LLM explanation
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderSummary prints the formatted report
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Fprint(r.out, Format(report))
}

// Markdown renders the report as Markdown
func (r *Renderer) Markdown(report *model.Report) string {
	doc := Build(report)

	var b strings.Builder
	b.WriteString("# Transcript Ambiguity Report\n\n")
	if report.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s\n\n", report.Source)
	}
	b.WriteString(blockquote(doc.Transcript))
	b.WriteString("\n")

	if doc.Clean {
		fmt.Fprintf(&b, "✓ %s\n", NoProblemsMarker)
	}

	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.Title, s.Explanation)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "- **%s** %s\n", e.Severity, e.Text)
			for _, ex := range e.Examples {
				fmt.Fprintf(&b, "  - _%s_: %s (%s)\n", ex.Word, ex.Sentence, ex.Sense)
			}
			for i, reading := range e.Extended {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, reading)
			}
		}
		b.WriteString("\n")
	}

	if d := report.Details; d != nil {
		b.WriteString("## Details\n\n")
		fmt.Fprintf(&b, "**Tokens (%d):** %s\n\n", len(d.Tokens), strings.Join(d.Tokens, " | "))
		for i, sentence := range d.Sentences {
			fmt.Fprintf(&b, "%d. %s\n", i+1, sentence)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Findings |\n|---|---|\n")
	for _, c := range doc.Summary.Counts {
		fmt.Fprintf(&b, "| %s | %d |\n", c.Title, c.Count)
	}
	fmt.Fprintf(&b, "| **Total** | **%d** |\n\n", doc.Summary.Total)

	if doc.Summary.Index != nil {
		fmt.Fprintf(&b, "**Clarity index:** %d/100 (%s risk)\n\n", *doc.Summary.Index, doc.Summary.Risk)
	}
	for _, rec := range doc.Summary.Recommendations {
		fmt.Fprintf(&b, "> ⚠️ %s\n\n", rec)
	}

	if report.Score != nil && len(report.Score.Signals) > 0 {
		b.WriteString("### Signals\n\n")
		for _, s := range report.Score.Signals {
			fmt.Fprintf(&b, "- `%s` (%s): %s", s.Category, s.Severity, s.Description)
			if formula, ok := s.Data["formula"]; ok {
				fmt.Fprintf(&b, ", penalty %v, `%v`", s.Data["penalty"], formula)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by ambiguia. Findings are rule-based hints about possible misreadings, not corrections._\n")
	}

	return b.String()
}

// blockquote quotes every line of text so multi-line transcripts stay
// inside the quote
func blockquote(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			b.WriteString(">\n")
			continue
		}
		fmt.Fprintf(&b, "> %s\n", line)
	}
	return b.String()
}
