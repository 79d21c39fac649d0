package model

// Report represents the complete analysis of a single transcript
type Report struct {
	Transcript string      `json:"transcript"`       // The analyzed text, unmodified
	Source     string      `json:"source,omitempty"` // Where the transcript came from (file, URL, stdin)
	Findings   []Finding   `json:"findings"`         // Ordered: homophones, segmentation, punctuation
	Total      int         `json:"total"`            // len(Findings)
	Score      *Score      `json:"score,omitempty"`  // Clarity index, filled by the pipeline
	LLM        *LLMSummary `json:"llm,omitempty"`    // Optional LLM explanation (never affects findings)
	Details    *Details    `json:"details,omitempty"`
}

// Details is a rule-based breakdown of a transcript into tokens and sentences.
// Part-of-speech tags and named entities are not produced.
type Details struct {
	Tokens    []string `json:"tokens"`    // Words with surrounding punctuation split off
	Sentences []string `json:"sentences"` // Split after terminal marks; a trailing fragment counts
}

// NewReport builds a report and derives its total
func NewReport(transcript string, findings []Finding) *Report {
	if findings == nil {
		findings = []Finding{}
	}
	return &Report{
		Transcript: transcript,
		Findings:   findings,
		Total:      len(findings),
	}
}

// Homophones returns the lexical ambiguity findings
func (r *Report) Homophones() []Finding {
	return r.ByCategory(CategoryHomophone)
}

// Segmentation returns the segmentation findings
func (r *Report) Segmentation() []Finding {
	return r.ByCategory(CategorySegmentation)
}

// Punctuation returns the missing-punctuation findings
func (r *Report) Punctuation() []Finding {
	return r.ByCategory(CategoryPunctuationMissing)
}

// ByCategory filters findings by their category tag
func (r *Report) ByCategory(c Category) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// Counts returns the number of findings per category
func (r *Report) Counts() map[Category]int {
	counts := make(map[Category]int, 3)
	for _, c := range Categories() {
		counts[c] = 0
	}
	for _, f := range r.Findings {
		counts[f.Category]++
	}
	return counts
}

// HasClassicCase reports whether the flagship comma ambiguity was found
func (r *Report) HasClassicCase() bool {
	for _, f := range r.Findings {
		if f.Rule == RuleClassicCase {
			return true
		}
	}
	return false
}

// Score represents the transparent clarity breakdown
type Score struct {
	Index   int      `json:"index"`   // Clarity index (0-100, 100 = no ambiguity found)
	Risk    string   `json:"risk"`    // "low", "medium", "high"
	Signals []Signal `json:"signals"` // One signal per category with transparent data
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Category    Category               `json:"category"`
	Severity    Severity               `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// LLMSummary contains optional LLM-generated explanation
// It never changes findings or score
type LLMSummary struct {
	Enabled     bool     `json:"enabled"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	StrictQuote bool     `json:"strict_quote"`         // Whether quoted terms were verified
	SummaryMD   string   `json:"summary_md,omitempty"` // Markdown explanation
	Warnings    []string `json:"warnings,omitempty"`
}
