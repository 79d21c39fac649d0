package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/ppiankov/ambiguia/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Explain generates a plain-language explanation of the report
	Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExplainRequest contains the input for an explanation
type ExplainRequest struct {
	// Report is the analysis to explain
	Report model.Report

	// AllowedTerms is the STRICT allowlist of words the LLM may quote.
	// A quoted word outside it was not in the transcript or any finding.
	AllowedTerms []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExplainResponse contains the LLM's output
type ExplainResponse struct {
	// Text is the generated explanation
	Text string

	// QuotedTerms are the terms the LLM put in quotes (for verification)
	QuotedTerms []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for OpenAI-compatible endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictQuote rejects explanations that quote unknown words
	StrictQuote bool

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30,
		StrictQuote: true,
		MaxTokens:   600,
	}
}

// AllowedTerms collects every word the explanation may quote: transcript
// tokens plus the spans and alternatives named by findings
func AllowedTerms(report model.Report) []string {
	seen := make(map[string]bool)
	add := func(text string) {
		for _, w := range strings.Fields(text) {
			if n := lexicon.Normalize(w); n != "" {
				seen[n] = true
			}
		}
	}

	add(report.Transcript)
	for _, f := range report.Findings {
		add(f.Span)
		for _, alt := range f.Alternatives {
			add(alt)
		}
		for _, tok := range f.Tokens {
			add(tok)
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// BuildPrompt constructs the default prompt with strict quote mode
func BuildPrompt(report model.Report, allowedTerms []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are explaining an Ambiguia report. Ambiguia flags places where a speech transcript may be misread by language-processing software. It NEVER decides what the speaker meant.

CRITICAL RULES:
1. You may ONLY put these words in double quotes:
%s

2. DO NOT invent corrections or guess the intended sentence.
3. Explain why each finding could mislead a parser or tagger.
4. Use phrases like "could be read as" or "may have been", never "the speaker meant".

Transcript:
%q

Report Summary:
- Findings: %d
`, joinTerms(allowedTerms), report.Transcript, report.Total)

	if report.Score != nil {
		fmt.Fprintf(&b, "- Clarity Index: %d/100 (%s risk)\n", report.Score.Index, report.Score.Risk)
	}

	b.WriteString("\nFindings:\n")
	for i, f := range report.Findings {
		if i >= 10 {
			fmt.Fprintf(&b, "... and %d more findings\n", len(report.Findings)-10)
			break
		}
		fmt.Fprintf(&b, "- [%s/%s] %s\n", f.Category, f.Severity, f.Message)
	}

	b.WriteString("\nProvide a 3-4 sentence explanation for a reader who will clean up this transcript.")

	return b.String()
}

// Helper functions

func joinTerms(terms []string) string {
	if len(terms) == 0 {
		return "(No terms available)"
	}
	limit := 60
	if len(terms) <= limit {
		return strings.Join(terms, ", ")
	}
	return fmt.Sprintf("%s ... and %d more terms", strings.Join(terms[:limit], ", "), len(terms)-limit)
}
