package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// Summarizer attaches an optional LLM explanation to a report. It runs after
// detection and scoring and never changes findings or score.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; an empty provider disables it
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// NewSummarizerWithProvider wraps an existing provider
func NewSummarizerWithProvider(provider Provider, config Config) *Summarizer {
	return &Summarizer{provider: provider, config: config}
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the provider name or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary explains the report. Provider failures become warnings on
// the returned summary instead of errors.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}

	if !s.provider.IsAvailable(ctx) {
		return &model.LLMSummary{
			Enabled:     false,
			Provider:    s.provider.Name(),
			StrictQuote: s.config.StrictQuote,
			Warnings:    []string{fmt.Sprintf("LLM provider %s is not available", s.provider.Name())},
		}, nil
	}

	allowed := AllowedTerms(report)
	resp, err := s.provider.Explain(ctx, ExplainRequest{
		Report:       report,
		AllowedTerms: allowed,
		Model:        s.config.Model,
		MaxTokens:    s.config.MaxTokens,
	})
	if err != nil {
		return &model.LLMSummary{
			Enabled:     true,
			Provider:    s.provider.Name(),
			Model:       s.config.Model,
			StrictQuote: s.config.StrictQuote,
			Warnings:    []string{fmt.Sprintf("LLM explanation failed: %v", err)},
		}, nil
	}

	warnings := []string{fmt.Sprintf("Tokens used: %d", resp.TokensUsed)}
	if s.config.StrictQuote {
		warnings = append(warnings, fmt.Sprintf("Verified %d quoted terms against the transcript", len(resp.QuotedTerms)))
	}

	return &model.LLMSummary{
		Enabled:     true,
		Provider:    s.provider.Name(),
		Model:       resp.Model,
		StrictQuote: s.config.StrictQuote,
		SummaryMD:   resp.Text,
		Warnings:    warnings,
	}, nil
}

// RenderSeparateMarkdown renders the explanation as its own document so
// generated text is never mixed into the rule-based report
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Explanation\n\n")
	b.WriteString("> **GENERATED CONTENT.** The findings and clarity index in the main report were\n")
	b.WriteString("> determined independently by fixed rules. This text only explains them.\n\n")

	b.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Provider | %s |\n", summary.Provider)
	fmt.Fprintf(&b, "| Model | %s |\n", summary.Model)
	fmt.Fprintf(&b, "| Strict Quote Mode | %v |\n\n", summary.StrictQuote)

	b.WriteString("## Explanation\n\n")
	if summary.SummaryMD == "" {
		b.WriteString("_No explanation generated._\n\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}
