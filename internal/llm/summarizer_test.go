package llm

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/ppiankov/ambiguia/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *ExplainResponse
	err       error
	lastReq   ExplainRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "anthropic"}); err == nil {
		t.Error("Expected error for unsupported provider")
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := &Summarizer{}

	summary, err := summarizer.GenerateSummary(context.Background(), grandmaReport())
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := NewSummarizerWithProvider(&MockProvider{name: "test-provider"}, Config{StrictQuote: true})

	summary, err := summarizer.GenerateSummary(context.Background(), grandmaReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected unavailability warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &ExplainResponse{
			Text:        `"grandma" could be read as the object of "eat".`,
			QuotedTerms: []string{"grandma", "eat"},
			Model:       "test-model",
			TokensUsed:  150,
		},
	}
	summarizer := NewSummarizerWithProvider(mock, Config{Model: "test-model", StrictQuote: true})

	summary, err := summarizer.GenerateSummary(context.Background(), grandmaReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.Enabled || summary.Provider != "test-provider" || summary.Model != "test-model" {
		t.Errorf("unexpected summary header: %+v", summary)
	}
	if !summary.StrictQuote {
		t.Error("Expected strict quote mode to be recorded")
	}
	if !strings.HasPrefix(summary.SummaryMD, `"grandma"`) {
		t.Errorf("unexpected summary text: %s", summary.SummaryMD)
	}

	joined := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(joined, "Tokens used: 150") {
		t.Errorf("Expected token warning, got %v", summary.Warnings)
	}
	if !strings.Contains(joined, "Verified 2 quoted terms") {
		t.Errorf("Expected verification note, got %v", summary.Warnings)
	}

	// The allowlist handed to the provider comes from the report
	if !slices.Contains(mock.lastReq.AllowedTerms, "grandma") {
		t.Errorf("allowlist missing transcript word: %v", mock.lastReq.AllowedTerms)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		err:       &mockError{msg: "API rate limit exceeded"},
	}
	summarizer := NewSummarizerWithProvider(mock, Config{Model: "test-model", StrictQuote: true})

	summary, err := summarizer.GenerateSummary(context.Background(), grandmaReport())
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary carrying the failure")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "rate limit") {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestGenerateSummary_DoesNotTouchFindings(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response:  &ExplainResponse{Text: "ok"},
	}
	report := grandmaReport()
	before := report.Findings[0]

	_, _ = NewSummarizerWithProvider(mock, Config{}).GenerateSummary(context.Background(), report)

	if report.Findings[0].Message != before.Message || report.Total != 1 {
		t.Error("summary generation must not change findings")
	}
}

func TestRenderSeparateMarkdown(t *testing.T) {
	if RenderSeparateMarkdown(nil) != "" {
		t.Error("Expected empty markdown when nil")
	}
	if RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}) != "" {
		t.Error("Expected empty markdown when disabled")
	}

	md := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled:     true,
		Provider:    "openai",
		Model:       "gpt-4o-mini",
		StrictQuote: true,
		SummaryMD:   "This is the generated explanation.",
		Warnings:    []string{"Tokens used: 150"},
	})

	for _, want := range []string{
		"# LLM Explanation",
		"GENERATED CONTENT",
		"determined independently",
		"| Provider | openai |",
		"| Model | gpt-4o-mini |",
		"| Strict Quote Mode | true |",
		"This is the generated explanation.",
		"## Notes",
		"Tokens used: 150",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Expected markdown to contain %q", want)
		}
	}

	empty := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "openai"})
	if !strings.Contains(empty, "No explanation generated") {
		t.Error("Expected message about no explanation")
	}
}

func TestBuildPrompt(t *testing.T) {
	report := grandmaReport()
	report.Score = &model.Score{Index: 60, Risk: "high"}

	prompt := BuildPrompt(report, AllowedTerms(report))

	for _, want := range []string{
		"CRITICAL RULES",
		"ONLY put these words in double quotes",
		"grandma",
		`"let's eat grandma"`,
		"Findings: 1",
		"Clarity Index: 60/100 (high risk)",
		"[segmentation/critical] classic case",
		"NEVER decides what the speaker meant",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestAllowedTerms(t *testing.T) {
	report := model.Report{
		Transcript: "I want to go",
		Findings: []model.Finding{{
			Category:     model.CategoryHomophone,
			Span:         "to",
			Alternatives: []string{"too", "two"},
		}},
	}

	got := AllowedTerms(report)
	want := []string{"go", "i", "to", "too", "two", "want"}
	if !slices.Equal(got, want) {
		t.Errorf("AllowedTerms = %v, want %v", got, want)
	}
}

func TestJoinTerms(t *testing.T) {
	if !strings.Contains(joinTerms(nil), "No terms available") {
		t.Error("Expected message about no terms")
	}

	many := make([]string, 70)
	for i := range many {
		many[i] = "w"
	}
	if !strings.Contains(joinTerms(many), "and 10 more terms") {
		t.Error("Expected truncation message")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}
	if !config.StrictQuote {
		t.Error("Expected strict quote mode to be enabled by default")
	}
	if config.Timeout <= 0 || config.MaxTokens <= 0 {
		t.Error("Expected positive timeout and max tokens")
	}
}

type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
