package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func grandmaReport() model.Report {
	return model.Report{
		Transcript: "let's eat grandma",
		Findings: []model.Finding{{
			Category: model.CategorySegmentation,
			Rule:     model.RuleClassicCase,
			Severity: model.SeverityCritical,
			Span:     "let's eat grandma",
			Message:  "classic case",
		}},
		Total: 1,
	}
}

func TestOpenAIProvider_Explain_Success(t *testing.T) {
	server := chatServer(t, `The phrase "eat grandma" could be read as a threat.`)
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Model:       "gpt-4o-mini",
		Timeout:     5,
		StrictQuote: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	report := grandmaReport()
	resp, err := provider.Explain(context.Background(), ExplainRequest{
		Report:       report,
		AllowedTerms: AllowedTerms(report),
	})
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}

	if !strings.Contains(resp.Text, "could be read as") {
		t.Errorf("Unexpected text: %s", resp.Text)
	}
	if len(resp.QuotedTerms) != 1 || resp.QuotedTerms[0] != "eat grandma" {
		t.Errorf("Unexpected quoted terms: %v", resp.QuotedTerms)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("TokensUsed = %d, want 100", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Explain_QuoteLeak(t *testing.T) {
	server := chatServer(t, `The speaker clearly meant "let's eat, grandpa".`)
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{
		APIKey:      "test-key",
		BaseURL:     server.URL,
		Timeout:     5,
		StrictQuote: true,
	})

	report := grandmaReport()
	_, err := provider.Explain(context.Background(), ExplainRequest{
		Report:       report,
		AllowedTerms: AllowedTerms(report),
	})
	if err == nil || !strings.Contains(err.Error(), "QUOTE LEAK") {
		t.Fatalf("Expected quote leak error, got %v", err)
	}
}

func TestOpenAIProvider_Explain_NonStrictAllowsAnyQuote(t *testing.T) {
	server := chatServer(t, `Maybe "grandpa" was intended.`)
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	})

	if _, err := provider.Explain(context.Background(), ExplainRequest{Report: grandmaReport()}); err != nil {
		t.Fatalf("non-strict mode should not verify quotes: %v", err)
	}
}

func TestOpenAIProvider_Explain_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Explain(context.Background(), ExplainRequest{Report: grandmaReport()}); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIProvider_Explain_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})

	if _, err := provider.Explain(context.Background(), ExplainRequest{Report: grandmaReport()}); err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Explain_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, _ := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 1})

	// The caller's shorter deadline wins over the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := provider.Explain(ctx, ExplainRequest{Report: grandmaReport()}); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestOpenAIProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/models" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"data": [{"id": "gpt-4o-mini"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be false on error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Error("Expected error without API key")
	}
}

func TestExtractQuoted(t *testing.T) {
	got := extractQuoted(`Both "there" and “their” fit; "there" again and "" empty.`)

	if len(got) != 2 || got[0] != "there" || got[1] != "their" {
		t.Errorf("extractQuoted = %v", got)
	}
}

func TestVerifyQuotes(t *testing.T) {
	allowed := []string{"to", "too", "two", "store"}

	if err := verifyQuotes([]string{"To", "two.", "the store"}, allowed); err == nil {
		t.Error(`"the" is not allowed and should fail`)
	}
	if err := verifyQuotes([]string{"To", "two.", "store"}, allowed); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
