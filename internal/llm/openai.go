package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// quotePattern matches straight and curly double-quoted spans
var quotePattern = regexp.MustCompile(`"([^"\n]{1,80})"|“([^”\n]{1,80})”`)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	if _, err := p.client.ListModels(ctx); err != nil {
		log.Warn().Err(err).Str("provider", p.Name()).Msg("LLM availability check failed")
		return false
	}
	return true
}

// Explain generates an explanation using the Chat Completions API
func (p *OpenAIProvider) Explain(ctx context.Context, req ExplainRequest) (*ExplainResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.AllowedTerms)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 600
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You explain speech-transcript ambiguity reports without guessing what the speaker meant.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	quoted := extractQuoted(text)

	if p.config.StrictQuote {
		if err := verifyQuotes(quoted, req.AllowedTerms); err != nil {
			return nil, err
		}
	}

	return &ExplainResponse{
		Text:        text,
		QuotedTerms: quoted,
		Model:       model,
		TokensUsed:  resp.Usage.TotalTokens,
	}, nil
}

// extractQuoted returns the distinct quoted spans in order of appearance
func extractQuoted(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range quotePattern.FindAllStringSubmatch(text, -1) {
		q := m[1]
		if q == "" {
			q = m[2]
		}
		q = strings.TrimSpace(q)
		if q != "" && !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

// verifyQuotes fails on the first quoted word outside the allowlist
func verifyQuotes(quoted []string, allowed []string) error {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[lexicon.Normalize(a)] = true
	}

	for _, q := range quoted {
		for _, w := range strings.Fields(q) {
			n := lexicon.Normalize(w)
			if n != "" && !set[n] {
				return fmt.Errorf("QUOTE LEAK: LLM quoted %q, which is not in the transcript or findings", w)
			}
		}
	}
	return nil
}
