package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/ambiguia/internal/cache"
	"github.com/ppiankov/ambiguia/internal/detect"
	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/ppiankov/ambiguia/internal/llm"
	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/observe"
	"github.com/ppiankov/ambiguia/internal/report"
	"github.com/ppiankov/ambiguia/internal/score"
	"github.com/rs/zerolog/log"
)

// Pipeline loads transcripts, analyzes them and renders the results
type Pipeline struct {
	fetcher    *Fetcher
	detector   *detect.Detector
	scorer     *score.Scorer
	renderer   *report.Renderer
	summarizer *llm.Summarizer // Optional LLM explainer (nil if disabled)
	cache      cache.Cache     // nil if disabled
	metrics    *observe.Metrics
	stdin      io.Reader
	config     *model.Config
}

// Option is a functional option for configuring a Pipeline
type Option func(*Pipeline)

// WithMetrics records into m instead of the process default
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithStdin replaces os.Stdin as the "-" source
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) { p.stdin = r }
}

// WithSummarizer replaces the configured LLM summarizer
func WithSummarizer(s *llm.Summarizer) Option {
	return func(p *Pipeline) { p.summarizer = s }
}

// WithCache replaces the configured cache
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// NewPipeline creates a pipeline from configuration. Only an unreadable
// extra lexicon is fatal; a broken LLM setup is logged and disabled.
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	lex := lexicon.Default()
	if cfg.Lexicon.ExtraGroups != "" {
		groups, err := lexicon.LoadGroups(cfg.Lexicon.ExtraGroups)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex = lex.Extend(groups...)
		log.Debug().Str("file", cfg.Lexicon.ExtraGroups).Int("groups", len(groups)).Msg("extended lexicon")
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			log.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("failed to initialize LLM provider")
		} else {
			summarizer = s
		}
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots()
	}

	p := &Pipeline{
		fetcher:    fetcher,
		detector:   detect.FromConfig(cfg.Detector, lex),
		scorer:     score.NewScorer(),
		renderer:   report.NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		cache:      c,
		stdin:      os.Stdin,
		config:     cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}

	return p, nil
}

// Detector returns the configured detector
func (p *Pipeline) Detector() *detect.Detector {
	return p.detector
}

// Renderer returns the configured renderer
func (p *Pipeline) Renderer() *report.Renderer {
	return p.renderer
}

// Analyze runs detection and scoring on text, then the optional LLM
// explanation. The explanation never affects findings or score.
func (p *Pipeline) Analyze(ctx context.Context, text string) *model.Report {
	start := time.Now()

	r := p.detector.Analyze(text)
	s := p.scorer.Calculate(r)
	r.Score = &s

	status := "findings"
	switch {
	case p.detector.IsSentinel(text):
		status = "skipped"
	case r.Total == 0:
		status = "clean"
	}
	p.metrics.RecordAnalysis(ctx, status, time.Since(start).Seconds(), tally(r))

	log.Debug().
		Int("findings", r.Total).
		Int("index", s.Index).
		Str("risk", s.Risk).
		Dur("took", time.Since(start)).
		Msg("analyzed transcript")

	if r.Total > 0 && p.summarizer != nil && p.summarizer.IsEnabled() {
		r.LLM = p.explain(ctx, r)
	}

	return r
}

// AnalyzeSource resolves arg (text, file, "-" or URL), loads it and
// analyzes the transcript
func (p *Pipeline) AnalyzeSource(ctx context.Context, arg string) (*model.Report, error) {
	src := ResolveSource(arg)

	text, err := p.Load(ctx, src)
	if err != nil {
		return nil, err
	}

	r := p.Analyze(ctx, text)
	r.Source = src.String()
	return r, nil
}

// Load reads the transcript behind a source. Remote transcripts are cached.
func (p *Pipeline) Load(ctx context.Context, src Source) (string, error) {
	var text string
	var err error

	switch src.Kind {
	case SourceText:
		text = src.Value
	case SourceFile:
		var data []byte
		data, err = os.ReadFile(src.Value)
		if err != nil {
			err = fmt.Errorf("read %s: %w", src.Value, err)
		}
		text = string(data)
	case SourceStdin:
		var data []byte
		data, err = io.ReadAll(io.LimitReader(p.stdin, p.config.HTTP.MaxBodyBytes))
		if err != nil {
			err = fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	case SourceURL:
		text, err = p.loadURL(ctx, src.Value)
	default:
		err = fmt.Errorf("unknown source kind %q", src.Kind)
	}

	if err != nil {
		p.metrics.RecordSourceFetch(ctx, string(src.Kind), "error")
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		p.metrics.RecordSourceFetch(ctx, string(src.Kind), "empty")
		return "", fmt.Errorf("%s: %w", src, ErrEmptySource)
	}

	p.metrics.RecordSourceFetch(ctx, string(src.Kind), "ok")
	return text, nil
}

func (p *Pipeline) loadURL(ctx context.Context, rawURL string) (string, error) {
	key := cache.Key(cache.NamespaceSource, rawURL)
	if p.cache != nil {
		if data, ok := p.cache.Get(key); ok {
			log.Debug().Str("url", rawURL).Msg("transcript cache hit")
			return string(data), nil
		}
	}

	result, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	if p.cache != nil {
		if err := p.cache.Set(key, []byte(result.Text), 0); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("failed to cache transcript")
		}
	}
	return result.Text, nil
}

func (p *Pipeline) explain(ctx context.Context, r *model.Report) *model.LLMSummary {
	key := cache.Key(cache.NamespaceLLM, p.summarizer.ProviderName(), p.config.LLM.Model, r.Transcript)
	if p.cache != nil {
		var cached model.LLMSummary
		if cache.GetJSON(p.cache, key, &cached) {
			return &cached
		}
	}

	summary, err := p.summarizer.GenerateSummary(ctx, *r)
	if err != nil {
		log.Warn().Err(err).Msg("LLM explanation failed")
		p.metrics.RecordLLMRequest(ctx, p.summarizer.ProviderName(), "error")
		return nil
	}
	if summary == nil {
		return nil
	}

	status := "ok"
	if !summary.Enabled || summary.SummaryMD == "" {
		status = "degraded"
		for _, w := range summary.Warnings {
			log.Warn().Str("provider", summary.Provider).Msg(w)
		}
	}
	p.metrics.RecordLLMRequest(ctx, p.summarizer.ProviderName(), status)

	if status == "ok" && p.cache != nil {
		if err := cache.SetJSON(p.cache, key, summary, 0); err != nil {
			log.Warn().Err(err).Msg("failed to cache LLM explanation")
		}
	}
	return summary
}

// RenderReport writes the requested outputs and prints the summary
func (p *Pipeline) RenderReport(r *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(r, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(r, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// LLM explanation goes to its own file, never into the report itself
	if r.LLM != nil && r.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(r.LLM), llmPath); err != nil {
			log.Warn().Err(err).Str("path", llmPath).Msg("failed to write LLM explanation")
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM Explanation: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(r)

	return nil
}

// IsEmptySource reports whether err means the source had no text
func IsEmptySource(err error) bool {
	return errors.Is(err, ErrEmptySource)
}

// tally groups finding counts by category and severity for metrics
func tally(r *model.Report) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, f := range r.Findings {
		c := string(f.Category)
		if out[c] == nil {
			out[c] = make(map[string]int)
		}
		out[c][string(f.Severity)]++
	}
	return out
}
