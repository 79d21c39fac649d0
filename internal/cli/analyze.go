package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/pipeline"
	"github.com/ppiankov/ambiguia/internal/report"
	"github.com/spf13/cobra"
)

var (
	outJSON        string
	outMD          string
	timeout        time.Duration
	userAgent      string
	maxBytes       int64
	noCache        bool
	noFooter       bool
	insecureTLS    bool
	ignoreRobots   bool
	httpProxy      string
	httpsProxy     string
	lexiconFile    string
	llmEnabled     bool
	llmModel       string
	legacy         bool
	failOnCritical bool
	showDetails    bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [text|file|-|url]",
	Short: "Analyze one transcript for ambiguity",
	Long: `Analyze checks a single transcript for:
- homophones (to/too/two, there/their/they're, ...)
- segmentation ambiguity ("let's eat grandma")
- missing punctuation

The transcript can be literal text, a file path, "-" for stdin, or an
http(s) URL serving plain text or HTML. With no argument stdin is read.

Example:
  ambiguia analyze "let's eat grandma"
  ambiguia analyze call-0142.txt --json report.json --md report.md
  whisper-cli ... | ambiguia analyze -
  ambiguia analyze https://example.com/transcripts/42.txt --llm`,
	Args: cobra.ArbitraryArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().BoolVar(&legacy, "legacy", false, "print the short legacy problem list instead of the full report")
	analyzeCmd.Flags().BoolVar(&showDetails, "details", false, "also list tokens and sentences (included in --json output)")
	analyzeCmd.Flags().BoolVar(&failOnCritical, "fail-on-critical", false, "exit non-zero when a critical finding is present")
	addSourceFlags(analyzeCmd)
}

// addSourceFlags registers the loading, lexicon and LLM flags shared by
// analyze and batch
func addSourceFlags(cmd *cobra.Command) {
	defaults := model.DefaultConfig()

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall timeout")
	cmd.Flags().StringVar(&userAgent, "ua", defaults.HTTP.UserAgent, "HTTP User-Agent for remote transcripts")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", defaults.HTTP.MaxBodyBytes, "max transcript bytes to read")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
	cmd.Flags().BoolVar(&ignoreRobots, "ignore-robots", false, "fetch remote transcripts even when robots.txt disallows it")
	cmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	cmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	cmd.Flags().StringVar(&lexiconFile, "lexicon", "", "YAML file with extra homophone groups")

	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "add an LLM explanation of the findings (written next to the Markdown report)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

// buildConfig loads config and applies only the flags the user set, so
// config file values are not shadowed by flag defaults
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		cfg.HTTP.Timeout = timeout
	}
	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("http-proxy") {
		cfg.HTTP.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.HTTP.HTTPSProxy = httpsProxy
	}
	if flags.Changed("lexicon") {
		cfg.Lexicon.ExtraGroups = lexiconFile
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if ignoreRobots {
		cfg.HTTP.RespectRobots = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if verbose {
		cfg.Output.Verbose = true
	}

	if llmEnabled {
		if cfg.LLM.Provider == "" {
			cfg.LLM.Provider = "openai"
		}
		if flags.Changed("llm-model") || cfg.LLM.Model == "" {
			cfg.LLM.Model = llmModel
		}
		cfg.LLM.StrictQuote = true // Always enforce

		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	} else {
		cfg.LLM.Provider = ""
	}

	return cfg, nil
}

// sourceArg turns positional args into one source; several words are
// treated as one literal transcript
func sourceArg(args []string) string {
	switch len(args) {
	case 0:
		return "-"
	case 1:
		return args[0]
	default:
		return strings.Join(args, " ")
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	arg := sourceArg(args)
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	src := pipeline.ResolveSource(arg)
	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s (%s)\n", src, src.Kind)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	p, err := pipeline.NewPipeline(cfg, pipelineOptions()...)
	if err != nil {
		return err
	}
	p.Renderer().SetOutput(cmd.OutOrStdout())

	if legacy {
		return runLegacy(ctx, cmd, p, src)
	}

	r, err := p.AnalyzeSource(ctx, arg)
	if pipeline.IsEmptySource(err) {
		// Nothing was said, so nothing can be ambiguous
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", report.NoProblemsMarker)
		return nil
	}
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if cfg.Output.Verbose {
		counts := r.Counts()
		fmt.Fprintf(os.Stderr, "✓ %d homophone, %d segmentation, %d punctuation findings\n",
			counts[model.CategoryHomophone], counts[model.CategorySegmentation], counts[model.CategoryPunctuationMissing])
		fmt.Fprintf(os.Stderr, "✓ Clarity index: %d/100 (%s risk)\n", r.Score.Index, r.Score.Risk)
		if r.LLM != nil && r.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM explanation using %s/%s\n", r.LLM.Provider, r.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if showDetails {
		details := p.Detector().Details(r.Transcript)
		r.Details = &details
	}

	if err := p.RenderReport(r, outJSON, outMD, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	if r.Details != nil {
		printDetails(cmd.OutOrStdout(), r.Details)
	}

	if failOnCritical {
		if n := countCritical(r); n > 0 {
			return fmt.Errorf("%d critical finding(s)", n)
		}
	}
	return nil
}

// runLegacy prints the short problem list, one message per line
func runLegacy(ctx context.Context, cmd *cobra.Command, p *pipeline.Pipeline, src pipeline.Source) error {
	text, err := p.Load(ctx, src)
	if err != nil && !pipeline.IsEmptySource(err) {
		return fmt.Errorf("load failed: %w", err)
	}

	problems := p.Detector().IdentifyProblems(text)
	if len(problems) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", report.NoProblemsMarker)
		return nil
	}
	for _, problem := range problems {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", problem)
	}
	return nil
}

// printDetails lists the token and sentence breakdown after the report
func printDetails(w io.Writer, d *model.Details) {
	fmt.Fprintf(w, "\nTokens (%d): %s\n", len(d.Tokens), strings.Join(d.Tokens, " | "))
	fmt.Fprintf(w, "Sentences (%d):\n", len(d.Sentences))
	for i, s := range d.Sentences {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}

func countCritical(r *model.Report) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == model.SeverityCritical {
			n++
		}
	}
	return n
}
