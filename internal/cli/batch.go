package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/pipeline"
	"github.com/ppiankov/ambiguia/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	topN         int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file|->",
	Short: "Analyze many transcripts from a file in parallel",
	Long: `Batch analyzes one transcript per line:
- each line is literal text, a file path, or an http(s) URL
- blank lines and lines starting with # are skipped
- lines are analyzed in parallel; remote hosts are rate limited
- a JSON and Markdown report is written per line, plus summary.json

Example:
  ambiguia batch calls.txt
  ambiguia batch calls.txt --concurrency 8 --output-dir ./reports
  cat calls.txt | ambiguia batch - --top 5`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./ambiguia-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().IntVar(&topN, "top", 3, "list this many least clear transcripts in the summary")
	addSourceFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
		cfg.Concurrency.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Ambiguia Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, pipelineOptions()...)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	fmt.Fprintf(os.Stderr, "⚙️  Analyzing transcripts with %d workers...\n\n", cfg.Concurrency.Workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := p.Renderer()
	for _, result := range results {
		if result.Error != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Label(), result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, sanitizeFilename(result.Label()))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Label(), err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Label(), err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d findings, index: %d/100)\n", result.Label(), result.Report.Total, result.Report.Score.Index)
	}

	summary := worker.Summarize(results)
	if err := writeBatchSummary(filepath.Join(outputDir, "summary.json"), summary, results); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:          %d transcripts\n", summary.Lines)
	fmt.Fprintf(os.Stderr, "  Clean:          %d\n", summary.Clean)
	fmt.Fprintf(os.Stderr, "  With findings:  %d\n", summary.WithFindings)
	fmt.Fprintf(os.Stderr, "  Failures:       %d\n", summary.Failed)
	fmt.Fprintf(os.Stderr, "  Homophones:     %d\n", summary.Counts[model.CategoryHomophone])
	fmt.Fprintf(os.Stderr, "  Segmentation:   %d\n", summary.Counts[model.CategorySegmentation])
	fmt.Fprintf(os.Stderr, "  Punctuation:    %d\n", summary.Counts[model.CategoryPunctuationMissing])
	if summary.ClassicCases > 0 {
		fmt.Fprintf(os.Stderr, "  ⚠️  Classic comma cases: %d\n", summary.ClassicCases)
	}
	if hosts := processor.RemoteHosts(); hosts > 0 {
		fmt.Fprintf(os.Stderr, "  Remote hosts:   %d\n", hosts)
	}
	fmt.Fprintf(os.Stderr, "  Output:         %s\n", outputDir)

	if ranked := worker.WorstFirst(results); topN > 0 && summary.WithFindings > 0 {
		fmt.Fprintf(os.Stderr, "\n  Least clear:\n")
		shown := 0
		for _, r := range ranked {
			if shown == topN || r.Error != nil || r.Report.Total == 0 {
				break
			}
			fmt.Fprintf(os.Stderr, "    %3d/100  %s\n", r.Report.Score.Index, r.Label())
			shown++
		}
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

type batchLine struct {
	Index   int    `json:"index"`
	Line    string `json:"line"`
	Total   int    `json:"total"`
	Clarity *int   `json:"clarity_index,omitempty"`
	Risk    string `json:"risk,omitempty"`
	Error   string `json:"error,omitempty"`
}

// writeBatchSummary writes the tally and one row per line
func writeBatchSummary(path string, summary worker.BatchSummary, results []*worker.LineResult) error {
	rows := make([]batchLine, 0, len(results))
	for _, r := range results {
		row := batchLine{Index: r.Index + 1, Line: r.Label()}
		if r.Error != nil {
			row.Error = r.Error.Error()
		} else {
			row.Total = r.Report.Total
			if r.Report.Score != nil {
				idx := r.Report.Score.Index
				row.Clarity = &idx
				row.Risk = r.Report.Score.Risk
			}
		}
		rows = append(rows, row)
	}

	data, err := json.MarshalIndent(struct {
		Summary worker.BatchSummary `json:"summary"`
		Lines   []batchLine         `json:"lines"`
	}{summary, rows}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// sanitizeFilename turns a batch label into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"'", "",
		"<", "_",
		">", "_",
		"|", "_",
		".", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.ToLower(strings.TrimSuffix(s, "...")))

	if r := []rune(s); len(r) > 40 {
		s = string(r[:40])
	}
	s = strings.Trim(s, "-_")
	if s == "" {
		s = "transcript"
	}

	return s
}
