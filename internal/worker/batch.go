package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// ErrStdinLine is returned for a batch line of "-"
var ErrStdinLine = errors.New("stdin is not a valid batch entry")

// maxLineBytes bounds a single batch line (long transcripts fit on one line)
const maxLineBytes = 1 << 20

// Analyzer analyzes one transcript source (text, file path or URL)
type Analyzer interface {
	AnalyzeSource(ctx context.Context, arg string) (*model.Report, error)
}

// AnalyzeJob analyzes one batch line
type AnalyzeJob struct {
	Index    int
	Line     string
	Analyzer Analyzer
	Limiter  *Limiter // nil disables throttling
}

// Execute runs the analysis, waiting on the host limiter for URL lines
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	res := &LineResult{Index: j.Index, Line: j.Line}

	src := pipeline.ResolveSource(j.Line)
	switch src.Kind {
	case pipeline.SourceStdin:
		res.Error = ErrStdinLine
		return res
	case pipeline.SourceURL:
		if j.Limiter != nil {
			if err := j.Limiter.Wait(ctx, src.Value); err != nil {
				res.Error = fmt.Errorf("rate limit: %w", err)
				return res
			}
		}
	}

	res.Report, res.Error = j.Analyzer.AnalyzeSource(ctx, j.Line)
	return res
}

// LineResult is the outcome for one batch line
type LineResult struct {
	Index  int           `json:"index"`
	Line   string        `json:"line"`
	Report *model.Report `json:"report,omitempty"`
	Error  error         `json:"-"`
}

// GetError returns the analysis error, if any
func (r *LineResult) GetError() error {
	return r.Error
}

// Label is a short, single-line name for the batch line
func (r *LineResult) Label() string {
	label := strings.Join(strings.Fields(r.Line), " ")
	if len([]rune(label)) > 48 {
		label = string([]rune(label)[:45]) + "..."
	}
	return label
}

// BatchProcessor analyzes many transcripts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a batch processor. URL lines are throttled
// per host when requestsPerSecond is positive.
func NewBatchProcessor(analyzer Analyzer, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	b := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
	if requestsPerSecond > 0 {
		b.limiter = NewLimiter(requestsPerSecond, burst)
	}
	return b
}

// ProcessLines analyzes every line and returns results in input order.
// Lines that never ran because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessLines(ctx context.Context, lines []string) []*LineResult {
	if len(lines) == 0 {
		return []*LineResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	stop := context.AfterFunc(ctx, pool.Shutdown)
	defer stop()

	go func() {
		defer pool.Close()
		for i, line := range lines {
			job := &AnalyzeJob{Index: i, Line: line, Analyzer: b.analyzer, Limiter: b.limiter}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	results := make([]*LineResult, len(lines))
	for r := range pool.Results() {
		lr := r.(*LineResult)
		results[lr.Index] = lr
		if lr.Error != nil {
			log.Warn().Err(lr.Error).Int("line", lr.Index+1).Msg("batch line failed")
		}
	}

	for i := range results {
		if results[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &LineResult{Index: i, Line: lines[i], Error: err}
		}
	}

	return results
}

// RemoteHosts returns how many distinct hosts URL lines were fetched from
func (b *BatchProcessor) RemoteHosts() int {
	if b.limiter == nil {
		return 0
	}
	return b.limiter.Hosts()
}

// ProcessFile reads lines from a file ("-" for stdin) and analyzes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*LineResult, error) {
	var lines []string
	var err error
	if filePath == "-" {
		lines, err = ReadLines(os.Stdin)
	} else {
		lines, err = ReadLinesFromFile(filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}

	return b.ProcessLines(ctx, lines), nil
}

// ReadLinesFromFile reads batch lines from a file
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadLines(file)
}

// ReadLines reads one transcript, file path or URL per line. Blank lines
// and "#" comments are skipped; repeated lines are analyzed once.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan lines: %w", err)
	}

	return lines, nil
}

// BatchSummary tallies a batch run
type BatchSummary struct {
	Lines        int                    `json:"lines"`
	Failed       int                    `json:"failed"`
	Clean        int                    `json:"clean"`
	WithFindings int                    `json:"with_findings"`
	ClassicCases int                    `json:"classic_cases"`
	Findings     int                    `json:"findings"`
	Counts       map[model.Category]int `json:"counts"`
	Risk         map[string]int         `json:"risk"`
}

// Summarize tallies findings across all successful lines
func Summarize(results []*LineResult) BatchSummary {
	s := BatchSummary{
		Lines:  len(results),
		Counts: make(map[model.Category]int),
		Risk:   make(map[string]int),
	}
	for _, c := range model.Categories() {
		s.Counts[c] = 0
	}

	for _, r := range results {
		if r.Error != nil || r.Report == nil {
			s.Failed++
			continue
		}
		if r.Report.Total == 0 {
			s.Clean++
		} else {
			s.WithFindings++
		}
		if r.Report.HasClassicCase() {
			s.ClassicCases++
		}
		s.Findings += r.Report.Total
		for c, n := range r.Report.Counts() {
			s.Counts[c] += n
		}
		if r.Report.Score != nil {
			s.Risk[r.Report.Score.Risk]++
		}
	}

	return s
}

// WorstFirst orders successful results by ascending clarity index,
// failures last. The input slice is not modified.
func WorstFirst(results []*LineResult) []*LineResult {
	out := append([]*LineResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		return indexOf(out[i]) < indexOf(out[j])
	})
	return out
}

func indexOf(r *LineResult) int {
	if r.Error != nil || r.Report == nil {
		return 1000
	}
	if r.Report.Score == nil {
		return 100
	}
	return r.Report.Score.Index
}
