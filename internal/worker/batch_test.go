package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/observe"
	"github.com/ppiankov/ambiguia/internal/pipeline"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	failOn string
	calls  atomic.Int32
}

func (m *mockAnalyzer) AnalyzeSource(ctx context.Context, arg string) (*model.Report, error) {
	m.calls.Add(1)
	// Uneven latency so completion order differs from input order
	time.Sleep(time.Duration(len(arg)%3) * 5 * time.Millisecond)
	if arg == m.failOn {
		return nil, errors.New("analyze error")
	}
	return model.NewReport(arg, nil), nil
}

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessLines_Order(t *testing.T) {
	analyzer := &mockAnalyzer{}
	processor := NewBatchProcessor(analyzer, 3, 0, 0)

	lines := []string{"a", "bb", "ccc", "dddd", "eeeee", "ffffff", "g"}
	results := processor.ProcessLines(context.Background(), lines)

	if len(results) != len(lines) {
		t.Fatalf("expected %d results, got %d", len(lines), len(results))
	}
	for i, res := range results {
		if res.Index != i || res.Line != lines[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if res.Error != nil || res.Report == nil || res.Report.Transcript != lines[i] {
			t.Errorf("unexpected result for %q: %+v", lines[i], res)
		}
	}
}

func TestBatchProcessor_ProcessLines_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{failOn: "bad"}, 2, 0, 0)

	results := processor.ProcessLines(context.Background(), []string{"good", "bad"})
	if results[0].Error != nil {
		t.Errorf("unexpected error: %v", results[0].Error)
	}
	if results[1].Error == nil || results[1].Report != nil {
		t.Errorf("expected error and nil report, got %+v", results[1])
	}
}

func TestBatchProcessor_ProcessLines_Empty(t *testing.T) {
	results := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessLines(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_StdinLineRejected(t *testing.T) {
	analyzer := &mockAnalyzer{}
	results := NewBatchProcessor(analyzer, 1, 0, 0).ProcessLines(context.Background(), []string{"-"})

	if !errors.Is(results[0].Error, ErrStdinLine) {
		t.Errorf("expected ErrStdinLine, got %v", results[0].Error)
	}
	if analyzer.calls.Load() != 0 {
		t.Error("stdin line should not reach the analyzer")
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessLines(ctx, []string{"a", "b", "c"})
	if len(results) != 3 {
		t.Fatalf("expected a result per line, got %d", len(results))
	}
	for _, res := range results {
		if res == nil || !errors.Is(res.Error, context.Canceled) {
			t.Errorf("expected context.Canceled, got %+v", res)
		}
	}
}

func TestBatchProcessor_RateLimitsURLLines(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 4, 0.01, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	lines := []string{"http://example.com/1", "http://example.com/2", "plain text line"}
	results := processor.ProcessLines(ctx, lines)

	limited := 0
	for _, res := range results[:2] {
		if res.Error != nil && strings.HasPrefix(res.Error.Error(), "rate limit") {
			limited++
		}
	}
	if limited != 1 {
		t.Errorf("expected exactly one throttled URL line, got %d", limited)
	}
	if results[2].Error != nil {
		t.Errorf("text lines must bypass the host limiter: %v", results[2].Error)
	}
	if processor.RemoteHosts() != 1 {
		t.Errorf("expected 1 remote host, got %d", processor.RemoteHosts())
	}
	if NewBatchProcessor(&mockAnalyzer{}, 1, 0, 0).RemoteHosts() != 0 {
		t.Error("unthrottled processor should report no hosts")
	}
}

// blockingAnalyzer holds every call until ctx ends
type blockingAnalyzer struct {
	started chan struct{}
	once    sync.Once
}

func (b *blockingAnalyzer) AnalyzeSource(ctx context.Context, arg string) (*model.Report, error) {
	b.once.Do(func() { close(b.started) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestBatchProcessor_CancelMidRun(t *testing.T) {
	analyzer := &blockingAnalyzer{started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	lines := make([]string, 20)
	for i := range lines {
		lines[i] = strings.Repeat("x", i+1)
	}

	done := make(chan []*LineResult)
	go func() {
		done <- NewBatchProcessor(analyzer, 2, 0, 0).ProcessLines(ctx, lines)
	}()

	<-analyzer.started
	cancel()

	select {
	case results := <-done:
		if len(results) != len(lines) {
			t.Fatalf("expected a result per line, got %d", len(results))
		}
		for _, res := range results {
			if !errors.Is(res.Error, context.Canceled) {
				t.Errorf("line %d: expected context.Canceled, got %v", res.Index, res.Error)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessLines did not return after cancel")
	}
}

func TestReadLinesFromFile(t *testing.T) {
	path := writeBatchFile(t, "let's eat grandma\n# comment\nhttps://example.com/call.txt\n   \n  i want to go to the store  \nlet's eat grandma\n")

	lines, err := ReadLinesFromFile(path)
	if err != nil {
		t.Fatalf("ReadLinesFromFile failed: %v", err)
	}

	expected := []string{"let's eat grandma", "https://example.com/call.txt", "i want to go to the store"}
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %v", len(expected), lines)
	}
	for i, line := range lines {
		if line != expected[i] {
			t.Errorf("expected %q at index %d, got %q", expected[i], i, line)
		}
	}
}

func TestReadLinesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadLinesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestReadLines_LongLine(t *testing.T) {
	long := strings.Repeat("word ", 20000)
	lines, err := ReadLines(strings.NewReader(long))
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("expected one long line, got %d", len(lines))
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeBatchFile(t, "one\ntwo\n# comment\n\nthree\n")

	results, err := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := NewBatchProcessor(&mockAnalyzer{}, 2, 0, 0).ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestLineResult_Label(t *testing.T) {
	short := &LineResult{Line: "let's  eat\tgrandma"}
	if short.Label() != "let's eat grandma" {
		t.Errorf("unexpected label %q", short.Label())
	}

	long := &LineResult{Line: strings.Repeat("abc ", 30)}
	if got := long.Label(); len([]rune(got)) != 48 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncated label %q", got)
	}

	expected := errors.New("analyze failed")
	if (&LineResult{Error: expected}).GetError() != expected {
		t.Error("GetError should return the stored error")
	}
}

// End to end through the real pipeline: ordering, tally and ranking
func TestBatchProcessor_WithPipeline(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = false

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	p, err := pipeline.NewPipeline(cfg, pipeline.WithMetrics(metrics))
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	lines := []string{
		"The meeting is tomorrow.",
		"let's eat grandma",
		"there house is over their",
	}
	results := NewBatchProcessor(p, 2, 0, 0).ProcessLines(context.Background(), lines)

	s := Summarize(results)
	if s.Lines != 3 || s.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Clean != 1 || s.WithFindings != 2 {
		t.Errorf("expected 1 clean and 2 with findings, got %+v", s)
	}
	if s.ClassicCases != 1 {
		t.Errorf("expected 1 classic case, got %d", s.ClassicCases)
	}
	if s.Counts[model.CategoryHomophone] != 2 {
		t.Errorf("expected 2 homophone findings, got %d", s.Counts[model.CategoryHomophone])
	}
	if s.Findings != results[1].Report.Total+results[2].Report.Total {
		t.Errorf("findings tally %d does not match reports", s.Findings)
	}

	ranked := WorstFirst(results)
	if ranked[0].Line != "let's eat grandma" {
		t.Errorf("expected classic case first, got %q", ranked[0].Line)
	}
	if ranked[len(ranked)-1].Line != "The meeting is tomorrow." {
		t.Errorf("expected clean transcript last, got %q", ranked[len(ranked)-1].Line)
	}
	if results[0].Line != lines[0] {
		t.Error("WorstFirst must not reorder its input")
	}
}

func TestSummarize_Failures(t *testing.T) {
	s := Summarize([]*LineResult{
		{Error: errors.New("boom")},
		{Report: model.NewReport("ok", nil)},
	})
	if s.Failed != 1 || s.Clean != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if _, ok := s.Counts[model.CategoryPunctuationMissing]; !ok {
		t.Error("every category should appear in the tally")
	}

	ranked := WorstFirst([]*LineResult{{Line: "x", Error: errors.New("boom")}, {Line: "y", Report: model.NewReport("y", nil)}})
	if ranked[0].Line != "y" {
		t.Error("failures should sort last")
	}
}
