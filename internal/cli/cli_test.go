package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/ambiguia/internal/report"
)

// runCLI executes the root command with a scratch HOME and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	// Package-level flag values survive between executions
	legacy, failOnCritical, noCache, llmEnabled = false, false, false, false
	showDetails, metricsEnabled = false, false
	outJSON, outMD, lexiconFile = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "ambiguia v"+Version+"\n" {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "r.json")

	out, err := runCLI(t, "analyze", "--no-cache", "--json", jsonPath, "let's eat grandma")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "SEGMENTATION AMBIGUITY") || !strings.Contains(out, "Two readings:") {
		t.Errorf("expected classic case in report:\n%s", out)
	}
	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("expected JSON report: %v", err)
	}

	out, err = runCLI(t, "analyze", "--no-cache", "The meeting is tomorrow.")
	if err != nil {
		t.Fatalf("analyze clean: %v", err)
	}
	if !strings.Contains(out, report.NoProblemsMarker) {
		t.Errorf("expected no-problems marker, got:\n%s", out)
	}
}

func TestAnalyzeCommand_FailOnCritical(t *testing.T) {
	if _, err := runCLI(t, "analyze", "--no-cache", "--fail-on-critical", "let's eat grandma"); err == nil {
		t.Error("expected error for critical finding")
	}
	if _, err := runCLI(t, "analyze", "--no-cache", "--fail-on-critical", "I want to go."); err != nil {
		t.Errorf("non-critical findings should pass: %v", err)
	}
}

func TestAnalyzeCommand_Legacy(t *testing.T) {
	out, err := runCLI(t, "analyze", "--no-cache", "--legacy", "i want to go to the store")
	if err != nil {
		t.Fatalf("analyze --legacy: %v", err)
	}
	if !strings.HasPrefix(out, "- ") {
		t.Errorf("expected legacy problem list, got:\n%s", out)
	}
}

func TestAnalyzeCommand_Details(t *testing.T) {
	jsonPath := filepath.Join(t.TempDir(), "r.json")

	out, err := runCLI(t, "analyze", "--no-cache", "--details", "--json", jsonPath, "Let's eat, grandma. See you")
	if err != nil {
		t.Fatalf("analyze --details: %v", err)
	}
	if !strings.Contains(out, "Tokens (7): Let's | eat | , | grandma | . | See | you") {
		t.Errorf("missing token breakdown:\n%s", out)
	}
	if !strings.Contains(out, "  1. Let's eat, grandma.") || !strings.Contains(out, "  2. See you") {
		t.Errorf("missing sentence breakdown:\n%s", out)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sentences"`) {
		t.Errorf("JSON report should carry details:\n%s", data)
	}
}

func TestAnalyzeCommand_Metrics(t *testing.T) {
	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() { rootCmd.SetErr(nil) })

	if _, err := runCLI(t, "analyze", "--no-cache", "--metrics", "let's eat grandma"); err != nil {
		t.Fatalf("analyze --metrics: %v", err)
	}
	for _, want := range []string{
		"Metrics:",
		"ambiguia.analyses{status=findings} 1",
		"ambiguia.findings{category=segmentation,severity=critical} 1",
	} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr.String())
		}
	}
	if telemetry != nil {
		t.Error("meter provider should be released after the run")
	}
}

func TestLexiconLookupCommand(t *testing.T) {
	out, err := runCLI(t, "lexicon", "lookup", "to", "banana")
	if err != nil {
		t.Fatalf("lexicon lookup: %v", err)
	}
	if !strings.Contains(out, "to: too, two") {
		t.Errorf("missing alternatives for 'to':\n%s", out)
	}
	if !strings.Contains(out, "banana: not a known homophone") {
		t.Errorf("missing miss line:\n%s", out)
	}
}

func TestLexiconLookupCommand_ExtraGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	if err := os.WriteFile(path, []byte("groups:\n  - [whole, hole]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "lexicon", "lookup", "--lexicon", path, "hole")
	if err != nil {
		t.Fatalf("lexicon lookup: %v", err)
	}
	if !strings.Contains(out, "hole: whole") {
		t.Errorf("extra group not loaded:\n%s", out)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Ambiguia Configuration File", "token_threshold: 10", "OPENAI_API_KEY"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config file missing %q", want)
		}
	}
	if strings.Contains(string(data), "api_key:") {
		t.Error("API key must never be written to the config file")
	}

	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestSourceArg(t *testing.T) {
	if sourceArg(nil) != "-" {
		t.Error("no args should read stdin")
	}
	if sourceArg([]string{"call.txt"}) != "call.txt" {
		t.Error("single arg should pass through")
	}
	if sourceArg([]string{"let's", "eat", "grandma"}) != "let's eat grandma" {
		t.Error("several args should join into one transcript")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"let's eat grandma", "lets-eat-grandma"},
		{"https://example.com/a.txt", "https___example_com_a_txt"},
		{"???", "transcript"},
		{strings.Repeat("word ", 20), "word-word-word-word-word-word-word-word"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
