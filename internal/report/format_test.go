package report

import (
	"strings"
	"testing"

	"github.com/ppiankov/ambiguia/internal/detect"
	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/score"
)

func TestFormat_NoFindings(t *testing.T) {
	for _, text := range []string{"", "[BLANK_AUDIO]", "The meeting is tomorrow."} {
		out := Format(detect.Default().Analyze(text))

		if !strings.Contains(out, NoProblemsMarker) {
			t.Errorf("Format(%q) missing marker:\n%s", text, out)
		}
		if strings.Count(out, "\n") != 1 {
			t.Errorf("Format(%q) should be a single line, got:\n%s", text, out)
		}
	}
}

func TestFormat_NeverFailsOnHandBuiltReports(t *testing.T) {
	reports := []*model.Report{
		{},
		model.NewReport("x", nil),
		model.NewReport("x", []model.Finding{{Category: model.CategoryHomophone}}),
		model.NewReport("x", []model.Finding{{Category: model.CategorySegmentation, Rule: model.RuleClassicCase}}),
	}

	for _, r := range reports {
		if out := Format(r); out == "" {
			t.Errorf("Format(%+v) returned empty output", r)
		}
	}
}

func TestFormat_HomophoneSection(t *testing.T) {
	out := Format(detect.Default().Analyze("i want to go to the store"))

	if !strings.Contains(out, "LEXICAL AMBIGUITY (homophones)") {
		t.Errorf("missing homophone heading:\n%s", out)
	}
	if !strings.Contains(out, "sound like other words") {
		t.Errorf("missing explanatory paragraph:\n%s", out)
	}
	if !strings.Contains(out, "I want two apples.") {
		t.Errorf("missing canned example for the to/too/two group:\n%s", out)
	}
	if strings.Contains(out, NoProblemsMarker) {
		t.Errorf("marker must not appear when findings exist:\n%s", out)
	}
}

func TestFormat_ClassicCase(t *testing.T) {
	out := Format(detect.Default().Analyze("let's eat grandma"))

	if !strings.Contains(out, "Two readings:") {
		t.Errorf("missing extended block:\n%s", out)
	}
	if !strings.Contains(out, "grandma is what gets eaten") || !strings.Contains(out, "grandma is being invited to eat") {
		t.Errorf("both readings should be spelled out:\n%s", out)
	}
	if !strings.Contains(out, "CRITICAL:") {
		t.Errorf("missing critical recommendation:\n%s", out)
	}
}

func TestFormat_GenericPhraseHasNoCriticalLine(t *testing.T) {
	out := Format(detect.Default().Analyze("come and eat pizza."))

	if strings.Contains(out, "CRITICAL:") {
		t.Errorf("generic phrase should not add the critical recommendation:\n%s", out)
	}
	if strings.Contains(out, "Two readings:") {
		t.Errorf("generic phrase should not add the extended block:\n%s", out)
	}
}

func TestBuild_Tally(t *testing.T) {
	r := detect.Default().Analyze("there are two pears on the table")
	doc := Build(r)

	if doc.Clean {
		t.Fatal("expected findings")
	}
	if doc.Summary.Total != r.Total {
		t.Errorf("Total = %d, want %d", doc.Summary.Total, r.Total)
	}
	if len(doc.Summary.Counts) != 3 {
		t.Fatalf("expected a count per category, got %+v", doc.Summary.Counts)
	}
	want := []int{3, 0, 1}
	for i, c := range doc.Summary.Counts {
		if c.Count != want[i] {
			t.Errorf("%s count = %d, want %d", c.Category, c.Count, want[i])
		}
	}
	// Segmentation has no findings and therefore no section
	if len(doc.Sections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(doc.Sections))
	}
	for _, e := range doc.Sections[0].Entries {
		if len(e.Examples) == 0 {
			t.Errorf("entry %q should carry canned examples", e.Text)
		}
	}
}

func TestBuild_Score(t *testing.T) {
	r := detect.Default().Analyze("let's eat grandma")
	s := score.NewScorer().Calculate(r)
	r.Score = &s

	doc := Build(r)
	if doc.Summary.Index == nil || *doc.Summary.Index != s.Index {
		t.Errorf("expected index %d in summary, got %v", s.Index, doc.Summary.Index)
	}
	if doc.Summary.Risk != "high" {
		t.Errorf("Risk = %s, want high", doc.Summary.Risk)
	}
	if !strings.Contains(FormatDocument(doc), "Clarity index:") {
		t.Error("formatted output should show the clarity index")
	}
}

func TestExamplesFor(t *testing.T) {
	tests := []struct {
		word string
		want int
	}{
		{"to", 3},
		{"Two", 3},
		{"they're", 3},
		{"theyre", 3},
		{"pears", 4},
		{"knight", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := len(ExamplesFor(tt.word)); got != tt.want {
			t.Errorf("ExamplesFor(%q) returned %d examples, want %d", tt.word, got, tt.want)
		}
	}
}

func TestExamplesFor_ReturnsCopy(t *testing.T) {
	got := ExamplesFor("to")
	if len(got) == 0 {
		t.Fatal("expected examples for 'to'")
	}
	got[0].Sentence = "changed"

	if ExamplesFor("to")[0].Sentence == "changed" {
		t.Error("callers must not be able to modify the static table")
	}
}
