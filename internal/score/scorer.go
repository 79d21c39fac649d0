package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
)

// Penalty weights per rule, deducted from a perfect 100
const (
	homophonePenalty = 8
	homophoneCap     = 30
	classicPenalty   = 40
	phrasePenalty    = 20
	longWordPenalty  = 10
	segmentationCap  = 50
	terminalPenalty  = 5
	internalPenalty  = 15
	punctuationCap   = 20
)

// Scorer calculates the clarity index and generates per-category signals
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Calculate derives the clarity index from a report's findings. It reads the
// findings only and never changes them.
func (s *Scorer) Calculate(report *model.Report) model.Score {
	tokens := len(strings.Fields(report.Transcript))

	// 1. Lexical ambiguity (0-30 points)
	lexPenalty, lexSignal := s.calculateLexical(report.Homophones(), tokens)

	// 2. Segmentation (0-50 points)
	segPenalty, segSignal := s.calculateSegmentation(report.Segmentation())

	// 3. Punctuation (0-20 points)
	punctPenalty, punctSignal := s.calculatePunctuation(report.Punctuation(), tokens)

	index := 100 - lexPenalty - segPenalty - punctPenalty
	if index < 0 {
		index = 0
	}

	return model.Score{
		Index:   index,
		Risk:    s.determineRisk(index, report.HasClassicCase()),
		Signals: []model.Signal{lexSignal, segSignal, punctSignal},
	}
}

// calculateLexical penalizes each distinct homophone
func (s *Scorer) calculateLexical(findings []model.Finding, tokens int) (int, model.Signal) {
	count := len(findings)
	if count == 0 {
		return 0, model.Signal{
			Category:    model.CategoryHomophone,
			Severity:    model.SeverityInfo,
			Description: "No homophones detected",
			Data:        map[string]interface{}{"homophones": 0, "tokens": tokens},
		}
	}

	penalty := int(math.Min(float64(count*homophonePenalty), homophoneCap))
	ratio := float64(count) / float64(tokens)

	words := make([]string, count)
	for i, f := range findings {
		words[i] = f.Span
	}

	return penalty, model.Signal{
		Category:    model.CategoryHomophone,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d homophone(s) in %d tokens: %s", count, tokens, strings.Join(words, ", ")),
		Data: map[string]interface{}{
			"homophones": count,
			"tokens":     tokens,
			"ratio":      ratio,
			"penalty":    penalty,
			"formula":    "min(homophones * 8, 30)",
		},
	}
}

// calculateSegmentation penalizes template hits and merged words
func (s *Scorer) calculateSegmentation(findings []model.Finding) (int, model.Signal) {
	if len(findings) == 0 {
		return 0, model.Signal{
			Category:    model.CategorySegmentation,
			Severity:    model.SeverityInfo,
			Description: "No segmentation ambiguity detected",
			Data:        map[string]interface{}{"issues": 0},
		}
	}

	penalty := 0
	severity := model.SeverityInfo
	rules := make([]string, 0, len(findings))
	for _, f := range findings {
		switch f.Rule {
		case model.RuleClassicCase:
			penalty += classicPenalty
		case model.RuleAmbiguousPhrase:
			penalty += phrasePenalty
		case model.RuleLongWord:
			penalty += longWordPenalty
		}
		if f.Severity.Rank() > severity.Rank() {
			severity = f.Severity
		}
		rules = append(rules, string(f.Rule))
	}
	if penalty > segmentationCap {
		penalty = segmentationCap
	}

	return penalty, model.Signal{
		Category:    model.CategorySegmentation,
		Severity:    severity,
		Description: fmt.Sprintf("Segmentation issues: %s", strings.Join(rules, ", ")),
		Data: map[string]interface{}{
			"issues":  len(findings),
			"rules":   rules,
			"penalty": penalty,
			"formula": "min(classic_case*40 + ambiguous_phrase*20 + long_word*10, 50)",
		},
	}
}

// calculatePunctuation penalizes missing terminal and internal marks
func (s *Scorer) calculatePunctuation(findings []model.Finding, tokens int) (int, model.Signal) {
	if len(findings) == 0 {
		return 0, model.Signal{
			Category:    model.CategoryPunctuationMissing,
			Severity:    model.SeverityInfo,
			Description: "Punctuation present",
			Data:        map[string]interface{}{"issues": 0, "tokens": tokens},
		}
	}

	penalty := 0
	severity := model.SeverityInfo
	for _, f := range findings {
		switch f.Rule {
		case model.RuleTerminalPunctuation:
			penalty += terminalPenalty
		case model.RuleNoInternalPunctuation:
			penalty += internalPenalty
		}
		if f.Severity.Rank() > severity.Rank() {
			severity = f.Severity
		}
	}
	if penalty > punctuationCap {
		penalty = punctuationCap
	}

	return penalty, model.Signal{
		Category:    model.CategoryPunctuationMissing,
		Severity:    severity,
		Description: fmt.Sprintf("%d punctuation issue(s) in %d tokens", len(findings), tokens),
		Data: map[string]interface{}{
			"issues":  len(findings),
			"tokens":  tokens,
			"penalty": penalty,
			"formula": "min(terminal*5 + no_internal*15, 20)",
		},
	}
}

// determineRisk maps the index to a risk level; the classic case is always high
func (s *Scorer) determineRisk(index int, classic bool) string {
	if classic {
		return "high"
	}

	if index >= 80 {
		return "low"
	} else if index >= 50 {
		return "medium"
	} else {
		return "high"
	}
}
