// Package detect scans a single transcript for the ambiguities that make it
// unsafe for downstream language processing: homophones, comma-dependent
// phrases, merged word boundaries and missing punctuation.
//
// A Detector is a pure function of its input and its immutable lexicon and
// catalog. Every call re-analyzes the text from scratch and no call mutates
// shared state, so one Detector can serve any number of goroutines.
package detect

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/patterns"
)

const (
	defaultTokenThreshold = 10
	defaultLongWordLength = 15
)

// Option is a functional option for configuring a Detector
type Option func(*Detector)

// WithTokenThreshold sets how many tokens a transcript may have before the
// no-internal-punctuation rules apply. Default: 10.
func WithTokenThreshold(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.tokenThreshold = n
		}
	}
}

// WithLongWordLength sets the alphanumeric length above which a token is
// treated as a merged word boundary. Default: 15.
func WithLongWordLength(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.longWordLength = n
		}
	}
}

// WithSentinels sets the recognizer placeholders ("[BLANK_AUDIO]") that are
// analyzed as an empty transcript
func WithSentinels(sentinels []string) Option {
	return func(d *Detector) {
		d.sentinels = nil
		for _, s := range sentinels {
			if s = strings.TrimSpace(s); s != "" {
				d.sentinels = append(d.sentinels, s)
			}
		}
	}
}

// Detector finds ambiguities in transcripts
type Detector struct {
	lexicon        *lexicon.Lexicon
	catalog        *patterns.Catalog
	tokenThreshold int
	longWordLength int
	sentinels      []string
}

// New creates a detector over the given lexicon and catalog
func New(lex *lexicon.Lexicon, cat *patterns.Catalog, opts ...Option) *Detector {
	if lex == nil {
		lex = lexicon.Default()
	}
	if cat == nil {
		cat = patterns.Default()
	}
	d := &Detector{
		lexicon:        lex,
		catalog:        cat,
		tokenThreshold: defaultTokenThreshold,
		longWordLength: defaultLongWordLength,
		sentinels:      append([]string(nil), model.DefaultSentinels...),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Default creates a detector with the built-in lexicon and catalog
func Default() *Detector {
	return New(nil, nil)
}

// FromConfig creates a detector tuned by cfg
func FromConfig(cfg model.DetectorConfig, lex *lexicon.Lexicon) *Detector {
	triggers := cfg.ClassicTriggers
	if len(triggers) == 0 {
		triggers = []string{"grandma"}
	}
	opts := []Option{
		WithTokenThreshold(cfg.TokenThreshold),
		WithLongWordLength(cfg.LongWordLength),
	}
	if cfg.Sentinels != nil {
		opts = append(opts, WithSentinels(cfg.Sentinels))
	}
	return New(lex, patterns.New(patterns.DefaultTemplates(), triggers), opts...)
}

// Lexicon returns the detector's lexicon
func (d *Detector) Lexicon() *lexicon.Lexicon {
	return d.lexicon
}

// IsSentinel reports whether text is empty or a recognizer "no result" marker
func (d *Detector) IsSentinel(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	for _, s := range d.sentinels {
		if strings.EqualFold(trimmed, s) {
			return true
		}
	}
	return false
}

// Analyze builds the full report for text: homophones first, then
// segmentation, then punctuation. Empty and sentinel input yields a report
// with zero findings.
func (d *Detector) Analyze(text string) *model.Report {
	if d.IsSentinel(text) {
		return model.NewReport(text, nil)
	}

	var findings []model.Finding
	findings = append(findings, d.FindHomophones(text)...)
	findings = append(findings, d.ScanSegmentation(text).Issues...)
	findings = append(findings, d.ScanPunctuation(text).Issues...)

	return model.NewReport(text, findings)
}

// IdentifyProblems is the terse mode: at most one line per problem class.
// Its punctuation line uses the legacy rule (more than the token threshold
// and none of . , ! ? ; :), which differs in wording and marks from the
// rules ScanPunctuation applies.
func (d *Detector) IdentifyProblems(text string) []string {
	if d.IsSentinel(text) {
		return nil
	}

	var problems []string

	if found := d.FindHomophones(text); len(found) > 0 {
		words := make([]string, len(found))
		for i, f := range found {
			words[i] = f.Span
		}
		problems = append(problems, fmt.Sprintf(
			"LEXICAL AMBIGUITY: homophones detected: %s (may carry different meanings)",
			strings.Join(words, ", ")))
	}

	if seg := d.ScanSegmentation(text); seg.HasProblems {
		problems = append(problems, "SEGMENTATION ERROR: "+seg.Issues[0].Message)
	}

	if d.lacksPunctuation(text) {
		problems = append(problems, "MISSING PUNCTUATION: missing punctuation may alter meaning")
	}

	return problems
}

// lacksPunctuation is the legacy length-gated rule
func (d *Detector) lacksPunctuation(text string) bool {
	if len(tokenize(text)) <= d.tokenThreshold {
		return false
	}
	return !strings.ContainsAny(text, legacyMarks)
}
