package model

// Finding is one reported ambiguity instance
type Finding struct {
	Category     Category `json:"category"`               // Which class of ambiguity this is
	Rule         Rule     `json:"rule"`                   // Which detection rule produced it
	Severity     Severity `json:"severity"`               // info, warning, critical
	Span         string   `json:"span,omitempty"`         // Offending word or matched phrase
	Tokens       []string `json:"tokens,omitempty"`       // Offending tokens when more than one
	Message      string   `json:"message"`                // Human-readable description
	Alternatives []string `json:"alternatives,omitempty"` // Homophone spellings sharing the pronunciation
	Readings     []string `json:"readings,omitempty"`     // Literal alternate interpretations
}

// Category classifies the nature of the ambiguity
type Category string

const (
	CategoryHomophone          Category = "homophone"           // Lexical ambiguity
	CategorySegmentation       Category = "segmentation"        // Missing word/phrase boundary
	CategoryPunctuationMissing Category = "punctuation_missing" // Structural risk from missing marks
)

// Categories lists every category in report order
func Categories() []Category {
	return []Category{CategoryHomophone, CategorySegmentation, CategoryPunctuationMissing}
}

// Rule identifies the detection rule that fired
type Rule string

const (
	RuleHomophone             Rule = "homophone"
	RuleClassicCase           Rule = "classic_case"            // "let's eat grandma"
	RuleAmbiguousPhrase       Rule = "ambiguous_phrase"        // Template hit without a classic trigger
	RuleLongWord              Rule = "long_word"               // Likely merged word boundary
	RuleTerminalPunctuation   Rule = "terminal_punctuation"    // No final . ! ?
	RuleNoInternalPunctuation Rule = "no_internal_punctuation" // Long span without any mark
)

// Severity indicates the importance of the finding
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Rank orders severities so the most serious compares highest
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}
