package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete Ambiguia configuration
type Config struct {
	Detector     DetectorConfig     `yaml:"detector" mapstructure:"detector"`
	Lexicon      LexiconConfig      `yaml:"lexicon" mapstructure:"lexicon"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// DetectorConfig tunes the rule thresholds
type DetectorConfig struct {
	TokenThreshold  int      `yaml:"token_threshold" mapstructure:"token_threshold"`   // Rule (b) fires above this many tokens
	LongWordLength  int      `yaml:"long_word_length" mapstructure:"long_word_length"` // Tokens longer than this look merged
	ClassicTriggers []string `yaml:"classic_triggers" mapstructure:"classic_triggers"` // Objects that make "eat X" the classic case
	Sentinels       []string `yaml:"sentinels" mapstructure:"sentinels"`               // Recognizer "no result" markers
}

// LexiconConfig points at optional extra homophone groups
type LexiconConfig struct {
	ExtraGroups string `yaml:"extra_groups" mapstructure:"extra_groups"` // YAML file with additional groups
}

// HTTPConfig controls fetching of remote transcripts
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the memory + disk cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig limits requests per remote host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig configures the optional explanation provider
type LLMConfig struct {
	Provider    string `yaml:"provider" mapstructure:"provider"` // "" disables, "openai"
	Model       string `yaml:"model" mapstructure:"model"`
	APIKey      string `yaml:"-" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	StrictQuote bool   `yaml:"strict_quote" mapstructure:"strict_quote"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig controls the process logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // zerolog level name
}

// DefaultSentinels are placeholder strings recognizers emit instead of speech
var DefaultSentinels = []string{"[BLANK_AUDIO]", "[no speech]", "[inaudible]", "(silence)"}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			TokenThreshold:  10,
			LongWordLength:  15,
			ClassicTriggers: []string{"grandma"},
			Sentinels:       append([]string(nil), DefaultSentinels...),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Ambiguia/0.1 (+https://github.com/ppiankov/ambiguia)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Timeout:     30,
			StrictQuote: true,
			MaxTokens:   600,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// defaultCacheDir returns the user cache directory for Ambiguia
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".ambiguia-cache"
	}
	return filepath.Join(dir, "ambiguia")
}
