package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/ambiguia/internal/model"
	"github.com/ppiankov/ambiguia/internal/observe"
	"github.com/ppiankov/ambiguia/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is the released version, overridable at link time
var Version = "0.1.0"

var (
	cfgFile        string
	verbose        bool
	logLevel       string
	metricsEnabled bool

	// telemetry is set for the current run when --metrics is given
	telemetry *observe.Provider
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ambiguia",
	Short: "Ambiguia - ambiguity diagnostics for speech-to-text transcripts",
	Long: `Ambiguia flags the places where a speech-to-text transcript could be read
more than one way:

- words that sound alike but differ in meaning (to / too / two)
- word groupings that change meaning without a comma ("let's eat grandma")
- long stretches of speech with no punctuation at all

It does not correct the transcript and does not guess what the speaker meant.
Every finding is a question for a human, not an answer.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(); err != nil {
			return err
		}
		return setupMetrics(cmd.Context())
	},
}

// Execute runs the root command; ctx cancels in-flight analysis. With
// --metrics the collected metrics are written to stderr after the run,
// even when the command failed.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)

	if telemetry != nil {
		if werr := telemetry.WriteSummary(context.Background(), rootCmd.ErrOrStderr()); werr != nil {
			log.Warn().Err(werr).Msg("failed to write metrics")
		}
		if serr := telemetry.Shutdown(context.Background()); serr != nil {
			log.Warn().Err(serr).Msg("failed to shut down metrics")
		}
		telemetry = nil
	}

	return err
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for Ambiguia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ambiguia v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ambiguia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&metricsEnabled, "metrics", false, "print collected metrics to stderr on exit")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// configDir is where config init writes and initConfig looks
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".ambiguia"), nil
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// AMBIGUIA_HTTP_TIMEOUT maps to http.timeout
	viper.SetEnvPrefix("AMBIGUIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvKeys()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("output.verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// bindEnvKeys registers every config key so AutomaticEnv can see keys that
// are absent from the config file
func bindEnvKeys() {
	for _, key := range []string{
		"detector.token_threshold", "detector.long_word_length", "detector.classic_triggers", "detector.sentinels",
		"lexicon.extra_groups",
		"http.timeout", "http.user_agent", "http.max_body_bytes", "http.insecure_tls", "http.respect_robots",
		"http.http_proxy", "http.https_proxy", "http.no_proxy",
		"cache.enabled", "cache.dir", "cache.memory_ttl", "cache.disk_ttl",
		"concurrency.workers",
		"rate_limiting.requests_per_second", "rate_limiting.burst_size",
		"output.verbose", "output.include_footer",
		"llm.provider", "llm.model", "llm.base_url", "llm.timeout", "llm.strict_quote", "llm.max_tokens",
		"log.level",
	} {
		_ = viper.BindEnv(key)
	}
}

// loadConfig layers the config file and environment over the defaults
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// The unset --log-level flag decodes as ""
	if cfg.Log.Level == "" {
		cfg.Log.Level = model.DefaultConfig().Log.Level
	}
	return cfg, nil
}

// setupLogging configures the process logger from --log-level or config
func setupLogging() error {
	level := viper.GetString("log.level")
	if level == "" {
		level = model.DefaultConfig().Log.Level
	}
	if verbose && level == model.DefaultConfig().Log.Level {
		level = "info"
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()

	return nil
}

// setupMetrics installs the SDK meter provider when --metrics is given
func setupMetrics(ctx context.Context) error {
	if !metricsEnabled {
		return nil
	}
	p, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceVersion: Version})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	telemetry = p
	return nil
}

// pipelineOptions records into this run's meter provider when one is set
func pipelineOptions() []pipeline.Option {
	if telemetry == nil {
		return nil
	}
	return []pipeline.Option{pipeline.WithMetrics(telemetry.Metrics())}
}
