package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ambiguia/internal/lexicon"
	"github.com/spf13/cobra"
)

// lexiconCmd represents the lexicon command
var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Inspect the homophone lexicon",
	Long: `Inspect the homophone lexicon used by the detector, including any extra
groups from --lexicon or lexicon.extra_groups in the config file.`,
}

var lexiconLookupCmd = &cobra.Command{
	Use:   "lookup <word>...",
	Short: "Show the words that sound like each given word",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := loadLexicon(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, word := range args {
			alts := lex.Lookup(word)
			if len(alts) == 0 {
				fmt.Fprintf(out, "%s: not a known homophone\n", word)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", word, strings.Join(alts, ", "))
		}
		return nil
	},
}

var lexiconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every spelling in the lexicon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := loadLexicon(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, w := range lex.Words() {
			fmt.Fprintf(out, "%-10s %s\n", w, strings.Join(lex.Lookup(w), ", "))
		}
		fmt.Fprintf(out, "\n%d spellings\n", lex.Len())
		return nil
	},
}

var lexiconSoundsCmd = &cobra.Command{
	Use:   "sounds <word>",
	Short: "Suggest lexicon spellings with a similar phonetic key",
	Long: `Sounds compares Double Metaphone keys to suggest spellings that may
belong in the same group as <word>. It is a curation aid only; the detector
never uses phonetic matching.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lex, err := loadLexicon(cmd)
		if err != nil {
			return err
		}

		word := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (key %s)\n", word, lexicon.SoundKey(word))

		matches := lex.SoundsLike(word)
		if len(matches) == 0 {
			fmt.Fprintln(out, "  no similar spellings")
			return nil
		}
		for _, m := range matches {
			fmt.Fprintf(out, "  %-10s key %s\n", m, lexicon.SoundKey(m))
		}
		return nil
	},
}

// loadLexicon builds the default lexicon plus any configured extra groups
func loadLexicon(cmd *cobra.Command) (*lexicon.Lexicon, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("lexicon") {
		cfg.Lexicon.ExtraGroups = lexiconFile
	}

	lex := lexicon.Default()
	if cfg.Lexicon.ExtraGroups == "" {
		return lex, nil
	}

	groups, err := lexicon.LoadGroups(cfg.Lexicon.ExtraGroups)
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	return lex.Extend(groups...), nil
}

func init() {
	rootCmd.AddCommand(lexiconCmd)
	lexiconCmd.PersistentFlags().StringVar(&lexiconFile, "lexicon", "", "YAML file with extra homophone groups")
	lexiconCmd.AddCommand(lexiconLookupCmd)
	lexiconCmd.AddCommand(lexiconListCmd)
	lexiconCmd.AddCommand(lexiconSoundsCmd)
}
