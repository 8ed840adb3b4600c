package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manuvamsi/IntentMatch/internal/config"
	"github.com/manuvamsi/IntentMatch/internal/logger"
	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for intentmatch
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intentmatch",
		Short: "Rule-based near-duplicate detection for instruction-tuning datasets",
		Long: `IntentMatch computes deterministic, explainable similarity scores
between prompts and dataset records.

Each input is canonicalized into a structured intent representation,
fingerprinted, tagged against a controlled vocabulary, and the component
similarities are fused into one score with a human-readable explanation.
No embeddings or model calls are involved in the default path, so the
same inputs always produce the same report.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to config file (default .intentmatch/config.yaml)")
	cmd.PersistentFlags().String("vocab-dir", "", "vocabulary directory (default: embedded vocabulary)")
	cmd.PersistentFlags().String("log-level", "info", "log verbosity: trace, debug, info, warn, error")

	cmd.AddCommand(NewCompareCommand())
	cmd.AddCommand(NewDedupeCommand())
	cmd.AddCommand(NewVocabCommand())

	return cmd
}

// loadConfig resolves configuration for a command invocation: file (or
// defaults), then persistent flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	vocabDir, _ := cmd.Flags().GetString("vocab-dir")
	cfg.MergeWithFlags(&vocabDir, nil, nil, nil)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command's logger from the --log-level flag, writing
// to the command's error stream so reports on stdout stay parseable.
func newLogger(cmd *cobra.Command) *logger.ConsoleLogger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.NewConsoleLogger(cmd.ErrOrStderr(), level)
}

// loadVocabulary returns the configured vocabulary snapshot: the directory
// from config when set, otherwise the embedded defaults. A configured but
// unloadable directory is a fatal configuration error.
func loadVocabulary(cfg *config.Config) (*vocab.Store, error) {
	if cfg.VocabDir != "" {
		store, err := vocab.Load(cfg.VocabDir)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		return store, nil
	}
	return vocab.Default()
}
