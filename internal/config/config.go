// Package config loads IntentMatch configuration from YAML, merging file
// values over defaults and CLI flags over both.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// SemanticConfig configures the optional embedding tiebreaker.
type SemanticConfig struct {
	// Enabled turns on oracle consultation for boundary-band scores.
	Enabled bool `yaml:"enabled"`

	// Command is the external embedding program to invoke.
	Command string `yaml:"command"`

	// Args are passed to the command before the JSON request on stdin.
	Args []string `yaml:"args"`

	// TimeoutSeconds bounds one oracle invocation.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// HistoryConfig configures the SQLite scan history.
type HistoryConfig struct {
	// Enabled turns on run recording.
	Enabled bool `yaml:"enabled"`

	// DBPath is the history database location.
	DBPath string `yaml:"db_path"`
}

// Config holds all IntentMatch settings.
type Config struct {
	// VocabDir points at a vocabulary directory. Empty means the embedded
	// default vocabulary.
	VocabDir string `yaml:"vocab_dir"`

	// Threshold is the minimum similarity for a pair to count as a
	// duplicate during batch scans.
	Threshold float64 `yaml:"threshold"`

	// Workers is the batch-scan worker count (0 = one per CPU).
	Workers int `yaml:"workers"`

	// Semantic configures the embedding tiebreaker.
	Semantic SemanticConfig `yaml:"semantic"`

	// History configures scan history recording.
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		VocabDir:  "",
		Threshold: 0.75,
		Workers:   0,
		Semantic: SemanticConfig{
			Enabled:        false,
			Command:        "",
			TimeoutSeconds: 30,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  ".intentmatch/history.db",
		},
	}
}

// LoadConfig loads configuration from path. A missing file returns the
// defaults without error; a malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	// Merge non-zero file values over defaults.
	if fileCfg.VocabDir != "" {
		cfg.VocabDir = fileCfg.VocabDir
	}
	if fileCfg.Threshold != 0 {
		cfg.Threshold = fileCfg.Threshold
	}
	if fileCfg.Workers != 0 {
		cfg.Workers = fileCfg.Workers
	}
	if fileCfg.Semantic.Enabled {
		cfg.Semantic.Enabled = true
	}
	if fileCfg.Semantic.Command != "" {
		cfg.Semantic.Command = fileCfg.Semantic.Command
	}
	if len(fileCfg.Semantic.Args) > 0 {
		cfg.Semantic.Args = fileCfg.Semantic.Args
	}
	if fileCfg.Semantic.TimeoutSeconds != 0 {
		cfg.Semantic.TimeoutSeconds = fileCfg.Semantic.TimeoutSeconds
	}
	if fileCfg.History.Enabled {
		cfg.History.Enabled = true
	}
	if fileCfg.History.DBPath != "" {
		cfg.History.DBPath = fileCfg.History.DBPath
	}

	return cfg, nil
}

// LoadConfigFromDir loads .intentmatch/config.yaml from the given
// directory, falling back to defaults when absent.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".intentmatch", "config.yaml"))
}

// MergeWithFlags applies CLI flag values over the configuration. Nil
// pointers mean the flag was not set.
func (c *Config) MergeWithFlags(vocabDir *string, threshold *float64, workers *int, semanticCmd *string) {
	if vocabDir != nil && *vocabDir != "" {
		c.VocabDir = *vocabDir
	}
	if threshold != nil {
		c.Threshold = *threshold
	}
	if workers != nil {
		c.Workers = *workers
	}
	if semanticCmd != nil && *semanticCmd != "" {
		c.Semantic.Enabled = true
		c.Semantic.Command = *semanticCmd
	}
}

// SemanticTimeout returns the configured oracle timeout as a duration.
func (c *Config) SemanticTimeout() time.Duration {
	return time.Duration(c.Semantic.TimeoutSeconds) * time.Second
}

// Validate checks configuration values, returning an error on the first
// invalid one.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1], got %v", c.Threshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Semantic.Enabled && c.Semantic.Command == "" {
		return fmt.Errorf("semantic.command cannot be empty when the semantic tiebreaker is enabled")
	}
	if c.Semantic.TimeoutSeconds < 0 {
		return fmt.Errorf("semantic.timeout_seconds must be >= 0, got %d", c.Semantic.TimeoutSeconds)
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	return nil
}
