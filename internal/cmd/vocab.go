package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manuvamsi/IntentMatch/internal/display"
	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// NewVocabCommand creates the vocab command group
func NewVocabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Inspect and validate the controlled vocabulary",
	}

	cmd.AddCommand(newVocabShowCommand())
	cmd.AddCommand(newVocabValidateCommand())

	return cmd
}

func newVocabShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active vocabulary",
		Long: `Show prints the patterns, intent tags, and synonym groups the
scorer is currently using, in their matching priority order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := loadVocabulary(cfg)
			if err != nil {
				return err
			}
			printVocabulary(cmd.OutOrStdout(), store, cfg.VocabDir)
			return nil
		},
	}
}

func newVocabValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Validate a vocabulary directory",
		Long: `Validate loads a vocabulary directory and reports whether all
three documents (synonyms, patterns, intent tags) parse and satisfy the
structural rules. It exits non-zero on the first problem found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := vocab.Load(args[0])
			if err != nil {
				return err
			}
			if err := validateStore(store); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vocabulary at %s is valid: %d patterns, %d tags, %d synonym groups\n",
				args[0], len(store.Patterns), len(store.Tags), len(store.Synonyms))
			return nil
		},
	}
}

// validateStore checks structural rules the parser cannot express:
// unique names, non-empty indicator lists, and known required fields.
func validateStore(store *vocab.Store) error {
	seenPatterns := make(map[string]bool)
	for _, pattern := range store.Patterns {
		if seenPatterns[pattern.Name] {
			return fmt.Errorf("duplicate pattern %q", pattern.Name)
		}
		seenPatterns[pattern.Name] = true
		if len(pattern.Indicators) == 0 {
			return fmt.Errorf("pattern %q has no indicators", pattern.Name)
		}
	}

	knownFields := map[string]bool{
		"type": true, "roles": true, "constraints": true, "goal": true,
		"interaction_pattern": true, "metadata": true,
	}
	seenTags := make(map[string]bool)
	for _, tag := range store.Tags {
		if seenTags[tag.Name] {
			return fmt.Errorf("duplicate tag %q", tag.Name)
		}
		seenTags[tag.Name] = true
		if len(tag.Rules.Required) == 0 && len(tag.Rules.Keywords) == 0 {
			return fmt.Errorf("tag %q has neither required fields nor keywords", tag.Name)
		}
		for _, field := range tag.Rules.Required {
			if !knownFields[field] {
				return fmt.Errorf("tag %q requires unknown field %q", tag.Name, field)
			}
		}
		if tag.Parent != "" && !seenTags[tag.Parent] {
			// Parents must be declared before children so priority order
			// stays meaningful.
			return fmt.Errorf("tag %q references undeclared parent %q", tag.Name, tag.Parent)
		}
	}
	return nil
}

func printVocabulary(out io.Writer, store *vocab.Store, dir string) {
	palette := display.NewPalette(display.ColorsEnabled())

	source := dir
	if source == "" {
		source = "embedded defaults"
	}
	fmt.Fprintf(out, "%s (%s)\n\n", palette.Header.Sprint("Vocabulary"), source)

	fmt.Fprintln(out, palette.Label.Sprint("Patterns (priority order):"))
	for _, pattern := range store.Patterns {
		fmt.Fprintf(out, "  %-15s %s\n", pattern.Name, strings.Join(pattern.Indicators, ", "))
	}

	fmt.Fprintln(out, palette.Label.Sprint("\nIntent tags (priority order):"))
	for _, tag := range store.Tags {
		fmt.Fprintf(out, "  %s\n", tag.Name)
		if tag.Description != "" {
			fmt.Fprintf(out, "    %s\n", tag.Description)
		}
		if len(tag.Rules.Required) > 0 {
			fmt.Fprintf(out, "    required: %s\n", strings.Join(tag.Rules.Required, ", "))
		}
		if len(tag.Rules.Keywords) > 0 {
			fmt.Fprintf(out, "    keywords: %s\n", strings.Join(tag.Rules.Keywords, ", "))
		}
	}

	fmt.Fprintln(out, palette.Label.Sprint("\nSynonym groups:"))
	words := make([]string, 0, len(store.Synonyms))
	for word := range store.Synonyms {
		words = append(words, word)
	}
	sort.Strings(words)
	for _, word := range words {
		fmt.Fprintf(out, "  %-15s %s\n", word, strings.Join(store.Synonyms[word], ", "))
	}
}
