package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manuvamsi/IntentMatch/internal/config"
	"github.com/manuvamsi/IntentMatch/internal/dataset"
	"github.com/manuvamsi/IntentMatch/internal/display"
	"github.com/manuvamsi/IntentMatch/internal/intent"
	"github.com/manuvamsi/IntentMatch/internal/semantic"
)

// NewCompareCommand creates the compare command for scoring two prompt files
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <file1> <file2>",
		Short: "Score the similarity of two prompt files",
		Long: `Compare reads two prompt files, runs both through the scoring
pipeline, and prints the similarity report. Markdown files (.md, .markdown)
are reduced to plain text before scoring; everything else is read verbatim.

With --json the full report is emitted as JSON instead of the
human-readable summary.`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	cmd.Flags().Bool("json", false, "emit the full report as JSON")
	cmd.Flags().Bool("semantic", false, "consult the semantic tiebreaker near verdict boundaries")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := loadVocabulary(cfg)
	if err != nil {
		return err
	}

	text1, err := dataset.LoadPromptFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	text2, err := dataset.LoadPromptFile(args[1])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[1], err)
	}

	scorer := intent.NewScorer(store)
	report := scorer.Compare(text1, text2, nil, nil)

	useSemantic, _ := cmd.Flags().GetBool("semantic")
	if useSemantic || cfg.Semantic.Enabled {
		provider := semanticProvider(cfg)
		report = applyTiebreaker(cmd.Context(), provider, report, text1, text2, cmd.ErrOrStderr())
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	printReport(cmd.OutOrStdout(), report)
	return nil
}

// semanticProvider builds the configured provider, or Unavailable when no
// command is configured.
func semanticProvider(cfg *config.Config) semantic.Provider {
	if cfg.Semantic.Command == "" {
		return semantic.Unavailable{}
	}
	provider := semantic.NewCommandProvider(cfg.Semantic.Command, cfg.Semantic.Args...)
	provider.Timeout = cfg.SemanticTimeout()
	return provider
}

// applyTiebreaker blends in a semantic score when the rule-based score falls
// inside a verdict boundary band. Provider failure leaves the rule-based
// report untouched.
func applyTiebreaker(ctx context.Context, provider semantic.Provider, report intent.SimilarityReport, text1, text2 string, errOut io.Writer) intent.SimilarityReport {
	if !semantic.InBoundaryBand(report.SimilarityScore) {
		return report
	}
	score, err := provider.Similarity(ctx, text1, text2)
	if err != nil {
		display.Warning{
			Title:      "Semantic tiebreaker unavailable",
			Message:    err.Error(),
			Suggestion: "The rule-based score stands on its own; check the semantic command configuration.",
		}.Display(errOut)
		return report
	}
	return intent.Reverdict(report, semantic.Blend(report.SimilarityScore, score))
}

func printReport(out io.Writer, report intent.SimilarityReport) {
	palette := display.NewPalette(display.ColorsEnabled())

	fmt.Fprintln(out, palette.Header.Sprint("Similarity Report"))
	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintf(out, "%s %s\n", palette.Label.Sprint("Score:"), palette.Score.Sprintf("%.3f", report.SimilarityScore))
	fmt.Fprintf(out, "%s %s\n", palette.Label.Sprint("Verdict:"), palette.Verdict.Sprint(string(report.Verdict)))
	fmt.Fprintln(out)
	fmt.Fprintln(out, palette.Header.Sprint("Breakdown"))
	fmt.Fprintf(out, "  structural:    %.3f\n", report.Breakdown.Structural)
	fmt.Fprintf(out, "  tag overlap:   %.3f\n", report.Breakdown.TagOverlap)
	fmt.Fprintf(out, "  pattern match: %.3f\n", report.Breakdown.PatternMatch)

	explanation := report.Explanation
	if len(explanation.MatchedTags) > 0 {
		fmt.Fprintf(out, "\n%s %s\n", palette.Label.Sprint("Matched tags:"), strings.Join(explanation.MatchedTags, ", "))
	}
	if len(explanation.KeySimilarities) > 0 {
		fmt.Fprintln(out, palette.Label.Sprint("\nSimilarities:"))
		for _, line := range explanation.KeySimilarities {
			fmt.Fprintf(out, "  - %s\n", line)
		}
	}
	if len(explanation.KeyDifferences) > 0 {
		fmt.Fprintln(out, palette.Label.Sprint("\nDifferences:"))
		for _, line := range explanation.KeyDifferences {
			fmt.Fprintf(out, "  - %s\n", line)
		}
	}
	if len(explanation.StructuralDifferences) > 0 {
		fmt.Fprintln(out, palette.Label.Sprint("\nStructural differences:"))
		for _, line := range explanation.StructuralDifferences {
			fmt.Fprintf(out, "  - %s\n", line)
		}
	}
}
