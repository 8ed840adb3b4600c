package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/manuvamsi/IntentMatch/internal/config"
	"github.com/manuvamsi/IntentMatch/internal/dataset"
	"github.com/manuvamsi/IntentMatch/internal/display"
	"github.com/manuvamsi/IntentMatch/internal/filelock"
	"github.com/manuvamsi/IntentMatch/internal/history"
	"github.com/manuvamsi/IntentMatch/internal/intent"
	"github.com/manuvamsi/IntentMatch/internal/semantic"
	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// duplicatePair is one above-threshold pair from a dataset scan.
type duplicatePair struct {
	Index1 int `json:"index1"`
	Index2 int `json:"index2"`
	intent.SimilarityReport
}

// scanReport is the JSON document written by --report.
type scanReport struct {
	Dataset        string          `json:"dataset"`
	Threshold      float64         `json:"threshold"`
	RecordCount    int             `json:"record_count"`
	PairCount      int             `json:"pair_count"`
	DuplicateCount int             `json:"duplicate_count"`
	Duplicates     []duplicatePair `json:"duplicates"`
}

// NewDedupeCommand creates the dedupe command for scanning a dataset
func NewDedupeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dedupe <dataset.json>",
		Short: "Scan a dataset for near-duplicate records",
		Long: `Dedupe loads a JSON dataset of message records, extracts one
conversation text per record, and scores every pair of records against
each other. Pairs at or above the threshold are reported as duplicates.

With --output a deduplicated copy of the dataset is written, dropping the
higher-indexed member of each duplicate pair. With --watch the vocabulary
directory is monitored and the scan re-runs whenever it changes.`,
		Args: cobra.ExactArgs(1),
		RunE: runDedupe,
	}

	cmd.Flags().Float64("threshold", 0, "minimum similarity to report (default from config, 0.75)")
	cmd.Flags().Int("workers", 0, "scan worker count (0 = one per CPU)")
	cmd.Flags().String("output", "", "write a deduplicated copy of the dataset to this path")
	cmd.Flags().String("report", "", "write the full scan report as JSON to this path")
	cmd.Flags().Bool("history", false, "record the run in the scan history database")
	cmd.Flags().Int("sample", 0, "scan only the first N records")
	cmd.Flags().Bool("watch", false, "rescan when the vocabulary directory changes")
	cmd.Flags().Bool("semantic", false, "consult the semantic tiebreaker near verdict boundaries")

	return cmd
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	workers, _ := cmd.Flags().GetInt("workers")
	if threshold > 0 {
		cfg.Threshold = threshold
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if watch {
		if cfg.VocabDir == "" {
			return fmt.Errorf("--watch requires --vocab-dir or vocab_dir in the config file")
		}
		return watchAndScan(cmd, cfg, args[0])
	}

	store, err := loadVocabulary(cfg)
	if err != nil {
		return err
	}
	return scanOnce(cmd, cfg, store, args[0])
}


// watchAndScan runs an initial scan, then re-runs it each time the
// vocabulary directory changes. Stops on interrupt.
func watchAndScan(cmd *cobra.Command, cfg *config.Config, datasetPath string) error {
	watcher, err := vocab.NewWatcher(cfg.VocabDir)
	if err != nil {
		return fmt.Errorf("watch vocabulary: %w", err)
	}
	defer watcher.Close()

	rescan := make(chan struct{}, 1)
	watcher.OnReload = func(*vocab.Store) {
		select {
		case rescan <- struct{}{}:
		default:
		}
	}
	watcher.OnError = func(err error) {
		display.Warning{
			Title:   "Vocabulary reload failed",
			Message: err.Error(),
		}.Display(cmd.ErrOrStderr())
	}
	watcher.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	if err := scanOnce(cmd, cfg, watcher.Current(), datasetPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching %s for vocabulary changes (ctrl-c to stop)\n", cfg.VocabDir)

	for {
		select {
		case <-rescan:
			fmt.Fprintln(cmd.OutOrStdout(), "\nVocabulary changed, rescanning...")
			if err := scanOnce(cmd, cfg, watcher.Current(), datasetPath); err != nil {
				display.Warning{
					Title:   "Rescan failed",
					Message: err.Error(),
				}.Display(cmd.ErrOrStderr())
			}
		case <-interrupt:
			return nil
		case <-cmd.Context().Done():
			return nil
		}
	}
}

func scanOnce(cmd *cobra.Command, cfg *config.Config, store *vocab.Store, datasetPath string) error {
	log := newLogger(cmd)

	records, err := dataset.Load(datasetPath)
	if err != nil {
		return err
	}

	sample, _ := cmd.Flags().GetInt("sample")
	if sample > 0 && sample < len(records) {
		records = records[:sample]
	}

	conversations := dataset.ExtractConversations(records)
	pairCount := len(conversations) * (len(conversations) - 1) / 2
	fmt.Fprintf(cmd.OutOrStdout(), "Scanning %d records (%d pairs) at threshold %.2f\n",
		len(conversations), pairCount, cfg.Threshold)
	log.LogScanStart(datasetPath, len(conversations), pairCount, cfg.Threshold)

	started := time.Now()
	progress := display.NewPairProgress(cmd.OutOrStdout(), pairCount)
	progress.Start()

	duplicates := scanPairs(cfg, store, conversations, progress.Step)
	progress.Done()
	for _, pair := range duplicates {
		log.Debugf("duplicate pair %d/%d: %.3f (%s)",
			pair.Index1, pair.Index2, pair.SimilarityScore, pair.Verdict)
	}
	log.LogScanComplete(datasetPath, len(duplicates), time.Since(started))

	useSemantic, _ := cmd.Flags().GetBool("semantic")
	if useSemantic || cfg.Semantic.Enabled {
		provider := semanticProvider(cfg)
		duplicates = refineWithSemantic(cmd.Context(), provider, duplicates, conversations, cfg.Threshold, cmd.ErrOrStderr())
	}

	printDuplicates(cmd.OutOrStdout(), duplicates, len(conversations))

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		remove := removalSet(duplicates)
		if err := dataset.SaveDeduplicated(outputPath, records, remove); err != nil {
			return fmt.Errorf("write deduplicated dataset: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s (%d removed)\n",
			len(records)-len(remove), outputPath, len(remove))
	}

	reportPath, _ := cmd.Flags().GetString("report")
	if reportPath != "" {
		report := scanReport{
			Dataset:        datasetPath,
			Threshold:      cfg.Threshold,
			RecordCount:    len(conversations),
			PairCount:      pairCount,
			DuplicateCount: len(duplicates),
			Duplicates:     duplicates,
		}
		if err := filelock.WriteJSONAtomic(reportPath, report); err != nil {
			return fmt.Errorf("write scan report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote scan report to %s\n", reportPath)
	}

	recordHistory, _ := cmd.Flags().GetBool("history")
	if recordHistory || cfg.History.Enabled {
		if err := saveHistory(cmd.Context(), cfg, datasetPath, duplicates, len(conversations), pairCount, started); err != nil {
			display.Warning{
				Title:      "History recording failed",
				Message:    err.Error(),
				Suggestion: "Check that the history database path is writable.",
			}.Display(cmd.ErrOrStderr())
		}
	}
	return nil
}

// scanPairs scores every record pair with a worker pool. Results are
// written into per-pair slots so the output order is deterministic
// regardless of worker scheduling.
func scanPairs(cfg *config.Config, store *vocab.Store, conversations []dataset.Conversation, step func()) []duplicatePair {
	type job struct {
		slot int
		i, j int
	}

	pairCount := len(conversations) * (len(conversations) - 1) / 2
	reports := make([]*duplicatePair, pairCount)

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > pairCount && pairCount > 0 {
		workers = pairCount
	}

	jobs := make(chan job)
	var wg sync.WaitGroup
	var stepMu sync.Mutex

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scorer := intent.NewScorer(store)
			for jb := range jobs {
				report := scorer.Compare(
					conversations[jb.i].Full, conversations[jb.j].Full, nil, nil)
				if report.SimilarityScore >= cfg.Threshold {
					reports[jb.slot] = &duplicatePair{
						Index1:           conversations[jb.i].Index,
						Index2:           conversations[jb.j].Index,
						SimilarityReport: report,
					}
				}
				stepMu.Lock()
				step()
				stepMu.Unlock()
			}
		}()
	}

	slot := 0
	for i := 0; i < len(conversations); i++ {
		for j := i + 1; j < len(conversations); j++ {
			jobs <- job{slot: slot, i: i, j: j}
			slot++
		}
	}
	close(jobs)
	wg.Wait()

	duplicates := make([]duplicatePair, 0)
	for _, report := range reports {
		if report != nil {
			duplicates = append(duplicates, *report)
		}
	}
	return duplicates
}

// refineWithSemantic re-scores boundary-band duplicates with the semantic
// provider and drops pairs whose blended score falls below the threshold.
// The first provider failure disables further consultation for the scan.
func refineWithSemantic(ctx context.Context, provider semantic.Provider, duplicates []duplicatePair, conversations []dataset.Conversation, threshold float64, errOut io.Writer) []duplicatePair {
	texts := make(map[int]string, len(conversations))
	for _, conversation := range conversations {
		texts[conversation.Index] = conversation.Full
	}

	refined := make([]duplicatePair, 0, len(duplicates))
	available := true
	for _, pair := range duplicates {
		if available && semantic.InBoundaryBand(pair.SimilarityScore) {
			score, err := provider.Similarity(ctx, texts[pair.Index1], texts[pair.Index2])
			if err != nil {
				display.Warning{
					Title:      "Semantic tiebreaker unavailable",
					Message:    err.Error(),
					Suggestion: "Remaining pairs keep their rule-based scores.",
				}.Display(errOut)
				available = false
			} else {
				pair.SimilarityReport = intent.Reverdict(pair.SimilarityReport, semantic.Blend(pair.SimilarityScore, score))
			}
		}
		if pair.SimilarityScore >= threshold {
			refined = append(refined, pair)
		}
	}
	return refined
}

// removalSet picks the record indices to drop: the higher-indexed member
// of every duplicate pair.
func removalSet(duplicates []duplicatePair) map[int]bool {
	remove := make(map[int]bool)
	for _, pair := range duplicates {
		higher := pair.Index2
		if pair.Index1 > pair.Index2 {
			higher = pair.Index1
		}
		remove[higher] = true
	}
	return remove
}

func printDuplicates(out io.Writer, duplicates []duplicatePair, recordCount int) {
	palette := display.NewPalette(display.ColorsEnabled())

	if len(duplicates) == 0 {
		fmt.Fprintf(out, "No duplicates found across %d records\n", recordCount)
		return
	}

	sorted := make([]duplicatePair, len(duplicates))
	copy(sorted, duplicates)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].SimilarityScore > sorted[b].SimilarityScore
	})

	fmt.Fprintf(out, "%s\n", palette.Header.Sprintf("Found %d duplicate pairs", len(sorted)))
	for _, pair := range sorted {
		fmt.Fprintf(out, "  records %d and %d: %s (%s)\n",
			pair.Index1, pair.Index2,
			palette.Score.Sprintf("%.3f", pair.SimilarityScore),
			palette.Verdict.Sprint(string(pair.Verdict)))
		if len(pair.Explanation.MatchedTags) > 0 {
			fmt.Fprintf(out, "    matched tags: %v\n", pair.Explanation.MatchedTags)
		}
	}
}

func saveHistory(ctx context.Context, cfg *config.Config, datasetPath string, duplicates []duplicatePair, recordCount, pairCount int, started time.Time) error {
	store, err := history.NewStore(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	pairs := make([]history.DuplicatePair, 0, len(duplicates))
	for _, pair := range duplicates {
		reportJSON, err := json.Marshal(pair.SimilarityReport)
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		pairs = append(pairs, history.DuplicatePair{
			Index1:      pair.Index1,
			Index2:      pair.Index2,
			Similarity:  pair.SimilarityScore,
			Verdict:     string(pair.Verdict),
			MatchedTags: pair.Explanation.MatchedTags,
			ReportJSON:  string(reportJSON),
		})
	}

	run := history.Run{
		Dataset:        datasetPath,
		Threshold:      cfg.Threshold,
		RecordCount:    recordCount,
		PairCount:      pairCount,
		DuplicateCount: len(duplicates),
		StartedAt:      started,
		FinishedAt:     time.Now(),
	}
	_, err = store.RecordRun(ctx, run, pairs)
	return err
}
