package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun() (Run, []DuplicatePair) {
	started := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	run := Run{
		Dataset:        "dataset.json",
		Threshold:      0.75,
		RecordCount:    10,
		PairCount:      45,
		DuplicateCount: 2,
		StartedAt:      started,
		FinishedAt:     started.Add(3 * time.Second),
	}
	pairs := []DuplicatePair{
		{Index1: 0, Index2: 4, Similarity: 0.91, Verdict: "high_similarity",
			MatchedTags: []string{"roleplay"}, ReportJSON: `{"similarity_score":0.91}`},
		{Index1: 2, Index2: 7, Similarity: 0.78, Verdict: "moderate_similarity",
			MatchedTags: []string{}},
	}
	return run, pairs
}

func TestRecordAndFetchRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run, pairs := sampleRun()
	runID, err := store.RecordRun(ctx, run, pairs)
	require.NoError(t, err)
	require.NotEmpty(t, runID, "a run ID is generated when none is supplied")

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "dataset.json", runs[0].Dataset)
	assert.Equal(t, 0.75, runs[0].Threshold)
	assert.Equal(t, 2, runs[0].DuplicateCount)

	stored, err := store.GetPairs(ctx, runID)
	require.NoError(t, err)
	require.Len(t, stored, 2)

	// Ordered by similarity descending.
	assert.Equal(t, 0.91, stored[0].Similarity)
	assert.Equal(t, []string{"roleplay"}, stored[0].MatchedTags)
	assert.Equal(t, `{"similarity_score":0.91}`, stored[0].ReportJSON)

	assert.Equal(t, 0.78, stored[1].Similarity)
	assert.Empty(t, stored[1].MatchedTags)
	assert.Equal(t, "{}", stored[1].ReportJSON, "empty report defaults to an empty object")
}

func TestRecordRunKeepsSuppliedID(t *testing.T) {
	store := newTestStore(t)

	run, _ := sampleRun()
	run.ID = "fixed-id"
	runID, err := store.RecordRun(context.Background(), run, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", runID)
}

func TestListRunsOrderAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run, _ := sampleRun()
		run.StartedAt = base.Add(time.Duration(i) * time.Hour)
		run.FinishedAt = run.StartedAt.Add(time.Second)
		_, err := store.RecordRun(ctx, run, nil)
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.After(runs[1].StartedAt), "newest run first")
}

func TestGetPairsUnknownRun(t *testing.T) {
	store := newTestStore(t)

	pairs, err := store.GetPairs(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "history.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
