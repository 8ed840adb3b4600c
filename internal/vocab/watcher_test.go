package vocab

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const watcherWait = 5 * time.Second

func TestWatcherInitialLoad(t *testing.T) {
	dir := writeVocabDir(t, "{}\n", "chat:\n  indicators: [talk]\n", "{}\n")

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	store := w.Current()
	require.NotNil(t, store)
	assert.Equal(t, []string{"chat"}, store.PatternNames())
}

func TestWatcherRequiresLoadableVocabulary(t *testing.T) {
	_, err := NewWatcher(t.TempDir())
	assert.Error(t, err)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := writeVocabDir(t, "{}\n", "chat:\n  indicators: [talk]\n", "{}\n")

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	var reloads atomic.Int32
	w.OnReload = func(*Store) { reloads.Add(1) }
	w.Start()

	patterns := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(patterns, []byte("task:\n  indicators: [do this]\n"), 0o644))

	require.Eventually(t, func() bool {
		return reloads.Load() >= 1
	}, watcherWait, 10*time.Millisecond, "expected a reload after the write")

	assert.Equal(t, []string{"task"}, w.Current().PatternNames())
}

func TestWatcherKeepsSnapshotOnBrokenReload(t *testing.T) {
	dir := writeVocabDir(t, "{}\n", "chat:\n  indicators: [talk]\n", "{}\n")

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	var errors atomic.Int32
	w.OnError = func(error) { errors.Add(1) }
	w.Start()

	patterns := filepath.Join(dir, "patterns.yaml")
	require.NoError(t, os.WriteFile(patterns, []byte("- broken\n- document\n"), 0o644))

	require.Eventually(t, func() bool {
		return errors.Load() >= 1
	}, watcherWait, 10*time.Millisecond, "expected a reload failure")

	// The previous snapshot stays in service.
	assert.Equal(t, []string{"chat"}, w.Current().PatternNames())
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := writeVocabDir(t, "{}\n", "chat:\n  indicators: [talk]\n", "{}\n")

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	defer w.Close()

	var reloads atomic.Int32
	w.OnReload = func(*Store) { reloads.Add(1) }
	w.Start()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644))

	time.Sleep(3 * DefaultDebounceDelay)
	assert.Zero(t, reloads.Load())
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := writeVocabDir(t, "{}\n", "chat:\n  indicators: [talk]\n", "{}\n")

	w, err := NewWatcher(dir)
	require.NoError(t, err)
	w.Start()

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestIsVocabFile(t *testing.T) {
	assert.True(t, isVocabFile("/tmp/v/patterns.yaml"))
	assert.True(t, isVocabFile("synonyms.json"))
	assert.True(t, isVocabFile("intent_tags.yml"))
	assert.False(t, isVocabFile("patterns.txt"))
	assert.False(t, isVocabFile("README.yaml"))
}
