package semantic

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use /bin/sh")
	}
}

func TestCommandProviderSuccess(t *testing.T) {
	requireShell(t)

	provider := NewCommandProvider("sh", "-c", `echo '{"score": 0.82}'`)
	score, err := provider.Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.82, score)
}

func TestCommandProviderMixedOutput(t *testing.T) {
	requireShell(t)

	provider := NewCommandProvider("sh", "-c", `printf 'loading model...\n{"score": 0.4}\n'`)
	score, err := provider.Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.4, score)
}

func TestCommandProviderReceivesRequest(t *testing.T) {
	requireShell(t)

	// The script verifies both texts arrive on stdin before answering.
	script := `read input
case "$input" in
  *"left text"*"right text"*) echo '{"score": 1.0}' ;;
  *) echo '{"score": 0.0}' ;;
esac`
	provider := NewCommandProvider("sh", "-c", script)
	score, err := provider.Similarity(context.Background(), "left text", "right text")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
}

func TestCommandProviderFailures(t *testing.T) {
	requireShell(t)

	t.Run("empty command", func(t *testing.T) {
		provider := &CommandProvider{}
		_, err := provider.Similarity(context.Background(), "a", "b")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("command exits nonzero", func(t *testing.T) {
		provider := NewCommandProvider("sh", "-c", "exit 3")
		_, err := provider.Similarity(context.Background(), "a", "b")
		assert.Error(t, err)
	})

	t.Run("no score in output", func(t *testing.T) {
		provider := NewCommandProvider("sh", "-c", "echo not json at all")
		_, err := provider.Similarity(context.Background(), "a", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no JSON score")
	})

	t.Run("score out of range", func(t *testing.T) {
		provider := NewCommandProvider("sh", "-c", `echo '{"score": 3.5}'`)
		_, err := provider.Similarity(context.Background(), "a", "b")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("timeout", func(t *testing.T) {
		provider := NewCommandProvider("sh", "-c", "sleep 5")
		provider.Timeout = 50 * time.Millisecond
		start := time.Now()
		_, err := provider.Similarity(context.Background(), "a", "b")
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}

func TestParseScore(t *testing.T) {
	t.Run("clean JSON", func(t *testing.T) {
		score, err := parseScore(`{"score": 0.75}`)
		require.NoError(t, err)
		assert.Equal(t, 0.75, score)
	})

	t.Run("embedded JSON", func(t *testing.T) {
		score, err := parseScore("noise before {\"score\": 0.5} noise after")
		require.NoError(t, err)
		assert.Equal(t, 0.5, score)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseScore("nothing useful")
		assert.Error(t, err)
	})
}
