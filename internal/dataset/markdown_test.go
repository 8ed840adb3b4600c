package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:     "heading markers stripped",
			source:   "# Persona\n\nYou are a pirate.",
			expected: "Persona\nYou are a pirate.",
		},
		{
			name:     "emphasis stripped",
			source:   "You **must** *always* answer.",
			expected: "You must always answer.",
		},
		{
			name:     "list bullets stripped",
			source:   "- never lie\n- always cite",
			expected: "never lie\nalways cite",
		},
		{
			name:     "inline code kept",
			source:   "Return `JSON` only.",
			expected: "Return JSON only.",
		},
		{
			name:     "plain text unchanged",
			source:   "Just a sentence.",
			expected: "Just a sentence.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlainText([]byte(tt.source)))
		})
	}
}

func TestPlainTextFencedCode(t *testing.T) {
	source := "Use this template:\n\n```\nname: value\n```\n"
	stripped := PlainText([]byte(source))
	assert.Contains(t, stripped, "name: value")
	assert.NotContains(t, stripped, "```")
}

func TestLoadPromptFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("markdown is stripped", func(t *testing.T) {
		path := filepath.Join(dir, "prompt.md")
		require.NoError(t, os.WriteFile(path, []byte("# Role\n\nAct as a chef."), 0o644))

		text, err := LoadPromptFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Role\nAct as a chef.", text)
	})

	t.Run("plain text is verbatim", func(t *testing.T) {
		path := filepath.Join(dir, "prompt.txt")
		require.NoError(t, os.WriteFile(path, []byte("# not markdown\n"), 0o644))

		text, err := LoadPromptFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# not markdown\n", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadPromptFile(filepath.Join(dir, "absent.md"))
		assert.Error(t, err)
	})
}
