package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Similarity(context.Background(), "a", "b")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestInBoundaryBand(t *testing.T) {
	tests := []struct {
		score    float64
		expected bool
	}{
		{score: 0.35, expected: true},
		{score: 0.40, expected: true},
		{score: 0.45, expected: true},
		{score: 0.34, expected: false},
		{score: 0.46, expected: false},
		{score: 0.60, expected: true},
		{score: 0.65, expected: true},
		{score: 0.70, expected: true},
		{score: 0.55, expected: false},
		{score: 0.80, expected: true},
		{score: 0.85, expected: true},
		{score: 0.90, expected: true},
		{score: 0.91, expected: false},
		{score: 0.0, expected: false},
		{score: 1.0, expected: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, InBoundaryBand(tt.score), "score %v", tt.score)
	}
}

func TestBlend(t *testing.T) {
	assert.InDelta(t, 0.5, Blend(0.4, 0.6), 1e-9)
	assert.InDelta(t, 0.65, Blend(0.65, 0.65), 1e-9)
	assert.Equal(t, 0.0, Blend(-1, 0))
	assert.Equal(t, 1.0, Blend(1.5, 1.5))
}
