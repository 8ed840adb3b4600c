// Package semantic defines the optional embedding-based similarity oracle
// consulted when the rule-based score lands near a verdict boundary. The
// rule-based pipeline is authoritative: providers are best-effort, and any
// provider failure leaves the rule-based score unmodified.
package semantic

import (
	"context"
	"errors"
)

// ErrUnavailable signals that no semantic signal can be produced. Callers
// treat it as "no additional signal", never as a comparison failure.
var ErrUnavailable = errors.New("semantic similarity provider unavailable")

// Provider is an opaque semantic similarity oracle returning a score in
// [0,1]. Implementations must honor context cancellation; a slow or broken
// backend returns an error instead of blocking indefinitely.
type Provider interface {
	Similarity(ctx context.Context, text1, text2 string) (float64, error)
}

// Unavailable is the null provider: it never produces a signal. Used when
// no embedding backend is configured.
type Unavailable struct{}

// Similarity always reports ErrUnavailable.
func (Unavailable) Similarity(ctx context.Context, text1, text2 string) (float64, error) {
	return 0, ErrUnavailable
}

// Boundary bands around the verdict thresholds where the rule-based score
// is considered ambiguous. Both ends are inclusive.
var boundaryBands = [][2]float64{
	{0.35, 0.45},
	{0.60, 0.70},
	{0.80, 0.90},
}

// InBoundaryBand reports whether a rule-based score is close enough to a
// verdict boundary to justify consulting the oracle.
func InBoundaryBand(score float64) bool {
	for _, band := range boundaryBands {
		if score >= band[0] && score <= band[1] {
			return true
		}
	}
	return false
}

// Blend fuses the rule-based score with the oracle's signal by simple
// averaging, clamped to [0,1].
func Blend(ruleScore, semanticScore float64) float64 {
	blended := (ruleScore + semanticScore) / 2
	if blended < 0 {
		return 0
	}
	if blended > 1 {
		return 1
	}
	return blended
}
