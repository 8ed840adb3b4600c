package intent

import (
	"fmt"

	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// Fusion weights for the three component similarities.
const (
	structuralWeight = 0.3
	tagWeight        = 0.5
	patternWeight    = 0.2
)

// Verdict thresholds, closed on the lower bound.
const (
	highThreshold     = 0.85
	moderateThreshold = 0.65
	lowThreshold      = 0.40
)

// relatedPatterns lists interaction patterns that keep partial credit (0.6)
// when they don't match exactly. The table is consulted symmetrically, so
// listing one direction is enough.
var relatedPatterns = map[string][]string{
	"conversational": {"instructional"},
	"instructional":  {"conversational", "example_based"},
	"template":       {"list"},
	"list":           {"template"},
}

// Scorer orchestrates canonicalization, fingerprinting and tagging for a
// pair of inputs and fuses the component similarities into one report. It
// holds no mutable state: every comparison rebuilds its intermediate values
// from scratch.
type Scorer struct {
	canonicalizer *Canonicalizer
	tagger        *Tagger
}

// NewScorer creates a scorer bound to a vocabulary snapshot.
func NewScorer(store *vocab.Store) *Scorer {
	return &Scorer{
		canonicalizer: NewCanonicalizer(store),
		tagger:        NewTagger(store),
	}
}

// Compare runs the full pipeline on both inputs and returns the fused
// similarity report. Scores in the report are rounded to three decimals;
// all internal computation uses full precision.
func (s *Scorer) Compare(text1, text2 string, meta1, meta2 map[string]any) SimilarityReport {
	canonical1 := s.canonicalizer.Canonicalize(text1, meta1)
	canonical2 := s.canonicalizer.Canonicalize(text2, meta2)

	fingerprint1 := Fingerprint(canonical1)
	fingerprint2 := Fingerprint(canonical2)

	tags1 := s.tagger.Tag(canonical1, text1)
	tags2 := s.tagger.Tag(canonical2, text2)

	structural := CompareFingerprints(fingerprint1, fingerprint2)
	tagSim, matchedTags := CompareTags(tags1, tags2)
	patternSim := comparePatterns(canonical1.InteractionPattern, canonical2.InteractionPattern)

	overall := structural*structuralWeight + tagSim*tagWeight + patternSim*patternWeight

	return SimilarityReport{
		SimilarityScore: round3(overall),
		Breakdown: Breakdown{
			Structural:   round3(structural),
			TagOverlap:   round3(tagSim),
			PatternMatch: round3(patternSim),
		},
		Explanation: buildExplanation(canonical1, canonical2, fingerprint1, fingerprint2, matchedTags),
		Verdict:     verdictFor(overall),
		Details: Details{
			Canonical1:   canonical1,
			Canonical2:   canonical2,
			Fingerprint1: fingerprint1,
			Fingerprint2: fingerprint2,
			Tags1:        tags1,
			Tags2:        tags2,
		},
	}
}

// Reverdict returns a copy of the report with the overall score replaced
// and the verdict reclassified. The component breakdown is left alone so
// the rule-based evidence stays visible.
func Reverdict(report SimilarityReport, score float64) SimilarityReport {
	report.SimilarityScore = round3(score)
	report.Verdict = verdictFor(score)
	return report
}

// BatchCompare compares each pair and returns reports for pairs whose
// rounded similarity score meets the threshold, each tagged with its
// originating pair index.
func (s *Scorer) BatchCompare(pairs []TextPair, threshold float64) []BatchResult {
	results := make([]BatchResult, 0)
	for i, pair := range pairs {
		report := s.Compare(pair.Text1, pair.Text2, nil, nil)
		if report.SimilarityScore >= threshold {
			results = append(results, BatchResult{SimilarityReport: report, PairIndex: i})
		}
	}
	return results
}

// comparePatterns scores interaction-pattern agreement: identical patterns
// score 1.0, related patterns 0.6, anything else 0.
func comparePatterns(pattern1, pattern2 string) float64 {
	if pattern1 == pattern2 {
		return 1.0
	}
	if patternsRelated(pattern1, pattern2) || patternsRelated(pattern2, pattern1) {
		return 0.6
	}
	return 0.0
}

func patternsRelated(from, to string) bool {
	for _, related := range relatedPatterns[from] {
		if related == to {
			return true
		}
	}
	return false
}

// verdictFor classifies an (unrounded) overall score. Lower bounds are
// closed: exactly 0.65 is moderate.
func verdictFor(score float64) Verdict {
	switch {
	case score >= highThreshold:
		return VerdictHigh
	case score >= moderateThreshold:
		return VerdictModerate
	case score >= lowThreshold:
		return VerdictLow
	default:
		return VerdictNone
	}
}

// buildExplanation assembles the human-readable account of the comparison.
//
// The complexity-gap note intentionally checks only fingerprint1 minus
// fingerprint2 (not the absolute difference); this one-directional check is
// part of the observed scoring behavior and is preserved as-is.
func buildExplanation(c1, c2 CanonicalRecord, f1, f2 StructuralFingerprint, matchedTags []string) Explanation {
	explanation := Explanation{
		MatchedTags:           matchedTags,
		MatchedPatterns:       []string{},
		StructuralDifferences: []string{},
		KeySimilarities:       []string{},
		KeyDifferences:        []string{},
	}

	if c1.InteractionPattern == c2.InteractionPattern {
		explanation.MatchedPatterns = append(explanation.MatchedPatterns, c1.InteractionPattern)
	}

	if f1.RoleCount != f2.RoleCount {
		explanation.StructuralDifferences = append(explanation.StructuralDifferences,
			fmt.Sprintf("role_count: %d vs %d", f1.RoleCount, f2.RoleCount))
	}
	if f1.ConstraintCount != f2.ConstraintCount {
		explanation.StructuralDifferences = append(explanation.StructuralDifferences,
			fmt.Sprintf("constraint_count: %d vs %d", f1.ConstraintCount, f2.ConstraintCount))
	}

	if c1.Goal == c2.Goal {
		explanation.KeySimilarities = append(explanation.KeySimilarities,
			fmt.Sprintf("Same goal: %s", c1.Goal))
	}
	if f1.HasRoles && f2.HasRoles {
		explanation.KeySimilarities = append(explanation.KeySimilarities, "Both define roles/personas")
	}
	if f1.HasConstraints && f2.HasConstraints {
		explanation.KeySimilarities = append(explanation.KeySimilarities, "Both have constraints")
	}

	if c1.Goal != c2.Goal {
		explanation.KeyDifferences = append(explanation.KeyDifferences,
			fmt.Sprintf("Different goals: %s vs %s", c1.Goal, c2.Goal))
	}
	if f1.ComplexityScore-f2.ComplexityScore > 3 {
		explanation.KeyDifferences = append(explanation.KeyDifferences,
			"Significantly different complexity levels")
	}

	return explanation
}
