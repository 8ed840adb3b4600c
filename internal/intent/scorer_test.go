package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	store, err := vocab.Default()
	require.NoError(t, err)
	return NewScorer(store)
}

func TestCompareIdenticalPrompts(t *testing.T) {
	scorer := newTestScorer(t)
	text := "You are Sherlock Holmes. Always use deductive reasoning."

	report := scorer.Compare(text, text, nil, nil)

	assert.Equal(t, 1.0, report.SimilarityScore)
	assert.Equal(t, VerdictHigh, report.Verdict)
	assert.Equal(t, 1.0, report.Breakdown.Structural)
	assert.Equal(t, 1.0, report.Breakdown.TagOverlap)
	assert.Equal(t, 1.0, report.Breakdown.PatternMatch)
	assert.Contains(t, report.Details.Canonical1.Roles, "sherlock")
	assert.Contains(t, report.Details.Canonical1.Constraints, ConstraintStrictBehavior)
}

func TestCompareNearDuplicatePersonas(t *testing.T) {
	scorer := newTestScorer(t)

	report := scorer.Compare(
		"You are Sheldon Cooper. Always use Bazinga!",
		"Act as Sheldon Cooper. Use the catchphrase Bazinga!",
		nil, nil)

	assert.Equal(t, VerdictModerate, report.Verdict)
	assert.GreaterOrEqual(t, report.SimilarityScore, 0.65)
	assert.Less(t, report.SimilarityScore, 0.85)
	assert.Contains(t, report.Explanation.MatchedTags, "roleplay")
	assert.Contains(t, report.Explanation.KeySimilarities, "Both define roles/personas")
	assert.Contains(t, report.Explanation.KeySimilarities, "Both have constraints")
}

func TestCompareUnrelatedPrompts(t *testing.T) {
	scorer := newTestScorer(t)

	report := scorer.Compare(
		"Write a poem about nature.",
		"Extract email addresses from text.",
		nil, nil)

	assert.Less(t, report.SimilarityScore, 0.5)
	assert.Equal(t, VerdictLow, report.Verdict)
	assert.Equal(t, 0.0, report.Breakdown.TagOverlap, "untagged inputs share no intent signal")
	assert.Empty(t, report.Explanation.MatchedTags)
	assert.Contains(t, report.Explanation.KeyDifferences, "Different goals: generation vs extraction")
}

func TestCompareSymmetric(t *testing.T) {
	scorer := newTestScorer(t)
	text1 := "You are a pirate. Never break character."
	text2 := "Act as a pirate captain and always speak in pirate slang."

	forward := scorer.Compare(text1, text2, nil, nil)
	backward := scorer.Compare(text2, text1, nil, nil)

	assert.Equal(t, forward.SimilarityScore, backward.SimilarityScore)
	assert.Equal(t, forward.Verdict, backward.Verdict)
	assert.Equal(t, forward.Breakdown, backward.Breakdown)
	assert.Equal(t, forward.Explanation.MatchedTags, backward.Explanation.MatchedTags)
}

func TestCompareDeterministic(t *testing.T) {
	scorer := newTestScorer(t)
	text1 := "You are a tutor. You must explain step by step."
	text2 := "Act as a teacher. Always explain every step."

	first := scorer.Compare(text1, text2, nil, nil)
	for i := 0; i < 5; i++ {
		again := scorer.Compare(text1, text2, nil, nil)
		assert.Equal(t, first, again)
	}
}

func TestCompareScoreRange(t *testing.T) {
	scorer := newTestScorer(t)
	texts := []string{
		"",
		"You are a pirate.",
		"Write a haiku. Always use nature imagery. Never mention cities.",
		"Extract all names. Only output JSON.",
		"If the user asks a question, respond to the user politely.",
	}

	for _, a := range texts {
		for _, b := range texts {
			report := scorer.Compare(a, b, nil, nil)
			assert.GreaterOrEqual(t, report.SimilarityScore, 0.0)
			assert.LessOrEqual(t, report.SimilarityScore, 1.0)
			for _, component := range []float64{
				report.Breakdown.Structural,
				report.Breakdown.TagOverlap,
				report.Breakdown.PatternMatch,
			} {
				assert.GreaterOrEqual(t, component, 0.0)
				assert.LessOrEqual(t, component, 1.0)
			}
		}
	}
}

func TestComparePatterns(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   string
		expected float64
	}{
		{name: "exact match", p1: "instructional", p2: "instructional", expected: 1.0},
		{name: "related", p1: "conversational", p2: "instructional", expected: 0.6},
		{name: "related reversed", p1: "instructional", p2: "conversational", expected: 0.6},
		{name: "one-way table entry is symmetric", p1: "example_based", p2: "instructional", expected: 0.6},
		{name: "unrelated", p1: "template", p2: "conversational", expected: 0.0},
		{name: "unstructured pair", p1: PatternUnstructured, p2: PatternUnstructured, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, comparePatterns(tt.p1, tt.p2))
		})
	}
}

func TestVerdictBoundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected Verdict
	}{
		{score: 1.0, expected: VerdictHigh},
		{score: 0.85, expected: VerdictHigh},
		{score: 0.849, expected: VerdictModerate},
		{score: 0.65, expected: VerdictModerate},
		{score: 0.649, expected: VerdictLow},
		{score: 0.40, expected: VerdictLow},
		{score: 0.399, expected: VerdictNone},
		{score: 0.0, expected: VerdictNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, verdictFor(tt.score), "score %v", tt.score)
	}
}

func TestReverdict(t *testing.T) {
	scorer := newTestScorer(t)
	report := scorer.Compare("You are a pirate.", "Act as a pirate.", nil, nil)

	updated := Reverdict(report, 0.9)
	assert.Equal(t, 0.9, updated.SimilarityScore)
	assert.Equal(t, VerdictHigh, updated.Verdict)
	assert.Equal(t, report.Breakdown, updated.Breakdown, "component scores keep their rule-based values")
}

func TestComplexityGapNote(t *testing.T) {
	scorer := newTestScorer(t)
	simple := "Hello."
	detailed := "You are a judge. Act as an arbiter. Never guess. Always cite. " +
		"You must follow these instructions. If the user objects, respond to the user."

	report := scorer.Compare(detailed, simple, nil, nil)
	assert.Contains(t, report.Explanation.KeyDifferences, "Significantly different complexity levels")

	reversed := scorer.Compare(simple, detailed, nil, nil)
	assert.NotContains(t, reversed.Explanation.KeyDifferences, "Significantly different complexity levels",
		"the gap note only fires when the first input is the more complex one")
}

func TestBatchCompare(t *testing.T) {
	scorer := newTestScorer(t)
	pairs := []TextPair{
		{Text1: "You are a pirate. Always say arr.", Text2: "You are a pirate. Always say arr."},
		{Text1: "Write a poem about nature.", Text2: "Extract email addresses from text."},
		{Text1: "Act as a chef. Never use salt.", Text2: "Act as a chef. Never use sugar."},
	}

	results := scorer.BatchCompare(pairs, 0.9)

	require.NotEmpty(t, results)
	for _, result := range results {
		assert.GreaterOrEqual(t, result.SimilarityScore, 0.9)
	}
	assert.Equal(t, 0, results[0].PairIndex)

	all := scorer.BatchCompare(pairs, 0.0)
	assert.Len(t, all, len(pairs))
	for i, result := range all {
		assert.Equal(t, i, result.PairIndex)
	}
}
