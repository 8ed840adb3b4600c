package intent

import "math"

// lengthWeights normalize constraint density by input length; shorter texts
// make each constraint count for more. Unknown categories use the medium
// weight.
var lengthWeights = map[string]float64{
	"short":  1.0,
	"medium": 0.7,
	"long":   0.5,
}

// patternWeights contribute to the complexity score. An unrecognized
// pattern carries weight 1.
var patternWeights = map[string]float64{
	PatternUnstructured: 0,
	"conversational":    2,
	"instructional":     3,
	"template":          2.5,
	"conditional":       4,
	"example_based":     3.5,
}

// complexityWeights map the metadata complexity category to a score
// contribution. An unrecognized category carries weight 1.
var complexityWeights = map[string]float64{
	"simple":   0,
	"moderate": 2,
	"complex":  4,
}

// Fingerprint derives the structural feature summary of a canonical record.
// It is a pure, total function: it never fails and depends only on its
// argument.
func Fingerprint(rec CanonicalRecord) StructuralFingerprint {
	return StructuralFingerprint{
		RoleCount:          len(rec.Roles),
		ConstraintCount:    len(rec.Constraints),
		ConstraintDensity:  constraintDensity(rec),
		InteractionPattern: rec.InteractionPattern,
		ComplexityScore:    complexityScore(rec),
		LengthCategory:     metadataString(rec.Metadata, "length", "unknown"),
		HasRoles:           len(rec.Roles) > 0,
		HasConstraints:     len(rec.Constraints) > 0,
		GoalType:           rec.Goal,
	}
}

// constraintDensity is the constraint count weighted by length category and
// capped at 1.0. Higher density means a more restrictive prompt.
func constraintDensity(rec CanonicalRecord) float64 {
	weight, ok := lengthWeights[metadataString(rec.Metadata, "length", "medium")]
	if !ok {
		weight = lengthWeights["medium"]
	}
	return math.Min(float64(len(rec.Constraints))*weight, 1.0)
}

// complexityScore combines role count, constraint count, interaction
// pattern and metadata complexity into a 0-10 scale.
func complexityScore(rec CanonicalRecord) float64 {
	score := 1.5*float64(len(rec.Roles)) + 1.0*float64(len(rec.Constraints))

	if w, ok := patternWeights[rec.InteractionPattern]; ok {
		score += w
	} else {
		score += 1
	}

	if w, ok := complexityWeights[metadataString(rec.Metadata, "complexity", "simple")]; ok {
		score += w
	} else {
		score += 1
	}

	return math.Min(score, 10.0)
}

// CompareFingerprints returns the unweighted arithmetic mean of nine
// per-feature similarity terms, in [0,1].
//
// The partial-credit constants are deliberately asymmetric across features:
// a goal mismatch keeps 0.5 and a length mismatch keeps 0.7, while a
// pattern mismatch or a roles/no-roles split drops to 0. This weighting is
// part of the scoring contract and must not be "evened out".
func CompareFingerprints(a, b StructuralFingerprint) float64 {
	terms := make([]float64, 0, 9)

	if a.InteractionPattern == b.InteractionPattern {
		terms = append(terms, 1.0)
	} else {
		terms = append(terms, 0.0)
	}

	if a.GoalType == b.GoalType {
		terms = append(terms, 1.0)
	} else {
		terms = append(terms, 0.5)
	}

	if a.LengthCategory == b.LengthCategory {
		terms = append(terms, 1.0)
	} else {
		terms = append(terms, 0.7)
	}

	terms = append(terms, countSimilarity(a.RoleCount, b.RoleCount))
	terms = append(terms, countSimilarity(a.ConstraintCount, b.ConstraintCount))

	terms = append(terms, 1.0-math.Abs(a.ConstraintDensity-b.ConstraintDensity))
	terms = append(terms, 1.0-math.Abs(a.ComplexityScore-b.ComplexityScore)/10.0)

	if a.HasRoles == b.HasRoles {
		terms = append(terms, 1.0)
	} else {
		terms = append(terms, 0.0)
	}
	if a.HasConstraints == b.HasConstraints {
		terms = append(terms, 1.0)
	} else {
		terms = append(terms, 0.0)
	}

	sum := 0.0
	for _, t := range terms {
		sum += t
	}
	return sum / float64(len(terms))
}

// countSimilarity compares two non-negative counts. Both zero is a perfect
// match; exactly one zero is a total mismatch; otherwise similarity decays
// with the relative difference.
func countSimilarity(a, b int) float64 {
	switch {
	case a == 0 && b == 0:
		return 1.0
	case a == 0 || b == 0:
		return 0.0
	default:
		return 1.0 - math.Abs(float64(a-b))/math.Max(float64(a), float64(b))
	}
}
