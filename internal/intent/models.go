// Package intent implements the four-stage similarity pipeline:
// canonicalization, structural fingerprinting, intent tagging, and weighted
// score fusion. Every stage is a pure function of its inputs and an
// immutable vocabulary snapshot, so identical inputs always produce
// identical reports.
package intent

// Input type classifications for a canonical record.
const (
	TypePrompt  = "prompt"
	TypeDataset = "dataset"
)

// Goal classifications, checked in priority order during canonicalization.
const (
	GoalRoleplay          = "roleplay"
	GoalGeneration        = "generation"
	GoalQuestionAnswering = "question_answering"
	GoalExtraction        = "extraction"
	GoalGeneral           = "general"
)

// PatternUnstructured is assigned when no interaction-pattern indicator
// matches.
const PatternUnstructured = "unstructured"

// Constraint kinds extracted from constraint-bearing sentences.
const (
	ConstraintStrictBehavior      = "strict_behavior"
	ConstraintProhibition         = "prohibition"
	ConstraintRequirement         = "requirement"
	ConstraintCatchphraseRequired = "catchphrase_required"
)

// Verdict classifies an overall similarity score. Boundaries are closed on
// the lower end: a score of exactly 0.65 is moderate, not low.
type Verdict string

const (
	VerdictHigh     Verdict = "high_similarity"
	VerdictModerate Verdict = "moderate_similarity"
	VerdictLow      Verdict = "low_similarity"
	VerdictNone     Verdict = "no_similarity"
)

// CanonicalRecord is the normalized structured representation of one text
// input. Goal and InteractionPattern are always single-valued; absence maps
// to GoalGeneral and PatternUnstructured, never to an empty string.
type CanonicalRecord struct {
	Type               string         `json:"type"`
	Roles              []string       `json:"roles"`
	Constraints        []string       `json:"constraints"`
	Goal               string         `json:"goal"`
	InteractionPattern string         `json:"interaction_pattern"`
	Metadata           map[string]any `json:"metadata"`
}

// StructuralFingerprint is a fixed-shape feature summary of one canonical
// record. It is a pure function of the record and has no lifecycle of its
// own.
type StructuralFingerprint struct {
	RoleCount          int     `json:"role_count"`
	ConstraintCount    int     `json:"constraint_count"`
	ConstraintDensity  float64 `json:"constraint_density"` // [0,1]
	InteractionPattern string  `json:"interaction_pattern"`
	ComplexityScore    float64 `json:"complexity_score"` // [0,10]
	LengthCategory     string  `json:"length_category"`
	HasRoles           bool    `json:"has_roles"`
	HasConstraints     bool    `json:"has_constraints"`
	GoalType           string  `json:"goal_type"`
}

// TagAssessment holds the intent tags assigned to one record. Primary tags
// scored >= 0.7, secondary tags in [0.3, 0.7). Confidence covers every tag
// with a positive score, including those below 0.3 that appear in neither
// list. Tags scoring zero are omitted entirely.
type TagAssessment struct {
	PrimaryTags   []string           `json:"primary_tags"`
	SecondaryTags []string           `json:"secondary_tags"`
	Confidence    map[string]float64 `json:"confidence"`
}

// Breakdown holds the three component similarities, each in [0,1].
type Breakdown struct {
	Structural   float64 `json:"structural"`
	TagOverlap   float64 `json:"tag_overlap"`
	PatternMatch float64 `json:"pattern_match"`
}

// Explanation is the human-readable account of why two inputs scored the
// way they did.
type Explanation struct {
	MatchedTags           []string `json:"matched_tags"`
	MatchedPatterns       []string `json:"matched_patterns"`
	StructuralDifferences []string `json:"structural_differences"`
	KeySimilarities       []string `json:"key_similarities"`
	KeyDifferences        []string `json:"key_differences"`
}

// Details embeds both sides' intermediate representations for auditability.
type Details struct {
	Canonical1   CanonicalRecord       `json:"canonical1"`
	Canonical2   CanonicalRecord       `json:"canonical2"`
	Fingerprint1 StructuralFingerprint `json:"fingerprint1"`
	Fingerprint2 StructuralFingerprint `json:"fingerprint2"`
	Tags1        TagAssessment         `json:"tags1"`
	Tags2        TagAssessment         `json:"tags2"`
}

// SimilarityReport is the full result of comparing two inputs. All scores
// are rounded to three decimals at construction; internal computation uses
// full precision.
type SimilarityReport struct {
	SimilarityScore float64     `json:"similarity_score"`
	Breakdown       Breakdown   `json:"breakdown"`
	Explanation     Explanation `json:"explanation"`
	Verdict         Verdict     `json:"verdict"`
	Details         Details     `json:"details"`
}

// TextPair is one pair of inputs for batch comparison.
type TextPair struct {
	Text1 string
	Text2 string
}

// BatchResult is a similarity report tagged with the index of the pair it
// originated from.
type BatchResult struct {
	SimilarityReport
	PairIndex int `json:"pair_index"`
}

// fieldTruthy reports whether a canonical field named by a tag's required
// list is present and non-empty. Unknown field names are never truthy.
func (r CanonicalRecord) fieldTruthy(name string) bool {
	switch name {
	case "type":
		return r.Type != ""
	case "roles":
		return len(r.Roles) > 0
	case "constraints":
		return len(r.Constraints) > 0
	case "goal":
		return r.Goal != ""
	case "interaction_pattern":
		return r.InteractionPattern != ""
	case "metadata":
		return len(r.Metadata) > 0
	default:
		return false
	}
}
