package intent

import (
	"regexp"
	"sort"
	"strings"

	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// rolePatterns are persona-assignment patterns applied in fixed order
// against the normalized (already lowercased) text. All capture groups are
// unioned into the role set.
var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`act as (?:a |an )?(\w+)`),
	regexp.MustCompile(`you are (?:a |an )?(\w+)`),
	regexp.MustCompile(`pretend to be (?:a |an )?(\w+)`),
	regexp.MustCompile(`role(?:play)? (?:as )?(?:a |an )?(\w+)`),
	regexp.MustCompile(`persona:\s*(\w+)`),
}

// goalLabelPatterns match explicitly labelled goal fields, checked before
// any keyword inference.
var goalLabelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`goal:\s*(\w+)`),
	regexp.MustCompile(`objective:\s*(\w+)`),
	regexp.MustCompile(`purpose:\s*(\w+)`),
}

// goalRules are keyword rules in priority order; the first rule with any
// keyword present wins.
var goalRules = []struct {
	goal     string
	keywords []string
}{
	{GoalRoleplay, []string{"roleplay", "act as", "pretend"}},
	{GoalGeneration, []string{"write", "create", "generate"}},
	{GoalQuestionAnswering, []string{"answer", "respond", "explain"}},
	{GoalExtraction, []string{"extract", "parse", "identify"}},
}

// constraintKeywords flag a sentence as constraint-bearing. Scanned in this
// order; the first keyword found triggers classification for the sentence.
var constraintKeywords = []string{
	"always", "never", "must", "should", "cannot", "should not",
	"only", "strict", "required", "forbidden",
}

var (
	catchphraseRE      = regexp.MustCompile(`catchphrase|signature phrase`)
	sentenceSplitRE    = regexp.MustCompile(`[.!?]`)
	complexityMarkerRE = regexp.MustCompile(`[:\-*]`)
)

// Canonicalizer converts raw text into a structured intent representation
// using an immutable vocabulary snapshot.
type Canonicalizer struct {
	vocab *vocab.Store
}

// NewCanonicalizer creates a canonicalizer bound to a vocabulary snapshot.
func NewCanonicalizer(store *vocab.Store) *Canonicalizer {
	return &Canonicalizer{vocab: store}
}

// Canonicalize converts text into its canonical record. It is total: empty
// or malformed text yields the all-default record rather than an error.
func (c *Canonicalizer) Canonicalize(text string, metadata map[string]any) CanonicalRecord {
	normalized := NormalizeText(text)

	return CanonicalRecord{
		Type:               detectType(text, metadata),
		Roles:              extractRoles(normalized),
		Constraints:        extractConstraints(normalized),
		Goal:               extractGoal(normalized),
		InteractionPattern: c.detectInteractionPattern(text),
		Metadata:           extractMetadata(text, metadata),
	}
}

// detectType prefers a caller-supplied type; otherwise a text repeating the
// "example:" or "input:" markers more than twice is treated as a dataset.
func detectType(text string, metadata map[string]any) string {
	if metadata != nil {
		if t, ok := metadata["type"].(string); ok && t != "" {
			return t
		}
	}
	if strings.Count(text, "example:") > 2 || strings.Count(text, "input:") > 2 {
		return TypeDataset
	}
	return TypePrompt
}

func extractRoles(normalized string) []string {
	seen := make(map[string]struct{})
	for _, pattern := range rolePatterns {
		for _, match := range pattern.FindAllStringSubmatch(normalized, -1) {
			role := strings.ToLower(match[1])
			seen[role] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// extractConstraints splits the text into sentence-like segments and
// classifies each constraint-bearing segment into exactly one kind, first
// match wins. The catchphrase check runs over the whole text independently.
func extractConstraints(normalized string) []string {
	seen := make(map[string]struct{})

	for _, sentence := range sentenceSplitRE.Split(normalized, -1) {
		for _, keyword := range constraintKeywords {
			if !strings.Contains(sentence, keyword) {
				continue
			}
			switch {
			case strings.Contains(sentence, "always"):
				seen[ConstraintStrictBehavior] = struct{}{}
			case strings.Contains(sentence, "never"), strings.Contains(sentence, "cannot"):
				seen[ConstraintProhibition] = struct{}{}
			case strings.Contains(sentence, "must"), strings.Contains(sentence, "required"):
				seen[ConstraintRequirement] = struct{}{}
			}
			break
		}
	}

	if catchphraseRE.MatchString(normalized) {
		seen[ConstraintCatchphraseRequired] = struct{}{}
	}

	return sortedKeys(seen)
}

func extractGoal(normalized string) string {
	for _, pattern := range goalLabelPatterns {
		if match := pattern.FindStringSubmatch(normalized); match != nil {
			return strings.ToLower(match[1])
		}
	}

	for _, rule := range goalRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.goal
			}
		}
	}
	return GoalGeneral
}

// detectInteractionPattern walks the configured patterns in vocabulary
// order; the first pattern with an indicator hit wins.
func (c *Canonicalizer) detectInteractionPattern(text string) string {
	lowered := strings.ToLower(text)
	for _, pattern := range c.vocab.Patterns {
		for _, indicator := range pattern.Indicators {
			if strings.Contains(lowered, indicator) {
				return pattern.Name
			}
		}
	}
	return PatternUnstructured
}

// extractMetadata copies caller metadata and derives the length and
// complexity categories from the raw text.
func extractMetadata(text string, provided map[string]any) map[string]any {
	metadata := make(map[string]any, len(provided)+2)
	for k, v := range provided {
		metadata[k] = v
	}

	wordCount := len(strings.Fields(text))
	switch {
	case wordCount < 50:
		metadata["length"] = "short"
	case wordCount < 200:
		metadata["length"] = "medium"
	default:
		metadata["length"] = "long"
	}

	score := float64(len(sentenceSplitRE.FindAllString(text, -1)))*0.5 +
		float64(strings.Count(text, "\n"))*0.3 +
		float64(len(complexityMarkerRE.FindAllString(text, -1)))*0.2

	switch {
	case score < 5:
		metadata["complexity"] = "simple"
	case score < 15:
		metadata["complexity"] = "moderate"
	default:
		metadata["complexity"] = "complex"
	}

	return metadata
}

// sortedKeys returns map keys sorted, giving sets a stable serialized form.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// metadataString fetches a string-valued metadata key, with a default.
func metadataString(metadata map[string]any, key, fallback string) string {
	if metadata != nil {
		if v, ok := metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}
