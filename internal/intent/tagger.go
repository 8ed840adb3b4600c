package intent

import (
	"sort"
	"strings"

	"github.com/manuvamsi/IntentMatch/internal/vocab"
)

// Tag scoring constants: required-field fraction carries 0.6, keyword
// fraction carries 0.4, and a tag without required fields starts from a
// flat 0.3 base.
const (
	requiredWeight  = 0.6
	keywordWeight   = 0.4
	noRequiredBase  = 0.3
	primaryCutoff   = 0.7
	secondaryCutoff = 0.3
)

// Tagger assigns controlled-vocabulary intent tags to canonical records.
type Tagger struct {
	vocab *vocab.Store
}

// NewTagger creates a tagger bound to a vocabulary snapshot.
func NewTagger(store *vocab.Store) *Tagger {
	return &Tagger{vocab: store}
}

// Tag scores every vocabulary tag against the record and raw text. Tags
// scoring zero are dropped entirely; the rest are sorted descending by
// score with ties broken by vocabulary document order, then partitioned
// into primary (>= 0.7) and secondary ([0.3, 0.7)) lists.
func (t *Tagger) Tag(rec CanonicalRecord, text string) TagAssessment {
	type scored struct {
		name  string
		score float64
	}

	var results []scored
	for _, tag := range t.vocab.Tags {
		score := t.evaluate(tag, rec, text)
		if score > 0 {
			results = append(results, scored{name: tag.Name, score: score})
		}
	}

	// Stable sort keeps vocabulary order as the tie-break.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	assessment := TagAssessment{
		PrimaryTags:   []string{},
		SecondaryTags: []string{},
		Confidence:    make(map[string]float64, len(results)),
	}
	for _, r := range results {
		assessment.Confidence[r.name] = r.score
		switch {
		case r.score >= primaryCutoff:
			assessment.PrimaryTags = append(assessment.PrimaryTags, r.name)
		case r.score >= secondaryCutoff:
			assessment.SecondaryTags = append(assessment.SecondaryTags, r.name)
		}
	}
	return assessment
}

// evaluate computes a tag's confidence in [0,1]. A tag whose required
// fields are entirely unmet scores exactly zero and is excluded from the
// assessment.
func (t *Tagger) evaluate(tag vocab.Tag, rec CanonicalRecord, text string) float64 {
	score := 0.0

	required := tag.Rules.Required
	if len(required) > 0 {
		met := 0
		for _, field := range required {
			if rec.fieldTruthy(field) {
				met++
			}
		}
		requiredScore := float64(met) / float64(len(required))
		if requiredScore == 0 {
			return 0.0
		}
		score += requiredScore * requiredWeight
	} else {
		score += noRequiredBase
	}

	keywords := tag.Rules.Keywords
	if len(keywords) > 0 && text != "" {
		normalized := NormalizeText(text)
		found := 0
		for _, keyword := range keywords {
			if t.keywordPresent(normalized, keyword) {
				found++
			}
		}
		if found > 0 {
			score += float64(found) / float64(len(keywords)) * keywordWeight
		}
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

// keywordPresent checks for the keyword or any of its configured synonyms.
// The keyword list length stays the score denominator, so synonyms widen
// recall without inflating confidence.
func (t *Tagger) keywordPresent(normalized, keyword string) bool {
	if strings.Contains(normalized, NormalizeText(keyword)) {
		return true
	}
	for _, synonym := range t.vocab.SynonymsFor(keyword) {
		if strings.Contains(normalized, NormalizeText(synonym)) {
			return true
		}
	}
	return false
}

// CompareTags computes the tag-overlap similarity of two assessments along
// with the tags they share.
//
// Each tier is compared with Jaccard similarity where an empty union counts
// as 0, not 1: two inputs that both carry no tags get no agreement credit,
// unlike the fingerprint's both-zero count terms. Tiers fuse as
// 0.7*primary + 0.3*secondary. Matched tags are the union of the two tier
// intersections, sorted for deterministic, symmetric output.
func CompareTags(a, b TagAssessment) (float64, []string) {
	primaryA, primaryB := setOf(a.PrimaryTags), setOf(b.PrimaryTags)
	secondaryA, secondaryB := setOf(a.SecondaryTags), setOf(b.SecondaryTags)

	similarity := 0.7*tierJaccard(primaryA, primaryB) + 0.3*tierJaccard(secondaryA, secondaryB)

	matched := make(map[string]struct{})
	for tag := range primaryA {
		if _, ok := primaryB[tag]; ok {
			matched[tag] = struct{}{}
		}
	}
	for tag := range secondaryA {
		if _, ok := secondaryB[tag]; ok {
			matched[tag] = struct{}{}
		}
	}

	return similarity, sortedKeys(matched)
}

// tierJaccard is Jaccard over one tag tier with the empty-union-is-zero
// convention.
func tierJaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0.0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
