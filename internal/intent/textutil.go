package intent

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeText collapses runs of whitespace to single spaces, trims, and
// lowercases. All substring and keyword matching in the pipeline operates on
// normalized text.
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " ")))
}

// FoundKeywords returns the subset of keywords that occur as substrings of
// the normalized text. The returned keywords keep their original spelling.
func FoundKeywords(text string, keywords []string) []string {
	normalized := NormalizeText(text)
	var found []string
	for _, keyword := range keywords {
		if strings.Contains(normalized, NormalizeText(keyword)) {
			found = append(found, keyword)
		}
	}
	return found
}

// Jaccard computes intersection-over-union for two string sets. Two empty
// sets are treated as identical (1.0); exactly one empty set yields 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
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

// CosineSimilarity computes the cosine of the angle between two equal-length
// feature vectors. Mismatched lengths are a precondition violation and
// return an error rather than a silent partial result.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length, got %d and %d", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	if magA == 0 || magB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB)), nil
}

// round3 rounds to three decimals. Applied once, at report construction.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// setOf builds a membership set from a slice.
func setOf(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
