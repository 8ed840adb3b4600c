// Package vocab loads and holds the controlled vocabularies that drive the
// intent pipeline: synonym expansions, interaction-pattern indicators, and
// intent-tag rule sets.
//
// A Store is immutable after load. Hot reload is done by loading a fresh
// Store and swapping the snapshot pointer, never by mutating in place.
package vocab

// Pattern describes one interaction pattern and the indicator substrings
// that detect it. Patterns are evaluated in document order, first hit wins,
// so the slice preserves the order of the vocabulary file.
type Pattern struct {
	Name       string   `json:"name"`
	Indicators []string `json:"indicators"`
}

// TagRules holds the matching rules for one intent tag.
type TagRules struct {
	// Required lists canonical record fields that must be non-empty for the
	// tag to apply at all.
	Required []string `yaml:"required" json:"required"`

	// Keywords are substrings searched for in the normalized input text.
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Tag is one controlled-vocabulary intent tag definition.
type Tag struct {
	Name        string   `json:"name"`
	Description string   `yaml:"description" json:"description"`
	Rules       TagRules `yaml:"rules" json:"rules"`
	Parent      string   `yaml:"parent" json:"parent"`
}

// Store is an immutable snapshot of the three vocabulary documents.
type Store struct {
	// Synonyms maps a keyword to alternative phrasings treated as equivalent
	// during keyword matching.
	Synonyms map[string][]string

	// Patterns are interaction patterns in evaluation order.
	Patterns []Pattern

	// Tags are intent tag definitions in document order. Document order is
	// the tie-break when tags score equally, so it must be stable.
	Tags []Tag
}

// PatternNames returns the pattern names in evaluation order.
func (s *Store) PatternNames() []string {
	names := make([]string, len(s.Patterns))
	for i, p := range s.Patterns {
		names[i] = p.Name
	}
	return names
}

// TagByName returns the tag definition with the given name, if present.
func (s *Store) TagByName(name string) (Tag, bool) {
	for _, t := range s.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// SynonymsFor returns the synonym list for a keyword, or nil if none are
// defined.
func (s *Store) SynonymsFor(keyword string) []string {
	if s.Synonyms == nil {
		return nil
	}
	return s.Synonyms[keyword]
}
