package vocab

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/synonyms.yaml defaults/patterns.yaml defaults/intent_tags.yaml
var defaultFS embed.FS

// Vocabulary document names. Each must exist (with a .yaml, .yml or .json
// extension) in a vocabulary directory for Load to succeed.
const (
	SynonymsDoc   = "synonyms"
	PatternsDoc   = "patterns"
	IntentTagsDoc = "intent_tags"
)

var docExtensions = []string{".yaml", ".yml", ".json"}

// Load reads the three vocabulary documents from dir and returns an
// immutable Store. A missing document is a configuration error; callers are
// expected to fail fast at startup rather than per comparison.
//
// Documents are YAML, which also accepts plain JSON, so hand-edited .json
// vocabularies load unchanged.
func Load(dir string) (*Store, error) {
	synData, err := readDoc(dir, SynonymsDoc)
	if err != nil {
		return nil, err
	}
	patData, err := readDoc(dir, PatternsDoc)
	if err != nil {
		return nil, err
	}
	tagData, err := readDoc(dir, IntentTagsDoc)
	if err != nil {
		return nil, err
	}
	return parse(synData, patData, tagData)
}

// Default returns the embedded default vocabulary. It is used when no
// vocabulary directory is configured.
func Default() (*Store, error) {
	synData, _ := defaultFS.ReadFile("defaults/synonyms.yaml")
	patData, _ := defaultFS.ReadFile("defaults/patterns.yaml")
	tagData, _ := defaultFS.ReadFile("defaults/intent_tags.yaml")
	store, err := parse(synData, patData, tagData)
	if err != nil {
		return nil, fmt.Errorf("embedded default vocabulary: %w", err)
	}
	return store, nil
}

func parse(synData, patData, tagData []byte) (*Store, error) {
	synonyms, err := parseSynonyms(synData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", SynonymsDoc, err)
	}
	patterns, err := parsePatterns(patData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", PatternsDoc, err)
	}
	tags, err := parseTags(tagData)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", IntentTagsDoc, err)
	}
	return &Store{Synonyms: synonyms, Patterns: patterns, Tags: tags}, nil
}

// readDoc locates and reads a vocabulary document, trying each supported
// extension in order.
func readDoc(dir, name string) ([]byte, error) {
	for _, ext := range docExtensions {
		path := filepath.Join(dir, name+ext)
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read vocabulary %s: %w", name, err)
		}
	}
	return nil, fmt.Errorf("vocabulary document %q not found in %s (tried %v)", name, dir, docExtensions)
}

func parseSynonyms(data []byte) (map[string][]string, error) {
	synonyms := make(map[string][]string)
	if len(data) == 0 {
		return synonyms, nil
	}
	if err := yaml.Unmarshal(data, &synonyms); err != nil {
		return nil, err
	}
	return synonyms, nil
}

// parsePatterns decodes the patterns document preserving mapping order.
// Pattern evaluation is first-match-wins, so the file's order is semantic
// and a plain map decode would discard it.
func parsePatterns(data []byte) ([]Pattern, error) {
	mapping, err := rootMapping(data)
	if err != nil || mapping == nil {
		return []Pattern{}, err
	}

	patterns := make([]Pattern, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		name := mapping.Content[i].Value
		var body struct {
			Indicators []string `yaml:"indicators"`
		}
		if err := mapping.Content[i+1].Decode(&body); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
		patterns = append(patterns, Pattern{Name: name, Indicators: body.Indicators})
	}
	return patterns, nil
}

// parseTags decodes the intent_tags document preserving mapping order, which
// is the deterministic tie-break for equally scored tags.
func parseTags(data []byte) ([]Tag, error) {
	mapping, err := rootMapping(data)
	if err != nil || mapping == nil {
		return []Tag{}, err
	}

	tags := make([]Tag, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		name := mapping.Content[i].Value
		var body struct {
			Description string   `yaml:"description"`
			Rules       TagRules `yaml:"rules"`
			Parent      string   `yaml:"parent"`
		}
		if err := mapping.Content[i+1].Decode(&body); err != nil {
			return nil, fmt.Errorf("intent tag %q: %w", name, err)
		}
		tags = append(tags, Tag{
			Name:        name,
			Description: body.Description,
			Rules:       body.Rules,
			Parent:      body.Parent,
		})
	}
	return tags, nil
}

// rootMapping unmarshals data and returns the top-level mapping node, or nil
// for an empty document.
func rootMapping(data []byte) (*yaml.Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}
	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at document root, got %v", node.Kind)
	}
	return node, nil
}
