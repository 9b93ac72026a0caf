package search

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keyword categories.
const (
	CategoryTool          = "tool"
	CategoryTechnique     = "technique"
	CategoryTechnology    = "technology"
	CategoryFramework     = "framework"
	CategoryVulnerability = "vulnerability"
	CategoryGeneral       = "general"
)

//go:embed keywords.yaml
var defaultDictionaryYAML []byte

// KeywordEntry is one term of the domain dictionary.
type KeywordEntry struct {
	Term     string   `yaml:"term" json:"term"`
	Category string   `yaml:"category" json:"category"`
	Weight   float64  `yaml:"weight" json:"weight"`
	Synonyms []string `yaml:"synonyms" json:"synonyms,omitempty"`
}

// LoadDictionary decodes a YAML list of keyword entries. Terms and synonyms
// are normalised to lower case and weights clamped to [0, 1].
func LoadDictionary(r io.Reader) ([]KeywordEntry, error) {
	var entries []KeywordEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("search: decode dictionary: %w", err)
	}
	out := make([]KeywordEntry, 0, len(entries))
	for i, e := range entries {
		e.Term = normalizePhrase(e.Term)
		if e.Term == "" {
			return nil, fmt.Errorf("search: dictionary entry %d has no term", i)
		}
		if e.Category == "" {
			e.Category = CategoryGeneral
		}
		e.Weight = min(1, max(0, e.Weight))
		syns := make([]string, 0, len(e.Synonyms))
		for _, s := range e.Synonyms {
			if s = normalizePhrase(s); s != "" && s != e.Term {
				syns = append(syns, s)
			}
		}
		e.Synonyms = syns
		out = append(out, e)
	}
	return out, nil
}

// DefaultDictionary returns the built-in security dictionary.
func DefaultDictionary() []KeywordEntry {
	entries, err := LoadDictionary(bytes.NewReader(defaultDictionaryYAML))
	if err != nil {
		panic(err)
	}
	return entries
}

// normalizePhrase lower-cases s and joins its cleaned words with single spaces.
func normalizePhrase(s string) string {
	return strings.Join(tokenize(s), " ")
}
