// Package matching ranks job postings against a free-text query with structured filters.
package matching

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed matching.yaml
var defaultDictionaryYAML []byte

// Category is a domain tag with its ordered keyword phrases.
type Category struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

// SalaryKeywords holds the phrases that select the salary filter kind.
type SalaryKeywords struct {
	Max          []string `yaml:"max_keywords"`
	Min          []string `yaml:"min_keywords"`
	RangeMarkers []string `yaml:"range_markers"`
}

// AvailabilityMode is a family of availability phrases. A posting earns Points when the
// query mentions one of QueryKeywords and the posting availability one of PostingKeywords.
type AvailabilityMode struct {
	Name            string   `yaml:"name"`
	QueryKeywords   []string `yaml:"query_keywords"`
	PostingKeywords []string `yaml:"posting_keywords"`
	Points          float64  `yaml:"points"`
}

// Dictionary is the ordered keyword configuration of the matching engine.
// It is read-only after parsing and safe for concurrent use.
type Dictionary struct {
	Categories   []Category         `yaml:"categories"`
	Salary       SalaryKeywords     `yaml:"salary"`
	Availability []AvailabilityMode `yaml:"availability"`
}

var (
	defaultDictionary     *Dictionary
	defaultDictionaryOnce sync.Once
)

// DefaultDictionary returns the embedded dictionary, parsed once per process.
func DefaultDictionary() *Dictionary {
	defaultDictionaryOnce.Do(func() {
		d, err := ParseDictionary(defaultDictionaryYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded matching.yaml is invalid: %v", err))
		}
		defaultDictionary = d
	})
	return defaultDictionary
}

// ParseDictionary parses and validates a YAML dictionary. Keywords are lower-cased.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary YAML: %w", err)
	}
	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Dictionary) normalize() {
	for i := range d.Categories {
		d.Categories[i].Tag = strings.TrimSpace(d.Categories[i].Tag)
		lowerAll(d.Categories[i].Keywords)
	}
	lowerAll(d.Salary.Max)
	lowerAll(d.Salary.Min)
	lowerAll(d.Salary.RangeMarkers)
	for i := range d.Availability {
		lowerAll(d.Availability[i].QueryKeywords)
		lowerAll(d.Availability[i].PostingKeywords)
	}
}

// lowerAll lower-cases in place. Range markers rely on surrounding spaces, so no trimming.
func lowerAll(values []string) {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
}

// Validate checks the dictionary for structural errors.
func (d *Dictionary) Validate() error {
	if len(d.Categories) == 0 {
		return fmt.Errorf("dictionary error: at least one category is required")
	}
	seen := make(map[string]bool, len(d.Categories))
	for i, c := range d.Categories {
		if c.Tag == "" {
			return fmt.Errorf("dictionary error: category %d has an empty tag", i)
		}
		if seen[c.Tag] {
			return fmt.Errorf("dictionary error: duplicate category %q", c.Tag)
		}
		seen[c.Tag] = true
		if len(c.Keywords) == 0 {
			return fmt.Errorf("dictionary error: category %q has no keywords", c.Tag)
		}
		if err := checkKeywords("category "+c.Tag, c.Keywords); err != nil {
			return err
		}
	}

	if err := checkKeywords("salary.max_keywords", d.Salary.Max); err != nil {
		return err
	}
	if err := checkKeywords("salary.min_keywords", d.Salary.Min); err != nil {
		return err
	}
	if err := checkKeywords("salary.range_markers", d.Salary.RangeMarkers); err != nil {
		return err
	}

	for i, m := range d.Availability {
		if m.Name == "" {
			return fmt.Errorf("dictionary error: availability mode %d has an empty name", i)
		}
		if m.Points <= 0 {
			return fmt.Errorf("dictionary error: availability mode %q must award positive points", m.Name)
		}
		if len(m.QueryKeywords) == 0 || len(m.PostingKeywords) == 0 {
			return fmt.Errorf("dictionary error: availability mode %q needs query and posting keywords", m.Name)
		}
		if err := checkKeywords("availability "+m.Name, m.QueryKeywords); err != nil {
			return err
		}
		if err := checkKeywords("availability "+m.Name, m.PostingKeywords); err != nil {
			return err
		}
	}
	return nil
}

func checkKeywords(owner string, keywords []string) error {
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("dictionary error: %s contains an empty keyword", owner)
		}
	}
	return nil
}

// containsAny reports whether text contains any of the phrases as a substring.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
