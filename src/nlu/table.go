// Package nlu implements the lexical intent matcher and the entity extractor.
//
// Both are driven by an ordered keyword table (tables.yaml, embedded) so the
// first-match tie-break stays visible in data rather than in control flow.
package nlu

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"hotel_concierge/src/model"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTable []byte

// IntentRule is one row of the ordered intent table.
type IntentRule struct {
	Name       model.IntentName `yaml:"name"`
	Confidence float64          `yaml:"confidence"`
	Category   string           `yaml:"entities"`
	Keywords   []string         `yaml:"keywords"`
}

// Probe sets Field to Value when any keyword is contained in the utterance.
type Probe struct {
	Field    string   `yaml:"field"`
	Value    string   `yaml:"value"`
	Keywords []string `yaml:"keywords"`
}

// Table is the parsed keyword table behind the matcher and the extractor.
type Table struct {
	Fallback  IntentRule   `yaml:"fallback"`
	Intents   []IntentRule `yaml:"intents"`
	Sentiment struct {
		Positive []string `yaml:"positive"`
		Negative []string `yaml:"negative"`
	} `yaml:"sentiment"`
	Urgency struct {
		High   []string `yaml:"high"`
		Medium []string `yaml:"medium"`
	} `yaml:"urgency"`
	Decisions struct {
		Affirm  []string `yaml:"affirm"`
		Cancel  []string `yaml:"cancel"`
		Decline []string `yaml:"decline"`
		Idioms  []string `yaml:"idioms"`
	} `yaml:"decisions"`
	NameStopwords []string           `yaml:"name_stopwords"`
	Probes        map[string][]Probe `yaml:"probes"`

	stopwords map[string]struct{}
}

// DefaultTable parses the embedded table. It panics on a malformed embed,
// which can only happen at build time.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("nlu: embedded table: %v", err))
	}
	return t
}

// LoadTable reads a replacement table from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading intent table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes, validates and normalizes a YAML table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("error parsing intent table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.normalize()
	return &t, nil
}

func (t *Table) validate() error {
	if len(t.Intents) == 0 {
		return errors.New("intent table has no intents")
	}
	if t.Fallback.Name == "" {
		return errors.New("intent table has no fallback")
	}
	seen := make(map[model.IntentName]struct{}, len(t.Intents))
	for i, rule := range append([]IntentRule{t.Fallback}, t.Intents...) {
		if rule.Name == "" {
			return fmt.Errorf("intent %d has no name", i)
		}
		if rule.Confidence <= 0 || rule.Confidence > 1 {
			return fmt.Errorf("intent %s: confidence %.2f outside (0,1]", rule.Name, rule.Confidence)
		}
		if _, dup := seen[rule.Name]; dup {
			return fmt.Errorf("intent %s declared twice", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if i > 0 && len(rule.Keywords) == 0 {
			return fmt.Errorf("intent %s has no keywords", rule.Name)
		}
	}
	return nil
}

func (t *Table) normalize() {
	for i := range t.Intents {
		t.Intents[i].Keywords = normalizeAll(t.Intents[i].Keywords)
	}
	t.Sentiment.Positive = normalizeAll(t.Sentiment.Positive)
	t.Sentiment.Negative = normalizeAll(t.Sentiment.Negative)
	t.Urgency.High = normalizeAll(t.Urgency.High)
	t.Urgency.Medium = normalizeAll(t.Urgency.Medium)
	t.Decisions.Affirm = normalizeAll(t.Decisions.Affirm)
	t.Decisions.Cancel = normalizeAll(t.Decisions.Cancel)
	t.Decisions.Decline = normalizeAll(t.Decisions.Decline)
	t.Decisions.Idioms = normalizeAll(t.Decisions.Idioms)
	for category, probes := range t.Probes {
		for i := range probes {
			probes[i].Keywords = normalizeAll(probes[i].Keywords)
		}
		t.Probes[category] = probes
	}
	t.stopwords = make(map[string]struct{}, len(t.NameStopwords))
	for _, w := range normalizeAll(t.NameStopwords) {
		t.stopwords[w] = struct{}{}
	}
}

// Rule returns the table row for an intent, falling back to the fallback row.
func (t *Table) Rule(name model.IntentName) IntentRule {
	for _, rule := range t.Intents {
		if rule.Name == name {
			return rule
		}
	}
	return t.Fallback
}

func normalizeAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			out = append(out, n)
		}
	}
	return out
}
