package keyword

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

// Trigger maps one query substring to the verse ids curated for it.
type Trigger struct {
	Trigger string   `yaml:"trigger"`
	Verses  []string `yaml:"verses"`
}

// Concept is a named synonym set spanning scripts.
type Concept struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

// Tables holds the versioned lookup data the matcher scores with.
type Tables struct {
	Version         int                  `yaml:"version"`
	Curated         map[string][]Trigger `yaml:"curated"`
	Concepts        []Concept            `yaml:"concepts"`
	NarratorMarkers []string             `yaml:"narrator_markers"`
}

// DefaultTables returns the built-in tables.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// LoadTables reads tables from a YAML file with the same schema as the built-in tables.
// An empty path returns the built-in tables.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes and validates tables. Triggers, terms and markers are lower-cased.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword tables: %w", err)
	}
	if len(t.Concepts) == 0 && len(t.Curated) == 0 {
		return nil, fmt.Errorf("keyword tables define no concepts or curated triggers")
	}
	for cat, triggers := range t.Curated {
		for i := range triggers {
			triggers[i].Trigger = strings.ToLower(strings.TrimSpace(triggers[i].Trigger))
			if triggers[i].Trigger == "" {
				return nil, fmt.Errorf("empty trigger in category %s", cat)
			}
		}
	}
	for i := range t.Concepts {
		for j, term := range t.Concepts[i].Terms {
			t.Concepts[i].Terms[j] = strings.ToLower(term)
		}
	}
	for i, m := range t.NarratorMarkers {
		t.NarratorMarkers[i] = strings.ToLower(strings.TrimSpace(m))
	}
	return &t, nil
}

// Categories returns the curated category names in sorted order.
func (t *Tables) Categories() []string {
	out := make([]string, 0, len(t.Curated))
	for cat := range t.Curated {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// BoostedVerses returns the union of verse ids whose trigger occurs in lowerQuery.
func (t *Tables) BoostedVerses(lowerQuery string) map[string]bool {
	boosted := make(map[string]bool)
	for _, triggers := range t.Curated {
		for _, tr := range triggers {
			if strings.Contains(lowerQuery, tr.Trigger) {
				for _, id := range tr.Verses {
					boosted[id] = true
				}
			}
		}
	}
	return boosted
}

// MatchedTriggers returns the triggers found in lowerQuery, sorted.
func (t *Tables) MatchedTriggers(lowerQuery string) []string {
	var out []string
	for _, triggers := range t.Curated {
		for _, tr := range triggers {
			if strings.Contains(lowerQuery, tr.Trigger) {
				out = append(out, tr.Trigger)
			}
		}
	}
	sort.Strings(out)
	return out
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
