package compatibility

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var defaultKeywords []byte

// Category is a named skill area detected through any of its keywords.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// LevelKeywords holds the phrases that indicate each experience level.
type LevelKeywords struct {
	Junior []string `yaml:"junior"`
	Pleno  []string `yaml:"pleno"`
	Senior []string `yaml:"senior"`
}

// Tables is the data the calculator matches against.
type Tables struct {
	Skills        []Category    `yaml:"skills"`
	Experience    LevelKeywords `yaml:"experience"`
	Accessibility []string      `yaml:"accessibility"`
}

var defaultTables = sync.OnceValue(func() *Tables {
	tables, err := ParseTables(defaultKeywords)
	if err != nil {
		panic(fmt.Sprintf("embedded keyword tables are invalid: %v", err))
	}
	return tables
})

// DefaultTables returns the built-in tables. The value is shared and must not be modified.
func DefaultTables() *Tables {
	return defaultTables()
}

// LoadTables reads tables from a YAML file. An empty path yields the defaults.
func LoadTables(path string) (*Tables, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultTables(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyword tables from %q: %w", path, err)
	}

	tables, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("keyword tables %q: %w", path, err)
	}

	return tables, nil
}

// ParseTables decodes and validates a YAML document. Keywords are lowercased
// and blank entries dropped.
func ParseTables(data []byte) (*Tables, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parse keyword tables: %w", err)
	}

	tables.normalize()

	if err := tables.Validate(); err != nil {
		return nil, err
	}

	return &tables, nil
}

// Validate checks that every table the calculator relies on has content.
func (t *Tables) Validate() error {
	if len(t.Skills) == 0 {
		return errors.New("at least one skill category is required")
	}

	seen := make(map[string]struct{}, len(t.Skills))
	for i, category := range t.Skills {
		if category.Name == "" {
			return fmt.Errorf("skill category #%d has no name", i+1)
		}
		if _, ok := seen[category.Name]; ok {
			return fmt.Errorf("skill category %q is defined twice", category.Name)
		}
		seen[category.Name] = struct{}{}

		if len(category.Keywords) == 0 {
			return fmt.Errorf("skill category %q has no keywords", category.Name)
		}
	}

	if len(t.Experience.Junior) == 0 || len(t.Experience.Senior) == 0 {
		return errors.New("junior and senior experience keywords are required")
	}

	if len(t.Accessibility) == 0 {
		return errors.New("accessibility keywords are required")
	}

	return nil
}

// Marshal renders the tables back to YAML.
func (t *Tables) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

func (t *Tables) normalize() {
	for i := range t.Skills {
		t.Skills[i].Name = strings.TrimSpace(t.Skills[i].Name)
		t.Skills[i].Keywords = normalizeKeywords(t.Skills[i].Keywords)
	}
	t.Experience.Junior = normalizeKeywords(t.Experience.Junior)
	t.Experience.Pleno = normalizeKeywords(t.Experience.Pleno)
	t.Experience.Senior = normalizeKeywords(t.Experience.Senior)
	t.Accessibility = normalizeKeywords(t.Accessibility)
}

func normalizeKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	for _, keyword := range in {
		// Inner spaces matter ("react native"), only the edges are trimmed.
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		out = append(out, keyword)
	}
	return out
}

// containsAny reports whether text contains any keyword as a substring.
// text must already be lowercase.
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
