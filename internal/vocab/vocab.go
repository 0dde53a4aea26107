// Package vocab holds the lookup tables the matcher consults: degree levels,
// city coordinates, title and skill taxonomies, research keywords and stopwords.
// Tables are immutable once built and safe for concurrent use.
package vocab

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Degree is one entry of the ordered degree vocabulary
type Degree struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

// File is the on-disk shape of a vocabulary file
type File struct {
	Degrees          []Degree              `yaml:"degrees"`
	Cities           map[string]Coordinate `yaml:"cities"`
	Titles           map[string]string     `yaml:"titles"`
	Skills           map[string]string     `yaml:"skills"`
	ResearchKeywords []string              `yaml:"research_keywords"`
	Stopwords        []string              `yaml:"stopwords"`
}

// Tables is an immutable set of vocabularies
type Tables struct {
	degrees          []Degree
	cities           map[string]Coordinate
	titles           map[string]string
	skills           map[string]string
	researchKeywords []string
	stopwords        map[string]struct{}
}

var defaultTables = MustParse(defaultYAML)

// Default returns the built-in tables
func Default() *Tables {
	return defaultTables
}

// New builds tables from f. Title and skill keys go through Normalize; other keys are lowercased and trimmed.
func New(f File) (*Tables, error) {
	t := &Tables{
		degrees:   make([]Degree, 0, len(f.Degrees)),
		cities:    make(map[string]Coordinate, len(f.Cities)),
		titles:    make(map[string]string, len(f.Titles)),
		skills:    make(map[string]string, len(f.Skills)),
		stopwords: make(map[string]struct{}, len(f.Stopwords)),
	}

	for i, d := range f.Degrees {
		name := key(d.Name)
		if name == "" {
			return nil, fmt.Errorf("degree %d has no name", i)
		}
		if d.Level <= 0 {
			return nil, fmt.Errorf("degree %q must have a positive level", d.Name)
		}
		t.degrees = append(t.degrees, Degree{Name: name, Level: d.Level})
	}
	for name, c := range f.Cities {
		if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
			return nil, fmt.Errorf("city %q has out-of-range coordinates", name)
		}
		t.cities[key(name)] = c
	}
	if err := addTerms(t.titles, "title", f.Titles); err != nil {
		return nil, err
	}
	if err := addTerms(t.skills, "skill", f.Skills); err != nil {
		return nil, err
	}
	for _, kw := range f.ResearchKeywords {
		if kw = key(kw); kw != "" {
			t.researchKeywords = append(t.researchKeywords, kw)
		}
	}
	for _, w := range f.Stopwords {
		t.stopwords[key(w)] = struct{}{}
	}

	return t, nil
}

// Parse decodes YAML vocabulary data. Sections missing from data keep the built-in values.
func Parse(data []byte) (*Tables, error) {
	var base File
	if err := yaml.Unmarshal(defaultYAML, &base); err != nil {
		return nil, fmt.Errorf("failed to parse built-in vocabulary: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary YAML: %w", err)
	}

	if f.Degrees == nil {
		f.Degrees = base.Degrees
	}
	if f.Cities == nil {
		f.Cities = base.Cities
	}
	if f.Titles == nil {
		f.Titles = base.Titles
	}
	if f.Skills == nil {
		f.Skills = base.Skills
	}
	if f.ResearchKeywords == nil {
		f.ResearchKeywords = base.ResearchKeywords
	}
	if f.Stopwords == nil {
		f.Stopwords = base.Stopwords
	}

	return New(f)
}

// MustParse is Parse that panics on error
func MustParse(data []byte) *Tables {
	t, err := Parse(data)
	if err != nil {
		panic(fmt.Sprintf("vocab: %v", err))
	}
	return t
}

// LoadFile reads and parses a vocabulary file
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}
	return Parse(data)
}

// Degrees returns the degree vocabulary in order
func (t *Tables) Degrees() []Degree {
	out := make([]Degree, len(t.degrees))
	copy(out, t.degrees)
	return out
}

// City returns the coordinate of a city name
func (t *Tables) City(name string) (Coordinate, bool) {
	c, ok := t.cities[key(name)]
	return c, ok
}

// Title returns the canonical id of a job title
func (t *Tables) Title(title string) (string, bool) {
	id, ok := t.titles[Normalize(title)]
	return id, ok
}

// Skill returns the canonical id of a skill name
func (t *Tables) Skill(name string) (string, bool) {
	id, ok := t.skills[Normalize(name)]
	return id, ok
}

// ResearchKeywords returns the keywords that mark a posting as research-oriented
func (t *Tables) ResearchKeywords() []string {
	out := make([]string, len(t.researchKeywords))
	copy(out, t.researchKeywords)
	return out
}

// IsStopword reports whether w is a stopword
func (t *Tables) IsStopword(w string) bool {
	_, ok := t.stopwords[w]
	return ok
}

func key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Normalize lowercases s, drops punctuation and collapses whitespace.
// Taxonomy keys and lookups share it, so "Node.js" and "node.js" meet at "nodejs".
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// addTerms indexes terms by normalized name. Two names that normalize alike
// must agree on the id.
func addTerms(dst map[string]string, kind string, terms map[string]string) error {
	for name, id := range terms {
		k := Normalize(name)
		if k == "" {
			return fmt.Errorf("%s %q has no letters or digits", kind, name)
		}
		if prev, ok := dst[k]; ok && prev != id {
			return fmt.Errorf("%s %q collides with another entry normalizing to %q (%s vs %s)", kind, name, k, prev, id)
		}
		dst[k] = id
	}
	return nil
}
