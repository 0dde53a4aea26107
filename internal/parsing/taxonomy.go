package parsing

import (
	"strings"

	"github.com/jonathan/talent-matcher/internal/vocab"
)

// TaxonomyMapper maps titles, skills and degree labels onto canonical values.
// Terms missing from the taxonomy map to their normalized text.
type TaxonomyMapper struct {
	tables *vocab.Tables
}

// NewTaxonomyMapper creates a mapper over tables. Nil means vocab.Default().
func NewTaxonomyMapper(tables *vocab.Tables) *TaxonomyMapper {
	if tables == nil {
		tables = vocab.Default()
	}
	return &TaxonomyMapper{tables: tables}
}

// Tables returns the vocabularies backing the mapper
func (m *TaxonomyMapper) Tables() *vocab.Tables {
	return m.tables
}

// MapTitle returns the canonical id of a job title
func (m *TaxonomyMapper) MapTitle(title string) string {
	normalized := NormalizeText(title)
	if id, ok := m.tables.Title(normalized); ok {
		return id
	}
	return normalized
}

// MapSkill returns the canonical id of a skill name
func (m *TaxonomyMapper) MapSkill(name string) string {
	normalized := NormalizeText(name)
	if id, ok := m.tables.Skill(normalized); ok {
		return id
	}
	return normalized
}

// DegreeLevel returns the level of the first vocabulary entry contained in label, or 0
func (m *TaxonomyMapper) DegreeLevel(label string) int {
	lower := strings.ToLower(label)
	if strings.TrimSpace(lower) == "" {
		return 0
	}
	for _, d := range m.tables.Degrees() {
		if strings.Contains(lower, d.Name) {
			return d.Level
		}
	}
	return 0
}

// HighestDegreeLevel returns the highest level of any vocabulary entry contained in label.
// "Bachelor and Master of Science" yields the master level.
func (m *TaxonomyMapper) HighestDegreeLevel(label string) int {
	lower := strings.ToLower(label)
	highest := 0
	for _, d := range m.tables.Degrees() {
		if strings.Contains(lower, d.Name) && d.Level > highest {
			highest = d.Level
		}
	}
	return highest
}

// IsResearchText reports whether text mentions any research keyword
func (m *TaxonomyMapper) IsResearchText(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range m.tables.ResearchKeywords() {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RemoveStopwords drops the configured stopwords from already-normalized text
func (m *TaxonomyMapper) RemoveStopwords(normalized string) string {
	return RemoveStopwords(normalized, m.tables.IsStopword)
}
