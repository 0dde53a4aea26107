// Package types provides the entity definitions consumed by the matching pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "github.com/go-playground/validator/v10"

// Location is a city/country pair
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Demographics holds optional descriptive attributes of a candidate
type Demographics struct {
	Gender      string `json:"gender,omitempty"`
	BirthYear   int    `json:"birth_year,omitempty" validate:"omitempty,gte=1900"`
	Nationality string `json:"nationality,omitempty"`
}

// Candidate represents a job seeker
type Candidate struct {
	ID                string             `json:"id" validate:"required"`
	Name              string             `json:"name,omitempty"`
	Demographics      Demographics       `json:"demographics"`
	Location          Location           `json:"location"`
	WillingToRelocate bool               `json:"willing_to_relocate"`
	Education         []EducationRecord  `json:"education" validate:"dive"`
	Experience        []ExperienceRecord `json:"experience" validate:"dive"`
	Languages         []LanguageClaim    `json:"languages" validate:"dive"`
	Skills            []SkillClaim       `json:"skills" validate:"dive"`
}

// EducationRecord is a single degree or program
type EducationRecord struct {
	Level      string `json:"level"`
	Department string `json:"department,omitempty"`
	Speciality string `json:"speciality,omitempty"`
	University string `json:"university,omitempty"`
	Country    string `json:"country,omitempty"`
	StartDate  *Date  `json:"start_date,omitempty"`
	EndDate    *Date  `json:"end_date,omitempty"`
}

// ExperienceRecord is a single position held by a candidate
type ExperienceRecord struct {
	Company        string `json:"company"`
	Title          string `json:"title"`
	StartDate      *Date  `json:"start_date,omitempty"`
	EndDate        *Date  `json:"end_date,omitempty"`
	IsCurrent      bool   `json:"is_current,omitempty"`
	Description    string `json:"description,omitempty"`
	Country        string `json:"country,omitempty"`
	EmploymentType string `json:"employment_type,omitempty"`
}

// LanguageClaim is a language the candidate speaks at a CEFR-style level
type LanguageClaim struct {
	Language string `json:"language" validate:"required"`
	Level    string `json:"level"`
}

// SkillClaim is a skill the candidate lists. Weight is optional.
type SkillClaim struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name" validate:"required"`
	Weight *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Validate checks the struct tags on the candidate and its records
func (c *Candidate) Validate() error {
	return validator.New().Struct(c)
}

// ExperienceText concatenates titles and descriptions of all experience records
func (c *Candidate) ExperienceText() string {
	var parts []string
	for _, exp := range c.Experience {
		if exp.Title != "" {
			parts = append(parts, exp.Title)
		}
		if exp.Description != "" {
			parts = append(parts, exp.Description)
		}
	}
	return joinNonEmpty(parts)
}
