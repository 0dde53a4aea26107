package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// PresenceMode describes where the work happens
type PresenceMode string

// Presence modes
const (
	PresenceOnline PresenceMode = "online"
	PresenceOnsite PresenceMode = "onsite"
	PresenceHybrid PresenceMode = "hybrid"
)

// JobPosting represents an opening offered by an organization
type JobPosting struct {
	ID                   string                `json:"id" validate:"required"`
	OrganizationID       string                `json:"organization_id,omitempty"`
	Status               string                `json:"status,omitempty"`
	Title                string                `json:"title" validate:"required"`
	Description          string                `json:"description,omitempty"`
	Location             Location              `json:"location"`
	StartDate            *Date                 `json:"start_date,omitempty"`
	EndDate              *Date                 `json:"end_date,omitempty"`
	PresenceMode         PresenceMode          `json:"presence_mode" validate:"required,oneof=online onsite hybrid"`
	Languages            []LanguageRequirement `json:"languages" validate:"dive"`
	ExperienceLevel      string                `json:"experience_level,omitempty"`
	Education            EducationRequirement  `json:"education"`
	Qualifications       string                `json:"qualifications,omitempty"`
	Responsibilities     string                `json:"responsibilities,omitempty"`
	Skills               []SkillRequirement    `json:"skills" validate:"dive"`
	CriticalRequirements []CriticalRequirement `json:"critical_requirements" validate:"dive"`
}

// LanguageRequirement is a language the job asks for. Criticality > 0 marks it mandatory.
type LanguageRequirement struct {
	Language    string  `json:"language" validate:"required"`
	Level       string  `json:"level"`
	Criticality float64 `json:"criticality" validate:"gte=0"`
}

// Mandatory reports whether the requirement must be met
func (l LanguageRequirement) Mandatory() bool {
	return l.Criticality > 0
}

// EducationRequirement is the minimum education asked for; every field is optional
type EducationRequirement struct {
	Level      string `json:"level,omitempty"`
	Department string `json:"department,omitempty"`
	Speciality string `json:"speciality,omitempty"`
}

// SkillRequirement is a skill the job needs. Weight defaults to 1 when unset.
type SkillRequirement struct {
	ID     string   `json:"id,omitempty"`
	Name   string   `json:"name" validate:"required"`
	Weight *float64 `json:"weight,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// EffectiveWeight returns the importance weight, defaulting to 1
func (s SkillRequirement) EffectiveWeight() float64 {
	if s.Weight == nil {
		return 1.0
	}
	return *s.Weight
}

// CriticalRequirement is a must-have condition stated in free text
type CriticalRequirement struct {
	ID          string  `json:"id" validate:"required"`
	Requirement string  `json:"requirement" validate:"required"`
	Degree      float64 `json:"degree,omitempty"`
}

// Validate checks the struct tags on the posting and its requirements
func (j *JobPosting) Validate() error {
	return validator.New().Struct(j)
}

// IsOnline reports whether location is irrelevant for this posting
func (j *JobPosting) IsOnline() bool {
	return strings.EqualFold(strings.TrimSpace(string(j.PresenceMode)), string(PresenceOnline))
}

// TitleAndDescription joins the title and description
func (j *JobPosting) TitleAndDescription() string {
	return joinNonEmpty([]string{j.Title, j.Description})
}

// Text concatenates every descriptive field of the posting
func (j *JobPosting) Text() string {
	return joinNonEmpty([]string{j.Title, j.Description, j.Qualifications, j.Responsibilities})
}

func joinNonEmpty(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
