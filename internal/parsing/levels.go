package parsing

import "strings"

// MaxLanguageOrdinal is the ordinal of native proficiency
const MaxLanguageOrdinal = 7

var languageOrdinals = map[string]int{
	"A1":     1,
	"A2":     2,
	"B1":     3,
	"B2":     4,
	"C1":     5,
	"C2":     6,
	"NATIVE": MaxLanguageOrdinal,
}

// LanguageOrdinal maps a proficiency label (A1..C2, Native) to 1..7.
// Unknown or empty labels map to 0.
func LanguageOrdinal(label string) int {
	return languageOrdinals[strings.ToUpper(strings.TrimSpace(label))]
}

// ParseExperienceLevel converts an experience-level label to required years.
// An empty label requires nothing; unrecognized labels default to 2 years.
func ParseExperienceLevel(label string) float64 {
	lower := strings.ToLower(strings.TrimSpace(label))
	switch {
	case lower == "":
		return 0
	case strings.Contains(lower, "entry"), strings.Contains(lower, "junior"):
		return 0
	case strings.Contains(lower, "mid"), strings.Contains(lower, "2-5"):
		return 3
	case strings.Contains(lower, "senior"), strings.Contains(lower, "5+"):
		return 5
	default:
		return 2
	}
}
