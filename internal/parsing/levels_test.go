package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguageOrdinal(t *testing.T) {
	tests := []struct {
		label    string
		expected int
	}{
		{"A1", 1},
		{"a2", 2},
		{"B1", 3},
		{"B2", 4},
		{" C1 ", 5},
		{"C2", 6},
		{"Native", 7},
		{"NATIVE", 7},
		{"native", 7},
		{"", 0},
		{"fluent", 0},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, LanguageOrdinal(tt.label))
		})
	}
}

func TestParseExperienceLevel(t *testing.T) {
	tests := []struct {
		label    string
		expected float64
	}{
		{"", 0},
		{"Entry level", 0},
		{"Junior Developer", 0},
		{"Mid-level", 3},
		{"2-5 years", 3},
		{"Senior (5+ years)", 5},
		{"5+ years", 5},
		{"Principal", 2},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseExperienceLevel(tt.label))
		})
	}
}
