package features

import (
	"maps"
	"slices"
)

// Vector maps feature keys to values for one (candidate, job) pair
type Vector map[string]float64

// Get returns the value for key, or 0 when absent
func (v Vector) Get(key string) float64 {
	return v[key]
}

// Flag reports whether a 0/1 feature is set
func (v Vector) Flag(key string) bool {
	return v[key] >= 1
}

// Keys returns the keys in ascending order
func (v Vector) Keys() []string {
	return slices.Sorted(maps.Keys(v))
}

// Merge copies every entry of other into v
func (v Vector) Merge(other Vector) {
	maps.Copy(v, other)
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

// ratio returns num/den clamped to [0,1], or empty when den is 0
func ratio(num, den, empty float64) float64 {
	if den == 0 {
		return empty
	}
	return clamp01(num / den)
}
