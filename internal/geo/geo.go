// Package geo resolves cities to coordinates from a fixed table and measures
// great-circle distances between them.
package geo

import (
	"math"
	"strings"

	"github.com/golang/geo/s2"
	"github.com/jonathan/talent-matcher/internal/vocab"
)

// EarthRadiusKm is the mean Earth radius
const EarthRadiusKm = 6371.0088

// Resolver looks cities up in a vocabulary table. Unknown cities resolve to (0,0).
type Resolver struct {
	tables *vocab.Tables
}

// NewResolver creates a resolver over tables. Nil means vocab.Default().
func NewResolver(tables *vocab.Tables) *Resolver {
	if tables == nil {
		tables = vocab.Default()
	}
	return &Resolver{tables: tables}
}

// Resolve returns the coordinate of city and whether it was found.
// Country is accepted for future disambiguation; the table is keyed by city.
func (r *Resolver) Resolve(city, _ string) (vocab.Coordinate, bool) {
	c, ok := r.tables.City(city)
	if !ok {
		return vocab.Coordinate{}, false
	}
	return c, true
}

// DistanceKm returns the distance between two city/country pairs.
// It is +Inf when either city is blank.
func (r *Resolver) DistanceKm(city1, country1, city2, country2 string) float64 {
	if strings.TrimSpace(city1) == "" || strings.TrimSpace(city2) == "" {
		return math.Inf(1)
	}
	a, _ := r.Resolve(city1, country1)
	b, _ := r.Resolve(city2, country2)
	return Distance(a, b)
}

// Distance is the great-circle distance in kilometers
func Distance(a, b vocab.Coordinate) float64 {
	p := s2.LatLngFromDegrees(a.Lat, a.Lng)
	q := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p.Distance(q).Radians() * EarthRadiusKm
}

// SameLocation compares city and country case-insensitively
func SameLocation(city1, country1, city2, country2 string) bool {
	return strings.EqualFold(strings.TrimSpace(city1), strings.TrimSpace(city2)) &&
		strings.EqualFold(strings.TrimSpace(country1), strings.TrimSpace(country2))
}
