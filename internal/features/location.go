package features

import (
	"strings"

	"github.com/jonathan/talent-matcher/internal/geo"
	"github.com/jonathan/talent-matcher/internal/types"
)

// Location checks whether the candidate can work where the job is.
// Online postings always match at distance 0.
func (x *Extractor) Location(c *types.Candidate, j *types.JobPosting) Vector {
	if j.IsOnline() {
		return Vector{
			KeyLocationRelevant: 0,
			KeyLocationMatch:    1,
			KeyGeodesicDistance: 0,
		}
	}

	same := strings.TrimSpace(c.Location.City) != "" &&
		geo.SameLocation(c.Location.City, c.Location.Country, j.Location.City, j.Location.Country)
	return Vector{
		KeyLocationRelevant: 1,
		KeyLocationMatch:    flag(same || c.WillingToRelocate),
		KeyGeodesicDistance: x.resolver.DistanceKm(c.Location.City, c.Location.Country, j.Location.City, j.Location.Country),
	}
}
