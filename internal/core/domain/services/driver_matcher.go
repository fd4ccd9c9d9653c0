package services

import (
	"errors"
	"sort"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoDriversInRange is returned when no eligible driver is within the
// search radius. This occurs when either no drivers are provided or none of
// the provided drivers is eligible and close enough to the origin.
var ErrNoDriversInRange = errors.New("no drivers in range")

// Candidate pairs a matched driver with its straight-line distance to the
// search origin.
type Candidate struct {
	Driver     *driver.Driver
	DistanceKm float64
}

// DriverMatcher is a domain service that ranks drivers by proximity to a
// delivery origin.
//
// Key responsibilities:
//   - Filtering drivers down to those eligible for assignment
//   - Measuring great-circle distance from each driver to the origin
//   - Ranking matches by non-decreasing distance and truncating to a limit
//
// Business rules:
//   - Only eligible drivers participate (available, active, verified, idle,
//     with a known location)
//   - Drivers outside the search radius are excluded
//   - The matcher never mutates drivers; assignment is the caller's workflow
type DriverMatcher struct{}

// NewDriverMatcher creates a new DriverMatcher instance.
func NewDriverMatcher() DriverMatcher {
	return DriverMatcher{}
}

// FindNearest ranks the given drivers by proximity to origin.
//
// Parameters:
//   - candidates: Drivers to consider, in any order
//   - origin: The point to measure distance from (must be valid)
//   - radiusKm: Maximum allowed distance; drivers farther away are excluded
//   - limit: Maximum number of candidates to return; non-positive means all
//
// Returns:
//   - []Candidate: Matches sorted by non-decreasing distance, at most limit
//   - error: ErrNoDriversInRange when nothing matched, or a validation error
func (m DriverMatcher) FindNearest(
	candidates []*driver.Driver,
	origin kernel.GeoPoint,
	radiusKm float64,
	limit int,
) ([]Candidate, error) {
	if err := origin.Validate(); err != nil {
		return nil, err
	}

	matches := make([]Candidate, 0, len(candidates))
	for _, d := range candidates {
		if d == nil || !d.IsEligible() {
			continue
		}

		distance, err := d.Location().Point.DistanceKm(origin)
		if err != nil {
			return nil, err
		}
		if distance > radiusKm {
			continue
		}

		matches = append(matches, Candidate{Driver: d, DistanceKm: distance})
	}

	if len(matches) == 0 {
		return nil, ErrNoDriversInRange
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].DistanceKm < matches[j].DistanceKm
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
