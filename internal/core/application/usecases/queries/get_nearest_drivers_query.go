// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrGetNearestDriversQueryIsNotConstructed = errors.New(
		"GetNearestDriversQuery must be created via NewGetNearestDriversQuery constructor",
	)
	ErrRadiusIsInvalid error = errs.NewValueIsInvalidErrorWithCause(
		"radius km", errors.New("radius must be greater than 0"))
	ErrLimitIsInvalid error = errs.NewValueIsInvalidErrorWithCause(
		"limit", errors.New("limit must be greater than 0"))
)

// GetNearestDriversQuery retrieves the eligible drivers closest to a point,
// ordered by distance. Used by dispatch screens and the assignment preview.
//
// Example:
//
//	origin, _ := kernel.NewGeoPoint(29.3759, 47.9774)
//	query, err := NewGetNearestDriversQuery(origin, 10, 5)
//	if err != nil {
//	    return fmt.Errorf("invalid driver search: %w", err)
//	}
//
//	drivers, err := handler.Handle(ctx, query)
type GetNearestDriversQuery struct { //nolint:recvcheck //using for validation
	origin   kernel.GeoPoint
	radiusKm float64
	limit    int

	guard guard.ConstructorGuard
}

// NewGetNearestDriversQuery creates a query for the closest eligible drivers
// within radiusKm of origin, truncated to limit.
func NewGetNearestDriversQuery(origin kernel.GeoPoint, radiusKm float64, limit int) (GetNearestDriversQuery, error) {
	query := GetNearestDriversQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		query.setOrigin(origin),
		query.setRadiusKm(radiusKm),
		query.setLimit(limit),
	); err != nil {
		return GetNearestDriversQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetNearestDriversQueryIsNotConstructed if validation fails.
func (q GetNearestDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetNearestDriversQueryIsNotConstructed)
}

// Origin returns the point to measure distances from.
func (q GetNearestDriversQuery) Origin() kernel.GeoPoint {
	return q.origin
}

// RadiusKm returns the search radius in kilometers.
func (q GetNearestDriversQuery) RadiusKm() float64 {
	return q.radiusKm
}

// Limit returns the maximum number of drivers to return.
func (q GetNearestDriversQuery) Limit() int {
	return q.limit
}

func (q *GetNearestDriversQuery) setOrigin(origin kernel.GeoPoint) error {
	if err := origin.Validate(); err != nil {
		return err
	}

	q.origin = origin
	return nil
}

func (q *GetNearestDriversQuery) setRadiusKm(radiusKm float64) error {
	if radiusKm <= 0 {
		return ErrRadiusIsInvalid
	}

	q.radiusKm = radiusKm
	return nil
}

func (q *GetNearestDriversQuery) setLimit(limit int) error {
	if limit <= 0 {
		return ErrLimitIsInvalid
	}

	q.limit = limit
	return nil
}

// GetNearestDriversQueryResponse represents one matched driver in the read model.
type GetNearestDriversQueryResponse struct {
	ID          kernel.UUID
	DriverID    string
	Name        string
	Phone       string
	VehicleType string
	Location    kernel.GeoPoint
	DistanceKm  float64
}
