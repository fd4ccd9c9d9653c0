package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add persists a new driver aggregate to storage.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists changes to an existing driver aggregate.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetByDriverID retrieves a driver aggregate by its external
	// platform-facing identifier.
	GetByDriverID(ctx context.Context, driverID string) (*driver.Driver, error)

	// GetAllAvailable retrieves all drivers currently eligible for matching:
	// available, active, verified, carrying no order, with a known location.
	GetAllAvailable(ctx context.Context) ([]*driver.Driver, error)

	// AssignOrder claims the driver for the given order with a single
	// conditional update: the row changes only if the driver is still
	// available and idle. When the condition no longer holds - because a
	// concurrent assignment won the race - it returns
	// driver.ErrDriverUnavailable and the row is untouched.
	AssignOrder(ctx context.Context, driverID kernel.UUID, orderID kernel.UUID) error

	// ReleaseOrder clears the driver's active assignment with a single
	// conditional update, returning the driver to available. When the driver
	// does not carry the given order it returns driver.ErrNoActiveAssignment.
	ReleaseOrder(ctx context.Context, driverID kernel.UUID, orderID kernel.UUID) error

	// GetAllWithStaleLocations retrieves drivers whose last location report is
	// older than the given cutoff, excluding offline drivers.
	GetAllWithStaleLocations(ctx context.Context, olderThan time.Time) ([]*driver.Driver, error)
}
