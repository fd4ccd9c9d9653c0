package driverrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDriverRepository creates a new GORM driver repository.
func NewGormDriverRepository(db *gorm.DB, tracker aggregateTracker) *GormDriverRepository {
	return &GormDriverRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new driver to the database.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing driver to the database.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("driver", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a driver by ID.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByDriverID retrieves a driver by its external platform identifier.
func (r *GormDriverRepository) GetByDriverID(ctx context.Context, driverID string) (*driver.Driver, error) {
	if driverID == "" {
		return nil, errs.NewValueIsRequiredError("driverID")
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "driver_id = ?", driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", driverID)
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAvailable retrieves all drivers eligible for matching.
func (r *GormDriverRepository) GetAllAvailable(ctx context.Context) ([]*driver.Driver, error) {
	var dtos []DriverDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_active AND is_verified AND current_order_id IS NULL AND location_lat IS NOT NULL",
			int(driver.StatusAvailable)).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// AssignOrder claims the driver for the order with a single conditional
// update. The losing side of a concurrent assignment sees zero rows affected
// and gets driver.ErrDriverUnavailable; the winner's row is untouched.
func (r *GormDriverRepository) AssignOrder(ctx context.Context, driverID kernel.UUID, orderID kernel.UUID) error {
	if err := errors.Join(driverID.Validate(), orderID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ? AND status = ? AND current_order_id IS NULL",
			driverID.Bytes(), int(driver.StatusAvailable)).
		Updates(map[string]any{
			"status":           int(driver.StatusBusy),
			"current_order_id": orderID.Bytes(),
			"last_active_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return driver.ErrDriverUnavailable
	}
	return nil
}

// ReleaseOrder clears the driver's assignment with a single conditional
// update, returning the driver to available. A driver no longer carrying the
// given order gets driver.ErrNoActiveAssignment.
func (r *GormDriverRepository) ReleaseOrder(ctx context.Context, driverID kernel.UUID, orderID kernel.UUID) error {
	if err := errors.Join(driverID.Validate(), orderID.Validate()); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&DriverDTO{}).
		Where("id = ? AND current_order_id = ?", driverID.Bytes(), orderID.Bytes()).
		Updates(map[string]any{
			"status":           int(driver.StatusAvailable),
			"current_order_id": nil,
			"last_active_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return driver.ErrNoActiveAssignment
	}
	return nil
}

// GetAllWithStaleLocations retrieves non-offline drivers whose last location
// report is older than the cutoff, including drivers who never reported one.
func (r *GormDriverRepository) GetAllWithStaleLocations(ctx context.Context, olderThan time.Time) ([]*driver.Driver, error) {
	var dtos []DriverDTO
	err := r.db.WithContext(ctx).
		Where("status <> ? AND (location_updated_at IS NULL OR location_updated_at < ?)",
			int(driver.StatusOffline), olderThan).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

func toDomainList(dtos []DriverDTO) ([]*driver.Driver, error) {
	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		aggregate, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, aggregate)
	}
	return drivers, nil
}
