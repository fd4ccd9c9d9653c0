// Package driverrepo provides data transfer objects and mapping functions for driver persistence.
// This package implements the repository pattern for the driver domain aggregate, handling
// the conversion between domain entities and database representations.
package driverrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverDTO represents the database structure for persisting driver aggregates.
// The location columns are nullable: a driver who has never reported a
// position has no coordinates and is never considered for matching.
type DriverDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	DriverID    string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Phone       string    `gorm:"type:varchar(32);not null"`
	VehicleType string    `gorm:"type:varchar(32)"`

	Status     int  `gorm:"not null;index"`
	IsActive   bool `gorm:"not null;default:false"`
	IsVerified bool `gorm:"not null;default:false"`

	LocationLat       *float64 `gorm:"type:double precision"`
	LocationLon       *float64 `gorm:"type:double precision"`
	LocationUpdatedAt *time.Time

	CurrentOrderID *uuid.UUID `gorm:"type:uuid;index"`
	LastActiveAt   time.Time  `gorm:"not null"`

	CompletedDeliveries int     `gorm:"not null;default:0"`
	TotalEarnings       float64 `gorm:"not null;default:0"`
	AverageRating       float64 `gorm:"not null;default:0"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver domain aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:          aggregate.ID().Bytes(),
		DriverID:    aggregate.DriverID(),
		Name:        aggregate.Name(),
		Phone:       aggregate.Phone(),
		VehicleType: aggregate.VehicleType(),

		Status:     int(aggregate.Status()),
		IsActive:   aggregate.IsActive(),
		IsVerified: aggregate.IsVerified(),

		LastActiveAt: aggregate.LastActiveAt(),

		CompletedDeliveries: aggregate.Stats().CompletedDeliveries,
		TotalEarnings:       aggregate.Stats().TotalEarnings,
		AverageRating:       aggregate.Stats().AverageRating,
	}

	if position := aggregate.Location(); position != nil {
		lat, lon := position.Point.Lat(), position.Point.Lon()
		updatedAt := position.UpdatedAt
		dto.LocationLat, dto.LocationLon = &lat, &lon
		dto.LocationUpdatedAt = &updatedAt
	}

	if orderID := aggregate.CurrentOrderID(); orderID != nil {
		raw := orderID.Bytes()
		dto.CurrentOrderID = &raw
	}

	return dto
}

// toDomain converts a database DTO to a driver domain aggregate using RestoreDriver.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var position *driver.Position
	if dto.LocationLat != nil && dto.LocationLon != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.LocationLat, *dto.LocationLon)
		if pointErr != nil {
			return nil, pointErr
		}
		position = &driver.Position{Point: point}
		if dto.LocationUpdatedAt != nil {
			position.UpdatedAt = *dto.LocationUpdatedAt
		}
	}

	var currentOrderID *kernel.UUID
	if dto.CurrentOrderID != nil {
		orderID, orderErr := kernel.UUIDFromBytes((*dto.CurrentOrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		currentOrderID = &orderID
	}

	return driver.RestoreDriver(
		id,
		dto.DriverID,
		dto.Name,
		dto.Phone,
		dto.VehicleType,
		driver.Status(dto.Status),
		dto.IsActive,
		dto.IsVerified,
		position,
		currentOrderID,
		dto.LastActiveAt,
		driver.Stats{
			CompletedDeliveries: dto.CompletedDeliveries,
			TotalEarnings:       dto.TotalEarnings,
			AverageRating:       dto.AverageRating,
		},
	)
}
