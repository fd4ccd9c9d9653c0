// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items and the driver snapshot are stored as JSON documents; everything
// the system filters on lives in its own indexed column.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderNumber string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	BusinessID  uuid.UUID `gorm:"type:uuid;not null;index"`

	CustomerName  string `gorm:"type:varchar(255);not null"`
	CustomerPhone string `gorm:"type:varchar(32);not null"`
	CustomerEmail string `gorm:"type:varchar(255)"`

	Items []ItemDTO `gorm:"serializer:json;type:jsonb"`

	PaymentSubtotal    float64 `gorm:"not null"`
	PaymentDeliveryFee float64 `gorm:"not null"`
	PaymentTotal       float64 `gorm:"not null"`
	PaymentMethod      string  `gorm:"type:varchar(32)"`

	Status       int `gorm:"not null;index"`
	DeliveryType int `gorm:"not null"`

	AddressStreet string   `gorm:"type:varchar(512)"`
	AddressLat    *float64 `gorm:"type:double precision"`
	AddressLon    *float64 `gorm:"type:double precision"`

	ConfirmedAt        *time.Time
	PickedUpAt         *time.Time
	DeliveredAt        *time.Time
	CompletedAt        *time.Time
	EstimatedReadyTime *time.Time

	BusinessNotes    string         `gorm:"type:text"`
	DriverInfo       *DriverInfoDTO `gorm:"serializer:json;type:jsonb"`
	DriverAssignedAt *time.Time

	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one ordered line inside the items JSON document.
type ItemDTO struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// DriverInfoDTO is the assigned-driver snapshot stored as a JSON document.
type DriverInfoDTO struct {
	DriverID          string     `json:"driver_id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	VehicleType       string     `json:"vehicle_type"`
	EstimatedPickupAt *time.Time `json:"estimated_pickup_at,omitempty"`
	TrackingURL       string     `json:"tracking_url,omitempty"`
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, ItemDTO{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	dto := OrderDTO{
		ID:          aggregate.ID().Bytes(),
		OrderNumber: aggregate.OrderNumber(),
		BusinessID:  aggregate.BusinessID().Bytes(),

		CustomerName:  aggregate.Customer().Name,
		CustomerPhone: aggregate.Customer().Phone,
		CustomerEmail: aggregate.Customer().Email,

		Items: items,

		PaymentSubtotal:    aggregate.Payment().Subtotal,
		PaymentDeliveryFee: aggregate.Payment().DeliveryFee,
		PaymentTotal:       aggregate.Payment().Total,
		PaymentMethod:      aggregate.Payment().Method,

		Status:       int(aggregate.Status()),
		DeliveryType: int(aggregate.DeliveryType()),

		ConfirmedAt:        aggregate.ConfirmedAt(),
		PickedUpAt:         aggregate.PickedUpAt(),
		DeliveredAt:        aggregate.DeliveredAt(),
		CompletedAt:        aggregate.CompletedAt(),
		EstimatedReadyTime: aggregate.EstimatedReadyTime(),

		BusinessNotes:    aggregate.BusinessNotes(),
		DriverAssignedAt: aggregate.DriverAssignedAt(),

		Version: aggregate.Version(),
	}

	if address := aggregate.Address(); address != nil {
		dto.AddressStreet = address.Street
		if location, ok := address.Coordinates(); ok {
			lat, lon := location.Lat(), location.Lon()
			dto.AddressLat, dto.AddressLon = &lat, &lon
		}
	}

	if info := aggregate.DriverInfo(); info != nil {
		dto.DriverInfo = &DriverInfoDTO{
			DriverID:          info.DriverID,
			Name:              info.Name,
			Phone:             info.Phone,
			VehicleType:       info.VehicleType,
			EstimatedPickupAt: info.EstimatedPickupAt,
			TrackingURL:       info.TrackingURL,
		}
	}

	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	businessID, err := kernel.UUIDFromBytes(dto.BusinessID[:])
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, order.Item{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	var address *order.Address
	if dto.AddressStreet != "" || dto.AddressLat != nil {
		address = &order.Address{Street: dto.AddressStreet}
		if dto.AddressLat != nil && dto.AddressLon != nil {
			location, locErr := kernel.NewGeoPoint(*dto.AddressLat, *dto.AddressLon)
			if locErr != nil {
				return nil, locErr
			}
			address.Location = &location
		}
	}

	var driverInfo *order.DriverInfo
	if dto.DriverInfo != nil {
		driverInfo = &order.DriverInfo{
			DriverID:          dto.DriverInfo.DriverID,
			Name:              dto.DriverInfo.Name,
			Phone:             dto.DriverInfo.Phone,
			VehicleType:       dto.DriverInfo.VehicleType,
			EstimatedPickupAt: dto.DriverInfo.EstimatedPickupAt,
			TrackingURL:       dto.DriverInfo.TrackingURL,
		}
	}

	return order.RestoreOrder(
		id,
		dto.OrderNumber,
		businessID,
		order.Customer{
			Name:  dto.CustomerName,
			Phone: dto.CustomerPhone,
			Email: dto.CustomerEmail,
		},
		items,
		order.DeliveryType(dto.DeliveryType),
		address,
		order.Payment{
			Subtotal:    dto.PaymentSubtotal,
			DeliveryFee: dto.PaymentDeliveryFee,
			Total:       dto.PaymentTotal,
			Method:      dto.PaymentMethod,
		},
		order.Status(dto.Status),
		order.Timestamps{
			ConfirmedAt: dto.ConfirmedAt,
			PickedUpAt:  dto.PickedUpAt,
			DeliveredAt: dto.DeliveredAt,
			CompletedAt: dto.CompletedAt,
		},
		dto.EstimatedReadyTime,
		dto.BusinessNotes,
		driverInfo,
		dto.DriverAssignedAt,
		dto.Version,
	)
}
