// Package businessrepo provides data transfer objects and mapping functions for business persistence.
// This package implements the repository pattern for the business domain aggregate, handling
// the conversion between domain entities and database representations.
package businessrepo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/core/domain/model/business"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// BusinessDTO represents the database structure for persisting business
// aggregates. The type-specific detail payload is stored as a JSON document
// next to the type discriminant; the pair is validated on the way back into
// the domain.
type BusinessDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	BusinessType int       `gorm:"not null;index"`

	ContactPhone string `gorm:"type:varchar(32);not null"`
	ContactEmail string `gorm:"type:varchar(255)"`

	AddressLat float64 `gorm:"type:double precision;not null"`
	AddressLon float64 `gorm:"type:double precision;not null"`

	IsOpen bool            `gorm:"not null;default:false;index"`
	Detail json.RawMessage `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName specifies the database table name for business entities.
func (BusinessDTO) TableName() string {
	return "businesses"
}

type restaurantDetailDTO struct {
	Cuisine            string `json:"cuisine"`
	PrepCapacity       int    `json:"prep_capacity"`
	AvgPrepTimeMinutes int    `json:"avg_prep_time_minutes"`
}

type storeDetailDTO struct {
	Category     string `json:"category"`
	AcceptsCards bool   `json:"accepts_cards"`
}

type pharmacyDetailDTO struct {
	LicenseNumber       string `json:"license_number"`
	DispensesControlled bool   `json:"dispenses_controlled"`
}

type kitchenDetailDTO struct {
	Brands       []string `json:"brands"`
	PrepCapacity int      `json:"prep_capacity"`
}

// fromDomain converts a business domain aggregate to its database representation.
func fromDomain(aggregate *business.Business) (BusinessDTO, error) {
	detail, err := marshalDetail(aggregate.Detail())
	if err != nil {
		return BusinessDTO{}, err
	}

	return BusinessDTO{
		ID:           aggregate.ID().Bytes(),
		Name:         aggregate.Name(),
		BusinessType: int(aggregate.Type()),

		ContactPhone: aggregate.Contact().Phone,
		ContactEmail: aggregate.Contact().Email,

		AddressLat: aggregate.Address().Lat(),
		AddressLon: aggregate.Address().Lon(),

		IsOpen: aggregate.IsOpen(),
		Detail: detail,
	}, nil
}

func marshalDetail(detail business.Detail) (json.RawMessage, error) {
	if detail == nil {
		return nil, nil
	}

	switch d := detail.(type) {
	case business.RestaurantDetail:
		return json.Marshal(restaurantDetailDTO{
			Cuisine:            d.Cuisine,
			PrepCapacity:       d.PrepCapacity,
			AvgPrepTimeMinutes: d.AvgPrepTimeMinutes,
		})
	case business.StoreDetail:
		return json.Marshal(storeDetailDTO{
			Category:     d.Category,
			AcceptsCards: d.AcceptsCards,
		})
	case business.PharmacyDetail:
		return json.Marshal(pharmacyDetailDTO{
			LicenseNumber:       d.LicenseNumber,
			DispensesControlled: d.DispensesControlled,
		})
	case business.KitchenDetail:
		return json.Marshal(kitchenDetailDTO{
			Brands:       d.Brands,
			PrepCapacity: d.PrepCapacity,
		})
	default:
		return nil, errs.NewValueIsInvalidError("detail")
	}
}

func unmarshalDetail(businessType business.Type, raw json.RawMessage) (business.Detail, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	switch businessType {
	case business.TypeRestaurant:
		var dto restaurantDetailDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		return business.RestaurantDetail{
			Cuisine:            dto.Cuisine,
			PrepCapacity:       dto.PrepCapacity,
			AvgPrepTimeMinutes: dto.AvgPrepTimeMinutes,
		}, nil
	case business.TypeStore:
		var dto storeDetailDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		return business.StoreDetail{
			Category:     dto.Category,
			AcceptsCards: dto.AcceptsCards,
		}, nil
	case business.TypePharmacy:
		var dto pharmacyDetailDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		return business.PharmacyDetail{
			LicenseNumber:       dto.LicenseNumber,
			DispensesControlled: dto.DispensesControlled,
		}, nil
	case business.TypeKitchen:
		var dto kitchenDetailDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, err
		}
		return business.KitchenDetail{
			Brands:       dto.Brands,
			PrepCapacity: dto.PrepCapacity,
		}, nil
	default:
		return nil, errs.NewValueIsInvalidError("businessType")
	}
}

// toDomain converts a database DTO to a business domain aggregate using RestoreBusiness.
func toDomain(dto BusinessDTO) (*business.Business, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	address, err := kernel.NewGeoPoint(dto.AddressLat, dto.AddressLon)
	if err != nil {
		return nil, err
	}

	detail, err := unmarshalDetail(business.Type(dto.BusinessType), dto.Detail)
	if err != nil {
		return nil, err
	}

	return business.RestoreBusiness(
		id,
		dto.Name,
		business.Type(dto.BusinessType),
		business.Contact{Phone: dto.ContactPhone, Email: dto.ContactEmail},
		address,
		dto.IsOpen,
		detail,
	)
}
