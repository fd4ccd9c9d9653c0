package business

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrNameIsRequired is returned when a business name is empty.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrBusinessIsNotConstructed is returned when a Business was not created via its constructor.
	ErrBusinessIsNotConstructed = errors.New("Business must be created via NewBusiness or RestoreBusiness constructor")
)

// Contact holds the business's reachable contact channels.
type Contact struct {
	Phone string
	Email string
}

// Detail is the optional type-specific payload of a business. Exactly one
// concrete Detail type exists per business Type, and a payload may only be
// attached to a business of the matching type.
type Detail interface {
	// Kind returns the business Type this payload belongs to.
	Kind() Type
}

// RestaurantDetail describes a restaurant's kitchen profile.
type RestaurantDetail struct {
	Cuisine            string
	PrepCapacity       int
	AvgPrepTimeMinutes int
}

// Kind implements Detail.
func (RestaurantDetail) Kind() Type { return TypeRestaurant }

// StoreDetail describes a retail store.
type StoreDetail struct {
	Category     string
	AcceptsCards bool
}

// Kind implements Detail.
func (StoreDetail) Kind() Type { return TypeStore }

// PharmacyDetail describes a licensed pharmacy.
type PharmacyDetail struct {
	LicenseNumber       string
	DispensesControlled bool
}

// Kind implements Detail.
func (PharmacyDetail) Kind() Type { return TypePharmacy }

// KitchenDetail describes a delivery-only kitchen.
type KitchenDetail struct {
	Brands       []string
	PrepCapacity int
}

// Kind implements Detail.
func (KitchenDetail) Kind() Type { return TypeKitchen }

// Business represents a dispatch-facing view of a merchant: the discriminated
// type, its location, contact channels, open flag, and an optional
// type-specific Detail payload.
type Business struct {
	id           kernel.UUID
	name         string
	businessType Type
	contact      Contact
	address      kernel.GeoPoint
	isOpen       bool
	detail       Detail

	guard guard.ConstructorGuard
}

// NewBusiness creates a business of the given type at the given address.
// The detail payload is optional; when present its Kind must match
// businessType.
func NewBusiness(
	id kernel.UUID,
	name string,
	businessType Type,
	contact Contact,
	address kernel.GeoPoint,
	detail Detail,
) (*Business, error) {
	b := &Business{
		contact: contact,
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		b.setID(id),
		b.setName(name),
		b.setType(businessType),
		b.setAddress(address),
	); err != nil {
		return nil, err
	}

	if err := b.setDetail(detail); err != nil {
		return nil, err
	}
	return b, nil
}

// RestoreBusiness reconstructs a Business aggregate from persistent storage.
func RestoreBusiness(
	id kernel.UUID,
	name string,
	businessType Type,
	contact Contact,
	address kernel.GeoPoint,
	isOpen bool,
	detail Detail,
) (*Business, error) {
	b, err := NewBusiness(id, name, businessType, contact, address, detail)
	if err != nil {
		return nil, err
	}
	b.isOpen = isOpen
	return b, nil
}

// Validate checks if the Business was properly constructed via a constructor.
func (b *Business) Validate() error {
	if b == nil {
		return ErrBusinessIsNotConstructed
	}
	return b.guard.Validate(ErrBusinessIsNotConstructed)
}

// IsEqual compares two businesses for equality based on their unique identifiers.
func (b *Business) IsEqual(other *Business) bool {
	if other == nil {
		return false
	}
	return b.id.IsEqual(other.id)
}

// ID returns the unique identifier of the business.
func (b *Business) ID() kernel.UUID {
	return b.id
}

// Name returns the business name.
func (b *Business) Name() string {
	return b.name
}

// Type returns the business type discriminant.
func (b *Business) Type() Type {
	return b.businessType
}

// Contact returns the business's contact channels.
func (b *Business) Contact() Contact {
	return b.contact
}

// Address returns the business's location.
func (b *Business) Address() kernel.GeoPoint {
	return b.address
}

// IsOpen reports whether the business currently accepts orders.
func (b *Business) IsOpen() bool {
	return b.isOpen
}

// Detail returns the type-specific payload, or nil when none is attached.
func (b *Business) Detail() Detail {
	return b.detail
}

// Open marks the business as accepting orders.
func (b *Business) Open() {
	b.isOpen = true
}

// Close marks the business as not accepting orders.
func (b *Business) Close() {
	b.isOpen = false
}

// AttachDetail replaces the type-specific payload. The payload's Kind must
// match the business type.
func (b *Business) AttachDetail(detail Detail) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return b.setDetail(detail)
}

func (b *Business) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Business) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	b.name = name
	return nil
}

func (b *Business) setType(businessType Type) error {
	if err := businessType.Validate(); err != nil {
		return err
	}
	b.businessType = businessType
	return nil
}

func (b *Business) setAddress(address kernel.GeoPoint) error {
	if err := address.Validate(); err != nil {
		return err
	}
	b.address = address
	return nil
}

func (b *Business) setDetail(detail Detail) error {
	if detail == nil {
		b.detail = nil
		return nil
	}
	if detail.Kind() != b.businessType {
		return errs.NewValueIsInvalidErrorWithCause(
			"business detail",
			fmt.Errorf("%s payload cannot be attached to a %s business",
				detail.Kind(), b.businessType),
		)
	}
	b.detail = detail
	return nil
}
