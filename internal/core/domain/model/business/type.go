package business

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Type discriminates the kind of business an order originates from.
//
// It replaces subtype inheritance with a single discriminant plus an optional
// type-specific Detail payload, so a business record lives in exactly one
// place and never needs a parallel copy kept in sync.
type Type int

const (
	// TypeUnknown represents an invalid or undefined business type.
	// This value (0) helps catch uninitialized Type values.
	TypeUnknown Type = iota

	// TypeRestaurant is a dine-in or takeaway food venue.
	TypeRestaurant

	// TypeStore is a retail store.
	TypeStore

	// TypePharmacy is a licensed pharmacy.
	TypePharmacy

	// TypeKitchen is a delivery-only (cloud) kitchen.
	TypeKitchen
)

// getTypeStrings returns a map of Type values to their wire representations.
func getTypeStrings() map[Type]string {
	return map[Type]string{
		TypeUnknown:    "unknown",
		TypeRestaurant: "restaurant",
		TypeStore:      "store",
		TypePharmacy:   "pharmacy",
		TypeKitchen:    "kitchen",
	}
}

// getValidTypeStrings returns a map of only valid Type values.
func getValidTypeStrings() map[Type]string {
	//nolint:exhaustive // TypeUnknown is intentionally excluded as it's invalid
	return map[Type]string{
		TypeRestaurant: "restaurant",
		TypeStore:      "store",
		TypePharmacy:   "pharmacy",
		TypeKitchen:    "kitchen",
	}
}

// TypeFromString parses a business type from its wire representation.
func TypeFromString(s string) (Type, error) {
	for t, str := range getValidTypeStrings() {
		if str == s {
			return t, nil
		}
	}
	return TypeUnknown, errs.NewValueIsInvalidErrorWithCause(
		"business type",
		fmt.Errorf("%q is not a valid business type", s),
	)
}

// Validate checks if the Type value is valid.
func (t Type) Validate() error {
	if _, ok := getValidTypeStrings()[t]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"business type", fmt.Errorf("%d is not a valid business type", t))
	}
	return nil
}

// String returns the wire name of the type. Implements fmt.Stringer.
func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "unknown"
}
