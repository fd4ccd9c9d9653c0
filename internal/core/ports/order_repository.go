// Package ports defines repository and gateway interfaces for the dispatch
// domain. These interfaces establish contracts between the domain layer and
// infrastructure, enabling dependency inversion and testability.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	//
	// The write is guarded by the aggregate's optimistic version: the row is
	// updated only if its stored version still matches the version the
	// aggregate was loaded with. A lost race surfaces as a conflict error so
	// the caller can reload and retry.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllActiveForBusiness retrieves the business's orders that have not
	// reached a terminal status, newest first.
	GetAllActiveForBusiness(ctx context.Context, businessID kernel.UUID) ([]*order.Order, error)
}
