package ports

import (
	"context"

	"dispatch/internal/core/domain/model/business"
	"dispatch/internal/core/domain/model/order"
)

// PlatformGateway is the outbound contract to the delivery platform.
//
// All calls are best-effort relays of already-committed state: a failed call
// returns an error for the caller to log, but it never rolls back the
// transition that triggered it.
type PlatformGateway interface {
	// NotifyOrderConfirmed reports that the business accepted the order.
	NotifyOrderConfirmed(ctx context.Context, aggregate *order.Order) error

	// NotifyOrderReady reports that the order is ready for pickup.
	NotifyOrderReady(ctx context.Context, aggregate *order.Order) error

	// NotifyOrderCancelled reports that the order was cancelled, with an
	// optional human-readable reason.
	NotifyOrderCancelled(ctx context.Context, aggregate *order.Order, reason string) error

	// SyncBusinessData pushes the business's current profile to the platform.
	SyncBusinessData(ctx context.Context, aggregate *business.Business) error
}
