// Package sideeffects runs the post-commit reactions to order changes:
// relaying status updates to the ordering platform and broadcasting
// real-time notifications to business operators.
//
// Reactions run on a bounded worker pool so a slow platform call never
// blocks the request that committed the change. When the pool is saturated
// the reaction is logged and dropped; the committed state is the source of
// truth and the platform can resynchronize via its webhooks.
package sideeffects

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/notifications"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/worker"
)

var _ commands.OrderEvents = (*Dispatcher)(nil)

// Dispatcher fans committed order changes out to the platform gateway and
// the notification hub.
type Dispatcher struct {
	pool     *worker.Pool
	platform platformNotifier
	hub      *notifications.Hub
	logger   *slog.Logger
}

// platformNotifier is the slice of the platform gateway the dispatcher uses.
type platformNotifier interface {
	NotifyOrderConfirmed(ctx context.Context, aggregate *order.Order) error
	NotifyOrderReady(ctx context.Context, aggregate *order.Order) error
	NotifyOrderCancelled(ctx context.Context, aggregate *order.Order, reason string) error
}

// NewDispatcher wires the dispatcher to its worker pool, platform gateway,
// and notification hub.
func NewDispatcher(
	pool *worker.Pool,
	platform platformNotifier,
	hub *notifications.Hub,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if pool == nil {
		return nil, errs.NewValueIsRequiredError("pool")
	}
	if platform == nil {
		return nil, errs.NewValueIsRequiredError("platform")
	}
	if hub == nil {
		return nil, errs.NewValueIsRequiredError("hub")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &Dispatcher{
		pool:     pool,
		platform: platform,
		hub:      hub,
		logger:   logger.With("component", "side_effects"),
	}, nil
}

// OrderStatusChanged reacts to a committed status transition. Confirmed,
// Ready, and Cancelled are relayed to the platform; every transition is
// broadcast to the order's business.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, aggregate *order.Order) {
	status := aggregate.Status()

	switch status {
	case order.Confirmed:
		d.submit(ctx, aggregate, "relay order confirmed", d.platform.NotifyOrderConfirmed)
	case order.Ready:
		d.submit(ctx, aggregate, "relay order ready", d.platform.NotifyOrderReady)
	case order.Cancelled:
		reason := aggregate.BusinessNotes()
		d.submit(ctx, aggregate, "relay order cancelled",
			func(ctx context.Context, aggregate *order.Order) error {
				return d.platform.NotifyOrderCancelled(ctx, aggregate, reason)
			})
	}

	d.broadcast(statusNotification(aggregate))
}

// DriverAssigned reacts to a committed driver assignment.
func (d *Dispatcher) DriverAssigned(_ context.Context, aggregate *order.Order) {
	d.broadcast(driverNotification(aggregate))
}

// submit queues one platform call, detaching it from the request context so
// the relay survives the response being written.
func (d *Dispatcher) submit(
	ctx context.Context,
	aggregate *order.Order,
	action string,
	call func(ctx context.Context, aggregate *order.Order) error,
) {
	detached := context.WithoutCancel(ctx)
	orderID := aggregate.ID()

	accepted := d.pool.Submit(func() {
		if err := call(detached, aggregate); err != nil {
			d.logger.ErrorContext(detached, "platform relay failed",
				"action", action, "order_id", orderID, "error", err)
		}
	})
	if !accepted {
		d.logger.WarnContext(ctx, "side effect queue full, dropping platform relay",
			"action", action, "order_id", orderID)
	}
}

func (d *Dispatcher) broadcast(notification notifications.Notification) {
	accepted := d.pool.Submit(func() {
		d.hub.Send(notification)
	})
	if !accepted {
		d.logger.Warn("side effect queue full, dropping notification",
			"type", notification.Type, "business_id", notification.BusinessID)
	}
}

func statusNotification(aggregate *order.Order) notifications.Notification {
	status := aggregate.Status()

	payload := map[string]any{
		"order_id":     aggregate.ID().String(),
		"order_number": aggregate.OrderNumber(),
		"status":       status.String(),
	}
	if estimate := aggregate.EstimatedReadyTime(); status == order.Preparing && estimate != nil {
		payload["estimated_ready_time"] = estimate.UTC().Format(time.RFC3339)
	}
	if notes := aggregate.BusinessNotes(); notes != "" {
		switch status {
		case order.Cancelled:
			payload["reason"] = notes
		case order.OutForDelivery, order.Delivered:
			payload["message"] = notes
		}
	}

	priority := "normal"
	if status == order.Cancelled {
		priority = "high"
	}

	return notifications.Notification{
		ID:         kernel.NewUUID(),
		BusinessID: aggregate.BusinessID(),
		Type:       "order_status_changed",
		Title:      "Order " + aggregate.OrderNumber(),
		Message:    fmt.Sprintf("Order %s is now %s", aggregate.OrderNumber(), status),
		Payload:    payload,
		Priority:   priority,
		CreatedAt:  time.Now().UTC(),
	}
}

func driverNotification(aggregate *order.Order) notifications.Notification {
	payload := map[string]any{
		"order_id":     aggregate.ID().String(),
		"order_number": aggregate.OrderNumber(),
	}
	message := "A driver was assigned to order " + aggregate.OrderNumber()
	if info := aggregate.DriverInfo(); info != nil {
		payload["driver_id"] = info.DriverID
		payload["driver_name"] = info.Name
		payload["driver_phone"] = info.Phone
		payload["vehicle_type"] = info.VehicleType
		if info.EstimatedPickupAt != nil {
			payload["estimated_pickup_time"] = info.EstimatedPickupAt.UTC().Format(time.RFC3339)
		}
		if info.TrackingURL != "" {
			payload["tracking_url"] = info.TrackingURL
		}
		message = fmt.Sprintf("%s was assigned to order %s", info.Name, aggregate.OrderNumber())
	}

	return notifications.Notification{
		ID:         kernel.NewUUID(),
		BusinessID: aggregate.BusinessID(),
		Type:       "driver_assigned",
		Title:      "Driver assigned",
		Message:    message,
		Payload:    payload,
		Priority:   "normal",
		CreatedAt:  time.Now().UTC(),
	}
}
