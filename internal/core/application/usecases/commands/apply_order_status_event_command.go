package commands

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrApplyOrderStatusEventCommandIsNotConstructed = errors.New(
	"ApplyOrderStatusEventCommand must be created via NewApplyOrderStatusEventCommand constructor",
)

// OrderStatusEvent is the kind of lifecycle event a platform webhook reports.
type OrderStatusEvent int

const (
	// OrderStatusEventUnknown represents an invalid or undefined event.
	OrderStatusEventUnknown OrderStatusEvent = iota

	// OrderStatusEventPickedUp reports the driver picked the order up.
	OrderStatusEventPickedUp

	// OrderStatusEventDelivered reports the order reached the customer.
	OrderStatusEventDelivered
)

// OrderStatusEventFromString parses a webhook event name.
func OrderStatusEventFromString(s string) (OrderStatusEvent, error) {
	switch s {
	case "picked_up":
		return OrderStatusEventPickedUp, nil
	case "delivered":
		return OrderStatusEventDelivered, nil
	default:
		return OrderStatusEventUnknown, errs.NewValueIsInvalidErrorWithCause(
			"order status event", fmt.Errorf("%q is not a valid order status event", s))
	}
}

// Validate checks if the OrderStatusEvent value is valid.
func (e OrderStatusEvent) Validate() error {
	switch e {
	case OrderStatusEventPickedUp, OrderStatusEventDelivered:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"order status event", fmt.Errorf("%d is not a valid order status event", e))
	}
}

// String returns the wire name of the event. Implements fmt.Stringer.
func (e OrderStatusEvent) String() string {
	switch e {
	case OrderStatusEventPickedUp:
		return "picked_up"
	case OrderStatusEventDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// ApplyOrderStatusEventCommand applies a platform-reported lifecycle event
// (picked up or delivered) to a local order.
type ApplyOrderStatusEventCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	event      OrderStatusEvent
	occurredAt time.Time
	message    string

	guard guard.ConstructorGuard
}

// NewApplyOrderStatusEventCommand creates a command for the given webhook
// event. occurredAt is the platform's event time; the zero time means "now".
// message is the platform's optional human-readable note and may be empty.
func NewApplyOrderStatusEventCommand(
	orderID kernel.UUID,
	event OrderStatusEvent,
	occurredAt time.Time,
	message string,
) (ApplyOrderStatusEventCommand, error) {
	command := ApplyOrderStatusEventCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setEvent(event),
	); err != nil {
		return ApplyOrderStatusEventCommand{}, err
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	command.occurredAt = occurredAt
	command.message = message

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrApplyOrderStatusEventCommandIsNotConstructed if validation fails.
func (c ApplyOrderStatusEventCommand) Validate() error {
	return c.guard.Validate(ErrApplyOrderStatusEventCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c ApplyOrderStatusEventCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Event returns the reported lifecycle event.
func (c ApplyOrderStatusEventCommand) Event() OrderStatusEvent {
	return c.event
}

// OccurredAt returns when the event happened according to the platform.
func (c ApplyOrderStatusEventCommand) OccurredAt() time.Time {
	return c.occurredAt
}

// Message returns the platform's note for the event, or "" when none was sent.
func (c ApplyOrderStatusEventCommand) Message() string {
	return c.message
}

func (c *ApplyOrderStatusEventCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *ApplyOrderStatusEventCommand) setEvent(event OrderStatusEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	c.event = event
	return nil
}
