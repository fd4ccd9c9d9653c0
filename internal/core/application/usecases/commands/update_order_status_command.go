package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
		"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor",
	)
	ErrPrepTimeIsInvalid error = errs.NewValueIsInvalidErrorWithCause(
		"prep time minutes", errors.New("prep time must not be negative"))
)

// UpdateOrderStatusCommand represents a business-initiated order status
// transition: confirming, starting preparation, marking ready, handing to
// delivery, completing, cancelling, or refunding.
//
// Example:
//
//	cmd, err := NewUpdateOrderStatusCommand(orderID, order.Preparing, "extra sauce", 20, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid status update: %w", err)
//	}
//
//	handler := NewUpdateOrderStatusCommandHandler(uowFactory, events)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to update order status: %w", err)
//	}
type UpdateOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID            kernel.UUID
	newStatus          order.Status
	notes              string
	prepTimeMinutes    int
	estimatedReadyTime *time.Time

	guard guard.ConstructorGuard
}

// NewUpdateOrderStatusCommand creates a command to transition an order.
// The notes are optional business commentary shown to the customer.
// prepTimeMinutes, when positive, sets the estimated ready time relative to
// now; estimatedReadyTime, when non-nil, sets it as an absolute instant and
// takes precedence over the minutes. Both are only meaningful for the
// Preparing transition.
func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	newStatus order.Status,
	notes string,
	prepTimeMinutes int,
	estimatedReadyTime *time.Time,
) (UpdateOrderStatusCommand, error) {
	command := UpdateOrderStatusCommand{
		notes:              notes,
		estimatedReadyTime: estimatedReadyTime,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setNewStatus(newStatus),
		command.setPrepTimeMinutes(prepTimeMinutes),
	); err != nil {
		return UpdateOrderStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrUpdateOrderStatusCommandIsNotConstructed if validation fails.
func (c UpdateOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// NewStatus returns the requested status.
func (c UpdateOrderStatusCommand) NewStatus() order.Status {
	return c.newStatus
}

// Notes returns the business's commentary, possibly empty.
func (c UpdateOrderStatusCommand) Notes() string {
	return c.notes
}

// PrepTimeMinutes returns the preparation estimate in minutes, zero when unset.
func (c UpdateOrderStatusCommand) PrepTimeMinutes() int {
	return c.prepTimeMinutes
}

// EstimatedReadyTime returns the absolute ready estimate, or nil when unset.
func (c UpdateOrderStatusCommand) EstimatedReadyTime() *time.Time {
	return c.estimatedReadyTime
}

func (c *UpdateOrderStatusCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *UpdateOrderStatusCommand) setNewStatus(status order.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.newStatus = status
	return nil
}

func (c *UpdateOrderStatusCommand) setPrepTimeMinutes(minutes int) error {
	if minutes < 0 {
		return ErrPrepTimeIsInvalid
	}

	c.prepTimeMinutes = minutes
	return nil
}
