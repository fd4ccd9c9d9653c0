package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/guard"
)

var ErrApplyDriverAssignmentCommandIsNotConstructed = errors.New(
	"ApplyDriverAssignmentCommand must be created via NewApplyDriverAssignmentCommand constructor",
)

// ApplyDriverAssignmentCommand applies a platform-announced driver assignment
// to a local order. The driver is the platform's own; only the snapshot is
// recorded here.
type ApplyDriverAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	info    order.DriverInfo

	guard guard.ConstructorGuard
}

// NewApplyDriverAssignmentCommand creates a command carrying the platform's
// driver snapshot for the given order.
func NewApplyDriverAssignmentCommand(orderID kernel.UUID, info order.DriverInfo) (ApplyDriverAssignmentCommand, error) {
	command := ApplyDriverAssignmentCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setInfo(info),
	); err != nil {
		return ApplyDriverAssignmentCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrApplyDriverAssignmentCommandIsNotConstructed if validation fails.
func (c ApplyDriverAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrApplyDriverAssignmentCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c ApplyDriverAssignmentCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Info returns the platform's driver snapshot.
func (c ApplyDriverAssignmentCommand) Info() order.DriverInfo {
	return c.info
}

func (c *ApplyDriverAssignmentCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *ApplyDriverAssignmentCommand) setInfo(info order.DriverInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}

	c.info = info
	return nil
}
