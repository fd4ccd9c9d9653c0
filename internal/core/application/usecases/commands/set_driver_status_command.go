package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrSetDriverStatusCommandIsNotConstructed = errors.New(
	"SetDriverStatusCommand must be created via NewSetDriverStatusCommand constructor",
)

// SetDriverStatusCommand changes a driver's availability status.
// Busy is not accepted here; it is entered only through order assignment.
type SetDriverStatusCommand struct { //nolint:recvcheck //using for validation
	driverID  kernel.UUID
	newStatus driver.Status

	guard guard.ConstructorGuard
}

// NewSetDriverStatusCommand creates a command to change the driver's status.
func NewSetDriverStatusCommand(driverID kernel.UUID, newStatus driver.Status) (SetDriverStatusCommand, error) {
	command := SetDriverStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setNewStatus(newStatus),
	); err != nil {
		return SetDriverStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSetDriverStatusCommandIsNotConstructed if validation fails.
func (c SetDriverStatusCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverStatusCommandIsNotConstructed)
}

// DriverID returns the target driver's identifier.
func (c SetDriverStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

// NewStatus returns the requested availability status.
func (c SetDriverStatusCommand) NewStatus() driver.Status {
	return c.newStatus
}

func (c *SetDriverStatusCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.driverID = id
	return nil
}

func (c *SetDriverStatusCommand) setNewStatus(status driver.Status) error {
	if err := status.Validate(); err != nil {
		return err
	}

	c.newStatus = status
	return nil
}
