package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	ErrAssignNearestDriverCommandIsNotConstructed = errors.New(
		"AssignNearestDriverCommand must be created via NewAssignNearestDriverCommand constructor",
	)
	ErrSearchRadiusIsInvalid error = errs.NewValueIsInvalidErrorWithCause(
		"max distance km", errors.New("search radius must be greater than 0"))
)

// AssignNearestDriverCommand requests the assignment of the closest eligible
// driver to a delivery order. The order must carry delivery coordinates.
//
// Example:
//
//	cmd, err := NewAssignNearestDriverCommand(orderID, 10)
//	if err != nil {
//	    return fmt.Errorf("invalid assignment request: %w", err)
//	}
//
//	handler := NewAssignNearestDriverCommandHandler(uowFactory, events)
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, ErrNoDriversAvailable) {
//	    // nobody eligible within the radius right now
//	}
type AssignNearestDriverCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	radiusKm float64

	guard guard.ConstructorGuard
}

// NewAssignNearestDriverCommand creates a command to assign the nearest driver
// to the given order, searching within radiusKm of the delivery address.
func NewAssignNearestDriverCommand(orderID kernel.UUID, radiusKm float64) (AssignNearestDriverCommand, error) {
	command := AssignNearestDriverCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setRadiusKm(radiusKm),
	); err != nil {
		return AssignNearestDriverCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignNearestDriverCommandIsNotConstructed if validation fails.
func (c AssignNearestDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignNearestDriverCommandIsNotConstructed)
}

// OrderID returns the target order's identifier.
func (c AssignNearestDriverCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RadiusKm returns the search radius in kilometers.
func (c AssignNearestDriverCommand) RadiusKm() float64 {
	return c.radiusKm
}

func (c *AssignNearestDriverCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *AssignNearestDriverCommand) setRadiusKm(radiusKm float64) error {
	if radiusKm <= 0 {
		return ErrSearchRadiusIsInvalid
	}

	c.radiusKm = radiusKm
	return nil
}
