package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand finishes a driver's active delivery: the order
// becomes delivered, the driver returns to available, and the driver's
// rolling stats absorb the optional rating and the earnings.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	orderID  kernel.UUID
	rating   *float64
	earnings float64

	guard guard.ConstructorGuard
}

// NewCompleteDeliveryCommand creates a command to complete the driver's
// delivery of the given order. The rating, when present, must be within
// [0, 5]; earnings must not be negative.
func NewCompleteDeliveryCommand(
	driverID kernel.UUID,
	orderID kernel.UUID,
	rating *float64,
	earnings float64,
) (CompleteDeliveryCommand, error) {
	command := CompleteDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setOrderID(orderID),
		command.setRating(rating),
		command.setEarnings(earnings),
	); err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCompleteDeliveryCommandIsNotConstructed if validation fails.
func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

// DriverID returns the completing driver's identifier.
func (c CompleteDeliveryCommand) DriverID() kernel.UUID {
	return c.driverID
}

// OrderID returns the delivered order's identifier.
func (c CompleteDeliveryCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Rating returns the customer rating, or nil when the delivery was unrated.
func (c CompleteDeliveryCommand) Rating() *float64 {
	return c.rating
}

// Earnings returns the driver's earnings for this delivery.
func (c CompleteDeliveryCommand) Earnings() float64 {
	return c.earnings
}

func (c *CompleteDeliveryCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.driverID = id
	return nil
}

func (c *CompleteDeliveryCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *CompleteDeliveryCommand) setRating(rating *float64) error {
	if rating != nil && (*rating < 0 || *rating > 5) {
		return errs.NewValueIsOutOfRangeError("rating", *rating, 0, 5)
	}

	c.rating = rating
	return nil
}

func (c *CompleteDeliveryCommand) setEarnings(earnings float64) error {
	if earnings < 0 {
		return errs.NewValueIsOutOfRangeError("earnings", earnings, 0, "+inf")
	}

	c.earnings = earnings
	return nil
}
