package commands

import (
	"context"
)

// SetDriverStatusCommandHandler applies driver availability changes.
// The status/assignment invariant is enforced by the driver aggregate.
type SetDriverStatusCommandHandler struct {
	uowFactory DriverUoWFactory
}

// NewSetDriverStatusCommandHandler creates a handler for driver status changes.
func NewSetDriverStatusCommandHandler(uowFactory DriverUoWFactory) SetDriverStatusCommandHandler {
	return SetDriverStatusCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the status change command.
func (h SetDriverStatusCommandHandler) Handle(ctx context.Context, command SetDriverStatusCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driversRepo := uow.DriverRepository()

	aggregate, err := driversRepo.Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	if err = aggregate.SetStatus(command.NewStatus()); err != nil {
		return err
	}

	if err = driversRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
