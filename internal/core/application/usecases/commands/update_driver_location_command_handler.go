package commands

import (
	"context"
)

// UpdateDriverLocationCommandHandler persists driver position reports.
// Position reports are frequent and small; the handler is a plain
// load-mutate-store cycle.
type UpdateDriverLocationCommandHandler struct {
	uowFactory DriverUoWFactory
}

// NewUpdateDriverLocationCommandHandler creates a handler for driver location updates.
func NewUpdateDriverLocationCommandHandler(uowFactory DriverUoWFactory) UpdateDriverLocationCommandHandler {
	return UpdateDriverLocationCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the location update command.
func (h UpdateDriverLocationCommandHandler) Handle(ctx context.Context, command UpdateDriverLocationCommand) error {
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

	if err = aggregate.UpdateLocation(command.Point()); err != nil {
		return err
	}

	if err = driversRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
