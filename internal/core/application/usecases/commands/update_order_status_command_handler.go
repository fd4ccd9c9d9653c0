package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// UpdateOrderStatusCommandHandler applies business-initiated order status
// transitions: loads the order, applies the transition through the aggregate,
// persists it with its optimistic version, and publishes the change to the
// side-effect boundary after commit.
//
// Side effects (platform relay, customer notification) are strictly
// post-commit and best-effort; a failed relay never rolls back the transition.
type UpdateOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	events     OrderEvents
}

// NewUpdateOrderStatusCommandHandler creates a handler for order status updates.
func NewUpdateOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	events OrderEvents,
) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		events:     events,
	}
}

// Handle processes the status update command.
// The transition graph is enforced by the order aggregate; an invalid
// transition surfaces as a validation error before anything is written.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, command UpdateOrderStatusCommand) error {
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

	ordersRepo := uow.OrderRepository()

	aggregate, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = aggregate.UpdateStatus(command.NewStatus(), command.Notes()); err != nil {
		return err
	}

	if command.NewStatus() == order.Preparing {
		switch {
		case command.EstimatedReadyTime() != nil:
			aggregate.SetEstimatedReadyTime(command.EstimatedReadyTime().UTC())
		case command.PrepTimeMinutes() > 0:
			aggregate.SetEstimatedReadyTime(
				time.Now().UTC().Add(time.Duration(command.PrepTimeMinutes()) * time.Minute))
		}
	}

	if err = ordersRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.events.OrderStatusChanged(ctx, aggregate)
	return nil
}
