package commands

import (
	"context"

	"dispatch/internal/core/domain/model/order"
)

// ApplyDriverAssignmentCommandHandler applies a platform webhook's driver
// assignment: records the driver snapshot on the order, moves it to
// out-for-delivery, and publishes the change after commit.
//
// Signature verification happens at the transport boundary; by the time this
// handler runs the payload is authenticated.
type ApplyDriverAssignmentCommandHandler struct {
	uowFactory OrderUoWFactory
	events     OrderEvents
}

// NewApplyDriverAssignmentCommandHandler creates a handler for assignment webhooks.
func NewApplyDriverAssignmentCommandHandler(
	uowFactory OrderUoWFactory,
	events OrderEvents,
) ApplyDriverAssignmentCommandHandler {
	return ApplyDriverAssignmentCommandHandler{
		uowFactory: uowFactory,
		events:     events,
	}
}

// Handle processes the assignment webhook command.
func (h ApplyDriverAssignmentCommandHandler) Handle(ctx context.Context, command ApplyDriverAssignmentCommand) error {
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

	if err = aggregate.AssignDriver(command.Info()); err != nil {
		return err
	}

	if aggregate.Status() != order.OutForDelivery {
		if err = aggregate.UpdateStatus(order.OutForDelivery, ""); err != nil {
			return err
		}
	}

	if err = ordersRepo.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.events.DriverAssigned(ctx, aggregate)
	return nil
}
