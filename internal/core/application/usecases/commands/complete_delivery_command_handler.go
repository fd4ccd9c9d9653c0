package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/order"
)

// CompleteDeliveryCommandHandler finishes a delivery end to end: the driver
// aggregate absorbs the rating and earnings and returns to available, and the
// order is marked delivered. Both writes commit in one transaction.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
	events     OrderEvents
}

// NewCompleteDeliveryCommandHandler creates a handler for delivery completion.
func NewCompleteDeliveryCommandHandler(uowFactory UoWFactory, events OrderEvents) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		events:     events,
	}
}

// Handle processes the completion command.
//
// Returns driver.ErrNoActiveAssignment when the driver does not carry the
// given order; neither aggregate is mutated in that case.
func (h CompleteDeliveryCommandHandler) Handle(ctx context.Context, command CompleteDeliveryCommand) error {
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
	ordersRepo := uow.OrderRepository()

	assignedDriver, err := driversRepo.Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	aggregate, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = assignedDriver.CompleteDelivery(aggregate.ID(), command.Rating(), command.Earnings()); err != nil {
		return err
	}

	if aggregate.Status() != order.Delivered {
		if err = aggregate.MarkDelivered(time.Now().UTC(), ""); err != nil {
			return err
		}
	}

	if err = driversRepo.Update(ctx, assignedDriver); err != nil {
		return err
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
