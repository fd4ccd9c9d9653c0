package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// ApplyOrderStatusEventCommandHandler applies platform-reported pickup and
// delivery events to the local order, and on delivery releases the matching
// local driver's assignment if one exists.
type ApplyOrderStatusEventCommandHandler struct {
	uowFactory UoWFactory
	events     OrderEvents
}

// NewApplyOrderStatusEventCommandHandler creates a handler for order-status webhooks.
func NewApplyOrderStatusEventCommandHandler(
	uowFactory UoWFactory,
	events OrderEvents,
) ApplyOrderStatusEventCommandHandler {
	return ApplyOrderStatusEventCommandHandler{
		uowFactory: uowFactory,
		events:     events,
	}
}

// Handle processes the webhook event command.
func (h ApplyOrderStatusEventCommandHandler) Handle(ctx context.Context, command ApplyOrderStatusEventCommand) error {
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

	switch command.Event() {
	case OrderStatusEventPickedUp:
		err = aggregate.MarkPickedUp(command.OccurredAt(), command.Message())
	case OrderStatusEventDelivered:
		err = aggregate.MarkDelivered(command.OccurredAt(), command.Message())
	default:
		err = command.Event().Validate()
	}
	if err != nil {
		return err
	}

	if command.Event() == OrderStatusEventDelivered {
		if err = h.releaseLocalDriver(ctx, uow, aggregate); err != nil {
			return err
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

// releaseLocalDriver frees the assigned driver's row when the order's driver
// snapshot refers to a driver of our own fleet. Platform-owned drivers are
// not in the local table and are skipped, as is a driver that already moved
// on to another order.
func (h ApplyOrderStatusEventCommandHandler) releaseLocalDriver(
	ctx context.Context,
	uow UoW,
	aggregate *order.Order,
) error {
	info := aggregate.DriverInfo()
	if info == nil {
		return nil
	}

	driversRepo := uow.DriverRepository()

	assignedDriver, err := driversRepo.GetByDriverID(ctx, info.DriverID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = driversRepo.ReleaseOrder(ctx, assignedDriver.ID(), aggregate.ID())
	if errors.Is(err, driver.ErrNoActiveAssignment) {
		return nil
	}
	return err
}
