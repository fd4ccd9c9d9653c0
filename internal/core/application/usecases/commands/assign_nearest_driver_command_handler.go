package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// maxAssignmentCandidates bounds how many ranked candidates an assignment
// attempt walks through before giving up.
const maxAssignmentCandidates = 3

// ErrNoDriversAvailable is returned when no eligible driver within the search
// radius could be claimed for the order.
var ErrNoDriversAvailable = errors.New("no drivers available for assignment")

// AssignNearestDriverCommandHandler orchestrates driver assignment: ranks
// eligible drivers by proximity to the delivery address and claims the
// closest one that is still free.
//
// The claim is a conditional update on the driver row, so when two orders race
// for the same driver exactly one wins; the loser falls through to the next
// ranked candidate.
type AssignNearestDriverCommandHandler struct {
	uowFactory UoWFactory
	events     OrderEvents
}

// NewAssignNearestDriverCommandHandler creates a handler for driver assignment operations.
func NewAssignNearestDriverCommandHandler(uowFactory UoWFactory, events OrderEvents) AssignNearestDriverCommandHandler {
	return AssignNearestDriverCommandHandler{
		uowFactory: uowFactory,
		events:     events,
	}
}

// Handle processes the assignment command.
//
// Orders without delivery coordinates are rejected before any candidate
// search. Returns ErrNoDriversAvailable when the ranked candidates are
// exhausted without a successful claim.
func (h AssignNearestDriverCommandHandler) Handle(ctx context.Context, command AssignNearestDriverCommand) error {
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
	driversRepo := uow.DriverRepository()

	aggregate, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	address := aggregate.Address()
	if address == nil {
		return order.ErrDeliveryCoordinatesMissing
	}
	origin, ok := address.Coordinates()
	if !ok {
		return order.ErrDeliveryCoordinatesMissing
	}

	available, err := driversRepo.GetAllAvailable(ctx)
	if err != nil {
		return err
	}

	candidates, err := services.NewDriverMatcher().FindNearest(
		available, origin, command.RadiusKm(), maxAssignmentCandidates)
	if errors.Is(err, services.ErrNoDriversInRange) {
		return ErrNoDriversAvailable
	}
	if err != nil {
		return err
	}

	winner, err := h.claimFirstFree(ctx, driversRepo, candidates, aggregate)
	if err != nil {
		return err
	}

	if err = aggregate.AssignDriver(order.DriverInfo{
		DriverID:    winner.DriverID(),
		Name:        winner.Name(),
		Phone:       winner.Phone(),
		VehicleType: winner.VehicleType(),
	}); err != nil {
		return err
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

// claimFirstFree walks the ranked candidates and claims the first driver whose
// conditional update succeeds. A candidate lost to a concurrent assignment is
// skipped, any other failure aborts.
func (h AssignNearestDriverCommandHandler) claimFirstFree(
	ctx context.Context,
	driversRepo ports.DriverRepository,
	candidates []services.Candidate,
	aggregate *order.Order,
) (*driver.Driver, error) {
	for _, candidate := range candidates {
		err := driversRepo.AssignOrder(ctx, candidate.Driver.ID(), aggregate.ID())
		if errors.Is(err, driver.ErrDriverUnavailable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return candidate.Driver, nil
	}
	return nil, ErrNoDriversAvailable
}
