package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/driver"
)

// SweepStaleDriversCommandHandler flips stale available drivers offline.
// A driver that stopped reporting its position must not keep receiving
// assignments off a location that may be hours old.
type SweepStaleDriversCommandHandler struct {
	uowFactory DriverUoWFactory
	logger     *slog.Logger
}

// NewSweepStaleDriversCommandHandler creates a handler for the stale-driver sweep.
func NewSweepStaleDriversCommandHandler(uowFactory DriverUoWFactory, logger *slog.Logger) SweepStaleDriversCommandHandler {
	return SweepStaleDriversCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "sweep_stale_drivers"),
	}
}

// Handle processes the sweep command. Busy drivers with stale locations are
// logged but never flipped; they still carry an order and the
// status/assignment invariant forbids leaving Busy outside delivery
// completion.
func (h SweepStaleDriversCommandHandler) Handle(ctx context.Context, command SweepStaleDriversCommand) error {
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

	cutoff := time.Now().UTC().Add(-command.StaleAfter())
	stale, err := driversRepo.GetAllWithStaleLocations(ctx, cutoff)
	if err != nil {
		return err
	}

	swept := 0
	for _, staleDriver := range stale {
		if staleDriver.Status() == driver.StatusBusy {
			h.logger.WarnContext(ctx, "busy driver has a stale location",
				"driver_id", staleDriver.DriverID(),
				"last_active_at", staleDriver.LastActiveAt())
			continue
		}

		if err = staleDriver.SetStatus(driver.StatusOffline); err != nil {
			return err
		}
		if err = driversRepo.Update(ctx, staleDriver); err != nil {
			return err
		}
		swept++
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if swept > 0 {
		h.logger.InfoContext(ctx, "stale drivers moved offline", "count", swept)
	}
	return nil
}
