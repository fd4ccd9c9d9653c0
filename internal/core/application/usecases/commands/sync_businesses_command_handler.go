package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// SyncBusinessesCommandHandler pushes every open business's profile to the
// delivery platform. Each push is best-effort: a failed call is logged and
// the remaining businesses are still synced.
type SyncBusinessesCommandHandler struct {
	uowFactory BusinessUoWFactory
	gateway    ports.PlatformGateway
	logger     *slog.Logger
}

// NewSyncBusinessesCommandHandler creates a handler for the business sync.
func NewSyncBusinessesCommandHandler(
	uowFactory BusinessUoWFactory,
	gateway ports.PlatformGateway,
	logger *slog.Logger,
) SyncBusinessesCommandHandler {
	return SyncBusinessesCommandHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		logger:     logger.With("component", "sync_businesses"),
	}
}

// Handle processes the sync command.
func (h SyncBusinessesCommandHandler) Handle(ctx context.Context, command SyncBusinessesCommand) error {
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

	open, err := uow.BusinessRepository().GetAllOpen(ctx)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, aggregate := range open {
		if err = h.gateway.SyncBusinessData(ctx, aggregate); err != nil {
			h.logger.ErrorContext(ctx, "business sync failed",
				"business_id", aggregate.ID(), "error", err)
		}
	}
	return nil
}
