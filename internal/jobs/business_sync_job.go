package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"dispatch/internal/core/application/usecases/commands"
)

// BusinessSyncJob periodically pushes open business profiles to the ordering
// platform so its listings stay current.
type BusinessSyncJob struct {
	handler commands.SyncBusinessesCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewBusinessSyncJob creates a sync job that runs every fifteen minutes.
func NewBusinessSyncJob(handler commands.SyncBusinessesCommandHandler, logger *slog.Logger) *BusinessSyncJob {
	return &BusinessSyncJob{
		handler: handler,
		cron:    cron.New(),
		logger:  logger.With("component", "business_sync_job"),
	}
}

// Start begins the sync job, running every fifteen minutes.
func (j *BusinessSyncJob) Start() error {
	_, err := j.cron.AddFunc("*/15 * * * *", func() {
		ctx := context.Background()

		if err := j.handler.Handle(ctx, commands.NewSyncBusinessesCommand()); err != nil {
			j.logger.ErrorContext(ctx, "Business sync failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Business sync job started (running every 15 minutes)")
	return nil
}

// Stop stops the sync job.
func (j *BusinessSyncJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Business sync job stopped")
}
