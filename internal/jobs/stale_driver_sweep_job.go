package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch/internal/core/application/usecases/commands"
)

// StaleDriverSweepJob periodically marks drivers offline when their last
// location report is older than the staleness threshold. Busy drivers are
// never swept; the handler only flags them for operators.
type StaleDriverSweepJob struct {
	handler    commands.SweepStaleDriversCommandHandler
	staleAfter time.Duration
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewStaleDriverSweepJob creates a sweep job that runs every minute with the
// given staleness threshold.
func NewStaleDriverSweepJob(
	handler commands.SweepStaleDriversCommandHandler,
	staleAfter time.Duration,
	logger *slog.Logger,
) *StaleDriverSweepJob {
	return &StaleDriverSweepJob{
		handler:    handler,
		staleAfter: staleAfter,
		cron:       cron.New(),
		logger:     logger.With("component", "stale_driver_sweep_job"),
	}
}

// Start begins the sweep job, running once a minute.
func (j *StaleDriverSweepJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		ctx := context.Background()

		cmd, err := commands.NewSweepStaleDriversCommand(j.staleAfter)
		if err != nil {
			j.logger.ErrorContext(ctx, "Invalid sweep configuration", "error", err)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Stale driver sweep failed", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale driver sweep job started (running every minute)",
		"stale_after", j.staleAfter)
	return nil
}

// Stop stops the sweep job.
func (j *StaleDriverSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale driver sweep job stopped")
}
