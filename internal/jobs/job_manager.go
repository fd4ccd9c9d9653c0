package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	staleDriverSweepJob *StaleDriverSweepJob
	businessSyncJob     *BusinessSyncJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	sweepHandler commands.SweepStaleDriversCommandHandler,
	syncHandler commands.SyncBusinessesCommandHandler,
	staleAfter time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		staleDriverSweepJob: NewStaleDriverSweepJob(sweepHandler, staleAfter, logger),
		businessSyncJob:     NewBusinessSyncJob(syncHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.staleDriverSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start stale driver sweep job: %w", err)
	}

	if err := jm.businessSyncJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.staleDriverSweepJob.Stop()
		return fmt.Errorf("failed to start business sync job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleDriverSweepJob.Stop()
	jm.businessSyncJob.Stop()
}
