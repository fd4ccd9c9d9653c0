// Package jobs provides scheduled background tasks for the dispatch system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the dispatch service.
//
// # Available Jobs
//
// 1. StaleDriverSweepJob - Runs every minute to mark drivers offline when their location reports go stale
// 2. BusinessSyncJob - Runs every fifteen minutes to push open business profiles to the ordering platform
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(sweepHandler, syncHandler, staleAfter, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - The sweep job never touches busy drivers; those are only logged for operators
// - The sync job logs per-business relay failures and continues with the rest
// - Failed job starts will stop any already running jobs
package jobs
