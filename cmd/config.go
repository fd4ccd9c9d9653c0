package cmd

import "time"

// Config carries everything the process needs from the environment.
// String fields are passed through as-is; durations and counts are
// parsed by the entry point with sensible defaults.
type Config struct {
	HTTPPort           string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	DBSslMode          string
	PlatformURL        string
	PlatformAPIKey     string
	PlatformTimeout    time.Duration
	PlatformMaxRetries int
	WebhookSecret      string
	NotifyHistoryLimit int
	NotifyReplayCount  int
	SideEffectWorkers  int
	SideEffectQueue    int
	DriverStaleAfter   time.Duration
}
