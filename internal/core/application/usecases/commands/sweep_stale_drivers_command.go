package commands

import (
	"errors"
	"time"

	"dispatch/internal/pkg/guard"
)

var (
	ErrSweepStaleDriversCommandIsNotConstructed = errors.New(
		"SweepStaleDriversCommand must be created via NewSweepStaleDriversCommand constructor",
	)
	ErrStaleAfterIsInvalid = errors.New("stale-after duration must be greater than 0")
)

// SweepStaleDriversCommand triggers a sweep over drivers whose location
// report is older than the given threshold. Stale available drivers are
// moved offline so they stop matching; stale busy drivers are left alone
// (they still carry an order) and only reported.
//
// Example:
//
//	cmd, err := NewSweepStaleDriversCommand(10 * time.Minute)
//	handler := NewSweepStaleDriversCommandHandler(uowFactory)
//	err = handler.Handle(ctx, cmd)
type SweepStaleDriversCommand struct { //nolint:recvcheck //using for validation
	staleAfter time.Duration

	guard guard.ConstructorGuard
}

// NewSweepStaleDriversCommand creates a command to sweep drivers whose last
// location report is older than staleAfter.
func NewSweepStaleDriversCommand(staleAfter time.Duration) (SweepStaleDriversCommand, error) {
	if staleAfter <= 0 {
		return SweepStaleDriversCommand{}, ErrStaleAfterIsInvalid
	}

	return SweepStaleDriversCommand{
		staleAfter: staleAfter,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrSweepStaleDriversCommandIsNotConstructed if validation fails.
func (c SweepStaleDriversCommand) Validate() error {
	return c.guard.Validate(ErrSweepStaleDriversCommandIsNotConstructed)
}

// StaleAfter returns the staleness threshold.
func (c SweepStaleDriversCommand) StaleAfter() time.Duration {
	return c.staleAfter
}
