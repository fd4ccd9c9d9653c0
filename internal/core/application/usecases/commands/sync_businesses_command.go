package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrSyncBusinessesCommandIsNotConstructed = errors.New(
	"SyncBusinessesCommand must be created via NewSyncBusinessesCommand constructor",
)

// SyncBusinessesCommand triggers a push of every open business's profile to
// the delivery platform. This is a parameterless command initiated by a
// periodic job.
type SyncBusinessesCommand struct {
	guard guard.ConstructorGuard
}

// NewSyncBusinessesCommand creates a command to sync open businesses.
func NewSyncBusinessesCommand() SyncBusinessesCommand {
	return SyncBusinessesCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
// Returns ErrSyncBusinessesCommandIsNotConstructed if validation fails.
func (c *SyncBusinessesCommand) Validate() error {
	return c.guard.Validate(ErrSyncBusinessesCommandIsNotConstructed)
}
