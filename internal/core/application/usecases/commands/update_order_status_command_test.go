package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUpdateOrderStatusCommand(t *testing.T) {
	t.Run("valid command", func(t *testing.T) {
		orderID := kernel.NewUUID()

		cmd, err := commands.NewUpdateOrderStatusCommand(orderID, order.Preparing, "extra sauce", 20, nil)

		require.NoError(t, err)
		assert.Equal(t, orderID, cmd.OrderID())
		assert.Equal(t, order.Preparing, cmd.NewStatus())
		assert.Equal(t, "extra sauce", cmd.Notes())
		assert.Equal(t, 20, cmd.PrepTimeMinutes())
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Unknown, "", 0, nil)

		require.Error(t, err)
	})

	t.Run("negative prep time", func(t *testing.T) {
		_, err := commands.NewUpdateOrderStatusCommand(kernel.NewUUID(), order.Preparing, "", -5, nil)

		require.ErrorIs(t, err, commands.ErrPrepTimeIsInvalid)
	})

	t.Run("zero value command fails validation", func(t *testing.T) {
		var cmd commands.UpdateOrderStatusCommand

		require.ErrorIs(t, cmd.Validate(), commands.ErrUpdateOrderStatusCommandIsNotConstructed)
	})
}
