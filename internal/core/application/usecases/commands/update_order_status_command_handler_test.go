package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing.
type MockStatusOrderRepository struct{ mock.Mock }

func (m *MockStatusOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockStatusOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockStatusOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockStatusOrderRepository) GetAllActiveForBusiness(ctx context.Context, businessID kernel.UUID) ([]*order.Order, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockStatusOrderUoW struct{ mock.Mock }

func (m *MockStatusOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStatusOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockStatusOrderUoWFactory struct{ mock.Mock }

func (m *MockStatusOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// recordingOrderEvents captures published events without mock plumbing.
type recordingOrderEvents struct {
	statusChanged  []*order.Order
	driverAssigned []*order.Order
}

func (r *recordingOrderEvents) OrderStatusChanged(_ context.Context, aggregate *order.Order) {
	r.statusChanged = append(r.statusChanged, aggregate)
}

func (r *recordingOrderEvents) DriverAssigned(_ context.Context, aggregate *order.Order) {
	r.driverAssigned = append(r.driverAssigned, aggregate)
}

func pendingOrder(t *testing.T) *order.Order {
	t.Helper()

	location, err := kernel.NewGeoPoint(29.3759, 47.9774)
	require.NoError(t, err)

	aggregate, err := order.NewOrder(
		kernel.NewUUID(),
		"ORD-1001",
		kernel.NewUUID(),
		order.Customer{Name: "Fatima", Phone: "+96560000001"},
		[]order.Item{{Name: "Machboos", Quantity: 1, UnitPrice: 3.5}},
		order.DeliveryTypeDelivery,
		&order.Address{Street: "Block 4, Salmiya", Location: &location},
		order.Payment{Subtotal: 3.5, DeliveryFee: 1, Total: 4.5, Method: "card"},
	)
	require.NoError(t, err)
	return aggregate
}

func TestUpdateOrderStatusCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := pendingOrder(t)

	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Confirmed, "on it", 0, nil)
	require.NoError(t, err)

	mockRepo := new(MockStatusOrderRepository)
	mockUoW := new(MockStatusOrderUoW)
	mockFactory := new(MockStatusOrderUoWFactory)
	events := &recordingOrderEvents{}

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("OrderRepository").Return(mockRepo).Once(),
		mockRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once(),
		mockRepo.On("Update", ctx, aggregate).Return(nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, events)

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, aggregate.Status())
	require.NotNil(t, aggregate.ConfirmedAt())
	assert.Equal(t, "on it", aggregate.BusinessNotes())
	require.Len(t, events.statusChanged, 1)
	assert.Same(t, aggregate, events.statusChanged[0])
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_PreparingSetsEstimate(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := pendingOrder(t)
	require.NoError(t, aggregate.UpdateStatus(order.Confirmed, ""))

	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Preparing, "", 25, nil)
	require.NoError(t, err)

	mockRepo := new(MockStatusOrderRepository)
	mockUoW := new(MockStatusOrderUoW)
	mockFactory := new(MockStatusOrderUoWFactory)
	events := &recordingOrderEvents{}

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("OrderRepository").Return(mockRepo).Once()
	mockRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	mockRepo.On("Update", ctx, aggregate).Return(nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, events)

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, order.Preparing, aggregate.Status())
	require.NotNil(t, aggregate.EstimatedReadyTime())
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_PreparingAbsoluteEstimateWins(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := pendingOrder(t)
	require.NoError(t, aggregate.UpdateStatus(order.Confirmed, ""))

	readyAt := time.Date(2026, 8, 14, 13, 0, 0, 0, time.UTC)
	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Preparing, "", 25, &readyAt)
	require.NoError(t, err)

	mockRepo := new(MockStatusOrderRepository)
	mockUoW := new(MockStatusOrderUoW)
	mockFactory := new(MockStatusOrderUoWFactory)

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("OrderRepository").Return(mockRepo).Once()
	mockRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	mockRepo.On("Update", ctx, aggregate).Return(nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, &recordingOrderEvents{})

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	require.NotNil(t, aggregate.EstimatedReadyTime())
	assert.True(t, aggregate.EstimatedReadyTime().Equal(readyAt))
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_InvalidTransition(t *testing.T) {
	// Arrange
	ctx := t.Context()
	aggregate := pendingOrder(t)

	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Delivered, "", 0, nil)
	require.NoError(t, err)

	mockRepo := new(MockStatusOrderRepository)
	mockUoW := new(MockStatusOrderUoW)
	mockFactory := new(MockStatusOrderUoWFactory)
	events := &recordingOrderEvents{}

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("OrderRepository").Return(mockRepo).Once()
	mockRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, events)

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Equal(t, order.Pending, aggregate.Status())
	assert.Empty(t, events.statusChanged)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_UpdateConflict(t *testing.T) {
	// A lost optimistic-concurrency race surfaces as the repository's error
	// and must not publish any event.
	ctx := t.Context()
	aggregate := pendingOrder(t)

	cmd, err := commands.NewUpdateOrderStatusCommand(aggregate.ID(), order.Confirmed, "", 0, nil)
	require.NoError(t, err)

	conflict := errors.New("order version conflict")
	mockRepo := new(MockStatusOrderRepository)
	mockUoW := new(MockStatusOrderUoW)
	mockFactory := new(MockStatusOrderUoWFactory)
	events := &recordingOrderEvents{}

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("OrderRepository").Return(mockRepo).Once()
	mockRepo.On("Get", ctx, aggregate.ID()).Return(aggregate, nil).Once()
	mockRepo.On("Update", ctx, aggregate).Return(conflict).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, events)

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Equal(t, conflict, err)
	assert.Empty(t, events.statusChanged)
	mockRepo.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_InvalidCommand(t *testing.T) {
	// Arrange
	ctx := t.Context()
	var invalidCmd commands.UpdateOrderStatusCommand

	mockFactory := new(MockStatusOrderUoWFactory)
	handler := commands.NewUpdateOrderStatusCommandHandler(mockFactory, &recordingOrderEvents{})

	// Act
	err := handler.Handle(ctx, invalidCmd)

	// Assert
	require.ErrorIs(t, err, commands.ErrUpdateOrderStatusCommandIsNotConstructed)
	mockFactory.AssertExpectations(t)
}
