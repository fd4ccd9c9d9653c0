package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/business"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations for testing.
type MockSyncBusinessRepository struct{ mock.Mock }

func (m *MockSyncBusinessRepository) Add(ctx context.Context, aggregate *business.Business) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockSyncBusinessRepository) Update(ctx context.Context, aggregate *business.Business) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockSyncBusinessRepository) Get(ctx context.Context, id kernel.UUID) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockSyncBusinessRepository) GetAllOpen(ctx context.Context) ([]*business.Business, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*business.Business), args.Error(1)
}

type MockSyncBusinessUoW struct{ mock.Mock }

func (m *MockSyncBusinessUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSyncBusinessUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSyncBusinessUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSyncBusinessUoW) BusinessRepository() ports.BusinessRepository {
	args := m.Called()
	return args.Get(0).(ports.BusinessRepository)
}

type MockSyncBusinessUoWFactory struct{ mock.Mock }

func (m *MockSyncBusinessUoWFactory) Create() commands.BusinessUoW {
	args := m.Called()
	return args.Get(0).(commands.BusinessUoW)
}

// recordingGateway captures sync calls and fails for the configured IDs.
type recordingGateway struct {
	synced  []kernel.UUID
	failFor map[kernel.UUID]error
}

func (g *recordingGateway) NotifyOrderConfirmed(context.Context, *order.Order) error { return nil }
func (g *recordingGateway) NotifyOrderReady(context.Context, *order.Order) error     { return nil }
func (g *recordingGateway) NotifyOrderCancelled(context.Context, *order.Order, string) error {
	return nil
}

func (g *recordingGateway) SyncBusinessData(_ context.Context, aggregate *business.Business) error {
	g.synced = append(g.synced, aggregate.ID())
	if err, ok := g.failFor[aggregate.ID()]; ok {
		return err
	}
	return nil
}

func openBusiness(t *testing.T, name string) *business.Business {
	t.Helper()

	address, err := kernel.NewGeoPoint(29.3759, 47.9774)
	require.NoError(t, err)

	aggregate, err := business.NewBusiness(
		kernel.NewUUID(),
		name,
		business.TypeRestaurant,
		business.Contact{Phone: "+96553333333", Email: "ops@example.test"},
		address,
		business.RestaurantDetail{Cuisine: "levantine", PrepCapacity: 12, AvgPrepTimeMinutes: 18},
	)
	require.NoError(t, err)
	aggregate.Open()
	return aggregate
}

func TestSyncBusinessesCommandHandler_Handle_SyncsAllOpenBusinesses(t *testing.T) {
	// Arrange
	ctx := t.Context()
	first := openBusiness(t, "Shawarma House")
	second := openBusiness(t, "Corner Grocer")

	mockRepo := new(MockSyncBusinessRepository)
	mockUoW := new(MockSyncBusinessUoW)
	mockFactory := new(MockSyncBusinessUoWFactory)
	gateway := &recordingGateway{}

	mock.InOrder(
		mockUoW.On("Begin", ctx).Return(nil).Once(),
		mockUoW.On("BusinessRepository").Return(mockRepo).Once(),
		mockRepo.On("GetAllOpen", ctx).Return([]*business.Business{first, second}, nil).Once(),
		mockUoW.On("Commit", ctx).Return(nil).Once(),
		mockUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockFactory.On("Create").Return(mockUoW).Once()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := commands.NewSyncBusinessesCommandHandler(mockFactory, gateway, logger)

	// Act
	err := handler.Handle(ctx, commands.NewSyncBusinessesCommand())

	// Assert
	require.NoError(t, err)
	require.Len(t, gateway.synced, 2)
	assert.True(t, first.ID().IsEqual(gateway.synced[0]))
	assert.True(t, second.ID().IsEqual(gateway.synced[1]))
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestSyncBusinessesCommandHandler_Handle_ContinuesPastFailedPush(t *testing.T) {
	// One failed gateway call is logged and the rest still sync.
	ctx := t.Context()
	first := openBusiness(t, "Shawarma House")
	second := openBusiness(t, "Corner Grocer")

	mockRepo := new(MockSyncBusinessRepository)
	mockUoW := new(MockSyncBusinessUoW)
	mockFactory := new(MockSyncBusinessUoWFactory)
	gateway := &recordingGateway{
		failFor: map[kernel.UUID]error{first.ID(): errors.New("platform unreachable")},
	}

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("BusinessRepository").Return(mockRepo).Once()
	mockRepo.On("GetAllOpen", ctx).Return([]*business.Business{first, second}, nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := commands.NewSyncBusinessesCommandHandler(mockFactory, gateway, logger)

	// Act
	err := handler.Handle(ctx, commands.NewSyncBusinessesCommand())

	// Assert
	require.NoError(t, err)
	require.Len(t, gateway.synced, 2)
}

func TestSyncBusinessesCommandHandler_Handle_RepositoryError(t *testing.T) {
	// Arrange
	ctx := t.Context()
	dbErr := errors.New("connection reset")

	mockRepo := new(MockSyncBusinessRepository)
	mockUoW := new(MockSyncBusinessUoW)
	mockFactory := new(MockSyncBusinessUoWFactory)
	gateway := &recordingGateway{}

	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("BusinessRepository").Return(mockRepo).Once()
	mockRepo.On("GetAllOpen", ctx).Return(([]*business.Business)(nil), dbErr).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockFactory.On("Create").Return(mockUoW).Once()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := commands.NewSyncBusinessesCommandHandler(mockFactory, gateway, logger)

	// Act
	err := handler.Handle(ctx, commands.NewSyncBusinessesCommand())

	// Assert
	require.ErrorIs(t, err, dbErr)
	assert.Empty(t, gateway.synced)
	mockRepo.AssertExpectations(t)
}
