package businessrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/businessrepo"
	"dispatch/internal/core/domain/model/business"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	m.Called(id, aggregate)
}

// BusinessRepositoryIntegrationTestSuite provides integration tests for
// GormBusinessRepository using PostgreSQL containers, centered on the
// per-type detail document surviving the JSONB round trip.
type BusinessRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *businessrepo.GormBusinessRepository
	tracker    *MockAggregateTracker
}

func (suite *BusinessRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&businessrepo.BusinessDTO{}))
}

func (suite *BusinessRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE businesses").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = businessrepo.NewGormBusinessRepository(suite.db, suite.tracker)
}

func (suite *BusinessRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *BusinessRepositoryIntegrationTestSuite) TestAddAndGet_DetailRoundTripPerType() {
	testCases := []struct {
		name         string
		businessType business.Type
		detail       business.Detail
		verify       func(business.Detail)
	}{
		{
			name:         "restaurant",
			businessType: business.TypeRestaurant,
			detail:       business.RestaurantDetail{Cuisine: "levantine", PrepCapacity: 12, AvgPrepTimeMinutes: 18},
			verify: func(d business.Detail) {
				restaurant, ok := d.(business.RestaurantDetail)
				suite.Require().True(ok)
				suite.Equal("levantine", restaurant.Cuisine)
				suite.Equal(12, restaurant.PrepCapacity)
				suite.Equal(18, restaurant.AvgPrepTimeMinutes)
			},
		},
		{
			name:         "store",
			businessType: business.TypeStore,
			detail:       business.StoreDetail{Category: "grocery", AcceptsCards: true},
			verify: func(d business.Detail) {
				store, ok := d.(business.StoreDetail)
				suite.Require().True(ok)
				suite.Equal("grocery", store.Category)
				suite.True(store.AcceptsCards)
			},
		},
		{
			name:         "pharmacy",
			businessType: business.TypePharmacy,
			detail:       business.PharmacyDetail{LicenseNumber: "KW-889", DispensesControlled: true},
			verify: func(d business.Detail) {
				pharmacy, ok := d.(business.PharmacyDetail)
				suite.Require().True(ok)
				suite.Equal("KW-889", pharmacy.LicenseNumber)
				suite.True(pharmacy.DispensesControlled)
			},
		},
		{
			name:         "kitchen",
			businessType: business.TypeKitchen,
			detail:       business.KitchenDetail{Brands: []string{"Burger Lab", "Wing Shack"}, PrepCapacity: 30},
			verify: func(d business.Detail) {
				kitchen, ok := d.(business.KitchenDetail)
				suite.Require().True(ok)
				suite.Equal([]string{"Burger Lab", "Wing Shack"}, kitchen.Brands)
				suite.Equal(30, kitchen.PrepCapacity)
			},
		},
	}

	ctx := context.Background()
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

			aggregate := suite.createTestBusiness(tc.businessType, tc.detail)
			suite.Require().NoError(suite.repository.Add(ctx, aggregate))

			retrieved, err := suite.repository.Get(ctx, aggregate.ID())
			suite.Require().NoError(err)

			suite.Equal(aggregate.Name(), retrieved.Name())
			suite.Equal(tc.businessType, retrieved.Type())
			suite.Require().NotNil(retrieved.Detail())
			tc.verify(retrieved.Detail())
		})
	}
}

func (suite *BusinessRepositoryIntegrationTestSuite) TestGet_NonExistentBusiness_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Nil(retrieved)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *BusinessRepositoryIntegrationTestSuite) TestUpdate_OpenState_Persisted() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	aggregate := suite.createTestBusiness(
		business.TypeRestaurant,
		business.RestaurantDetail{Cuisine: "levantine", PrepCapacity: 12, AvgPrepTimeMinutes: 18},
	)
	suite.Require().NoError(suite.repository.Add(ctx, aggregate))

	aggregate.Open()
	suite.Require().NoError(suite.repository.Update(ctx, aggregate))

	retrieved, err := suite.repository.Get(ctx, aggregate.ID())
	suite.Require().NoError(err)
	suite.True(retrieved.IsOpen())
}

func (suite *BusinessRepositoryIntegrationTestSuite) TestGetAllOpen_ReturnsOnlyOpenBusinesses() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	open := suite.createTestBusiness(
		business.TypeRestaurant,
		business.RestaurantDetail{Cuisine: "levantine", PrepCapacity: 12, AvgPrepTimeMinutes: 18},
	)
	open.Open()
	suite.Require().NoError(suite.repository.Add(ctx, open))

	closed := suite.createTestBusiness(
		business.TypeStore,
		business.StoreDetail{Category: "grocery", AcceptsCards: true},
	)
	suite.Require().NoError(suite.repository.Add(ctx, closed))

	result, err := suite.repository.GetAllOpen(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(result, 1)
	suite.True(open.ID().IsEqual(result[0].ID()))
}

func (suite *BusinessRepositoryIntegrationTestSuite) createTestBusiness(
	businessType business.Type,
	detail business.Detail,
) *business.Business {
	address, err := kernel.NewGeoPoint(29.3759, 47.9774)
	suite.Require().NoError(err)

	aggregate, err := business.NewBusiness(
		kernel.NewUUID(),
		"Shawarma House",
		businessType,
		business.Contact{Phone: "+96553333333", Email: "ops@shawarma.example"},
		address,
		detail,
	)
	suite.Require().NoError(err)
	return aggregate
}

func TestBusinessRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(BusinessRepositoryIntegrationTestSuite))
}
