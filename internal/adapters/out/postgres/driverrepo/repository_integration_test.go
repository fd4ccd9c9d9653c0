package driverrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/core/domain/model/driver"
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

// DriverRepositoryIntegrationTestSuite provides integration tests for
// GormDriverRepository using PostgreSQL containers, with emphasis on the
// conditional-update claim and release paths that back driver assignment.
type DriverRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *driverrepo.GormDriverRepository
	tracker    *MockAggregateTracker
}

func (suite *DriverRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&driverrepo.DriverDTO{}))
}

func (suite *DriverRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE drivers").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = driverrepo.NewGormDriverRepository(suite.db, suite.tracker)
}

func (suite *DriverRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *DriverRepositoryIntegrationTestSuite) TestAddAndGet_RoundTrip() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-100")
	suite.tracker.On("TrackAggregate", testDriver.ID(), testDriver).Once()

	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	retrieved, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)

	suite.True(testDriver.ID().IsEqual(retrieved.ID()))
	suite.Equal("drv-100", retrieved.DriverID())
	suite.Equal("Hamad", retrieved.Name())
	suite.Equal(driver.StatusAvailable, retrieved.Status())
	suite.True(retrieved.IsActive())
	suite.True(retrieved.IsVerified())
	suite.Require().NotNil(retrieved.Location())
	suite.InDelta(testDriver.Location().Point.Lat(), retrieved.Location().Point.Lat(), 0.000001)
	suite.InDelta(testDriver.Location().Point.Lon(), retrieved.Location().Point.Lon(), 0.000001)
	suite.Nil(retrieved.CurrentOrderID())

	suite.tracker.AssertExpectations(suite.T())
}

func (suite *DriverRepositoryIntegrationTestSuite) TestGetByDriverID_ExistingDriver_ReturnsDriver() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-101")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	retrieved, err := suite.repository.GetByDriverID(ctx, "drv-101")
	suite.Require().NoError(err)
	suite.True(testDriver.ID().IsEqual(retrieved.ID()))

	_, err = suite.repository.GetByDriverID(ctx, "drv-missing")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestAssignOrder_AvailableDriver_ClaimsDriver() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-102")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	orderID := kernel.NewUUID()
	err := suite.repository.AssignOrder(ctx, testDriver.ID(), orderID)
	suite.Require().NoError(err)

	claimed, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)
	suite.Equal(driver.StatusBusy, claimed.Status())
	suite.Require().NotNil(claimed.CurrentOrderID())
	suite.True(orderID.IsEqual(*claimed.CurrentOrderID()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestAssignOrder_AlreadyClaimed_ReturnsUnavailable() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-103")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	firstOrder := kernel.NewUUID()
	suite.Require().NoError(suite.repository.AssignOrder(ctx, testDriver.ID(), firstOrder))

	// Second claim must lose: the conditional update matches zero rows
	secondOrder := kernel.NewUUID()
	err := suite.repository.AssignOrder(ctx, testDriver.ID(), secondOrder)
	suite.Require().ErrorIs(err, driver.ErrDriverUnavailable)

	claimed, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)
	suite.True(firstOrder.IsEqual(*claimed.CurrentOrderID()))
}

func (suite *DriverRepositoryIntegrationTestSuite) TestReleaseOrder_MatchingOrder_FreesDriver() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-104")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	orderID := kernel.NewUUID()
	suite.Require().NoError(suite.repository.AssignOrder(ctx, testDriver.ID(), orderID))

	err := suite.repository.ReleaseOrder(ctx, testDriver.ID(), orderID)
	suite.Require().NoError(err)

	released, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)
	suite.Equal(driver.StatusAvailable, released.Status())
	suite.Nil(released.CurrentOrderID())
}

func (suite *DriverRepositoryIntegrationTestSuite) TestReleaseOrder_WrongOrder_ReturnsNoActiveAssignment() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-105")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	orderID := kernel.NewUUID()
	suite.Require().NoError(suite.repository.AssignOrder(ctx, testDriver.ID(), orderID))

	err := suite.repository.ReleaseOrder(ctx, testDriver.ID(), kernel.NewUUID())
	suite.Require().ErrorIs(err, driver.ErrNoActiveAssignment)

	// The assignment is untouched
	claimed, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)
	suite.Equal(driver.StatusBusy, claimed.Status())
}

func (suite *DriverRepositoryIntegrationTestSuite) TestGetAllAvailable_FiltersOutIneligibleDrivers() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	available := suite.createAvailableDriver("drv-200")
	suite.Require().NoError(suite.repository.Add(ctx, available))

	offline := suite.createTestDriver("drv-201")
	offline.Activate()
	offline.Verify()
	suite.Require().NoError(suite.repository.Add(ctx, offline))

	unverified := suite.createTestDriver("drv-202")
	unverified.Activate()
	suite.Require().NoError(unverified.SetStatus(driver.StatusAvailable))
	location, err := kernel.NewGeoPoint(29.3800, 47.9900)
	suite.Require().NoError(err)
	suite.Require().NoError(unverified.UpdateLocation(location))
	suite.Require().NoError(suite.repository.Add(ctx, unverified))

	noLocation := suite.createTestDriver("drv-203")
	noLocation.Activate()
	noLocation.Verify()
	suite.Require().NoError(noLocation.SetStatus(driver.StatusAvailable))
	suite.Require().NoError(suite.repository.Add(ctx, noLocation))

	busy := suite.createAvailableDriver("drv-204")
	suite.Require().NoError(suite.repository.Add(ctx, busy))
	suite.Require().NoError(suite.repository.AssignOrder(ctx, busy.ID(), kernel.NewUUID()))

	eligible, err := suite.repository.GetAllAvailable(ctx)
	suite.Require().NoError(err)

	suite.Require().Len(eligible, 1)
	suite.Equal("drv-200", eligible[0].DriverID())
}

func (suite *DriverRepositoryIntegrationTestSuite) TestGetAllWithStaleLocations_ReturnsOnlyStaleOnlineDrivers() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	fresh := suite.createAvailableDriver("drv-300")
	suite.Require().NoError(suite.repository.Add(ctx, fresh))

	// Restored with a location update far in the past
	staleLocation, err := kernel.NewGeoPoint(29.3759, 47.9774)
	suite.Require().NoError(err)
	stale, err := driver.RestoreDriver(
		kernel.NewUUID(),
		"drv-301",
		"Yousef",
		"+96552222222",
		"car",
		driver.StatusAvailable,
		true,
		true,
		&driver.Position{Point: staleLocation, UpdatedAt: time.Now().UTC().Add(-2 * time.Hour)},
		nil,
		time.Now().UTC().Add(-2*time.Hour),
		driver.Stats{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, stale))

	// Offline drivers are never swept
	offlineStale, err := driver.RestoreDriver(
		kernel.NewUUID(),
		"drv-302",
		"Fahad",
		"+96553333333",
		"car",
		driver.StatusOffline,
		true,
		true,
		&driver.Position{Point: staleLocation, UpdatedAt: time.Now().UTC().Add(-2 * time.Hour)},
		nil,
		time.Now().UTC().Add(-2*time.Hour),
		driver.Stats{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, offlineStale))

	// A driver that never reported a location counts as stale
	neverReported := suite.createTestDriver("drv-303")
	neverReported.Activate()
	neverReported.Verify()
	suite.Require().NoError(neverReported.SetStatus(driver.StatusAvailable))
	suite.Require().NoError(suite.repository.Add(ctx, neverReported))

	result, err := suite.repository.GetAllWithStaleLocations(ctx, time.Now().UTC().Add(-10*time.Minute))
	suite.Require().NoError(err)

	ids := make([]string, 0, len(result))
	for _, d := range result {
		ids = append(ids, d.DriverID())
	}
	suite.ElementsMatch([]string{"drv-301", "drv-303"}, ids)
}

func (suite *DriverRepositoryIntegrationTestSuite) TestUpdate_PersistsStatsAndStatus() {
	ctx := context.Background()

	testDriver := suite.createAvailableDriver("drv-400")
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, testDriver))

	orderID := kernel.NewUUID()
	suite.Require().NoError(testDriver.AssignOrder(orderID))
	rating := 4.5
	suite.Require().NoError(testDriver.CompleteDelivery(orderID, &rating, 2.75))

	suite.Require().NoError(suite.repository.Update(ctx, testDriver))

	retrieved, err := suite.repository.Get(ctx, testDriver.ID())
	suite.Require().NoError(err)
	suite.Equal(driver.StatusAvailable, retrieved.Status())
	suite.Equal(1, retrieved.Stats().CompletedDeliveries)
	suite.InDelta(2.75, retrieved.Stats().TotalEarnings, 0.001)
	suite.InDelta(4.5, retrieved.Stats().AverageRating, 0.001)
}

func (suite *DriverRepositoryIntegrationTestSuite) createTestDriver(driverID string) *driver.Driver {
	testDriver, err := driver.NewDriver(kernel.NewUUID(), driverID, "Hamad", "+96551111111", "motorcycle")
	suite.Require().NoError(err)
	return testDriver
}

func (suite *DriverRepositoryIntegrationTestSuite) createAvailableDriver(driverID string) *driver.Driver {
	testDriver := suite.createTestDriver(driverID)
	testDriver.Activate()
	testDriver.Verify()
	suite.Require().NoError(testDriver.SetStatus(driver.StatusAvailable))

	location, err := kernel.NewGeoPoint(29.3759, 47.9774)
	suite.Require().NoError(err)
	suite.Require().NoError(testDriver.UpdateLocation(location))
	return testDriver
}

func TestDriverRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DriverRepositoryIntegrationTestSuite))
}
