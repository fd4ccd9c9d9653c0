package cmd

import (
	"log/slog"
	"os"

	"dispatch/internal/adapters/out/platform"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/metrics"
	"dispatch/internal/notifications"
	"dispatch/internal/pkg/worker"
	"dispatch/internal/sideeffects"

	"gorm.io/gorm"
)

// CompositionRoot wires the application's singletons and hands out
// command and query handlers built on top of them.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
	hub        *notifications.Hub
	pool       *worker.Pool
	platform   *platform.Client
	dispatcher *sideeffects.Dispatcher
	metrics    *metrics.Metrics
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB) (*CompositionRoot, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	hub := notifications.NewHub(configs.NotifyHistoryLimit, configs.NotifyReplayCount, logger)
	pool := worker.NewPool(configs.SideEffectWorkers, configs.SideEffectQueue)

	platformClient, err := platform.NewClient(
		configs.PlatformURL,
		configs.PlatformAPIKey,
		configs.PlatformTimeout,
		configs.PlatformMaxRetries,
	)
	if err != nil {
		return nil, err
	}

	dispatcher, err := sideeffects.NewDispatcher(pool, platformClient, hub, logger)
	if err != nil {
		return nil, err
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		logger:     logger,
		hub:        hub,
		pool:       pool,
		platform:   platformClient,
		dispatcher: dispatcher,
		metrics:    metrics.New(),
	}, nil
}

// Logger returns the process-wide structured logger.
func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

// Hub returns the notification hub shared by handlers and the WebSocket server.
func (c *CompositionRoot) Hub() *notifications.Hub {
	return c.hub
}

// WorkerPool returns the side-effect pool so the entry point can drain it on shutdown.
func (c *CompositionRoot) WorkerPool() *worker.Pool {
	return c.pool
}

// Metrics returns the HTTP metrics collector.
func (c *CompositionRoot) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateOrderStatusCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateAssignNearestDriverCommandHandler() commands.AssignNearestDriverCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssignNearestDriverCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateApplyDriverAssignmentCommandHandler() commands.ApplyDriverAssignmentCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyDriverAssignmentCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateApplyOrderStatusEventCommandHandler() commands.ApplyOrderStatusEventCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewApplyOrderStatusEventCommandHandler(f, c.dispatcher)
}

func (c *CompositionRoot) CreateUpdateDriverLocationCommandHandler() commands.UpdateDriverLocationCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateDriverLocationCommandHandler(f)
}

func (c *CompositionRoot) CreateSetDriverStatusCommandHandler() commands.SetDriverStatusCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSetDriverStatusCommandHandler(f)
}

func (c *CompositionRoot) CreateSweepStaleDriversCommandHandler() commands.SweepStaleDriversCommandHandler {
	var f commands.DriverUoWFactory = FuncDriverUoWFactory(func() commands.DriverUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepStaleDriversCommandHandler(f, c.logger)
}

func (c *CompositionRoot) CreateSyncBusinessesCommandHandler() commands.SyncBusinessesCommandHandler {
	var f commands.BusinessUoWFactory = FuncBusinessUoWFactory(func() commands.BusinessUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSyncBusinessesCommandHandler(f, c.platform, c.logger)
}

func (c *CompositionRoot) CreateGetNearestDriversQueryHandler() queries.GetNearestDriversQueryHandler {
	return queries.NewGetNearestDriversQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDriverUoWFactory func() commands.DriverUoW

func (f FuncDriverUoWFactory) Create() commands.DriverUoW {
	return f()
}

type FuncBusinessUoWFactory func() commands.BusinessUoW

func (f FuncBusinessUoWFactory) Create() commands.BusinessUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
