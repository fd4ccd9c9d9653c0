package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/businessrepo"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	gormDB := mustConnectDB(configs)

	root, err := cmd.NewCompositionRoot(configs, gormDB)
	if err != nil {
		log.Fatalf("failed to build composition root: %v", err)
	}
	defer root.WorkerPool().Stop()

	jobManager := jobs.NewJobManager(
		root.CreateSweepStaleDriversCommandHandler(),
		root.CreateSyncBusinessesCommandHandler(),
		configs.DriverStaleAfter,
		root.Logger(),
	)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(root, configs)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:           goDotEnvVariable("HTTP_PORT"),
		DBHost:             goDotEnvVariable("DB_HOST"),
		DBPort:             goDotEnvVariable("DB_PORT"),
		DBUser:             goDotEnvVariable("DB_USER"),
		DBPassword:         goDotEnvVariable("DB_PASSWORD"),
		DBName:             goDotEnvVariable("DB_NAME"),
		DBSslMode:          goDotEnvVariable("DB_SSLMODE"),
		PlatformURL:        goDotEnvVariable("PLATFORM_URL"),
		PlatformAPIKey:     goDotEnvVariable("PLATFORM_API_KEY"),
		PlatformTimeout:    time.Duration(envInt("PLATFORM_TIMEOUT_SECONDS", 10)) * time.Second,
		PlatformMaxRetries: envInt("PLATFORM_MAX_RETRIES", 3),
		WebhookSecret:      goDotEnvVariable("WEBHOOK_SECRET"),
		NotifyHistoryLimit: envInt("NOTIFY_HISTORY_LIMIT", 100),
		NotifyReplayCount:  envInt("NOTIFY_REPLAY_COUNT", 10),
		SideEffectWorkers:  envInt("SIDE_EFFECT_WORKERS", 4),
		SideEffectQueue:    envInt("SIDE_EFFECT_QUEUE", 256),
		DriverStaleAfter:   time.Duration(envInt("DRIVER_STALE_AFTER_MINUTES", 10)) * time.Minute,
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func envInt(key string, fallback int) int {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("invalid value for %s: %v", key, err)
	}
	return value
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&driverrepo.DriverDTO{},
		&businessrepo.BusinessDTO{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	return gormDB
}

func startWebServer(root *cmd.CompositionRoot, configs cmd.Config) {
	e := echo.New()
	e.Use(root.Metrics().Middleware())

	server := httpin.NewServer(
		root.CreateUpdateOrderStatusCommandHandler(),
		root.CreateAssignNearestDriverCommandHandler(),
		root.CreateCompleteDeliveryCommandHandler(),
		root.CreateUpdateDriverLocationCommandHandler(),
		root.CreateSetDriverStatusCommandHandler(),
		root.CreateGetNearestDriversQueryHandler(),
	)
	server.RegisterRoutes(e)

	webhooks := httpin.NewWebhooks(
		configs.WebhookSecret,
		root.CreateApplyDriverAssignmentCommandHandler(),
		root.CreateApplyOrderStatusEventCommandHandler(),
	)
	webhooks.RegisterRoutes(e)

	sockets := httpin.NewWebSocketServer(root.Hub(), root.Logger())
	sockets.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(root.Metrics().Handler()))

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)))
}
