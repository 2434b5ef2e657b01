// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/storefront-inventory/internal/adapters/db"
	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/adapters/storage"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/internal/pkg/config"
	"github.com/ammerola/storefront-inventory/internal/pkg/logger"
	"github.com/ammerola/storefront-inventory/internal/workers"
)

func main() {
	slogger := logger.SetupLogger("info", "json").Logger

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr))

	ctx := context.Background()

	secrets, err := config.NewSecretsManager(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize secrets manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := config.ResolveSecrets(ctx, cfg, secrets); err != nil {
		slogger.Error("failed to resolve secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddress(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)
	idem := redis_a.NewIdempotencyStore(redisClient, cfg.Inventory.IdempotencyTTL, slogger)
	jobs := redis_a.NewImportJobStore(redisClient, cfg.Inventory.ImportStatusTTL)

	sheetStore, err := newFileStorage(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize sheet storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	inventoryService := services.NewInventoryService(
		db.NewVariantRepository(database, slogger),
		db.NewLedgerRepository(database, slogger),
		database,
		cache,
		idem,
		serviceOptions(cfg.Inventory),
		slogger,
	)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	// Scans enqueue alert emails through this client.
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()

	reconcile := workers.NewReconcileProcessor(
		inventoryService, sheetStore, jobs, cfg.FileProcessing.MaxUploadBytes(), slogger)
	mux.HandleFunc(workers.TypeReconcileSheet, reconcile.ProcessReconcileSheet)

	lowStock := workers.NewLowStockProcessor(
		inventoryService, client, cfg.Inventory.LowStockAlertRecipients, slogger)
	mux.HandleFunc(workers.TypeLowStockScan, lowStock.ScanLowStock)

	notifications := workers.NewNotificationProcessor(cfg.Notifications, cfg.App.Environment, smtp.SendMail, slogger)
	mux.HandleFunc(workers.TypeLowStockAlert, notifications.SendLowStockAlert)

	summary := workers.NewSummaryProcessor(inventoryService, cache, cfg.Inventory.SummaryCacheTTL, slogger)
	mux.HandleFunc(workers.TypeRefreshSummary, summary.RefreshSummary)

	cleanup := workers.NewCleanupProcessor(
		sheetStore, cfg.Inventory.SheetRetention, cfg.FileProcessing.TempDir, cfg.FileProcessing.TempFileMaxAge, slogger)
	mux.HandleFunc(workers.TypeCleanupSheets, cleanup.CleanupSheets)
	mux.HandleFunc(workers.TypeCleanupTempFiles, cleanup.CleanupTempFiles)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   newAsynqLogger(slogger),
	})
	if err := workers.RegisterPeriodicTasks(scheduler, cfg.Inventory, slogger); err != nil {
		slogger.Error("failed to register periodic tasks", slog.String("error", err.Error()))
		os.Exit(1)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	if err := scheduler.Start(); err != nil {
		slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     10, // Fewer connections for worker
		MinConnections:     2,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		StatementTimeout:   cfg.Database.StatementTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

func serviceOptions(cfg config.InventoryConfig) services.Options {
	return services.Options{
		CheckStockMaxBatch:       cfg.CheckStockMaxBatch,
		MaxBulkTargets:           cfg.MaxBulkTargets,
		MaxVariantsPerProduct:    cfg.MaxVariantsPerProduct,
		DefaultLowStockThreshold: cfg.DefaultLowStockThreshold,
		MaxCASRetries:            cfg.MaxCASRetries,
		CASBackoff:               cfg.CASBackoff,
		VariantCacheTTL:          cfg.VariantCacheTTL,
	}
}

func newFileStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.FileStorage, error) {
	if dir := cfg.FileProcessing.LocalStorageDir; dir != "" {
		return storage.NewLocalStorage(dir, logger)
	}
	return storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
