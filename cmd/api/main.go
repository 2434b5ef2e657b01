// cmd/api/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/storefront-inventory/internal/adapters/db"
	redis_a "github.com/ammerola/storefront-inventory/internal/adapters/redis_adapter"
	"github.com/ammerola/storefront-inventory/internal/adapters/storage"
	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/internal/handlers"
	"github.com/ammerola/storefront-inventory/internal/handlers/middleware"
	"github.com/ammerola/storefront-inventory/internal/pkg/config"
	"github.com/ammerola/storefront-inventory/internal/pkg/logger"
	"github.com/ammerola/storefront-inventory/internal/pkg/token"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "Apply database migrations and exit")
	migrateStatus := flag.Bool("migrate-status", false, "Print migration status as JSON and exit")
	migrateDown := flag.Int("migrate-down", 0, "Roll back N migrations and exit")
	migrateForce := flag.Int("migrate-force", -1, "Mark the schema as migration version V without running it, then exit")
	flag.Parse()

	slogger := logger.SetupLogger("info", "json").Logger

	slogger.Info("starting storefront inventory api",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	appLogger := logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	slogger = appLogger.Logger
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
	)

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

	cmd := migrationCommand{status: *migrateStatus, down: *migrateDown, force: *migrateForce}
	if cmd.requested() {
		if err := runMigrationCommand(ctx, cfg, cmd, os.Stdout, slogger); err != nil {
			slogger.Error("migration command failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if *migrateOnly || !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			if *migrateOnly {
				os.Exit(1)
			}
		}
		if *migrateOnly {
			return
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, appLogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       ports.Database
	redisClient    *redis.Client
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	tokens         *token.Service
	handlers       handlers.Handlers
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		StatementTimeout:   cfg.Database.StatementTimeout,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis", slog.String("address", cfg.GetRedisAddress()))

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.GetRedisAddress(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
	})
	deps.redisClient = redisClient

	// Redis backs caching and idempotency, both of which degrade rather than
	// fail, so a cold Redis is logged and tolerated.
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable at startup", slog.String("error", err.Error()))
	}

	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)
	idem := redis_a.NewIdempotencyStore(redisClient, cfg.Inventory.IdempotencyTTL, logger)
	jobs := redis_a.NewImportJobStore(redisClient, cfg.Inventory.ImportStatusTTL)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)

	sheetStore, err := newFileStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	inventoryService := services.NewInventoryService(
		db.NewVariantRepository(database, logger),
		db.NewLedgerRepository(database, logger),
		database,
		cache,
		idem,
		serviceOptions(cfg.Inventory),
		logger,
	)

	deps.tokens = token.NewService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration)
	deps.handlers = handlers.Handlers{
		Inventory: handlers.NewInventoryHandler(inventoryService, logger),
		Import: handlers.NewImportHandler(
			sheetStore, jobs, deps.asynqClient, cfg.FileProcessing.MaxUploadBytes(), logger),
		Export:    handlers.NewExportHandler(inventoryService, cache, cfg.Inventory.SummaryCacheTTL, logger),
		Dashboard: handlers.NewDashboardHandler(inventoryService, cache, cfg.Inventory.SummaryCacheTTL, logger),
		Health: handlers.NewHealthHandler(
			database, redisClient, deps.asynqInspector, Version, cfg.App.Environment, logger),
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
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
		logger.Info("storing sheets on local disk", slog.String("dir", dir))
		return storage.NewLocalStorage(dir, logger)
	}

	s3, err := storage.NewS3Storage(ctx, &storage.S3Config{
		Region:          cfg.AWS.Region,
		Bucket:          cfg.AWS.S3Bucket,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Endpoint:        cfg.AWS.S3Endpoint,
		UsePathStyle:    cfg.AWS.UsePathStyle,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheet storage: %w", err)
	}
	return s3, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, appLogger *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps.handlers, deps.tokens)

	// Applied outermost last
	var handler http.Handler = mux
	handler = middleware.Recovery(appLogger)(handler)
	handler = middleware.ContextLogger(appLogger)(handler)
	handler = middleware.Logger(appLogger.Logger)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Security.RateLimitRequests > 0 {
		handler = middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration)(handler)
	}

	if len(cfg.Security.AllowedOrigins) > 0 {
		handler = middleware.CORS(cfg.Security.AllowedOrigins)(handler)
	}

	if cfg.Security.SecureHeaders {
		handler = middleware.SecureHeaders(handler)
	}

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(appLogger.Handler(), slog.LevelError),
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")
	return db.RunMigrationsWithRetry(ctx, migrationConfig(cfg), logger, 3)
}

func migrationConfig(cfg *config.Config) *db.MigrationConfig {
	return &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}
}

// migrationCommand is an operator action on the schema. force < 0 means unset.
type migrationCommand struct {
	status bool
	down   int
	force  int
}

func (c migrationCommand) requested() bool {
	return c.status || c.down > 0 || c.force >= 0
}

// runMigrationCommand applies a force or rollback when asked and then prints
// the resulting status.
func runMigrationCommand(ctx context.Context, cfg *config.Config, cmd migrationCommand, out io.Writer, logger *slog.Logger) error {
	migrator, err := db.NewMigrator(migrationConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("failed to close migrator", slog.String("error", err.Error()))
		}
	}()

	if cmd.force >= 0 {
		if err := migrator.Force(ctx, cmd.force); err != nil {
			return err
		}
	}
	if cmd.down > 0 {
		if err := migrator.Down(ctx, cmd.down); err != nil {
			return err
		}
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(status)
}
