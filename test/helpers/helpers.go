// test/helpers/helpers.go
package helpers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/storefront-inventory/internal/adapters/db"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/pkg/config"
	"github.com/ammerola/storefront-inventory/internal/pkg/logger"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool      *pgxpool.Pool
	Database     *db.Database
	Resource     *dockertest.Resource
	Pool         *dockertest.Pool
	Config       *db.Config
	MigrationURL string
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// AppLogger returns the application logger type at the same verbosity as
// TestLogger.
func AppLogger() *logger.Logger {
	level := "error"
	if testing.Verbose() {
		level = "debug"
	}
	return logger.NewLogger(&logger.LogConfig{Level: level, Format: "text", Writer: os.Stdout})
}

// SetupTestDB starts PostgreSQL in a container and applies the embedded
// migrations.
func SetupTestDB(t testing.TB) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_inventory",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_inventory",
		SSLMode:            "disable",
		MaxConnections:     10,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		StatementCacheMode: "describe",
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")
	t.Cleanup(database.Close)

	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(context.Background(), migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:      database.Pool(),
		Database:     database,
		Resource:     resource,
		Pool:         pool,
		Config:       dbConfig,
		MigrationURL: migrationConfig.DatabaseURL,
	}
}

// SetupTestRedis creates an in-process Redis for testing
func SetupTestRedis(t testing.TB) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "storefront-inventory-test",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_inventory",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
		Asynq: config.AsynqConfig{
			RedisAddr:   "localhost:6379",
			RedisDB:     1,
			Concurrency: 2,
			Queues:      map[string]int{"critical": 6, "default": 3, "low": 1},
			RetryMax:    1,
		},
		FileProcessing: config.FileProcessingConfig{
			PDFMaxSizeMB:      10,
			ExcelMaxSizeMB:    10,
			ProcessingTimeout: time.Minute,
			TempDir:           os.TempDir(),
			TempFileMaxAge:    time.Hour,
		},
		Security: config.SecurityConfig{
			JWTSecret:         "test-secret-that-is-at-least-32-characters",
			JWTExpiration:     time.Hour,
			RateLimitRequests: 1000,
			RateLimitDuration: time.Minute,
			AllowedOrigins:    []string{"http://localhost:3000"},
			RequestIDHeader:   "X-Request-ID",
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Inventory: config.InventoryConfig{
			CheckStockMaxBatch:       100,
			MaxBulkTargets:           500,
			MaxVariantsPerProduct:    400,
			DefaultLowStockThreshold: domain.DefaultLowStockThreshold,
			MaxCASRetries:            5,
			CASBackoff:               time.Millisecond,
			VariantCacheTTL:          time.Minute,
			IdempotencyTTL:           time.Hour,
			SummaryCacheTTL:          time.Minute,
			ImportStatusTTL:          time.Hour,
			LowStockScanCron:         "0 * * * *",
			SummaryRefreshCron:       "*/5 * * * *",
			CleanupCron:              "30 3 * * *",
			SheetRetention:           24 * time.Hour,
		},
	}
}

// CreateTestVariant creates an unsaved variant of product "P1" in RED/M
// with 10 units on hand.
func CreateTestVariant(overrides ...func(*domain.Variant)) *domain.Variant {
	now := time.Now().UTC()
	v := &domain.Variant{
		ID:                uuid.New(),
		ProductID:         "P1",
		Color:             "Red",
		Size:              "M",
		VariantKey:        "P1|RED|M",
		SKU:               "P1-RED-M",
		InventoryCount:    10,
		InitialCount:      10,
		LowStockThreshold: domain.DefaultLowStockThreshold,
		IsActive:          true,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for _, override := range overrides {
		override(v)
	}

	return v
}

// CreateTestMatrix builds the color × size variants of productID through
// domain.NewVariant, each starting at count.
func CreateTestMatrix(t testing.TB, productID string, colors, sizes []string, count int) []*domain.Variant {
	t.Helper()

	out := make([]*domain.Variant, 0, len(colors)*len(sizes))
	for _, c := range colors {
		for _, s := range sizes {
			v, err := domain.NewVariant(productID, c, s, count, domain.DefaultLowStockThreshold, nil)
			require.NoError(t, err)
			out = append(out, v)
		}
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// TruncateAllTables truncates all tables in the test database. The ledger
// trigger blocks DELETE but not TRUNCATE.
func TruncateAllTables(t *testing.T, db *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	tables := []string{
		"inventory_transactions",
		"product_variants",
	}

	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "Failed to truncate table: %s", table)
	}
}
