// internal/pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRequiredConfig marks a required setting that is empty or still a
// placeholder.
var ErrMissingRequiredConfig = errors.New("missing required configuration")

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Asynq          AsynqConfig
	AWS            AWSConfig
	FileProcessing FileProcessingConfig
	Security       SecurityConfig
	Server         ServerConfig
	Inventory      InventoryConfig
	Notifications  NotificationConfig
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `required:"true"`
	Environment string // development, staging, production
	Version     string
	LogLevel    string
	LogFormat   string // json, text, pretty
	Debug       bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host               string `required:"true"`
	Port               string `required:"true"`
	User               string `required:"true"`
	Password           string
	Name               string `required:"true"`
	SSLMode            string
	MaxConnections     int32
	MinConnections     int32
	MaxConnLifetime    time.Duration
	MaxConnIdleTime    time.Duration
	HealthCheckPeriod  time.Duration
	ConnectTimeout     time.Duration
	StatementTimeout   time.Duration
	StatementCacheMode string
	EnableQueryLogging bool
	// MigrationPath overrides the migrations embedded in the binary.
	MigrationPath string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host            string `required:"true"`
	Port            string `required:"true"`
	Password        string
	DB              int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	TTL             time.Duration
}

// AsynqConfig holds Asynq configuration
type AsynqConfig struct {
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	Concurrency     int
	Queues          map[string]int // queue name -> priority
	StrictPriority  bool
	RetryMax        int
	ShutdownTimeout time.Duration
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string // For MinIO in development
	UsePathStyle    bool   // For MinIO compatibility
	SecretsEnabled  bool
	SecretName      string
}

// FileProcessingConfig holds reconciliation sheet limits
type FileProcessingConfig struct {
	PDFMaxSizeMB      int
	ExcelMaxSizeMB    int
	ProcessingTimeout time.Duration
	TempDir           string
	TempFileMaxAge    time.Duration
	// LocalStorageDir stores sheets on disk instead of S3 when set.
	LocalStorageDir   string
}

// MaxUploadBytes is the largest sheet accepted for import.
func (c FileProcessingConfig) MaxUploadBytes() int64 {
	mb := c.PDFMaxSizeMB
	if c.ExcelMaxSizeMB > mb {
		mb = c.ExcelMaxSizeMB
	}
	return int64(mb) << 20
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	JWTSecret         string
	JWTExpiration     time.Duration
	RateLimitRequests int
	RateLimitDuration time.Duration
	AllowedOrigins    []string
	SecureHeaders     bool
	RequestIDHeader   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string `required:"true"`
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	GracefulTimeout time.Duration
	TLSEnabled      bool
	TLSCertFile     string
	TLSKeyFile      string
}

// InventoryConfig holds the stock engine limits and schedules
type InventoryConfig struct {
	CheckStockMaxBatch       int
	MaxBulkTargets           int
	MaxVariantsPerProduct    int
	DefaultLowStockThreshold int
	MaxCASRetries            int
	CASBackoff               time.Duration
	VariantCacheTTL          time.Duration
	IdempotencyTTL           time.Duration
	SummaryCacheTTL          time.Duration
	ImportStatusTTL          time.Duration
	LowStockScanCron         string
	LowStockAlertRecipients  []string
	SummaryRefreshCron       string
	CleanupCron              string
	SheetRetention           time.Duration
}

// NotificationConfig holds outgoing mail settings for stock alerts
type NotificationConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromAddress  string
}

// Load loads configuration from environment variables
func Load(logger *slog.Logger) (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Load .env file in development
	if env == "development" || env == "local" {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using environment variables",
				slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded successfully")
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	e := envReader{v: v}

	cfg := &Config{
		App: AppConfig{
			Name:        e.str("APP_NAME", "storefront-inventory"),
			Environment: env,
			Version:     e.str("APP_VERSION", "dev"),
			LogLevel:    e.str("LOG_LEVEL", "debug"),
			LogFormat:   e.str("LOG_FORMAT", "json"),
			Debug:       e.boolean("APP_DEBUG", env == "development"),
		},
		Database: DatabaseConfig{
			Host:               e.str("DB_HOST", "localhost"),
			Port:               e.str("DB_PORT", "5432"),
			User:               e.str("DB_USER", "inventory"),
			Password:           e.str("DB_PASSWORD", "inventory_dev"),
			Name:               e.str("DB_NAME", "storefront_inventory"),
			SSLMode:            e.str("DB_SSL_MODE", "disable"),
			MaxConnections:     int32(e.integer("DB_MAX_CONNECTIONS", 25)),
			MinConnections:     int32(e.integer("DB_MIN_CONNECTIONS", 5)),
			MaxConnLifetime:    e.duration("DB_CONNECTION_LIFETIME", time.Hour),
			MaxConnIdleTime:    e.duration("DB_IDLE_TIME", 30*time.Minute),
			HealthCheckPeriod:  e.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			ConnectTimeout:     e.duration("DB_CONNECT_TIMEOUT", 10*time.Second),
			StatementTimeout:   e.duration("DB_STATEMENT_TIMEOUT", 30*time.Second),
			StatementCacheMode: e.str("DB_STATEMENT_CACHE_MODE", "describe"),
			EnableQueryLogging: e.boolean("DB_QUERY_LOGGING", env == "development"),
			MigrationPath:      e.str("DB_MIGRATION_PATH", ""),
		},
		Redis: RedisConfig{
			Host:            e.str("REDIS_HOST", "localhost"),
			Port:            e.str("REDIS_PORT", "6379"),
			Password:        e.str("REDIS_PASSWORD", ""),
			DB:              e.integer("REDIS_DB", 0),
			MaxRetries:      e.integer("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: e.duration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: e.duration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			DialTimeout:     e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolSize:        e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns:    e.integer("REDIS_MIN_IDLE_CONNS", 2),
			PoolTimeout:     e.duration("REDIS_POOL_TIMEOUT", 4*time.Second),
			TTL:             e.duration("REDIS_TTL", time.Hour),
		},
		Asynq: AsynqConfig{
			RedisAddr:       fmt.Sprintf("%s:%s", e.str("REDIS_HOST", "localhost"), e.str("REDIS_PORT", "6379")),
			RedisPassword:   e.str("REDIS_PASSWORD", ""),
			RedisDB:         e.integer("ASYNQ_REDIS_DB", 1),
			Concurrency:     e.integer("ASYNQ_CONCURRENCY", 10),
			Queues:          parseQueues(e.str("ASYNQ_QUEUES", "critical:6,default:3,low:1")),
			StrictPriority:  e.boolean("ASYNQ_STRICT_PRIORITY", false),
			RetryMax:        e.integer("ASYNQ_RETRY_MAX", 3),
			ShutdownTimeout: e.duration("ASYNQ_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		AWS: AWSConfig{
			Region:          e.str("AWS_REGION", "us-east-1"),
			AccessKeyID:     e.str("AWS_ACCESS_KEY_ID", "minioadmin"),
			SecretAccessKey: e.str("AWS_SECRET_ACCESS_KEY", "minioadmin123"),
			S3Bucket:        e.str("AWS_S3_BUCKET", "inventory-sheets"),
			S3Endpoint:      e.str("AWS_S3_ENDPOINT", ""),
			UsePathStyle:    e.boolean("AWS_S3_PATH_STYLE", env == "development"),
			SecretsEnabled:  e.boolean("AWS_SECRETS_ENABLED", false),
			SecretName:      e.str("AWS_SECRET_NAME", "storefront-inventory/"+env),
		},
		FileProcessing: FileProcessingConfig{
			PDFMaxSizeMB:      e.integer("PDF_MAX_SIZE_MB", 20),
			ExcelMaxSizeMB:    e.integer("EXCEL_MAX_SIZE_MB", 20),
			ProcessingTimeout: e.duration("PROCESSING_TIMEOUT", 5*time.Minute),
			TempDir:           e.str("TEMP_DIR", os.TempDir()),
			TempFileMaxAge:    e.duration("TEMP_FILE_MAX_AGE", 24*time.Hour),
			LocalStorageDir:   e.str("LOCAL_STORAGE_DIR", ""),
		},
		Security: SecurityConfig{
			JWTSecret:         e.str("JWT_SECRET", generateDefaultSecret(env)),
			JWTExpiration:     e.duration("JWT_EXPIRATION", 24*time.Hour),
			RateLimitRequests: e.integer("RATE_LIMIT_REQUESTS", 100),
			RateLimitDuration: e.duration("RATE_LIMIT_DURATION", time.Minute),
			AllowedOrigins:    e.slice("ALLOWED_ORIGINS", []string{"*"}),
			SecureHeaders:     e.boolean("SECURE_HEADERS", env == "production"),
			RequestIDHeader:   e.str("REQUEST_ID_HEADER", "X-Request-ID"),
		},
		Server: ServerConfig{
			Host:            e.str("SERVER_HOST", "0.0.0.0"),
			Port:            e.str("SERVER_PORT", "8080"),
			ReadTimeout:     e.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    e.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     e.duration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			MaxHeaderBytes:  e.integer("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
			GracefulTimeout: e.duration("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
			TLSEnabled:      e.boolean("TLS_ENABLED", false),
			TLSCertFile:     e.str("TLS_CERT_FILE", ""),
			TLSKeyFile:      e.str("TLS_KEY_FILE", ""),
		},
		Inventory: InventoryConfig{
			CheckStockMaxBatch:       e.integer("INVENTORY_CHECK_STOCK_MAX_BATCH", 100),
			MaxBulkTargets:           e.integer("INVENTORY_MAX_BULK_TARGETS", 500),
			MaxVariantsPerProduct:    e.integer("INVENTORY_MAX_VARIANTS_PER_PRODUCT", 400),
			DefaultLowStockThreshold: e.integer("INVENTORY_DEFAULT_LOW_STOCK_THRESHOLD", 5),
			MaxCASRetries:            e.integer("INVENTORY_MAX_CAS_RETRIES", 5),
			CASBackoff:               e.duration("INVENTORY_CAS_BACKOFF", 10*time.Millisecond),
			VariantCacheTTL:          e.duration("INVENTORY_VARIANT_CACHE_TTL", 5*time.Minute),
			IdempotencyTTL:           e.duration("INVENTORY_IDEMPOTENCY_TTL", 24*time.Hour),
			SummaryCacheTTL:          e.duration("INVENTORY_SUMMARY_CACHE_TTL", 5*time.Minute),
			ImportStatusTTL:          e.duration("INVENTORY_IMPORT_STATUS_TTL", 72*time.Hour),
			LowStockScanCron:         e.str("INVENTORY_LOW_STOCK_SCAN_CRON", "0 * * * *"),
			LowStockAlertRecipients:  e.slice("INVENTORY_LOW_STOCK_ALERT_RECIPIENTS", []string{}),
			SummaryRefreshCron:       e.str("INVENTORY_SUMMARY_REFRESH_CRON", "*/5 * * * *"),
			CleanupCron:              e.str("INVENTORY_CLEANUP_CRON", "30 3 * * *"),
			SheetRetention:           e.duration("INVENTORY_SHEET_RETENTION", 30*24*time.Hour),
		},
		Notifications: NotificationConfig{
			SMTPHost:     e.str("SMTP_HOST", ""),
			SMTPPort:     e.str("SMTP_PORT", "587"),
			SMTPUsername: e.str("SMTP_USERNAME", ""),
			SMTPPassword: e.str("SMTP_PASSWORD", ""),
			FromAddress:  e.str("SMTP_FROM", "inventory@localhost"),
		},
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate runs the validators appropriate for the environment
func (c *Config) Validate() error {
	validators := []Validator{&BasicValidator{}, &InventoryValidator{}}
	if c.IsProduction() {
		validators = append(validators, &ProductionValidator{}, &SecurityValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}

// GetDatabaseURL returns the formatted database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the formatted server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetRedisAddress returns host:port for the cache client
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "local"
}

// envReader resolves settings through viper so that env vars always win
// over defaults.
type envReader struct {
	v *viper.Viper
}

func (e envReader) str(key, defaultValue string) string {
	e.v.SetDefault(key, defaultValue)
	return e.v.GetString(key)
}

func (e envReader) boolean(key string, defaultValue bool) bool {
	raw := e.v.GetString(key)
	if raw == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return b
}

func (e envReader) integer(key string, defaultValue int) int {
	raw := e.v.GetString(key)
	if raw == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return i
}

func (e envReader) duration(key string, defaultValue time.Duration) time.Duration {
	raw := e.v.GetString(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}

func (e envReader) slice(key string, defaultValue []string) []string {
	raw := e.v.GetString(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseQueues(queuesStr string) map[string]int {
	queues := make(map[string]int)
	pairs := strings.Split(queuesStr, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			name := strings.TrimSpace(parts[0])
			priority, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err == nil {
				queues[name] = priority
			}
		}
	}
	if len(queues) == 0 {
		queues["default"] = 1
	}
	return queues
}

func generateDefaultSecret(env string) string {
	if env == "production" {
		return "" // Force error in production if not set
	}
	return "development-secret-change-in-production"
}
