// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator checks one aspect of a Config
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	// Validate required fields using reflection
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}

	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	return nil
}

// InventoryValidator checks the stock engine limits and cron specs
type InventoryValidator struct{}

// Validate performs inventory validation
func (v *InventoryValidator) Validate(cfg *Config) error {
	inv := cfg.Inventory

	if inv.CheckStockMaxBatch <= 0 {
		return fmt.Errorf("inventory check_stock_max_batch must be positive")
	}
	if inv.MaxBulkTargets <= 0 {
		return fmt.Errorf("inventory max_bulk_targets must be positive")
	}
	if inv.MaxVariantsPerProduct <= 0 {
		return fmt.Errorf("inventory max_variants_per_product must be positive")
	}
	if inv.DefaultLowStockThreshold < 0 {
		return fmt.Errorf("inventory default_low_stock_threshold cannot be negative")
	}
	if inv.MaxCASRetries <= 0 {
		return fmt.Errorf("inventory max_cas_retries must be positive")
	}
	if inv.CASBackoff < 0 {
		return fmt.Errorf("inventory cas_backoff cannot be negative")
	}

	for name, spec := range map[string]string{
		"low_stock_scan_cron":  inv.LowStockScanCron,
		"summary_refresh_cron": inv.SummaryRefreshCron,
		"cleanup_cron":         inv.CleanupCron,
	} {
		if spec == "" {
			continue
		}
		if err := validateCron(spec); err != nil {
			return fmt.Errorf("inventory %s: %w", name, err)
		}
	}

	for _, r := range inv.LowStockAlertRecipients {
		if !strings.Contains(r, "@") {
			return fmt.Errorf("invalid low stock alert recipient %q", r)
		}
	}

	return nil
}

// validateCron parses spec with the same parser the asynq scheduler uses.
func validateCron(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	// Check for placeholder values
	if strings.Contains(cfg.Database.Password, "MISSING_") || cfg.Database.Password == "" {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if strings.Contains(cfg.Security.JWTSecret, "MISSING_") || cfg.Security.JWTSecret == "" {
		return fmt.Errorf("%w: JWT secret", ErrMissingRequiredConfig)
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	if len(cfg.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be configured in production")
	}

	if cfg.Security.JWTSecret == "development-secret-change-in-production" {
		return fmt.Errorf("default JWT secret cannot be used in production")
	}

	if cfg.Server.TLSEnabled {
		if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
			return fmt.Errorf("TLS cert and key files must be provided when TLS is enabled")
		}
	}

	if len(cfg.Inventory.LowStockAlertRecipients) > 0 && cfg.Notifications.SMTPHost == "" {
		return fmt.Errorf("%w: SMTP host for low stock alerts", ErrMissingRequiredConfig)
	}

	return nil
}

// SecurityValidator validates security-related configuration
type SecurityValidator struct{}

// Validate performs security validation
func (v *SecurityValidator) Validate(cfg *Config) error {
	if len(cfg.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	if cfg.Security.JWTExpiration <= 0 {
		return fmt.Errorf("JWT expiration must be positive")
	}

	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" && cfg.IsProduction() {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		// Recursively check nested structs
		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
