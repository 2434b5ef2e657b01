// cmd/seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ammerola/storefront-inventory/internal/adapters/db"
	"github.com/ammerola/storefront-inventory/internal/core/domain"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/internal/pkg/config"
	"github.com/ammerola/storefront-inventory/internal/pkg/logger"
	"github.com/ammerola/storefront-inventory/internal/pkg/token"
	"github.com/ammerola/storefront-inventory/internal/workers"
)

const seederUserID = "seeder"

// seederState remembers which sheets were already applied.
type seederState struct {
	ProcessedSheets []string  `json:"processed_sheets"`
	LastUpdate      time.Time `json:"last_update"`
}

func main() {
	var (
		products  = flag.String("products", "DEMO-TEE,DEMO-HOODIE", "Comma separated product ids to create variant matrices for")
		colors    = flag.String("colors", "Black,White,Red", "Comma separated colors")
		sizes     = flag.String("sizes", "S,M,L,XL", "Comma separated sizes")
		initial   = flag.Int("initial", 20, "Initial count for new variants")
		sheetsDir = flag.String("sheets", "", "Directory of count sheets (.xlsx, .pdf) to reconcile")
		stateFile = flag.String("state", "./.seed_state.json", "State file for tracking applied sheets")
		tokenRole = flag.String("token", "", "Print a bearer token for this role (admin, staff, customer)")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun    = flag.Bool("dry-run", false, "Parse sheets without modifying the database")
		force     = flag.Bool("force", false, "Reapply sheets already recorded in the state file")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "text").Logger

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *tokenRole != "" {
		if err := printToken(cfg, domain.UserRole(*tokenRole)); err != nil {
			slogger.Error("failed to issue token", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	ctx := context.Background()

	var service *services.InventoryService
	if !*dryRun {
		database, err := db.NewDatabase(ctx, &db.Config{
			Host:           cfg.Database.Host,
			Port:           cfg.Database.Port,
			User:           cfg.Database.User,
			Password:       cfg.Database.Password,
			Database:       cfg.Database.Name,
			SSLMode:        cfg.Database.SSLMode,
			MaxConnections: 4,
			MinConnections: 1,
			ConnectTimeout: cfg.Database.ConnectTimeout,
		}, slogger)
		if err != nil {
			slogger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		service = services.NewInventoryService(
			db.NewVariantRepository(database, slogger),
			db.NewLedgerRepository(database, slogger),
			database,
			nil,
			nil,
			services.DefaultOptions(),
			slogger,
		)

		for _, pid := range splitList(*products) {
			created, err := service.CreateVariants(ctx, domain.CreateVariantsCommand{
				ProductID:    pid,
				Colors:       splitList(*colors),
				Sizes:        splitList(*sizes),
				InitialCount: *initial,
			})
			if err != nil {
				slogger.Error("failed to create variants",
					slog.String("product_id", pid),
					slog.String("error", err.Error()))
				continue
			}
			fmt.Printf("SUCCESS: product %s has %d variants\n", pid, len(created))
		}
	}

	if *sheetsDir == "" {
		return
	}

	var state seederState
	if !*force {
		if data, err := os.ReadFile(*stateFile); err == nil {
			if err := json.Unmarshal(data, &state); err != nil {
				slogger.Warn("ignoring unreadable state file", slog.String("error", err.Error()))
			}
		}
	}

	sheets, err := listSheets(*sheetsDir)
	if err != nil {
		slogger.Error("failed to list sheets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var applied, failed int
	for i, path := range sheets {
		name := filepath.Base(path)
		fmt.Printf("PROGRESS: Processing %d/%d: %s\n", i+1, len(sheets), name)

		if !*force && slices.Contains(state.ProcessedSheets, name) {
			slogger.Info("skipping already applied sheet", slog.String("sheet", name))
			continue
		}

		results, err := applySheet(ctx, service, path)
		if err != nil {
			failed++
			fmt.Printf("ERROR: %s - %v\n", name, err)
			continue
		}
		fmt.Printf("SUCCESS: %s - %s\n", name, results)

		if !*dryRun {
			applied++
			state.ProcessedSheets = append(state.ProcessedSheets, name)
			state.LastUpdate = time.Now()
		}
	}

	if !*dryRun {
		data, _ := json.MarshalIndent(state, "", "  ")
		if err := os.WriteFile(*stateFile, data, 0o644); err != nil {
			slogger.Warn("failed to write state file", slog.String("error", err.Error()))
		}
	}

	slogger.Info("seed operation completed",
		slog.Int("sheets_applied", applied),
		slog.Int("sheets_failed", failed))

	if *dryRun {
		fmt.Println("\n[DRY RUN] No changes were made to the database")
	}
}

// applySheet parses one count sheet and, when service is set, reconciles
// every product it names.
func applySheet(ctx context.Context, service *services.InventoryService, path string) (string, error) {
	format, err := domain.SheetFormatFromFilename(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read sheet: %w", err)
	}

	parsed, err := workers.ParseSheet(format, data)
	if err != nil {
		return "", err
	}
	for _, msg := range parsed.Errors {
		fmt.Printf("WARNING: %s\n", msg)
	}

	commands := domain.GroupByProduct(parsed.Rows, seederUserID)
	if service == nil {
		return fmt.Sprintf("%d rows across %d products (not applied)", len(parsed.Rows), len(commands)), nil
	}

	counts := map[domain.BulkStatus]int{}
	for _, cmd := range commands {
		results, err := service.BulkSetCounts(ctx, cmd)
		if err != nil {
			return "", fmt.Errorf("product %s: %w", cmd.ProductID, err)
		}
		for _, r := range results {
			counts[r.Status]++
		}
	}

	return fmt.Sprintf("%d updated, %d unchanged, %d skipped, %d failed",
		counts[domain.BulkUpdated], counts[domain.BulkUnchanged],
		counts[domain.BulkSkipped], counts[domain.BulkFailed]), nil
}

func listSheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := domain.SheetFormatFromFilename(e.Name()); err == nil {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func printToken(cfg *config.Config, role domain.UserRole) error {
	switch role {
	case domain.RoleAdmin, domain.RoleStaff, domain.RoleCustomer:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	tok, err := token.NewService(cfg.Security.JWTSecret, cfg.Security.JWTExpiration).
		GenerateToken(seederUserID, string(role))
	if err != nil {
		return err
	}
	fmt.Printf("TOKEN (%s): %s\n", role, tok)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
