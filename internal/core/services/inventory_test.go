// internal/core/services/inventory_test.go
package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/storefront-inventory/internal/core/ports"
	"github.com/ammerola/storefront-inventory/internal/core/services"
	"github.com/ammerola/storefront-inventory/test/helpers"
	"github.com/ammerola/storefront-inventory/test/mocks"
)

type fixture struct {
	variants *mocks.MockVariantRepository
	ledger   *mocks.MockLedgerRepository
	tx       *mocks.MockTransactor
	cache    *mocks.MockCacheRepository
	idem     *mocks.MockIdempotencyStore
	svc      *services.InventoryService
}

func testOptions() services.Options {
	opts := services.DefaultOptions()
	opts.CASBackoff = 0
	opts.MaxCASRetries = 3
	return opts
}

// newFixture wires the service to mocks. Transactions run their callback
// inline and WithTx hands back the same mock.
func newFixture(t *testing.T, opts services.Options) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		variants: mocks.NewMockVariantRepository(ctrl),
		ledger:   mocks.NewMockLedgerRepository(ctrl),
		tx:       mocks.NewMockTransactor(ctrl),
		cache:    mocks.NewMockCacheRepository(ctrl),
		idem:     mocks.NewMockIdempotencyStore(ctrl),
	}

	f.tx.EXPECT().
		Transaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(pgx.Tx) error) error {
			return fn(nil)
		}).
		AnyTimes()
	f.variants.EXPECT().WithTx(gomock.Any()).Return(f.variants).AnyTimes()
	f.ledger.EXPECT().WithTx(gomock.Any()).Return(f.ledger).AnyTimes()

	f.svc = services.NewInventoryService(f.variants, f.ledger, f.tx, f.cache, f.idem, opts, helpers.TestLogger())
	return f
}

func (f *fixture) expectInvalidate(productID string) *gomock.Call {
	f.cache.EXPECT().
		Increment(gomock.Any(), "inv:variants-gen:"+productID, 24*time.Hour).
		Return(int64(1), nil)
	return f.cache.EXPECT().
		Delete(gomock.Any(), "dash:inventory").
		Return(nil)
}

// expectGeneration serves the product's cache generation; 0 means none stored.
func (f *fixture) expectGeneration(productID string, generation int64) *gomock.Call {
	return f.cache.EXPECT().
		Get(gomock.Any(), "inv:variants-gen:"+productID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, dest interface{}) error {
			if generation == 0 {
				return ports.ErrCacheMiss
			}
			*dest.(*int64) = generation
			return nil
		})
}
