package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/coinledger/internal/infra/pgtestutil"
)

func TestService_GetCoinStatus_RegistersOnFirstSight(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	const now = 1_700_000_000

	cfg := testLedgerConfig
	cfg.FreeCoinsAfter = time.Hour

	svc, _ := newTestService(t, db, cfg, now)

	st, err := svc.GetCoinStatus(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, CoinStatus{Balance: 500, NextFreeCoinsAt: now + 3600}, st)

	// a second look must not grant the bonus again
	st, err = svc.GetCoinStatus(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, CoinStatus{Balance: 500, NextFreeCoinsAt: now + 3600}, st)

	f := readFields(t, db, "p1")
	require.NotNil(t, f.FreeCoinsAt)
	assert.EqualValues(t, now, *f.FreeCoinsAt)
}

func TestService_GetCoinStatus_Existing(t *testing.T) {
	t.Parallel()

	const (
		day = 86_400
		at  = 100_000
	)

	tests := []struct {
		name    string
		balance *int64
		at      *int64
		now     int64
		want    CoinStatus
	}{
		{
			name:    "cooldown_running",
			balance: pgtestutil.Int64(120),
			at:      pgtestutil.Int64(at),
			now:     at + 10,
			want:    CoinStatus{Balance: 120, NextFreeCoinsAt: at + day},
		},
		{
			name:    "cooldown_boundary",
			balance: pgtestutil.Int64(120),
			at:      pgtestutil.Int64(at),
			now:     at + day,
			want:    CoinStatus{Balance: 120, NextFreeCoinsAt: at + day},
		},
		{
			name:    "cooldown_expired",
			balance: pgtestutil.Int64(7),
			at:      pgtestutil.Int64(at),
			now:     at + day + 50,
			want:    CoinStatus{Balance: 7, NextFreeCoinsAt: at + day + 50},
		},
		{
			name:    "negative_balance_floored",
			balance: pgtestutil.Int64(-30),
			at:      pgtestutil.Int64(at),
			now:     at + 1,
			want:    CoinStatus{Balance: 0, NextFreeCoinsAt: at + day},
		},
		{
			name:    "balance_without_cooldown",
			balance: pgtestutil.Int64(250),
			now:     at,
			want:    CoinStatus{Balance: 250, NextFreeCoinsAt: at},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			pgtestutil.SeedAccount(t, db, "users/p", tt.balance, tt.at, false)

			svc, _ := newTestService(t, db, testLedgerConfig, tt.now)

			st, err := svc.GetCoinStatus(t.Context(), "p")
			require.NoError(t, err)
			assert.Equal(t, tt.want, st)
		})
	}
}

func TestService_GetCoinStatus_ConcurrentFirstSight(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	const now = 1_000

	svc, _ := newTestService(t, db, testLedgerConfig, now)

	const workers = 8

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()

			st, err := svc.GetCoinStatus(context.Background(), "crowd")
			if err != nil {
				t.Errorf("status: %v", err)
				return
			}
			if st.Balance != 500 {
				t.Errorf("balance: want 500, got %d", st.Balance)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 500, balanceOf(t, db, "crowd"))
}

func TestService_Unauthenticated(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc, rec := newTestService(t, db, testLedgerConfig, 1_000)
	ctx := t.Context()

	calls := map[string]func() error{
		"status": func() error { _, err := svc.GetCoinStatus(ctx, ""); return err },
		"free":   func() error { _, err := svc.CollectFreeCoins(ctx, ""); return err },
		"debit":  func() error { _, err := svc.Debit(ctx, "", 10); return err },
		"buy":    func() error { _, err := svc.CreditFromVerifiedPurchase(ctx, "", "apple", "receipt-1000"); return err },
		"redeem": func() error { _, err := svc.RedeemLegacyUpgrade(ctx, ""); return err },
	}

	for name, call := range calls {
		if err := call(); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("%s: want ErrUnauthenticated, got %v", name, err)
		}
	}

	var count int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM accounts`).Scan(&count))
	assert.Zero(t, count, "no account may be touched without identity")
	assert.Empty(t, rec.events)
}

func TestService_ListProducts(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil, testLedgerConfig, 1_000)

	products := svc.ListProducts()
	assert.Equal(t, map[string]int64{"coins_1000": 1000, "coins_5000": 5500}, products)

	// callers get a copy
	products["coins_1000"] = 1
	amount, ok := svc.catalog.Lookup("coins_1000")
	require.True(t, ok)
	assert.EqualValues(t, 1000, amount)
}
