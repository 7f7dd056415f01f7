package ledger

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/fastprodman/coinledger/internal/catalog"
	"github.com/fastprodman/coinledger/internal/config"
	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/iap"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/coinledger/internal/repos/accounts/postgres"
)

var testLedgerConfig = config.LedgerConfig{
	SignupBonus:        500,
	FreeCoinsAmt:       100,
	FreeCoinsAfter:     24 * time.Hour,
	UpgradeRedeemCoins: 200,
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Emit(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) named(name string) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}

	return out
}

// fakeVerifier maps receipts to products; unknown receipts fail verification.
type fakeVerifier map[string]string

func (f fakeVerifier) Verify(_ context.Context, platform, receipt string) (string, error) {
	if platform != iap.PlatformApple && platform != iap.PlatformGoogle {
		return "", iap.ErrUnsupportedPlatform
	}

	productID, ok := f[receipt]
	if !ok {
		return "", iap.ErrVerificationFailed
	}

	return productID, nil
}

func newTestService(t *testing.T, db *sql.DB, cfg config.LedgerConfig, now int64) (*Service, *recorder) {
	t.Helper()

	products, err := catalog.New(map[string]int64{
		"coins_1000": 1000,
		"coins_5000": 5500,
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	verifier := fakeVerifier{
		"receipt-1000":    "coins_1000",
		"receipt-5000":    "coins_5000",
		"receipt-retired": "coins_legacy_pack",
	}

	rec := &recorder{}
	svc := New(db, cfg, products, verifier, rec, WithClock(func() time.Time { return time.Unix(now, 0) }))

	return svc, rec
}

func readFields(t *testing.T, db *sql.DB, identity string) accounts.Fields {
	t.Helper()

	f, err := pgaccounts.New(db).ReadFields(context.Background(), accounts.Key(identity))
	if err != nil {
		t.Fatalf("read fields: %v", err)
	}

	return f
}

func balanceOf(t *testing.T, db *sql.DB, identity string) int64 {
	t.Helper()

	f := readFields(t, db, identity)
	if f.Balance == nil {
		return 0
	}

	return *f.Balance
}
