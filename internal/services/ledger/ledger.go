package ledger

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/fastprodman/coinledger/internal/catalog"
	"github.com/fastprodman/coinledger/internal/config"
	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/iap"
	"github.com/fastprodman/coinledger/internal/infra/metrics"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
	pgaccounts "github.com/fastprodman/coinledger/internal/repos/accounts/postgres"
	"github.com/fastprodman/coinledger/internal/repos/receipts"
	pgreceipts "github.com/fastprodman/coinledger/internal/repos/receipts/postgres"
)

// Service is the ledger engine. It keeps no per-account state: every
// operation runs as one database transaction and row locks order concurrent
// operations on the same account.
type Service struct {
	db       *sql.DB
	accounts accounts.Accounts
	receipts receipts.Receipts
	catalog  *catalog.Catalog
	verifier iap.Verifier
	sink     events.Sink
	cfg      config.LedgerConfig
	now      func() time.Time
	log      *slog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func New(
	dbx *sql.DB,
	cfg config.LedgerConfig,
	products *catalog.Catalog,
	verifier iap.Verifier,
	sink events.Sink,
	opts ...Option,
) *Service {
	if sink == nil {
		sink = events.Discard
	}

	s := &Service{
		db:       dbx,
		accounts: pgaccounts.New(dbx),
		receipts: pgreceipts.New(dbx),
		catalog:  products,
		verifier: verifier,
		sink:     sink,
		cfg:      cfg,
		now:      time.Now,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ListProducts returns a snapshot of the product catalog.
func (s *Service) ListProducts() map[string]int64 {
	return s.catalog.Snapshot()
}

func (s *Service) cooldownSeconds() int64 {
	return int64(s.cfg.FreeCoinsAfter / time.Second)
}

func (s *Service) observe(op string, err error) {
	metrics.Ledger().Observe(op, Kind(err))
}
