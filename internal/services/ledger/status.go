package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/coinledger/internal/infra/metrics"
	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// GetCoinStatus returns the balance and when free coins can next be
// collected. A never-seen identity is registered on the spot with the
// signup bonus and its cooldown stamped to now.
func (s *Service) GetCoinStatus(ctx context.Context, identity string) (status CoinStatus, err error) {
	defer func() { s.observe("status", err) }()

	if identity == "" {
		return CoinStatus{}, ErrUnauthenticated
	}

	key := accounts.Key(identity)
	now := s.now().Unix()

	fields, err := s.accounts.ReadFields(ctx, key)
	if err != nil {
		return CoinStatus{}, fmt.Errorf("read account: %w", err)
	}

	if fields.Unseen() {
		var registered bool

		err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
			var rerr error
			registered, rerr = s.accounts.Register(tx, key, s.cfg.SignupBonus, now)
			return rerr
		})
		if err != nil {
			return CoinStatus{}, fmt.Errorf("register account: %w", err)
		}

		if registered {
			return CoinStatus{
				Balance:         s.cfg.SignupBonus,
				NextFreeCoinsAt: now + s.cooldownSeconds(),
			}, nil
		}

		// a concurrent request registered first
		fields, err = s.accounts.ReadFields(ctx, key)
		if err != nil {
			return CoinStatus{}, fmt.Errorf("re-read account: %w", err)
		}
	}

	return CoinStatus{
		Balance:         s.readBalance(identity, fields.Balance),
		NextFreeCoinsAt: nextFreeCoinsAt(fields.FreeCoinsAt, s.cooldownSeconds(), now),
	}, nil
}

// readBalance floors a stored balance for display. A negative value means
// a bug elsewhere, so it is logged and counted rather than hidden silently.
func (s *Service) readBalance(identity string, balance *int64) int64 {
	if balance == nil {
		return 0
	}

	if *balance < 0 {
		s.log.Warn("negative balance floored to zero", "identity", identity, "stored", *balance)
		metrics.Ledger().BalanceFloored()

		return 0
	}

	return *balance
}
