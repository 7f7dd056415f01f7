package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// CollectFreeCoins credits the free-coin amount and restarts the cooldown,
// or fails with ErrTooSoon while the cooldown is running.
func (s *Service) CollectFreeCoins(ctx context.Context, identity string) (status CoinStatus, err error) {
	defer func() { s.observe("collect_free_coins", err) }()

	if identity == "" {
		return CoinStatus{}, ErrUnauthenticated
	}

	key := accounts.Key(identity)
	now := s.now().Unix()
	after := s.cooldownSeconds()

	var balance int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		fields, lerr := s.accounts.LockFields(tx, key)
		if lerr != nil {
			return fmt.Errorf("lock account: %w", lerr)
		}

		if !freeCoinsAvailable(fields.FreeCoinsAt, after, now) {
			return ErrTooSoon
		}

		balance, lerr = s.accounts.IncrementBalanceAndSetFreeCoinsAt(tx, key, s.cfg.FreeCoinsAmt, now)
		if lerr != nil {
			return fmt.Errorf("grant free coins: %w", lerr)
		}

		return nil
	})
	if err != nil {
		e := events.New(events.FreeCoinsError, identity)
		e.Err = err
		s.sink.Emit(e)

		return CoinStatus{}, fmt.Errorf("collect free coins: %w", err)
	}

	e := events.New(events.FreeCoinsCollected, identity)
	e.Amount = s.cfg.FreeCoinsAmt
	s.sink.Emit(e)

	return CoinStatus{Balance: balance, NextFreeCoinsAt: now + after}, nil
}
