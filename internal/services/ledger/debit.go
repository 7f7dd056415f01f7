package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// Debit spends amount coins. It fails with ErrOutOfCoins, leaving the
// balance as it was, when the account cannot cover the amount.
//
// Debit is not idempotent: retrying after a timeout may spend twice.
func (s *Service) Debit(ctx context.Context, identity string, amount int64) (res Balance, err error) {
	defer func() { s.observe("debit", err) }()

	if identity == "" {
		return Balance{}, ErrUnauthenticated
	}

	defer func() {
		e := events.New(events.Debit, identity)
		if err != nil {
			e.Name = events.DebitError
			e.Err = err
		}
		e.Amount = amount
		s.sink.Emit(e)
	}()

	if amount <= 0 {
		return Balance{}, fmt.Errorf("debit %d: %w", amount, ErrInvalidAmount)
	}

	key := accounts.Key(identity)

	var balance int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var derr error
		balance, derr = s.accounts.Debit(tx, key, amount)
		return derr
	})
	if err != nil {
		return Balance{}, fmt.Errorf("debit %d: %w", amount, err)
	}

	return Balance{Balance: balance}, nil
}
