package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// ReadFields returns the account without locking it. A missing row reads as
// an account with every field absent.
func (r *accountsRepo) ReadFields(ctx context.Context, key string) (accounts.Fields, error) {
	var (
		balance, freeCoinsAt sql.NullInt64
		upgraded             bool
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT balance, free_coins_at, upgrade_redeemed
		FROM accounts
		WHERE user_key = $1
	`, key).Scan(&balance, &freeCoinsAt, &upgraded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return accounts.Fields{}, nil
		}

		return accounts.Fields{}, fmt.Errorf("read fields: %w", err)
	}

	return fieldsFrom(balance, freeCoinsAt, upgraded), nil
}
