package accounts

import (
	"database/sql"
	"fmt"

	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// LockFields makes sure the row exists and locks it FOR UPDATE until tx ends.
// Concurrent callers on the same key queue up behind the lock and see the
// committed state of whoever held it before them.
func (r *accountsRepo) LockFields(tx *sql.Tx, key string) (accounts.Fields, error) {
	_, err := tx.Exec(`
		INSERT INTO accounts (user_key)
		VALUES ($1)
		ON CONFLICT (user_key) DO NOTHING
	`, key)
	if err != nil {
		return accounts.Fields{}, fmt.Errorf("ensure account row: %w", err)
	}

	var (
		balance, freeCoinsAt sql.NullInt64
		upgraded             bool
	)

	err = tx.QueryRow(`
		SELECT balance, free_coins_at, upgrade_redeemed
		FROM accounts
		WHERE user_key = $1
		FOR UPDATE
	`, key).Scan(&balance, &freeCoinsAt, &upgraded)
	if err != nil {
		return accounts.Fields{}, fmt.Errorf("lock/get fields: %w", err)
	}

	return fieldsFrom(balance, freeCoinsAt, upgraded), nil
}
