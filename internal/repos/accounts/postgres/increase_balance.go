package accounts

import (
	"database/sql"
	"fmt"
)

// IncrementBalance adds delta to the balance and returns the new value. An
// absent balance counts as zero.
func (r *accountsRepo) IncrementBalance(tx *sql.Tx, key string, delta int64) (int64, error) {
	var balance sql.NullInt64

	err := tx.QueryRow(`
		INSERT INTO accounts (user_key, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_key) DO UPDATE
		SET balance = COALESCE(accounts.balance, 0) + EXCLUDED.balance
		RETURNING balance
	`, key, delta).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("increment balance: %w", err)
	}

	return scanBalance(balance)
}

// IncrementBalanceAndSetFreeCoinsAt credits delta and stamps the free-coin
// cooldown in one statement, so no reader sees one effect without the other.
func (r *accountsRepo) IncrementBalanceAndSetFreeCoinsAt(tx *sql.Tx, key string, delta, freeCoinsAt int64) (int64, error) {
	var balance sql.NullInt64

	err := tx.QueryRow(`
		INSERT INTO accounts (user_key, balance, free_coins_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_key) DO UPDATE
		SET balance = COALESCE(accounts.balance, 0) + EXCLUDED.balance,
		    free_coins_at = EXCLUDED.free_coins_at
		RETURNING balance
	`, key, delta, freeCoinsAt).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("increment balance and set free coins at: %w", err)
	}

	return scanBalance(balance)
}
