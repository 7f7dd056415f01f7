package accounts

import (
	"database/sql"
	"fmt"
)

// Register sets balance and cooldown together, but only while both are
// still absent. It reports whether this call did the registration.
func (r *accountsRepo) Register(tx *sql.Tx, key string, balance, freeCoinsAt int64) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO accounts (user_key, balance, free_coins_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_key) DO UPDATE
		SET balance = EXCLUDED.balance,
		    free_coins_at = EXCLUDED.free_coins_at
		WHERE accounts.balance IS NULL
		  AND accounts.free_coins_at IS NULL
	`, key, balance, freeCoinsAt)
	if err != nil {
		return false, fmt.Errorf("register account: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
