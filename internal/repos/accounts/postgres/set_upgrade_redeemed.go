package accounts

import (
	"database/sql"
	"fmt"
)

// SetUpgradeRedeemedIfAbsent flips the legacy upgrade flag if it is not set
// yet and reports whether this call flipped it.
func (r *accountsRepo) SetUpgradeRedeemedIfAbsent(tx *sql.Tx, key string) (bool, error) {
	res, err := tx.Exec(`
		INSERT INTO accounts (user_key, upgrade_redeemed)
		VALUES ($1, TRUE)
		ON CONFLICT (user_key) DO UPDATE
		SET upgrade_redeemed = TRUE
		WHERE accounts.upgrade_redeemed = FALSE
	`, key)
	if err != nil {
		return false, fmt.Errorf("set upgrade redeemed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected == 1, nil
}
