package accounts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// Debit decrements the balance by amount. If that drives it below zero the
// decrement is added back in the same transaction and ErrOutOfCoins is
// returned. The UPDATE holds the row lock until tx ends, so the negative
// intermediate value is never visible to anyone else.
func (r *accountsRepo) Debit(tx *sql.Tx, key string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, accounts.ErrInvalidAmount
	}

	var balance sql.NullInt64

	err := tx.QueryRow(`
		UPDATE accounts
		SET balance = COALESCE(balance, 0) - $2
		WHERE user_key = $1
		RETURNING balance
	`, key, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// unknown account holds zero coins
			return 0, accounts.ErrOutOfCoins
		}

		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	newBalance, err := scanBalance(balance)
	if err != nil {
		return 0, err
	}

	if newBalance < 0 {
		_, err = tx.Exec(`
			UPDATE accounts
			SET balance = balance + $2
			WHERE user_key = $1
		`, key, amount)
		if err != nil {
			return 0, fmt.Errorf("revert decrease: %w", err)
		}

		return 0, accounts.ErrOutOfCoins
	}

	return newBalance, nil
}
