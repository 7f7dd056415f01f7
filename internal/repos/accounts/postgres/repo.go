package accounts

import (
	"database/sql"

	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

var _ accounts.Accounts = (*accountsRepo)(nil)

type accountsRepo struct{ db *sql.DB }

func New(db *sql.DB) *accountsRepo {
	return &accountsRepo{db: db}
}

// scanBalance turns the balance column returned by a mutation into a value.
// NULL after a write means the row is corrupt.
func scanBalance(b sql.NullInt64) (int64, error) {
	if !b.Valid {
		return 0, accounts.ErrInvalidBalance
	}

	return b.Int64, nil
}

func fieldsFrom(balance, freeCoinsAt sql.NullInt64, upgraded bool) accounts.Fields {
	f := accounts.Fields{UpgradeRedeemed: upgraded}
	if balance.Valid {
		v := balance.Int64
		f.Balance = &v
	}
	if freeCoinsAt.Valid {
		v := freeCoinsAt.Int64
		f.FreeCoinsAt = &v
	}

	return f
}
