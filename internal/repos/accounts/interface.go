package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrOutOfCoins     = errors.New("out of coins")
	ErrInvalidBalance = errors.New("invalid balance")
)

// Fields is the persisted state of one account. Nil pointers mean the field
// was never written.
type Fields struct {
	Balance         *int64
	FreeCoinsAt     *int64
	UpgradeRedeemed bool
}

// Unseen reports whether the account has neither a balance nor a cooldown,
// i.e. it was never registered.
func (f Fields) Unseen() bool {
	return f.Balance == nil && f.FreeCoinsAt == nil
}

// Accounts is the account store. Every mutating method runs inside the
// caller's transaction; the transaction is the atomic unit.
type Accounts interface {
	ReadFields(ctx context.Context, key string) (Fields, error)
	LockFields(tx *sql.Tx, key string) (Fields, error)
	Register(tx *sql.Tx, key string, balance, freeCoinsAt int64) (bool, error)
	IncrementBalance(tx *sql.Tx, key string, delta int64) (int64, error)
	IncrementBalanceAndSetFreeCoinsAt(tx *sql.Tx, key string, delta, freeCoinsAt int64) (int64, error)
	SetUpgradeRedeemedIfAbsent(tx *sql.Tx, key string) (bool, error)
	Debit(tx *sql.Tx, key string, amount int64) (int64, error)
}

// Key derives the store key of a user identity.
func Key(identity string) string {
	return "users/" + identity
}
