package ledger

import (
	"errors"

	"github.com/fastprodman/coinledger/internal/repos/accounts"
	"github.com/fastprodman/coinledger/internal/repos/receipts"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrTooSoon          = errors.New("too soon")
	ErrPurchaseRejected = errors.New("purchase rejected")
	ErrUnknownProduct   = errors.New("unknown product")
	ErrAlreadyRedeemed  = errors.New("already redeemed")

	// Store-level failures surface unchanged so errors.Is works across layers.
	ErrInvalidAmount   = accounts.ErrInvalidAmount
	ErrOutOfCoins      = accounts.ErrOutOfCoins
	ErrInvalidBalance  = accounts.ErrInvalidBalance
	ErrReceiptReplayed = receipts.ErrAlreadyConsumed
)

// Kind names the failure class of err, for metrics and API error bodies.
// Unrecognized errors are "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrOutOfCoins):
		return "out_of_coins"
	case errors.Is(err, ErrTooSoon):
		return "too_soon"
	case errors.Is(err, ErrPurchaseRejected):
		return "purchase_rejected"
	case errors.Is(err, ErrUnknownProduct):
		return "unknown_product"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, ErrInvalidBalance):
		return "invalid_balance"
	default:
		return "internal"
	}
}
