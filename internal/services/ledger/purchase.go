package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
	"github.com/fastprodman/coinledger/internal/repos/receipts"
)

// CreditFromVerifiedPurchase verifies a store receipt and credits the coins
// of the purchased product.
//
// Receipts are only deduplicated when DedupReceipts is enabled; otherwise a
// replayed receipt is credited again unless the verifier refuses it.
func (s *Service) CreditFromVerifiedPurchase(ctx context.Context, identity, platform, receipt string) (res Balance, err error) {
	defer func() { s.observe("purchase", err) }()

	if identity == "" {
		return Balance{}, ErrUnauthenticated
	}

	reject := func(productID string, cause error) (Balance, error) {
		e := events.New(events.IAPRejected, identity)
		e.Platform = platform
		e.Receipt = receipt
		e.ProductID = productID
		e.Err = cause
		s.sink.Emit(e)

		return Balance{}, cause
	}

	productID, err := s.verifier.Verify(ctx, platform, receipt)
	if err != nil {
		return reject("", fmt.Errorf("%w: %w", ErrPurchaseRejected, err))
	}

	coins, ok := s.catalog.Lookup(productID)
	if !ok {
		return reject(productID, fmt.Errorf("%w: %q", ErrUnknownProduct, productID))
	}

	key := accounts.Key(identity)

	var balance int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if s.cfg.DedupReceipts {
			cerr := s.receipts.Consume(tx, receipts.Hash(platform, receipt), key, productID)
			if cerr != nil {
				return fmt.Errorf("consume receipt: %w", cerr)
			}
		}

		var ierr error
		balance, ierr = s.accounts.IncrementBalance(tx, key, coins)
		if ierr != nil {
			return fmt.Errorf("credit purchase: %w", ierr)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReceiptReplayed) {
			return reject(productID, fmt.Errorf("%w: %w", ErrPurchaseRejected, err))
		}

		return Balance{}, err
	}

	e := events.New(events.IAPVerified, identity)
	e.Platform = platform
	e.ProductID = productID
	e.Amount = coins
	s.sink.Emit(e)

	return Balance{Balance: balance}, nil
}
