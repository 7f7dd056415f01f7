package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/repos/accounts"
)

// RedeemLegacyUpgrade grants the one-time credit for players who bought the
// retired non-consumable upgrade. Restoring purchases on a new install calls
// this; only the first call per account credits.
func (s *Service) RedeemLegacyUpgrade(ctx context.Context, identity string) (res Balance, err error) {
	defer func() { s.observe("redeem_upgrade", err) }()

	if identity == "" {
		return Balance{}, ErrUnauthenticated
	}

	key := accounts.Key(identity)

	var balance int64

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		didSet, serr := s.accounts.SetUpgradeRedeemedIfAbsent(tx, key)
		if serr != nil {
			return fmt.Errorf("mark upgrade redeemed: %w", serr)
		}
		if !didSet {
			return ErrAlreadyRedeemed
		}

		balance, serr = s.accounts.IncrementBalance(tx, key, s.cfg.UpgradeRedeemCoins)
		if serr != nil {
			return fmt.Errorf("credit upgrade: %w", serr)
		}

		return nil
	})
	if err != nil {
		return Balance{}, fmt.Errorf("redeem legacy upgrade: %w", err)
	}

	return Balance{Balance: balance}, nil
}
