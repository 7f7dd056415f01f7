package receipts

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/coinledger/internal/repos/receipts"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ receipts.Receipts = (*receiptsRepo)(nil)

type receiptsRepo struct{ db *sql.DB }

func New(db *sql.DB) *receiptsRepo {
	return &receiptsRepo{db: db}
}

func (r *receiptsRepo) Consume(tx *sql.Tx, receiptHash, userKey, productID string) error {
	_, err := tx.Exec(`
		INSERT INTO consumed_receipts (receipt_hash, user_key, product_id)
		VALUES ($1, $2, $3)
	`, receiptHash, userKey, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return receipts.ErrAlreadyConsumed
			}
		}

		return fmt.Errorf("insert consumed receipt: %w", err)
	}

	return nil
}
