package receipts

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
)

var ErrAlreadyConsumed = errors.New("receipt already consumed")

// Receipts remembers which purchase receipts were already credited.
type Receipts interface {
	Consume(tx *sql.Tx, receiptHash, userKey, productID string) error
}

// Hash fingerprints a receipt per platform so raw receipts are never stored.
func Hash(platform, receipt string) string {
	sum := sha256.Sum256([]byte(platform + ":" + receipt))
	return hex.EncodeToString(sum[:])
}
