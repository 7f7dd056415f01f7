package config

import (
	"errors"
	"time"
)

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" default:"10"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" default:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" default:"30m"`
}

// LedgerConfig holds the coin economy knobs of the ledger engine.
type LedgerConfig struct {
	SignupBonus        int64         `env:"LEDGER_SIGNUP_BONUS" default:"500"`
	FreeCoinsAmt       int64         `env:"LEDGER_FREE_COINS_AMT" default:"100"`
	FreeCoinsAfter     time.Duration `env:"LEDGER_FREE_COINS_AFTER" default:"24h"`
	UpgradeRedeemCoins int64         `env:"LEDGER_UPGRADE_REDEEM_COINS" default:"200"`
	DedupReceipts      bool          `env:"LEDGER_DEDUP_RECEIPTS" default:"false"`
	ProductsFile       string        `env:"LEDGER_PRODUCTS_FILE" default:"products.yaml"`
}

// Validate rejects economies that would mint or burn coins by mistake.
func (c LedgerConfig) Validate() error {
	switch {
	case c.SignupBonus < 0:
		return errors.New("LEDGER_SIGNUP_BONUS must not be negative")
	case c.FreeCoinsAmt <= 0:
		return errors.New("LEDGER_FREE_COINS_AMT must be positive")
	case c.FreeCoinsAfter < 0:
		return errors.New("LEDGER_FREE_COINS_AFTER must not be negative")
	case c.UpgradeRedeemCoins <= 0:
		return errors.New("LEDGER_UPGRADE_REDEEM_COINS must be positive")
	}

	return nil
}

type IAPConfig struct {
	VerifyURL string        `env:"IAP_VERIFY_URL"`
	Timeout   time.Duration `env:"IAP_TIMEOUT" default:"10s"`
}

type AuthConfig struct {
	HMACSecret string        `env:"AUTH_HMAC_SECRET"`
	Issuer     string        `env:"AUTH_ISSUER" default:""`
	ClockSkew  time.Duration `env:"AUTH_CLOCK_SKEW" default:"2m"`
}

type RateLimitConfig struct {
	RequestsPerMinute float64 `env:"RATE_PER_MINUTE" default:"60"`
	Burst             int     `env:"RATE_BURST" default:"10"`
}
