package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fastprodman/coinledger/internal/config"
	"github.com/fastprodman/coinledger/internal/services/ledger"
)

const testSecret = "test-secret"

var testAuthConfig = config.AuthConfig{
	HMACSecret: testSecret,
	Issuer:     "coinledger-test",
	ClockSkew:  time.Minute,
}

// fakeLedger records the identity it was called with and answers from the
// configured results.
type fakeLedger struct {
	gotIdentity string
	gotAmount   int64
	gotPlatform string
	gotReceipt  string

	status   ledger.CoinStatus
	balance  ledger.Balance
	products map[string]int64
	err      error
}

func (f *fakeLedger) GetCoinStatus(_ context.Context, identity string) (ledger.CoinStatus, error) {
	f.gotIdentity = identity
	return f.status, f.err
}

func (f *fakeLedger) CollectFreeCoins(_ context.Context, identity string) (ledger.CoinStatus, error) {
	f.gotIdentity = identity
	return f.status, f.err
}

func (f *fakeLedger) Debit(_ context.Context, identity string, amount int64) (ledger.Balance, error) {
	f.gotIdentity = identity
	f.gotAmount = amount
	return f.balance, f.err
}

func (f *fakeLedger) CreditFromVerifiedPurchase(_ context.Context, identity, platform, receipt string) (ledger.Balance, error) {
	f.gotIdentity = identity
	f.gotPlatform = platform
	f.gotReceipt = receipt
	return f.balance, f.err
}

func (f *fakeLedger) RedeemLegacyUpgrade(_ context.Context, identity string) (ledger.Balance, error) {
	f.gotIdentity = identity
	return f.balance, f.err
}

func (f *fakeLedger) ListProducts() map[string]int64 {
	return f.products
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return token
}

func playerToken(t *testing.T, subject string) string {
	t.Helper()

	return signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    testAuthConfig.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func newTestRouter(svc Ledger, rl config.RateLimitConfig) http.Handler {
	return NewRouter(RouterDeps{
		Ledger:      svc,
		Auth:        NewAuthenticator(testAuthConfig),
		Limiter:     NewRateLimiter(rl),
		CORSOrigins: []string{"*"},
	})
}

func doRequest(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}
