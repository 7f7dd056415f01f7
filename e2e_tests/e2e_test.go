//go:build e2e

// Package e2etests drives a running API (default http://localhost:8080)
// configured with the default ledger settings. Run with: go test -tags e2e ./e2e_tests
package e2etests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	timeout   = 15 * time.Second
	waitReady = 20 * time.Second
)

var (
	baseURL    = envOr("E2E_BASE_URL", "http://localhost:8080")
	authSecret = envOr("E2E_AUTH_SECRET", "dev-secret")
	httpClient = &http.Client{Timeout: timeout}
)

func TestE2E_WalletFlow(t *testing.T) {
	waitUntilReady(t)

	token := tokenFor(t, "e2e-"+uuid.NewString())

	t.Run("first_look_grants_signup_bonus", func(t *testing.T) {
		code, st := getStatus(t, token)
		if code != http.StatusOK {
			t.Fatalf("status: want 200, got %d", code)
		}
		if st.Balance != 500 {
			t.Fatalf("signup balance: want 500, got %d", st.Balance)
		}
		if st.NextFreeCoinsAt <= time.Now().Unix() {
			t.Fatalf("fresh account must be on cooldown, next=%d", st.NextFreeCoinsAt)
		}
	})

	t.Run("free_coins_too_soon", func(t *testing.T) {
		code, body := post(t, token, "/coins/free", nil)
		if code != http.StatusTooManyRequests {
			t.Fatalf("free coins: want 429, got %d (%s)", code, body)
		}
	})

	t.Run("debit_within_balance", func(t *testing.T) {
		code, body := post(t, token, "/coins/debit", map[string]any{"amount": 200})
		if code != http.StatusOK {
			t.Fatalf("debit: want 200, got %d (%s)", code, body)
		}
		if got := decodeBalance(t, body); got != 300 {
			t.Fatalf("after debit: want 300, got %d", got)
		}
	})

	t.Run("debit_over_balance_rejected", func(t *testing.T) {
		code, body := post(t, token, "/coins/debit", map[string]any{"amount": 301})
		if code != http.StatusConflict {
			t.Fatalf("overdraft: want 409, got %d (%s)", code, body)
		}
		if _, st := getStatus(t, token); st.Balance != 300 {
			t.Fatalf("balance changed by rejected debit: %d", st.Balance)
		}
	})

	t.Run("debit_zero_invalid", func(t *testing.T) {
		code, body := post(t, token, "/coins/debit", map[string]any{"amount": 0})
		if code != http.StatusBadRequest {
			t.Fatalf("zero debit: want 400, got %d (%s)", code, body)
		}
	})

	t.Run("legacy_upgrade_once", func(t *testing.T) {
		code, body := post(t, token, "/coins/upgrade", nil)
		if code != http.StatusOK {
			t.Fatalf("redeem: want 200, got %d (%s)", code, body)
		}
		if got := decodeBalance(t, body); got != 500 {
			t.Fatalf("after redeem: want 500, got %d", got)
		}

		code, body = post(t, token, "/coins/upgrade", nil)
		if code != http.StatusConflict {
			t.Fatalf("second redeem: want 409, got %d (%s)", code, body)
		}
	})

	t.Run("forged_receipt_rejected", func(t *testing.T) {
		code, body := post(t, token, "/coins/purchase", map[string]any{
			"platform": "apple",
			"receipt":  "forged-" + uuid.NewString(),
		})
		if code != http.StatusPaymentRequired {
			t.Fatalf("forged receipt: want 402, got %d (%s)", code, body)
		}
	})
}

func TestE2E_PublicAndAuth(t *testing.T) {
	waitUntilReady(t)

	t.Run("products_listed", func(t *testing.T) {
		resp, err := httpClient.Get(baseURL + "/products")
		if err != nil {
			t.Fatalf("get products: %v", err)
		}
		defer resp.Body.Close()

		var payload struct {
			Products map[string]int64 `json:"products"`
		}
		err = json.NewDecoder(resp.Body).Decode(&payload)
		if err != nil {
			t.Fatalf("decode products: %v", err)
		}
		if len(payload.Products) == 0 {
			t.Fatal("catalog is empty")
		}
	})

	t.Run("missing_token", func(t *testing.T) {
		code, _ := getStatus(t, "")
		if code != http.StatusUnauthorized {
			t.Fatalf("no token: want 401, got %d", code)
		}
	})
}

/* -------------------- helpers -------------------- */

type coinStatus struct {
	Balance         int64 `json:"balance"`
	NextFreeCoinsAt int64 `json:"nextFreeCoinsAt"`
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}

	return def
}

func tokenFor(t *testing.T, subject string) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(authSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return tok
}

func getStatus(t *testing.T, token string) (int, coinStatus) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, baseURL+"/coins", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var st coinStatus
	if resp.StatusCode == http.StatusOK {
		err = json.NewDecoder(resp.Body).Decode(&st)
		if err != nil {
			t.Fatalf("decode status: %v", err)
		}
	}

	return resp.StatusCode, st
}

func post(t *testing.T, token, path string, body any) (int, string) {
	t.Helper()

	var rdr io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func decodeBalance(t *testing.T, body string) int64 {
	t.Helper()

	var payload struct {
		Balance int64 `json:"balance"`
	}

	err := json.Unmarshal([]byte(body), &payload)
	if err != nil {
		t.Fatalf("decode balance %q: %v", body, err)
	}

	return payload.Balance
}

// waitUntilReady polls /healthz until it answers 200 or times out.
func waitUntilReady(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), waitReady)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready at %s within %s", baseURL, waitReady)
		case <-tick.C:
			resp, err := httpClient.Get(baseURL + "/healthz")
			if err != nil {
				continue
			}
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
	}
}
