// Package iap verifies in-app purchase receipts. The ledger only needs to
// know which product a receipt proves; how a platform checks it is hidden
// behind Verifier.
package iap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	PlatformApple  = "apple"
	PlatformGoogle = "google"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrEmptyReceipt        = errors.New("empty receipt")
	ErrVerificationFailed  = errors.New("receipt verification failed")
)

// Verifier checks a receipt and returns the product it was issued for.
type Verifier interface {
	Verify(ctx context.Context, platform, receipt string) (string, error)
}

// HTTPVerifier delegates verification to a receipt validation service that
// accepts {"platform","receipt"} and answers {"product_id"} on success.
type HTTPVerifier struct {
	url    string
	client *http.Client
}

func NewHTTPVerifier(url string, timeout time.Duration) *HTTPVerifier {
	return &HTTPVerifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type verifyRequest struct {
	Platform string `json:"platform"`
	Receipt  string `json:"receipt"`
}

type verifyResponse struct {
	ProductID string `json:"product_id"`
	Error     string `json:"error,omitempty"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, platform, receipt string) (string, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform != PlatformApple && platform != PlatformGoogle {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	if strings.TrimSpace(receipt) == "" {
		return "", ErrEmptyReceipt
	}

	body, err := json.Marshal(verifyRequest{Platform: platform, Receipt: receipt})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call verifier: %w", err)
	}
	defer resp.Body.Close()

	var out verifyResponse

	err = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out)
	if err != nil {
		return "", fmt.Errorf("%w: status %d, undecodable body: %v", ErrVerificationFailed, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrVerificationFailed, resp.StatusCode, out.Error)
	}
	if out.ProductID == "" {
		return "", fmt.Errorf("%w: no product id", ErrVerificationFailed)
	}

	return out.ProductID, nil
}
