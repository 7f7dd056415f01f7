package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/fastprodman/coinledger/internal/services/ledger"
)

// Ledger is the engine surface the HTTP layer needs.
type Ledger interface {
	GetCoinStatus(ctx context.Context, identity string) (ledger.CoinStatus, error)
	CollectFreeCoins(ctx context.Context, identity string) (ledger.CoinStatus, error)
	Debit(ctx context.Context, identity string, amount int64) (ledger.Balance, error)
	CreditFromVerifiedPurchase(ctx context.Context, identity, platform, receipt string) (ledger.Balance, error)
	RedeemLegacyUpgrade(ctx context.Context, identity string) (ledger.Balance, error)
	ListProducts() map[string]int64
}

// HandlerProvider wraps a Ledger and exposes HTTP handlers.
type HandlerProvider struct {
	svc Ledger
}

func NewHandler(svc Ledger) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, kind string) {
	writeJSON(w, status, map[string]string{"error": kind})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrOutOfCoins), errors.Is(err, ledger.ErrAlreadyRedeemed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrTooSoon):
		return http.StatusTooManyRequests
	case errors.Is(err, ledger.ErrPurchaseRejected):
		return http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrUnknownProduct):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeLedgerError maps an engine error onto a status and an error kind.
// Server-side failures are logged; their details never reach the client.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "ledger operation failed",
			"path", r.URL.Path, "identity", IdentityFrom(r.Context()), "error", err)
	}

	writeError(w, status, ledger.Kind(err))
}

// decodeBody reads a size-capped JSON body and rejects unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return errors.New("empty body")
	}

	return err
}

// --- Handlers ---

// ListProductsHandler handles GET /products
func (h *HandlerProvider) ListProductsHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"products": h.svc.ListProducts()})
}

// CoinStatusHandler handles GET /coins
func (h *HandlerProvider) CoinStatusHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.GetCoinStatus(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// CollectFreeCoinsHandler handles POST /coins/free
func (h *HandlerProvider) CollectFreeCoinsHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CollectFreeCoins(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, st)
}

type debitRequest struct {
	Amount int64 `json:"amount"`
}

// DebitHandler handles POST /coins/debit
func (h *HandlerProvider) DebitHandler(w http.ResponseWriter, r *http.Request) {
	var req debitRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := h.svc.Debit(r.Context(), IdentityFrom(r.Context()), req.Amount)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type purchaseRequest struct {
	Platform string `json:"platform"`
	Receipt  string `json:"receipt"`
}

// PurchaseHandler handles POST /coins/purchase
func (h *HandlerProvider) PurchaseHandler(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	res, err := h.svc.CreditFromVerifiedPurchase(r.Context(), IdentityFrom(r.Context()), req.Platform, req.Receipt)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// RedeemUpgradeHandler handles POST /coins/upgrade
func (h *HandlerProvider) RedeemUpgradeHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.RedeemLegacyUpgrade(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
