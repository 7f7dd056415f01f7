package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Ledger      Ledger
	Auth        *Authenticator
	Limiter     *RateLimiter
	CORSOrigins []string
}

// NewRouter constructs a chi router with all API endpoints registered.
func NewRouter(deps RouterDeps) http.Handler {
	h := NewHandler(deps.Ledger)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/products", h.ListProductsHandler)

	r.Route("/coins", func(r chi.Router) {
		r.Use(deps.Auth.Middleware)

		r.Get("/", h.CoinStatusHandler)

		r.Group(func(r chi.Router) {
			r.Use(deps.Limiter.Middleware)

			r.Post("/free", h.CollectFreeCoinsHandler)
			r.Post("/debit", h.DebitHandler)
			r.Post("/purchase", h.PurchaseHandler)
			r.Post("/upgrade", h.RedeemUpgradeHandler)
		})
	})

	return r
}
