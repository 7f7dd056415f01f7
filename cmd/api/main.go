package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/coinledger/internal/api"
	"github.com/fastprodman/coinledger/internal/catalog"
	"github.com/fastprodman/coinledger/internal/events"
	"github.com/fastprodman/coinledger/internal/iap"
	"github.com/fastprodman/coinledger/internal/infra/logging"
	"github.com/fastprodman/coinledger/internal/infra/pgutils"
	"github.com/fastprodman/coinledger/internal/services/ledger"
	"github.com/fastprodman/coinledger/pkg/envconf"
	"github.com/fastprodman/coinledger/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg := new(apiConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	err = cfg.Ledger.Validate()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	dbConns, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add("postgres", func(context.Context) error {
		return dbConns.Close()
	})

	products, err := catalog.Load(cfg.Ledger.ProductsFile)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	slog.Info("product catalog loaded", "file", cfg.Ledger.ProductsFile, "products", len(products.Snapshot()))

	// Queued after postgres so it drains first.
	dispatcher := events.NewDispatcher(
		events.Multi(events.LogSink(slog.Default()), events.MetricsSink()),
		cfg.EventsBuffer,
	)
	shutdownqueue.Add("events", dispatcher.Close)

	ledgerSrv := ledger.New(
		dbConns,
		cfg.Ledger,
		products,
		iap.NewHTTPVerifier(cfg.IAP.VerifyURL, cfg.IAP.Timeout),
		dispatcher,
	)

	// --- HTTP server ---
	router := api.NewRouter(api.RouterDeps{
		Ledger:      ledgerSrv,
		Auth:        api.NewAuthenticator(cfg.Auth),
		Limiter:     api.NewRateLimiter(cfg.RateLimit),
		CORSOrigins: cfg.CORSOrigins,
	})
	srv := api.NewServer(cfg.Port, router)

	shutdownqueue.Add("http", func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port, "dedup_receipts", cfg.Ledger.DedupReceipts)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
