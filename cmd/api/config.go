package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/coinledger/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" default:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" default:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" default:"10s"`
	CORSOrigins     []string      `env:"APP_CORS_ORIGINS" default:"*"`
	EventsBuffer    int           `env:"EVENTS_BUFFER" default:"1024"`

	Postgres  config.PostgresConfig
	Ledger    config.LedgerConfig
	IAP       config.IAPConfig
	Auth      config.AuthConfig
	RateLimit config.RateLimitConfig
}
