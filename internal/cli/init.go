// Package cli holds the startup steps shared by cmd/saldo and
// cmd/saldo-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"saldo/internal/backend"
	"saldo/internal/config"
	"saldo/internal/log"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT. An
// unknown level falls back to info so that the validation error can still
// be reported.
func NewLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Format = cfg.LogFormat
	lc.Component = component
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	return log.New(lc)
}

// Bootstrap loads the environment and configuration, installs the default
// logger and exits the process when the configuration is invalid.
func Bootstrap(component string) (*config.Config, *log.Logger) {
	LoadEnvFile()

	cfg := config.Load()
	logger := NewLogger(cfg, component)
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// InitBackend opens the configured ledger store.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// CloseQuietly runs cleanup and logs, rather than returns, its error.
func CloseQuietly(logger *log.Logger, resource string, cleanup func() error) {
	if cleanup == nil {
		return
	}
	if err := cleanup(); err != nil {
		logger.Warn("Cleanup failed", "resource", resource, log.FieldError, err)
	}
}
