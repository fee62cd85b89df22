// Package cli provides common initialization utilities shared by
// cmd/ledger and cmd/ledger-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/storage"
)

// SetupLogger builds the component logger for a binary at the given level,
// writing text records to w, and installs it as the slog default.
func SetupLogger(w io.Writer, level, component string) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: component,
		Handler:   slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OpenStore opens the database at path and runs migrations.
func OpenStore(logger *log.Logger, path string) (*storage.Store, error) {
	store, err := storage.Open(path, storage.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to open database", log.FieldError, err, log.FieldPath, path)
		return nil, fmt.Errorf("open database: %w", err)
	}
	return store, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. cleanup
// runs once after the signal, before the context is cancelled, bounded by
// timeout.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
			return
		}

		if cleanup != nil {
			done := make(chan struct{})
			go func() {
				cleanup()
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(timeout):
				logger.Warn("Shutdown timeout reached")
			}
		}
		cancel()
	}()

	return ctx, cancel
}
