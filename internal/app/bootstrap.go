// Package app orchestrates the application startup sequence.
package app

import (
	"log/slog"

	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra"
	"github.com/maithyaurbanus123-oss/derivprotrade1/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logging, journal)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping DerivProTrade...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Journal (optional)
	if cfg.Storage.Enabled {
		store, err := storage.NewStorage(cfg.Storage.Path)
		if err != nil {
			return err
		}
		b.Storage = store

		if count, err := store.CountFills(); err == nil {
			slog.Info("✅ Fill journal initialized", slog.Int64("journaled_fills", count))
		}
		if settings, err := store.LoadConfigMap(); err == nil {
			if _, ok := settings["credential"]; ok {
				// Connection stays offline until the UI asks for it; we only
				// report that a credential is on file.
				slog.Info("Credential found on file")
			}
		}
	} else {
		slog.Info("Fill journal disabled")
	}

	return nil
}
