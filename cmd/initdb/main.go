package main

import (
	"context"
	"time"

	"wedding-guest-list/config"
	"wedding-guest-list/internal/database"
	"wedding-guest-list/pkg/logger"

	"go.uber.org/zap"
)

// initdb creates the guest schema for the configured storage. Safe to run
// more than once.
func main() {
	log := logger.WithComponent("initdb")
	defer logger.L.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, closeStorage, err := database.OpenGuestRepository(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStorage()

	if err := repo.Initialize(ctx); err != nil {
		log.Fatal("Failed to initialize guest store", zap.Error(err))
	}
	log.Info("Guest store initialized", zap.String("driver", cfg.Storage.Driver), zap.String("path", cfg.Storage.Path))
}
