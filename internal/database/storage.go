package database

import (
	"context"
	"fmt"

	"wedding-guest-list/config"
	"wedding-guest-list/internal/repository"
)

// OpenGuestRepository connects to the configured backend. The returned
// close func releases the underlying connection.
func OpenGuestRepository(ctx context.Context, cfg *config.Config) (repository.GuestRepository, func() error, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := InitDatabase(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		return repository.NewPostgresGuestRepository(pool), func() error { pool.Close(); return nil }, nil
	case config.DriverSQLite:
		db, err := InitSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize sqlite: %w", err)
		}
		return repository.NewSQLiteGuestRepository(db), db.Close, nil
	case config.DriverBolt:
		db, err := InitBolt(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize bolt: %w", err)
		}
		return repository.NewBoltGuestRepository(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
