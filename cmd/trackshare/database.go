package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"trackshare/internal/app/tracks"
	"trackshare/internal/app/users"
	"trackshare/internal/config"
	"trackshare/internal/store"
)

// repository is the persistence surface used by both services.
type repository interface {
	tracks.Store
	users.Store
}

// openRepository connects to the configured backend and migrates SQL schemas
// when auto-migration is enabled. The returned close func releases the
// connection.
func openRepository(ctx context.Context, cfg config.DatabaseConfig) (repository, func() error, error) {
	if cfg.Driver == store.DriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return store.NewMemory(), func() error { return nil }, nil
	}

	db, err := store.Open(ctx, cfg.Driver, cfg.URL)
	if err != nil {
		return nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := store.Migrate(db, cfg.Driver, store.MigrateUp); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info().Str("driver", cfg.Driver).Msg("database schema is up to date")
	}

	return store.New(db), db.Close, nil
}
