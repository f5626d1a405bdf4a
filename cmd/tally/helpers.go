package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig returns the typed view of the global viper configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("cannot open the ledger database at %s", cfg.Database.Path), err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
