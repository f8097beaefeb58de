package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-notification-list/pkg/config"
	"github.com/goliatone/go-notification-list/pkg/interfaces/logger"
	"github.com/goliatone/go-notification-list/pkg/storage"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// openStorage returns the providers selected by cfg and a close func for any
// database it opened.
func openStorage(ctx context.Context, cfg config.StorageConfig, lgr logger.Logger) (storage.Providers, func() error, error) {
	if cfg.Driver != config.StorageSQLite {
		return storage.NewMemoryProviders(), func() error { return nil }, nil
	}

	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		dsn = "file:notifications.db?cache=shared"
	}
	if err := ensureSQLiteDir(dsn); err != nil {
		return storage.Providers{}, nil, err
	}

	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return storage.Providers{}, nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	if cfg.AutoMigrate {
		if err := storage.CreateTables(ctx, db); err != nil {
			_ = db.Close()
			return storage.Providers{}, nil, fmt.Errorf("storage: create tables: %w", err)
		}
		lgr.Info("storage: schema ready", logger.Field{Key: "dsn", Value: dsn})
	}

	return storage.NewBunProviders(db), db.Close, nil
}

func ensureSQLiteDir(dsn string) error {
	if !strings.HasPrefix(dsn, "file:") {
		return nil
	}
	path := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(path, "?"); idx >= 0 {
		path = path[:idx]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
