package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	config "github.com/mwantia/costquery/internal/config/server"
	"github.com/mwantia/costquery/pkg/db/store"
	"gorm.io/gorm/logger"
)

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	}
	return logger.Silent
}

// OpenStore opens and connects the configured store without migrating it
func OpenStore(ctx context.Context, cfg config.StoreServerConfig) (*store.GormStore, error) {
	var (
		st  *store.GormStore
		err error
	)

	switch cfg.Type {
	case "postgres":
		st, err = store.NewPostgresStore(store.PostgresConfig{
			DSN:      cfg.Postgres.DSN,
			LogLevel: gormLogLevel(cfg.LogLevel),
		})
	case "sqlite", "":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		st, err = store.NewSQLiteStore(store.SQLiteConfig{
			Path:     cfg.SQLite.Path,
			LogLevel: gormLogLevel(cfg.LogLevel),
		})
	default:
		return nil, fmt.Errorf("unsupported store type '%s'", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Connect(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to connect to %s store: %w", st.Dialect(), err)
	}

	return st, nil
}
