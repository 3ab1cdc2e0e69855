package store

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm/logger"
)

// SQLiteConfig holds SQLite-specific configuration
type SQLiteConfig struct {
	Path     string
	LogLevel logger.LogLevel
	// Now overrides the clock used for created/updated timestamps
	Now func() time.Time
}

// NewSQLiteStore creates a new SQLite-backed store
func NewSQLiteStore(cfg SQLiteConfig) (*GormStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := openGorm(sqlite.Open(cfg.Path), cfg.LogLevel, cfg.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	return &GormStore{
		db:      db,
		dialect: "sqlite",
	}, nil
}
