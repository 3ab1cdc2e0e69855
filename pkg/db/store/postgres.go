package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm/logger"
)

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	DSN      string
	LogLevel logger.LogLevel
	Now      func() time.Time
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(cfg PostgresConfig) (*GormStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := openGorm(postgres.Open(cfg.DSN), cfg.LogLevel, cfg.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	return &GormStore{
		db:      db,
		dialect: "postgres",
	}, nil
}
