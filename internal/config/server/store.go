package server

// StoreServerConfig holds the database configuration entries and metadata are read from
type StoreServerConfig struct {
	Type     string                    `mapstructure:"type"      yaml:"type"      validate:"oneof=sqlite postgres"`
	LogLevel string                    `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=silent error warn info"`
	SQLite   StoreSQLiteServerConfig   `mapstructure:"sqlite"    yaml:"sqlite"`
	Postgres StorePostgresServerConfig `mapstructure:"postgres"  yaml:"postgres"`
}

// StoreSQLiteServerConfig holds SQLite-specific configuration
type StoreSQLiteServerConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StorePostgresServerConfig holds PostgreSQL-specific configuration
type StorePostgresServerConfig struct {
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}
