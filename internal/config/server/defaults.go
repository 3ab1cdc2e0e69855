package server

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

func GetServerDefault() BaseServerConfig {
	return BaseServerConfig{
		ShutdownTimeout: "10s",

		Log: LogServerConfig{
			Level:      "INFO",
			TimeFormat: "2006-01-02 15:04:05",
			File:       "",
			NoColor:    false,
			JSON:       false,
			NoTerminal: false,
			Rotation: LogServerRotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
				Compress:   false,
			},
		},
		Store: StoreServerConfig{
			Type:     "sqlite",
			LogLevel: "silent",
			SQLite: StoreSQLiteServerConfig{
				Path: filepath.Join(xdg.DataHome, "costquery", "costquery.db"),
			},
		},
		CustomFields: CustomFieldsServerConfig{
			CheckInterval: "0s",
		},
		Checkpoint: CheckpointServerConfig{
			Signal: true,
			Redis: CheckpointRedisServerConfig{
				Channel: "costquery:checkpoint",
			},
		},
		Metrics: MetricsServerConfig{
			Addr: "",
			Path: "/metrics",
		},
	}
}

func setDefaults() {
	defaults := GetServerDefault()

	viper.SetDefault("shutdown_timeout", defaults.ShutdownTimeout)

	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.time_format", defaults.Log.TimeFormat)
	viper.SetDefault("log.file", defaults.Log.File)
	viper.SetDefault("log.no_color", defaults.Log.NoColor)
	viper.SetDefault("log.json", defaults.Log.JSON)
	viper.SetDefault("log.no_terminal", defaults.Log.NoTerminal)
	viper.SetDefault("log.rotation.max_size", defaults.Log.Rotation.MaxSize)
	viper.SetDefault("log.rotation.max_backups", defaults.Log.Rotation.MaxBackups)
	viper.SetDefault("log.rotation.max_age", defaults.Log.Rotation.MaxAge)
	viper.SetDefault("log.rotation.compress", defaults.Log.Rotation.Compress)

	viper.SetDefault("store.type", defaults.Store.Type)
	viper.SetDefault("store.log_level", defaults.Store.LogLevel)
	viper.SetDefault("store.sqlite.path", defaults.Store.SQLite.Path)
	viper.SetDefault("store.postgres.dsn", defaults.Store.Postgres.DSN)

	viper.SetDefault("custom_fields.check_interval", defaults.CustomFields.CheckInterval)

	viper.SetDefault("checkpoint.signal", defaults.Checkpoint.Signal)
	viper.SetDefault("checkpoint.redis.addr", defaults.Checkpoint.Redis.Addr)
	viper.SetDefault("checkpoint.redis.password", defaults.Checkpoint.Redis.Password)
	viper.SetDefault("checkpoint.redis.db", defaults.Checkpoint.Redis.DB)
	viper.SetDefault("checkpoint.redis.channel", defaults.Checkpoint.Redis.Channel)

	viper.SetDefault("metrics.addr", defaults.Metrics.Addr)
	viper.SetDefault("metrics.path", defaults.Metrics.Path)

	viper.SetDefault("query.user", defaults.Query.User)
}
