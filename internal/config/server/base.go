package server

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type BaseServerConfig struct {
	ShutdownTimeout string `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"required"`

	Log          LogServerConfig          `mapstructure:"log"           yaml:"log"`
	Store        StoreServerConfig        `mapstructure:"store"         yaml:"store"`
	CustomFields CustomFieldsServerConfig `mapstructure:"custom_fields" yaml:"custom_fields"`
	Checkpoint   CheckpointServerConfig   `mapstructure:"checkpoint"    yaml:"checkpoint"`
	Metrics      MetricsServerConfig      `mapstructure:"metrics"       yaml:"metrics"`
	Query        QueryServerConfig        `mapstructure:"query"         yaml:"query"`
}

// CustomFieldsServerConfig controls how often generated filters are checked against metadata
type CustomFieldsServerConfig struct {
	// CheckInterval is the minimum time between two fingerprint checks, "0s" checks on every access
	CheckInterval string `mapstructure:"check_interval" yaml:"check_interval"`
}

// CheckpointServerConfig selects the channels that trigger a cache checkpoint
type CheckpointServerConfig struct {
	Signal bool                        `mapstructure:"signal" yaml:"signal"`
	Redis  CheckpointRedisServerConfig `mapstructure:"redis"  yaml:"redis"`
}

type CheckpointRedisServerConfig struct {
	Addr     string `mapstructure:"addr"     yaml:"addr"     validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db"       yaml:"db"       validate:"gte=0"`
	Channel  string `mapstructure:"channel"  yaml:"channel"  validate:"required_with=Addr"`
}

type MetricsServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	Path string `mapstructure:"path" yaml:"path" validate:"omitempty,startswith=/"`
}

// QueryServerConfig holds defaults used by the query command
type QueryServerConfig struct {
	// User is the login used as current user when enumerating available values
	User string `mapstructure:"user" yaml:"user"`
}

func LoadServerConfig() (*BaseServerConfig, error) {
	cfg := &BaseServerConfig{}

	setDefaults()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for missing or inconsistent values
func (cfg *BaseServerConfig) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	for key, value := range map[string]string{
		"shutdown_timeout":             cfg.ShutdownTimeout,
		"custom_fields.check_interval": cfg.CustomFields.CheckInterval,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid configuration: %s: %w", key, err)
		}
	}

	return nil
}

// Interval returns the parsed fingerprint check interval, invalid or negative values disable caching
func (cfg *CustomFieldsServerConfig) Interval() time.Duration {
	interval, err := time.ParseDuration(cfg.CheckInterval)
	if err != nil || interval < 0 {
		return 0
	}
	return interval
}
