package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := GetServerDefault()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Zero(t, cfg.CustomFields.Interval())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BaseServerConfig)
	}{
		{"unknown store type", func(c *BaseServerConfig) { c.Store.Type = "mysql" }},
		{"bad shutdown timeout", func(c *BaseServerConfig) { c.ShutdownTimeout = "soon" }},
		{"bad check interval", func(c *BaseServerConfig) { c.CustomFields.CheckInterval = "often" }},
		{"redis without channel", func(c *BaseServerConfig) {
			c.Checkpoint.Redis.Addr = "localhost:6379"
			c.Checkpoint.Redis.Channel = ""
		}},
		{"relative metrics path", func(c *BaseServerConfig) { c.Metrics.Path = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetServerDefault()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestInterval(t *testing.T) {
	cfg := CustomFieldsServerConfig{CheckInterval: "30s"}
	assert.Equal(t, "30s", cfg.Interval().String())

	cfg.CheckInterval = "-1s"
	assert.Zero(t, cfg.Interval())
}
