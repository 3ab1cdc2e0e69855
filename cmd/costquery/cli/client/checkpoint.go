package client

import (
	"fmt"

	"github.com/mwantia/costquery/internal/checkpoint"
	"github.com/spf13/cobra"

	config "github.com/mwantia/costquery/internal/config/server"
)

func NewCheckpointCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Ask running agents to recheck their custom field filters",
		Long: `Publish a cache checkpoint on the configured redis channel.

Every agent subscribed to the channel rechecks the custom field fingerprint
and regenerates its filters if the fields changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}
			if cfg.Checkpoint.Redis.Addr == "" {
				return fmt.Errorf("checkpoint.redis.addr is not configured")
			}

			rc, err := checkpoint.NewRedisClient(cmd.Context(), cfg.Checkpoint.Redis)
			if err != nil {
				return err
			}
			defer rc.Close()

			receivers, err := checkpoint.Publish(cmd.Context(), rc, cfg.Checkpoint.Redis.Channel, reason)
			if err != nil {
				return err
			}

			fmt.Printf("Checkpoint delivered to %d agent(s)\n", receivers)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "reason logged by the receiving agents")

	return cmd
}
