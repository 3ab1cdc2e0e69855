package server

import (
	"context"
	"fmt"

	"github.com/mwantia/costquery/internal/agent"
	"github.com/spf13/cobra"

	config "github.com/mwantia/costquery/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the cost query agent",
		Long: `Start the cost query agent.

The agent migrates the store, keeps the custom field filters current and
listens for cache checkpoints on SIGHUP and the configured redis channel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			return agent.Serve(context.Background())
		},
	}

	return cmd
}
