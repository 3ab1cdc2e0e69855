package server

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mwantia/costquery/internal/agent"
	"github.com/mwantia/costquery/pkg/db/migrations"
	"github.com/spf13/cobra"

	config "github.com/mwantia/costquery/internal/config/server"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrations.Migrator) error {
				if err := m.Migrate(cmd.Context()); err != nil {
					return err
				}

				fmt.Println("Store is up to date")
				return nil
			})
		},
	}

	cmd.AddCommand(newMigrateStatusCommand())
	cmd.AddCommand(newMigrateRollbackCommand())

	return cmd
}

func newMigrateStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrations.Migrator) error {
				statuses, err := m.Status(cmd.Context())
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Version", "Description", "Applied"})
				for _, s := range statuses {
					t.AppendRow(table.Row{s.Version, s.Description, s.Applied})
				}
				t.Render()

				return nil
			})
		},
	}
}

func newMigrateRollbackCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Roll back the last applied migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(m *migrations.Migrator) error {
				if err := m.Rollback(cmd.Context()); err != nil {
					return err
				}

				fmt.Println("Rolled back the last migration")
				return nil
			})
		},
	}
}

func withMigrator(cmd *cobra.Command, fn func(*migrations.Migrator) error) error {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	st, err := agent.OpenStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(migrations.NewMigrator(st.DB()))
}
