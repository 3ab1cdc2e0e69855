package client

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mwantia/costquery/pkg/costquery"
	"github.com/spf13/cobra"
)

func NewFiltersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available filters",
		Long:  "List every built-in and custom field filter together with the operators it accepts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(engine *costquery.Engine) error {
				filters, err := engine.Registry().All(cmd.Context())
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Name", "Label", "Domain", "Operators", "Source"})
				for _, ft := range filters {
					source := "builtin"
					if ft.Generated {
						source = fmt.Sprintf("custom field %d", ft.CustomFieldID)
					} else if !ft.Builtin() {
						source = "registered"
					}
					t.AppendRow(table.Row{ft.Name, ft.Label, ft.Domain, strings.Join(ft.Operators, " "), source})
				}
				t.Render()

				return nil
			})
		},
	}

	cmd.AddCommand(newFiltersValuesCommand())

	return cmd
}

func newFiltersValuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "values <filter>",
		Short: "List the selectable values of a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(engine *costquery.Engine) error {
				choices, err := engine.AvailableValues(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				t := table.NewWriter()
				t.SetOutputMirror(cmd.OutOrStdout())
				t.SetStyle(table.StyleLight)
				t.AppendHeader(table.Row{"Value", "Label"})
				for _, c := range choices {
					t.AppendRow(table.Row{c.Value, c.Label})
				}
				t.Render()

				return nil
			})
		},
	}
}
