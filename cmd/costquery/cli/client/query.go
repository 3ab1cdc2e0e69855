package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mwantia/costquery/pkg/costquery"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func NewQueryCommand() *cobra.Command {
	var (
		filters   []string
		format    string
		countOnly bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query time and cost entries",
		Long: `Query time and cost entries.

Every --filter narrows the result and takes the form name[:operator[:value,...]],
for example --filter project_id:=:1 or --filter spent_on:w. An empty operator
means "=".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(engine *costquery.Engine) error {
				return runQuery(cmd.Context(), cmd.OutOrStdout(), engine, filters, format, countOnly)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "filter as name[:operator[:value,...]], repeatable")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format (table, yaml)")
	cmd.Flags().BoolVar(&countOnly, "count", false, "print the number of matching entries only")

	return cmd
}

func runQuery(ctx context.Context, w io.Writer, engine *costquery.Engine, filters []string, format string, countOnly bool) error {
	query := engine.NewQuery()
	for _, arg := range filters {
		fa, err := parseFilterArg(arg)
		if err != nil {
			return err
		}
		if err := query.Filter(ctx, fa.Name, fa.Operator, fa.operands()...); err != nil {
			return err
		}
	}

	if countOnly {
		count, err := query.Count(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintln(w, count)
		return nil
	}

	rows, err := query.Result(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "yaml":
		return yaml.NewEncoder(w).Encode(rows)
	case "table":
		renderRows(w, query.Filters(), rows)
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'", format)
}

func renderRows(w io.Writer, filters []costquery.AppliedFilter, rows []costquery.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Type", "ID", "Project", "User", "Cost Type", "Activity", "Issue", "Spent On", "Overridden"}
	seen := map[string]bool{}
	var columns []string
	for _, f := range filters {
		if seen[f.Filter.Name] {
			continue
		}
		seen[f.Filter.Name] = true
		columns = append(columns, f.Filter.Name)
		header = append(header, f.Filter.Label)
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := table.Row{
			r.Type,
			r.ID,
			r.ProjectID,
			r.UserID,
			r.CostType,
			r.ActivityID,
			cell(r.IssueID),
			r.SpentOn.Format(time.DateOnly),
			cell(r.OverriddenCosts),
		}
		for _, column := range columns {
			v, _ := r.Get(column)
			row = append(row, cell(v))
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "Total", len(rows)})
	t.Render()
}

func cell(v any) any {
	switch v := v.(type) {
	case nil:
		return ""
	case *uint:
		if v == nil {
			return ""
		}
		return *v
	case *float64:
		if v == nil {
			return ""
		}
		return *v
	case time.Time:
		return v.Format(time.DateOnly)
	}
	return v
}
