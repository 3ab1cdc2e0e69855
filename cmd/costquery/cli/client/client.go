package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/mwantia/costquery/internal/agent"
	"github.com/mwantia/costquery/pkg/costquery"
	"github.com/mwantia/costquery/pkg/db/migrations"
	"github.com/mwantia/costquery/pkg/log"

	config "github.com/mwantia/costquery/internal/config/server"
)

// withEngine opens the configured store, builds an engine on top of it and
// runs fn. The store must be migrated; a store close error is returned when
// fn succeeded.
func withEngine(ctx context.Context, fn func(*costquery.Engine) error) (err error) {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}
	return runEngine(ctx, cfg, fn)
}

func runEngine(ctx context.Context, cfg *config.BaseServerConfig, fn func(*costquery.Engine) error) (err error) {
	st, err := agent.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close store: %w", cerr)
		}
	}()

	if err := ensureMigrated(ctx, migrations.NewMigrator(st.DB())); err != nil {
		return err
	}

	engine, _ := agent.NewEngine(cfg, st, log.NewLoggerService("client", cfg.Log))
	return fn(engine)
}

func ensureMigrated(ctx context.Context, m *migrations.Migrator) error {
	statuses, err := m.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	pending := 0
	for _, s := range statuses {
		if !s.Applied {
			pending++
		}
	}
	if pending > 0 {
		return fmt.Errorf("store has %d pending migration(s), run 'costquery migrate' first", pending)
	}
	return nil
}

// filterArg is a parsed --filter flag of the form name[:operator[:value,...]]
type filterArg struct {
	Name     string
	Operator string
	Values   []string
}

func parseFilterArg(arg string) (filterArg, error) {
	parts := strings.SplitN(arg, ":", 3)
	fa := filterArg{Name: strings.TrimSpace(parts[0])}
	if fa.Name == "" {
		return filterArg{}, fmt.Errorf("invalid filter '%s': missing filter name", arg)
	}

	if len(parts) > 1 {
		fa.Operator = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && parts[2] != "" {
		for _, v := range strings.Split(parts[2], ",") {
			fa.Values = append(fa.Values, strings.TrimSpace(v))
		}
	}

	return fa, nil
}

func (fa filterArg) operands() []any {
	values := make([]any, len(fa.Values))
	for i, v := range fa.Values {
		values[i] = v
	}
	return values
}
