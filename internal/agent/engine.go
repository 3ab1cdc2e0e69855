package agent

import (
	"context"

	config "github.com/mwantia/costquery/internal/config/server"
	"github.com/mwantia/costquery/pkg/costquery"
	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/mwantia/costquery/pkg/db/store"
	"github.com/mwantia/costquery/pkg/log"
)

// QueryEngine is the query surface the agent exposes to other services
type QueryEngine interface {
	NewQuery() *costquery.Query
	AvailableValues(ctx context.Context, filter string) ([]models.Choice, error)
	Registry() *costquery.Registry
}

// NewEngine wires generator, registry and engine on top of a store. Custom
// field writes made through st invalidate the generated filters.
func NewEngine(cfg *config.BaseServerConfig, st *store.GormStore, logger log.LoggerService) (*costquery.Engine, *costquery.Generator) {
	generator := costquery.NewGenerator(st, logger.Named("generator"),
		costquery.WithCheckInterval(cfg.CustomFields.Interval()))
	st.SubscribeCustomFields(generator.Notify)

	registry := costquery.NewRegistry(generator)

	engine := costquery.NewEngine(st, registry,
		costquery.WithLogger(logger.Named("engine")),
		costquery.WithUserContext(costquery.UserByLogin{
			Login:  cfg.Query.User,
			Lookup: st.GetUserByLogin,
		}))

	return engine, generator
}
