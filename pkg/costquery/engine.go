package costquery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/mwantia/costquery/pkg/log"
)

// EngineOption configures an Engine
type EngineOption func(*Engine)

func WithLogger(logger log.LoggerService) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock sets the clock relative date operators are evaluated against
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithUserContext(users UserContext) EngineOption {
	return func(e *Engine) {
		e.users = users
	}
}

// Engine creates queries over the entries of a source
type Engine struct {
	source   Source
	registry *Registry
	users    UserContext
	logger   log.LoggerService
	now      func() time.Time
}

func NewEngine(source Source, registry *Registry, opts ...EngineOption) *Engine {
	e := &Engine{
		source:   source,
		registry: registry,
		users:    FixedUser{},
		logger:   log.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Registry() *Registry {
	return e.registry
}

// NewQuery starts an empty query. Without filters it returns every entry.
func (e *Engine) NewQuery() *Query {
	id := uuid.New()
	return &Query{
		ID:     id,
		engine: e,
		logger: e.logger.Named("query-" + id.String()[:8]),
	}
}

// today returns the calendar date of the engine clock
func (e *Engine) today() time.Time {
	return toDate(e.now())
}

// AvailableValues lists the selectable values of a filter. User valued
// filters list nothing unless a non-anonymous user is logged in.
func (e *Engine) AvailableValues(ctx context.Context, name string) ([]models.Choice, error) {
	ft, err := e.registry.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	if ft.userScoped {
		user, err := e.users.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		if user == nil || user.Anonymous {
			return nil, nil
		}
	}

	if ft.possibleValues != nil {
		choices := make([]models.Choice, 0, len(ft.possibleValues))
		for _, v := range ft.possibleValues {
			choices = append(choices, models.Choice{Label: v, Value: v})
		}
		return choices, nil
	}

	if ft.choices == "" {
		return nil, nil
	}

	choices, err := e.source.Choices(ctx, ft.choices)
	if err != nil {
		return nil, fmt.Errorf("failed to list values of '%s': %w", ft.Name, err)
	}
	return choices, nil
}
