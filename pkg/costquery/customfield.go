package costquery

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/mwantia/costquery/pkg/log"
)

type customFieldFormat struct {
	domain    Domain
	operators OperatorSet
	valueType valueType
}

// customFieldFormats maps a field format to the operators its filter exposes
var customFieldFormats = map[string]customFieldFormat{
	"string":  {DomainString, Union(StringOperators, NullOperators), valueText},
	"text":    {DomainString, Union(StringOperators, NullOperators), valueText},
	"int":     {DomainInteger, Union(IntegerOperators, NullOperators), valueNumber},
	"float":   {DomainInteger, Union(IntegerOperators, NullOperators), valueNumber},
	"date":    {DomainTemporal, TimeOperators, valueDate},
	"bool":    {DomainNullableIdentity, Union(DefaultOperators, NullOperators), valueText},
	"list":    {DomainNullableIdentity, Union(DefaultOperators, NullOperators), valueText},
	"user":    {DomainNullableIdentity, Union(DefaultOperators, NullOperators), valueText},
	"version": {DomainNullableIdentity, Union(DefaultOperators, NullOperators), valueText},
}

var boolValues = []string{"1", "0"}

// customFieldFilter builds the filter for one eligible custom field
func customFieldFilter(field models.CustomField) (*FilterType, error) {
	format, ok := customFieldFormats[field.FieldFormat]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field format '%s'", ErrMalformedCustomField, field.FieldFormat)
	}
	canonical := Canonicalize(field.Name)
	if canonical == "" {
		return nil, fmt.Errorf("%w: name '%s' has no letters or digits", ErrMalformedCustomField, field.Name)
	}

	ref := &customFieldRef{id: field.ID, customizedType: field.CustomizedType()}
	vt := format.valueType

	ft := &FilterType{
		Name:          CustomFieldPrefix + canonical,
		Label:         field.Name,
		Domain:        format.domain,
		Operators:     format.operators,
		Generated:     true,
		CustomFieldID: field.ID,
		FieldFormat:   field.FieldFormat,
		valueType:     vt,
		customField:   ref,
		value: func(r *record) any {
			id, ok := r.target(ref.customizedType)
			if !ok {
				return absent
			}
			raw, ok := r.values[customValueKey{ref.id, ref.customizedType, id}]
			if !ok {
				return nil
			}
			return customValue(vt, raw)
		},
	}

	switch field.FieldFormat {
	case "list":
		ft.possibleValues = slices.Clone(field.PossibleValues)
	case "bool":
		ft.possibleValues = boolValues
	}

	return ft, nil
}

// generation is one immutable build of the generated filters
type generation struct {
	fingerprint models.Fingerprint
	filters     []*FilterType
	byName      map[string]*FilterType
	byCompact   map[string]*FilterType
}

func (g *generation) lookup(canonical string) (*FilterType, bool) {
	if ft, ok := g.byName[canonical]; ok {
		return ft, true
	}
	ft, ok := g.byCompact[compact(canonical)]
	return ft, ok
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithCheckInterval limits fingerprint checks to one per interval. Zero checks on every read.
func WithCheckInterval(interval time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.interval = interval
	}
}

// WithGeneratorClock replaces the clock the check interval is measured with
func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator derives filter types from custom field definitions. The current
// generation is replaced as a whole whenever the custom field fingerprint changes.
type Generator struct {
	source   CustomFieldSource
	logger   log.LoggerService
	interval time.Duration
	now      func() time.Time

	current   atomic.Pointer[generation]
	checkedAt atomic.Int64
	stale     atomic.Bool
	mutex     sync.Mutex
}

func NewGenerator(source CustomFieldSource, logger log.LoggerService, opts ...GeneratorOption) *Generator {
	if logger == nil {
		logger = log.Discard()
	}

	g := &Generator{
		source: source,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// All returns the filters of the current generation sorted by name
func (g *Generator) All(ctx context.Context) ([]*FilterType, error) {
	gen, err := g.generation(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(gen.filters), nil
}

// Lookup finds a generated filter by name. Names are canonicalized first.
func (g *Generator) Lookup(ctx context.Context, name string) (*FilterType, bool, error) {
	gen, err := g.generation(ctx)
	if err != nil {
		return nil, false, err
	}
	ft, ok := gen.lookup(Canonicalize(name))
	return ft, ok, nil
}

// Invalidate checks the fingerprint immediately, ignoring the check interval
func (g *Generator) Invalidate(ctx context.Context) error {
	g.checkedAt.Store(0)
	_, err := g.generation(ctx)
	return err
}

// Notify marks the generation stale after a custom field write. The next read rebuilds.
func (g *Generator) Notify(event models.CustomFieldEvent) {
	g.logger.Debug("Custom field %d '%s' %s", event.Field.ID, event.Field.Name, event.Type)
	g.stale.Store(true)
}

func (g *Generator) due() bool {
	if g.interval <= 0 {
		return true
	}
	last := g.checkedAt.Load()
	return last == 0 || g.now().Sub(time.Unix(0, last)) >= g.interval
}

func (g *Generator) generation(ctx context.Context) (*generation, error) {
	current := g.current.Load()
	if current != nil && !g.stale.Load() && !g.due() {
		return current, nil
	}

	fp, err := g.source.CustomFieldFingerprint(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check custom field fingerprint: %w", err)
	}
	g.checkedAt.Store(g.now().UnixNano())

	if current != nil && !g.stale.Load() && current.fingerprint == fp {
		return current, nil
	}
	return g.rebuild(ctx, fp)
}

func (g *Generator) rebuild(ctx context.Context, fp models.Fingerprint) (*generation, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	// Another reader may have rebuilt while we waited
	forced := g.stale.Load()
	if current := g.current.Load(); current != nil && !forced && current.fingerprint == fp {
		return current, nil
	}

	g.stale.Store(false)
	fields, err := g.source.AllCustomFields(ctx)
	if err != nil {
		if forced {
			g.stale.Store(true)
		}
		return nil, fmt.Errorf("failed to load custom fields: %w", err)
	}

	gen := g.build(fields)
	g.current.Store(gen)

	generatorRebuilds.Inc()
	generatedFilters.Set(float64(len(gen.filters)))
	g.logger.Debug("Generated %d filters from %d custom fields", len(gen.filters), len(fields))

	return gen, nil
}

func (g *Generator) build(fields []models.CustomField) *generation {
	sorted := slices.SortedFunc(slices.Values(fields), func(a, b models.CustomField) int {
		return cmp.Compare(a.ID, b.ID)
	})

	gen := &generation{
		fingerprint: models.FingerprintOf(fields),
		byName:      make(map[string]*FilterType, len(sorted)),
		byCompact:   make(map[string]*FilterType, len(sorted)),
	}

	for _, field := range sorted {
		if field.CustomizedType() == "" {
			continue
		}

		ft, err := customFieldFilter(field)
		if err != nil {
			malformedCustomFields.Inc()
			g.logger.Warn("Skipping custom field %d '%s': %v", field.ID, field.Name, err)
			continue
		}

		if existing, ok := gen.byName[ft.Name]; ok {
			g.logger.Warn("Custom field %d '%s' generates '%s' like field %d, keeping field %d",
				field.ID, field.Name, ft.Name, existing.CustomFieldID, existing.CustomFieldID)
			continue
		}

		gen.byName[ft.Name] = ft
		if key := compact(ft.Name); gen.byCompact[key] == nil {
			gen.byCompact[key] = ft
		}
		gen.filters = append(gen.filters, ft)
	}

	slices.SortFunc(gen.filters, func(a, b *FilterType) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return gen
}
