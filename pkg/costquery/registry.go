package costquery

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Registry is the catalog of filter types a query can resolve: the static
// filters plus whatever the generator currently derives from custom fields.
type Registry struct {
	generator *Generator

	mutex     sync.RWMutex
	static    []*FilterType
	byName    map[string]*FilterType
	byCompact map[string]*FilterType
}

// NewRegistry creates a registry holding the built-in filters. generator may
// be nil, in which case no custom field filters are available.
func NewRegistry(generator *Generator) *Registry {
	r := &Registry{
		generator: generator,
		byName:    make(map[string]*FilterType),
		byCompact: make(map[string]*FilterType),
	}

	for _, ft := range builtinFilters() {
		r.add(ft)
	}
	return r
}

func (r *Registry) add(ft *FilterType) {
	r.static = append(r.static, ft)
	r.byName[ft.Name] = ft
	if key := compact(ft.Name); r.byCompact[key] == nil {
		r.byCompact[key] = ft
	}
}

// Generator returns the custom field generator, nil when none was configured
func (r *Registry) Generator() *Generator {
	return r.generator
}

// Register adds a static filter. The custom field prefix is reserved.
func (r *Registry) Register(ft *FilterType) error {
	if ft == nil || ft.Name == "" || ft.value == nil {
		return fmt.Errorf("filter type must have a name and a value accessor")
	}
	if strings.HasPrefix(ft.Name, CustomFieldPrefix) {
		return fmt.Errorf("filter '%s': prefix '%s' is reserved for custom fields", ft.Name, CustomFieldPrefix)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.byName[ft.Name]; ok {
		return &FilterError{Filter: ft.Name, Err: ErrDuplicateFilter}
	}

	r.add(ft)
	return nil
}

// Unregister removes a filter added with Register. Built-in filters stay.
func (r *Registry) Unregister(name string) error {
	canonical := Canonicalize(name)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	ft, ok := r.byName[canonical]
	if !ok {
		return &FilterError{Filter: name, Err: ErrUnknownFilter}
	}
	if ft.builtin {
		return &FilterError{Filter: name, Err: ErrBuiltinFilter}
	}

	delete(r.byName, canonical)
	key := compact(canonical)
	if r.byCompact[key] == ft {
		delete(r.byCompact, key)
	}

	for i, s := range r.static {
		if s == ft {
			r.static = append(r.static[:i:i], r.static[i+1:]...)
			break
		}
	}

	// Another filter may share the compact key
	for _, s := range r.static {
		if k := compact(s.Name); r.byCompact[k] == nil {
			r.byCompact[k] = s
		}
	}

	return nil
}

// Static returns the static filters in registration order
func (r *Registry) Static() []*FilterType {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return append([]*FilterType(nil), r.static...)
}

// All returns the static filters followed by the current generated filters.
// The generated part is recomputed on every call.
func (r *Registry) All(ctx context.Context) ([]*FilterType, error) {
	all := r.Static()
	if r.generator == nil {
		return all, nil
	}

	generated, err := r.generator.All(ctx)
	if err != nil {
		return nil, err
	}
	return append(all, generated...), nil
}

// Resolve finds a filter by name. "ProjectId", "project_id" and "Project ID"
// resolve to the same filter.
func (r *Registry) Resolve(ctx context.Context, name string) (*FilterType, error) {
	canonical := Canonicalize(name)

	r.mutex.RLock()
	ft, ok := r.byName[canonical]
	if !ok {
		ft, ok = r.byCompact[compact(canonical)]
	}
	r.mutex.RUnlock()

	if ok {
		return ft, nil
	}

	if r.generator != nil && canonical != "" {
		generated, found, err := r.generator.Lookup(ctx, canonical)
		if err != nil {
			return nil, err
		}
		if found {
			return generated, nil
		}
	}

	return nil, &FilterError{Filter: name, Err: ErrUnknownFilter}
}
