package costquery

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterNames(filters []*FilterType) []string {
	names := make([]string, 0, len(filters))
	for _, ft := range filters {
		names = append(names, ft.Name)
	}
	return names
}

func (f *fixture) createIssueField(t *testing.T, name, format string) *models.CustomField {
	t.Helper()
	return f.createField(t, models.CustomField{
		Type:         models.IssueCustomFieldType,
		Name:         name,
		FieldFormat:  format,
		Searchable:   true,
		IsForAll:     true,
		DefaultValue: "Default string",
	})
}

func (f *fixture) updateField(t *testing.T, name string, update func(*models.CustomField)) {
	t.Helper()

	field, err := f.store.GetCustomFieldByName(f.ctx, name)
	require.NoError(t, err)
	update(field)
	require.NoError(t, f.store.UpdateCustomField(f.ctx, field))
}

func (f *fixture) deleteField(t *testing.T, name string) {
	t.Helper()

	field, err := f.store.GetCustomFieldByName(f.ctx, name)
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteCustomField(f.ctx, field.ID))
}

func TestGeneratedFilters(t *testing.T) {
	f := newFixture(t)

	generated, err := f.generator.All(f.ctx)
	require.NoError(t, err)

	want := []string{
		"custom_field_billable",
		"custom_field_database",
		"custom_field_estimate",
		"custom_field_searchable_field",
	}
	if diff := cmp.Diff(want, filterNames(generated)); diff != "" {
		t.Errorf("generated filters mismatch (-want +got):\n%s", diff)
	}

	all, err := f.registry.All(f.ctx)
	require.NoError(t, err)
	assert.Contains(t, filterNames(all), "custom_field_searchable_field")
	assert.Contains(t, filterNames(all), FilterProjectID)
	assert.Len(t, all, len(f.registry.Static())+len(want))

	for _, name := range []string{"custom_field_searchable_field", "CustomFieldSearchableField", "custom field Searchable-Field"} {
		ft, err := f.registry.Resolve(f.ctx, name)
		require.NoError(t, err, name)
		assert.True(t, ft.Generated)
		assert.Equal(t, f.fields["Searchable Field"].ID, ft.CustomFieldID)
	}
}

func TestCustomFieldLifecycle(t *testing.T) {
	f := newFixture(t)

	t.Run("CreatedAfterStart", func(t *testing.T) {
		_, err := f.generator.All(f.ctx)
		require.NoError(t, err)

		f.createIssueField(t, "AFreshCustomField", "string")

		ft, err := f.registry.Resolve(f.ctx, "custom_field_afreshcustomfield")
		require.NoError(t, err)
		assert.Equal(t, "AFreshCustomField", ft.Label)
		assert.Equal(t, Union(StringOperators, NullOperators), ft.Operators)
	})

	t.Run("RemovedAfterDelete", func(t *testing.T) {
		f.deleteField(t, "AFreshCustomField")

		all, err := f.registry.All(f.ctx)
		require.NoError(t, err)
		assert.NotContains(t, filterNames(all), "custom_field_afreshcustomfield")

		_, err = f.registry.Resolve(f.ctx, "custom_field_afreshcustomfield")
		assert.ErrorIs(t, err, ErrUnknownFilter)
	})

	t.Run("UpdatedFormat", func(t *testing.T) {
		ft, err := f.registry.Resolve(f.ctx, "custom_field_database")
		require.NoError(t, err)
		for _, op := range NullOperators {
			assert.True(t, ft.Operators.Contains(op), op)
		}

		f.updateField(t, "Database", func(field *models.CustomField) { field.FieldFormat = "string" })
		ft, err = f.registry.Resolve(f.ctx, "custom_field_database")
		require.NoError(t, err)
		for _, op := range StringOperators {
			assert.True(t, ft.Operators.Contains(op), op)
		}

		// Fingerprints compare whole seconds
		f.clock.Advance(2 * time.Second)
		f.updateField(t, "Database", func(field *models.CustomField) { field.FieldFormat = "int" })
		ft, err = f.registry.Resolve(f.ctx, "custom_field_database")
		require.NoError(t, err)
		for _, op := range IntegerOperators {
			assert.True(t, ft.Operators.Contains(op), op)
		}
	})
}

func TestCustomFieldUpdateWithinSameSecond(t *testing.T) {
	f := newFixture(t)

	_, err := f.generator.All(f.ctx)
	require.NoError(t, err)

	f.updateField(t, "Estimate", func(field *models.CustomField) { field.FieldFormat = "date" })
	first, err := f.registry.Resolve(f.ctx, "custom_field_estimate")
	require.NoError(t, err)

	// A second update in the same second keeps the fingerprint
	f.updateField(t, "Estimate", func(field *models.CustomField) { field.FieldFormat = "string" })
	stale, err := f.registry.Resolve(f.ctx, "custom_field_estimate")
	require.NoError(t, err)
	assert.Same(t, first, stale)
	assert.Equal(t, "date", stale.FieldFormat)

	// Store events mark the generation stale regardless of the fingerprint
	f.generator.Notify(models.CustomFieldEvent{Type: models.CustomFieldUpdated, Field: *f.fields["Estimate"]})
	fresh, err := f.registry.Resolve(f.ctx, "custom_field_estimate")
	require.NoError(t, err)
	assert.Equal(t, "string", fresh.FieldFormat)
}

func TestCustomFieldStoreSubscription(t *testing.T) {
	f := newFixture(t)
	f.store.SubscribeCustomFields(f.generator.Notify)

	_, err := f.generator.All(f.ctx)
	require.NoError(t, err)

	f.updateField(t, "Estimate", func(field *models.CustomField) { field.FieldFormat = "date" })
	_, err = f.generator.All(f.ctx)
	require.NoError(t, err)

	f.updateField(t, "Estimate", func(field *models.CustomField) { field.FieldFormat = "text" })
	ft, err := f.registry.Resolve(f.ctx, "custom_field_estimate")
	require.NoError(t, err)
	assert.Equal(t, "text", ft.FieldFormat)
}

func TestCustomFieldFilters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		filter   string
		operator string
		values   []any
		want     int
	}{
		{"SearchableValue", "custom_field_searchable_field", "=", []any{"125"}, 8},
		{"SearchableMissingValue", "custom_field_searchable_field", "=", []any{"finnlabs"}, 0},
		{"SearchableContains", "custom_field_searchable_field", "~", []any{"2"}, 8},
		{"ListValue", "custom_field_database", "=", []any{"MySQL"}, 3},
		{"ListAnyValue", "custom_field_database", "y", nil, 6},
		{"ListNoValue", "custom_field_database", "n", nil, 2},
		{"FloatAtLeast", "custom_field_estimate", ">=", []any{5}, 3},
		{"FloatBetween", "custom_field_estimate", "<>n", []any{"1", "12.5"}, 5},
		{"FloatEquals", "custom_field_estimate", "=n", []any{3}, 2},
		{"TimeEntryBool", "custom_field_billable", "=", []any{"1"}, 2},
		{"TimeEntryBoolNotSet", "custom_field_billable", "n", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := f.engine.NewQuery()
			require.NoError(t, q.Filter(f.ctx, tt.filter, tt.operator, tt.values...))
			assert.Len(t, f.result(t, q), tt.want)
		})
	}

	t.Run("ChainedWithStatic", func(t *testing.T) {
		q := f.engine.NewQuery()
		require.NoError(t, q.Filter(f.ctx, "custom_field_searchable_field", "=", "125"))
		require.NoError(t, q.Filter(f.ctx, FilterProjectID, "=", f.projects[1].ID))

		rows := f.result(t, q)
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, "125", row.Attributes["custom_field_searchable_field"])
		}
	})

	t.Run("UnsupportedOperator", func(t *testing.T) {
		q := f.engine.NewQuery()
		err := q.Filter(f.ctx, "custom_field_database", "~", "SQL")
		assert.ErrorIs(t, err, ErrUnsupportedOperator)
	})
}

func TestCustomFieldAvailableValues(t *testing.T) {
	f := newFixture(t)

	values, err := f.engine.AvailableValues(f.ctx, "custom_field_database")
	require.NoError(t, err)
	want := []models.Choice{
		{Label: "PostgreSQL", Value: "PostgreSQL"},
		{Label: "MySQL", Value: "MySQL"},
		{Label: "Oracle", Value: "Oracle"},
	}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("list values mismatch (-want +got):\n%s", diff)
	}

	values, err = f.engine.AvailableValues(f.ctx, "custom_field_billable")
	require.NoError(t, err)
	assert.Equal(t, []models.Choice{{Label: "1", Value: "1"}, {Label: "0", Value: "0"}}, values)

	values, err = f.engine.AvailableValues(f.ctx, "custom_field_searchable_field")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestMalformedCustomFieldIsSkipped(t *testing.T) {
	f := newFixture(t)

	f.createIssueField(t, "Legacy Markup", "richtext")
	f.createIssueField(t, "!!!", "string")

	generated, err := f.generator.All(f.ctx)
	require.NoError(t, err)

	names := filterNames(generated)
	assert.Len(t, names, 4)
	assert.False(t, slices.ContainsFunc(names, func(n string) bool { return n == "custom_field_legacy_markup" }))

	q := f.engine.NewQuery()
	require.NoError(t, q.Filter(f.ctx, "custom_field_searchable_field", "=", "125"))
	assert.Len(t, f.result(t, q), 8)

	_, err = f.registry.Resolve(f.ctx, "custom_field_legacy_markup")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestNonASCIICustomFieldNames(t *testing.T) {
	f := newFixture(t)

	f.createIssueField(t, "Größe", "string")
	f.createIssueField(t, "Grüße", "string")
	cost := f.createIssueField(t, "Стоимость", "string")
	f.setValue(t, "Стоимость", models.CustomizedIssue, f.issues[0].ID, "высокая")

	generated, err := f.generator.All(f.ctx)
	require.NoError(t, err)

	names := filterNames(generated)
	assert.Len(t, names, 7)
	assert.Contains(t, names, "custom_field_größe")
	assert.Contains(t, names, "custom_field_grüße")
	assert.Contains(t, names, "custom_field_стоимость")

	ft, err := f.registry.Resolve(f.ctx, "custom field Стоимость")
	require.NoError(t, err)
	assert.Equal(t, cost.ID, ft.CustomFieldID)

	q := f.engine.NewQuery()
	require.NoError(t, q.Filter(f.ctx, "custom_field_стоимость", "=", "высокая"))
	assert.Len(t, f.result(t, q), f.count(t, func(_ models.Entry, i *models.Issue) bool {
		return i != nil && i.ID == f.issues[0].ID
	}))
}
