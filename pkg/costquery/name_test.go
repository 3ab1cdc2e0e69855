package costquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Searchable Field", "searchable_field"},
		{"searchable-field", "searchable_field"},
		{"  Searchable  Field ", "searchable_field"},
		{"AFreshCustomField", "afreshcustomfield"},
		{"ProjectId", "projectid"},
		{"project_id", "project_id"},
		{"Cost/Center #2", "cost_center_2"},
		{"Größe", "größe"},
		{"Grüße", "grüße"},
		{"Стоимость проекта", "стоимость_проекта"},
		{"Café-Budget", "café_budget"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), tt.in)
	}
}

func TestCustomFieldFilterName(t *testing.T) {
	assert.Equal(t, "custom_field_searchable_field", CustomFieldFilterName("Searchable Field"))
	assert.Equal(t, "custom_field_afreshcustomfield", CustomFieldFilterName("AFreshCustomField"))
	assert.Equal(t, compact("custom_field_database"), compact(Canonicalize("CustomFieldDatabase")))
}
