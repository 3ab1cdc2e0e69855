package costquery

import (
	"strings"
	"unicode"
)

// CustomFieldPrefix starts the name of every generated filter
const CustomFieldPrefix = "custom_field_"

// Canonicalize lowercases name and collapses every run of characters other
// than letters and digits, in any script, into a single underscore.
// "Searchable Field" and "searchable-field" both become "searchable_field".
func Canonicalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pending := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return b.String()
}

// compact drops the separators of a canonical name, so "ProjectId" finds "project_id"
func compact(canonical string) string {
	return strings.ReplaceAll(canonical, "_", "")
}

// CustomFieldFilterName returns the filter name generated for a custom field name
func CustomFieldFilterName(fieldName string) string {
	return CustomFieldPrefix + Canonicalize(fieldName)
}
