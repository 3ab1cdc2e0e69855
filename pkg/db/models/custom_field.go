package models

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
	"time"
)

// Custom field owner types
const (
	IssueCustomFieldType     = "IssueCustomField"
	TimeEntryCustomFieldType = "TimeEntryCustomField"
	ProjectCustomFieldType   = "ProjectCustomField"
	UserCustomFieldType      = "UserCustomField"
)

// Customized record types a CustomValue can belong to
const (
	CustomizedIssue     = "Issue"
	CustomizedTimeEntry = "TimeEntry"
)

// CustomField is a user-defined attribute attached to issues, time entries or other records
type CustomField struct {
	ID             uint     `gorm:"primaryKey"`
	Type           string   `gorm:"type:text;not null;index"` // IssueCustomField, TimeEntryCustomField, ...
	Name           string   `gorm:"type:text;not null;uniqueIndex"`
	FieldFormat    string   `gorm:"type:text;not null"` // string, text, int, float, date, bool, list, user, version
	PossibleValues []string `gorm:"serializer:json"`
	DefaultValue   string   `gorm:"type:text"`
	Searchable     bool     `gorm:"default:false"`
	IsForAll       bool     `gorm:"default:false"`
	IsRequired     bool     `gorm:"default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Values []CustomValue `gorm:"foreignKey:CustomFieldID;constraint:OnDelete:CASCADE"`
}

// CustomizedType returns the record type values of this field belong to
func (cf *CustomField) CustomizedType() string {
	switch cf.Type {
	case IssueCustomFieldType:
		return CustomizedIssue
	case TimeEntryCustomFieldType:
		return CustomizedTimeEntry
	}
	return ""
}

// CustomValue stores the value of a custom field for one customized record
type CustomValue struct {
	ID             uint   `gorm:"primaryKey"`
	CustomFieldID  uint   `gorm:"not null;index:idx_custom_value_field"`
	CustomizedType string `gorm:"type:text;not null;index:idx_custom_value_target"`
	CustomizedID   uint   `gorm:"not null;index:idx_custom_value_target"`
	Value          string `gorm:"type:text"`
}

// CustomFieldEventType names a change made to a custom field definition
type CustomFieldEventType string

const (
	CustomFieldCreated CustomFieldEventType = "created"
	CustomFieldUpdated CustomFieldEventType = "updated"
	CustomFieldDeleted CustomFieldEventType = "deleted"
)

// CustomFieldEvent is emitted by stores after a custom field write was committed
type CustomFieldEvent struct {
	Type  CustomFieldEventType
	Field CustomField
}

// Fingerprint summarizes the custom field collection. Two collections with equal
// fingerprints are treated as identical: Count and Checksum catch creations and
// deletions, UpdatedAt (whole seconds) catches updates.
type Fingerprint struct {
	Count     int
	Checksum  uint64
	UpdatedAt int64
}

// FingerprintOf computes the fingerprint over a custom field collection
func FingerprintOf(fields []CustomField) Fingerprint {
	ids := make([]uint, 0, len(fields))
	fp := Fingerprint{Count: len(fields)}

	for _, f := range fields {
		ids = append(ids, f.ID)
		if ts := f.UpdatedAt.Unix(); ts > fp.UpdatedAt {
			fp.UpdatedAt = ts
		}
	}
	slices.Sort(ids)

	h := fnv.New64a()
	buf := make([]byte, 8)
	for _, id := range ids {
		binary.LittleEndian.PutUint64(buf, uint64(id))
		h.Write(buf)
	}
	fp.Checksum = h.Sum64()

	return fp
}
