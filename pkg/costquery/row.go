package costquery

import (
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
)

// NoActivity is the activity_id projected for entries that are not time entries
const NoActivity int64 = -1

// Row is a normalized result row. Both entry variants project to the same columns.
type Row struct {
	Type            models.EntryKind `json:"type"                       yaml:"type"`
	ID              uint             `json:"id"                         yaml:"id"`
	ProjectID       uint             `json:"project_id"                 yaml:"project_id"`
	UserID          uint             `json:"user_id"                    yaml:"user_id"`
	CostTypeID      uint             `json:"cost_type_id"               yaml:"cost_type_id"`
	CostType        string           `json:"cost_type"                  yaml:"cost_type"`
	ActivityID      int64            `json:"activity_id"                yaml:"activity_id"`
	IssueID         *uint            `json:"issue_id,omitempty"         yaml:"issue_id,omitempty"`
	SpentOn         time.Time        `json:"spent_on"                   yaml:"spent_on"`
	CreatedOn       time.Time        `json:"created_on"                 yaml:"created_on"`
	UpdatedOn       time.Time        `json:"updated_on"                 yaml:"updated_on"`
	OverriddenCosts *float64         `json:"overridden_costs,omitempty" yaml:"overridden_costs,omitempty"`

	// Attributes holds the value of every filter active when the row was produced,
	// keyed by filter name.
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Project normalizes an entry into a row. cost_type and activity_id are always set.
func Project(entry models.Entry) Row {
	common := entry.Common()

	row := Row{
		Type:            entry.EntryKind(),
		ID:              entry.EntryID(),
		ProjectID:       common.ProjectID,
		UserID:          common.UserID,
		CostTypeID:      common.CostTypeID,
		CostType:        entry.CostTypeName(),
		ActivityID:      NoActivity,
		IssueID:         common.IssueID,
		SpentOn:         common.SpentOn,
		CreatedOn:       common.CreatedAt,
		UpdatedOn:       common.UpdatedAt,
		OverriddenCosts: common.OverriddenCosts,
	}

	if activity, ok := entry.Activity(); ok {
		row.ActivityID = int64(activity)
	}

	return row
}

// Get returns a column by name, falling back to the filter attributes
func (r Row) Get(column string) (any, bool) {
	switch column {
	case "type":
		return string(r.Type), true
	case "id":
		return r.ID, true
	case FilterProjectID:
		return r.ProjectID, true
	case FilterUserID:
		return r.UserID, true
	case FilterCostTypeID:
		return r.CostTypeID, true
	case "cost_type":
		return r.CostType, true
	case FilterActivityID:
		return r.ActivityID, true
	case FilterIssueID:
		if r.IssueID == nil {
			return nil, true
		}
		return *r.IssueID, true
	case FilterSpentOn:
		return r.SpentOn, true
	case FilterCreatedOn:
		return r.CreatedOn, true
	case FilterUpdatedOn:
		return r.UpdatedOn, true
	case FilterOverriddenCosts:
		if r.OverriddenCosts == nil {
			return nil, true
		}
		return *r.OverriddenCosts, true
	}

	v, ok := r.Attributes[column]
	return v, ok
}

// record is the evaluation view of one row: the projection plus the joined
// issue and the custom values loaded for the active filters.
type record struct {
	row    *Row
	issue  *models.Issue
	values customValueIndex
}

type customValueKey struct {
	field          uint
	customizedType string
	customizedID   uint
}

type customValueIndex map[customValueKey]string

func newCustomValueIndex(values []models.CustomValue) customValueIndex {
	index := make(customValueIndex, len(values))
	for _, v := range values {
		index[customValueKey{v.CustomFieldID, v.CustomizedType, v.CustomizedID}] = v.Value
	}
	return index
}

// target returns the id of the record a custom value of customizedType
// would belong to. ok is false when the entry has no such record.
func (r *record) target(customizedType string) (id uint, ok bool) {
	switch customizedType {
	case models.CustomizedIssue:
		if r.issue == nil {
			return 0, false
		}
		return r.issue.ID, true
	case models.CustomizedTimeEntry:
		if r.row.Type != models.TimeEntryKind {
			return 0, false
		}
		return r.row.ID, true
	}
	return 0, false
}
