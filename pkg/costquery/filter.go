package costquery

import (
	"github.com/mwantia/costquery/pkg/db/models"
)

// Built-in filter names
const (
	FilterProjectID       = "project_id"
	FilterUserID          = "user_id"
	FilterCostTypeID      = "cost_type_id"
	FilterIssueID         = "issue_id"
	FilterActivityID      = "activity_id"
	FilterAuthorID        = "author_id"
	FilterPriorityID      = "priority_id"
	FilterTrackerID       = "tracker_id"
	FilterAssignedToID    = "assigned_to_id"
	FilterCategoryID      = "category_id"
	FilterFixedVersionID  = "fixed_version_id"
	FilterSpentOn         = "spent_on"
	FilterCreatedOn       = "created_on"
	FilterUpdatedOn       = "updated_on"
	FilterStartDate       = "start_date"
	FilterDueDate         = "due_date"
	FilterSubject         = "subject"
	FilterOverriddenCosts = "overridden_costs"
	FilterStatusID        = "status_id"
)

// FilterType describes a named filter: the row attribute it reads, the
// operators it accepts and where its selectable values come from.
// FilterTypes are immutable once registered.
type FilterType struct {
	Name      string      `json:"name"      yaml:"name"`
	Label     string      `json:"label"     yaml:"label"`
	Domain    Domain      `json:"domain"    yaml:"domain"`
	Operators OperatorSet `json:"operators" yaml:"operators"`

	// Set for filters generated from custom fields
	Generated     bool   `json:"generated,omitempty"       yaml:"generated,omitempty"`
	CustomFieldID uint   `json:"custom_field_id,omitempty" yaml:"custom_field_id,omitempty"`
	FieldFormat   string `json:"field_format,omitempty"    yaml:"field_format,omitempty"`

	builtin        bool
	valueType      valueType
	value          func(*record) any
	choices        models.ChoiceKind
	userScoped     bool
	possibleValues []string
	customField    *customFieldRef
}

type customFieldRef struct {
	id             uint
	customizedType string
}

// Builtin reports whether the filter is part of the static set
func (ft *FilterType) Builtin() bool {
	return ft.builtin
}

// NewFilterType creates a filter over a projected row attribute. value must
// return nil for a missing attribute.
func NewFilterType(name, label string, domain Domain, value func(Row) any) *FilterType {
	vt := valueTypeFor(domain)

	return &FilterType{
		Name:      Canonicalize(name),
		Label:     label,
		Domain:    domain,
		Operators: OperatorsFor(domain),
		valueType: vt,
		value: func(r *record) any {
			v := value(*r.row)
			if v == nil {
				return nil
			}
			if vt == valueStatus {
				return v
			}
			normalized, err := parseOperand(vt, v)
			if err != nil {
				return nil
			}
			return normalized
		},
	}
}

func valueTypeFor(domain Domain) valueType {
	switch domain {
	case DomainTemporal:
		return valueDate
	case DomainString:
		return valueText
	case DomainInteger, DomainPresence:
		return valueNumber
	case DomainStatus:
		return valueStatus
	}
	return valueID
}

func builtin(name, label string, domain Domain, choices models.ChoiceKind, value func(*record) any) *FilterType {
	return &FilterType{
		Name:      name,
		Label:     label,
		Domain:    domain,
		Operators: OperatorsFor(domain),
		builtin:   true,
		valueType: valueTypeFor(domain),
		value:     value,
		choices:   choices,
	}
}

func userScoped(ft *FilterType) *FilterType {
	ft.userScoped = true
	return ft
}

// absentValue marks an attribute the entry variant does not have. It never
// matches, not even the null operators.
type absentValue struct{}

var absent any = absentValue{}

// onIssue reads an attribute of the entry's issue
func onIssue(value func(*models.Issue) any) func(*record) any {
	return func(r *record) any {
		if r.issue == nil {
			return absent
		}
		return value(r.issue)
	}
}

func builtinFilters() []*FilterType {
	return []*FilterType{
		builtin(FilterProjectID, "Project", DomainIdentity, models.ChoiceProjects,
			func(r *record) any { return int64(r.row.ProjectID) }),
		userScoped(builtin(FilterUserID, "User", DomainIdentity, models.ChoiceUsers,
			func(r *record) any { return int64(r.row.UserID) })),
		builtin(FilterCostTypeID, "Cost type", DomainIdentity, models.ChoiceCostTypes,
			func(r *record) any { return int64(r.row.CostTypeID) }),
		builtin(FilterIssueID, "Issue", DomainIdentity, models.ChoiceIssues,
			func(r *record) any { return optionalID(r.row.IssueID) }),
		builtin(FilterActivityID, "Activity", DomainIdentity, models.ChoiceActivities,
			func(r *record) any { return r.row.ActivityID }),
		userScoped(builtin(FilterAuthorID, "Author", DomainIdentity, models.ChoiceUsers,
			onIssue(func(i *models.Issue) any { return int64(i.AuthorID) }))),
		builtin(FilterPriorityID, "Priority", DomainIdentity, models.ChoicePriorities,
			onIssue(func(i *models.Issue) any { return int64(i.PriorityID) })),
		builtin(FilterTrackerID, "Tracker", DomainIdentity, models.ChoiceTrackers,
			onIssue(func(i *models.Issue) any { return int64(i.TrackerID) })),
		userScoped(builtin(FilterAssignedToID, "Assignee", DomainNullableIdentity, models.ChoiceUsers,
			onIssue(func(i *models.Issue) any { return optionalID(i.AssignedToID) }))),
		builtin(FilterCategoryID, "Category", DomainNullableIdentity, models.ChoiceCategories,
			onIssue(func(i *models.Issue) any { return optionalID(i.CategoryID) })),
		builtin(FilterFixedVersionID, "Target version", DomainNullableIdentity, models.ChoiceVersions,
			onIssue(func(i *models.Issue) any { return optionalID(i.FixedVersionID) })),
		builtin(FilterSpentOn, "Date (Spent)", DomainTemporal, "",
			func(r *record) any { return r.row.SpentOn }),
		builtin(FilterCreatedOn, "Created", DomainTemporal, "",
			func(r *record) any { return r.row.CreatedOn }),
		builtin(FilterUpdatedOn, "Updated", DomainTemporal, "",
			func(r *record) any { return r.row.UpdatedOn }),
		builtin(FilterStartDate, "Start date", DomainTemporal, "",
			onIssue(func(i *models.Issue) any { return optionalDate(i.StartDate) })),
		builtin(FilterDueDate, "Due date", DomainTemporal, "",
			onIssue(func(i *models.Issue) any { return optionalDate(i.DueDate) })),
		builtin(FilterSubject, "Issue subject", DomainString, "",
			onIssue(func(i *models.Issue) any { return i.Subject })),
		builtin(FilterOverriddenCosts, "Overridden costs", DomainPresence, "",
			func(r *record) any { return optionalNumber(r.row.OverriddenCosts) }),
		builtin(FilterStatusID, "Status", DomainStatus, models.ChoiceStatuses,
			onIssue(func(i *models.Issue) any {
				if i.Status != nil {
					return *i.Status
				}
				return models.IssueStatus{ID: i.StatusID}
			})),
	}
}
