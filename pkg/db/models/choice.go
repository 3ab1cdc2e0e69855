package models

// ChoiceKind names a catalog a filter can enumerate its values from
type ChoiceKind string

const (
	ChoiceProjects   ChoiceKind = "projects"
	ChoiceUsers      ChoiceKind = "users"
	ChoiceCostTypes  ChoiceKind = "cost_types"
	ChoiceIssues     ChoiceKind = "issues"
	ChoiceActivities ChoiceKind = "activities"
	ChoicePriorities ChoiceKind = "priorities"
	ChoiceTrackers   ChoiceKind = "trackers"
	ChoiceCategories ChoiceKind = "categories"
	ChoiceVersions   ChoiceKind = "versions"
	ChoiceStatuses   ChoiceKind = "statuses"
)

// Choice is a selectable filter value with its display label
type Choice struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}
