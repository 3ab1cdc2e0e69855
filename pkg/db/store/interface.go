package store

import (
	"context"

	"github.com/mwantia/costquery/pkg/db/models"
)

// Store defines the interface for database operations
type Store interface {
	// Lifecycle
	Connect(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
	Health(ctx context.Context) error

	// Catalog operations
	CreateProject(ctx context.Context, project *models.Project) error
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	CreateCostType(ctx context.Context, costType *models.CostType) error
	CreateActivity(ctx context.Context, activity *models.Activity) error
	CreateTracker(ctx context.Context, tracker *models.Tracker) error
	CreateIssuePriority(ctx context.Context, priority *models.IssuePriority) error
	CreateIssueStatus(ctx context.Context, status *models.IssueStatus) error
	CreateIssueCategory(ctx context.Context, category *models.IssueCategory) error
	CreateVersion(ctx context.Context, version *models.Version) error
	Choices(ctx context.Context, kind models.ChoiceKind) ([]models.Choice, error)

	// Issue operations
	CreateIssue(ctx context.Context, issue *models.Issue) error
	GetIssue(ctx context.Context, id uint) (*models.Issue, error)
	UpdateIssue(ctx context.Context, issue *models.Issue) error

	// Entry operations
	CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	CreateCostEntry(ctx context.Context, entry *models.CostEntry) error
	ListTimeEntries(ctx context.Context) ([]models.TimeEntry, error)
	ListCostEntries(ctx context.Context) ([]models.CostEntry, error)
	AllEntries(ctx context.Context) ([]models.Entry, error)
	IssueFor(ctx context.Context, entry models.Entry) (*models.Issue, error)

	// Custom field operations
	CreateCustomField(ctx context.Context, field *models.CustomField) error
	GetCustomFieldByName(ctx context.Context, name string) (*models.CustomField, error)
	UpdateCustomField(ctx context.Context, field *models.CustomField) error
	DeleteCustomField(ctx context.Context, id uint) error
	AllCustomFields(ctx context.Context) ([]models.CustomField, error)
	CustomFieldFingerprint(ctx context.Context) (models.Fingerprint, error)
	SubscribeCustomFields(fn func(models.CustomFieldEvent))

	// Custom value operations
	SetCustomValue(ctx context.Context, value *models.CustomValue) error
	CustomValues(ctx context.Context, fieldIDs []uint) ([]models.CustomValue, error)
}
