package costquery

import (
	"context"

	"github.com/mwantia/costquery/pkg/db/models"
)

// EntrySource provides the union of time and cost entries.
// Time entries come before cost entries.
type EntrySource interface {
	AllEntries(ctx context.Context) ([]models.Entry, error)
}

// IssueSource resolves the issue an entry is booked on, nil when it has none
type IssueSource interface {
	IssueFor(ctx context.Context, entry models.Entry) (*models.Issue, error)
}

// CustomFieldSource provides custom field metadata and values
type CustomFieldSource interface {
	AllCustomFields(ctx context.Context) ([]models.CustomField, error)
	CustomFieldFingerprint(ctx context.Context) (models.Fingerprint, error)
	CustomValues(ctx context.Context, fieldIDs []uint) ([]models.CustomValue, error)
}

// ChoiceSource enumerates catalog values for available value lookups
type ChoiceSource interface {
	Choices(ctx context.Context, kind models.ChoiceKind) ([]models.Choice, error)
}

// UserContext resolves the user a query runs for. A nil user is anonymous.
type UserContext interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

// Source is everything the engine reads. *store.GormStore implements it.
type Source interface {
	EntrySource
	IssueSource
	CustomFieldSource
	ChoiceSource
}

// FixedUser is a UserContext that always returns the same user
type FixedUser struct {
	User *models.User
}

func (f FixedUser) CurrentUser(context.Context) (*models.User, error) {
	return f.User, nil
}

// UserByLogin resolves the current user by login on every call
type UserByLogin struct {
	Login  string
	Lookup func(ctx context.Context, login string) (*models.User, error)
}

func (u UserByLogin) CurrentUser(ctx context.Context) (*models.User, error) {
	if u.Login == "" || u.Lookup == nil {
		return nil, nil
	}
	return u.Lookup(ctx, u.Login)
}
