package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/mwantia/costquery/pkg/db/migrations"
	"github.com/mwantia/costquery/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked up record does not exist
var ErrNotFound = errors.New("record not found")

// GormStore implements Store on top of any gorm dialector
type GormStore struct {
	db      *gorm.DB
	dialect string

	mutex       sync.RWMutex
	subscribers []func(models.CustomFieldEvent)
}

// DB returns the underlying GORM database instance
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// Dialect returns the name of the configured database dialect
func (s *GormStore) Dialect() string {
	return s.dialect
}

func openGorm(dialector gorm.Dialector, level logger.LogLevel, now func() time.Time) (*gorm.DB, error) {
	// Default to silent logging
	if level == 0 {
		level = logger.Silent
	}
	if now == nil {
		now = time.Now
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	})
}

// Connect initializes the database connection
func (s *GormStore) Connect(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if s.dialect == "sqlite" {
		sqlDB.SetMaxOpenConns(1) // SQLite only supports 1 writer
		sqlDB.SetMaxIdleConns(1)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// Migrate runs all pending versioned migrations
func (s *GormStore) Migrate(ctx context.Context) error {
	return migrations.NewMigrator(s.db).Migrate(ctx)
}

// Health checks database connectivity
func (s *GormStore) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Catalog operations

func (s *GormStore) CreateProject(ctx context.Context, project *models.Project) error {
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *GormStore) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("login = ?", login).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) CreateCostType(ctx context.Context, costType *models.CostType) error {
	return s.db.WithContext(ctx).Create(costType).Error
}

func (s *GormStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	return s.db.WithContext(ctx).Create(activity).Error
}

func (s *GormStore) CreateTracker(ctx context.Context, tracker *models.Tracker) error {
	return s.db.WithContext(ctx).Create(tracker).Error
}

func (s *GormStore) CreateIssuePriority(ctx context.Context, priority *models.IssuePriority) error {
	return s.db.WithContext(ctx).Create(priority).Error
}

func (s *GormStore) CreateIssueStatus(ctx context.Context, status *models.IssueStatus) error {
	return s.db.WithContext(ctx).Create(status).Error
}

func (s *GormStore) CreateIssueCategory(ctx context.Context, category *models.IssueCategory) error {
	return s.db.WithContext(ctx).Create(category).Error
}

func (s *GormStore) CreateVersion(ctx context.Context, version *models.Version) error {
	return s.db.WithContext(ctx).Create(version).Error
}

type choiceRow struct {
	ID    uint
	Label string
}

// Choices lists the selectable values of a catalog ordered by label
func (s *GormStore) Choices(ctx context.Context, kind models.ChoiceKind) ([]models.Choice, error) {
	query := s.db.WithContext(ctx)

	switch kind {
	case models.ChoiceProjects:
		query = query.Model(&models.Project{}).Select("id, name AS label")
	case models.ChoiceUsers:
		var users []models.User
		if err := query.Where("anonymous = ? AND active = ?", false, true).Order("login").Find(&users).Error; err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		choices := make([]models.Choice, 0, len(users))
		for _, u := range users {
			choices = append(choices, models.Choice{Label: u.DisplayName(), Value: formatID(u.ID)})
		}
		return choices, nil
	case models.ChoiceCostTypes:
		query = query.Model(&models.CostType{}).Select("id, name AS label")
	case models.ChoiceIssues:
		query = query.Model(&models.Issue{}).Select("id, subject AS label")
	case models.ChoiceActivities:
		query = query.Model(&models.Activity{}).Select("id, name AS label")
	case models.ChoicePriorities:
		query = query.Model(&models.IssuePriority{}).Select("id, name AS label")
	case models.ChoiceTrackers:
		query = query.Model(&models.Tracker{}).Select("id, name AS label")
	case models.ChoiceCategories:
		query = query.Model(&models.IssueCategory{}).Select("id, name AS label")
	case models.ChoiceVersions:
		query = query.Model(&models.Version{}).Select("id, name AS label")
	case models.ChoiceStatuses:
		query = query.Model(&models.IssueStatus{}).Select("id, name AS label")
	default:
		return nil, fmt.Errorf("unknown choice kind '%s'", kind)
	}

	var rows []choiceRow
	if err := query.Order("label, id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}

	choices := make([]models.Choice, 0, len(rows))
	for _, r := range rows {
		choices = append(choices, models.Choice{Label: r.Label, Value: formatID(r.ID)})
	}
	return choices, nil
}

// Issue operations

func (s *GormStore) CreateIssue(ctx context.Context, issue *models.Issue) error {
	return s.db.WithContext(ctx).Create(issue).Error
}

func (s *GormStore) GetIssue(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	if err := s.db.WithContext(ctx).Preload("Status").Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, notFound(err)
	}
	return &issue, nil
}

func (s *GormStore) UpdateIssue(ctx context.Context, issue *models.Issue) error {
	return s.db.WithContext(ctx).Omit("Status").Save(issue).Error
}

// Entry operations

func (s *GormStore) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	return s.db.WithContext(ctx).Omit("Issue", "CostType").Create(entry).Error
}

func (s *GormStore) CreateCostEntry(ctx context.Context, entry *models.CostEntry) error {
	return s.db.WithContext(ctx).Omit("Issue", "CostType").Create(entry).Error
}

func (s *GormStore) ListTimeEntries(ctx context.Context) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := s.db.WithContext(ctx).
		Preload("Issue.Status").
		Preload("CostType").
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (s *GormStore) ListCostEntries(ctx context.Context) ([]models.CostEntry, error) {
	var entries []models.CostEntry
	err := s.db.WithContext(ctx).
		Preload("Issue.Status").
		Preload("CostType").
		Order("id").
		Find(&entries).Error
	return entries, err
}

// AllEntries returns the union of time and cost entries, time entries first
func (s *GormStore) AllEntries(ctx context.Context) ([]models.Entry, error) {
	times, err := s.ListTimeEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}

	costs, err := s.ListCostEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(times)+len(costs))
	for i := range times {
		entries = append(entries, &times[i])
	}
	for i := range costs {
		entries = append(entries, &costs[i])
	}

	return entries, nil
}

// IssueFor returns the issue an entry is booked against, or nil if it has none
func (s *GormStore) IssueFor(ctx context.Context, entry models.Entry) (*models.Issue, error) {
	if issue := entry.LoadedIssue(); issue != nil {
		return issue, nil
	}

	id := entry.Common().IssueID
	if id == nil {
		return nil, nil
	}

	issue, err := s.GetIssue(ctx, *id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return issue, err
}

// Custom field operations

func (s *GormStore) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	if err := s.db.WithContext(ctx).Omit("Values").Create(field).Error; err != nil {
		return err
	}

	s.publish(models.CustomFieldEvent{Type: models.CustomFieldCreated, Field: *field})
	return nil
}

func (s *GormStore) GetCustomFieldByName(ctx context.Context, name string) (*models.CustomField, error) {
	var field models.CustomField
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&field).Error; err != nil {
		return nil, notFound(err)
	}
	return &field, nil
}

func (s *GormStore) UpdateCustomField(ctx context.Context, field *models.CustomField) error {
	if err := s.db.WithContext(ctx).Omit("Values").Save(field).Error; err != nil {
		return err
	}

	s.publish(models.CustomFieldEvent{Type: models.CustomFieldUpdated, Field: *field})
	return nil
}

// DeleteCustomField removes a custom field together with its values
func (s *GormStore) DeleteCustomField(ctx context.Context, id uint) error {
	var field models.CustomField
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&field).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("custom_field_id = ?", id).Delete(&models.CustomValue{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CustomField{}, id).Error
	})
	if err != nil {
		return err
	}

	s.publish(models.CustomFieldEvent{Type: models.CustomFieldDeleted, Field: field})
	return nil
}

func (s *GormStore) AllCustomFields(ctx context.Context) ([]models.CustomField, error) {
	var fields []models.CustomField
	err := s.db.WithContext(ctx).Order("id").Find(&fields).Error
	return fields, err
}

// CustomFieldFingerprint only loads the columns the fingerprint depends on
func (s *GormStore) CustomFieldFingerprint(ctx context.Context) (models.Fingerprint, error) {
	var fields []models.CustomField
	if err := s.db.WithContext(ctx).Select("id", "updated_at").Find(&fields).Error; err != nil {
		return models.Fingerprint{}, fmt.Errorf("failed to load custom field fingerprint: %w", err)
	}
	return models.FingerprintOf(fields), nil
}

// SubscribeCustomFields registers fn to be called after every committed custom field write
func (s *GormStore) SubscribeCustomFields(fn func(models.CustomFieldEvent)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

func (s *GormStore) publish(event models.CustomFieldEvent) {
	s.mutex.RLock()
	subscribers := append([]func(models.CustomFieldEvent){}, s.subscribers...)
	s.mutex.RUnlock()

	for _, fn := range subscribers {
		fn(event)
	}
}

// Custom value operations

// SetCustomValue creates or replaces the value of a field for one customized record
func (s *GormStore) SetCustomValue(ctx context.Context, value *models.CustomValue) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.CustomValue
		err := tx.Where("custom_field_id = ? AND customized_type = ? AND customized_id = ?",
			value.CustomFieldID, value.CustomizedType, value.CustomizedID).
			First(&existing).Error

		switch {
		case err == nil:
			value.ID = existing.ID
			return tx.Save(value).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(value).Error
		default:
			return err
		}
	})
}

func (s *GormStore) CustomValues(ctx context.Context, fieldIDs []uint) ([]models.CustomValue, error) {
	if len(fieldIDs) == 0 {
		return nil, nil
	}

	var values []models.CustomValue
	err := s.db.WithContext(ctx).Where("custom_field_id IN ?", fieldIDs).Order("id").Find(&values).Error
	return values, err
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
