package costquery

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mwantia/costquery/pkg/db/models"
	"github.com/mwantia/costquery/pkg/db/store"
	"github.com/stretchr/testify/require"
)

// fixtureNow is a Wednesday. Entries are spread around its ISO week.
var fixtureNow = time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2026, month, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

type fixture struct {
	ctx       context.Context
	clock     *testClock
	store     *store.GormStore
	generator *Generator
	registry  *Registry
	engine    *Engine

	projects   []models.Project
	users      []models.User
	costTypes  []models.CostType
	activities []models.Activity
	trackers   []models.Tracker
	priorities []models.IssuePriority
	statuses   []models.IssueStatus
	categories []models.IssueCategory
	versions   []models.Version
	issues     []models.Issue
	fields     map[string]*models.CustomField
}

// newFixture seeds a sqlite store with 6 time entries and 5 cost entries.
// The clock is moved a minute past the seed time so later custom field
// writes land in a different second than the seeded ones.
func newFixture(t *testing.T, opts ...EngineOption) *fixture {
	t.Helper()

	f := &fixture{
		ctx:    context.Background(),
		clock:  newTestClock(fixtureNow),
		fields: make(map[string]*models.CustomField),
	}

	s, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "costquery.db"),
		Now:  f.clock.Now,
	})
	require.NoError(t, err)
	require.NoError(t, s.Connect(f.ctx))
	require.NoError(t, s.Migrate(f.ctx))
	t.Cleanup(func() { s.Close() })
	f.store = s

	f.seed(t)
	f.clock.Advance(time.Minute)

	f.generator = NewGenerator(s, nil)
	f.registry = NewRegistry(f.generator)
	opts = append([]EngineOption{WithClock(f.clock.Now)}, opts...)
	f.engine = NewEngine(s, f.registry, opts...)

	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := f.ctx
	s := f.store

	f.projects = []models.Project{
		{Name: "eCookbook", Identifier: "ecookbook"},
		{Name: "OnlineStore", Identifier: "onlinestore"},
	}
	for i := range f.projects {
		require.NoError(t, s.CreateProject(ctx, &f.projects[i]))
	}

	f.users = []models.User{
		{Login: "admin", Firstname: "Redmine", Lastname: "Admin", Active: true},
		{Login: "jsmith", Firstname: "John", Lastname: "Smith", Active: true},
		{Login: "dlopper", Firstname: "Dave", Lastname: "Lopper", Active: true},
		{Login: "anonymous", Anonymous: true, Active: true},
	}
	for i := range f.users {
		require.NoError(t, s.CreateUser(ctx, &f.users[i]))
	}

	f.costTypes = []models.CostType{
		{Name: "Labor", Unit: "hour"},
		{Name: "Material", Unit: "piece"},
		{Name: "Travel", Unit: "km"},
	}
	for i := range f.costTypes {
		require.NoError(t, s.CreateCostType(ctx, &f.costTypes[i]))
	}

	f.activities = []models.Activity{{Name: "Design"}, {Name: "Development"}}
	for i := range f.activities {
		require.NoError(t, s.CreateActivity(ctx, &f.activities[i]))
	}

	f.trackers = []models.Tracker{{Name: "Bug"}, {Name: "Feature"}}
	for i := range f.trackers {
		require.NoError(t, s.CreateTracker(ctx, &f.trackers[i]))
	}

	f.priorities = []models.IssuePriority{
		{Name: "Low", Position: 1},
		{Name: "Normal", Position: 2},
		{Name: "High", Position: 3},
	}
	for i := range f.priorities {
		require.NoError(t, s.CreateIssuePriority(ctx, &f.priorities[i]))
	}

	f.statuses = []models.IssueStatus{{Name: "New"}, {Name: "Closed", IsClosed: true}}
	for i := range f.statuses {
		require.NoError(t, s.CreateIssueStatus(ctx, &f.statuses[i]))
	}

	p1, p2 := f.projects[0].ID, f.projects[1].ID

	f.categories = []models.IssueCategory{
		{ProjectID: p1, Name: "Printing"},
		{ProjectID: p1, Name: "Recipes"},
	}
	for i := range f.categories {
		require.NoError(t, s.CreateIssueCategory(ctx, &f.categories[i]))
	}

	f.versions = []models.Version{
		{ProjectID: p1, Name: "0.1"},
		{ProjectID: p1, Name: "1.0"},
		{ProjectID: p2, Name: "2.0"},
	}
	for i := range f.versions {
		require.NoError(t, s.CreateVersion(ctx, &f.versions[i]))
	}

	admin, jsmith, dlopper := f.users[0].ID, f.users[1].ID, f.users[2].ID

	f.issues = []models.Issue{
		{
			ProjectID:      p1,
			TrackerID:      f.trackers[0].ID,
			PriorityID:     f.priorities[0].ID,
			StatusID:       f.statuses[0].ID,
			AuthorID:       admin,
			AssignedToID:   ptr(jsmith),
			CategoryID:     ptr(f.categories[0].ID),
			FixedVersionID: ptr(f.versions[1].ID),
			Subject:        "Cannot print recipes",
			StartDate:      ptr(day(time.March, 1)),
			DueDate:        ptr(day(time.March, 20)),
		},
		{
			ProjectID:      p1,
			TrackerID:      f.trackers[1].ID,
			PriorityID:     f.priorities[1].ID,
			StatusID:       f.statuses[1].ID,
			AuthorID:       jsmith,
			FixedVersionID: ptr(f.versions[1].ID),
			Subject:        "Add ingredients categories",
			StartDate:      ptr(day(time.February, 15)),
		},
		{
			ProjectID:      p2,
			TrackerID:      f.trackers[0].ID,
			PriorityID:     f.priorities[2].ID,
			StatusID:       f.statuses[0].ID,
			AuthorID:       admin,
			AssignedToID:   ptr(dlopper),
			CategoryID:     ptr(f.categories[1].ID),
			FixedVersionID: ptr(f.versions[2].ID),
			Subject:        "Error 281 when updating a recipe",
			DueDate:        ptr(day(time.April, 1)),
		},
	}
	for i := range f.issues {
		require.NoError(t, s.CreateIssue(ctx, &f.issues[i]))
	}

	i1, i2, i3 := &f.issues[0].ID, &f.issues[1].ID, &f.issues[2].ID
	labor, material, travel := f.costTypes[0].ID, f.costTypes[1].ID, f.costTypes[2].ID
	design, development := f.activities[0].ID, f.activities[1].ID
	lastMonth := fixtureNow.AddDate(0, -1, 0)

	times := []models.TimeEntry{
		{ProjectID: p1, UserID: admin, CostTypeID: labor, ActivityID: design, IssueID: i1, SpentOn: day(time.March, 11), Hours: 4},
		{ProjectID: p1, UserID: jsmith, CostTypeID: labor, ActivityID: development, IssueID: i1, SpentOn: day(time.March, 9), Hours: 2.5, OverriddenCosts: ptr(150.0)},
		{ProjectID: p1, UserID: jsmith, CostTypeID: labor, ActivityID: design, IssueID: i2, SpentOn: day(time.March, 2), Hours: 1, CreatedAt: lastMonth},
		{ProjectID: p2, UserID: dlopper, CostTypeID: labor, ActivityID: development, IssueID: i3, SpentOn: day(time.March, 10), Hours: 8},
		{ProjectID: p1, UserID: admin, CostTypeID: labor, ActivityID: development, SpentOn: day(time.March, 13), Hours: 3},
		{ProjectID: p2, UserID: dlopper, CostTypeID: labor, ActivityID: design, SpentOn: day(time.February, 27), Hours: 6, CreatedAt: lastMonth},
	}
	for i := range times {
		require.NoError(t, s.CreateTimeEntry(ctx, &times[i]))
	}

	costs := []models.CostEntry{
		{ProjectID: p1, UserID: admin, CostTypeID: material, IssueID: i1, SpentOn: day(time.March, 11), Units: 2, Costs: 50},
		{ProjectID: p1, UserID: jsmith, CostTypeID: travel, IssueID: i2, SpentOn: day(time.March, 4), Units: 120, Costs: 36, OverriddenCosts: ptr(75.0)},
		{ProjectID: p2, UserID: dlopper, CostTypeID: material, IssueID: i3, SpentOn: day(time.March, 12), Units: 1, Costs: 400},
		{ProjectID: p2, UserID: admin, CostTypeID: material, SpentOn: day(time.February, 20), Units: 5, Costs: 20, CreatedAt: lastMonth},
		{ProjectID: p1, UserID: jsmith, CostTypeID: travel, IssueID: i3, SpentOn: day(time.March, 6), Units: 40, Costs: 12},
	}
	for i := range costs {
		require.NoError(t, s.CreateCostEntry(ctx, &costs[i]))
	}

	f.createField(t, models.CustomField{
		Type:         models.IssueCustomFieldType,
		Name:         "Searchable Field",
		FieldFormat:  "string",
		Searchable:   true,
		DefaultValue: "Default string",
	})
	f.createField(t, models.CustomField{
		Type:           models.IssueCustomFieldType,
		Name:           "Database",
		FieldFormat:    "list",
		PossibleValues: []string{"PostgreSQL", "MySQL", "Oracle"},
	})
	f.createField(t, models.CustomField{
		Type:        models.IssueCustomFieldType,
		Name:        "Estimate",
		FieldFormat: "float",
	})
	f.createField(t, models.CustomField{
		Type:        models.TimeEntryCustomFieldType,
		Name:        "Billable",
		FieldFormat: "bool",
	})
	f.createField(t, models.CustomField{
		Type:        models.ProjectCustomFieldType,
		Name:        "Project Budget",
		FieldFormat: "int",
	})

	for _, id := range []uint{*i1, *i2, *i3} {
		f.setValue(t, "Searchable Field", models.CustomizedIssue, id, "125")
	}
	f.setValue(t, "Database", models.CustomizedIssue, *i1, "MySQL")
	f.setValue(t, "Database", models.CustomizedIssue, *i3, "PostgreSQL")
	f.setValue(t, "Estimate", models.CustomizedIssue, *i1, "12.5")
	f.setValue(t, "Estimate", models.CustomizedIssue, *i2, "3")
	f.setValue(t, "Billable", models.CustomizedTimeEntry, times[0].ID, "1")
	f.setValue(t, "Billable", models.CustomizedTimeEntry, times[1].ID, "0")
	f.setValue(t, "Billable", models.CustomizedTimeEntry, times[3].ID, "1")
}

func (f *fixture) createField(t *testing.T, field models.CustomField) *models.CustomField {
	t.Helper()
	require.NoError(t, f.store.CreateCustomField(f.ctx, &field))
	f.fields[field.Name] = &field
	return &field
}

func (f *fixture) setValue(t *testing.T, field, customizedType string, id uint, value string) {
	t.Helper()
	require.NoError(t, f.store.SetCustomValue(f.ctx, &models.CustomValue{
		CustomFieldID:  f.fields[field].ID,
		CustomizedType: customizedType,
		CustomizedID:   id,
		Value:          value,
	}))
}

// count evaluates match over every stored entry and its issue, mirroring a filter by hand
func (f *fixture) count(t *testing.T, match func(e models.Entry, issue *models.Issue) bool) int {
	t.Helper()

	entries, err := f.store.AllEntries(f.ctx)
	require.NoError(t, err)

	n := 0
	for _, e := range entries {
		issue, err := f.store.IssueFor(f.ctx, e)
		require.NoError(t, err)
		if match(e, issue) {
			n++
		}
	}
	return n
}

func (f *fixture) result(t *testing.T, q *Query) []Row {
	t.Helper()

	rows, err := q.Result(f.ctx)
	require.NoError(t, err)

	count, err := q.Count(f.ctx)
	require.NoError(t, err)
	require.Equal(t, len(rows), count, "count must match result length")

	return rows
}
