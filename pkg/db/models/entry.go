package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// EntryKind names the variant of a booked entry
type EntryKind string

const (
	TimeEntryKind EntryKind = "TimeEntry"
	CostEntryKind EntryKind = "CostEntry"
)

// Entry is a booked cost record. It is implemented by *TimeEntry and
// *CostEntry only.
type Entry interface {
	EntryKind() EntryKind
	EntryID() uint
	Common() Booking
	// Activity returns the time entry activity, ok is false for cost entries.
	Activity() (uint, bool)
	// LoadedIssue returns the preloaded issue, or nil when none was loaded.
	LoadedIssue() *Issue
	CostTypeName() string

	entry()
}

// Booking holds the columns shared by both entry variants
type Booking struct {
	ProjectID       uint
	UserID          uint
	CostTypeID      uint
	IssueID         *uint
	SpentOn         time.Time
	OverriddenCosts *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TimeEntry represents hours booked against a project and an activity
type TimeEntry struct {
	ID              uint      `gorm:"primaryKey"`
	ProjectID       uint      `gorm:"not null;index"`
	UserID          uint      `gorm:"not null;index"`
	CostTypeID      uint      `gorm:"not null;index"`
	ActivityID      uint      `gorm:"not null;index"`
	IssueID         *uint     `gorm:"index"`
	SpentOn         time.Time `gorm:"not null;index"`
	Hours           float64   `gorm:"not null"`
	Comments        string    `gorm:"type:text"`
	OverriddenCosts *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Issue    *Issue    `gorm:"foreignKey:IssueID"`
	CostType *CostType `gorm:"foreignKey:CostTypeID"`
}

// CostEntry represents material or other expenses booked against a project
type CostEntry struct {
	ID              uint      `gorm:"primaryKey"`
	ProjectID       uint      `gorm:"not null;index"`
	UserID          uint      `gorm:"not null;index"`
	CostTypeID      uint      `gorm:"not null;index"`
	IssueID         *uint     `gorm:"index"`
	SpentOn         time.Time `gorm:"not null;index"`
	Units           float64   `gorm:"not null"`
	Costs           float64   `gorm:"not null"`
	Comments        string    `gorm:"type:text"`
	OverriddenCosts *float64

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Issue    *Issue    `gorm:"foreignKey:IssueID"`
	CostType *CostType `gorm:"foreignKey:CostTypeID"`
}

func (*TimeEntry) entry() {}

func (e *TimeEntry) EntryKind() EntryKind { return TimeEntryKind }

func (e *TimeEntry) EntryID() uint { return e.ID }

func (e *TimeEntry) Activity() (uint, bool) { return e.ActivityID, true }

func (e *TimeEntry) LoadedIssue() *Issue { return e.Issue }

func (e *TimeEntry) CostTypeName() string { return costTypeName(e.CostType, e.CostTypeID) }

func (e *TimeEntry) Common() Booking {
	return Booking{
		ProjectID:       e.ProjectID,
		UserID:          e.UserID,
		CostTypeID:      e.CostTypeID,
		IssueID:         e.IssueID,
		SpentOn:         e.SpentOn,
		OverriddenCosts: e.OverriddenCosts,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (*CostEntry) entry() {}

func (e *CostEntry) EntryKind() EntryKind { return CostEntryKind }

func (e *CostEntry) EntryID() uint { return e.ID }

func (e *CostEntry) Activity() (uint, bool) { return 0, false }

func (e *CostEntry) LoadedIssue() *Issue { return e.Issue }

func (e *CostEntry) CostTypeName() string { return costTypeName(e.CostType, e.CostTypeID) }

func (e *CostEntry) Common() Booking {
	return Booking{
		ProjectID:       e.ProjectID,
		UserID:          e.UserID,
		CostTypeID:      e.CostTypeID,
		IssueID:         e.IssueID,
		SpentOn:         e.SpentOn,
		OverriddenCosts: e.OverriddenCosts,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// CalendarDate returns midnight UTC of the calendar date t has in its own
// location. Booking and issue dates are stored this way.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *TimeEntry) BeforeSave(*gorm.DB) error {
	e.SpentOn = CalendarDate(e.SpentOn)
	return nil
}

func (e *CostEntry) BeforeSave(*gorm.DB) error {
	e.SpentOn = CalendarDate(e.SpentOn)
	return nil
}

func costTypeName(ct *CostType, id uint) string {
	if ct != nil && ct.Name != "" {
		return ct.Name
	}
	return strconv.FormatUint(uint64(id), 10)
}
