package models

import (
	"time"

	"gorm.io/gorm"
)

// Issue represents the tracker item an entry may be booked against.
// Only the columns read by cost queries are modelled.
type Issue struct {
	ID             uint   `gorm:"primaryKey"`
	ProjectID      uint   `gorm:"not null;index"`
	TrackerID      uint   `gorm:"not null;index"`
	PriorityID     uint   `gorm:"not null;index"`
	StatusID       uint   `gorm:"not null;index"`
	AuthorID       uint   `gorm:"not null;index"`
	AssignedToID   *uint  `gorm:"index"`
	CategoryID     *uint  `gorm:"index"`
	FixedVersionID *uint  `gorm:"index"`
	Subject        string `gorm:"type:text;not null"`
	StartDate      *time.Time
	DueDate        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	// Relationships
	Status *IssueStatus `gorm:"foreignKey:StatusID"`
}

func (i *Issue) BeforeSave(*gorm.DB) error {
	i.StartDate = calendarDatePtr(i.StartDate)
	i.DueDate = calendarDatePtr(i.DueDate)
	return nil
}

func calendarDatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := CalendarDate(*t)
	return &d
}

// IssueStatus is a workflow state, closed states mark finished issues
type IssueStatus struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null;uniqueIndex"`
	IsClosed bool   `gorm:"default:false"`
}
