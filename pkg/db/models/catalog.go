package models

import "time"

// Project groups issues and bookings
type Project struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"type:text;not null"`
	Identifier string `gorm:"type:text;not null;uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// User books entries and authors issues. The anonymous user never owns bookings.
type User struct {
	ID        uint   `gorm:"primaryKey"`
	Login     string `gorm:"type:text;not null;uniqueIndex"`
	Firstname string `gorm:"type:text"`
	Lastname  string `gorm:"type:text"`
	Anonymous bool   `gorm:"default:false"`
	Active    bool   `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the full name, falling back to the login
func (u *User) DisplayName() string {
	switch {
	case u.Firstname != "" && u.Lastname != "":
		return u.Firstname + " " + u.Lastname
	case u.Lastname != "":
		return u.Lastname
	case u.Firstname != "":
		return u.Firstname
	}
	return u.Login
}

// CostType classifies bookings (labor, material, travel...)
type CostType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null;uniqueIndex"`
	Unit string `gorm:"type:text"`
}

// Activity is the kind of work a time entry books (TimeEntryActivity)
type Activity struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null;uniqueIndex"`
}

type Tracker struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"type:text;not null;uniqueIndex"`
}

// IssuePriority orders issues by urgency
type IssuePriority struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `gorm:"type:text;not null;uniqueIndex"`
	Position int    `gorm:"default:0"`
}

type IssueCategory struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"type:text;not null"`
}

// Version is a project milestone an issue can target
type Version struct {
	ID        uint   `gorm:"primaryKey"`
	ProjectID uint   `gorm:"not null;index"`
	Name      string `gorm:"type:text;not null"`
}
