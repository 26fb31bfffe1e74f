package model

import "time"

// Schedule is a named weekly occupancy schedule.
type Schedule struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// Associations
	Days []ScheduleDay `gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE" json:"days"`
}

// ScheduleDay is one weekday's occupancy window within a schedule. The
// window is expressed in minutes after local midnight, inclusive start and
// exclusive end. Weekday follows time.Weekday (Sunday = 0).
type ScheduleDay struct {
	ID          int64 `gorm:"primaryKey" json:"id"`
	ScheduleID  int64 `gorm:"index;not null" json:"-"`
	Weekday     int   `gorm:"not null" json:"weekday"`
	Enabled     bool  `gorm:"not null" json:"enabled"`
	StartMinute int   `gorm:"not null" json:"start_minute"`
	EndMinute   int   `gorm:"not null" json:"end_minute"`
}

// Holiday forces a calendar date to unoccupied regardless of the weekly
// schedule. Date is the local date in YYYY-MM-DD form.
type Holiday struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Name      string    `gorm:"size:128" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
