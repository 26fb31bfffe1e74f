package model

import "time"

// Log entry kinds.
const (
	LogKindAlarm  = "ALARM"
	LogKindNormal = "NORMAL"
	LogKindAudit  = "AUDIT"
)

// LogEntry is one line of the operator-facing event log. The store prunes
// the table to a configured cap, newest entries kept.
type LogEntry struct {
	ID      int64     `gorm:"primaryKey" json:"id"`
	At      time.Time `gorm:"index;not null" json:"at"`
	Kind    string    `gorm:"size:16;not null" json:"kind"`
	UnitID  string    `gorm:"size:64" json:"unit_id"`
	Message string    `gorm:"size:256;not null" json:"message"`
}
