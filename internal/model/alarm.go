package model

import "time"

// AlarmEvent is one raise-to-clear lifecycle of an alarm on a unit. An
// event with a nil ClearedAt is still active; acknowledgment is an operator
// annotation and does not clear the event.
type AlarmEvent struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UnitID    string     `gorm:"index;size:64;not null" json:"unit_id"`
	Code      string     `gorm:"index;size:64;not null" json:"code"`
	Message   string     `gorm:"size:256;not null" json:"message"`
	RaisedAt  time.Time  `gorm:"not null" json:"raised_at"`
	ClearedAt *time.Time `gorm:"index" json:"cleared_at"`
	AckedAt   *time.Time `json:"acked_at"`
}

// Active reports whether the event has not yet cleared.
func (e AlarmEvent) Active() bool {
	return e.ClearedAt == nil
}
