package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/servicecoinrwb/BAS-System/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	SyncUnits(ctx context.Context, units []model.Unit) error
	ListUnits(ctx context.Context) ([]model.Unit, error)

	GetSchedule(ctx context.Context, name string) (*model.Schedule, error)
	ListSchedules(ctx context.Context) ([]model.Schedule, error)
	SaveSchedule(ctx context.Context, sched *model.Schedule) error
	DeleteSchedule(ctx context.Context, name string) error

	ListHolidays(ctx context.Context) ([]model.Holiday, error)
	PutHoliday(ctx context.Context, date, name string) error
	DeleteHoliday(ctx context.Context, date string) error
	IsHoliday(ctx context.Context, date string) (bool, error)

	OpenAlarm(ctx context.Context, unitID, code, message string, at time.Time) (*model.AlarmEvent, bool, error)
	CloseAlarm(ctx context.Context, unitID, code string, at time.Time) error
	AckAlarm(ctx context.Context, id int64, at time.Time) error
	ListAlarms(ctx context.Context, unitID string, includeCleared bool, limit int) ([]model.AlarmEvent, error)

	AppendTrend(ctx context.Context, sample *model.TrendSample) error
	QueryTrends(ctx context.Context, unitID string, since time.Time, limit int) ([]model.TrendSample, error)

	AppendLog(ctx context.Context, entry *model.LogEntry, cap int) error
	ListLogs(ctx context.Context, limit int) ([]model.LogEntry, error)

	SubscriptionsForUnit(ctx context.Context, unitID string) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// SyncUnits upserts the configured units so the database mirrors the config
// file after boot. Units removed from the config are kept; their history
// stays queryable.
func (s *gormStore) SyncUnits(ctx context.Context, units []model.Unit) error {
	if len(units) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "schedule_name", "has_co2_sensor", "modbus_addr", "updated_at"}),
	}).Create(&units).Error
}

func (s *gormStore) ListUnits(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	if err := s.db.WithContext(ctx).Order("id").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (s *gormStore) GetSchedule(ctx context.Context, name string) (*model.Schedule, error) {
	var sched model.Schedule
	err := s.db.WithContext(ctx).Preload("Days").First(&sched, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *gormStore) ListSchedules(ctx context.Context) ([]model.Schedule, error) {
	var scheds []model.Schedule
	if err := s.db.WithContext(ctx).Preload("Days").Order("name").Find(&scheds).Error; err != nil {
		return nil, err
	}
	return scheds, nil
}

// SaveSchedule creates or replaces a schedule and its day rows in one
// transaction so the resolver never observes a half-written week.
func (s *gormStore) SaveSchedule(ctx context.Context, sched *model.Schedule) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Schedule
		err := tx.First(&existing, "name = ?", sched.Name).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(sched).Error
		case err != nil:
			return err
		}

		sched.ID = existing.ID
		if err := tx.Where("schedule_id = ?", existing.ID).Delete(&model.ScheduleDay{}).Error; err != nil {
			return fmt.Errorf("failed to clear schedule days: %w", err)
		}
		for i := range sched.Days {
			sched.Days[i].ID = 0
			sched.Days[i].ScheduleID = existing.ID
		}
		if len(sched.Days) > 0 {
			if err := tx.Create(&sched.Days).Error; err != nil {
				return fmt.Errorf("failed to write schedule days: %w", err)
			}
		}
		return tx.Model(&model.Schedule{}).Where("id = ?", existing.ID).Update("updated_at", time.Now().UTC()).Error
	})
}

func (s *gormStore) DeleteSchedule(ctx context.Context, name string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sched model.Schedule
		err := tx.First(&sched, "name = ?", name).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := tx.Where("schedule_id = ?", sched.ID).Delete(&model.ScheduleDay{}).Error; err != nil {
			return err
		}
		return tx.Delete(&sched).Error
	})
}

func (s *gormStore) ListHolidays(ctx context.Context) ([]model.Holiday, error) {
	var holidays []model.Holiday
	if err := s.db.WithContext(ctx).Order("date").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func (s *gormStore) PutHoliday(ctx context.Context, date, name string) error {
	holiday := model.Holiday{Date: date, Name: name}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&holiday).Error
}

func (s *gormStore) DeleteHoliday(ctx context.Context, date string) error {
	res := s.db.WithContext(ctx).Where("date = ?", date).Delete(&model.Holiday{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) IsHoliday(ctx context.Context, date string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Holiday{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// OpenAlarm records a raised alarm. While an event for the same unit and
// code is still open, repeated raises are folded into it; the second return
// value reports whether a new event row was created.
func (s *gormStore) OpenAlarm(ctx context.Context, unitID, code, message string, at time.Time) (*model.AlarmEvent, bool, error) {
	var event model.AlarmEvent
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("unit_id = ? AND code = ? AND cleared_at IS NULL", unitID, code).
			Order("raised_at DESC").
			First(&event).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		event = model.AlarmEvent{UnitID: unitID, Code: code, Message: message, RaisedAt: at}
		created = true
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &event, created, nil
}

// CloseAlarm stamps every open event for the unit and code as cleared.
func (s *gormStore) CloseAlarm(ctx context.Context, unitID, code string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.AlarmEvent{}).
		Where("unit_id = ? AND code = ? AND cleared_at IS NULL", unitID, code).
		Update("cleared_at", at).Error
}

// AckAlarm is idempotent: acknowledging an already-acknowledged event keeps
// the original timestamp.
func (s *gormStore) AckAlarm(ctx context.Context, id int64, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.AlarmEvent{}).
		Where("id = ? AND acked_at IS NULL", id).
		Update("acked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.AlarmEvent{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
	}
	return nil
}

func (s *gormStore) ListAlarms(ctx context.Context, unitID string, includeCleared bool, limit int) ([]model.AlarmEvent, error) {
	q := s.db.WithContext(ctx).Model(&model.AlarmEvent{})
	if unitID != "" {
		q = q.Where("unit_id = ?", unitID)
	}
	if !includeCleared {
		q = q.Where("cleared_at IS NULL")
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var events []model.AlarmEvent
	if err := q.Order("raised_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *gormStore) AppendTrend(ctx context.Context, sample *model.TrendSample) error {
	return s.db.WithContext(ctx).Create(sample).Error
}

func (s *gormStore) QueryTrends(ctx context.Context, unitID string, since time.Time, limit int) ([]model.TrendSample, error) {
	q := s.db.WithContext(ctx).Where("unit_id = ?", unitID)
	if !since.IsZero() {
		q = q.Where("at >= ?", since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var samples []model.TrendSample
	if err := q.Order("at DESC").Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// AppendLog writes an event-log entry and prunes the table down to cap
// rows, oldest first, in the same transaction.
func (s *gormStore) AppendLog(ctx context.Context, entry *model.LogEntry, cap int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		if cap <= 0 {
			return nil
		}
		var count int64
		if err := tx.Model(&model.LogEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= int64(cap) {
			return nil
		}
		var cutoff model.LogEntry
		if err := tx.Order("id DESC").Offset(cap - 1).First(&cutoff).Error; err != nil {
			return err
		}
		return tx.Where("id < ?", cutoff.ID).Delete(&model.LogEntry{}).Error
	})
}

func (s *gormStore) ListLogs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var entries []model.LogEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *gormStore) SubscriptionsForUnit(ctx context.Context, unitID string) ([]model.PushSubscription, error) {
	var subscriptions []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_unit_mapping sm ON sm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sm.unit_id = ?", unitID).
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}
