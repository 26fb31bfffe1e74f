package store

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servicecoinrwb/BAS-System/internal/model"
)

// newMockDB creates a sqlmock-backed gorm connection for query-shape tests.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteStore creates an isolated in-memory database for behavior tests.
func newSQLiteStore(t *testing.T) Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Unit{},
		&model.Schedule{},
		&model.ScheduleDay{},
		&model.Holiday{},
		&model.AlarmEvent{},
		&model.TrendSample{},
		&model.LogEntry{},
		&model.PushSubscription{},
	))
	return NewGormStore(db)
}

func TestIsHoliday(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "holidays" WHERE date = $1`)).
		WithArgs("2026-12-25").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	isHoliday, err := s.IsHoliday(context.Background(), "2026-12-25")
	require.NoError(t, err)
	assert.True(t, isHoliday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionsForUnit(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewGormStore(db)

	mock.ExpectQuery(`JOIN subscription_unit_mapping`).
		WithArgs("rtu-1").
		WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth"}).
			AddRow("https://push.example/abc", "key", "auth"))

	subs, err := s.SubscriptionsForUnit(context.Background(), "rtu-1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://push.example/abc", subs[0].Endpoint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlarmLifecycle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	raisedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	// First raise creates a row.
	event, created, err := s.OpenAlarm(ctx, "rtu-1", "FAN_FAIL", "supply fan failure", raisedAt)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, event.Active())

	// Re-raising while open folds into the existing event.
	again, created, err := s.OpenAlarm(ctx, "rtu-1", "FAN_FAIL", "supply fan failure", raisedAt.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, event.ID, again.ID)

	active, err := s.ListAlarms(ctx, "rtu-1", false, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// Acknowledge keeps the event open and is idempotent.
	require.NoError(t, s.AckAlarm(ctx, event.ID, raisedAt.Add(2*time.Second)))
	require.NoError(t, s.AckAlarm(ctx, event.ID, raisedAt.Add(time.Minute)))

	all, err := s.ListAlarms(ctx, "rtu-1", true, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].AckedAt)
	assert.Equal(t, raisedAt.Add(2*time.Second).Unix(), all[0].AckedAt.Unix())

	// Clearing closes the event; a later raise opens a fresh one.
	clearedAt := raisedAt.Add(time.Hour)
	require.NoError(t, s.CloseAlarm(ctx, "rtu-1", "FAN_FAIL", clearedAt))

	active, err = s.ListAlarms(ctx, "rtu-1", false, 0)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, created, err = s.OpenAlarm(ctx, "rtu-1", "FAN_FAIL", "supply fan failure", clearedAt.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, created)

	all, err = s.ListAlarms(ctx, "rtu-1", true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAckAlarmUnknownID(t *testing.T) {
	s := newSQLiteStore(t)
	err := s.AckAlarm(context.Background(), 9999, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveScheduleReplacesDays(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	sched := &model.Schedule{
		Name: "office",
		Days: []model.ScheduleDay{
			{Weekday: 1, Enabled: true, StartMinute: 8 * 60, EndMinute: 18 * 60},
			{Weekday: 2, Enabled: true, StartMinute: 8 * 60, EndMinute: 18 * 60},
		},
	}
	require.NoError(t, s.SaveSchedule(ctx, sched))

	// Replace with a single shorter day.
	replacement := &model.Schedule{
		Name: "office",
		Days: []model.ScheduleDay{
			{Weekday: 1, Enabled: true, StartMinute: 9 * 60, EndMinute: 17 * 60},
		},
	}
	require.NoError(t, s.SaveSchedule(ctx, replacement))

	got, err := s.GetSchedule(ctx, "office")
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, 9*60, got.Days[0].StartMinute)
	assert.Equal(t, 17*60, got.Days[0].EndMinute)

	_, err = s.GetSchedule(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendLogPrunesToCap(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		entry := &model.LogEntry{
			At:      time.Now().UTC(),
			Kind:    model.LogKindAudit,
			Message: fmt.Sprintf("entry %d", i),
		}
		require.NoError(t, s.AppendLog(ctx, entry, 5))
	}

	entries, err := s.ListLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	// Newest first, oldest two pruned.
	assert.Equal(t, "entry 6", entries[0].Message)
	assert.Equal(t, "entry 2", entries[4].Message)
}

func TestHolidays(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutHoliday(ctx, "2026-07-04", "Independence Day"))
	require.NoError(t, s.PutHoliday(ctx, "2026-07-04", "July 4th")) // rename via upsert

	holidays, err := s.ListHolidays(ctx)
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "July 4th", holidays[0].Name)

	isHoliday, err := s.IsHoliday(ctx, "2026-07-04")
	require.NoError(t, err)
	assert.True(t, isHoliday)

	require.NoError(t, s.DeleteHoliday(ctx, "2026-07-04"))
	assert.ErrorIs(t, s.DeleteHoliday(ctx, "2026-07-04"), ErrNotFound)
}
