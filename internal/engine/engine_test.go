package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/servicecoinrwb/BAS-System/config"
	"github.com/servicecoinrwb/BAS-System/internal/control"
	"github.com/servicecoinrwb/BAS-System/internal/model"
	"github.com/servicecoinrwb/BAS-System/internal/schedule"
	"github.com/servicecoinrwb/BAS-System/internal/sensors"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// stuckFanSource reports a fixed snapshot whose fan never spins up.
type stuckFanSource struct {
	snap control.Snapshot
}

func (f *stuckFanSource) Snapshot(now time.Time) (control.Snapshot, error) {
	snap := f.snap
	snap.At = now
	return snap, nil
}

// recordingBus captures every output word applied.
type recordingBus struct {
	applied []control.Outputs
}

func (b *recordingBus) Apply(_ byte, out control.Outputs) error {
	b.applied = append(b.applied, out)
	return nil
}

func (b *recordingBus) last() control.Outputs {
	return b.applied[len(b.applied)-1]
}

func newTestService(t *testing.T, src sensors.Source) (*Service, store.Store, *recordingBus) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Unit{}, &model.Schedule{}, &model.ScheduleDay{}, &model.Holiday{},
		&model.AlarmEvent{}, &model.TrendSample{}, &model.LogEntry{}, &model.PushSubscription{},
	))
	s := store.NewGormStore(db)

	cfg := &config.Config{
		Units: []config.UnitConfig{{ID: "rtu-1", Name: "RTU-1", Schedule: "default", Source: "sim", HasCO2Sensor: true}},
	}
	cfg.ApplyDefaults()

	bus := &recordingBus{}
	svc, err := NewService(cfg, s, schedule.NewResolver(s), map[string]sensors.Source{"rtu-1": src}, bus, nil, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Bootstrap(context.Background()))
	return svc, s, bus
}

// occupiedNoon is inside the default 08:00-18:00 window on a Monday.
var occupiedNoon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func TestScanOnceMechanicalCooling(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      77.0,
		OutdoorTemp:   80.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, _, bus := newTestService(t, src)

	svc.ScanOnce(context.Background(), occupiedNoon)

	out := bus.last()
	assert.True(t, out.Fan)
	assert.True(t, out.Compressor)
	assert.False(t, out.Heat)

	estop, statuses := svc.Status()
	assert.False(t, estop)
	require.Len(t, statuses, 1)
	assert.Equal(t, StateCooling, statuses[0].State)
	assert.True(t, statuses[0].Occupied)
}

func TestScanOnceEconomizer(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      77.0,
		OutdoorTemp:   50.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, _, bus := newTestService(t, src)

	svc.ScanOnce(context.Background(), occupiedNoon)

	out := bus.last()
	assert.False(t, out.Compressor)
	assert.Equal(t, 100.0, out.Damper)

	_, statuses := svc.Status()
	assert.Equal(t, StateEconomizer, statuses[0].State)
}

func TestFanFailureShutsDownAndPersistsAlarm(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      72.0,
		OutdoorTemp:   65.0,
		DischargeTemp: 55.0,
		FanStatus:     false, // commanded on while occupied, never proves airflow
	}}
	svc, s, bus := newTestService(t, src)
	ctx := context.Background()

	svc.ScanOnce(ctx, occupiedNoon)
	assert.True(t, bus.last().Fan, "fan commanded on while the supervisor is still timing")

	// One second short of the timeout: still no alarm.
	svc.ScanOnce(ctx, occupiedNoon.Add(29*time.Second))
	active, err := s.ListAlarms(ctx, "rtu-1", false, 0)
	require.NoError(t, err)
	assert.Empty(t, active)

	// At the timeout the supervisor latches: unit shut down, alarm stored.
	svc.ScanOnce(ctx, occupiedNoon.Add(30*time.Second))
	out := bus.last()
	assert.False(t, out.Fan)
	assert.False(t, out.Compressor)
	assert.False(t, out.Heat)

	active, err = s.ListAlarms(ctx, "rtu-1", false, 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, control.AlarmFanFail, active[0].Code)

	_, statuses := svc.Status()
	assert.Equal(t, StateFanFailure, statuses[0].State)

	// Holding the failure does not create duplicate events.
	svc.ScanOnce(ctx, occupiedNoon.Add(31*time.Second))
	all, err := s.ListAlarms(ctx, "rtu-1", true, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEmergencyStopForcesAllOff(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      77.0,
		OutdoorTemp:   80.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, s, bus := newTestService(t, src)
	ctx := context.Background()

	svc.SetEmergencyStop(ctx, true)
	svc.ScanOnce(ctx, occupiedNoon)

	assert.Equal(t, control.Outputs{}, bus.last())
	_, statuses := svc.Status()
	assert.Equal(t, StateEmergencyStop, statuses[0].State)

	// Releasing the stop resumes normal control on the next scan.
	svc.SetEmergencyStop(ctx, false)
	svc.ScanOnce(ctx, occupiedNoon.Add(time.Second))
	assert.True(t, bus.last().Compressor)

	logs, err := s.ListLogs(ctx, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(logs), 2)
	assert.Equal(t, "Emergency stop released", logs[0].Message)
	assert.Equal(t, "Emergency stop asserted", logs[1].Message)
}

func TestSetpointAdjustment(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      77.0,
		OutdoorTemp:   80.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, _, bus := newTestService(t, src)
	ctx := context.Background()

	// Raising the occupied cooling setpoint above the zone kills the call.
	require.NoError(t, svc.SetSetpoint(ctx, "rtu-1", SetpointOccCool, 80.0))
	svc.ScanOnce(ctx, occupiedNoon)
	assert.False(t, bus.last().Compressor)

	// An inversion is rejected and the old tuning stays in force.
	err := svc.SetSetpoint(ctx, "rtu-1", SetpointOccHeat, 81.0)
	assert.Error(t, err)

	assert.ErrorIs(t, svc.SetSetpoint(ctx, "ghost", SetpointOccCool, 75.0), ErrUnknownUnit)
}

func TestOverridePrecedence(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      72.0,
		OutdoorTemp:   65.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, _, bus := newTestService(t, src)
	ctx := context.Background()

	// Force the compressor on despite no cooling demand.
	require.NoError(t, svc.SetOverride(ctx, "rtu-1", OutputCool, true))
	svc.ScanOnce(ctx, occupiedNoon)
	assert.True(t, bus.last().Compressor)

	// Emergency stop still beats the override.
	svc.SetEmergencyStop(ctx, true)
	svc.ScanOnce(ctx, occupiedNoon.Add(time.Second))
	assert.False(t, bus.last().Compressor)
	svc.SetEmergencyStop(ctx, false)

	// Releasing the override returns control to the pipeline.
	require.NoError(t, svc.SetOverride(ctx, "rtu-1", OutputCool, nil))
	svc.ScanOnce(ctx, occupiedNoon.Add(2*time.Second))
	assert.False(t, bus.last().Compressor)

	// Type mismatches are rejected.
	assert.Error(t, svc.SetOverride(ctx, "rtu-1", OutputCool, 42.0))
	assert.Error(t, svc.SetOverride(ctx, "rtu-1", OutputDamper, true))
	assert.Error(t, svc.SetOverride(ctx, "rtu-1", OutputDamper, 150.0))
}

func TestTrendDecimation(t *testing.T) {
	src := &stuckFanSource{snap: control.Snapshot{
		ZoneTemp:      72.0,
		OutdoorTemp:   65.0,
		DischargeTemp: 55.0,
		FanStatus:     true,
	}}
	svc, s, _ := newTestService(t, src)
	ctx := context.Background()

	// First scan trends immediately; the following sub-interval scans do not.
	svc.ScanOnce(ctx, occupiedNoon)
	svc.ScanOnce(ctx, occupiedNoon.Add(1*time.Second))
	svc.ScanOnce(ctx, occupiedNoon.Add(59*time.Second))
	svc.ScanOnce(ctx, occupiedNoon.Add(60*time.Second))

	samples, err := s.QueryTrends(ctx, "rtu-1", time.Time{}, 0)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}

func TestSimulatedUnitConverges(t *testing.T) {
	sim := sensors.NewSimulator(80.0, 80.0, true)
	svc, _, _ := newTestService(t, sim)
	ctx := context.Background()

	// The plant starts hot; mechanical cooling should engage and pull the
	// zone down near the occupied cooling threshold within a few minutes
	// of simulated scans.
	for i := 0; i < 120; i++ {
		svc.ScanOnce(ctx, occupiedNoon.Add(time.Duration(i)*time.Second))
	}

	_, statuses := svc.Status()
	assert.Less(t, statuses[0].ZoneTemp, 77.0)
	assert.Greater(t, statuses[0].ZoneTemp, 74.0, "cooling cycles off inside the deadband instead of overshooting")
}
