package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/servicecoinrwb/BAS-System/config"
	"github.com/servicecoinrwb/BAS-System/internal/actuators"
	"github.com/servicecoinrwb/BAS-System/internal/control"
	"github.com/servicecoinrwb/BAS-System/internal/metrics"
	"github.com/servicecoinrwb/BAS-System/internal/model"
	"github.com/servicecoinrwb/BAS-System/internal/notify"
	"github.com/servicecoinrwb/BAS-System/internal/schedule"
	"github.com/servicecoinrwb/BAS-System/internal/sensors"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// Operator-facing state labels.
const (
	StateEmergencyStop = "EMERGENCY STOP"
	StateFanFailure    = "FAN FAILURE"
	StateCooling       = "COOLING"
	StateEconomizer    = "ECONOMIZER"
	StateHeating       = "HEATING"
	StateFanOnly       = "FAN ONLY"
	StateOff           = "OFF"
)

// Human-readable alarm messages by code.
var alarmMessages = map[string]string{
	control.AlarmFanFail:          "Supply fan failure: no airflow while commanded on",
	control.AlarmLowDischargeTemp: "Low discharge air temperature",
}

// StatePublisher receives each unit's scan result. The MQTT client
// implements it; a nil publisher disables publishing.
type StatePublisher interface {
	PublishState(unitID string, payload any) error
}

// Observer is called by the simulator-backed sources after each actuation.
type simObserver interface {
	Observe(out control.Outputs)
}

// unitRuntime is the engine's per-unit cross-scan state. The scan loop is
// the sole writer; API reads go through the service mutex.
type unitRuntime struct {
	cfg       config.UnitConfig
	source    sensors.Source
	params    control.Params
	overrides control.Overrides
	state     control.State
	alarms    control.Alarms
	outputs   control.Outputs
	snapshot  control.Snapshot
	trace     control.Trace
	label     string
	lastScan  time.Time
	lastTrend time.Time
	haveScan  bool
}

// Service runs the periodic control scan over every configured unit and
// owns all runtime-adjustable state (setpoints, overrides, emergency stop).
type Service struct {
	cfg       *config.Config
	store     store.Store
	resolver  *schedule.Resolver
	bus       actuators.Bus
	publisher StatePublisher
	pool      *notify.WorkerPool

	mu    sync.RWMutex
	units map[string]*unitRuntime
	order []string
	estop bool
}

// NewService wires the scan loop. sources must hold one sensor source per
// configured unit; publisher and pool may be nil.
func NewService(cfg *config.Config, s store.Store, resolver *schedule.Resolver, srcs map[string]sensors.Source, bus actuators.Bus, publisher StatePublisher, pool *notify.WorkerPool) (*Service, error) {
	svc := &Service{
		cfg:       cfg,
		store:     s,
		resolver:  resolver,
		bus:       bus,
		publisher: publisher,
		pool:      pool,
		units:     make(map[string]*unitRuntime, len(cfg.Units)),
	}
	params := cfg.Control.Params()
	for _, uc := range cfg.Units {
		src, ok := srcs[uc.ID]
		if !ok {
			return nil, fmt.Errorf("no sensor source for unit %s", uc.ID)
		}
		svc.units[uc.ID] = &unitRuntime{
			cfg:    uc,
			source: src,
			params: params,
			state:  control.NewState(),
			label:  StateOff,
		}
		svc.order = append(svc.order, uc.ID)
	}
	return svc, nil
}

// Bootstrap syncs configured units into the database and seeds missing
// schedules. Called once before Run.
func (s *Service) Bootstrap(ctx context.Context) error {
	units := make([]model.Unit, 0, len(s.order))
	for _, id := range s.order {
		uc := s.units[id].cfg
		units = append(units, model.Unit{
			ID:           uc.ID,
			Name:         uc.Name,
			ScheduleName: uc.Schedule,
			HasCO2Sensor: uc.HasCO2Sensor,
			ModbusAddr:   uc.ModbusAddr,
		})
	}
	if err := s.store.SyncUnits(ctx, units); err != nil {
		return fmt.Errorf("failed to sync units: %w", err)
	}
	for _, id := range s.order {
		if err := s.resolver.Seed(ctx, s.units[id].cfg.Schedule); err != nil {
			return fmt.Errorf("failed to seed schedule %s: %w", s.units[id].cfg.Schedule, err)
		}
	}
	return nil
}

// Run starts the notification workers and ticks the scan loop until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.cfg.Control.ScanInterval).Int("units", len(s.order)).Msg("control engine started")

	if s.pool != nil {
		s.pool.Start(ctx)
	}

	s.ScanOnce(ctx, time.Now().UTC())

	timer := time.NewTimer(s.cfg.Control.ScanInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("control engine shutting down")
			return
		case <-timer.C:
			s.ScanOnce(ctx, time.Now().UTC())
			timer.Reset(s.cfg.Control.ScanInterval)
		}
	}
}

// ScanOnce performs one control scan for every unit at the given instant.
func (s *Service) ScanOnce(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	estop := s.estop
	for _, id := range s.order {
		s.scanUnit(ctx, s.units[id], estop, now)
	}
}

// scanUnit runs the control pipeline for one unit and handles everything
// that hangs off the result: actuation, publishing, alarm bookkeeping,
// metrics, and trending. Caller holds the service mutex.
func (s *Service) scanUnit(ctx context.Context, rt *unitRuntime, estop bool, now time.Time) {
	snap, err := rt.source.Snapshot(now)
	if err != nil {
		log.Warn().Err(err).Str("unit", rt.cfg.ID).Msg("no sensor snapshot, skipping scan")
		return
	}

	sched := s.resolver.Resolve(ctx, rt.cfg.Schedule, now)
	in := control.Inputs{
		Snapshot:      snap,
		Schedule:      sched,
		EmergencyStop: estop,
		Overrides:     rt.overrides,
		Params:        rt.params,
	}
	out, next, alarms, trace := control.ScanTrace(in, rt.state)

	if err := s.bus.Apply(byte(rt.cfg.ModbusAddr), out); err != nil {
		log.Error().Err(err).Str("unit", rt.cfg.ID).Msg("failed to apply outputs")
	}
	if obs, ok := rt.source.(simObserver); ok {
		obs.Observe(out)
	}

	s.recordAlarmTransitions(ctx, rt, alarms, now)

	firstScan := !rt.haveScan
	rt.state = next
	rt.alarms = alarms
	rt.outputs = out
	rt.snapshot = snap
	rt.trace = trace
	rt.label = stateLabel(estop, alarms, trace, out)
	rt.lastScan = now
	rt.haveScan = true

	metrics.ObserveScan(rt.cfg.ID, snap, out)

	if s.publisher != nil {
		if err := s.publisher.PublishState(rt.cfg.ID, s.statePayload(rt)); err != nil {
			log.Warn().Err(err).Str("unit", rt.cfg.ID).Msg("failed to publish state")
		}
	}

	if firstScan || now.Sub(rt.lastTrend) >= s.cfg.Control.TrendInterval {
		rt.lastTrend = now
		sample := &model.TrendSample{
			UnitID:        rt.cfg.ID,
			At:            now,
			ZoneTemp:      snap.ZoneTemp,
			OutdoorTemp:   snap.OutdoorTemp,
			DischargeTemp: snap.DischargeTemp,
			CO2PPM:        snap.CO2PPM,
			Fan:           out.Fan,
			Compressor:    out.Compressor,
			Heat:          out.Heat,
			Damper:        out.Damper,
			State:         rt.label,
		}
		if err := s.store.AppendTrend(ctx, sample); err != nil {
			log.Warn().Err(err).Str("unit", rt.cfg.ID).Msg("failed to append trend sample")
		}
	}
}

// recordAlarmTransitions diffs the scan's alarm set against the previous
// scan's and persists, logs, counts, and dispatches each edge.
func (s *Service) recordAlarmTransitions(ctx context.Context, rt *unitRuntime, alarms control.Alarms, now time.Time) {
	transitions := []struct {
		code    string
		was, is bool
	}{
		{control.AlarmFanFail, rt.alarms.FanFail, alarms.FanFail},
		{control.AlarmLowDischargeTemp, rt.alarms.LowDischargeTemp, alarms.LowDischargeTemp},
	}

	for _, tr := range transitions {
		switch {
		case tr.is && !tr.was:
			s.raiseAlarm(ctx, rt, tr.code, now)
		case !tr.is && tr.was:
			s.clearAlarm(ctx, rt, tr.code, now)
		}
	}
}

func (s *Service) raiseAlarm(ctx context.Context, rt *unitRuntime, code string, now time.Time) {
	msg := alarmMessages[code]
	log.Warn().Str("unit", rt.cfg.ID).Str("alarm", code).Msg("alarm raised")

	if _, created, err := s.store.OpenAlarm(ctx, rt.cfg.ID, code, msg, now); err != nil {
		log.Error().Err(err).Str("unit", rt.cfg.ID).Str("alarm", code).Msg("failed to persist alarm")
	} else if created {
		metrics.AlarmRaised(code)
		s.appendLog(ctx, model.LogKindAlarm, rt.cfg.ID, msg, now)
		if s.pool != nil {
			s.pool.Dispatch(notify.Job{
				UnitID:   rt.cfg.ID,
				UnitName: rt.cfg.Name,
				Code:     code,
				Message:  msg,
			})
		}
	}
}

func (s *Service) clearAlarm(ctx context.Context, rt *unitRuntime, code string, now time.Time) {
	log.Info().Str("unit", rt.cfg.ID).Str("alarm", code).Msg("alarm cleared")
	if err := s.store.CloseAlarm(ctx, rt.cfg.ID, code, now); err != nil {
		log.Error().Err(err).Str("unit", rt.cfg.ID).Str("alarm", code).Msg("failed to clear alarm")
		return
	}
	metrics.AlarmCleared(code)
	s.appendLog(ctx, model.LogKindNormal, rt.cfg.ID, alarmMessages[code]+" returned to normal", now)
}

func (s *Service) appendLog(ctx context.Context, kind, unitID, msg string, now time.Time) {
	entry := &model.LogEntry{At: now, Kind: kind, UnitID: unitID, Message: msg}
	if err := s.store.AppendLog(ctx, entry, s.cfg.Control.LogCap); err != nil {
		log.Warn().Err(err).Msg("failed to append log entry")
	}
}

// stateLabel summarizes a scan for operators, highest-priority condition
// first.
func stateLabel(estop bool, alarms control.Alarms, trace control.Trace, out control.Outputs) string {
	switch {
	case estop:
		return StateEmergencyStop
	case alarms.FanFail:
		return StateFanFailure
	case trace.Cooling == control.CoolingEconomizer:
		return StateEconomizer
	case out.Compressor:
		return StateCooling
	case out.Heat:
		return StateHeating
	case out.Fan:
		return StateFanOnly
	default:
		return StateOff
	}
}
