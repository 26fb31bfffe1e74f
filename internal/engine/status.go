package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/servicecoinrwb/BAS-System/internal/control"
	"github.com/servicecoinrwb/BAS-System/internal/model"
)

// ErrUnknownUnit is returned for operations naming a unit the engine does
// not run.
var ErrUnknownUnit = fmt.Errorf("engine: unknown unit")

// UnitStatus is one unit's live state as of its last scan.
type UnitStatus struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	State         string            `json:"state"`
	Occupied      bool              `json:"occupied"`
	Demand        string            `json:"demand"`
	Setpoints     control.Setpoints `json:"setpoints"`
	ZoneTemp      float64           `json:"zone_temp"`
	OutdoorTemp   float64           `json:"outdoor_temp"`
	DischargeTemp float64           `json:"discharge_temp"`
	CO2PPM        *float64          `json:"co2_ppm,omitempty"`
	FanStatus     bool              `json:"fan_status"`
	Outputs       control.Outputs   `json:"outputs"`
	Alarms        []string          `json:"alarms"`
	Overrides     map[string]any    `json:"overrides"`
	LastScan      time.Time         `json:"last_scan"`
}

// Status reports the emergency-stop state and every unit's live status.
func (s *Service) Status() (bool, []UnitStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]UnitStatus, 0, len(s.order))
	for _, id := range s.order {
		statuses = append(statuses, s.unitStatusLocked(s.units[id]))
	}
	return s.estop, statuses
}

// Unit reports one unit's live status.
func (s *Service) Unit(unitID string) (UnitStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rt, ok := s.units[unitID]
	if !ok {
		return UnitStatus{}, ErrUnknownUnit
	}
	return s.unitStatusLocked(rt), nil
}

func (s *Service) unitStatusLocked(rt *unitRuntime) UnitStatus {
	st := UnitStatus{
		ID:            rt.cfg.ID,
		Name:          rt.cfg.Name,
		State:         rt.label,
		Occupied:      rt.trace.Occupancy == control.Occupied,
		Demand:        string(rt.trace.Demand),
		Setpoints:     rt.trace.Setpoints,
		ZoneTemp:      rt.snapshot.ZoneTemp,
		OutdoorTemp:   rt.snapshot.OutdoorTemp,
		DischargeTemp: rt.snapshot.DischargeTemp,
		CO2PPM:        rt.snapshot.CO2PPM,
		FanStatus:     rt.snapshot.FanStatus,
		Outputs:       rt.outputs,
		Alarms:        rt.alarms.Codes(),
		Overrides:     overrideMap(rt.overrides),
		LastScan:      rt.lastScan,
	}
	if st.Alarms == nil {
		st.Alarms = []string{}
	}
	return st
}

// statePayload is the MQTT state document; a trimmed UnitStatus. Caller
// holds the mutex.
func (s *Service) statePayload(rt *unitRuntime) any {
	return s.unitStatusLocked(rt)
}

func overrideMap(o control.Overrides) map[string]any {
	m := make(map[string]any)
	if o.Fan != nil {
		m["fan"] = *o.Fan
	}
	if o.Compressor != nil {
		m["cool"] = *o.Compressor
	}
	if o.Heat != nil {
		m["heat"] = *o.Heat
	}
	if o.Damper != nil {
		m["damper"] = *o.Damper
	}
	return m
}

// SetEmergencyStop asserts or releases the process-wide emergency stop.
// The new value takes effect on the next scan of every unit.
func (s *Service) SetEmergencyStop(ctx context.Context, asserted bool) {
	s.mu.Lock()
	changed := s.estop != asserted
	s.estop = asserted
	s.mu.Unlock()

	if !changed {
		return
	}
	msg := "Emergency stop released"
	if asserted {
		msg = "Emergency stop asserted"
	}
	s.appendLog(ctx, model.LogKindAudit, "", msg, time.Now().UTC())
}

// EmergencyStopped reports the current emergency-stop state.
func (s *Service) EmergencyStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estop
}

// Setpoint keys accepted by SetSetpoint.
const (
	SetpointOccCool   = "occ_cool"
	SetpointOccHeat   = "occ_heat"
	SetpointUnoccCool = "unocc_cool"
	SetpointUnoccHeat = "unocc_heat"
)

// SetSetpoint adjusts one of a unit's four setpoints at runtime. The
// change is rejected if it would leave the profile invalid, and applies
// from the next scan. Config still provides the boot values.
func (s *Service) SetSetpoint(ctx context.Context, unitID, key string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.units[unitID]
	if !ok {
		return ErrUnknownUnit
	}

	candidate := rt.params
	switch key {
	case SetpointOccCool:
		candidate.Occupied.Cooling = value
	case SetpointOccHeat:
		candidate.Occupied.Heating = value
	case SetpointUnoccCool:
		candidate.Unoccupied.Cooling = value
	case SetpointUnoccHeat:
		candidate.Unoccupied.Heating = value
	default:
		return fmt.Errorf("unknown setpoint key %q", key)
	}
	if err := candidate.Validate(); err != nil {
		return fmt.Errorf("rejected setpoint change: %w", err)
	}
	rt.params = candidate

	s.appendLog(ctx, model.LogKindAudit, unitID,
		fmt.Sprintf("Setpoint %s changed to %.1f", key, value), time.Now().UTC())
	return nil
}

// Output keys accepted by SetOverride.
const (
	OutputFan    = "fan"
	OutputCool   = "cool"
	OutputHeat   = "heat"
	OutputDamper = "damper"
)

// SetOverride pins one output to a fixed value, or releases the pin when
// value is nil. Binary outputs take a bool, the damper takes a number.
func (s *Service) SetOverride(ctx context.Context, unitID, output string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.units[unitID]
	if !ok {
		return ErrUnknownUnit
	}

	switch output {
	case OutputFan, OutputCool, OutputHeat:
		var pin *bool
		if value != nil {
			b, ok := value.(bool)
			if !ok {
				return fmt.Errorf("override %s wants a boolean, got %T", output, value)
			}
			pin = &b
		}
		switch output {
		case OutputFan:
			rt.overrides.Fan = pin
		case OutputCool:
			rt.overrides.Compressor = pin
		case OutputHeat:
			rt.overrides.Heat = pin
		}
	case OutputDamper:
		var pin *float64
		if value != nil {
			f, ok := value.(float64)
			if !ok {
				return fmt.Errorf("override damper wants a number, got %T", value)
			}
			if f < 0 || f > 100 {
				return fmt.Errorf("damper override must be within 0..100, got %.1f", f)
			}
			pin = &f
		}
		rt.overrides.Damper = pin
	default:
		return fmt.Errorf("unknown output %q", output)
	}

	action := "released"
	if value != nil {
		action = fmt.Sprintf("forced to %v", value)
	}
	s.appendLog(ctx, model.LogKindAudit, unitID,
		fmt.Sprintf("Override on %s %s", output, action), time.Now().UTC())
	return nil
}
