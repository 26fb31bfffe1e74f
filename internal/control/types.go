package control

import "time"

// OccupancyState is the effective occupancy mode for a scan.
type OccupancyState string

const (
	Occupied   OccupancyState = "OCCUPIED"
	Unoccupied OccupancyState = "UNOCCUPIED"
)

// Demand is the thermal demand classification for a scan.
type Demand string

const (
	DemandNone Demand = "NONE"
	DemandCool Demand = "COOL"
	DemandHeat Demand = "HEAT"
)

// CoolingSource identifies which cooling source, if any, serves an active
// cooling demand.
type CoolingSource string

const (
	CoolingOff        CoolingSource = "OFF"
	CoolingEconomizer CoolingSource = "ECONOMIZER"
	CoolingMechanical CoolingSource = "MECHANICAL"
)

// FanState is the supply-fan supervisor's position in its state machine.
type FanState string

const (
	FanWatching FanState = "WATCHING"
	FanTiming   FanState = "TIMING"
	FanFailed   FanState = "FAILED"
)

// Snapshot is one atomic read of every sensor a scan consumes. All values
// belong to the same instant; later pipeline stages never re-read hardware.
// CO2PPM is nil when the unit has no CO2 sensor.
type Snapshot struct {
	ZoneTemp      float64
	OutdoorTemp   float64
	DischargeTemp float64
	CO2PPM        *float64
	FanStatus     bool
	At            time.Time
}

// ScheduleInput is the occupancy collaborator's verdict for the scan instant.
type ScheduleInput struct {
	ScheduledOccupied bool
	HolidayActive     bool
}

// Overrides pins individual outputs to operator-chosen values. A nil field
// leaves the computed value alone. Overrides take effect after the fan
// supervisor and before the safety layer, so an operator can force a relay
// past a fan-failure latch but never past an emergency stop.
type Overrides struct {
	Fan        *bool
	Compressor *bool
	Heat       *bool
	Damper     *float64
}

// Any reports whether at least one output is overridden.
func (o Overrides) Any() bool {
	return o.Fan != nil || o.Compressor != nil || o.Heat != nil || o.Damper != nil
}

// Inputs is everything a single scan reads. Snapshot.At is the scan's notion
// of "now"; the pipeline never consults the wall clock itself.
type Inputs struct {
	Snapshot      Snapshot
	Schedule      ScheduleInput
	EmergencyStop bool
	Overrides     Overrides
	Params        Params
}

// Outputs is the complete actuator word a scan produces. Damper is percent
// open, 0 to 100. The zero value is the all-off safe state.
type Outputs struct {
	Fan        bool    `json:"fan"`
	Compressor bool    `json:"compressor"`
	Heat       bool    `json:"heat"`
	Damper     float64 `json:"damper"`
}

// State is the only information carried from one scan to the next: the fan
// supervisor's position and, while Timing, when the command/status mismatch
// was first observed.
type State struct {
	Fan              FanState
	FanMismatchSince time.Time
}

// NewState returns the initial cross-scan state.
func NewState() State {
	return State{Fan: FanWatching}
}

// Alarms is the alarm set computed by a scan. FanFail latches with the
// supervisor's Failed state; LowDischargeTemp tracks the freeze condition
// level and clears on its own.
type Alarms struct {
	FanFail          bool
	LowDischargeTemp bool
}

// Codes lists the active alarms as stable identifiers.
func (a Alarms) Codes() []string {
	var codes []string
	if a.FanFail {
		codes = append(codes, AlarmFanFail)
	}
	if a.LowDischargeTemp {
		codes = append(codes, AlarmLowDischargeTemp)
	}
	return codes
}

// Alarm code identifiers used in persistence, push payloads, and MQTT.
const (
	AlarmFanFail          = "FAN_FAIL"
	AlarmLowDischargeTemp = "LOW_DISCHARGE_TEMP"
)

// Trace reports the intermediate decisions of a scan for display and
// trending. It adds nothing to the control outcome.
type Trace struct {
	Occupancy OccupancyState
	Setpoints Setpoints
	Demand    Demand
	Cooling   CoolingSource
}
