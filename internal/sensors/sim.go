package sensors

import (
	"math"
	"sync"
	"time"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

// Per-scan zone temperature deltas for the simulated plant: a slow ambient
// drift upward, pulled down while cooling runs and up while heat runs.
const (
	simDrift   = 0.05
	simCooling = -0.3
	simHeating = 0.4
)

// Simulator is a bench/demo plant model. Each snapshot advances the zone
// temperature based on the last outputs it observed, and the fan status
// tracks the fan command, so a simulated unit behaves like healthy
// hardware.
type Simulator struct {
	mu      sync.Mutex
	zone    float64
	outdoor float64
	disch   float64
	co2     *float64
	lastOut control.Outputs
}

// NewSimulator creates a simulated plant. withCO2 adds a CO2 sensor
// starting at a comfortable reading.
func NewSimulator(zoneTemp, outdoorTemp float64, withCO2 bool) *Simulator {
	s := &Simulator{
		zone:    zoneTemp,
		outdoor: outdoorTemp,
		disch:   55.0,
	}
	if withCO2 {
		co2 := 450.0
		s.co2 = &co2
	}
	return s
}

// Snapshot advances the plant one step and returns the new readings.
func (s *Simulator) Snapshot(now time.Time) (control.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delta := simDrift
	if s.lastOut.Compressor {
		delta += simCooling
	}
	if s.lastOut.Heat {
		delta += simHeating
	}
	s.zone = math.Round((s.zone+delta)*10) / 10

	// Discharge air follows the active stage.
	switch {
	case s.lastOut.Compressor:
		s.disch = 55.0
	case s.lastOut.Heat:
		s.disch = 95.0
	default:
		s.disch = s.zone
	}

	snap := control.Snapshot{
		ZoneTemp:      s.zone,
		OutdoorTemp:   s.outdoor,
		DischargeTemp: s.disch,
		FanStatus:     s.lastOut.Fan,
		At:            now,
	}
	if s.co2 != nil {
		co2 := *s.co2
		snap.CO2PPM = &co2
	}
	return snap, nil
}

// Observe records the outputs the engine just commanded so the next
// snapshot reflects them.
func (s *Simulator) Observe(out control.Outputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastOut = out
}

// SetOutdoor adjusts the simulated outdoor temperature.
func (s *Simulator) SetOutdoor(temp float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outdoor = temp
}

// SetCO2 adjusts the simulated CO2 reading; no-op for units without the
// sensor.
func (s *Simulator) SetCO2(ppm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.co2 != nil {
		*s.co2 = ppm
	}
}
