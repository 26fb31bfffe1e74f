package control

import (
	"fmt"
	"time"
)

// SetpointProfile is a cooling/heating setpoint pair in degrees Fahrenheit.
type SetpointProfile struct {
	Cooling float64
	Heating float64
}

// Params carries every tunable the control pipeline reads. One value per
// unit; the engine may adjust it between scans but never during one.
type Params struct {
	Occupied   SetpointProfile
	Unoccupied SetpointProfile

	// Deadband is the half-width, in degrees, of the no-demand zone around
	// each setpoint.
	Deadband float64

	// EconomizerDifferential is how far below the active cooling setpoint the
	// outdoor air must be before free cooling is selected.
	EconomizerDifferential float64

	// DCVMinPosition is the occupied minimum outdoor-air damper position in
	// percent. DCVTargetPPM is the CO2 level above which the damper opens
	// further; DCVSpanPPM is how far past the target CO2 must rise before the
	// damper reaches fully open.
	DCVMinPosition float64
	DCVTargetPPM   float64
	DCVSpanPPM     float64

	// FanFailTimeout is how long a commanded-on fan may report no airflow
	// before the supervisor declares a failure.
	FanFailTimeout time.Duration

	// FreezeLimit is the discharge-air temperature below which the low
	// discharge temperature alarm is active. ShutdownOnFreeze additionally
	// forces fan, compressor, and heat off and closes the damper while the
	// condition holds.
	FreezeLimit      float64
	ShutdownOnFreeze bool
}

// DefaultParams returns the stock tuning for a packaged rooftop unit.
func DefaultParams() Params {
	return Params{
		Occupied:               SetpointProfile{Cooling: 74.0, Heating: 68.0},
		Unoccupied:             SetpointProfile{Cooling: 85.0, Heating: 60.0},
		Deadband:               2.0,
		EconomizerDifferential: 5.0,
		DCVMinPosition:         20.0,
		DCVTargetPPM:           800.0,
		DCVSpanPPM:             800.0,
		FanFailTimeout:         30 * time.Second,
		FreezeLimit:            40.0,
	}
}

// Validate rejects parameter sets that would let the pipeline demand heating
// and cooling at once or run the supervisor with a degenerate timeout.
func (p Params) Validate() error {
	if p.Deadband <= 0 {
		return fmt.Errorf("deadband must be positive, got %.1f", p.Deadband)
	}
	profiles := []struct {
		name string
		sp   SetpointProfile
	}{
		{"occupied", p.Occupied},
		{"unoccupied", p.Unoccupied},
	}
	for _, prof := range profiles {
		if prof.sp.Heating >= prof.sp.Cooling {
			return fmt.Errorf("%s heating setpoint %.1f must be below cooling setpoint %.1f", prof.name, prof.sp.Heating, prof.sp.Cooling)
		}
	}
	if p.Occupied.Cooling > p.Unoccupied.Cooling || p.Occupied.Heating < p.Unoccupied.Heating {
		return fmt.Errorf("occupied setpoints (%.1f/%.1f) must sit inside the unoccupied setback band (%.1f/%.1f)",
			p.Occupied.Cooling, p.Occupied.Heating, p.Unoccupied.Cooling, p.Unoccupied.Heating)
	}
	if p.EconomizerDifferential < 0 {
		return fmt.Errorf("economizer differential must not be negative, got %.1f", p.EconomizerDifferential)
	}
	if p.DCVMinPosition < 0 || p.DCVMinPosition > 100 {
		return fmt.Errorf("dcv minimum position must be within 0..100, got %.1f", p.DCVMinPosition)
	}
	if p.DCVTargetPPM <= 0 {
		return fmt.Errorf("dcv target ppm must be positive, got %.1f", p.DCVTargetPPM)
	}
	if p.DCVSpanPPM <= 0 {
		return fmt.Errorf("dcv span ppm must be positive, got %.1f", p.DCVSpanPPM)
	}
	if p.FanFailTimeout <= 0 {
		return fmt.Errorf("fan fail timeout must be positive, got %s", p.FanFailTimeout)
	}
	return nil
}
