package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fptr(v float64) *float64 { return &v }

func TestVentilationDemand(t *testing.T) {
	p := DefaultParams()

	testCases := []struct {
		name     string
		co2      *float64
		expected float64
	}{
		{"no sensor holds the minimum", nil, 20.0},
		{"below target holds the minimum", fptr(500), 20.0},
		{"exactly at target holds the minimum", fptr(800), 20.0},
		{"halfway through the span", fptr(1200), 60.0},
		{"at the end of the span", fptr(1600), 100.0},
		{"past the span clamps fully open", fptr(2400), 100.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, VentilationDemand(tc.co2, p), 1e-9)
		})
	}
}

func TestVentilationDemandMonotonic(t *testing.T) {
	p := DefaultParams()

	prev := 0.0
	for ppm := 400.0; ppm <= 2000.0; ppm += 50.0 {
		pos := VentilationDemand(fptr(ppm), p)
		assert.GreaterOrEqual(t, pos, prev, "position must not fall as CO2 rises (ppm=%.0f)", ppm)
		assert.GreaterOrEqual(t, pos, p.DCVMinPosition)
		assert.LessOrEqual(t, pos, 100.0)
		prev = pos
	}
}

func TestComposeDamper(t *testing.T) {
	p := DefaultParams()
	economizer := CoolingDecision{Source: CoolingEconomizer, DamperDemand: 100.0}
	mechanical := CoolingDecision{Source: CoolingMechanical, Compressor: true}

	testCases := []struct {
		name     string
		occ      OccupancyState
		co2      *float64
		cool     CoolingDecision
		expected float64
	}{
		{"occupied idle holds the minimum", Occupied, fptr(600), CoolingDecision{Source: CoolingOff}, 20.0},
		{"occupied mechanical keeps the DCV position", Occupied, fptr(1200), mechanical, 60.0},
		{"economizer wins over DCV", Occupied, fptr(1200), economizer, 100.0},
		{"unoccupied closes the damper", Unoccupied, fptr(1500), CoolingDecision{Source: CoolingOff}, 0.0},
		{"unoccupied economizer still opens", Unoccupied, nil, economizer, 100.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, ComposeDamper(tc.occ, tc.co2, tc.cool, p), 1e-9)
		})
	}
}
