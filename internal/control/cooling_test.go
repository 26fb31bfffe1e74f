package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectCoolingSource(t *testing.T) {
	p := DefaultParams()
	occupied := Setpoints{Cooling: 74.0, Heating: 68.0}

	testCases := []struct {
		name     string
		demand   Demand
		outdoor  float64
		expected CoolingDecision
	}{
		{
			name:     "no demand leaves cooling off",
			demand:   DemandNone,
			outdoor:  50.0,
			expected: CoolingDecision{Source: CoolingOff},
		},
		{
			name:     "heating demand leaves cooling off",
			demand:   DemandHeat,
			outdoor:  30.0,
			expected: CoolingDecision{Source: CoolingOff},
		},
		{
			name:     "cold outdoor air selects economizer",
			demand:   DemandCool,
			outdoor:  55.0,
			expected: CoolingDecision{Source: CoolingEconomizer, DamperDemand: 100.0},
		},
		{
			name:     "just below the differential selects economizer",
			demand:   DemandCool,
			outdoor:  68.9,
			expected: CoolingDecision{Source: CoolingEconomizer, DamperDemand: 100.0},
		},
		{
			name:     "exactly at the differential selects mechanical",
			demand:   DemandCool,
			outdoor:  69.0,
			expected: CoolingDecision{Source: CoolingMechanical, Compressor: true},
		},
		{
			name:     "hot outdoor air selects mechanical",
			demand:   DemandCool,
			outdoor:  95.0,
			expected: CoolingDecision{Source: CoolingMechanical, Compressor: true},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SelectCoolingSource(tc.demand, tc.outdoor, occupied, p))
		})
	}
}
