package control

// CoolingDecision is the cooling source selector's verdict: which source
// serves the demand, whether the compressor runs, and the outdoor-air damper
// position the source needs from the ventilation stage.
type CoolingDecision struct {
	Source       CoolingSource
	Compressor   bool
	DamperDemand float64
}

// SelectCoolingSource chooses between free and mechanical cooling for an
// active cooling demand. Outdoor air strictly colder than the active cooling
// setpoint by at least the economizer differential selects the economizer:
// damper driven fully open, compressor off. Otherwise the compressor runs
// and the damper is left to the ventilation logic. The decision is
// re-evaluated from scratch every scan, so a swing in outdoor temperature
// switches source on the next scan with no hysteresis of its own.
func SelectCoolingSource(demand Demand, outdoorTemp float64, sp Setpoints, p Params) CoolingDecision {
	if demand != DemandCool {
		return CoolingDecision{Source: CoolingOff}
	}
	if outdoorTemp < sp.Cooling-p.EconomizerDifferential {
		return CoolingDecision{Source: CoolingEconomizer, DamperDemand: 100.0}
	}
	return CoolingDecision{Source: CoolingMechanical, Compressor: true}
}
