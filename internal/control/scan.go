package control

// Scan runs one complete control cycle: occupancy, setpoint selection,
// demand evaluation, cooling source selection, heat stage, damper
// composition, fan supervision, and the safety layer, in that order. It is
// a pure function of its inputs and the prior state: it reads no clock, no
// hardware, and nothing global, and it returns a result for every possible
// input.
func Scan(in Inputs, prior State) (Outputs, State, Alarms) {
	out, next, alarms, _ := ScanTrace(in, prior)
	return out, next, alarms
}

// ScanTrace is Scan plus the intermediate decisions, for callers that
// display or trend them.
func ScanTrace(in Inputs, prior State) (Outputs, State, Alarms, Trace) {
	p := in.Params

	occ := ResolveOccupancy(in.Schedule)
	sp := ActiveSetpoints(p, occ)
	demand := EvaluateDemand(in.Snapshot.ZoneTemp, sp, p.Deadband)
	cool := SelectCoolingSource(demand, in.Snapshot.OutdoorTemp, sp, p)
	heat := HeatCall(demand)
	damper := ComposeDamper(occ, in.Snapshot.CO2PPM, cool, p)

	freeze := in.Snapshot.DischargeTemp < p.FreezeLimit
	freezeShutdown := freeze && p.ShutdownOnFreeze

	// The supervisor watches the command that actually reaches the
	// contactor, so safety forcing must be known before it runs.
	requested := FanCall(occ, demand)
	commanded := requested && !in.EmergencyStop && !freezeShutdown
	next := superviseFan(prior, requested, commanded, in.Snapshot.FanStatus, in.Snapshot.At, p.FanFailTimeout)
	failed := next.Fan == FanFailed

	out := Outputs{
		Fan:        commanded,
		Compressor: cool.Compressor,
		Heat:       heat,
		Damper:     damper,
	}
	if failed {
		out.Fan = false
		out.Compressor = false
		out.Heat = false
	}
	out = applySafety(out, in.Overrides, in.EmergencyStop, freezeShutdown)

	alarms := Alarms{
		FanFail:          failed,
		LowDischargeTemp: freeze,
	}
	trace := Trace{
		Occupancy: occ,
		Setpoints: sp,
		Demand:    demand,
		Cooling:   cool.Source,
	}
	return out, next, alarms, trace
}
