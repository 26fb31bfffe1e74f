package control

// EvaluateDemand compares the zone temperature against the active setpoints
// using a symmetric deadband. Cooling demand needs the zone strictly above
// cooling setpoint plus deadband, heating demand strictly below heating
// setpoint minus deadband; everything in between is the dead zone with no
// demand. With validated setpoints the two conditions cannot hold at once.
func EvaluateDemand(zoneTemp float64, sp Setpoints, deadband float64) Demand {
	switch {
	case zoneTemp > sp.Cooling+deadband:
		return DemandCool
	case zoneTemp < sp.Heating-deadband:
		return DemandHeat
	default:
		return DemandNone
	}
}
