package control

// VentilationDemand computes the CO2-driven outdoor-air damper demand while
// the zone is occupied. At or below the target PPM the damper holds the
// occupied minimum; above it the position rises linearly, reaching fully
// open once CO2 exceeds the target by the configured span. The curve is
// continuous and never decreases as CO2 rises. A unit without a CO2 sensor
// holds the occupied minimum.
func VentilationDemand(co2PPM *float64, p Params) float64 {
	pos := p.DCVMinPosition
	if co2PPM == nil || *co2PPM <= p.DCVTargetPPM {
		return pos
	}
	frac := (*co2PPM - p.DCVTargetPPM) / p.DCVSpanPPM
	if frac > 1.0 {
		frac = 1.0
	}
	return pos + (100.0-pos)*frac
}

// ComposeDamper merges the ventilation demand and the cooling source's
// damper demand into the final outdoor-air damper position. While occupied
// the position never drops below the DCV demand; the larger contribution
// wins. Unoccupied, only the cooling source can open the damper.
func ComposeDamper(occ OccupancyState, co2PPM *float64, cool CoolingDecision, p Params) float64 {
	pos := 0.0
	if occ == Occupied {
		pos = VentilationDemand(co2PPM, p)
	}
	if cool.DamperDemand > pos {
		pos = cool.DamperDemand
	}
	return pos
}
