package control

// HeatCall reports whether the single heat stage should be energized. Gas
// heat has no source selection: an active heating demand runs the stage,
// anything else leaves it off.
func HeatCall(demand Demand) bool {
	return demand == DemandHeat
}
