package control

// Setpoints is the active cooling/heating pair for the current scan.
type Setpoints struct {
	Cooling float64 `json:"cooling"`
	Heating float64 `json:"heating"`
}

// ActiveSetpoints selects the setpoint pair for the given occupancy state.
// Unoccupied uses the wider setback band so the unit only protects the
// building envelope.
func ActiveSetpoints(p Params, occ OccupancyState) Setpoints {
	if occ == Occupied {
		return Setpoints{Cooling: p.Occupied.Cooling, Heating: p.Occupied.Heating}
	}
	return Setpoints{Cooling: p.Unoccupied.Cooling, Heating: p.Unoccupied.Heating}
}
