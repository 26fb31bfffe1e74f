package control

// ResolveOccupancy folds the schedule collaborator's inputs into the
// effective occupancy state for the scan. An active holiday forces
// Unoccupied regardless of the weekly schedule.
func ResolveOccupancy(sched ScheduleInput) OccupancyState {
	if sched.HolidayActive || !sched.ScheduledOccupied {
		return Unoccupied
	}
	return Occupied
}
