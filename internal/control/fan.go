package control

import "time"

// FanCall reports whether the supply fan should run: continuously while
// occupied, otherwise only to serve an active thermal demand.
func FanCall(occ OccupancyState, demand Demand) bool {
	return occ == Occupied || demand != DemandNone
}

// superviseFan advances the supervisor one scan and returns the new state.
//
// requested is what the occupancy/demand logic asked for; commanded is what
// actually reaches the contactor after safety forcing. The mismatch timer
// runs against commanded: a fan held off by an emergency stop is not
// expected to prove airflow. The Failed latch instead re-arms against
// requested, because Failed itself forces the commanded output off every
// scan and keying the re-arm to that forced value would clear the latch one
// scan after it set. The latch therefore holds until the call for the fan
// genuinely ends with the status reading off.
func superviseFan(prior State, requested, commanded, status bool, now time.Time, timeout time.Duration) State {
	switch prior.Fan {
	case FanFailed:
		if !requested && !status {
			return State{Fan: FanWatching}
		}
		return prior

	case FanTiming:
		if !commanded || status {
			return State{Fan: FanWatching}
		}
		if now.Sub(prior.FanMismatchSince) >= timeout {
			return State{Fan: FanFailed}
		}
		return prior

	default: // FanWatching
		if commanded && !status {
			return State{Fan: FanTiming, FanMismatchSince: now}
		}
		return State{Fan: FanWatching}
	}
}
