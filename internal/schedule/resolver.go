package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/servicecoinrwb/BAS-System/internal/control"
	"github.com/servicecoinrwb/BAS-System/internal/store"
)

// Resolver turns the stored weekly schedule and holiday calendar into the
// per-scan occupancy input. It never fails mid-scan: a missing or broken
// schedule resolves to not-scheduled-occupied so the unit falls back to the
// unoccupied setback band.
type Resolver struct {
	store store.Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve computes the schedule input for the given instant. The occupancy
// window is inclusive of its start minute and exclusive of its end minute.
func (r *Resolver) Resolve(ctx context.Context, scheduleName string, now time.Time) control.ScheduleInput {
	var in control.ScheduleInput

	holiday, err := r.store.IsHoliday(ctx, now.Format("2006-01-02"))
	if err != nil {
		log.Warn().Err(err).Msg("holiday lookup failed, assuming none")
	}
	in.HolidayActive = holiday

	sched, err := r.store.GetSchedule(ctx, scheduleName)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("schedule", scheduleName).Msg("schedule lookup failed, resolving unoccupied")
		}
		return in
	}

	nowMinute := now.Hour()*60 + now.Minute()
	for _, day := range sched.Days {
		if day.Weekday != int(now.Weekday()) || !day.Enabled {
			continue
		}
		if day.StartMinute <= nowMinute && nowMinute < day.EndMinute {
			in.ScheduledOccupied = true
			break
		}
	}
	return in
}

// Seed installs the standard office week under the given name if no
// schedule with that name exists yet.
func (r *Resolver) Seed(ctx context.Context, name string) error {
	_, err := r.store.GetSchedule(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return r.store.SaveSchedule(ctx, DefaultSchedule(name))
}
