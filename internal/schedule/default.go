package schedule

import (
	"time"

	"github.com/servicecoinrwb/BAS-System/internal/model"
)

// DefaultSchedule returns the standard office week: every day enabled from
// 08:00 to 18:00.
func DefaultSchedule(name string) *model.Schedule {
	days := make([]model.ScheduleDay, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, model.ScheduleDay{
			Weekday:     int(wd),
			Enabled:     true,
			StartMinute: 8 * 60,
			EndMinute:   18 * 60,
		})
	}
	return &model.Schedule{Name: name, Days: days}
}
