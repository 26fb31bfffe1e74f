package sensors

import (
	"errors"
	"time"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

// ErrNoReading is returned when a source has nothing fresh enough to scan.
var ErrNoReading = errors.New("sensors: no current reading")

// Source produces one atomic snapshot of a unit's sensors per scan.
type Source interface {
	Snapshot(now time.Time) (control.Snapshot, error)
}
