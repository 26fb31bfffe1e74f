package actuators

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

// Bus delivers one scan's outputs to a unit's actuators. Apply is called
// every scan with the full output word whether or not anything changed.
type Bus interface {
	Apply(addr byte, out control.Outputs) error
}

// ModbusBus writes relay coil and damper register frames to a serial
// writer. The writer is typically the relay board's device file; tests
// inject a buffer.
type ModbusBus struct {
	mu sync.Mutex
	w  io.Writer
}

// NewModbusBus creates a bus over the given writer.
func NewModbusBus(w io.Writer) *ModbusBus {
	return &ModbusBus{w: w}
}

// Apply writes the three coil frames and the damper position register. The
// damper percentage is truncated to a whole percent for the register.
func (b *ModbusBus) Apply(addr byte, out control.Outputs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	frames := [][]byte{
		CoilFrame(addr, CoilFan, out.Fan),
		CoilFrame(addr, CoilCompressor, out.Compressor),
		CoilFrame(addr, CoilHeat, out.Heat),
		RegisterFrame(addr, RegisterDamper, uint16(out.Damper)),
	}
	for _, f := range frames {
		if _, err := b.w.Write(f); err != nil {
			return fmt.Errorf("relay write failed: %w", err)
		}
	}
	return nil
}

// LogBus records outputs in the log instead of driving hardware. Used when
// no serial port is configured.
type LogBus struct{}

func (LogBus) Apply(addr byte, out control.Outputs) error {
	log.Debug().
		Int("addr", int(addr)).
		Bool("fan", out.Fan).
		Bool("compressor", out.Compressor).
		Bool("heat", out.Heat).
		Float64("damper", out.Damper).
		Msg("outputs applied")
	return nil
}
