package actuators

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

func TestCoilFrame(t *testing.T) {
	testCases := []struct {
		name string
		addr byte
		coil uint16
		on   bool
		hex  string
	}{
		{"broadcast fan on", 0xFF, CoilFan, true, "ff050000ff0099e4"},
		{"broadcast fan off", 0xFF, CoilFan, false, "ff0500000000d814"},
		{"broadcast compressor on", 0xFF, CoilCompressor, true, "ff050001ff00c824"},
		{"broadcast heat on", 0xFF, CoilHeat, true, "ff050002ff003824"},
		{"broadcast heat off", 0xFF, CoilHeat, false, "ff050002000079d4"},
		{"unit 1 fan on", 0x01, CoilFan, true, "01050000ff008c3a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.hex, hex.EncodeToString(CoilFrame(tc.addr, tc.coil, tc.on)))
		})
	}
}

func TestRegisterFrame(t *testing.T) {
	testCases := []struct {
		name  string
		value uint16
		hex   string
	}{
		{"half open", 50, "010600030032f81f"},
		{"full open", 100, "0106000300647821"},
		{"closed", 0, "01060003000079ca"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.hex, hex.EncodeToString(RegisterFrame(0x01, RegisterDamper, tc.value)))
		})
	}
}

func TestModbusBusApply(t *testing.T) {
	var buf bytes.Buffer
	bus := NewModbusBus(&buf)

	err := bus.Apply(0x01, control.Outputs{Fan: true, Compressor: false, Heat: false, Damper: 50})
	require.NoError(t, err)

	want := "01050000ff008c3a" + // fan on
		hex.EncodeToString(CoilFrame(0x01, CoilCompressor, false)) +
		hex.EncodeToString(CoilFrame(0x01, CoilHeat, false)) +
		"010600030032f81f" // damper register 50
	assert.Equal(t, want, hex.EncodeToString(buf.Bytes()))
}
