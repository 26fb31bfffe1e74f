package actuators

import "encoding/binary"

// Modbus function codes used by the relay board.
const (
	fnWriteCoil     = 0x05
	fnWriteRegister = 0x06
)

// Coil and register assignments on the relay board.
const (
	CoilFan        = 0
	CoilCompressor = 1
	CoilHeat       = 2
	RegisterDamper = 3
)

// crc16 computes the Modbus CRC (CRC-16/ARC, polynomial 0xA001, initial
// value 0xFFFF) over the frame body.
func crc16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// frame assembles addr + function + big-endian field pair, then appends the
// CRC little-endian, per the Modbus RTU framing rules.
func frame(addr byte, fn byte, field uint16, value uint16) []byte {
	buf := make([]byte, 6, 8)
	buf[0] = addr
	buf[1] = fn
	binary.BigEndian.PutUint16(buf[2:4], field)
	binary.BigEndian.PutUint16(buf[4:6], value)
	return binary.LittleEndian.AppendUint16(buf, crc16(buf))
}

// CoilFrame builds a write-single-coil frame. The coil value is 0xFF00 for
// energized, 0x0000 for released.
func CoilFrame(addr byte, coil uint16, on bool) []byte {
	value := uint16(0x0000)
	if on {
		value = 0xFF00
	}
	return frame(addr, fnWriteCoil, coil, value)
}

// RegisterFrame builds a write-single-register frame.
func RegisterFrame(addr byte, register uint16, value uint16) []byte {
	return frame(addr, fnWriteRegister, register, value)
}
