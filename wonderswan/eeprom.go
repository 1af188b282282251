// refs: ws.nesdev.org/wiki/EEPROM
package wonderswan

import "encoding/binary"

// EEPROMOp is the two bit opcode of a 93Cxx command word.
type EEPROMOp byte

const (
	EEPROMExtended EEPROMOp = iota
	EEPROMWrite
	EEPROMRead
	EEPROMErase
)

// Sub operations selected by EEPROMExtended.
const (
	EEPROMWriteDisable EEPROMOp = iota
	EEPROMWriteAll
	EEPROMEraseAll
	EEPROMWriteEnable
)

// EEPROM is a 93C46/93C66/93C86 style serial EEPROM. The WonderSwan
// serialises commands itself, so the emulated part only sees whole
// command words through three port pairs.
type EEPROM struct {
	contents     []byte
	addressBits  uint
	input        uint16
	output       uint16
	command      uint16
	writeEnabled bool

	// port 0xBE / 0xC8 value as last written
	control byte
}

// NewEEPROM wraps contents, which must hold 2<<addressBits bytes.
func NewEEPROM(contents []byte, addressBits uint) *EEPROM {
	return &EEPROM{
		contents:     contents,
		addressBits:  addressBits,
		writeEnabled: true,
	}
}

// eepromAddressBits returns the command address width for a part of size bytes.
func eepromAddressBits(size int) uint {
	bits := uint(0)
	for words := size / 2; words > 1; words >>= 1 {
		bits++
	}
	if bits < 6 {
		bits = 6
	}
	return bits
}

func (e *EEPROM) Contents() []byte {
	return e.contents
}

func (e *EEPROM) ReadData() uint16 {
	return e.output
}

func (e *EEPROM) WriteData(data uint16) {
	e.input = data
}

// WriteCommand stores a command word and runs it when its start bit is set.
func (e *EEPROM) WriteCommand(command uint16) {
	if command>>(e.addressBits+3) != 0 {
		return
	}
	e.command = command

	if (command>>(e.addressBits+2))&1 == 0 {
		return
	}

	op := EEPROMOp((command >> e.addressBits) & 3)
	if op == EEPROMExtended {
		e.extended(EEPROMOp((command >> (e.addressBits - 2)) & 3))
		return
	}

	address := int(command&(1<<e.addressBits-1)) * 2
	if address+1 >= len(e.contents) {
		address %= len(e.contents)
		address &^= 1
	}

	switch op {
	case EEPROMWrite:
		if e.writeEnabled {
			binary.LittleEndian.PutUint16(e.contents[address:], e.input)
		}
	case EEPROMRead:
		e.output = binary.LittleEndian.Uint16(e.contents[address:])
	case EEPROMErase:
		if e.writeEnabled {
			binary.LittleEndian.PutUint16(e.contents[address:], 0xFFFF)
		}
	}
}

func (e *EEPROM) extended(op EEPROMOp) {
	switch op {
	case EEPROMWriteDisable:
		e.writeEnabled = false
	case EEPROMWriteAll:
		if e.writeEnabled {
			for i := 0; i+1 < len(e.contents); i += 2 {
				binary.LittleEndian.PutUint16(e.contents[i:], e.input)
			}
		}
	case EEPROMEraseAll:
		if e.writeEnabled {
			for i := range e.contents {
				e.contents[i] = 0xFF
			}
		}
	case EEPROMWriteEnable:
		e.writeEnabled = true
	}
}

// ReadPort serves the five port window, offset 0-1 data, 2-3 command,
// 4 control.
func (e *EEPROM) ReadPort(offset byte) byte {
	switch offset {
	case 0:
		return byte(e.output)
	case 1:
		return byte(e.output >> 8)
	case 2:
		return byte(e.command)
	case 3:
		return byte(e.command >> 8)
	case 4:
		// ready and done
		return 0x03
	}
	return openBus
}

func (e *EEPROM) WritePort(offset byte, value byte) {
	switch offset {
	case 0:
		e.input = e.input&0xFF00 | uint16(value)
	case 1:
		e.input = e.input&0x00FF | uint16(value)<<8
	case 2:
		e.command = e.command&0xFF00 | uint16(value)
	case 3:
		e.command = e.command&0x00FF | uint16(value)<<8
	case 4:
		e.control = value
		// any of read, write, erase/extended strobes
		if value&0xF0 != 0 {
			e.WriteCommand(e.command)
		}
	}
}
