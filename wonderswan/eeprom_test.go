package wonderswan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestEEPROM(size int) *EEPROM {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xFF
	}
	return NewEEPROM(mem, eepromAddressBits(size))
}

// eepromCommand encodes a start bit, op and address for a part with bits
// address bits.
func eepromCommand(bits uint, op EEPROMOp, address uint16) uint16 {
	return 1<<(bits+2) | uint16(op)<<bits | address
}

func Test_EEPROM_AddressBits(t *testing.T) {
	assert.Equal(t, uint(6), eepromAddressBits(0x80))
	assert.Equal(t, uint(9), eepromAddressBits(0x400))
	assert.Equal(t, uint(10), eepromAddressBits(0x800))
	assert.Equal(t, uint(6), eepromAddressBits(0x10), "never below 93C46")
}

func Test_EEPROM_Commands(t *testing.T) {
	const bits = 6

	t.Run("write then read", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.WriteData(0xBEEF)
		e.WriteCommand(eepromCommand(bits, EEPROMWrite, 3))
		assert.Equal(t, []byte{0xEF, 0xBE}, e.Contents()[6:8])

		e.WriteCommand(eepromCommand(bits, EEPROMRead, 3))
		assert.Equal(t, uint16(0xBEEF), e.ReadData())
	})

	t.Run("erase", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.Contents()[0], e.Contents()[1] = 0, 0
		e.WriteCommand(eepromCommand(bits, EEPROMErase, 0))
		assert.Equal(t, []byte{0xFF, 0xFF}, e.Contents()[0:2])
	})

	t.Run("write disable protects contents", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.WriteCommand(eepromCommand(bits, EEPROMExtended, uint16(EEPROMWriteDisable)<<(bits-2)))
		e.WriteData(0x1234)
		e.WriteCommand(eepromCommand(bits, EEPROMWrite, 0))
		assert.Equal(t, []byte{0xFF, 0xFF}, e.Contents()[0:2])

		e.WriteCommand(eepromCommand(bits, EEPROMExtended, uint16(EEPROMWriteEnable)<<(bits-2)))
		e.WriteCommand(eepromCommand(bits, EEPROMWrite, 0))
		assert.Equal(t, []byte{0x34, 0x12}, e.Contents()[0:2])
	})

	t.Run("write all and erase all", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.WriteData(0xA55A)
		e.WriteCommand(eepromCommand(bits, EEPROMExtended, uint16(EEPROMWriteAll)<<(bits-2)))
		assert.Equal(t, byte(0x5A), e.Contents()[0x7E])
		assert.Equal(t, byte(0xA5), e.Contents()[0x7F])

		e.WriteCommand(eepromCommand(bits, EEPROMExtended, uint16(EEPROMEraseAll)<<(bits-2)))
		assert.Equal(t, byte(0xFF), e.Contents()[0x7E])
	})

	t.Run("missing start bit does nothing", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.WriteData(0)
		e.WriteCommand(uint16(EEPROMWrite)<<bits | 1)
		assert.Equal(t, []byte{0xFF, 0xFF}, e.Contents()[2:4])
	})

	t.Run("oversized command is ignored", func(t *testing.T) {
		e := newTestEEPROM(0x80)
		e.WriteData(0)
		e.WriteCommand(1<<(bits+3) | eepromCommand(bits, EEPROMWrite, 1))
		assert.Equal(t, []byte{0xFF, 0xFF}, e.Contents()[2:4])
	})
}

func Test_EEPROM_Ports(t *testing.T) {
	e := newTestEEPROM(0x800)
	cmd := eepromCommand(10, EEPROMWrite, 0x3FF)

	e.WritePort(0, 0x34)
	e.WritePort(1, 0x12)
	e.WritePort(2, byte(cmd))
	e.WritePort(3, byte(cmd>>8))
	assert.Equal(t, byte(cmd), e.ReadPort(2))
	assert.Equal(t, byte(cmd>>8), e.ReadPort(3))

	e.WritePort(4, 0x20)
	assert.Equal(t, []byte{0x34, 0x12}, e.Contents()[0x7FE:])
	assert.Equal(t, byte(0x03), e.ReadPort(4))

	read := eepromCommand(10, EEPROMRead, 0x3FF)
	e.WritePort(2, byte(read))
	e.WritePort(3, byte(read>>8))
	e.WritePort(4, 0x10)
	assert.Equal(t, byte(0x34), e.ReadPort(0))
	assert.Equal(t, byte(0x12), e.ReadPort(1))
}
