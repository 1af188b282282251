package wonderswan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, color bool) *Console {
	t.Helper()
	console, err := NewConsole("", WithColor(color), WithMute(true))
	require.NoError(t, err)
	t.Cleanup(func() { console.Close() })
	return console
}

func Test_Bus_Memory(t *testing.T) {
	t.Run("mono RAM is 16 KiB", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WriteMemory(0x0100, 0x12)
		bus.WriteMemory(0x5000, 0x34)
		assert.Equal(t, byte(0x12), bus.ReadMemory(0x0100))
		assert.Equal(t, openBus, bus.ReadMemory(0x5000))
		assert.Equal(t, byte(0), bus.RAM[0x5000])
	})

	t.Run("colour RAM needs colour mode", func(t *testing.T) {
		bus := newTestConsole(t, true).Bus
		bus.WriteMemory(0x5000, 0x34)
		assert.Equal(t, openBus, bus.ReadMemory(0x5000))

		bus.WritePort(0x60, 0x80)
		bus.WriteMemory(0x5000, 0x34)
		assert.Equal(t, byte(0x34), bus.ReadMemory(0x5000))
	})

	t.Run("addresses wrap at 1 MiB", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WriteMemory(0x100200, 0x56)
		assert.Equal(t, byte(0x56), bus.ReadMemory(0x00200))
	})

	t.Run("SRAM and ROM", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WriteMemory(0x10010, 0x78)
		assert.Equal(t, byte(0x78), bus.ReadMemory(0x10010))

		bus.WriteMemory(0x20000, 0x9A)
		assert.Equal(t, byte(0), bus.ReadMemory(0x20000), "ROM ignores writes")
	})

	t.Run("words are little endian", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.Write(Width16, 0x0300, 0xBEEF)
		assert.Equal(t, byte(0xEF), bus.RAM[0x300])
		assert.Equal(t, byte(0xBE), bus.RAM[0x301])
		assert.Equal(t, uint16(0xBEEF), bus.Read(Width16, 0x0300))
		assert.Equal(t, uint16(0xEF), bus.Read(Width8, 0x0300))
	})
}

func Test_Bus_Ports(t *testing.T) {
	t.Run("system control", func(t *testing.T) {
		assert.Equal(t, byte(0x01), newTestConsole(t, false).Bus.ReadPort(0xA0))
		assert.Equal(t, byte(0x03), newTestConsole(t, true).Bus.ReadPort(0xA0))
	})

	t.Run("mono hardware masks the colour mode bits", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WritePort(0x60, 0xE0)
		assert.Equal(t, byte(0), bus.ReadPort(0x60))
	})

	t.Run("mirrors below 0xB9", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WritePort(0x2B2, 0x40)
		assert.Equal(t, byte(0x40), bus.ReadPort(0xB2))
		assert.Equal(t, byte(0x40), bus.Interrupts.Enable())
	})

	t.Run("open bus", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		assert.Equal(t, openBus, bus.ReadPort(0x1B2))
		assert.Equal(t, openBus, bus.ReadPort(0x2C0))
		bus.WritePort(0x1B2, 0xFF)
		assert.Equal(t, byte(0), bus.Interrupts.Enable())
	})

	t.Run("unowned ports latch", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WritePort(0x70, 0x5A)
		assert.Equal(t, byte(0x5A), bus.ReadPort(0x70))
	})

	t.Run("serial", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		assert.NotZero(t, bus.ReadPort(0xB3)&0x04, "send buffer empty")
		bus.WritePort(0xB7, 0xFF)
		assert.Equal(t, byte(0x10), bus.ReadPort(0xB7))
	})

	t.Run("word access", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		bus.WritePort16(0xA4, 0x1234)
		assert.Equal(t, uint16(0x1234), bus.ReadPort16(0xA4))
	})

	t.Run("line counter", func(t *testing.T) {
		console := newTestConsole(t, false)
		console.PPU.Step(3 * dotsPerLine)
		assert.Equal(t, byte(3), console.Bus.ReadPort(0x02))
	})

	t.Run("internal EEPROM status", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		assert.Equal(t, byte(0x03), bus.ReadPort(0xBE))
	})

	t.Run("cartridge bank registers", func(t *testing.T) {
		bus := newTestConsole(t, false).Bus
		assert.Equal(t, byte(0xFF), bus.ReadPort(0xC2))
		bus.WritePort(0xC2, 0x03)
		assert.Equal(t, byte(0x03), bus.ReadPort(0xC2))
	})
}

func Test_Bus_CPUPortsThroughBus(t *testing.T) {
	console := newTestConsole(t, false)
	bus := console.Bus
	// OUT B2, AL ; IN AL, B2
	copy(bus.RAM[0x100:], []byte{0xE6, 0xB2, 0xB0, 0x00, 0xE4, 0xB2})
	s := console.CPU.State()
	s.Segs[SegPS] = 0
	s.PC = 0x100
	s.Regs[RegAW] = 0x44
	console.CPU.SetState(s)

	console.Step()
	assert.Equal(t, byte(0x44), console.Interrupts.Enable())
	console.Step()
	console.Step()
	assert.Equal(t, uint16(0x44), console.CPU.State().AW())
}
