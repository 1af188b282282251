package wonderswan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBankedCartridge has one marker byte at the start of each 64 KiB bank.
func newBankedCartridge(banks int, mapper byte) *Cartridge {
	c := &Cartridge{
		ROM:        make([]byte, banks*0x10000),
		SRAM:       make([]byte, 0x20000),
		MapperID:   mapper,
		Rewritable: true,
	}
	for i := 0; i < banks; i++ {
		c.ROM[i*0x10000] = byte(0xB0 + i)
	}
	c.Mapper = NewMapper(c)
	return c
}

func Test_Mapper2001(t *testing.T) {
	c := newBankedCartridge(4, MapperID2001)

	t.Run("power on banks", func(t *testing.T) {
		assert.Equal(t, byte(0xB3), c.ReadROM(0x20000), "ROM0 = FF")
		assert.Equal(t, byte(0xB3), c.ReadROM(0x30000), "ROM1 = FF")
		assert.Equal(t, byte(0xB0), c.ReadROM(0x40000), "linear = FF")
	})

	t.Run("bank switching", func(t *testing.T) {
		c.WritePort(0xC2, 1)
		c.WritePort(0xC3, 2)
		c.WritePort(0xC0, 0x0F)
		assert.Equal(t, byte(0xB1), c.ReadROM(0x20000))
		assert.Equal(t, byte(0xB2), c.ReadROM(0x30000))
		assert.Equal(t, byte(0xB0), c.ReadROM(0x40000))
		assert.Equal(t, byte(0xB3), c.ReadROM(0x70000))
		assert.Equal(t, byte(0x0F), c.ReadPort(0xC0))
	})

	t.Run("2003 ports are not decoded", func(t *testing.T) {
		c.WritePort(0xD2, 3)
		assert.Equal(t, byte(0xB1), c.ReadROM(0x20000))
		assert.Equal(t, openBus, c.ReadPort(0xD2))
	})

	t.Run("SRAM bank", func(t *testing.T) {
		c.WritePort(0xC1, 1)
		c.WriteSRAM(0x10005, 0x77)
		assert.Equal(t, byte(0x77), c.SRAM[0x10005])
		assert.Equal(t, byte(0x77), c.ReadSRAM(0x10005))
	})

	t.Run("reset", func(t *testing.T) {
		c.Mapper.Reset()
		assert.Equal(t, byte(0xFF), c.ReadPort(0xC2))
	})
}

func Test_Mapper2003(t *testing.T) {
	c := newBankedCartridge(4, MapperID2003)
	m, ok := c.Mapper.(*Mapper2003)
	require.True(t, ok)

	t.Run("16-bit bank registers", func(t *testing.T) {
		c.WritePort(0xD2, 0x02)
		c.WritePort(0xD3, 0x01)
		assert.Equal(t, uint16(0x0102), m.Banks().ROM0)
		assert.Equal(t, byte(0xB2), c.ReadROM(0x20000), "wraps at ROM size")
		assert.Equal(t, byte(0x02), c.ReadPort(0xC2))
		assert.Equal(t, byte(0x01), c.ReadPort(0xD3))
	})

	t.Run("legacy port keeps high byte", func(t *testing.T) {
		c.WritePort(0xC2, 0x01)
		assert.Equal(t, uint16(0x0101), m.Banks().ROM0)
	})

	t.Run("linear shadow", func(t *testing.T) {
		c.WritePort(0xCF, 0x07)
		assert.Equal(t, byte(0x07), c.ReadPort(0xC0))
	})

	t.Run("memory control", func(t *testing.T) {
		c.WritePort(0xCE, 0xFF)
		assert.Equal(t, byte(0x01), c.ReadPort(0xCE))
		c.Mapper.Reset()
		assert.Equal(t, byte(0x00), c.ReadPort(0xCE))
		assert.Equal(t, uint16(0xFF), m.Banks().RAM)
	})
}

func Test_Cartridge_NoSRAM(t *testing.T) {
	c := &Cartridge{ROM: make([]byte, 0x10000), Rewritable: true}
	c.Mapper = NewMapper(c)
	assert.Equal(t, openBus, c.ReadSRAM(0x10000))
	assert.NotPanics(t, func() { c.WriteSRAM(0x10000, 1) })
	assert.Nil(t, c.SaveMemory())
	assert.Equal(t, openBus, c.ReadPort(0xC4), "no cartridge EEPROM")
}

func Test_Cartridge_Footer(t *testing.T) {
	dir := t.TempDir()
	path := writeTestROM(t, dir, "game.wsc", romArgs{size: 0x40000, color: true, mapper: MapperID2003})

	c, err := LoadCartridge(path, dir)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Color)
	assert.Equal(t, MapperID2003, c.MapperID)
	assert.IsType(t, &Mapper2003{}, c.Mapper)
	assert.Len(t, c.ROM, 0x40000)
	assert.False(t, c.HasBattery())
}

func Test_Cartridge_SaveFiles(t *testing.T) {
	t.Run("SRAM persists across loads", func(t *testing.T) {
		romDir, saveDir := t.TempDir(), t.TempDir()
		path := writeTestROM(t, romDir, "game.ws", romArgs{saveType: 0x01})

		c, err := LoadCartridge(path, saveDir)
		require.NoError(t, err)
		assert.True(t, c.HasBattery())
		assert.Len(t, c.SaveMemory(), 0x8000)
		c.WritePort(0xC1, 0)
		c.WriteSRAM(0x10123, 0xA5)
		require.NoError(t, c.Close())

		info, err := os.Stat(filepath.Join(saveDir, "game.sram"))
		require.NoError(t, err)
		assert.Equal(t, int64(0x8000), info.Size())

		c, err = LoadCartridge(path, saveDir)
		require.NoError(t, err)
		defer c.Close()
		c.WritePort(0xC1, 0)
		assert.Equal(t, byte(0xA5), c.ReadSRAM(0x10123))
	})

	t.Run("EEPROM starts erased", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestROM(t, dir, "game.ws", romArgs{saveType: 0x10})

		c, err := LoadCartridge(path, "")
		require.NoError(t, err)
		defer c.Close()

		require.NotNil(t, c.EEPROM)
		mem := c.SaveMemory()
		assert.Len(t, mem, 0x80)
		for _, v := range mem {
			assert.Equal(t, byte(0xFF), v)
		}
		_, err = os.Stat(filepath.Join(dir, "game.eeprom"))
		assert.NoError(t, err)
		assert.Equal(t, byte(0x03), c.ReadPort(0xC8))
	})

	t.Run("unwritable directory falls back to RAM", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestROM(t, dir, "game.ws", romArgs{saveType: 0x02})

		c, err := LoadCartridge(path, filepath.Join(dir, "missing", "dir"))
		require.NoError(t, err)
		defer c.Close()

		assert.False(t, c.HasBattery())
		assert.Len(t, c.SaveMemory(), 0x8000)
	})
}

func Test_SaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sav")

	s, err := OpenSaveFile(path, 16, 0xFF)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	assert.Equal(t, byte(0xFF), s.Bytes()[15])
	s.Bytes()[0] = 0x12
	require.NoError(t, s.Flush())
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), data[0])

	t.Run("short file is extended", func(t *testing.T) {
		s, err := OpenSaveFile(path, 32, 0xFF)
		require.NoError(t, err)
		defer s.Close()
		assert.Len(t, s.Bytes(), 32)
		assert.Equal(t, byte(0x12), s.Bytes()[0])
	})
}
