package wonderswan

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cyclesPerFrame = (defaultVTotal + 1) * dotsPerLine

func newTestPPU() (*PPU, *InterruptController, []byte) {
	vram := make([]byte, 0x10000)
	ic := NewInterruptController()
	return NewPPU(vram, ic, NewTimer(ic)), ic, vram
}

func grey(v byte) color.RGBA {
	return color.RGBA{R: v, G: v, B: v, A: 0xFF}
}

func Test_PPU_Timing(t *testing.T) {
	t.Run("HBlank starts at dot 224", func(t *testing.T) {
		ppu, _, _ := newTestPPU()
		ppu.Step(hblankDot - 1)
		assert.Equal(t, ModeVisible, ppu.Mode())
		ppu.Step(1)
		assert.Equal(t, ModeHBlank, ppu.Mode())
		assert.Equal(t, byte(0), ppu.Line())
		ppu.Step(dotsPerLine - hblankDot)
		assert.Equal(t, ModeVisible, ppu.Mode())
		assert.Equal(t, byte(1), ppu.Line())
	})

	t.Run("VBlank raises its interrupt and completes a frame", func(t *testing.T) {
		ppu, ic, _ := newTestPPU()
		ppu.Step(vblankLine*dotsPerLine - 1)
		assert.Equal(t, byte(143), ppu.Line())
		assert.Equal(t, uint64(0), ppu.Frame)
		assert.Zero(t, ic.Pending()&(1<<IntVBlank))

		ppu.Step(1)
		assert.Equal(t, byte(144), ppu.Line())
		assert.Equal(t, ModeVBlank, ppu.Mode())
		assert.Equal(t, uint64(1), ppu.Frame)
		assert.NotZero(t, ic.Pending()&(1<<IntVBlank))
		assert.Equal(t, byte(144), ppu.ReadPort(0x02), "LINE_CUR")
	})

	t.Run("line counter wraps after VTOTAL", func(t *testing.T) {
		ppu, _, _ := newTestPPU()
		ppu.Step(cyclesPerFrame - 1)
		assert.Equal(t, byte(defaultVTotal), ppu.Line())
		ppu.Step(1)
		assert.Equal(t, byte(0), ppu.Line())
		assert.Equal(t, uint64(1), ppu.Frame)
	})

	t.Run("short VTOTAL still reaches VBlank", func(t *testing.T) {
		ppu, _, _ := newTestPPU()
		ppu.WritePort(0x16, 100)
		ppu.Step((vblankLine + 1) * dotsPerLine)
		assert.Equal(t, byte(0), ppu.Line())
		assert.Equal(t, uint64(1), ppu.Frame)
	})

	t.Run("line compare", func(t *testing.T) {
		ppu, ic, _ := newTestPPU()
		ppu.WritePort(0x03, 10)
		ppu.Step(10*dotsPerLine - 1)
		assert.Zero(t, ic.Pending()&(1<<IntLineCompare))
		ppu.Step(1)
		assert.NotZero(t, ic.Pending()&(1<<IntLineCompare))
	})

	t.Run("HBlank timer ticks once per line", func(t *testing.T) {
		ppu, ic, _ := newTestPPU()
		ppu.timer.WritePort(0xA4, 2)
		ppu.timer.WritePort(0xA2, 0x03)
		ppu.Step(hblankDot)
		assert.Zero(t, ic.Pending()&(1<<IntHBlankTimer))
		ppu.Step(dotsPerLine)
		assert.NotZero(t, ic.Pending()&(1<<IntHBlankTimer))
	})

	t.Run("VBlank timer ticks once per frame", func(t *testing.T) {
		ppu, ic, _ := newTestPPU()
		ppu.timer.WritePort(0xA6, 1)
		ppu.timer.WritePort(0xA2, 0x04)
		ppu.Step(vblankLine * dotsPerLine)
		assert.NotZero(t, ic.Pending()&(1<<IntVBlankTimer))
		assert.Zero(t, ppu.timer.ReadPort(0xA2)&0x04, "one shot timer stops")
	})
}

func Test_PPU_Ports(t *testing.T) {
	ppu, _, _ := newTestPPU()

	ppu.WritePort(0x1C, 0x73)
	assert.Equal(t, byte(0x73), ppu.ReadPort(0x1C), "shade LUT")

	ppu.WritePort(0x20, 0xFF)
	assert.Equal(t, byte(0x77), ppu.ReadPort(0x20), "palettes hold 3-bit shades")

	ppu.WritePort(0x00, 0xFF)
	assert.Equal(t, byte(0x3F), ppu.state.DispCtrl)

	ppu.WritePort(0x60, 0x80)
	assert.True(t, ppu.ColorMode())
	assert.Equal(t, byte(0x80), ppu.ReadPort(0x60))

	ppu.WritePort(0x15, 0x12)
	assert.Equal(t, byte(0x12), ppu.Icons())
}

func Test_PPU_Render(t *testing.T) {
	// tile 1, row 0 all colour 1
	setupTile := func(vram []byte) {
		vram[tileBase2bpp+16] = 0xFF
		vram[tileBase2bpp+17] = 0x00
	}

	t.Run("mono SCR1 tile over white", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		vram[0] = 0x01 // map cell (0,0) -> tile 1, palette 0
		ppu.WritePort(0x1C, 0x70)
		ppu.WritePort(0x20, 0x10)
		ppu.WritePort(0x00, 0x01)

		ppu.Step(vblankLine * dotsPerLine)
		require.Equal(t, uint64(1), ppu.Frame)

		img := ppu.Front()
		assert.Equal(t, grey(136), img.RGBAAt(0, 0))
		assert.Equal(t, grey(136), img.RGBAAt(7, 0))
		assert.Equal(t, grey(255), img.RGBAAt(8, 0))
		assert.Equal(t, grey(255), img.RGBAAt(0, 1))
	})

	t.Run("scroll moves the plane", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		vram[0] = 0x01
		ppu.WritePort(0x1C, 0x70)
		ppu.WritePort(0x20, 0x10)
		ppu.WritePort(0x00, 0x01)
		ppu.WritePort(0x10, 4)

		ppu.Step(vblankLine * dotsPerLine)

		img := ppu.Front()
		assert.Equal(t, grey(136), img.RGBAAt(3, 0))
		assert.Equal(t, grey(255), img.RGBAAt(4, 0))
	})

	t.Run("LCD off renders white", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		vram[0] = 0x01
		ppu.WritePort(0x1C, 0x77)
		ppu.WritePort(0x00, 0x01)
		ppu.WritePort(0x14, 0x00)

		ppu.Step(vblankLine * dotsPerLine)

		assert.Equal(t, grey(255), ppu.Front().RGBAAt(0, 0))
	})

	t.Run("colour palettes come from RAM", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		vram[0] = 0x01
		vram[paletteRAM+2] = 0x00
		vram[paletteRAM+3] = 0x0F
		ppu.WritePort(0x60, 0x80)
		ppu.WritePort(0x00, 0x01)

		ppu.Step(vblankLine * dotsPerLine)

		img := ppu.Front()
		assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
		assert.Equal(t, color.RGBA{A: 255}, img.RGBAAt(8, 0))
		assert.Equal(t, color.RGBA{R: 255, A: 255}, ppu.Palette(0)[1])
	})

	t.Run("sprites appear the frame after they are latched", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		ppu.WritePort(0x1C, 0x70)
		ppu.WritePort(0x30, 0x10) // palette 8
		ppu.WritePort(0x04, 0x01) // table at 0x200
		ppu.WritePort(0x06, 1)
		copy(vram[0x200:], []byte{0x01, 0x00, 0x00, 16})
		ppu.WritePort(0x00, 0x04)

		ppu.Step(vblankLine * dotsPerLine)
		assert.Equal(t, grey(255), ppu.Front().RGBAAt(16, 0), "not latched yet")

		ppu.Step(cyclesPerFrame)
		img := ppu.Front()
		assert.Equal(t, grey(255), img.RGBAAt(15, 0))
		assert.Equal(t, grey(136), img.RGBAAt(16, 0))
		assert.Equal(t, grey(136), img.RGBAAt(23, 0))
		assert.Equal(t, grey(255), img.RGBAAt(24, 0))
	})

	t.Run("SCR2 covers sprites without priority", func(t *testing.T) {
		ppu, _, vram := newTestPPU()
		setupTile(vram)
		// SCR2 map at 0x800, every cell tile 0 in an opaque palette
		ppu.WritePort(0x07, 0x10)
		ppu.WritePort(0x1C, 0x70)
		ppu.WritePort(0x1D, 0x03)
		ppu.WritePort(0x20, 0x22) // palette 0: colours 0,1 -> LUT[2] = 3
		ppu.WritePort(0x30, 0x10)
		ppu.WritePort(0x04, 0x01)
		ppu.WritePort(0x06, 2)
		copy(vram[0x200:], []byte{
			0x01, 0x00, 0x00, 16, // below SCR2
			0x01, 0x20, 0x00, 32, // above SCR2
		})
		ppu.WritePort(0x00, 0x06)

		ppu.Step(vblankLine*dotsPerLine + cyclesPerFrame)

		img := ppu.Front()
		assert.Equal(t, grey(12*17), img.RGBAAt(16, 0), "SCR2 on top")
		assert.Equal(t, grey(136), img.RGBAAt(32, 0), "priority sprite on top")
	})
}

func Test_PPU_Reset(t *testing.T) {
	ppu, _, _ := newTestPPU()
	ppu.WritePort(0x16, 0x80)
	ppu.Step(cyclesPerFrame)
	ppu.Reset()

	assert.Equal(t, byte(0), ppu.Line())
	assert.Equal(t, uint64(0), ppu.Frame)
	assert.Equal(t, byte(defaultVTotal), ppu.state.VTotal)
	assert.Equal(t, "visible", ppu.Mode().String())
}
