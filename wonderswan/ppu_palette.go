package wonderswan

import "image/color"

// paletteRAM is where colour mode keeps 16 palettes of 16 RGB444 words.
const paletteRAM = 0xFE00

// shadeRGB turns a 4-bit LCD shade (0 lightest) into a 12-bit grey.
func shadeRGB(shade byte) uint16 {
	g := uint16(15 - shade&0x0F)
	return g<<8 | g<<4 | g
}

func (ppu *PPU) paletteColor(palette int, c byte) uint16 {
	if ppu.ColorMode() {
		address := paletteRAM + (palette&0x0F)*32 + int(c&0x0F)*2
		return (uint16(ppu.vram[address]) | uint16(ppu.vram[address+1])<<8) & 0x0FFF
	}
	index := ppu.state.Palettes[palette&0x0F][c&3]
	return shadeRGB(ppu.state.ShadeLUT[index&7])
}

func (ppu *PPU) backdrop() uint16 {
	b := ppu.state.BackColor
	if ppu.ColorMode() {
		return ppu.paletteColor(int(b>>4), b&0x0F)
	}
	return shadeRGB(ppu.state.ShadeLUT[b&7])
}

func rgbColor(rgb uint16) color.RGBA {
	return color.RGBA{
		R: byte(rgb>>8&0x0F) * 17,
		G: byte(rgb>>4&0x0F) * 17,
		B: byte(rgb&0x0F) * 17,
		A: 0xFF,
	}
}

func putRGB(dst []byte, rgb uint16) {
	c := rgbColor(rgb)
	dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, c.A
}

// Palette returns the 16 colours of a palette as currently displayed. Mono
// palettes only define the first four.
func (ppu *PPU) Palette(index int) [16]color.RGBA {
	var out [16]color.RGBA
	n := 4
	if ppu.ColorMode() {
		n = 16
	}
	for c := 0; c < n; c++ {
		out[c] = rgbColor(ppu.paletteColor(index, byte(c)))
	}
	return out
}
