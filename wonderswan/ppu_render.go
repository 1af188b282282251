package wonderswan

type pixel struct {
	rgb    uint16 // 12-bit RGB
	opaque bool
	above  bool // sprite drawn over SCR2
}

const (
	tileBase2bpp = 0x2000
	tileBase4bpp = 0x4000
)

// tileFormat is selected by DISP_MODE bits 5-7.
type tileFormat struct {
	color  bool
	depth4 bool
	packed bool
}

func (ppu *PPU) format() tileFormat {
	mode := ppu.state.DispMode
	color := mode&0x80 != 0
	return tileFormat{
		color:  color,
		depth4: color && mode&0x40 != 0,
		packed: color && mode&0x20 != 0,
	}
}

// tilePixel returns the colour index of pixel (x, y) of a tile, both in 0-7.
func (ppu *PPU) tilePixel(f tileFormat, tile int, x, y int) byte {
	if f.depth4 {
		address := tileBase4bpp + tile*32 + y*4
		if f.packed {
			v := ppu.vram[(address+x/2)&0xFFFF]
			if x&1 == 0 {
				return v >> 4
			}
			return v & 0x0F
		}
		shift := uint(7 - x)
		var c byte
		for plane := 0; plane < 4; plane++ {
			c |= (ppu.vram[(address+plane)&0xFFFF] >> shift & 1) << uint(plane)
		}
		return c
	}

	address := tileBase2bpp + tile*16 + y*2
	if f.packed {
		v := ppu.vram[(address+x/4)&0xFFFF]
		return v >> uint(6-2*(x&3)) & 3
	}
	shift := uint(7 - x)
	lo := ppu.vram[address&0xFFFF] >> shift & 1
	hi := ppu.vram[(address+1)&0xFFFF] >> shift & 1
	return lo | hi<<1
}

func transparent(f tileFormat, palette int, c byte) bool {
	if c != 0 {
		return false
	}
	return f.depth4 || palette&4 != 0
}

func (ppu *PPU) mapBase(screen int) int {
	mask := byte(0x07)
	if ppu.ColorMode() {
		mask = 0x0F
	}
	v := ppu.state.MapBase
	if screen == 2 {
		v >>= 4
	}
	return int(v&mask) << 11
}

// screenPixel samples a 256x256 background plane at (x, y).
func (ppu *PPU) screenPixel(f tileFormat, base int, x, y byte) (pixel, bool) {
	address := base + (int(y>>3)*32+int(x>>3))*2
	entry := uint16(ppu.vram[address&0xFFFF]) | uint16(ppu.vram[(address+1)&0xFFFF])<<8

	tile := int(entry & 0x1FF)
	if f.color {
		tile |= int(entry&0x2000) >> 4
	}
	palette := int(entry>>9) & 0x0F
	tx, ty := int(x&7), int(y&7)
	if entry&0x4000 != 0 {
		tx = 7 - tx
	}
	if entry&0x8000 != 0 {
		ty = 7 - ty
	}

	c := ppu.tilePixel(f, tile, tx, ty)
	if transparent(f, palette, c) {
		return pixel{}, false
	}
	return pixel{rgb: ppu.paletteColor(palette, c), opaque: true}, true
}

func inside(window [4]byte, x, y int) bool {
	return x >= int(window[0]) && x <= int(window[2]) &&
		y >= int(window[1]) && y <= int(window[3])
}

// composeSprites fills spriteLine from the latched sprite table. Sprites
// earlier in the table win, and at most 32 are drawn on a line.
func (ppu *PPU) composeSprites(f tileFormat, line int) {
	for i := range ppu.spriteLine {
		ppu.spriteLine[i] = pixel{}
	}
	useWindow := ppu.state.DispCtrl&0x08 != 0

	drawn := 0
	for i := 0; i < ppu.spriteCount && drawn < spritesOnLine; i++ {
		s := ppu.sprites[i]
		attr := uint16(s[0]) | uint16(s[1])<<8
		sy, sx := s[2], s[3]

		ty := int(byte(line) - sy)
		if ty >= 8 {
			continue
		}
		drawn++

		tile := int(attr & 0x1FF)
		palette := int(attr>>9)&0x07 + 8
		outside := attr&0x1000 != 0
		above := attr&0x2000 != 0
		if attr&0x8000 != 0 {
			ty = 7 - ty
		}

		for tx := 0; tx < 8; tx++ {
			x := int(sx + byte(tx))
			if x >= ScreenWidth || ppu.spriteLine[x].opaque {
				continue
			}
			if useWindow && inside(ppu.state.SprWindow, x, line) == outside {
				continue
			}
			px := tx
			if attr&0x4000 != 0 {
				px = 7 - tx
			}
			c := ppu.tilePixel(f, tile, px, ty)
			if transparent(f, palette, c) {
				continue
			}
			ppu.spriteLine[x] = pixel{rgb: ppu.paletteColor(palette, c), opaque: true, above: above}
		}
	}
}

// renderLine composes one visible line into the back buffer.
func (ppu *PPU) renderLine(line int) {
	s := &ppu.state
	row := ppu.back.Pix[line*ppu.back.Stride:]

	if s.LCDCtrl&0x01 == 0 {
		for x := 0; x < ScreenWidth; x++ {
			putRGB(row[x*4:], 0xFFF)
		}
		return
	}

	f := ppu.format()
	backdrop := ppu.backdrop()
	scr1 := s.DispCtrl&0x01 != 0
	scr2 := s.DispCtrl&0x02 != 0
	scr2Window := s.DispCtrl&0x20 != 0
	scr2Outside := s.DispCtrl&0x10 != 0
	sprites := s.DispCtrl&0x04 != 0
	if sprites {
		ppu.composeSprites(f, line)
	}
	base1, base2 := ppu.mapBase(1), ppu.mapBase(2)

	for x := 0; x < ScreenWidth; x++ {
		rgb := backdrop
		if scr1 {
			if p, ok := ppu.screenPixel(f, base1, s.Scr1X+byte(x), s.Scr1Y+byte(line)); ok {
				rgb = p.rgb
			}
		}
		sp := ppu.spriteLine[x]
		if sprites && sp.opaque && !sp.above {
			rgb = sp.rgb
		}
		if scr2 && (!scr2Window || inside(s.Scr2Window, x, line) != scr2Outside) {
			if p, ok := ppu.screenPixel(f, base2, s.Scr2X+byte(x), s.Scr2Y+byte(line)); ok {
				rgb = p.rgb
			}
		}
		if sprites && sp.opaque && sp.above {
			rgb = sp.rgb
		}
		putRGB(row[x*4:], rgb)
	}
}
