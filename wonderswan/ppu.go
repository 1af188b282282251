// refs: ws.nesdev.org/wiki/Display
package wonderswan

import "image"

const (
	ScreenWidth  = 224
	ScreenHeight = 144

	dotsPerLine   = 256
	hblankDot     = 224
	vblankLine    = 144
	spriteLatch   = 142
	defaultVTotal = 158
	maxSprites    = 128
	spritesOnLine = 32
)

type PPUMode byte

const (
	ModeVisible PPUMode = iota
	ModeHBlank
	ModeVBlank
)

func (m PPUMode) String() string {
	switch m {
	case ModeVisible:
		return "visible"
	case ModeHBlank:
		return "hblank"
	default:
		return "vblank"
	}
}

// PPUState holds the display registers at ports 0x00-0x3F and 0x60.
type PPUState struct {
	DispCtrl   byte // 0x00
	BackColor  byte // 0x01
	LineCmp    byte // 0x03
	SprBase    byte // 0x04
	SprFirst   byte // 0x05
	SprCount   byte // 0x06
	MapBase    byte // 0x07
	Scr2Window [4]byte
	SprWindow  [4]byte
	Scr1X      byte // 0x10
	Scr1Y      byte // 0x11
	Scr2X      byte // 0x12
	Scr2Y      byte // 0x13
	LCDCtrl    byte // 0x14
	LCDIcons   byte // 0x15
	VTotal     byte // 0x16
	VSync      byte // 0x17
	ShadeLUT   [8]byte
	Palettes   [16][4]byte // mono palettes, 3-bit shade indexes
	DispMode   byte        // 0x60
	ports      [0x40]byte
}

type PPU struct {
	vram  []byte
	irq   *InterruptController
	timer *Timer

	state PPUState

	scanLine int // 0-VTOTAL, 0-143 visible
	dot      int // 0-255
	Frame    uint64

	mode PPUMode

	sprites     [maxSprites][4]byte
	spriteCount int

	front *image.RGBA
	back  *image.RGBA

	// sprite pixels of the line being composed
	spriteLine [ScreenWidth]pixel
}

func NewPPU(vram []byte, irq *InterruptController, timer *Timer) *PPU {
	ppu := PPU{vram: vram, irq: irq, timer: timer}
	ppu.front = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	ppu.back = image.NewRGBA(image.Rect(0, 0, ScreenWidth, ScreenHeight))
	ppu.Reset()
	return &ppu
}

func (ppu *PPU) Reset() {
	ppu.state = PPUState{VTotal: defaultVTotal, LCDCtrl: 0x01}
	ppu.scanLine = 0
	ppu.dot = 0
	ppu.mode = ModeVisible
	ppu.spriteCount = 0
	ppu.Frame = 0
}

func (ppu *PPU) Line() byte {
	return byte(ppu.scanLine)
}

func (ppu *PPU) Mode() PPUMode {
	return ppu.mode
}

func (ppu *PPU) ColorMode() bool {
	return ppu.state.DispMode&0x80 != 0
}

func (ppu *PPU) Icons() byte {
	return ppu.state.LCDIcons
}

// Front returns the last completed frame.
func (ppu *PPU) Front() *image.RGBA {
	return ppu.front
}

func (ppu *PPU) swapBuffer() {
	ppu.front, ppu.back = ppu.back, ppu.front
}

// lastLine is the line after which the counter wraps to 0. It never ends a
// frame before VBlank.
func (ppu *PPU) lastLine() int {
	if int(ppu.state.VTotal) < vblankLine {
		return vblankLine
	}
	return int(ppu.state.VTotal)
}

// Step advances the display by cycles dots.
func (ppu *PPU) Step(cycles int) {
	for cycles > 0 {
		target := dotsPerLine
		if ppu.dot < hblankDot {
			target = hblankDot
		}
		n := target - ppu.dot
		if n > cycles {
			ppu.dot += cycles
			return
		}
		cycles -= n
		ppu.dot = target

		if ppu.dot == hblankDot {
			ppu.enterHBlank()
		} else {
			ppu.nextLine()
		}
	}
}

func (ppu *PPU) enterHBlank() {
	if ppu.scanLine < vblankLine {
		ppu.renderLine(ppu.scanLine)
		ppu.mode = ModeHBlank
	}
	ppu.timer.TickHBlank()
}

func (ppu *PPU) nextLine() {
	ppu.dot = 0
	ppu.scanLine++
	if ppu.scanLine > ppu.lastLine() {
		ppu.scanLine = 0
	}

	switch {
	case ppu.scanLine == vblankLine:
		ppu.mode = ModeVBlank
		ppu.irq.Raise(IntVBlank)
		ppu.timer.TickVBlank()
		ppu.swapBuffer()
		ppu.Frame++
	case ppu.scanLine < vblankLine:
		ppu.mode = ModeVisible
	}

	if ppu.scanLine == spriteLatch {
		ppu.latchSprites()
	}
	if ppu.scanLine == int(ppu.state.LineCmp) {
		ppu.irq.Raise(IntLineCompare)
	}
}

// latchSprites copies the sprite table used for the next frame.
func (ppu *PPU) latchSprites() {
	base := ppu.spriteTableBase()
	count := int(ppu.state.SprCount)
	if count > maxSprites {
		count = maxSprites
	}
	first := int(ppu.state.SprFirst) & 0x7F
	ppu.spriteCount = count
	for i := 0; i < count; i++ {
		address := base + uint32((first+i)&0x7F)*4
		for j := 0; j < 4; j++ {
			ppu.sprites[i][j] = ppu.vram[(address+uint32(j))&0xFFFF]
		}
	}
}

func (ppu *PPU) spriteTableBase() uint32 {
	mask := byte(0x1F)
	if ppu.ColorMode() {
		mask = 0x3F
	}
	return uint32(ppu.state.SprBase&mask) << 9
}

func (ppu *PPU) ReadPort(port byte) byte {
	s := &ppu.state
	switch {
	case port == 0x02:
		return ppu.Line()
	case port == 0x60:
		return s.DispMode
	case port >= 0x1C && port <= 0x1F:
		i := (port - 0x1C) * 2
		return s.ShadeLUT[i] | s.ShadeLUT[i+1]<<4
	case port >= 0x20 && port <= 0x3F:
		p := s.Palettes[(port-0x20)/2]
		if port&1 == 0 {
			return p[0] | p[1]<<4
		}
		return p[2] | p[3]<<4
	case port < 0x40:
		return s.ports[port]
	}
	return openBus
}

func (ppu *PPU) WritePort(port byte, value byte) {
	s := &ppu.state
	if port < 0x40 {
		s.ports[port] = value
	}

	switch {
	case port == 0x00:
		s.DispCtrl = value & 0x3F
	case port == 0x01:
		s.BackColor = value
	case port == 0x03:
		s.LineCmp = value
	case port == 0x04:
		s.SprBase = value & 0x3F
	case port == 0x05:
		s.SprFirst = value & 0x7F
	case port == 0x06:
		s.SprCount = value
	case port == 0x07:
		s.MapBase = value
	case port >= 0x08 && port <= 0x0B:
		s.Scr2Window[port-0x08] = value
	case port >= 0x0C && port <= 0x0F:
		s.SprWindow[port-0x0C] = value
	case port == 0x10:
		s.Scr1X = value
	case port == 0x11:
		s.Scr1Y = value
	case port == 0x12:
		s.Scr2X = value
	case port == 0x13:
		s.Scr2Y = value
	case port == 0x14:
		s.LCDCtrl = value
	case port == 0x15:
		s.LCDIcons = value
	case port == 0x16:
		s.VTotal = value
	case port == 0x17:
		s.VSync = value
	case port >= 0x1C && port <= 0x1F:
		i := (port - 0x1C) * 2
		s.ShadeLUT[i] = value & 0x0F
		s.ShadeLUT[i+1] = value >> 4
	case port >= 0x20 && port <= 0x3F:
		p := &s.Palettes[(port-0x20)/2]
		if port&1 == 0 {
			p[0], p[1] = value&0x07, (value>>4)&0x07
		} else {
			p[2], p[3] = value&0x07, (value>>4)&0x07
		}
	case port == 0x60:
		s.DispMode = value
	}
}
