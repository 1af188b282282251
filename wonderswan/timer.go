// refs: ws.nesdev.org/wiki/Timers
package wonderswan

// countdown is one of the two line/frame timers.
type countdown struct {
	enabled bool
	repeat  bool
	reload  uint16
	counter uint16
	source  InterruptSource
}

func (c *countdown) tick(irq *InterruptController) {
	if !c.enabled || c.counter == 0 {
		return
	}
	c.counter--
	if c.counter != 0 {
		return
	}
	irq.Raise(c.source)
	if c.repeat {
		c.counter = c.reload
	} else {
		c.enabled = false
	}
}

// Timer is clocked by the PPU: the HBlank timer once per line and the
// VBlank timer once per frame.
type Timer struct {
	irq    *InterruptController
	hblank countdown
	vblank countdown
}

func NewTimer(irq *InterruptController) *Timer {
	t := &Timer{irq: irq}
	t.Reset()
	return t
}

func (t *Timer) Reset() {
	t.hblank = countdown{source: IntHBlankTimer}
	t.vblank = countdown{source: IntVBlankTimer}
}

func (t *Timer) TickHBlank() {
	t.hblank.tick(t.irq)
}

func (t *Timer) TickVBlank() {
	t.vblank.tick(t.irq)
}

func (t *Timer) control() byte {
	var v byte
	if t.hblank.enabled {
		v |= 0x01
	}
	if t.hblank.repeat {
		v |= 0x02
	}
	if t.vblank.enabled {
		v |= 0x04
	}
	if t.vblank.repeat {
		v |= 0x08
	}
	return v
}

func (t *Timer) setControl(value byte) {
	hblankOn := value&0x01 != 0
	vblankOn := value&0x04 != 0
	if hblankOn && !t.hblank.enabled {
		t.hblank.counter = t.hblank.reload
	}
	if vblankOn && !t.vblank.enabled {
		t.vblank.counter = t.vblank.reload
	}
	t.hblank.enabled = hblankOn
	t.hblank.repeat = value&0x02 != 0
	t.vblank.enabled = vblankOn
	t.vblank.repeat = value&0x08 != 0
}

func (t *Timer) ReadPort(port byte) byte {
	switch port {
	case 0xA2:
		return t.control()
	case 0xA4:
		return byte(t.hblank.reload)
	case 0xA5:
		return byte(t.hblank.reload >> 8)
	case 0xA6:
		return byte(t.vblank.reload)
	case 0xA7:
		return byte(t.vblank.reload >> 8)
	case 0xA8:
		return byte(t.hblank.counter)
	case 0xA9:
		return byte(t.hblank.counter >> 8)
	case 0xAA:
		return byte(t.vblank.counter)
	case 0xAB:
		return byte(t.vblank.counter >> 8)
	}
	return 0
}

func (t *Timer) WritePort(port byte, value byte) {
	switch port {
	case 0xA2:
		t.setControl(value)
	case 0xA4:
		setLow(&t.hblank.reload, value)
		t.hblank.counter = t.hblank.reload
	case 0xA5:
		setHigh(&t.hblank.reload, value)
		t.hblank.counter = t.hblank.reload
	case 0xA6:
		setLow(&t.vblank.reload, value)
		t.vblank.counter = t.vblank.reload
	case 0xA7:
		setHigh(&t.vblank.reload, value)
		t.vblank.counter = t.vblank.reload
	}
}
