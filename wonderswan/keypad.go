package wonderswan

const (
	ButtonY1 = iota
	ButtonY2
	ButtonY3
	ButtonY4
	ButtonX1
	ButtonX2
	ButtonX3
	ButtonX4
	ButtonA
	ButtonB
	ButtonStart
	NumButtons
)

// key matrix bits: Y group in 8-11, X group in 4-7, buttons in 1-3
var buttonBits = [NumButtons]uint16{
	ButtonY1:    0x0100,
	ButtonY2:    0x0200,
	ButtonY3:    0x0400,
	ButtonY4:    0x0800,
	ButtonX1:    0x0010,
	ButtonX2:    0x0020,
	ButtonX3:    0x0040,
	ButtonX4:    0x0080,
	ButtonA:     0x0004,
	ButtonB:     0x0008,
	ButtonStart: 0x0002,
}

type Keypad struct {
	irq   *InterruptController
	state uint16
	scan  byte // port 0xB5 bits 4-6
}

func NewKeypad(irq *InterruptController) *Keypad {
	return &Keypad{irq: irq}
}

func (k *Keypad) Reset() {
	k.state = 0
	k.scan = 0
}

func (k *Keypad) SetButtons(buttons [NumButtons]bool) {
	var state uint16
	for i, pressed := range buttons {
		if pressed {
			state |= buttonBits[i]
		}
	}
	if state&^k.state != 0 {
		k.irq.Raise(IntKey)
	}
	k.state = state
}

func (k *Keypad) Buttons() uint16 {
	return k.state
}

// Read returns port 0xB5: the selected groups ORed together in the low nibble.
func (k *Keypad) Read() byte {
	var keys byte
	if k.scan&0x40 != 0 {
		keys |= byte(k.state) & 0x0F
	}
	if k.scan&0x20 != 0 {
		keys |= byte(k.state>>4) & 0x0F
	}
	if k.scan&0x10 != 0 {
		keys |= byte(k.state>>8) & 0x0F
	}
	return k.scan | keys
}

func (k *Keypad) Write(value byte) {
	k.scan = value & 0x70
}
