// refs: ws.nesdev.org/wiki/Interrupts
package wonderswan

// InterruptSource is a bit index into the interrupt registers. A higher
// index has a higher priority.
type InterruptSource byte

const (
	IntSerialSend InterruptSource = iota
	IntKey
	IntCartridge
	IntSerialReceive
	IntLineCompare
	IntVBlankTimer
	IntVBlank
	IntHBlankTimer
)

var interruptNames = [8]string{
	"SerialSend", "Key", "Cartridge", "SerialReceive",
	"LineCompare", "VBlankTimer", "VBlank", "HBlankTimer",
}

func (s InterruptSource) String() string {
	return interruptNames[s&7]
}

// InterruptLine is what the CPU needs from the interrupt controller.
type InterruptLine interface {
	// PendingVector reports the vector of the highest priority source that
	// is both pending and enabled.
	PendingVector() (byte, bool)
}

type InterruptController struct {
	base    byte // port 0xB0
	enable  byte // port 0xB2
	pending byte // port 0xB4
}

func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

func (ic *InterruptController) Reset() {
	ic.base = 0
	ic.enable = 0
	ic.pending = 0
}

// Raise latches a request. Raising an already pending source does nothing.
func (ic *InterruptController) Raise(src InterruptSource) {
	ic.pending |= 1 << src
}

func (ic *InterruptController) Acknowledge(src InterruptSource) {
	ic.pending &^= 1 << src
}

func (ic *InterruptController) HighestPending() (InterruptSource, bool) {
	active := ic.pending & ic.enable
	if active == 0 {
		return 0, false
	}
	for src := IntHBlankTimer; ; src-- {
		if active&(1<<src) != 0 {
			return src, true
		}
	}
}

func (ic *InterruptController) Vector(src InterruptSource) byte {
	return ic.base + byte(src)
}

func (ic *InterruptController) PendingVector() (byte, bool) {
	src, ok := ic.HighestPending()
	if !ok {
		return 0, false
	}
	return ic.Vector(src), true
}

func (ic *InterruptController) SetEnable(mask byte) {
	ic.enable = mask
}

func (ic *InterruptController) Enable() byte {
	return ic.enable
}

func (ic *InterruptController) Pending() byte {
	return ic.pending
}

func (ic *InterruptController) SetBase(v byte) {
	ic.base = v & 0xF8
}

func (ic *InterruptController) ReadPort(port byte) byte {
	switch port {
	case 0xB0:
		return ic.base
	case 0xB2:
		return ic.enable
	case 0xB4:
		return ic.pending
	}
	// 0xB6 is write only
	return 0
}

func (ic *InterruptController) WritePort(port byte, value byte) {
	switch port {
	case 0xB0:
		ic.SetBase(value)
	case 0xB2:
		ic.SetEnable(value)
	case 0xB6:
		for src := IntSerialSend; src <= IntHBlankTimer; src++ {
			if value&(1<<src) != 0 {
				ic.Acknowledge(src)
			}
		}
	}
}
