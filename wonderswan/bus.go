// refs: ws.nesdev.org/wiki/Memory_map
package wonderswan

// openBus is what the WonderSwan reads back from unmapped memory and ports.
const openBus byte = 0x90

type Width byte

const (
	Width8  Width = 1
	Width16 Width = 2
)

// Bus routes 20-bit memory accesses and 16-bit port accesses to their
// owners. It does not hold any timing state.
type Bus struct {
	RAM        [0x10000]byte // 16 KiB on mono, 64 KiB on Color
	Cartridge  *Cartridge
	PPU        *PPU
	APU        *APU
	Timer      *Timer
	Interrupts *InterruptController
	DMA        *DMA
	Keypad     *Keypad
	IEEPROM    *EEPROM

	colorHardware bool
	ports         [0x100]byte // latches for ports no peripheral owns
}

func NewBus(cartridge *Cartridge, colorHardware bool) *Bus {
	return &Bus{
		Cartridge:     cartridge,
		colorHardware: colorHardware,
	}
}

func (b *Bus) Reset() {
	for i := range b.RAM {
		b.RAM[i] = 0
	}
	for i := range b.ports {
		b.ports[i] = 0
	}
}

func (b *Bus) ColorHardware() bool {
	return b.colorHardware
}

func (b *Bus) colorMode() bool {
	return b.PPU != nil && b.PPU.ColorMode()
}

func (b *Bus) ReadMemory(address uint32) byte {
	address &= 0xFFFFF

	switch {
	case address < 0x04000:
		// 0x00000-0x03FFF
		return b.RAM[address]
	case address < 0x10000:
		// 0x04000-0x0FFFF
		if !b.colorMode() {
			return openBus
		}
		return b.RAM[address]
	case address < 0x20000:
		// 0x10000-0x1FFFF
		return b.Cartridge.ReadSRAM(address)
	default:
		// 0x20000-0xFFFFF
		return b.Cartridge.ReadROM(address)
	}
}

func (b *Bus) WriteMemory(address uint32, value byte) {
	address &= 0xFFFFF

	switch {
	case address < 0x04000:
		b.RAM[address] = value
	case address < 0x10000:
		if b.colorMode() {
			b.RAM[address] = value
		}
	case address < 0x20000:
		b.Cartridge.WriteSRAM(address, value)
	default:
		// ROM, writes are dropped
	}
}

// ReadMemory16 reads two bytes, low first. The second byte wraps inside
// the 20-bit address space.
func (b *Bus) ReadMemory16(address uint32) uint16 {
	lo := uint16(b.ReadMemory(address))
	hi := uint16(b.ReadMemory(address + 1))
	return hi<<8 | lo
}

func (b *Bus) WriteMemory16(address uint32, value uint16) {
	b.WriteMemory(address, byte(value))
	b.WriteMemory(address+1, byte(value>>8))
}

func (b *Bus) ReadPort16(port uint16) uint16 {
	lo := uint16(b.ReadPort(port))
	hi := uint16(b.ReadPort(port + 1))
	return hi<<8 | lo
}

func (b *Bus) WritePort16(port uint16, value uint16) {
	b.WritePort(port, byte(value))
	b.WritePort(port+1, byte(value>>8))
}

// Read is the width generic form of ReadMemory.
func (b *Bus) Read(width Width, address uint32) uint16 {
	if width == Width16 {
		return b.ReadMemory16(address)
	}
	return uint16(b.ReadMemory(address))
}

func (b *Bus) Write(width Width, address uint32, value uint16) {
	if width == Width16 {
		b.WriteMemory16(address, value)
		return
	}
	b.WriteMemory(address, byte(value))
}
