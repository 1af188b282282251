// refs: ws.nesdev.org/wiki/DMA
package wonderswan

// dmaBus is the part of the Bus a DMA engine drives.
type dmaBus interface {
	ReadMemory(address uint32) byte
	WriteMemory(address uint32, value byte)
	WritePort(port uint16, value byte)
}

const (
	gdmaStartCycles = 5
	gdmaByteCycles  = 2
	sdmaSampleClock = 128
)

var sdmaRates = [4]int{6, 4, 2, 1}

// DMA is the Color-only general purpose and sound DMA pair.
type DMA struct {
	bus       dmaBus
	colorMode func() bool

	// GDMA, ports 0x40-0x48
	gdmaSource  uint32
	gdmaDest    uint16
	gdmaLength  uint16
	gdmaControl byte
	stolen      int

	// SDMA, ports 0x4A-0x52
	sdmaSource       uint32
	sdmaLength       uint32
	sdmaSourceShadow uint32
	sdmaLengthShadow uint32
	sdmaControl      byte
	sdmaTimer        int
}

func NewDMA(bus dmaBus, colorMode func() bool) *DMA {
	return &DMA{bus: bus, colorMode: colorMode}
}

func (d *DMA) Reset() {
	*d = DMA{bus: d.bus, colorMode: d.colorMode}
}

func (d *DMA) ReadPort(port byte) byte {
	switch port {
	case 0x40:
		return byte(d.gdmaSource) & 0xFE
	case 0x41:
		return byte(d.gdmaSource >> 8)
	case 0x42:
		return byte(d.gdmaSource>>16) & 0x0F
	case 0x44:
		return byte(d.gdmaDest) & 0xFE
	case 0x45:
		return byte(d.gdmaDest >> 8)
	case 0x46:
		return byte(d.gdmaLength) & 0xFE
	case 0x47:
		return byte(d.gdmaLength >> 8)
	case 0x48:
		return d.gdmaControl & 0xC0
	case 0x4A:
		return byte(d.sdmaSource)
	case 0x4B:
		return byte(d.sdmaSource >> 8)
	case 0x4C:
		return byte(d.sdmaSource>>16) & 0x0F
	case 0x4E:
		return byte(d.sdmaLength)
	case 0x4F:
		return byte(d.sdmaLength >> 8)
	case 0x50:
		return byte(d.sdmaLength>>16) & 0x0F
	case 0x52:
		return d.sdmaControl
	}
	return 0
}

func (d *DMA) WritePort(port byte, value byte) {
	switch port {
	case 0x40:
		d.gdmaSource = d.gdmaSource&^0xFF | uint32(value&0xFE)
	case 0x41:
		d.gdmaSource = d.gdmaSource&^0xFF00 | uint32(value)<<8
	case 0x42:
		d.gdmaSource = d.gdmaSource&0xFFFF | uint32(value&0x0F)<<16
	case 0x44:
		setLow(&d.gdmaDest, value&0xFE)
	case 0x45:
		setHigh(&d.gdmaDest, value)
	case 0x46:
		setLow(&d.gdmaLength, value&0xFE)
	case 0x47:
		setHigh(&d.gdmaLength, value)
	case 0x48:
		d.gdmaControl = value & 0xC0
		if value&0x80 != 0 {
			d.runGDMA()
		}
	case 0x4A:
		d.sdmaSource = d.sdmaSource&^0xFF | uint32(value)
		d.sdmaSourceShadow = d.sdmaSource
	case 0x4B:
		d.sdmaSource = d.sdmaSource&^0xFF00 | uint32(value)<<8
		d.sdmaSourceShadow = d.sdmaSource
	case 0x4C:
		d.sdmaSource = d.sdmaSource&0xFFFF | uint32(value&0x0F)<<16
		d.sdmaSourceShadow = d.sdmaSource
	case 0x4E:
		d.sdmaLength = d.sdmaLength&^0xFF | uint32(value)
		d.sdmaLengthShadow = d.sdmaLength
	case 0x4F:
		d.sdmaLength = d.sdmaLength&^0xFF00 | uint32(value)<<8
		d.sdmaLengthShadow = d.sdmaLength
	case 0x50:
		d.sdmaLength = d.sdmaLength&0xFFFF | uint32(value&0x0F)<<16
		d.sdmaLengthShadow = d.sdmaLength
	case 0x52:
		if value&0x80 != 0 && d.sdmaControl&0x80 == 0 {
			d.sdmaTimer = d.sdmaPeriod(value)
		}
		d.sdmaControl = value
	}
}

// runGDMA performs a general DMA transfer in one go and books the cycles
// it steals from the CPU.
func (d *DMA) runGDMA() {
	defer func() { d.gdmaControl &^= 0x80 }()

	if !d.colorMode() || d.gdmaLength == 0 {
		return
	}
	if d.gdmaSource >= 0x10000 && d.gdmaSource < 0x20000 {
		return
	}

	step := uint32(1)
	if d.gdmaControl&0x40 != 0 {
		step = ^uint32(0)
	}

	d.stolen += gdmaStartCycles
	for d.gdmaLength > 0 {
		value := d.bus.ReadMemory(d.gdmaSource)
		d.bus.WriteMemory(uint32(d.gdmaDest), value)
		d.gdmaSource = (d.gdmaSource + step) & 0xFFFFF
		d.gdmaDest += uint16(step)
		d.gdmaLength--
		d.stolen += gdmaByteCycles
		if d.gdmaSource >= 0x10000 && d.gdmaSource < 0x20000 {
			break
		}
	}
	d.gdmaLength = 0
}

func (d *DMA) sdmaPeriod(control byte) int {
	return sdmaSampleClock * sdmaRates[control&3]
}

// Step advances the sound DMA by cycles and returns the cycles stolen by
// general DMA since the previous call.
func (d *DMA) Step(cycles int) int {
	stolen := d.stolen
	d.stolen = 0

	if d.sdmaControl&0x80 == 0 || !d.colorMode() {
		return stolen
	}

	d.sdmaTimer -= cycles + stolen
	for d.sdmaTimer <= 0 && d.sdmaControl&0x80 != 0 {
		d.sdmaTimer += d.sdmaPeriod(d.sdmaControl)
		d.sdmaTransfer()
	}
	return stolen
}

func (d *DMA) sdmaTransfer() {
	// hold keeps the channel silent without consuming data
	if d.sdmaControl&0x04 != 0 {
		d.bus.WritePort(0x89, 0)
		return
	}

	d.bus.WritePort(0x89, d.bus.ReadMemory(d.sdmaSource))
	if d.sdmaControl&0x40 != 0 {
		d.sdmaSource = (d.sdmaSource - 1) & 0xFFFFF
	} else {
		d.sdmaSource = (d.sdmaSource + 1) & 0xFFFFF
	}

	if d.sdmaLength > 0 {
		d.sdmaLength--
	}
	if d.sdmaLength != 0 {
		return
	}
	if d.sdmaControl&0x08 != 0 {
		d.sdmaSource = d.sdmaSourceShadow
		d.sdmaLength = d.sdmaLengthShadow
	} else {
		d.sdmaControl &^= 0x80
	}
}
