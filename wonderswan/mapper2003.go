package wonderswan

// Mapper2003 is the Bandai 2003 chip. It keeps the 2001 ports and adds
// 16-bit bank registers, a linear bank shadow and the memory control latch.
type Mapper2003 struct {
	mapperBase

	memoryControl byte // 0xCE
}

func NewMapper2003(cartridge *Cartridge) *Mapper2003 {
	return &Mapper2003{mapperBase: newMapperBase(cartridge)}
}

func (m *Mapper2003) Reset() {
	m.mapperBase.Reset()
	m.memoryControl = 0
}

func (m *Mapper2003) ReadControlPort(port byte) byte {
	switch port {
	case portLinearBank, 0xCF:
		return byte(m.banks.Linear)
	case portRAMBank, 0xD0:
		return byte(m.banks.RAM)
	case 0xD1:
		return byte(m.banks.RAM >> 8)
	case portROMBank0, 0xD2:
		return byte(m.banks.ROM0)
	case 0xD3:
		return byte(m.banks.ROM0 >> 8)
	case portROMBank1, 0xD4:
		return byte(m.banks.ROM1)
	case 0xD5:
		return byte(m.banks.ROM1 >> 8)
	case 0xCE:
		return m.memoryControl
	}
	return openBus
}

func (m *Mapper2003) WriteControlPort(port byte, value byte) {
	switch port {
	case portLinearBank, 0xCF:
		m.banks.Linear = uint16(value)
	case portRAMBank, 0xD0:
		setLow(&m.banks.RAM, value)
	case 0xD1:
		setHigh(&m.banks.RAM, value)
	case portROMBank0, 0xD2:
		setLow(&m.banks.ROM0, value)
	case 0xD3:
		setHigh(&m.banks.ROM0, value)
	case portROMBank1, 0xD4:
		setLow(&m.banks.ROM1, value)
	case 0xD5:
		setHigh(&m.banks.ROM1, value)
	case 0xCE:
		m.memoryControl = value & 0x01
	}
}
