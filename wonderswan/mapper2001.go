package wonderswan

// Mapper2001 is the Bandai 2001 chip: four 8-bit bank registers.
type Mapper2001 struct {
	mapperBase
}

func NewMapper2001(cartridge *Cartridge) *Mapper2001 {
	return &Mapper2001{mapperBase: newMapperBase(cartridge)}
}

func (m *Mapper2001) ReadControlPort(port byte) byte {
	switch port {
	case portLinearBank:
		return byte(m.banks.Linear)
	case portRAMBank:
		return byte(m.banks.RAM)
	case portROMBank0:
		return byte(m.banks.ROM0)
	case portROMBank1:
		return byte(m.banks.ROM1)
	}
	return openBus
}

func (m *Mapper2001) WriteControlPort(port byte, value byte) {
	switch port {
	case portLinearBank:
		m.banks.Linear = uint16(value)
	case portRAMBank:
		m.banks.RAM = uint16(value)
	case portROMBank0:
		m.banks.ROM0 = uint16(value)
	case portROMBank1:
		m.banks.ROM1 = uint16(value)
	}
}
