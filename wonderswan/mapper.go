// refs: ws.nesdev.org/wiki/Mapper
package wonderswan

import "log"

const (
	MapperID2001 byte = 0
	MapperID2003 byte = 1
)

// Bank select ports shared by every Bandai mapper.
const (
	portLinearBank byte = 0xC0
	portRAMBank    byte = 0xC1
	portROMBank0   byte = 0xC2
	portROMBank1   byte = 0xC3
)

type Mapper interface {
	// MapROMAddress turns a 20-bit address in 0x20000-0xFFFFF into an
	// offset inside the ROM image.
	MapROMAddress(address uint32) uint32
	// MapSRAMAddress turns a 20-bit address in 0x10000-0x1FFFF into an
	// offset inside save RAM. It returns false when there is no SRAM.
	MapSRAMAddress(address uint32) (uint32, bool)
	// Address range: 0xC0-0xFF
	ReadControlPort(port byte) byte
	// Address range: 0xC0-0xFF
	WriteControlPort(port byte, value byte)

	Reset()
}

func NewMapper(cartridge *Cartridge) Mapper {
	switch cartridge.MapperID {
	case MapperID2001:
		return NewMapper2001(cartridge)
	case MapperID2003:
		return NewMapper2003(cartridge)
	}
	log.Printf("Unknown mapper %d, using 2001\n", cartridge.MapperID)
	return NewMapper2001(cartridge)
}

// BankState holds the bank registers. Mapper 2001 only ever sets the low
// byte of each register.
type BankState struct {
	Linear uint16
	RAM    uint16
	ROM0   uint16
	ROM1   uint16
}

type mapperBase struct {
	romSize  uint32
	sramSize uint32
	banks    BankState
}

func newMapperBase(cartridge *Cartridge) mapperBase {
	m := mapperBase{
		romSize:  uint32(len(cartridge.ROM)),
		sramSize: uint32(len(cartridge.SRAM)),
	}
	m.Reset()
	return m
}

func (m *mapperBase) Reset() {
	m.banks = BankState{Linear: 0xFF, RAM: 0xFF, ROM0: 0xFF, ROM1: 0xFF}
}

func (m *mapperBase) Banks() BankState {
	return m.banks
}

func (m *mapperBase) MapROMAddress(address uint32) uint32 {
	if m.romSize == 0 {
		return 0
	}
	var offset uint32
	switch address >> 16 {
	case 0x2:
		offset = uint32(m.banks.ROM0)<<16 | address&0xFFFF
	case 0x3:
		offset = uint32(m.banks.ROM1)<<16 | address&0xFFFF
	default:
		offset = uint32(m.banks.Linear)<<20 | address&0xFFFFF
	}
	return offset % m.romSize
}

func (m *mapperBase) MapSRAMAddress(address uint32) (uint32, bool) {
	if m.sramSize == 0 {
		return 0, false
	}
	offset := uint32(m.banks.RAM)<<16 | address&0xFFFF
	return offset % m.sramSize, true
}

func setLow(reg *uint16, value byte) {
	*reg = *reg&0xFF00 | uint16(value)
}

func setHigh(reg *uint16, value byte) {
	*reg = *reg&0x00FF | uint16(value)<<8
}
