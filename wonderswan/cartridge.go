// refs: ws.nesdev.org/wiki/ROM_header
package wonderswan

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	footerSize  = 16
	zeroROMSize = 0x100000
)

var (
	ErrROMTooSmall     = errors.New("rom image is smaller than its footer")
	ErrUnknownSaveType = errors.New("unknown save type")
)

// cartridgeFooter is the metadata block in the last 16 bytes of every ROM.
type cartridgeFooter struct {
	Jump      [5]byte // far jump executed at reset
	Reserved  byte
	Publisher byte
	Color     byte
	GameID    byte
	Version   byte
	ROMSize   byte
	SaveType  byte
	Flags     byte
	Mapper    byte
	Checksum  uint16
}

type saveKind byte

const (
	saveNone saveKind = iota
	saveSRAM
	saveEEPROM
)

type saveLayout struct {
	kind saveKind
	size int
}

var saveTypes = map[byte]saveLayout{
	0x00: {saveNone, 0},
	0x01: {saveSRAM, 0x8000},
	0x02: {saveSRAM, 0x8000},
	0x03: {saveSRAM, 0x20000},
	0x04: {saveSRAM, 0x40000},
	0x05: {saveSRAM, 0x80000},
	0x10: {saveEEPROM, 0x80},
	0x20: {saveEEPROM, 0x800},
	0x50: {saveEEPROM, 0x400},
}

type Cartridge struct {
	ROM      []byte
	SRAM     []byte  // nil when the cartridge has none
	EEPROM   *EEPROM // nil when the cartridge has none
	MapperID byte
	Mapper   Mapper

	Color      bool
	SaveType   byte
	ROMInfo    byte // footer flags & 0x0C, reflected in port 0xA0
	Rewritable bool

	ROMFilePath string
	saveFile    *SaveFile
}

// LoadCartridge reads a .ws/.wsc image. Save memory is mapped onto a file
// named after the ROM inside saveDir, or beside the ROM when saveDir is empty.
func LoadCartridge(path string, saveDir string) (*Cartridge, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rom: %w", err)
	}
	if len(rom) < footerSize {
		return nil, fmt.Errorf("load rom %s: %w", path, ErrROMTooSmall)
	}

	footer := cartridgeFooter{}
	if err := binary.Read(bytes.NewReader(rom[len(rom)-footerSize:]), binary.LittleEndian, &footer); err != nil {
		return nil, fmt.Errorf("load rom %s: %w", path, err)
	}

	layout, ok := saveTypes[footer.SaveType]
	if !ok {
		return nil, fmt.Errorf("load rom %s: %w 0x%02X", path, ErrUnknownSaveType, footer.SaveType)
	}

	c := &Cartridge{
		ROM:         rom,
		MapperID:    footer.Mapper,
		Color:       footer.Color&1 != 0,
		SaveType:    footer.SaveType,
		ROMInfo:     footer.Flags & 0x0C,
		Rewritable:  true,
		ROMFilePath: path,
	}

	log.Printf("ROM Size: %d KiB\n", len(rom)/1024)
	log.Printf("Color: %v\n", c.Color)
	log.Printf("Mapper: %d\n", footer.Mapper)
	log.Printf("Save Type: 0x%02X\n", footer.SaveType)

	if layout.kind != saveNone {
		if saveDir == "" {
			saveDir = filepath.Dir(filepath.Clean(path))
		}
		ext := ".sram"
		fill := byte(0)
		if layout.kind == saveEEPROM {
			ext = ".eeprom"
			fill = 0xFF
		}
		savePath := filepath.Join(saveDir, fileNameWithoutExtension(path)+ext)
		memory := c.attachSaveFile(savePath, layout.size, fill)
		if layout.kind == saveSRAM {
			c.SRAM = memory
		} else {
			c.EEPROM = NewEEPROM(memory, eepromAddressBits(layout.size))
		}
	}

	c.Mapper = NewMapper(c)
	return c, nil
}

// NewZeroCartridge stands in when no ROM is given: 1 MiB of zero ROM and
// 1 MiB of writable SRAM behind a 2001 mapper.
func NewZeroCartridge() *Cartridge {
	c := &Cartridge{
		ROM:        make([]byte, zeroROMSize),
		SRAM:       make([]byte, zeroROMSize),
		MapperID:   MapperID2001,
		Rewritable: true,
	}
	c.Mapper = NewMapper(c)
	return c
}

func (c *Cartridge) attachSaveFile(path string, size int, fill byte) []byte {
	save, err := OpenSaveFile(path, size, fill)
	if err != nil {
		log.Printf("Save: %v, keeping save memory in RAM\n", err)
		memory := make([]byte, size)
		for i := range memory {
			memory[i] = fill
		}
		return memory
	}
	c.saveFile = save
	return save.Bytes()
}

func (c *Cartridge) ReadROM(address uint32) byte {
	return c.ROM[c.Mapper.MapROMAddress(address)]
}

func (c *Cartridge) ReadSRAM(address uint32) byte {
	offset, ok := c.Mapper.MapSRAMAddress(address)
	if !ok {
		return openBus
	}
	return c.SRAM[offset]
}

func (c *Cartridge) WriteSRAM(address uint32, value byte) {
	if !c.Rewritable {
		return
	}
	offset, ok := c.Mapper.MapSRAMAddress(address)
	if !ok {
		return
	}
	c.SRAM[offset] = value
}

// ReadPort serves cartridge ports 0xC0-0xFF.
func (c *Cartridge) ReadPort(port byte) byte {
	if port >= 0xC4 && port <= 0xC8 {
		if c.EEPROM == nil {
			return openBus
		}
		return c.EEPROM.ReadPort(port - 0xC4)
	}
	return c.Mapper.ReadControlPort(port)
}

func (c *Cartridge) WritePort(port byte, value byte) {
	if port >= 0xC4 && port <= 0xC8 {
		if c.EEPROM != nil {
			c.EEPROM.WritePort(port-0xC4, value)
		}
		return
	}
	c.Mapper.WriteControlPort(port, value)
}

// SaveMemory exposes the battery backed bytes (SRAM or EEPROM) verbatim.
func (c *Cartridge) SaveMemory() []byte {
	if c.SRAM != nil {
		return c.SRAM
	}
	if c.EEPROM != nil {
		return c.EEPROM.Contents()
	}
	return nil
}

func (c *Cartridge) HasBattery() bool {
	return c.saveFile != nil
}

func (c *Cartridge) Close() error {
	if c.saveFile == nil {
		return nil
	}
	if err := c.saveFile.Flush(); err != nil {
		log.Printf("Save: flush %s: %v\n", c.saveFile.Path(), err)
	}
	err := c.saveFile.Close()
	c.saveFile = nil
	return err
}
