// refs: github.com/fogleman/nes
package wonderswan

import (
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
)

const (
	monoIEEPROMSize  = 0x80
	colorIEEPROMSize = 0x800
)

type Console struct {
	CPU        *CPU
	Bus        *Bus
	PPU        *PPU
	APU        *APU
	DMA        *DMA
	Timer      *Timer
	Interrupts *InterruptController
	Keypad     *Keypad
	Cartridge  *Cartridge
	IEEPROM    *EEPROM

	ieepromFile *SaveFile
	options     options
}

type options struct {
	mute    bool
	trace   TraceSink
	color   *bool
	saveDir string
}

type Option func(*options)

// WithMute drops all audio output. Sound state keeps running.
func WithMute(mute bool) Option {
	return func(o *options) { o.mute = mute }
}

func WithTrace(sink TraceSink) Option {
	return func(o *options) { o.trace = sink }
}

// WithColor forces mono or Color hardware regardless of the ROM footer.
func WithColor(color bool) Option {
	return func(o *options) { o.color = &color }
}

// WithSaveDir sets where save files are kept. It defaults to the ROM's
// directory.
func WithSaveDir(dir string) Option {
	return func(o *options) { o.saveDir = dir }
}

// NewConsole builds a powered on system. An empty path runs the zero ROM.
func NewConsole(path string, opts ...Option) (*Console, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var cartridge *Cartridge
	if path == "" {
		cartridge = NewZeroCartridge()
	} else {
		var err error
		cartridge, err = LoadCartridge(path, o.saveDir)
		if err != nil {
			return nil, fmt.Errorf("new console: %w", err)
		}
	}

	color := cartridge.Color
	if o.color != nil {
		color = *o.color
	}

	console := Console{Cartridge: cartridge, options: o}
	console.Interrupts = NewInterruptController()
	console.Bus = NewBus(cartridge, color)
	console.Timer = NewTimer(console.Interrupts)
	console.Keypad = NewKeypad(console.Interrupts)
	console.PPU = NewPPU(console.Bus.RAM[:], console.Interrupts, console.Timer)
	console.APU = NewAPU(console.Bus.RAM[:])
	console.DMA = NewDMA(console.Bus, console.Bus.colorMode)
	console.CPU = NewCPU(console.Bus, console.Interrupts)

	console.Bus.PPU = console.PPU
	console.Bus.APU = console.APU
	console.Bus.DMA = console.DMA
	console.Bus.Timer = console.Timer
	console.Bus.Interrupts = console.Interrupts
	console.Bus.Keypad = console.Keypad

	console.attachIEEPROM(path, color)
	console.Bus.IEEPROM = console.IEEPROM

	console.APU.SetMuted(o.mute)
	if o.trace != nil {
		console.CPU.SetTraceSink(o.trace)
	}

	console.Reset()

	return &console, nil
}

// attachIEEPROM maps the console's own EEPROM, shared by every game, onto
// ws.ieeprom or wsc.ieeprom in the save directory.
func (console *Console) attachIEEPROM(romPath string, color bool) {
	size, name := monoIEEPROMSize, "ws.ieeprom"
	if color {
		size, name = colorIEEPROMSize, "wsc.ieeprom"
	}

	dir := console.options.saveDir
	if dir == "" && romPath != "" {
		dir = filepath.Dir(filepath.Clean(romPath))
	}

	var memory []byte
	if dir != "" {
		save, err := OpenSaveFile(filepath.Join(dir, name), size, 0xFF)
		if err != nil {
			log.Printf("Internal EEPROM: %v, keeping it in RAM\n", err)
		} else {
			console.ieepromFile = save
			memory = save.Bytes()
		}
	}
	if memory == nil {
		memory = make([]byte, size)
		for i := range memory {
			memory[i] = 0xFF
		}
	}
	console.IEEPROM = NewEEPROM(memory, eepromAddressBits(size))
}

func (console *Console) Reset() {
	console.Bus.Reset()
	console.Interrupts.Reset()
	console.Timer.Reset()
	console.Keypad.Reset()
	console.DMA.Reset()
	console.PPU.Reset()
	console.APU.Reset()
	console.Cartridge.Mapper.Reset()
	console.CPU.Reset()
}

// Step runs one CPU step and advances the rest of the system by the
// cycles it took, including cycles stolen by general DMA.
func (console *Console) Step() int {
	cycles := console.CPU.Step()
	cycles += console.DMA.Step(cycles)
	console.PPU.Step(cycles)
	console.APU.Step(cycles)
	return cycles
}

func (console *Console) StepFrame() int {
	cycles := 0
	frame := console.PPU.Frame
	for frame == console.PPU.Frame {
		cycles += console.Step()
	}
	return cycles
}

func (console *Console) StepSeconds(seconds float64) {
	cycles := int(CPUFrequency * seconds)
	for cycles > 0 {
		cycles -= console.Step()
	}
}

// Buffer is the last completed frame. It is overwritten two frames later.
func (console *Console) Buffer() *image.RGBA {
	return console.PPU.Front()
}

// Snapshot copies the last completed frame for use outside the emulation
// goroutine.
func (console *Console) Snapshot() *image.RGBA {
	front := console.PPU.Front()
	img := image.NewRGBA(front.Rect)
	copy(img.Pix, front.Pix)
	return img
}

func (console *Console) SetButtons(buttons [NumButtons]bool) {
	console.Keypad.SetButtons(buttons)
}

func (console *Console) SetAudioChannel(channel chan float32) {
	console.APU.SetAudioChannel(channel)
}

func (console *Console) SetAudioSampleRate(sampleRate float64) {
	console.APU.SetSampleRate(sampleRate)
}

func (console *Console) SetMuted(muted bool) {
	console.APU.SetMuted(muted)
}

func (console *Console) SetTraceSink(sink TraceSink) {
	console.CPU.SetTraceSink(sink)
}

// SaveMemory returns the cartridge's battery backed memory, or nil.
func (console *Console) SaveMemory() []byte {
	return console.Cartridge.SaveMemory()
}

// Close flushes and unmaps every save file.
func (console *Console) Close() error {
	var firstErr error
	if err := console.Cartridge.Close(); err != nil {
		firstErr = err
	}
	if console.ieepromFile != nil {
		if err := console.ieepromFile.Flush(); err != nil {
			log.Printf("Internal EEPROM: flush %s: %v\n", console.ieepromFile.Path(), err)
		}
		if err := console.ieepromFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		console.ieepromFile = nil
	}
	return firstErr
}

// ResolveROMPath returns path, or path with a .ws or .wsc extension added
// when only that file exists.
func ResolveROMPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	for _, ext := range []string{".ws", ".wsc"} {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext, nil
		}
	}
	return "", fmt.Errorf("rom %s: %w", path, os.ErrNotExist)
}
