package wonderswan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCodeOffset = 0x100

// testBus is a flat 1 MiB memory with a port latch per address.
type testBus struct {
	mem   []byte
	ports [0x10000]byte
}

func newTestBus() *testBus {
	return &testBus{mem: make([]byte, 0x100000)}
}

func (b *testBus) ReadMemory(address uint32) byte {
	return b.mem[address&0xFFFFF]
}

func (b *testBus) WriteMemory(address uint32, value byte) {
	b.mem[address&0xFFFFF] = value
}

func (b *testBus) ReadPort(port uint16) byte {
	return b.ports[port]
}

func (b *testBus) WritePort(port uint16, value byte) {
	b.ports[port] = value
}

// portMock checks the port traffic of I/O instructions.
type portMock struct {
	mock.Mock
	testBus
}

func (m *portMock) ReadPort(port uint16) byte {
	args := m.Called(port)
	return args.Get(0).(byte)
}

func (m *portMock) WritePort(port uint16, value byte) {
	m.Called(port, value)
}

// newTestCPU places code at 0000:0100 with the stack at 0000:2000.
func newTestCPU(bus CPUBus, mem []byte, code []byte, irq InterruptLine) *CPU {
	copy(mem[testCodeOffset:], code)
	cpu := NewCPU(bus, irq)
	state := CPUState{PC: testCodeOffset, PSW: pswFixedOn}
	state.Regs[RegSP] = 0x2000
	cpu.SetState(state)
	return cpu
}

func Test_CPU_Reset(t *testing.T) {
	cpu := NewCPU(newTestBus(), nil)
	s := cpu.State()
	assert.Equal(t, uint16(0xFFFF), s.PS(), "PS")
	assert.Equal(t, uint16(0), s.PC, "PC")
	assert.Equal(t, pswFixedOn, s.PSW, "PSW")
	assert.False(t, cpu.Halted())
}

func Test_CPU_SetStateNormalizesPSW(t *testing.T) {
	cpu := NewCPU(newTestBus(), nil)
	cpu.SetState(CPUState{PSW: 0xFFFF})
	assert.Equal(t, uint16(0xFFD7), cpu.State().PSW)

	cpu.SetState(CPUState{PSW: 0})
	assert.Equal(t, uint16(0xF002), cpu.State().PSW)
}

func Test_CPU_Instructions(t *testing.T) {
	type testArgs struct {
		code           []byte
		init           func(s *CPUState, bus *testBus)
		check          func(t *testing.T, s CPUState, bus *testBus)
		expectedPC     uint16
		expectedPSW    uint16
		expectedCycles int
	}

	testDo := func(t *testing.T, in testArgs) {
		bus := newTestBus()
		cpu := newTestCPU(bus, bus.mem, in.code, nil)
		if in.init != nil {
			s := cpu.State()
			in.init(&s, bus)
			cpu.SetState(s)
		}

		cycles := cpu.Step()

		s := cpu.State()
		assert.Equal(t, in.expectedPC, s.PC, "PC")
		assert.Equal(t, in.expectedPSW, s.PSW, "PSW")
		assert.Equal(t, in.expectedCycles, cycles, "Cycles")
		if in.check != nil {
			in.check(t, s, bus)
		}
	}

	t.Run("ADD [00FE], AL", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0x00, 0x06, 0xFE, 0x00},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x1234
				bus.mem[0xFE] = 0x01
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, byte(0x35), bus.mem[0xFE], "[00FE]")
				assert.Equal(t, uint16(0x1234), s.AW(), "AW")
			},
			expectedPC:     0x104,
			expectedPSW:    pswFixedOn | PSWParity,
			expectedCycles: 3,
		})
	})

	t.Run("ADD [00FE], AW with half carry", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0x01, 0x06, 0xFE, 0x00},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x1234
				bus.mem[0xFE] = 0x3D
				bus.mem[0xFF] = 0x14
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, byte(0x71), bus.mem[0xFE], "[00FE]")
				assert.Equal(t, byte(0x26), bus.mem[0xFF], "[00FF]")
			},
			expectedPC:     0x104,
			expectedPSW:    pswFixedOn | PSWParity | PSWAuxCarry,
			expectedCycles: 3,
		})
	})

	t.Run("ADD AW, FFFF carries out", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0x05, 0xFF, 0xFF},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x12FF
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x12FE), s.AW(), "AW")
			},
			expectedPC:     0x103,
			expectedPSW:    pswFixedOn | PSWCarry | PSWAuxCarry,
			expectedCycles: 1,
		})
	})

	t.Run("SUB AL, AL sets zero", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0x2A, 0xC0},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x0077
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0), s.AW(), "AW")
			},
			expectedPC:     0x102,
			expectedPSW:    pswFixedOn | PSWZero | PSWParity,
			expectedCycles: 1,
		})
	})

	t.Run("MOV CW, imm16", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0xB9, 0x34, 0x12},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x1234), s.CW(), "CW")
			},
			expectedPC:     0x103,
			expectedPSW:    pswFixedOn,
			expectedCycles: 1,
		})
	})

	t.Run("MOV AH, imm8 keeps AL", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0xB4, 0xAB},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x0011
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0xAB11), s.AW(), "AW")
			},
			expectedPC:     0x102,
			expectedPSW:    pswFixedOn,
			expectedCycles: 1,
		})
	})

	t.Run("NOP", func(t *testing.T) {
		testDo(t, testArgs{
			code:           []byte{0x90},
			expectedPC:     0x101,
			expectedPSW:    pswFixedOn,
			expectedCycles: 3,
		})
	})

	t.Run("BR short backwards", func(t *testing.T) {
		testDo(t, testArgs{
			code:           []byte{0xEB, 0xFE},
			expectedPC:     0x100,
			expectedPSW:    pswFixedOn,
			expectedCycles: 4,
		})
	})

	t.Run("EI", func(t *testing.T) {
		testDo(t, testArgs{
			code:           []byte{0xFB},
			expectedPC:     0x101,
			expectedPSW:    pswFixedOn | PSWInterrupt,
			expectedCycles: 4,
		})
	})

	t.Run("CVTBD splits AL", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0xD4, 0x0A},
			init: func(s *CPUState, bus *testBus) {
				s.Regs[RegAW] = 0x002F
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x0407), s.AW(), "AW")
			},
			expectedPC:     0x102,
			expectedPSW:    pswFixedOn,
			expectedCycles: 17,
		})
	})

	t.Run("CVTBD by zero traps to vector 0", func(t *testing.T) {
		testDo(t, testArgs{
			code: []byte{0xD4, 0x00},
			init: func(s *CPUState, bus *testBus) {
				s.PSW |= PSWInterrupt
				copy(bus.mem[0:], []byte{0x00, 0x05, 0x00, 0x00})
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x1FFA), s.SP(), "SP")
				assert.Equal(t, byte(0x02), bus.mem[0x1FFA], "pushed PC low")
				assert.Equal(t, byte(0x01), bus.mem[0x1FFB], "pushed PC high")
			},
			expectedPC:     0x0500,
			expectedPSW:    pswFixedOn,
			expectedCycles: 17,
		})
	})

	t.Run("segment override prefix", func(t *testing.T) {
		// MOV AL, DS1:[0010]
		testDo(t, testArgs{
			code: []byte{0x26, 0xA0, 0x10, 0x00},
			init: func(s *CPUState, bus *testBus) {
				s.Segs[SegDS1] = 0x0100
				bus.mem[0x1010] = 0x5A
				bus.mem[0x0010] = 0xA5
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x005A), s.AW(), "AW")
			},
			expectedPC:     0x104,
			expectedPSW:    pswFixedOn,
			expectedCycles: 2,
		})
	})

	t.Run("word read wraps inside the segment", func(t *testing.T) {
		// MOV AW, [FFFF]
		testDo(t, testArgs{
			code: []byte{0xA1, 0xFF, 0xFF},
			init: func(s *CPUState, bus *testBus) {
				s.Segs[SegDS0] = 0x1000
				bus.mem[0x1FFFF] = 0x34
				bus.mem[0x10000] = 0x12
				bus.mem[0x20000] = 0xEE
			},
			check: func(t *testing.T, s CPUState, bus *testBus) {
				assert.Equal(t, uint16(0x1234), s.AW(), "AW")
			},
			expectedPC:     0x103,
			expectedPSW:    pswFixedOn,
			expectedCycles: 1,
		})
	})

	t.Run("invalid opcode is skipped", func(t *testing.T) {
		testDo(t, testArgs{
			code:           []byte{0xF1},
			expectedPC:     0x101,
			expectedPSW:    pswFixedOn,
			expectedCycles: 1,
		})
	})
}

func Test_CPU_RepeatedBlockTransfer(t *testing.T) {
	bus := newTestBus()
	// REP MOVBKB
	cpu := newTestCPU(bus, bus.mem, []byte{0xF3, 0xA4, 0x90}, nil)
	s := cpu.State()
	s.Regs[RegCW] = 3
	s.Regs[RegIX] = 0x200
	s.Regs[RegIY] = 0x300
	cpu.SetState(s)
	copy(bus.mem[0x200:], []byte{0xAA, 0xBB, 0xCC, 0xDD})

	t.Run("first iteration pays for the prefix", func(t *testing.T) {
		assert.Equal(t, 8, cpu.Step())
		assert.Equal(t, uint16(0x100), cpu.State().PC, "PC rewinds to the prefix")
		assert.Equal(t, uint16(2), cpu.State().CW(), "CW")
	})

	t.Run("later iterations do not", func(t *testing.T) {
		assert.Equal(t, 7, cpu.Step())
		assert.Equal(t, 7, cpu.Step())
		s := cpu.State()
		assert.Equal(t, uint16(0x102), s.PC, "PC")
		assert.Equal(t, uint16(0), s.CW(), "CW")
		assert.Equal(t, uint16(0x203), s.IX(), "IX")
		assert.Equal(t, uint16(0x303), s.IY(), "IY")
		assert.Equal(t, []byte{0xAA, 0xBB, 0xCC, 0x00}, bus.mem[0x300:0x304])
	})

	t.Run("zero count does nothing", func(t *testing.T) {
		s := cpu.State()
		s.PC = testCodeOffset
		cpu.SetState(s)
		assert.Equal(t, 6, cpu.Step())
		assert.Equal(t, uint16(0x102), cpu.State().PC, "PC")
		assert.Equal(t, byte(0x00), bus.mem[0x303])
	})
}

func Test_CPU_BlockDirection(t *testing.T) {
	bus := newTestBus()
	// STMB with DIR set
	cpu := newTestCPU(bus, bus.mem, []byte{0xAA}, nil)
	s := cpu.State()
	s.PSW |= PSWDirection
	s.Regs[RegAW] = 0x0077
	s.Regs[RegIY] = 0x300
	cpu.SetState(s)

	assert.Equal(t, 3, cpu.Step())
	assert.Equal(t, byte(0x77), bus.mem[0x300])
	assert.Equal(t, uint16(0x2FF), cpu.State().IY(), "IY")
}

func Test_CPU_HaltAndInterrupts(t *testing.T) {
	newHalted := func(t *testing.T, ie bool) (*CPU, *testBus, *InterruptController) {
		bus := newTestBus()
		ic := NewInterruptController()
		ic.SetBase(0x08)
		// vector 0x0E (VBlank) -> 0000:0400
		copy(bus.mem[0x0E*4:], []byte{0x00, 0x04, 0x00, 0x00})
		cpu := newTestCPU(bus, bus.mem, []byte{0xF4, 0x90}, ic)
		if ie {
			s := cpu.State()
			s.PSW |= PSWInterrupt
			cpu.SetState(s)
		}
		require.Equal(t, 9, cpu.Step(), "HALT cycles")
		require.True(t, cpu.Halted())
		return cpu, bus, ic
	}

	t.Run("halted CPU idles one cycle at a time", func(t *testing.T) {
		cpu, _, ic := newHalted(t, true)
		assert.Equal(t, 1, cpu.Step())
		ic.Raise(IntVBlank)
		assert.Equal(t, 1, cpu.Step(), "disabled source does not wake")
		assert.True(t, cpu.Halted())
	})

	t.Run("enabled interrupt wakes and enters the handler", func(t *testing.T) {
		cpu, bus, ic := newHalted(t, true)
		ic.SetEnable(1 << IntVBlank)
		ic.Raise(IntVBlank)

		assert.Equal(t, interruptCycles, cpu.Step())
		s := cpu.State()
		assert.False(t, cpu.Halted())
		assert.Equal(t, uint16(0x0400), s.PC, "PC")
		assert.Equal(t, uint16(0x0000), s.PS(), "PS")
		assert.Equal(t, uint16(0x1FFA), s.SP(), "SP")
		assert.False(t, s.PSW&PSWInterrupt != 0, "IE cleared")
		assert.Equal(t, []byte{0x01, 0x01}, bus.mem[0x1FFA:0x1FFC], "return address")
		assert.Equal(t, byte(1<<IntVBlank), ic.Pending(), "request stays latched")
	})

	t.Run("masked interrupt wakes without entering", func(t *testing.T) {
		cpu, _, ic := newHalted(t, false)
		ic.SetEnable(1 << IntVBlank)
		ic.Raise(IntVBlank)

		assert.Equal(t, 3, cpu.Step(), "NOP after HALT")
		assert.False(t, cpu.Halted())
		assert.Equal(t, uint16(0x102), cpu.State().PC, "PC")
	})

	t.Run("higher source wins", func(t *testing.T) {
		bus := newTestBus()
		ic := NewInterruptController()
		ic.SetEnable(0xFF)
		ic.Raise(IntKey)
		ic.Raise(IntHBlankTimer)
		copy(bus.mem[7*4:], []byte{0x34, 0x12, 0x00, 0x00})
		cpu := newTestCPU(bus, bus.mem, []byte{0x90}, ic)
		s := cpu.State()
		s.PSW |= PSWInterrupt
		cpu.SetState(s)

		cpu.Step()
		assert.Equal(t, uint16(0x1234), cpu.State().PC, "PC")
	})

	t.Run("RETI restores PSW and return address", func(t *testing.T) {
		cpu, bus, ic := newHalted(t, true)
		bus.mem[0x400] = 0xCF
		ic.SetEnable(1 << IntVBlank)
		ic.Raise(IntVBlank)
		cpu.Step()
		ic.Acknowledge(IntVBlank)

		assert.Equal(t, 10, cpu.Step())
		s := cpu.State()
		assert.Equal(t, uint16(0x101), s.PC, "PC")
		assert.Equal(t, uint16(0x2000), s.SP(), "SP")
		assert.True(t, s.PSW&PSWInterrupt != 0, "IE restored")
	})
}

func Test_CPU_BreakFlagSingleSteps(t *testing.T) {
	bus := newTestBus()
	copy(bus.mem[1*4:], []byte{0x00, 0x06, 0x00, 0x00})
	cpu := newTestCPU(bus, bus.mem, []byte{0x90, 0x90}, nil)
	s := cpu.State()
	s.PSW |= PSWBreak
	cpu.SetState(s)

	cpu.Step()

	s = cpu.State()
	assert.Equal(t, uint16(0x0600), s.PC, "PC")
	assert.False(t, s.PSW&PSWBreak != 0, "BRK cleared in handler")
	assert.Equal(t, []byte{0x01, 0x01}, bus.mem[0x1FFA:0x1FFC], "return to next instruction")
}

func Test_CPU_Cycles(t *testing.T) {
	tests := []struct {
		name   string
		code   []byte
		setup  func(s *CPUState, ic *InterruptController)
		cycles []int
	}{
		{
			name:   "register operand",
			code:   []byte{0x00, 0xC0},
			cycles: []int{1},
		},
		{
			name:   "memory operand",
			code:   []byte{0x00, 0x06, 0xFE, 0x00},
			cycles: []int{3},
		},
		{
			name:   "segment override prefix",
			code:   []byte{0x26, 0x00, 0x06, 0xFE, 0x00},
			cycles: []int{4},
		},
		{
			name: "repeat iteration then resume",
			code: []byte{0xF3, 0xA4},
			setup: func(s *CPUState, ic *InterruptController) {
				s.Regs[RegCW] = 2
			},
			cycles: []int{8, 7},
		},
		{
			name: "override and repeat prefixes",
			code: []byte{0x26, 0xF3, 0xA4},
			setup: func(s *CPUState, ic *InterruptController) {
				s.Regs[RegCW] = 2
			},
			cycles: []int{9, 7},
		},
		{
			name: "interrupt entry",
			code: []byte{0x90},
			setup: func(s *CPUState, ic *InterruptController) {
				s.PSW |= PSWInterrupt
				ic.SetEnable(1 << IntVBlank)
				ic.Raise(IntVBlank)
			},
			cycles: []int{interruptCycles},
		},
		{
			name:   "halt then idle",
			code:   []byte{0xF4},
			cycles: []int{9, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := newTestBus()
			ic := NewInterruptController()
			cpu := newTestCPU(bus, bus.mem, tt.code, ic)
			if tt.setup != nil {
				s := cpu.State()
				tt.setup(&s, ic)
				cpu.SetState(s)
			}

			var got []int
			for range tt.cycles {
				got = append(got, cpu.Step())
			}
			assert.Equal(t, tt.cycles, got)
		})
	}
}

func Test_CPU_InvalidSubOperation(t *testing.T) {
	bus := newTestBus()
	// vector 1 would land at 0000:0600
	copy(bus.mem[1*4:], []byte{0x00, 0x06, 0x00, 0x00})
	// GRP4 sub-op 2 does not exist
	cpu := newTestCPU(bus, bus.mem, []byte{0xFE, 0xD0, 0x90}, nil)
	sink := &RecordingTraceSink{}
	cpu.SetTraceSink(sink)
	s := cpu.State()
	s.PSW |= PSWBreak
	cpu.SetState(s)

	cpu.Step()

	require.Len(t, sink.Records, 1)
	assert.True(t, sink.Records[0].Invalid)
	s = cpu.State()
	assert.Equal(t, uint16(0x102), s.PC, "no break trap after an invalid encoding")
	assert.True(t, s.PSW&PSWBreak != 0, "BRK kept")

	cpu.Step()
	require.Len(t, sink.Records, 2)
	assert.False(t, sink.Records[1].Invalid, "flag does not leak into the next instruction")
}

func Test_CPU_PortIO(t *testing.T) {
	t.Run("IN AL, imm8", func(t *testing.T) {
		m := &portMock{testBus: *newTestBus()}
		m.On("ReadPort", uint16(0xB0)).Return(byte(0x42))
		cpu := newTestCPU(m, m.mem, []byte{0xE4, 0xB0}, nil)

		assert.Equal(t, 6, cpu.Step())
		assert.Equal(t, uint16(0x0042), cpu.State().AW(), "AW")
		m.AssertExpectations(t)
	})

	t.Run("OUT DW, AW writes low byte first", func(t *testing.T) {
		m := &portMock{testBus: *newTestBus()}
		call := m.On("WritePort", uint16(0xA0), byte(0x34)).Return()
		m.On("WritePort", uint16(0xA1), byte(0x12)).Return().NotBefore(call)
		cpu := newTestCPU(m, m.mem, []byte{0xEF}, nil)
		s := cpu.State()
		s.Regs[RegAW] = 0x1234
		s.Regs[RegDW] = 0xA0
		cpu.SetState(s)

		cpu.Step()
		m.AssertExpectations(t)
	})
}

func Test_CPU_Trace(t *testing.T) {
	bus := newTestBus()
	cpu := newTestCPU(bus, bus.mem, []byte{0x00, 0x06, 0xFE, 0x00, 0xF1}, nil)
	sink := &RecordingTraceSink{}
	cpu.SetTraceSink(sink)

	cpu.Step()
	cpu.Step()

	require.Len(t, sink.Records, 2)
	rec := sink.Records[0]
	assert.Equal(t, uint16(0x100), rec.PC, "PC before execution")
	assert.Equal(t, "ADD [00FE], AL", rec.Text)
	assert.Equal(t, []byte{0x00, 0x06, 0xFE, 0x00}, rec.Bytes)
	assert.Equal(t, uint16(0x104), rec.State.PC, "PC after execution")
	assert.Equal(t, 3, rec.Cycles)
	assert.Contains(t, rec.String(), "0000:0100")
	assert.Contains(t, rec.String(), "PSW=vdibsZaPc", "zero result")

	assert.True(t, sink.Records[1].Invalid)
	assert.Contains(t, sink.Records[1].String(), "(invalid)")

	var out bytes.Buffer
	writer := NewWriterTraceSink(&out)
	writer.Trace(&rec)
	assert.Equal(t, rec.String()+"\n", out.String())
}

func Test_CPU_Disassemble(t *testing.T) {
	tests := []struct {
		code   []byte
		text   string
		length int
	}{
		{[]byte{0x00, 0x06, 0xFE, 0x00}, "ADD [00FE], AL", 4},
		{[]byte{0x05, 0xFF, 0xFF}, "ADD AW, FFFF", 3},
		{[]byte{0x90}, "NOP", 1},
		{[]byte{0xB0, 0x12}, "MOV AL, 12", 2},
		{[]byte{0xEB, 0xFE}, "BR 0100", 2},
		{[]byte{0x8B, 0x47, 0x04}, "MOV AW, [BW+04]", 3},
		{[]byte{0x8B, 0x46, 0xFE}, "MOV AW, [BP-02]", 3},
		{[]byte{0x26, 0x8A, 0x04}, "MOV AL, DS1:[IX]", 3},
		{[]byte{0xF3, 0xA4}, "REP MOVBKB", 2},
		{[]byte{0xF1}, "DB F1", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			bus := newTestBus()
			cpu := newTestCPU(bus, bus.mem, tt.code, nil)
			text, length := cpu.Disassemble(0, testCodeOffset)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.length, length)
			assert.Equal(t, uint16(testCodeOffset), cpu.State().PC, "no side effects")
		})
	}
}
