// refs: perfectkiosk.net/stsws.html, github.com/SingleStepTests/v30mz
package wonderswan

import "log"

const CPUFrequency = 3072000

const (
	interruptCycles = 32
	resetPS         = 0xFFFF
	noSegment       = -1
)

// CPUBus is the memory and I/O space the CPU runs against.
type CPUBus interface {
	ReadMemory(address uint32) byte
	WriteMemory(address uint32, value byte)
	ReadPort(port uint16) byte
	WritePort(port uint16, value byte)
}

// CPU is an instruction level NEC V30MZ interpreter. One call to Step runs
// one instruction, or one iteration of a repeated block instruction.
type CPU struct {
	state CPUState
	table [256]CPUInstruction
	bus   CPUBus
	irq   InterruptLine
	trace TraceSink

	// decode state of the instruction being executed
	opcode   byte
	startPC  uint16
	segment  int
	repeat   byte
	resuming bool
	cycles   int
	modrm    modRM
	// set by handlers that hit an undefined sub-operation
	invalidOp bool

	reported [256]bool
}

func NewCPU(bus CPUBus, irq InterruptLine) *CPU {
	cpu := CPU{bus: bus, irq: irq}
	cpu.createTable()
	cpu.Reset()
	return &cpu
}

// Reset puts the CPU in its power on state: execution starts at FFFF:0000.
func (cpu *CPU) Reset() {
	cpu.state = CPUState{PSW: pswFixedOn}
	cpu.state.Segs[SegPS] = resetPS
	cpu.resuming = false
	cpu.segment = noSegment
	cpu.repeat = 0
}

func (cpu *CPU) State() CPUState {
	return cpu.state
}

func (cpu *CPU) SetState(state CPUState) {
	cpu.state = state
	cpu.state.PSW = normalizePSW(state.PSW)
	cpu.resuming = false
}

func (cpu *CPU) Halted() bool {
	return cpu.state.Halted
}

func (cpu *CPU) SetTraceSink(sink TraceSink) {
	cpu.trace = sink
}

func (cpu *CPU) pendingVector() (byte, bool) {
	if cpu.irq == nil {
		return 0, false
	}
	return cpu.irq.PendingVector()
}

// Step executes a single instruction and returns the cycles it took
func (cpu *CPU) Step() int {
	if cpu.state.Halted {
		if _, ok := cpu.pendingVector(); !ok {
			return 1
		}
		cpu.state.Halted = false
	}

	if cpu.CheckFlag(PSWInterrupt) {
		if vector, ok := cpu.pendingVector(); ok {
			ps, pc := cpu.state.Segs[SegPS], cpu.state.PC
			cpu.resuming = false
			cpu.Interrupt(vector)
			if cpu.trace != nil {
				cpu.trace.Trace(&TraceRecord{
					PS:        ps,
					PC:        pc,
					Text:      "INT",
					State:     cpu.state,
					Cycles:    interruptCycles,
					Interrupt: true,
					Vector:    vector,
				})
			}
			return interruptCycles
		}
	}

	ps, pc := cpu.state.Segs[SegPS], cpu.state.PC
	var rec *TraceRecord
	if cpu.trace != nil {
		text, length := cpu.Disassemble(ps, pc)
		rec = &TraceRecord{PS: ps, PC: pc, Text: text, Bytes: cpu.codeBytes(ps, pc, length)}
	}

	singleStep := cpu.CheckFlag(PSWBreak)
	invalid := cpu.execute()

	if singleStep && !invalid {
		cpu.Interrupt(1)
	}

	if rec != nil {
		rec.State = cpu.state
		rec.Cycles = cpu.cycles
		rec.Invalid = invalid
		cpu.trace.Trace(rec)
	}
	return cpu.cycles
}

// execute decodes prefixes and the opcode at PS:PC and runs it. It reports
// whether the opcode was a decode gap.
func (cpu *CPU) execute() bool {
	cpu.cycles = 0
	cpu.segment = noSegment
	cpu.repeat = 0
	cpu.startPC = cpu.state.PC

	for {
		op := cpu.fetch8()
		switch op {
		case 0x26, 0x2E, 0x36, 0x3E:
			cpu.segment = int(op>>3) & 3
		case 0xF2, 0xF3:
			cpu.repeat = op
		case 0xF0:
			// BUSLOCK
		default:
			cpu.opcode = op
			return cpu.dispatch()
		}
		if !cpu.resuming {
			cpu.cycles++
		}
	}
}

func (cpu *CPU) dispatch() bool {
	cpu.resuming = false
	instruction := &cpu.table[cpu.opcode]
	if instruction.fn == nil {
		cpu.invalid()
		return true
	}
	cpu.cycles += int(instruction.cycles)
	cpu.invalidOp = false
	instruction.fn()
	return cpu.invalidOp
}

// invalid handles an opcode with no table entry: it is skipped as a one
// byte, one cycle instruction.
func (cpu *CPU) invalid() {
	cpu.cycles++
	cpu.reportInvalid()
}

// reportInvalid marks the current instruction as an undefined encoding
// and logs it once per opcode value.
func (cpu *CPU) reportInvalid() {
	cpu.invalidOp = true
	if !cpu.reported[cpu.opcode] {
		cpu.reported[cpu.opcode] = true
		log.Printf("CPU: invalid opcode 0x%02X at %04X:%04X", cpu.opcode, cpu.state.Segs[SegPS], cpu.startPC)
	}
}

// Interrupt enters the handler for vector: PSW, PS and PC are pushed, IE
// and BRK are cleared and PS:PC is loaded from the vector table.
func (cpu *CPU) Interrupt(vector byte) {
	cpu.state.Halted = false
	cpu.push(cpu.state.PSW)
	cpu.push(cpu.state.Segs[SegPS])
	cpu.push(cpu.state.PC)
	cpu.ClearFlags(PSWInterrupt | PSWBreak)

	address := uint32(vector) * 4
	cpu.state.PC = cpu.readPhysical16(address)
	cpu.state.Segs[SegPS] = cpu.readPhysical16(address + 2)
}

func physical(segment, offset uint16) uint32 {
	return (uint32(segment)<<4 + uint32(offset)) & 0xFFFFF
}

func (cpu *CPU) readPhysical16(address uint32) uint16 {
	lo := uint16(cpu.bus.ReadMemory(address))
	hi := uint16(cpu.bus.ReadMemory((address + 1) & 0xFFFFF))
	return hi<<8 | lo
}

func (cpu *CPU) fetch8() byte {
	value := cpu.bus.ReadMemory(physical(cpu.state.Segs[SegPS], cpu.state.PC))
	cpu.state.PC++
	return value
}

func (cpu *CPU) fetch16() uint16 {
	lo := uint16(cpu.fetch8())
	hi := uint16(cpu.fetch8())
	return hi<<8 | lo
}

func (cpu *CPU) fetch(w Width) uint32 {
	if w == Width16 {
		return uint32(cpu.fetch16())
	}
	return uint32(cpu.fetch8())
}

// codeBytes copies length bytes of code at ps:pc without side effects on PC.
func (cpu *CPU) codeBytes(ps, pc uint16, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = cpu.bus.ReadMemory(physical(ps, pc+uint16(i)))
	}
	return out
}

// seg returns the segment for a data access, honouring a segment override
// prefix.
func (cpu *CPU) seg(def int) uint16 {
	if cpu.segment != noSegment {
		return cpu.state.Segs[cpu.segment]
	}
	return cpu.state.Segs[def]
}

func (cpu *CPU) read8(segment, offset uint16) byte {
	return cpu.bus.ReadMemory(physical(segment, offset))
}

// read16 reads a word; the high byte wraps inside the segment.
func (cpu *CPU) read16(segment, offset uint16) uint16 {
	lo := uint16(cpu.read8(segment, offset))
	hi := uint16(cpu.read8(segment, offset+1))
	return hi<<8 | lo
}

func (cpu *CPU) write8(segment, offset uint16, value byte) {
	cpu.bus.WriteMemory(physical(segment, offset), value)
}

func (cpu *CPU) write16(segment, offset uint16, value uint16) {
	cpu.write8(segment, offset, byte(value))
	cpu.write8(segment, offset+1, byte(value>>8))
}

func (cpu *CPU) read(w Width, segment, offset uint16) uint32 {
	if w == Width16 {
		return uint32(cpu.read16(segment, offset))
	}
	return uint32(cpu.read8(segment, offset))
}

func (cpu *CPU) write(w Width, segment, offset uint16, value uint32) {
	if w == Width16 {
		cpu.write16(segment, offset, uint16(value))
		return
	}
	cpu.write8(segment, offset, byte(value))
}

func (cpu *CPU) readPort(w Width, port uint16) uint32 {
	lo := uint32(cpu.bus.ReadPort(port))
	if w == Width8 {
		return lo
	}
	return uint32(cpu.bus.ReadPort(port+1))<<8 | lo
}

func (cpu *CPU) writePort(w Width, port uint16, value uint32) {
	cpu.bus.WritePort(port, byte(value))
	if w == Width16 {
		cpu.bus.WritePort(port+1, byte(value>>8))
	}
}

func (cpu *CPU) push(value uint16) {
	cpu.state.Regs[RegSP] -= 2
	cpu.write16(cpu.state.Segs[SegSS], cpu.state.Regs[RegSP], value)
}

func (cpu *CPU) pop() uint16 {
	value := cpu.read16(cpu.state.Segs[SegSS], cpu.state.Regs[RegSP])
	cpu.state.Regs[RegSP] += 2
	return value
}
