// refs: perfectkiosk.net/stsws.html
package wonderswan

import "math/bits"

// General purpose register indexes, in mod/r/m encoding order.
const (
	RegAW = iota
	RegCW
	RegDW
	RegBW
	RegSP
	RegBP
	RegIX
	RegIY
)

// Segment register indexes, in mod/r/m encoding order.
const (
	SegDS1 = iota
	SegPS
	SegSS
	SegDS0
)

// PSW bits
const (
	PSWCarry     uint16 = 0x0001
	PSWParity    uint16 = 0x0004
	PSWAuxCarry  uint16 = 0x0010
	PSWZero      uint16 = 0x0040
	PSWSign      uint16 = 0x0080
	PSWBreak     uint16 = 0x0100
	PSWInterrupt uint16 = 0x0200
	PSWDirection uint16 = 0x0400
	PSWOverflow  uint16 = 0x0800

	pswFixedOn  uint16 = 0xF002
	pswWritable uint16 = 0x0FD5
)

type CPUState struct {
	Regs   [8]uint16 // AW CW DW BW SP BP IX IY
	Segs   [4]uint16 // DS1 PS SS DS0
	PC     uint16
	PSW    uint16
	Halted bool
}

func (s CPUState) AW() uint16 { return s.Regs[RegAW] }
func (s CPUState) BW() uint16 { return s.Regs[RegBW] }
func (s CPUState) CW() uint16 { return s.Regs[RegCW] }
func (s CPUState) DW() uint16 { return s.Regs[RegDW] }
func (s CPUState) SP() uint16 { return s.Regs[RegSP] }
func (s CPUState) BP() uint16 { return s.Regs[RegBP] }
func (s CPUState) IX() uint16 { return s.Regs[RegIX] }
func (s CPUState) IY() uint16 { return s.Regs[RegIY] }

func (s CPUState) DS0() uint16 { return s.Segs[SegDS0] }
func (s CPUState) DS1() uint16 { return s.Segs[SegDS1] }
func (s CPUState) PS() uint16  { return s.Segs[SegPS] }
func (s CPUState) SS() uint16  { return s.Segs[SegSS] }

// normalizePSW forces the reserved bits to their fixed values.
func normalizePSW(v uint16) uint16 {
	return v&pswWritable | pswFixedOn
}

func (cpu *CPU) SetFlags(flags uint16) {
	cpu.state.PSW |= flags
}

func (cpu *CPU) ClearFlags(flags uint16) {
	cpu.state.PSW &^= flags
}

func (cpu *CPU) CheckFlag(flag uint16) bool {
	return cpu.state.PSW&flag == flag
}

// setFlag sets flag when cond holds and clears it otherwise.
func (cpu *CPU) setFlag(flag uint16, cond bool) {
	if cond {
		cpu.state.PSW |= flag
	} else {
		cpu.state.PSW &^= flag
	}
}

func (cpu *CPU) carry() uint32 {
	return uint32(cpu.state.PSW & PSWCarry)
}

// setSZP sets sign, zero and parity from a result of the given width.
func (cpu *CPU) setSZP(res uint32, w Width) {
	mask, sign := widthMask(w)
	cpu.setFlag(PSWZero, res&mask == 0)
	cpu.setFlag(PSWSign, res&sign != 0)
	cpu.setFlag(PSWParity, bits.OnesCount8(byte(res))%2 == 0)
}

func widthMask(w Width) (mask uint32, sign uint32) {
	if w == Width16 {
		return 0xFFFF, 0x8000
	}
	return 0xFF, 0x80
}

// reg8 reads AL CL DL BL AH CH DH BH by mod/r/m index.
func (cpu *CPU) reg8(i byte) byte {
	if i < 4 {
		return byte(cpu.state.Regs[i])
	}
	return byte(cpu.state.Regs[i-4] >> 8)
}

func (cpu *CPU) setReg8(i byte, v byte) {
	if i < 4 {
		cpu.state.Regs[i] = cpu.state.Regs[i]&0xFF00 | uint16(v)
		return
	}
	cpu.state.Regs[i-4] = cpu.state.Regs[i-4]&0x00FF | uint16(v)<<8
}

func (cpu *CPU) reg(w Width, i byte) uint32 {
	if w == Width16 {
		return uint32(cpu.state.Regs[i])
	}
	return uint32(cpu.reg8(i))
}

func (cpu *CPU) setReg(w Width, i byte, v uint32) {
	if w == Width16 {
		cpu.state.Regs[i] = uint16(v)
		return
	}
	cpu.setReg8(i, byte(v))
}
