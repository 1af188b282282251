package wonderswan

// ALU operations in the order of opcode bits 3-5 and of group 1 sub-ops.
const (
	aluADD = iota
	aluOR
	aluADDC
	aluSUBC
	aluAND
	aluSUB
	aluXOR
	aluCMP
)

var aluNames = [8]string{"ADD", "OR", "ADDC", "SUBC", "AND", "SUB", "XOR", "CMP"}

// alu computes op on a and b, updates the flags and returns the result.
// CMP returns a unchanged so callers can write back unconditionally.
func (cpu *CPU) alu(op int, w Width, a, b uint32) uint32 {
	switch op {
	case aluADD:
		return cpu.add(w, a, b, 0)
	case aluOR:
		return cpu.logic(w, a|b)
	case aluADDC:
		return cpu.add(w, a, b, cpu.carry())
	case aluSUBC:
		return cpu.sub(w, a, b, cpu.carry())
	case aluAND:
		return cpu.logic(w, a&b)
	case aluSUB:
		return cpu.sub(w, a, b, 0)
	case aluXOR:
		return cpu.logic(w, a^b)
	default:
		cpu.sub(w, a, b, 0)
		return a
	}
}

func (cpu *CPU) add(w Width, a, b, c uint32) uint32 {
	mask, sign := widthMask(w)
	res := a + b + c
	cpu.setFlag(PSWCarry, res > mask)
	cpu.setFlag(PSWAuxCarry, (a^b^res)&0x10 != 0)
	cpu.setFlag(PSWOverflow, (a^res)&(b^res)&sign != 0)
	res &= mask
	cpu.setSZP(res, w)
	return res
}

func (cpu *CPU) sub(w Width, a, b, c uint32) uint32 {
	mask, sign := widthMask(w)
	res := a - b - c
	cpu.setFlag(PSWCarry, a < b+c)
	cpu.setFlag(PSWAuxCarry, (a^b^res)&0x10 != 0)
	cpu.setFlag(PSWOverflow, (a^b)&(a^res)&sign != 0)
	res &= mask
	cpu.setSZP(res, w)
	return res
}

func (cpu *CPU) logic(w Width, res uint32) uint32 {
	mask, _ := widthMask(w)
	res &= mask
	cpu.ClearFlags(PSWCarry | PSWOverflow | PSWAuxCarry)
	cpu.setSZP(res, w)
	return res
}

// inc and dec leave CY untouched.
func (cpu *CPU) inc(w Width, v uint32) uint32 {
	carry := cpu.state.PSW & PSWCarry
	res := cpu.add(w, v, 1, 0)
	cpu.state.PSW = cpu.state.PSW&^PSWCarry | carry
	return res
}

func (cpu *CPU) dec(w Width, v uint32) uint32 {
	carry := cpu.state.PSW & PSWCarry
	res := cpu.sub(w, v, 1, 0)
	cpu.state.PSW = cpu.state.PSW&^PSWCarry | carry
	return res
}

var shiftNames = [8]string{"ROL", "ROR", "ROLC", "RORC", "SHL", "SHR", "SHL", "SHRA"}

// shift runs rotate/shift sub-op on v. count is already masked to 5 bits.
func (cpu *CPU) shift(sub byte, w Width, v uint32, count uint32) uint32 {
	mask, sign := widthMask(w)
	n := uint32(8)
	if w == Width16 {
		n = 16
	}
	msb := func(x uint32) bool { return x&sign != 0 }
	bit := func(x uint32, i uint32) bool { return (x>>i)&1 != 0 }

	res := v
	switch sub {
	case 0: // ROL
		for i := uint32(0); i < count; i++ {
			res = (res<<1 | res>>(n-1)) & mask
		}
		if count != 0 {
			cpu.setFlag(PSWCarry, res&1 != 0)
		}
		cpu.setFlag(PSWOverflow, msb(res) != cpu.CheckFlag(PSWCarry))
	case 1: // ROR
		for i := uint32(0); i < count; i++ {
			res = (res>>1 | res<<(n-1)) & mask
		}
		if count != 0 {
			cpu.setFlag(PSWCarry, msb(res))
		}
		cpu.setFlag(PSWOverflow, bit(res, n-1) != bit(res, n-2))
	case 2: // ROLC
		carry := cpu.carry()
		for i := uint32(0); i < count; i++ {
			out := res >> (n - 1) & 1
			res = (res<<1 | carry) & mask
			carry = out
		}
		cpu.setFlag(PSWCarry, carry != 0)
		cpu.setFlag(PSWOverflow, msb(res) != (carry != 0))
	case 3: // RORC
		carry := cpu.carry()
		for i := uint32(0); i < count; i++ {
			out := res & 1
			res = (res>>1 | carry<<(n-1)) & mask
			carry = out
		}
		cpu.setFlag(PSWCarry, carry != 0)
		cpu.setFlag(PSWOverflow, bit(res, n-1) != bit(res, n-2))
	case 4, 6: // SHL
		if count != 0 {
			wide := uint64(v) << (count - 1)
			cpu.setFlag(PSWCarry, wide&uint64(sign) != 0)
			res = uint32(wide<<1) & mask
		}
		cpu.setFlag(PSWOverflow, msb(res) != cpu.CheckFlag(PSWCarry))
		cpu.ClearFlags(PSWAuxCarry)
		cpu.setSZP(res, w)
	case 5: // SHR
		if count != 0 {
			cpu.setFlag(PSWCarry, bit(v, count-1))
			res = v >> count
		}
		cpu.setFlag(PSWOverflow, bit(res, n-1) != bit(res, n-2))
		cpu.ClearFlags(PSWAuxCarry)
		cpu.setSZP(res, w)
	case 7: // SHRA
		signed := int32(v<<(32-n)) >> (32 - n)
		if count != 0 {
			c := count
			if c > n {
				c = n
			}
			cpu.setFlag(PSWCarry, (signed>>(c-1))&1 != 0)
			res = uint32(signed>>c) & mask
		}
		cpu.setFlag(PSWOverflow, bit(res, n-1) != bit(res, n-2))
		cpu.ClearFlags(PSWAuxCarry)
		cpu.setSZP(res, w)
	}
	return res
}

// mulu is the unsigned multiply of the accumulator by src.
func (cpu *CPU) mulu(w Width, src uint32) {
	if w == Width8 {
		res := uint32(cpu.reg8(0)) * src
		cpu.state.Regs[RegAW] = uint16(res)
		cpu.setFlag(PSWCarry|PSWOverflow, res > 0xFF)
		return
	}
	res := uint32(cpu.state.Regs[RegAW]) * src
	cpu.state.Regs[RegAW] = uint16(res)
	cpu.state.Regs[RegDW] = uint16(res >> 16)
	cpu.setFlag(PSWCarry|PSWOverflow, res > 0xFFFF)
}

// mul is the signed multiply of the accumulator by src.
func (cpu *CPU) mul(w Width, src uint32) {
	if w == Width8 {
		res := int32(int8(cpu.reg8(0))) * int32(int8(src))
		cpu.state.Regs[RegAW] = uint16(res)
		cpu.setFlag(PSWCarry|PSWOverflow, res != int32(int8(res)))
		return
	}
	res := int32(int16(cpu.state.Regs[RegAW])) * int32(int16(src))
	cpu.state.Regs[RegAW] = uint16(res)
	cpu.state.Regs[RegDW] = uint16(uint32(res) >> 16)
	cpu.setFlag(PSWCarry|PSWOverflow, res != int32(int16(res)))
}

// mulImm16 is the three operand 16-bit signed multiply.
func (cpu *CPU) mulImm16(a, b uint16) uint16 {
	res := int32(int16(a)) * int32(int16(b))
	cpu.setFlag(PSWCarry|PSWOverflow, res != int32(int16(res)))
	return uint16(res)
}

// divu divides the accumulator by src. A zero divisor or an oversized
// quotient raises vector 0 and leaves the registers untouched.
func (cpu *CPU) divu(w Width, src uint32) {
	if src == 0 {
		cpu.Interrupt(0)
		return
	}
	if w == Width8 {
		dividend := uint32(cpu.state.Regs[RegAW])
		q, r := dividend/src, dividend%src
		if q > 0xFF {
			cpu.Interrupt(0)
			return
		}
		cpu.state.Regs[RegAW] = uint16(r)<<8 | uint16(q)
		return
	}
	dividend := uint32(cpu.state.Regs[RegDW])<<16 | uint32(cpu.state.Regs[RegAW])
	q, r := dividend/src, dividend%src
	if q > 0xFFFF {
		cpu.Interrupt(0)
		return
	}
	cpu.state.Regs[RegAW] = uint16(q)
	cpu.state.Regs[RegDW] = uint16(r)
}

func (cpu *CPU) div(w Width, src uint32) {
	if w == Width8 {
		divisor := int64(int8(src))
		if divisor == 0 {
			cpu.Interrupt(0)
			return
		}
		dividend := int64(int16(cpu.state.Regs[RegAW]))
		q, r := dividend/divisor, dividend%divisor
		if q > 0x7F || q < -0x80 {
			cpu.Interrupt(0)
			return
		}
		cpu.state.Regs[RegAW] = uint16(byte(r))<<8 | uint16(byte(q))
		return
	}
	divisor := int64(int16(src))
	if divisor == 0 {
		cpu.Interrupt(0)
		return
	}
	dividend := int64(int32(uint32(cpu.state.Regs[RegDW])<<16 | uint32(cpu.state.Regs[RegAW])))
	q, r := dividend/divisor, dividend%divisor
	if q > 0x7FFF || q < -0x8000 {
		cpu.Interrupt(0)
		return
	}
	cpu.state.Regs[RegAW] = uint16(q)
	cpu.state.Regs[RegDW] = uint16(r)
}

// adj4 is the packed BCD adjust after an addition or subtraction. It only
// ever sets AC and CY.
func (cpu *CPU) adj4(subtract bool) {
	al := cpu.reg8(0)
	delta := func(v byte) {
		if subtract {
			al -= v
		} else {
			al += v
		}
	}
	if al&0x0F > 0x09 || cpu.CheckFlag(PSWAuxCarry) {
		delta(0x06)
		cpu.SetFlags(PSWAuxCarry)
	}
	if al > 0x9F || cpu.CheckFlag(PSWCarry) {
		delta(0x60)
		cpu.SetFlags(PSWCarry)
	}
	cpu.setReg8(0, al)
	cpu.setSZP(uint32(al), Width8)
}

// adjb is the unpacked BCD adjust.
func (cpu *CPU) adjb(subtract bool) {
	al, ah := cpu.reg8(0), cpu.reg8(4)
	adjust := al&0x0F > 0x09 || cpu.CheckFlag(PSWAuxCarry)
	if adjust {
		if subtract {
			al -= 6
			ah--
		} else {
			al += 6
			ah++
		}
	}
	cpu.setFlag(PSWAuxCarry|PSWCarry, adjust)
	cpu.state.Regs[RegAW] = uint16(ah)<<8 | uint16(al&0x0F)
}
