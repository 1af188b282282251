package wonderswan

// modRM is a decoded mod/r/m byte with its effective address resolved.
type modRM struct {
	mod     byte
	reg     byte
	rm      byte
	memory  bool
	segment uint16
	offset  uint16
}

// decodeModRM fetches the mod/r/m byte and any displacement that follows it.
func (cpu *CPU) decodeModRM() {
	b := cpu.fetch8()
	m := &cpu.modrm
	m.mod = b >> 6
	m.reg = (b >> 3) & 7
	m.rm = b & 7
	m.memory = m.mod != 3
	if !m.memory {
		return
	}

	r := &cpu.state.Regs
	def := SegDS0
	var base uint16
	switch m.rm {
	case 0:
		base = r[RegBW] + r[RegIX]
	case 1:
		base = r[RegBW] + r[RegIY]
	case 2:
		base = r[RegBP] + r[RegIX]
		def = SegSS
	case 3:
		base = r[RegBP] + r[RegIY]
		def = SegSS
	case 4:
		base = r[RegIX]
	case 5:
		base = r[RegIY]
	case 6:
		if m.mod == 0 {
			base = cpu.fetch16()
		} else {
			base = r[RegBP]
			def = SegSS
		}
	case 7:
		base = r[RegBW]
	}

	switch m.mod {
	case 1:
		base += uint16(int8(cpu.fetch8()))
	case 2:
		base += cpu.fetch16()
	}

	m.offset = base
	m.segment = cpu.seg(def)
}

// opWidth is the operand width selected by bit 0 of the opcode.
func (cpu *CPU) opWidth() Width {
	if cpu.opcode&1 != 0 {
		return Width16
	}
	return Width8
}

// memCycles charges extra when the r/m operand is in memory.
func (cpu *CPU) memCycles(extra int) {
	if cpu.modrm.memory {
		cpu.cycles += extra
	}
}

func (cpu *CPU) readRM(w Width) uint32 {
	if !cpu.modrm.memory {
		return cpu.reg(w, cpu.modrm.rm)
	}
	return cpu.read(w, cpu.modrm.segment, cpu.modrm.offset)
}

func (cpu *CPU) writeRM(w Width, value uint32) {
	if !cpu.modrm.memory {
		cpu.setReg(w, cpu.modrm.rm, value)
		return
	}
	cpu.write(w, cpu.modrm.segment, cpu.modrm.offset, value)
}

// readFarPointer reads the offset:segment pair an r/m memory operand points at.
func (cpu *CPU) readFarPointer() (offset uint16, segment uint16) {
	offset = cpu.read16(cpu.modrm.segment, cpu.modrm.offset)
	segment = cpu.read16(cpu.modrm.segment, cpu.modrm.offset+2)
	return offset, segment
}

func (cpu *CPU) readRegOperand(w Width) uint32 {
	return cpu.reg(w, cpu.modrm.reg)
}

func (cpu *CPU) writeRegOperand(w Width, value uint32) {
	cpu.setReg(w, cpu.modrm.reg, value)
}
