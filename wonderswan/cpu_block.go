package wonderswan

// Block instructions read from DS0:IX (segment override allowed) and write
// to DS1:IY. Under a repeat prefix each Step runs one iteration and rewinds
// PC to the prefix so interrupts are checked between iterations.

func (cpu *CPU) blockStep(w Width) uint16 {
	step := uint16(w)
	if cpu.CheckFlag(PSWDirection) {
		return -step
	}
	return step
}

// blockBegin reports whether an iteration should run. A repeated block
// instruction with CW = 0 does nothing.
func (cpu *CPU) blockBegin(single, repeated int) bool {
	if cpu.repeat == 0 {
		cpu.cycles += single
		return true
	}
	if cpu.state.Regs[RegCW] == 0 {
		cpu.cycles += single
		return false
	}
	cpu.cycles += repeated
	return true
}

// blockEnd decrements CW after a repeated iteration and rewinds PC when
// another one is due. zeroCheck is set for CMPBK and CMPM, which also stop
// when Z no longer matches the prefix.
func (cpu *CPU) blockEnd(zeroCheck bool) {
	if cpu.repeat == 0 {
		return
	}
	cpu.state.Regs[RegCW]--
	if cpu.state.Regs[RegCW] == 0 {
		return
	}
	if zeroCheck && cpu.CheckFlag(PSWZero) != (cpu.repeat == 0xF3) {
		return
	}
	cpu.state.PC = cpu.startPC
	cpu.resuming = true
}

func (cpu *CPU) movbk() {
	if !cpu.blockBegin(5, 7) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	v := cpu.read(w, cpu.seg(SegDS0), r[RegIX])
	cpu.write(w, cpu.state.Segs[SegDS1], r[RegIY], v)
	step := cpu.blockStep(w)
	r[RegIX] += step
	r[RegIY] += step
	cpu.blockEnd(false)
}

func (cpu *CPU) cmpbk() {
	single, repeated := 6, 9
	if cpu.repeat == 0xF3 {
		repeated++
	}
	if !cpu.blockBegin(single, repeated) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	a := cpu.read(w, cpu.seg(SegDS0), r[RegIX])
	b := cpu.read(w, cpu.state.Segs[SegDS1], r[RegIY])
	cpu.sub(w, a, b, 0)
	step := cpu.blockStep(w)
	r[RegIX] += step
	r[RegIY] += step
	cpu.blockEnd(true)
}

func (cpu *CPU) cmpm() {
	if !cpu.blockBegin(4, 9) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	b := cpu.read(w, cpu.state.Segs[SegDS1], r[RegIY])
	cpu.sub(w, cpu.reg(w, RegAW), b, 0)
	r[RegIY] += cpu.blockStep(w)
	cpu.blockEnd(true)
}

func (cpu *CPU) ldm() {
	if !cpu.blockBegin(3, 6) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	cpu.setReg(w, RegAW, cpu.read(w, cpu.seg(SegDS0), r[RegIX]))
	r[RegIX] += cpu.blockStep(w)
	cpu.blockEnd(false)
}

func (cpu *CPU) stm() {
	if !cpu.blockBegin(3, 6) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	cpu.write(w, cpu.state.Segs[SegDS1], r[RegIY], cpu.reg(w, RegAW))
	r[RegIY] += cpu.blockStep(w)
	cpu.blockEnd(false)
}

func (cpu *CPU) inm() {
	if !cpu.blockBegin(6, 6) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	cpu.write(w, cpu.state.Segs[SegDS1], r[RegIY], cpu.readPort(w, r[RegDW]))
	r[RegIY] += cpu.blockStep(w)
	cpu.blockEnd(false)
}

func (cpu *CPU) outm() {
	if !cpu.blockBegin(7, 6) {
		return
	}
	w := cpu.opWidth()
	r := &cpu.state.Regs
	cpu.writePort(w, r[RegDW], cpu.read(w, cpu.seg(SegDS0), r[RegIX]))
	r[RegIX] += cpu.blockStep(w)
	cpu.blockEnd(false)
}
