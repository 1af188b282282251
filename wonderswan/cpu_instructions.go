// refs: perfectkiosk.net/stsws.html
package wonderswan

type CPUInstruction struct {
	opcode byte
	// name is the NEC mnemonic, or a group name resolved by the sub-op
	name string
	// operands describes the operand encoding for the disassembler
	operands string
	// cycles used by the instruction, not including memory operand and
	// conditional cycles
	cycles byte
	// instruction function
	fn func()
}

// createTable builds a function table for each instruction
func (c *CPU) createTable() {
	c.table = [256]CPUInstruction{
		{opcode: 0x00, name: "ADD", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x01, name: "ADD", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x02, name: "ADD", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x03, name: "ADD", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x04, name: "ADD", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x05, name: "ADD", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x06, name: "PUSH", operands: "DS1", cycles: 2, fn: c.pushSeg},
		{opcode: 0x07, name: "POP", operands: "DS1", cycles: 3, fn: c.popSeg},
		{opcode: 0x08, name: "OR", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x09, name: "OR", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x0A, name: "OR", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x0B, name: "OR", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x0C, name: "OR", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x0D, name: "OR", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x0E, name: "PUSH", operands: "PS", cycles: 2, fn: c.pushSeg},
		{opcode: 0x0F, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x10, name: "ADDC", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x11, name: "ADDC", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x12, name: "ADDC", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x13, name: "ADDC", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x14, name: "ADDC", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x15, name: "ADDC", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x16, name: "PUSH", operands: "SS", cycles: 2, fn: c.pushSeg},
		{opcode: 0x17, name: "POP", operands: "SS", cycles: 3, fn: c.popSeg},
		{opcode: 0x18, name: "SUBC", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x19, name: "SUBC", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x1A, name: "SUBC", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x1B, name: "SUBC", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x1C, name: "SUBC", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x1D, name: "SUBC", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x1E, name: "PUSH", operands: "DS0", cycles: 2, fn: c.pushSeg},
		{opcode: 0x1F, name: "POP", operands: "DS0", cycles: 3, fn: c.popSeg},
		{opcode: 0x20, name: "AND", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x21, name: "AND", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x22, name: "AND", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x23, name: "AND", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x24, name: "AND", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x25, name: "AND", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x26, name: "DS1:", operands: "", cycles: 1, fn: nil},
		{opcode: 0x27, name: "ADJ4A", operands: "", cycles: 10, fn: c.adj4a},
		{opcode: 0x28, name: "SUB", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x29, name: "SUB", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x2A, name: "SUB", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x2B, name: "SUB", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x2C, name: "SUB", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x2D, name: "SUB", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x2E, name: "PS:", operands: "", cycles: 1, fn: nil},
		{opcode: 0x2F, name: "ADJ4S", operands: "", cycles: 10, fn: c.adj4s},
		{opcode: 0x30, name: "XOR", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x31, name: "XOR", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x32, name: "XOR", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x33, name: "XOR", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x34, name: "XOR", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x35, name: "XOR", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x36, name: "SS:", operands: "", cycles: 1, fn: nil},
		{opcode: 0x37, name: "ADJBA", operands: "", cycles: 9, fn: c.adjba},
		{opcode: 0x38, name: "CMP", operands: "Eb,Gb", cycles: 1, fn: c.aluOp},
		{opcode: 0x39, name: "CMP", operands: "Ev,Gv", cycles: 1, fn: c.aluOp},
		{opcode: 0x3A, name: "CMP", operands: "Gb,Eb", cycles: 1, fn: c.aluOp},
		{opcode: 0x3B, name: "CMP", operands: "Gv,Ev", cycles: 1, fn: c.aluOp},
		{opcode: 0x3C, name: "CMP", operands: "AL,Ib", cycles: 1, fn: c.aluOp},
		{opcode: 0x3D, name: "CMP", operands: "AW,Iv", cycles: 1, fn: c.aluOp},
		{opcode: 0x3E, name: "DS0:", operands: "", cycles: 1, fn: nil},
		{opcode: 0x3F, name: "ADJBS", operands: "", cycles: 9, fn: c.adjbs},
		{opcode: 0x40, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x41, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x42, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x43, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x44, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x45, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x46, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x47, name: "INC", operands: "Zv", cycles: 1, fn: c.incReg},
		{opcode: 0x48, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x49, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4A, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4B, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4C, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4D, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4E, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x4F, name: "DEC", operands: "Zv", cycles: 1, fn: c.decReg},
		{opcode: 0x50, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x51, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x52, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x53, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x54, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x55, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x56, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x57, name: "PUSH", operands: "Zv", cycles: 1, fn: c.pushReg},
		{opcode: 0x58, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x59, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5A, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5B, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5C, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5D, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5E, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x5F, name: "POP", operands: "Zv", cycles: 1, fn: c.popReg},
		{opcode: 0x60, name: "PUSH", operands: "R", cycles: 9, fn: c.pushR},
		{opcode: 0x61, name: "POP", operands: "R", cycles: 8, fn: c.popR},
		{opcode: 0x62, name: "CHKIND", operands: "Gv,M", cycles: 13, fn: c.chkind},
		{opcode: 0x63, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x64, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x65, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x66, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x67, name: "NOP", operands: "", cycles: 1, fn: c.nop},
		{opcode: 0x68, name: "PUSH", operands: "Iv", cycles: 1, fn: c.pushImm},
		{opcode: 0x69, name: "MUL", operands: "Gv,Ev,Iv", cycles: 3, fn: c.mulImm},
		{opcode: 0x6A, name: "PUSH", operands: "Is", cycles: 1, fn: c.pushImm},
		{opcode: 0x6B, name: "MUL", operands: "Gv,Ev,Is", cycles: 3, fn: c.mulImm},
		{opcode: 0x6C, name: "INMB", operands: "", cycles: 0, fn: c.inm},
		{opcode: 0x6D, name: "INMW", operands: "", cycles: 0, fn: c.inm},
		{opcode: 0x6E, name: "OUTMB", operands: "", cycles: 0, fn: c.outm},
		{opcode: 0x6F, name: "OUTMW", operands: "", cycles: 0, fn: c.outm},
		{opcode: 0x70, name: "BV", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x71, name: "BNV", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x72, name: "BC", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x73, name: "BNC", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x74, name: "BE", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x75, name: "BNE", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x76, name: "BNH", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x77, name: "BH", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x78, name: "BN", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x79, name: "BP", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7A, name: "BPE", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7B, name: "BPO", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7C, name: "BLT", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7D, name: "BGE", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7E, name: "BLE", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x7F, name: "BGT", operands: "Jb", cycles: 1, fn: c.branchCond},
		{opcode: 0x80, name: "GRP1", operands: "Eb,Ib", cycles: 1, fn: c.group1},
		{opcode: 0x81, name: "GRP1", operands: "Ev,Iv", cycles: 1, fn: c.group1},
		{opcode: 0x82, name: "GRP1", operands: "Eb,Ib", cycles: 1, fn: c.group1},
		{opcode: 0x83, name: "GRP1", operands: "Ev,Is", cycles: 1, fn: c.group1},
		{opcode: 0x84, name: "TEST", operands: "Eb,Gb", cycles: 1, fn: c.test},
		{opcode: 0x85, name: "TEST", operands: "Ev,Gv", cycles: 1, fn: c.test},
		{opcode: 0x86, name: "XCH", operands: "Eb,Gb", cycles: 3, fn: c.xch},
		{opcode: 0x87, name: "XCH", operands: "Ev,Gv", cycles: 3, fn: c.xch},
		{opcode: 0x88, name: "MOV", operands: "Eb,Gb", cycles: 1, fn: c.mov},
		{opcode: 0x89, name: "MOV", operands: "Ev,Gv", cycles: 1, fn: c.mov},
		{opcode: 0x8A, name: "MOV", operands: "Gb,Eb", cycles: 1, fn: c.mov},
		{opcode: 0x8B, name: "MOV", operands: "Gv,Ev", cycles: 1, fn: c.mov},
		{opcode: 0x8C, name: "MOV", operands: "Ew,Sw", cycles: 1, fn: c.movFromSeg},
		{opcode: 0x8D, name: "LDEA", operands: "Gv,M", cycles: 1, fn: c.ldea},
		{opcode: 0x8E, name: "MOV", operands: "Sw,Ew", cycles: 2, fn: c.movToSeg},
		{opcode: 0x8F, name: "POP", operands: "Ev", cycles: 1, fn: c.popRM},
		{opcode: 0x90, name: "NOP", operands: "", cycles: 3, fn: c.nop},
		{opcode: 0x91, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x92, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x93, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x94, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x95, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x96, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x97, name: "XCH", operands: "AW,Zv", cycles: 3, fn: c.xchAW},
		{opcode: 0x98, name: "CVTBW", operands: "", cycles: 1, fn: c.cvtbw},
		{opcode: 0x99, name: "CVTWL", operands: "", cycles: 1, fn: c.cvtwl},
		{opcode: 0x9A, name: "CALL", operands: "Ap", cycles: 10, fn: c.callFar},
		{opcode: 0x9B, name: "POLL", operands: "", cycles: 10, fn: c.nop},
		{opcode: 0x9C, name: "PUSH", operands: "PSW", cycles: 2, fn: c.pushPSW},
		{opcode: 0x9D, name: "POP", operands: "PSW", cycles: 3, fn: c.popPSW},
		{opcode: 0x9E, name: "MOV", operands: "PSW,AH", cycles: 4, fn: c.sahf},
		{opcode: 0x9F, name: "MOV", operands: "AH,PSW", cycles: 2, fn: c.lahf},
		{opcode: 0xA0, name: "MOV", operands: "AL,Ob", cycles: 1, fn: c.movAccMem},
		{opcode: 0xA1, name: "MOV", operands: "AW,Ov", cycles: 1, fn: c.movAccMem},
		{opcode: 0xA2, name: "MOV", operands: "Ob,AL", cycles: 1, fn: c.movAccMem},
		{opcode: 0xA3, name: "MOV", operands: "Ov,AW", cycles: 1, fn: c.movAccMem},
		{opcode: 0xA4, name: "MOVBKB", operands: "", cycles: 0, fn: c.movbk},
		{opcode: 0xA5, name: "MOVBKW", operands: "", cycles: 0, fn: c.movbk},
		{opcode: 0xA6, name: "CMPBKB", operands: "", cycles: 0, fn: c.cmpbk},
		{opcode: 0xA7, name: "CMPBKW", operands: "", cycles: 0, fn: c.cmpbk},
		{opcode: 0xA8, name: "TEST", operands: "AL,Ib", cycles: 1, fn: c.testAcc},
		{opcode: 0xA9, name: "TEST", operands: "AW,Iv", cycles: 1, fn: c.testAcc},
		{opcode: 0xAA, name: "STMB", operands: "", cycles: 0, fn: c.stm},
		{opcode: 0xAB, name: "STMW", operands: "", cycles: 0, fn: c.stm},
		{opcode: 0xAC, name: "LDMB", operands: "", cycles: 0, fn: c.ldm},
		{opcode: 0xAD, name: "LDMW", operands: "", cycles: 0, fn: c.ldm},
		{opcode: 0xAE, name: "CMPMB", operands: "", cycles: 0, fn: c.cmpm},
		{opcode: 0xAF, name: "CMPMW", operands: "", cycles: 0, fn: c.cmpm},
		{opcode: 0xB0, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB1, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB2, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB3, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB4, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB5, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB6, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB7, name: "MOV", operands: "Zb,Ib", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB8, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xB9, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBA, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBB, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBC, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBD, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBE, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xBF, name: "MOV", operands: "Zv,Iv", cycles: 1, fn: c.movRegImm},
		{opcode: 0xC0, name: "SHIFT", operands: "Eb,Ib", cycles: 3, fn: c.shiftOp},
		{opcode: 0xC1, name: "SHIFT", operands: "Ev,Ib", cycles: 3, fn: c.shiftOp},
		{opcode: 0xC2, name: "RET", operands: "Iw", cycles: 6, fn: c.ret},
		{opcode: 0xC3, name: "RET", operands: "", cycles: 6, fn: c.ret},
		{opcode: 0xC4, name: "MOV", operands: "DS1,Gv,Mp", cycles: 6, fn: c.loadFar},
		{opcode: 0xC5, name: "MOV", operands: "DS0,Gv,Mp", cycles: 6, fn: c.loadFar},
		{opcode: 0xC6, name: "MOV", operands: "Eb,Ib", cycles: 1, fn: c.movRMImm},
		{opcode: 0xC7, name: "MOV", operands: "Ev,Iv", cycles: 1, fn: c.movRMImm},
		{opcode: 0xC8, name: "PREPARE", operands: "Iw,Ib", cycles: 8, fn: c.prepare},
		{opcode: 0xC9, name: "DISPOSE", operands: "", cycles: 2, fn: c.dispose},
		{opcode: 0xCA, name: "RETF", operands: "Iw", cycles: 9, fn: c.retf},
		{opcode: 0xCB, name: "RETF", operands: "", cycles: 8, fn: c.retf},
		{opcode: 0xCC, name: "BRK", operands: "3", cycles: 9, fn: c.brk3},
		{opcode: 0xCD, name: "BRK", operands: "Ib", cycles: 10, fn: c.brk},
		{opcode: 0xCE, name: "BRKV", operands: "", cycles: 6, fn: c.brkv},
		{opcode: 0xCF, name: "RETI", operands: "", cycles: 10, fn: c.reti},
		{opcode: 0xD0, name: "SHIFT", operands: "Eb,1", cycles: 1, fn: c.shiftOp},
		{opcode: 0xD1, name: "SHIFT", operands: "Ev,1", cycles: 1, fn: c.shiftOp},
		{opcode: 0xD2, name: "SHIFT", operands: "Eb,CL", cycles: 3, fn: c.shiftOp},
		{opcode: 0xD3, name: "SHIFT", operands: "Ev,CL", cycles: 3, fn: c.shiftOp},
		{opcode: 0xD4, name: "CVTBD", operands: "Ib", cycles: 17, fn: c.cvtbd},
		{opcode: 0xD5, name: "CVTDB", operands: "Ib", cycles: 6, fn: c.cvtdb},
		{opcode: 0xD6, name: "SALC", operands: "", cycles: 8, fn: c.salc},
		{opcode: 0xD7, name: "TRANS", operands: "", cycles: 5, fn: c.trans},
		{opcode: 0xD8, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xD9, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDA, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDB, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDC, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDD, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDE, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xDF, name: "FPO1", operands: "Ev", cycles: 1, fn: c.fpo1},
		{opcode: 0xE0, name: "DBNZNE", operands: "Jb", cycles: 3, fn: c.loop},
		{opcode: 0xE1, name: "DBNZE", operands: "Jb", cycles: 3, fn: c.loop},
		{opcode: 0xE2, name: "DBNZ", operands: "Jb", cycles: 2, fn: c.loop},
		{opcode: 0xE3, name: "BCWZ", operands: "Jb", cycles: 1, fn: c.loop},
		{opcode: 0xE4, name: "IN", operands: "AL,Ib", cycles: 6, fn: c.in},
		{opcode: 0xE5, name: "IN", operands: "AW,Ib", cycles: 6, fn: c.in},
		{opcode: 0xE6, name: "OUT", operands: "Ib,AL", cycles: 6, fn: c.out},
		{opcode: 0xE7, name: "OUT", operands: "Ib,AW", cycles: 6, fn: c.out},
		{opcode: 0xE8, name: "CALL", operands: "Jv", cycles: 5, fn: c.callNear},
		{opcode: 0xE9, name: "BR", operands: "Jv", cycles: 4, fn: c.brNear},
		{opcode: 0xEA, name: "BR", operands: "Ap", cycles: 7, fn: c.brFar},
		{opcode: 0xEB, name: "BR", operands: "Jb", cycles: 4, fn: c.brShort},
		{opcode: 0xEC, name: "IN", operands: "AL,DW", cycles: 6, fn: c.in},
		{opcode: 0xED, name: "IN", operands: "AW,DW", cycles: 6, fn: c.in},
		{opcode: 0xEE, name: "OUT", operands: "DW,AL", cycles: 6, fn: c.out},
		{opcode: 0xEF, name: "OUT", operands: "DW,AW", cycles: 6, fn: c.out},
		{opcode: 0xF0, name: "BUSLOCK", operands: "", cycles: 1, fn: nil},
		{opcode: 0xF1, name: "INV", operands: "", cycles: 1, fn: nil},
		{opcode: 0xF2, name: "REPNE", operands: "", cycles: 1, fn: nil},
		{opcode: 0xF3, name: "REP", operands: "", cycles: 1, fn: nil},
		{opcode: 0xF4, name: "HALT", operands: "", cycles: 9, fn: c.halt},
		{opcode: 0xF5, name: "NOT1", operands: "CY", cycles: 4, fn: c.not1CY},
		{opcode: 0xF6, name: "GRP3", operands: "Eb", cycles: 1, fn: c.group3},
		{opcode: 0xF7, name: "GRP3", operands: "Ev", cycles: 1, fn: c.group3},
		{opcode: 0xF8, name: "CLR1", operands: "CY", cycles: 4, fn: c.clr1CY},
		{opcode: 0xF9, name: "SET1", operands: "CY", cycles: 4, fn: c.set1CY},
		{opcode: 0xFA, name: "DI", operands: "", cycles: 4, fn: c.di},
		{opcode: 0xFB, name: "EI", operands: "", cycles: 4, fn: c.ei},
		{opcode: 0xFC, name: "CLR1", operands: "DIR", cycles: 4, fn: c.clr1Dir},
		{opcode: 0xFD, name: "SET1", operands: "DIR", cycles: 4, fn: c.set1Dir},
		{opcode: 0xFE, name: "GRP4", operands: "Eb", cycles: 1, fn: c.group4},
		{opcode: 0xFF, name: "GRP5", operands: "Ev", cycles: 1, fn: c.group5},
	}
}

func (cpu *CPU) nop() {
}

func (cpu *CPU) aluOp() {
	op := int(cpu.opcode>>3) & 7
	w := cpu.opWidth()

	switch cpu.opcode & 7 {
	case 0, 1:
		cpu.decodeModRM()
		res := cpu.alu(op, w, cpu.readRM(w), cpu.readRegOperand(w))
		if op == aluCMP {
			cpu.memCycles(1)
			return
		}
		cpu.writeRM(w, res)
		cpu.memCycles(2)
	case 2, 3:
		cpu.decodeModRM()
		res := cpu.alu(op, w, cpu.readRegOperand(w), cpu.readRM(w))
		if op != aluCMP {
			cpu.writeRegOperand(w, res)
		}
		cpu.memCycles(1)
	case 4, 5:
		res := cpu.alu(op, w, cpu.reg(w, RegAW), cpu.fetch(w))
		if op != aluCMP {
			cpu.setReg(w, RegAW, res)
		}
	}
}

func (cpu *CPU) pushSeg() {
	cpu.push(cpu.state.Segs[(cpu.opcode>>3)&3])
}

func (cpu *CPU) popSeg() {
	cpu.state.Segs[(cpu.opcode>>3)&3] = cpu.pop()
}

func (cpu *CPU) adj4a() {
	cpu.adj4(false)
}

func (cpu *CPU) adj4s() {
	cpu.adj4(true)
}

func (cpu *CPU) adjba() {
	cpu.adjb(false)
}

func (cpu *CPU) adjbs() {
	cpu.adjb(true)
}

func (cpu *CPU) incReg() {
	i := cpu.opcode & 7
	cpu.state.Regs[i] = uint16(cpu.inc(Width16, uint32(cpu.state.Regs[i])))
}

func (cpu *CPU) decReg() {
	i := cpu.opcode & 7
	cpu.state.Regs[i] = uint16(cpu.dec(Width16, uint32(cpu.state.Regs[i])))
}

// pushReg pushes the register value from before the instruction, so
// PUSH SP stores the old SP.
func (cpu *CPU) pushReg() {
	cpu.push(cpu.state.Regs[cpu.opcode&7])
}

func (cpu *CPU) popReg() {
	cpu.state.Regs[cpu.opcode&7] = cpu.pop()
}

func (cpu *CPU) pushR() {
	sp := cpu.state.Regs[RegSP]
	for i := RegAW; i <= RegIY; i++ {
		if i == RegSP {
			cpu.push(sp)
			continue
		}
		cpu.push(cpu.state.Regs[i])
	}
}

func (cpu *CPU) popR() {
	for i := RegIY; i >= RegAW; i-- {
		v := cpu.pop()
		if i != RegSP {
			cpu.state.Regs[i] = v
		}
	}
}

// chkind raises vector 5 unless lo <= reg < hi.
func (cpu *CPU) chkind() {
	cpu.decodeModRM()
	lo, hi := cpu.readFarPointer()
	v := cpu.state.Regs[cpu.modrm.reg]
	if v < lo || v >= hi {
		cpu.cycles += 7
		cpu.Interrupt(5)
	}
}

func (cpu *CPU) pushImm() {
	if cpu.opcode == 0x6A {
		cpu.push(uint16(int8(cpu.fetch8())))
		return
	}
	cpu.push(cpu.fetch16())
}

func (cpu *CPU) mulImm() {
	cpu.decodeModRM()
	src := uint16(cpu.readRM(Width16))
	var imm uint16
	if cpu.opcode == 0x6B {
		imm = uint16(int8(cpu.fetch8()))
	} else {
		imm = cpu.fetch16()
	}
	cpu.state.Regs[cpu.modrm.reg] = cpu.mulImm16(src, imm)
	cpu.memCycles(1)
}

// condition evaluates the Jcc condition in the low nibble of the opcode.
func (cpu *CPU) condition(cc byte) bool {
	cy := cpu.CheckFlag(PSWCarry)
	z := cpu.CheckFlag(PSWZero)
	s := cpu.CheckFlag(PSWSign)
	v := cpu.CheckFlag(PSWOverflow)

	var taken bool
	switch cc >> 1 {
	case 0:
		taken = v
	case 1:
		taken = cy
	case 2:
		taken = z
	case 3:
		taken = cy || z
	case 4:
		taken = s
	case 5:
		taken = cpu.CheckFlag(PSWParity)
	case 6:
		taken = s != v
	case 7:
		taken = s != v || z
	}
	if cc&1 != 0 {
		return !taken
	}
	return taken
}

func (cpu *CPU) jumpRelative(disp uint16) {
	cpu.state.PC += disp
	cpu.cycles += 3
}

func (cpu *CPU) branchCond() {
	disp := uint16(int8(cpu.fetch8()))
	if cpu.condition(cpu.opcode & 0x0F) {
		cpu.jumpRelative(disp)
	}
}

func (cpu *CPU) group1() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	var imm uint32
	if cpu.opcode == 0x83 {
		imm = uint32(uint16(int8(cpu.fetch8())))
	} else {
		imm = cpu.fetch(w)
	}

	op := int(cpu.modrm.reg)
	res := cpu.alu(op, w, cpu.readRM(w), imm)
	if op == aluCMP {
		cpu.memCycles(1)
		return
	}
	cpu.writeRM(w, res)
	cpu.memCycles(2)
}

func (cpu *CPU) test() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	cpu.logic(w, cpu.readRM(w)&cpu.readRegOperand(w))
	cpu.memCycles(1)
}

func (cpu *CPU) xch() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	a, b := cpu.readRM(w), cpu.readRegOperand(w)
	cpu.writeRM(w, b)
	cpu.writeRegOperand(w, a)
	cpu.memCycles(2)
}

func (cpu *CPU) mov() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	if cpu.opcode&2 == 0 {
		cpu.writeRM(w, cpu.readRegOperand(w))
		return
	}
	cpu.writeRegOperand(w, cpu.readRM(w))
}

func (cpu *CPU) movFromSeg() {
	cpu.decodeModRM()
	cpu.writeRM(Width16, uint32(cpu.state.Segs[cpu.modrm.reg&3]))
	cpu.memCycles(2)
}

func (cpu *CPU) movToSeg() {
	cpu.decodeModRM()
	cpu.state.Segs[cpu.modrm.reg&3] = uint16(cpu.readRM(Width16))
	cpu.memCycles(1)
}

// ldea loads the effective offset. The register form copies the register.
func (cpu *CPU) ldea() {
	cpu.decodeModRM()
	if cpu.modrm.memory {
		cpu.state.Regs[cpu.modrm.reg] = cpu.modrm.offset
		return
	}
	cpu.state.Regs[cpu.modrm.reg] = cpu.state.Regs[cpu.modrm.rm]
}

func (cpu *CPU) popRM() {
	cpu.decodeModRM()
	cpu.writeRM(Width16, uint32(cpu.pop()))
	cpu.memCycles(2)
}

func (cpu *CPU) xchAW() {
	i := cpu.opcode & 7
	r := &cpu.state.Regs
	r[RegAW], r[i] = r[i], r[RegAW]
}

func (cpu *CPU) cvtbw() {
	cpu.state.Regs[RegAW] = uint16(int8(cpu.reg8(0)))
}

func (cpu *CPU) cvtwl() {
	if cpu.state.Regs[RegAW]&0x8000 != 0 {
		cpu.state.Regs[RegDW] = 0xFFFF
	} else {
		cpu.state.Regs[RegDW] = 0
	}
}

func (cpu *CPU) callFar() {
	offset := cpu.fetch16()
	segment := cpu.fetch16()
	cpu.push(cpu.state.Segs[SegPS])
	cpu.push(cpu.state.PC)
	cpu.state.Segs[SegPS] = segment
	cpu.state.PC = offset
}

func (cpu *CPU) pushPSW() {
	cpu.push(cpu.state.PSW)
}

func (cpu *CPU) popPSW() {
	cpu.state.PSW = normalizePSW(cpu.pop())
}

func (cpu *CPU) sahf() {
	cpu.state.PSW = normalizePSW(cpu.state.PSW&0xFF00 | uint16(cpu.reg8(4)))
}

func (cpu *CPU) lahf() {
	cpu.setReg8(4, byte(cpu.state.PSW))
}

func (cpu *CPU) movAccMem() {
	w := cpu.opWidth()
	offset := cpu.fetch16()
	segment := cpu.seg(SegDS0)
	if cpu.opcode&2 == 0 {
		cpu.setReg(w, RegAW, cpu.read(w, segment, offset))
		return
	}
	cpu.write(w, segment, offset, cpu.reg(w, RegAW))
}

func (cpu *CPU) testAcc() {
	w := cpu.opWidth()
	cpu.logic(w, cpu.reg(w, RegAW)&cpu.fetch(w))
}

func (cpu *CPU) movRegImm() {
	i := cpu.opcode & 7
	if cpu.opcode < 0xB8 {
		cpu.setReg8(i, cpu.fetch8())
		return
	}
	cpu.state.Regs[i] = cpu.fetch16()
}

func (cpu *CPU) shiftOp() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	var count uint32
	switch cpu.opcode {
	case 0xC0, 0xC1:
		count = uint32(cpu.fetch8())
	case 0xD0, 0xD1:
		count = 1
	default:
		count = uint32(cpu.reg8(1))
	}
	res := cpu.shift(cpu.modrm.reg, w, cpu.readRM(w), count&0x1F)
	cpu.writeRM(w, res)
	cpu.memCycles(2)
}

func (cpu *CPU) ret() {
	var release uint16
	if cpu.opcode == 0xC2 {
		release = cpu.fetch16()
	}
	cpu.state.PC = cpu.pop()
	cpu.state.Regs[RegSP] += release
}

func (cpu *CPU) retf() {
	var release uint16
	if cpu.opcode == 0xCA {
		release = cpu.fetch16()
	}
	cpu.state.PC = cpu.pop()
	cpu.state.Segs[SegPS] = cpu.pop()
	cpu.state.Regs[RegSP] += release
}

// loadFar is LDS/LES: 0xC4 loads DS1, 0xC5 loads DS0.
func (cpu *CPU) loadFar() {
	cpu.decodeModRM()
	if !cpu.modrm.memory {
		return
	}
	offset, segment := cpu.readFarPointer()
	cpu.state.Regs[cpu.modrm.reg] = offset
	if cpu.opcode == 0xC4 {
		cpu.state.Segs[SegDS1] = segment
	} else {
		cpu.state.Segs[SegDS0] = segment
	}
}

func (cpu *CPU) movRMImm() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	cpu.writeRM(w, cpu.fetch(w))
}

// prepare builds a stack frame with level-1 copied frame pointers.
func (cpu *CPU) prepare() {
	size := cpu.fetch16()
	level := cpu.fetch8() & 0x1F
	r := &cpu.state.Regs

	cpu.push(r[RegBP])
	frame := r[RegSP]
	if level > 0 {
		for i := byte(1); i < level; i++ {
			r[RegBP] -= 2
			cpu.push(cpu.read16(cpu.state.Segs[SegSS], r[RegBP]))
		}
		cpu.push(frame)
		cpu.cycles += 4 * int(level)
	}
	r[RegBP] = frame
	r[RegSP] -= size
}

func (cpu *CPU) dispose() {
	cpu.state.Regs[RegSP] = cpu.state.Regs[RegBP]
	cpu.state.Regs[RegBP] = cpu.pop()
}

func (cpu *CPU) brk3() {
	cpu.Interrupt(3)
}

func (cpu *CPU) brk() {
	cpu.Interrupt(cpu.fetch8())
}

func (cpu *CPU) brkv() {
	if cpu.CheckFlag(PSWOverflow) {
		cpu.cycles += 7
		cpu.Interrupt(4)
	}
}

func (cpu *CPU) reti() {
	cpu.state.PC = cpu.pop()
	cpu.state.Segs[SegPS] = cpu.pop()
	cpu.state.PSW = normalizePSW(cpu.pop())
}

func (cpu *CPU) cvtbd() {
	base := cpu.fetch8()
	if base == 0 {
		cpu.Interrupt(0)
		return
	}
	al := cpu.reg8(0)
	cpu.state.Regs[RegAW] = uint16(al/base)<<8 | uint16(al%base)
	cpu.setSZP(uint32(al%base), Width8)
}

func (cpu *CPU) cvtdb() {
	base := cpu.fetch8()
	al := cpu.reg8(4)*base + cpu.reg8(0)
	cpu.state.Regs[RegAW] = uint16(al)
	cpu.setSZP(uint32(al), Width8)
}

func (cpu *CPU) salc() {
	if cpu.CheckFlag(PSWCarry) {
		cpu.setReg8(0, 0xFF)
	} else {
		cpu.setReg8(0, 0)
	}
}

func (cpu *CPU) trans() {
	offset := cpu.state.Regs[RegBW] + uint16(cpu.reg8(0))
	cpu.setReg8(0, cpu.read8(cpu.seg(SegDS0), offset))
}

// fpo1 is the coprocessor escape: the operand is decoded and ignored.
func (cpu *CPU) fpo1() {
	cpu.decodeModRM()
}

func (cpu *CPU) loop() {
	disp := uint16(int8(cpu.fetch8()))
	r := &cpu.state.Regs

	var taken bool
	switch cpu.opcode {
	case 0xE0:
		r[RegCW]--
		taken = r[RegCW] != 0 && !cpu.CheckFlag(PSWZero)
	case 0xE1:
		r[RegCW]--
		taken = r[RegCW] != 0 && cpu.CheckFlag(PSWZero)
	case 0xE2:
		r[RegCW]--
		taken = r[RegCW] != 0
	case 0xE3:
		taken = r[RegCW] == 0
	}
	if taken {
		cpu.jumpRelative(disp)
	}
}

func (cpu *CPU) ioPort() uint16 {
	if cpu.opcode&0x08 != 0 {
		return cpu.state.Regs[RegDW]
	}
	return uint16(cpu.fetch8())
}

func (cpu *CPU) in() {
	w := cpu.opWidth()
	cpu.setReg(w, RegAW, cpu.readPort(w, cpu.ioPort()))
}

func (cpu *CPU) out() {
	w := cpu.opWidth()
	cpu.writePort(w, cpu.ioPort(), cpu.reg(w, RegAW))
}

func (cpu *CPU) callNear() {
	disp := cpu.fetch16()
	cpu.push(cpu.state.PC)
	cpu.state.PC += disp
}

func (cpu *CPU) brNear() {
	disp := cpu.fetch16()
	cpu.state.PC += disp
}

func (cpu *CPU) brFar() {
	offset := cpu.fetch16()
	cpu.state.Segs[SegPS] = cpu.fetch16()
	cpu.state.PC = offset
}

func (cpu *CPU) brShort() {
	disp := uint16(int8(cpu.fetch8()))
	cpu.state.PC += disp
}

func (cpu *CPU) halt() {
	cpu.state.Halted = true
}

func (cpu *CPU) not1CY() {
	cpu.state.PSW ^= PSWCarry
}

func (cpu *CPU) clr1CY() {
	cpu.ClearFlags(PSWCarry)
}

func (cpu *CPU) set1CY() {
	cpu.SetFlags(PSWCarry)
}

func (cpu *CPU) di() {
	cpu.ClearFlags(PSWInterrupt)
}

func (cpu *CPU) ei() {
	cpu.SetFlags(PSWInterrupt)
}

func (cpu *CPU) clr1Dir() {
	cpu.ClearFlags(PSWDirection)
}

func (cpu *CPU) set1Dir() {
	cpu.SetFlags(PSWDirection)
}

var group3Names = [8]string{"TEST", "TEST", "NOT", "NEG", "MULU", "MUL", "DIVU", "DIV"}

func (cpu *CPU) group3() {
	cpu.decodeModRM()
	w := cpu.opWidth()
	mask, _ := widthMask(w)
	v := cpu.readRM(w)

	switch cpu.modrm.reg {
	case 0, 1:
		cpu.logic(w, v&cpu.fetch(w))
		cpu.memCycles(1)
	case 2:
		cpu.writeRM(w, ^v&mask)
		cpu.memCycles(2)
	case 3:
		cpu.writeRM(w, cpu.sub(w, 0, v, 0))
		cpu.memCycles(2)
	case 4:
		cpu.cycles += 2
		cpu.mulu(w, v)
		cpu.memCycles(1)
	case 5:
		cpu.cycles += 2
		cpu.mul(w, v)
		cpu.memCycles(1)
	case 6:
		if w == Width8 {
			cpu.cycles += 14
		} else {
			cpu.cycles += 22
		}
		cpu.divu(w, v)
		cpu.memCycles(1)
	case 7:
		if w == Width8 {
			cpu.cycles += 16
		} else {
			cpu.cycles += 23
		}
		cpu.div(w, v)
		cpu.memCycles(1)
	}
}

var group5Names = [8]string{"INC", "DEC", "CALL", "CALL", "BR", "BR", "PUSH", "INV"}

// group4 is the 8-bit INC/DEC group. The other sub-ops have no effect.
func (cpu *CPU) group4() {
	cpu.decodeModRM()
	switch cpu.modrm.reg {
	case 0:
		cpu.writeRM(Width8, cpu.inc(Width8, cpu.readRM(Width8)))
		cpu.memCycles(2)
	case 1:
		cpu.writeRM(Width8, cpu.dec(Width8, cpu.readRM(Width8)))
		cpu.memCycles(2)
	default:
		cpu.reportInvalid()
	}
}

func (cpu *CPU) group5() {
	cpu.decodeModRM()
	switch cpu.modrm.reg {
	case 0:
		cpu.writeRM(Width16, cpu.inc(Width16, cpu.readRM(Width16)))
		cpu.memCycles(2)
	case 1:
		cpu.writeRM(Width16, cpu.dec(Width16, cpu.readRM(Width16)))
		cpu.memCycles(2)
	case 2:
		target := uint16(cpu.readRM(Width16))
		cpu.push(cpu.state.PC)
		cpu.state.PC = target
		cpu.cycles += 4
		cpu.memCycles(1)
	case 3:
		offset, segment := cpu.readFarPointer()
		cpu.push(cpu.state.Segs[SegPS])
		cpu.push(cpu.state.PC)
		cpu.state.Segs[SegPS] = segment
		cpu.state.PC = offset
		cpu.cycles += 11
	case 4:
		cpu.state.PC = uint16(cpu.readRM(Width16))
		cpu.cycles += 3
		cpu.memCycles(1)
	case 5:
		offset, segment := cpu.readFarPointer()
		cpu.state.Segs[SegPS] = segment
		cpu.state.PC = offset
		cpu.cycles += 9
	case 6:
		cpu.push(uint16(cpu.readRM(Width16)))
		cpu.memCycles(1)
	default:
		cpu.reportInvalid()
	}
}
