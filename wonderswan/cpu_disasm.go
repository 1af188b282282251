package wonderswan

import (
	"fmt"
	"strings"
)

var (
	reg8Names  = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
	reg16Names = [8]string{"AW", "CW", "DW", "BW", "SP", "BP", "IX", "IY"}
	segNames   = [4]string{"DS1", "PS", "SS", "DS0"}
	baseNames  = [8]string{"BW+IX", "BW+IY", "BP+IX", "BP+IY", "IX", "IY", "BP", "BW"}
)

// maxPrefixes bounds the prefix scan so a run of prefix bytes cannot hang
// the disassembler.
const maxPrefixes = 15

type disassembler struct {
	cpu      *CPU
	ps, pc   uint16
	n        int
	override string
	modrm    byte
	disp     string
}

func (d *disassembler) next8() byte {
	v := d.cpu.read8(d.ps, d.pc+uint16(d.n))
	d.n++
	return v
}

func (d *disassembler) next16() uint16 {
	lo := uint16(d.next8())
	hi := uint16(d.next8())
	return hi<<8 | lo
}

// Disassemble decodes the instruction at ps:pc without executing it. It
// returns the text and the length in bytes, prefixes included.
func (cpu *CPU) Disassemble(ps, pc uint16) (string, int) {
	d := disassembler{cpu: cpu, ps: ps, pc: pc}
	var prefix []string

	opcode := d.next8()
	for i := 0; i < maxPrefixes; i++ {
		switch opcode {
		case 0x26, 0x2E, 0x36, 0x3E:
			d.override = segNames[(opcode>>3)&3] + ":"
		case 0xF0:
			prefix = append(prefix, "BUSLOCK")
		case 0xF2:
			prefix = append(prefix, "REPNE")
		case 0xF3:
			prefix = append(prefix, "REP")
		default:
			i = maxPrefixes
			continue
		}
		opcode = d.next8()
	}

	instruction := &cpu.table[opcode]
	if instruction.fn == nil {
		return fmt.Sprintf("DB %02X", opcode), d.n
	}

	operands := instruction.operands
	if strings.ContainsAny(operands, "EGSM") {
		d.decodeModRM()
	}

	name := instruction.name
	reg := (d.modrm >> 3) & 7
	switch name {
	case "GRP1":
		name = aluNames[reg]
	case "SHIFT":
		name = shiftNames[reg]
	case "GRP3":
		name = group3Names[reg]
		if reg < 2 {
			if opcode&1 == 0 {
				operands += ",Ib"
			} else {
				operands += ",Iv"
			}
		}
	case "GRP4":
		name = group5Names[reg]
		if reg > 1 {
			name = "INV"
		}
	case "GRP5":
		name = group5Names[reg]
	}

	var args []string
	if operands != "" {
		for _, token := range strings.Split(operands, ",") {
			args = append(args, d.operand(token, opcode))
		}
	}

	text := name
	if len(args) > 0 {
		text += " " + strings.Join(args, ", ")
	}
	if d.override != "" && !strings.ContainsAny(operands, "EMO") {
		text = d.override + " " + text
	}
	if len(prefix) > 0 {
		text = strings.Join(prefix, " ") + " " + text
	}
	return text, d.n
}

func (d *disassembler) decodeModRM() {
	d.modrm = d.next8()
	mod, rm := d.modrm>>6, d.modrm&7
	switch {
	case mod == 0 && rm == 6:
		d.disp = fmt.Sprintf("%04X", d.next16())
	case mod == 1:
		disp := int8(d.next8())
		if disp < 0 {
			d.disp = fmt.Sprintf("%s-%02X", baseNames[rm], -int(disp))
		} else {
			d.disp = fmt.Sprintf("%s+%02X", baseNames[rm], disp)
		}
	case mod == 2:
		d.disp = fmt.Sprintf("%s+%04X", baseNames[rm], d.next16())
	default:
		d.disp = baseNames[rm]
	}
}

func (d *disassembler) memory() string {
	return d.override + "[" + d.disp + "]"
}

func (d *disassembler) operand(token string, opcode byte) string {
	rm, reg := d.modrm&7, (d.modrm>>3)&7
	register := d.modrm>>6 == 3

	switch token {
	case "Eb":
		if register {
			return reg8Names[rm]
		}
		return d.memory()
	case "Ev", "Ew":
		if register {
			return reg16Names[rm]
		}
		return d.memory()
	case "M", "Mp":
		return d.memory()
	case "Gb":
		return reg8Names[reg]
	case "Gv":
		return reg16Names[reg]
	case "Sw":
		return segNames[reg&3]
	case "Zb":
		return reg8Names[opcode&7]
	case "Zv":
		return reg16Names[opcode&7]
	case "Ib":
		return fmt.Sprintf("%02X", d.next8())
	case "Iw", "Iv":
		return fmt.Sprintf("%04X", d.next16())
	case "Is":
		return fmt.Sprintf("%04X", uint16(int8(d.next8())))
	case "Jb":
		disp := uint16(int8(d.next8()))
		return fmt.Sprintf("%04X", d.pc+uint16(d.n)+disp)
	case "Jv":
		disp := d.next16()
		return fmt.Sprintf("%04X", d.pc+uint16(d.n)+disp)
	case "Ap":
		offset := d.next16()
		return fmt.Sprintf("%04X:%04X", d.next16(), offset)
	case "Ob", "Ov":
		return fmt.Sprintf("%s[%04X]", d.override, d.next16())
	}
	return token
}
