// Package disasm turns LR35902 machine code back into mnemonics, for the
// instruction trace and debugging output.
package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/go-dmg/dmg/bit"
)

// Reader is the memory the disassembler reads instructions from.
type Reader interface {
	Read(address uint16) uint8
}

// Line represents a single disassembled instruction.
type Line struct {
	Address     uint16
	Opcode      uint8
	Instruction string
	Length      int
}

func (l Line) String() string {
	return fmt.Sprintf("0x%04X: %s", l.Address, l.Instruction)
}

var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

var aluNames = [8]string{"ADD A, ", "ADC A, ", "SUB ", "SBC A, ", "AND ", "XOR ", "OR ", "CP "}

var cbShiftNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// templates holds the primary table. Operands are formatted with %02X for
// 8 bit immediates and %04X for 16 bit immediates.
var templates [256]string

// cbNames holds the 0xCB extended table, which never has operands.
var cbNames [256]string

var explicitTemplates = map[uint8]string{
	0x00: "NOP", 0x01: "LD BC, $%04X", 0x02: "LD (BC), A", 0x03: "INC BC", 0x07: "RLCA",
	0x08: "LD ($%04X), SP", 0x09: "ADD HL, BC", 0x0A: "LD A, (BC)", 0x0B: "DEC BC", 0x0F: "RRCA",
	0x10: "STOP", 0x11: "LD DE, $%04X", 0x12: "LD (DE), A", 0x13: "INC DE", 0x17: "RLA",
	0x18: "JR $%02X", 0x19: "ADD HL, DE", 0x1A: "LD A, (DE)", 0x1B: "DEC DE", 0x1F: "RRA",
	0x20: "JR NZ, $%02X", 0x21: "LD HL, $%04X", 0x22: "LD (HL+), A", 0x23: "INC HL", 0x27: "DAA",
	0x28: "JR Z, $%02X", 0x29: "ADD HL, HL", 0x2A: "LD A, (HL+)", 0x2B: "DEC HL", 0x2F: "CPL",
	0x30: "JR NC, $%02X", 0x31: "LD SP, $%04X", 0x32: "LD (HL-), A", 0x33: "INC SP", 0x37: "SCF",
	0x38: "JR C, $%02X", 0x39: "ADD HL, SP", 0x3A: "LD A, (HL-)", 0x3B: "DEC SP", 0x3F: "CCF",
	0x76: "HALT",
	0xC0: "RET NZ", 0xC1: "POP BC", 0xC2: "JP NZ, $%04X", 0xC3: "JP $%04X", 0xC4: "CALL NZ, $%04X",
	0xC5: "PUSH BC", 0xC6: "ADD A, $%02X", 0xC8: "RET Z", 0xC9: "RET", 0xCA: "JP Z, $%04X",
	0xCC: "CALL Z, $%04X", 0xCD: "CALL $%04X", 0xCE: "ADC A, $%02X",
	0xD0: "RET NC", 0xD1: "POP DE", 0xD2: "JP NC, $%04X", 0xD4: "CALL NC, $%04X", 0xD5: "PUSH DE",
	0xD6: "SUB $%02X", 0xD8: "RET C", 0xD9: "RETI", 0xDA: "JP C, $%04X", 0xDC: "CALL C, $%04X",
	0xDE: "SBC A, $%02X",
	0xE0: "LDH ($FF%02X), A", 0xE1: "POP HL", 0xE2: "LD ($FF00+C), A", 0xE5: "PUSH HL",
	0xE6: "AND $%02X", 0xE8: "ADD SP, $%02X", 0xE9: "JP HL", 0xEA: "LD ($%04X), A", 0xEE: "XOR $%02X",
	0xF0: "LDH A, ($FF%02X)", 0xF1: "POP AF", 0xF2: "LD A, ($FF00+C)", 0xF3: "DI", 0xF5: "PUSH AF",
	0xF6: "OR $%02X", 0xF8: "LD HL, SP+$%02X", 0xF9: "LD SP, HL", 0xFA: "LD A, ($%04X)", 0xFB: "EI",
	0xFE: "CP $%02X",
}

func init() {
	for code := 0; code < 256; code++ {
		op := uint8(code)
		reg := registerNames[op&0x07]
		dst := registerNames[(op>>3)&0x07]

		switch t, ok := explicitTemplates[op]; {
		case ok:
			templates[code] = t
		case op < 0x40 && op&0x07 == 0x04:
			templates[code] = "INC " + dst
		case op < 0x40 && op&0x07 == 0x05:
			templates[code] = "DEC " + dst
		case op < 0x40 && op&0x07 == 0x06:
			templates[code] = "LD " + dst + ", $%02X"
		case op >= 0x40 && op < 0x80:
			templates[code] = "LD " + dst + ", " + reg
		case op >= 0x80 && op < 0xC0:
			templates[code] = aluNames[(op>>3)&0x07] + reg
		case op >= 0xC0 && op&0x07 == 0x07:
			templates[code] = fmt.Sprintf("RST $%02X", op&0x38)
		}

		switch op >> 6 {
		case 0:
			cbNames[code] = cbShiftNames[(op>>3)&0x07] + " " + reg
		case 1:
			cbNames[code] = fmt.Sprintf("BIT %d, %s", (op>>3)&0x07, reg)
		case 2:
			cbNames[code] = fmt.Sprintf("RES %d, %s", (op>>3)&0x07, reg)
		default:
			cbNames[code] = fmt.Sprintf("SET %d, %s", (op>>3)&0x07, reg)
		}
	}
}

// Length returns the encoded size of the instruction starting with opcode.
func Length(opcode uint8) int {
	switch t := templates[opcode]; {
	case opcode == 0xCB || opcode == 0x10:
		return 2
	case strings.Contains(t, "%04X"):
		return 3
	case strings.Contains(t, "%02X"):
		return 2
	default:
		return 1
	}
}

// Name returns the bare mnemonic of a primary opcode, "DB $xx" for the
// undefined ones.
func Name(opcode uint8) string {
	if opcode == 0xCB {
		return "PREFIX CB"
	}
	if templates[opcode] == "" {
		return fmt.Sprintf("DB $%02X", opcode)
	}
	return templates[opcode]
}

// CBName returns the mnemonic of an extended opcode.
func CBName(opcode uint8) string {
	return cbNames[opcode]
}

// At disassembles the instruction at pc.
func At(mem Reader, pc uint16) Line {
	opcode := mem.Read(pc)
	line := Line{Address: pc, Opcode: opcode, Length: Length(opcode)}

	switch {
	case opcode == 0xCB:
		line.Instruction = cbNames[mem.Read(pc+1)]
	case templates[opcode] == "":
		line.Instruction = Name(opcode)
	case line.Length == 3:
		line.Instruction = fmt.Sprintf(templates[opcode], bit.Combine(mem.Read(pc+2), mem.Read(pc+1)))
	case line.Length == 2 && opcode != 0x10:
		line.Instruction = fmt.Sprintf(templates[opcode], mem.Read(pc+1))
	default:
		line.Instruction = templates[opcode]
	}

	return line
}

// Range disassembles count instructions starting at pc.
func Range(mem Reader, pc uint16, count int) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		line := At(mem, pc)
		lines = append(lines, line)
		pc += uint16(line.Length)
	}
	return lines
}
