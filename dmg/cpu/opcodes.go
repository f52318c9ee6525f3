package cpu

import "github.com/valerio/go-dmg/dmg/bit"

// Opcode executes one instruction and returns its cost in machine cycles.
// PC already points past the opcode byte when it is called.
type Opcode func(*CPU) int

// register operand encoding used by the LD r, r' and ALU blocks and by the CB table.
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLIndirect
	regA
)

// readOperand returns the operand selected by the 3 bit register field.
func (c *CPU) readOperand(idx uint8) uint8 {
	switch idx {
	case regB:
		return c.b
	case regC:
		return c.c
	case regD:
		return c.d
	case regE:
		return c.e
	case regH:
		return c.h
	case regL:
		return c.l
	case regHLIndirect:
		return c.bus.Read(c.getHL())
	default:
		return c.a
	}
}

// writeOperand stores value into the operand selected by the 3 bit register field.
func (c *CPU) writeOperand(idx, value uint8) {
	switch idx {
	case regB:
		c.b = value
	case regC:
		c.c = value
	case regD:
		c.d = value
	case regE:
		c.e = value
	case regH:
		c.h = value
	case regL:
		c.l = value
	case regHLIndirect:
		c.bus.Write(c.getHL(), value)
	default:
		c.a = value
	}
}

func (c *CPU) jr(condition bool) int {
	offset := c.readSignedImmediate()
	if !condition {
		return 2
	}
	c.pc = uint16(int32(c.pc) + int32(offset))
	return 3
}

func (c *CPU) jp(condition bool) int {
	address := c.readImmediateWord()
	if !condition {
		return 3
	}
	c.pc = address
	return 4
}

func (c *CPU) call(condition bool) int {
	address := c.readImmediateWord()
	if !condition {
		return 3
	}
	c.pushStack(c.pc)
	c.pc = address
	return 6
}

func (c *CPU) ret(condition bool) int {
	if !condition {
		return 2
	}
	c.pc = c.popStack()
	return 5
}

func (c *CPU) rst(vector uint16) int {
	c.pushStack(c.pc)
	c.pc = vector
	return 4
}

var opcodes [256]Opcode

func init() {
	explicit := map[uint8]Opcode{
		0x00: opcode0x00,
		0x01: opcode0x01,
		0x02: opcode0x02,
		0x03: opcode0x03,
		0x04: opcode0x04,
		0x05: opcode0x05,
		0x06: opcode0x06,
		0x07: opcode0x07,
		0x08: opcode0x08,
		0x09: opcode0x09,
		0x0A: opcode0x0A,
		0x0B: opcode0x0B,
		0x0C: opcode0x0C,
		0x0D: opcode0x0D,
		0x0E: opcode0x0E,
		0x0F: opcode0x0F,
		0x10: opcode0x10,
		0x11: opcode0x11,
		0x12: opcode0x12,
		0x13: opcode0x13,
		0x14: opcode0x14,
		0x15: opcode0x15,
		0x16: opcode0x16,
		0x17: opcode0x17,
		0x18: opcode0x18,
		0x19: opcode0x19,
		0x1A: opcode0x1A,
		0x1B: opcode0x1B,
		0x1C: opcode0x1C,
		0x1D: opcode0x1D,
		0x1E: opcode0x1E,
		0x1F: opcode0x1F,
		0x20: opcode0x20,
		0x21: opcode0x21,
		0x22: opcode0x22,
		0x23: opcode0x23,
		0x24: opcode0x24,
		0x25: opcode0x25,
		0x26: opcode0x26,
		0x27: opcode0x27,
		0x28: opcode0x28,
		0x29: opcode0x29,
		0x2A: opcode0x2A,
		0x2B: opcode0x2B,
		0x2C: opcode0x2C,
		0x2D: opcode0x2D,
		0x2E: opcode0x2E,
		0x2F: opcode0x2F,
		0x30: opcode0x30,
		0x31: opcode0x31,
		0x32: opcode0x32,
		0x33: opcode0x33,
		0x34: opcode0x34,
		0x35: opcode0x35,
		0x36: opcode0x36,
		0x37: opcode0x37,
		0x38: opcode0x38,
		0x39: opcode0x39,
		0x3A: opcode0x3A,
		0x3B: opcode0x3B,
		0x3C: opcode0x3C,
		0x3D: opcode0x3D,
		0x3E: opcode0x3E,
		0x3F: opcode0x3F,
		0x76: opcode0x76,
		0xC0: opcode0xC0,
		0xC1: opcode0xC1,
		0xC2: opcode0xC2,
		0xC3: opcode0xC3,
		0xC4: opcode0xC4,
		0xC5: opcode0xC5,
		0xC6: opcode0xC6,
		0xC7: opcode0xC7,
		0xC8: opcode0xC8,
		0xC9: opcode0xC9,
		0xCA: opcode0xCA,
		0xCB: opcode0xCB,
		0xCC: opcode0xCC,
		0xCD: opcode0xCD,
		0xCE: opcode0xCE,
		0xCF: opcode0xCF,
		0xD0: opcode0xD0,
		0xD1: opcode0xD1,
		0xD2: opcode0xD2,
		0xD4: opcode0xD4,
		0xD5: opcode0xD5,
		0xD6: opcode0xD6,
		0xD7: opcode0xD7,
		0xD8: opcode0xD8,
		0xD9: opcode0xD9,
		0xDA: opcode0xDA,
		0xDC: opcode0xDC,
		0xDE: opcode0xDE,
		0xDF: opcode0xDF,
		0xE0: opcode0xE0,
		0xE1: opcode0xE1,
		0xE2: opcode0xE2,
		0xE5: opcode0xE5,
		0xE6: opcode0xE6,
		0xE7: opcode0xE7,
		0xE8: opcode0xE8,
		0xE9: opcode0xE9,
		0xEA: opcode0xEA,
		0xEE: opcode0xEE,
		0xEF: opcode0xEF,
		0xF0: opcode0xF0,
		0xF1: opcode0xF1,
		0xF2: opcode0xF2,
		0xF3: opcode0xF3,
		0xF5: opcode0xF5,
		0xF6: opcode0xF6,
		0xF7: opcode0xF7,
		0xF8: opcode0xF8,
		0xF9: opcode0xF9,
		0xFA: opcode0xFA,
		0xFB: opcode0xFB,
		0xFE: opcode0xFE,
		0xFF: opcode0xFF,
	}

	for code := range opcodes {
		if fn, ok := explicit[uint8(code)]; ok {
			opcodes[code] = fn
			continue
		}
		opcodes[code] = generatedOpcode(uint8(code))
	}
}

// aluOps are the eight accumulator operations of the 0x80-0xBF block, in encoding order.
var aluOps = [8]func(c *CPU, value uint8){
	func(c *CPU, v uint8) { c.add(v, false) },
	func(c *CPU, v uint8) { c.add(v, true) },
	func(c *CPU, v uint8) { c.sub(v, false) },
	func(c *CPU, v uint8) { c.sub(v, true) },
	(*CPU).and,
	(*CPU).xor,
	(*CPU).or,
	(*CPU).cp,
}

// generatedOpcode builds the handlers of the two regular blocks:
// LD r, r' (0x40-0x7F) and ALU A, r (0x80-0xBF). Anything else is undefined.
func generatedOpcode(code uint8) Opcode {
	src := code & 0x07
	cost := 1
	if src == regHLIndirect {
		cost = 2
	}

	switch {
	case code >= 0x40 && code < 0x80:
		dst := (code >> 3) & 0x07
		if dst == regHLIndirect {
			cost = 2
		}
		return func(c *CPU) int {
			c.writeOperand(dst, c.readOperand(src))
			return cost
		}
	case code >= 0x80 && code < 0xC0:
		alu := aluOps[(code>>3)&0x07]
		return func(c *CPU) int {
			alu(c, c.readOperand(src))
			return cost
		}
	}

	return undefined
}

// NOP
// 0x00:
func opcode0x00(c *CPU) int {
	return 1
}

// LD BC, nn
// 0x01:
func opcode0x01(c *CPU) int {
	c.setBC(c.readImmediateWord())
	return 3
}

// LD (BC), A
// 0x02:
func opcode0x02(c *CPU) int {
	c.bus.Write(c.getBC(), c.a)
	return 2
}

// INC BC
// 0x03:
func opcode0x03(c *CPU) int {
	c.setBC(c.getBC() + 1)
	return 2
}

// INC B
// 0x04:
func opcode0x04(c *CPU) int {
	c.inc(&c.b)
	return 1
}

// DEC B
// 0x05:
func opcode0x05(c *CPU) int {
	c.dec(&c.b)
	return 1
}

// LD B, n
// 0x06:
func opcode0x06(c *CPU) int {
	c.b = c.readImmediate()
	return 2
}

// RLCA
// 0x07:
func opcode0x07(c *CPU) int {
	c.rlc(&c.a)
	c.f.SetZero(false)
	return 1
}

// LD (nn), SP
// 0x08:
func opcode0x08(c *CPU) int {
	address := c.readImmediateWord()
	c.bus.Write(address, bit.Low(c.sp))
	c.bus.Write(address+1, bit.High(c.sp))
	return 5
}

// ADD HL, BC
// 0x09:
func opcode0x09(c *CPU) int {
	c.addToHL(c.getBC())
	return 2
}

// LD A, (BC)
// 0x0A:
func opcode0x0A(c *CPU) int {
	c.a = c.bus.Read(c.getBC())
	return 2
}

// DEC BC
// 0x0B:
func opcode0x0B(c *CPU) int {
	c.setBC(c.getBC() - 1)
	return 2
}

// INC C
// 0x0C:
func opcode0x0C(c *CPU) int {
	c.inc(&c.c)
	return 1
}

// DEC C
// 0x0D:
func opcode0x0D(c *CPU) int {
	c.dec(&c.c)
	return 1
}

// LD C, n
// 0x0E:
func opcode0x0E(c *CPU) int {
	c.c = c.readImmediate()
	return 2
}

// RRCA
// 0x0F:
func opcode0x0F(c *CPU) int {
	c.rrc(&c.a)
	c.f.SetZero(false)
	return 1
}

// STOP
// 0x10:
func opcode0x10(c *CPU) int {
	// STOP is encoded with a trailing 0x00 byte
	c.readImmediate()
	c.halted = true
	return 1
}

// LD DE, nn
// 0x11:
func opcode0x11(c *CPU) int {
	c.setDE(c.readImmediateWord())
	return 3
}

// LD (DE), A
// 0x12:
func opcode0x12(c *CPU) int {
	c.bus.Write(c.getDE(), c.a)
	return 2
}

// INC DE
// 0x13:
func opcode0x13(c *CPU) int {
	c.setDE(c.getDE() + 1)
	return 2
}

// INC D
// 0x14:
func opcode0x14(c *CPU) int {
	c.inc(&c.d)
	return 1
}

// DEC D
// 0x15:
func opcode0x15(c *CPU) int {
	c.dec(&c.d)
	return 1
}

// LD D, n
// 0x16:
func opcode0x16(c *CPU) int {
	c.d = c.readImmediate()
	return 2
}

// RLA
// 0x17:
func opcode0x17(c *CPU) int {
	c.rl(&c.a)
	c.f.SetZero(false)
	return 1
}

// JR e
// 0x18:
func opcode0x18(c *CPU) int {
	return c.jr(true)
}

// ADD HL, DE
// 0x19:
func opcode0x19(c *CPU) int {
	c.addToHL(c.getDE())
	return 2
}

// LD A, (DE)
// 0x1A:
func opcode0x1A(c *CPU) int {
	c.a = c.bus.Read(c.getDE())
	return 2
}

// DEC DE
// 0x1B:
func opcode0x1B(c *CPU) int {
	c.setDE(c.getDE() - 1)
	return 2
}

// INC E
// 0x1C:
func opcode0x1C(c *CPU) int {
	c.inc(&c.e)
	return 1
}

// DEC E
// 0x1D:
func opcode0x1D(c *CPU) int {
	c.dec(&c.e)
	return 1
}

// LD E, n
// 0x1E:
func opcode0x1E(c *CPU) int {
	c.e = c.readImmediate()
	return 2
}

// RRA
// 0x1F:
func opcode0x1F(c *CPU) int {
	c.rr(&c.a)
	c.f.SetZero(false)
	return 1
}

// JR NZ, e
// 0x20:
func opcode0x20(c *CPU) int {
	return c.jr(!c.f.Zero())
}

// LD HL, nn
// 0x21:
func opcode0x21(c *CPU) int {
	c.setHL(c.readImmediateWord())
	return 3
}

// LD (HL+), A
// 0x22:
func opcode0x22(c *CPU) int {
	hl := c.getHL()
	c.bus.Write(hl, c.a)
	c.setHL(hl + 1)
	return 2
}

// INC HL
// 0x23:
func opcode0x23(c *CPU) int {
	c.setHL(c.getHL() + 1)
	return 2
}

// INC H
// 0x24:
func opcode0x24(c *CPU) int {
	c.inc(&c.h)
	return 1
}

// DEC H
// 0x25:
func opcode0x25(c *CPU) int {
	c.dec(&c.h)
	return 1
}

// LD H, n
// 0x26:
func opcode0x26(c *CPU) int {
	c.h = c.readImmediate()
	return 2
}

// DAA
// 0x27:
func opcode0x27(c *CPU) int {
	c.daa()
	return 1
}

// JR Z, e
// 0x28:
func opcode0x28(c *CPU) int {
	return c.jr(c.f.Zero())
}

// ADD HL, HL
// 0x29:
func opcode0x29(c *CPU) int {
	c.addToHL(c.getHL())
	return 2
}

// LD A, (HL+)
// 0x2A:
func opcode0x2A(c *CPU) int {
	hl := c.getHL()
	c.a = c.bus.Read(hl)
	c.setHL(hl + 1)
	return 2
}

// DEC HL
// 0x2B:
func opcode0x2B(c *CPU) int {
	c.setHL(c.getHL() - 1)
	return 2
}

// INC L
// 0x2C:
func opcode0x2C(c *CPU) int {
	c.inc(&c.l)
	return 1
}

// DEC L
// 0x2D:
func opcode0x2D(c *CPU) int {
	c.dec(&c.l)
	return 1
}

// LD L, n
// 0x2E:
func opcode0x2E(c *CPU) int {
	c.l = c.readImmediate()
	return 2
}

// CPL
// 0x2F:
func opcode0x2F(c *CPU) int {
	c.cpl()
	return 1
}

// JR NC, e
// 0x30:
func opcode0x30(c *CPU) int {
	return c.jr(!c.f.Carry())
}

// LD SP, nn
// 0x31:
func opcode0x31(c *CPU) int {
	c.sp = c.readImmediateWord()
	return 3
}

// LD (HL-), A
// 0x32:
func opcode0x32(c *CPU) int {
	hl := c.getHL()
	c.bus.Write(hl, c.a)
	c.setHL(hl - 1)
	return 2
}

// INC SP
// 0x33:
func opcode0x33(c *CPU) int {
	c.sp++
	return 2
}

// INC (HL)
// 0x34:
func opcode0x34(c *CPU) int {
	address := c.getHL()
	value := c.bus.Read(address)
	c.inc(&value)
	c.bus.Write(address, value)
	return 3
}

// DEC (HL)
// 0x35:
func opcode0x35(c *CPU) int {
	address := c.getHL()
	value := c.bus.Read(address)
	c.dec(&value)
	c.bus.Write(address, value)
	return 3
}

// LD (HL), n
// 0x36:
func opcode0x36(c *CPU) int {
	c.bus.Write(c.getHL(), c.readImmediate())
	return 3
}

// SCF
// 0x37:
func opcode0x37(c *CPU) int {
	c.scf()
	return 1
}

// JR C, e
// 0x38:
func opcode0x38(c *CPU) int {
	return c.jr(c.f.Carry())
}

// ADD HL, SP
// 0x39:
func opcode0x39(c *CPU) int {
	c.addToHL(c.sp)
	return 2
}

// LD A, (HL-)
// 0x3A:
func opcode0x3A(c *CPU) int {
	hl := c.getHL()
	c.a = c.bus.Read(hl)
	c.setHL(hl - 1)
	return 2
}

// DEC SP
// 0x3B:
func opcode0x3B(c *CPU) int {
	c.sp--
	return 2
}

// INC A
// 0x3C:
func opcode0x3C(c *CPU) int {
	c.inc(&c.a)
	return 1
}

// DEC A
// 0x3D:
func opcode0x3D(c *CPU) int {
	c.dec(&c.a)
	return 1
}

// LD A, n
// 0x3E:
func opcode0x3E(c *CPU) int {
	c.a = c.readImmediate()
	return 2
}

// CCF
// 0x3F:
func opcode0x3F(c *CPU) int {
	c.ccf()
	return 1
}

// HALT
// 0x76:
func opcode0x76(c *CPU) int {
	c.halted = true
	return 1
}

// RET NZ
// 0xC0:
func opcode0xC0(c *CPU) int {
	return c.ret(!c.f.Zero())
}

// POP BC
// 0xC1:
func opcode0xC1(c *CPU) int {
	c.setBC(c.popStack())
	return 3
}

// JP NZ, nn
// 0xC2:
func opcode0xC2(c *CPU) int {
	return c.jp(!c.f.Zero())
}

// JP nn
// 0xC3:
func opcode0xC3(c *CPU) int {
	return c.jp(true)
}

// CALL NZ, nn
// 0xC4:
func opcode0xC4(c *CPU) int {
	return c.call(!c.f.Zero())
}

// PUSH BC
// 0xC5:
func opcode0xC5(c *CPU) int {
	c.pushStack(c.getBC())
	return 4
}

// ADD A, n
// 0xC6:
func opcode0xC6(c *CPU) int {
	c.add(c.readImmediate(), false)
	return 2
}

// RST 00H
// 0xC7:
func opcode0xC7(c *CPU) int {
	return c.rst(0x00)
}

// RET Z
// 0xC8:
func opcode0xC8(c *CPU) int {
	return c.ret(c.f.Zero())
}

// RET
// 0xC9:
func opcode0xC9(c *CPU) int {
	c.pc = c.popStack()
	return 4
}

// JP Z, nn
// 0xCA:
func opcode0xCA(c *CPU) int {
	return c.jp(c.f.Zero())
}

// PREFIX CB
// 0xCB:
func opcode0xCB(c *CPU) int {
	cb := c.readImmediate()
	c.opcode = cb
	return opcodesCB[cb](c)
}

// CALL Z, nn
// 0xCC:
func opcode0xCC(c *CPU) int {
	return c.call(c.f.Zero())
}

// CALL nn
// 0xCD:
func opcode0xCD(c *CPU) int {
	return c.call(true)
}

// ADC A, n
// 0xCE:
func opcode0xCE(c *CPU) int {
	c.add(c.readImmediate(), true)
	return 2
}

// RST 08H
// 0xCF:
func opcode0xCF(c *CPU) int {
	return c.rst(0x08)
}

// RET NC
// 0xD0:
func opcode0xD0(c *CPU) int {
	return c.ret(!c.f.Carry())
}

// POP DE
// 0xD1:
func opcode0xD1(c *CPU) int {
	c.setDE(c.popStack())
	return 3
}

// JP NC, nn
// 0xD2:
func opcode0xD2(c *CPU) int {
	return c.jp(!c.f.Carry())
}

// CALL NC, nn
// 0xD4:
func opcode0xD4(c *CPU) int {
	return c.call(!c.f.Carry())
}

// PUSH DE
// 0xD5:
func opcode0xD5(c *CPU) int {
	c.pushStack(c.getDE())
	return 4
}

// SUB n
// 0xD6:
func opcode0xD6(c *CPU) int {
	c.sub(c.readImmediate(), false)
	return 2
}

// RST 10H
// 0xD7:
func opcode0xD7(c *CPU) int {
	return c.rst(0x10)
}

// RET C
// 0xD8:
func opcode0xD8(c *CPU) int {
	return c.ret(c.f.Carry())
}

// RETI
// 0xD9:
func opcode0xD9(c *CPU) int {
	c.pc = c.popStack()
	c.ime.EnableInterrupts()
	return 4
}

// JP C, nn
// 0xDA:
func opcode0xDA(c *CPU) int {
	return c.jp(c.f.Carry())
}

// CALL C, nn
// 0xDC:
func opcode0xDC(c *CPU) int {
	return c.call(c.f.Carry())
}

// SBC A, n
// 0xDE:
func opcode0xDE(c *CPU) int {
	c.sub(c.readImmediate(), true)
	return 2
}

// RST 18H
// 0xDF:
func opcode0xDF(c *CPU) int {
	return c.rst(0x18)
}

// LDH (n), A
// 0xE0:
func opcode0xE0(c *CPU) int {
	c.bus.Write(0xFF00+uint16(c.readImmediate()), c.a)
	return 3
}

// POP HL
// 0xE1:
func opcode0xE1(c *CPU) int {
	c.setHL(c.popStack())
	return 3
}

// LD (C), A
// 0xE2:
func opcode0xE2(c *CPU) int {
	c.bus.Write(0xFF00+uint16(c.c), c.a)
	return 2
}

// PUSH HL
// 0xE5:
func opcode0xE5(c *CPU) int {
	c.pushStack(c.getHL())
	return 4
}

// AND n
// 0xE6:
func opcode0xE6(c *CPU) int {
	c.and(c.readImmediate())
	return 2
}

// RST 20H
// 0xE7:
func opcode0xE7(c *CPU) int {
	return c.rst(0x20)
}

// ADD SP, e
// 0xE8:
func opcode0xE8(c *CPU) int {
	c.sp = c.addToSP(c.readSignedImmediate())
	return 4
}

// JP HL
// 0xE9:
func opcode0xE9(c *CPU) int {
	c.pc = c.getHL()
	return 1
}

// LD (nn), A
// 0xEA:
func opcode0xEA(c *CPU) int {
	c.bus.Write(c.readImmediateWord(), c.a)
	return 4
}

// XOR n
// 0xEE:
func opcode0xEE(c *CPU) int {
	c.xor(c.readImmediate())
	return 2
}

// RST 28H
// 0xEF:
func opcode0xEF(c *CPU) int {
	return c.rst(0x28)
}

// LDH A, (n)
// 0xF0:
func opcode0xF0(c *CPU) int {
	c.a = c.bus.Read(0xFF00 + uint16(c.readImmediate()))
	return 3
}

// POP AF
// 0xF1:
func opcode0xF1(c *CPU) int {
	c.setAF(c.popStack())
	return 3
}

// LD A, (C)
// 0xF2:
func opcode0xF2(c *CPU) int {
	c.a = c.bus.Read(0xFF00 + uint16(c.c))
	return 2
}

// DI
// 0xF3:
func opcode0xF3(c *CPU) int {
	c.ime.DisableInterrupts()
	return 1
}

// PUSH AF
// 0xF5:
func opcode0xF5(c *CPU) int {
	c.pushStack(c.getAF())
	return 4
}

// OR n
// 0xF6:
func opcode0xF6(c *CPU) int {
	c.or(c.readImmediate())
	return 2
}

// RST 30H
// 0xF7:
func opcode0xF7(c *CPU) int {
	return c.rst(0x30)
}

// LD HL, SP+e
// 0xF8:
func opcode0xF8(c *CPU) int {
	c.setHL(c.addToSP(c.readSignedImmediate()))
	return 3
}

// LD SP, HL
// 0xF9:
func opcode0xF9(c *CPU) int {
	c.sp = c.getHL()
	return 2
}

// LD A, (nn)
// 0xFA:
func opcode0xFA(c *CPU) int {
	c.a = c.bus.Read(c.readImmediateWord())
	return 4
}

// EI
// 0xFB:
func opcode0xFB(c *CPU) int {
	c.ime.EnableInterrupts()
	return 1
}

// CP n
// 0xFE:
func opcode0xFE(c *CPU) int {
	c.cp(c.readImmediate())
	return 2
}

// RST 38H
// 0xFF:
func opcode0xFF(c *CPU) int {
	return c.rst(0x38)
}
