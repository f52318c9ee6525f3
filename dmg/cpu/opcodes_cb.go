package cpu

import "github.com/valerio/go-dmg/dmg/bit"

// opcodesCB is the extended table reached through the 0xCB prefix.
// Costs include the prefix byte: 2 cycles on a register, 4 on (HL).
var opcodesCB [256]Opcode

// cbShifts are the rotate/shift/swap operations of 0xCB00-0xCB3F, in encoding order.
var cbShifts = [8]func(c *CPU, r *uint8){
	(*CPU).rlc,
	(*CPU).rrc,
	(*CPU).rl,
	(*CPU).rr,
	(*CPU).sla,
	(*CPU).sra,
	(*CPU).swap,
	(*CPU).srl,
}

func init() {
	for code := 0; code < 256; code++ {
		opcodesCB[code] = cbOpcode(uint8(code))
	}
}

func cbOpcode(code uint8) Opcode {
	operand := code & 0x07
	index := (code >> 3) & 0x07

	cost := 2
	if operand == regHLIndirect {
		cost = 4
	}

	switch code >> 6 {
	case 0:
		// RLC, RRC, RL, RR, SLA, SRA, SWAP, SRL
		shift := cbShifts[index]
		return func(c *CPU) int {
			value := c.readOperand(operand)
			shift(c, &value)
			c.writeOperand(operand, value)
			return cost
		}
	case 1:
		// BIT n, r
		return func(c *CPU) int {
			c.bit(index, c.readOperand(operand))
			return cost
		}
	case 2:
		// RES n, r
		return func(c *CPU) int {
			c.writeOperand(operand, bit.Reset(index, c.readOperand(operand)))
			return cost
		}
	default:
		// SET n, r
		return func(c *CPU) int {
			c.writeOperand(operand, bit.Set(index, c.readOperand(operand)))
			return cost
		}
	}
}
