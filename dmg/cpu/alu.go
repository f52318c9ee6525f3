package cpu

import "github.com/valerio/go-dmg/dmg/bit"

func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.f.SetZero(value == 0)
	c.f.SetSub(false)
	c.f.SetHalfCarry(value&0x0F == 0)
}

func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.f.SetZero(value == 0)
	c.f.SetSub(true)
	c.f.SetHalfCarry(value&0x0F == 0x0F)
}

// add sets A = A + value (+ carry when withCarry is set).
func (c *CPU) add(value uint8, withCarry bool) {
	var carryIn uint8
	if withCarry {
		carryIn = c.f.carryBit()
	}

	result, half, carry := bit.CheckedAdd(c.a, value, carryIn)
	c.a = result

	c.f.SetZero(result == 0)
	c.f.SetSub(false)
	c.f.SetHalfCarry(half)
	c.f.SetCarry(carry)
}

// sub sets A = A - value (- carry when withCarry is set).
func (c *CPU) sub(value uint8, withCarry bool) {
	c.a = c.compare(value, withCarry)
}

// cp compares A with value, setting flags like sub without storing the result.
func (c *CPU) cp(value uint8) {
	c.compare(value, false)
}

func (c *CPU) compare(value uint8, withCarry bool) uint8 {
	var borrowIn uint8
	if withCarry {
		borrowIn = c.f.carryBit()
	}

	result, half, borrow := bit.CheckedSub(c.a, value, borrowIn)

	c.f.SetZero(result == 0)
	c.f.SetSub(true)
	c.f.SetHalfCarry(half)
	c.f.SetCarry(borrow)

	return result
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.f = halfCarryFlag
	c.f.SetZero(c.a == 0)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.f = 0
	c.f.SetZero(c.a == 0)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.f = 0
	c.f.SetZero(c.a == 0)
}

// daa adjusts A to a valid BCD value after an addition or subtraction.
func (c *CPU) daa() {
	a := c.a
	carry := c.f.Carry()

	if c.f.Sub() {
		if c.f.HalfCarry() {
			a -= 0x06
		}
		if carry {
			a -= 0x60
		}
	} else {
		if c.f.HalfCarry() || a&0x0F > 0x09 {
			a += 0x06
		}
		if carry || c.a > 0x99 {
			a += 0x60
			carry = true
		}
	}

	c.a = a
	c.f.SetZero(a == 0)
	c.f.SetHalfCarry(false)
	c.f.SetCarry(carry)
}

// cpl complements A.
func (c *CPU) cpl() {
	c.a = ^c.a
	c.f.SetSub(true)
	c.f.SetHalfCarry(true)
}

func (c *CPU) scf() {
	c.f.SetSub(false)
	c.f.SetHalfCarry(false)
	c.f.SetCarry(true)
}

func (c *CPU) ccf() {
	c.f.SetSub(false)
	c.f.SetHalfCarry(false)
	c.f.SetCarry(!c.f.Carry())
}

// addToHL adds value to HL. Z is untouched, H and C come from bits 11 and 15.
func (c *CPU) addToHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)

	c.f.SetSub(false)
	c.f.SetHalfCarry((hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.f.SetCarry(result > 0xFFFF)

	c.setHL(uint16(result))
}

// addToSP returns SP plus a signed offset. Flags come from the unsigned
// addition of the low byte, Z and N are always reset.
func (c *CPU) addToSP(offset int8) uint16 {
	_, half, carry := bit.CheckedAdd(bit.Low(c.sp), uint8(offset), 0)

	c.f = 0
	c.f.SetHalfCarry(half)
	c.f.SetCarry(carry)

	return uint16(int32(c.sp) + int32(offset))
}

// rotations and shifts, used by both the CB table and the accumulator
// variants (RLCA, RLA, RRCA, RRA), which always clear Z afterwards.

func (c *CPU) rlc(r *uint8) {
	value := *r
	carry := value >> 7
	*r = value<<1 | carry
	c.setShiftFlags(*r, carry == 1)
}

func (c *CPU) rl(r *uint8) {
	value := *r
	*r = value<<1 | c.f.carryBit()
	c.setShiftFlags(*r, value > 0x7F)
}

func (c *CPU) rrc(r *uint8) {
	value := *r
	carry := value & 1
	*r = value>>1 | carry<<7
	c.setShiftFlags(*r, carry == 1)
}

func (c *CPU) rr(r *uint8) {
	value := *r
	*r = value>>1 | c.f.carryBit()<<7
	c.setShiftFlags(*r, value&1 == 1)
}

func (c *CPU) sla(r *uint8) {
	value := *r
	*r = value << 1
	c.setShiftFlags(*r, value > 0x7F)
}

func (c *CPU) sra(r *uint8) {
	value := *r
	*r = value>>1 | value&0x80
	c.setShiftFlags(*r, value&1 == 1)
}

func (c *CPU) srl(r *uint8) {
	value := *r
	*r = value >> 1
	c.setShiftFlags(*r, value&1 == 1)
}

func (c *CPU) swap(r *uint8) {
	value := *r
	*r = value<<4 | value>>4
	c.setShiftFlags(*r, false)
}

func (c *CPU) setShiftFlags(result uint8, carry bool) {
	c.f = 0
	c.f.SetZero(result == 0)
	c.f.SetCarry(carry)
}

// bit tests bit index of value: Z is set when the bit is 0.
func (c *CPU) bit(index, value uint8) {
	c.f.SetZero(!bit.IsSet(index, value))
	c.f.SetSub(false)
	c.f.SetHalfCarry(true)
}
