package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// CheckedAdd adds two 8 bit unsigned values plus an optional carry-in and
// reports carries out of bit 3 and bit 7 of the operands.
func CheckedAdd(a, b, carryIn uint8) (result uint8, halfCarry, carry bool) {
	sum := uint16(a) + uint16(b) + uint16(carryIn)
	halfCarry = (a&0x0F)+(b&0x0F)+carryIn > 0x0F
	carry = sum > 0xFF
	result = uint8(sum)
	return
}

// CheckedSub subtracts b and an optional borrow-in from a and reports borrows
// into bit 4 and beyond bit 7.
func CheckedSub(a, b, borrowIn uint8) (result uint8, halfBorrow, borrow bool) {
	halfBorrow = int(a&0x0F)-int(b&0x0F)-int(borrowIn) < 0
	borrow = int(a)-int(b)-int(borrowIn) < 0
	result = a - b - borrowIn
	return
}

// IsSet will check if the bit at the specified index is Set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Set will return the passed byte with the bit at the specified index Set to 1.
func Set(index, byte uint8) uint8 {
	return byte | (1 << index)
}

// Reset will return the passed byte with the bit at the specified index Set to 0.
func Reset(index, byte uint8) uint8 {
	return byte & ((1 << index) ^ 0xFF)
}

// SetTo sets or resets the bit at index depending on value.
func SetTo(index, byte uint8, value bool) uint8 {
	if value {
		return Set(index, byte)
	}
	return Reset(index, byte)
}

// Value returns a byte set to the value of the bit at the specified index.
func Value(index, byte uint8) uint8 {
	return (byte >> index) & 1
}

// FromBool returns 1 for true and 0 for false.
func FromBool(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// ExtractBits extracts bits from highBit to lowBit (inclusive)
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	shift := lowBit
	width := highBit - lowBit + 1
	mask := uint8((1 << width) - 1)
	return (value >> shift) & mask
}
