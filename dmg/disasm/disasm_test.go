package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type memory []uint8

func (m memory) Read(address uint16) uint8 {
	if int(address) >= len(m) {
		return 0
	}
	return m[address]
}

func TestAt(t *testing.T) {
	testCases := []struct {
		desc   string
		code   memory
		want   string
		length int
	}{
		{desc: "nop", code: memory{0x00}, want: "NOP", length: 1},
		{desc: "8 bit immediate", code: memory{0x3E, 0x05}, want: "LD A, $05", length: 2},
		{desc: "16 bit immediate", code: memory{0xC3, 0x50, 0x01}, want: "JP $0150", length: 3},
		{desc: "register load", code: memory{0x78}, want: "LD A, B", length: 1},
		{desc: "indirect load", code: memory{0x70}, want: "LD (HL), B", length: 1},
		{desc: "alu", code: memory{0xAF}, want: "XOR A", length: 1},
		{desc: "inc", code: memory{0x3C}, want: "INC A", length: 1},
		{desc: "rst", code: memory{0xFF}, want: "RST $38", length: 1},
		{desc: "high page", code: memory{0xE0, 0x44}, want: "LDH ($FF44), A", length: 2},
		{desc: "stop", code: memory{0x10, 0x00}, want: "STOP", length: 2},
		{desc: "cb", code: memory{0xCB, 0x7C}, want: "BIT 7, H", length: 2},
		{desc: "cb swap", code: memory{0xCB, 0x37}, want: "SWAP A", length: 2},
		{desc: "undefined", code: memory{0xD3}, want: "DB $D3", length: 1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			line := At(tC.code, 0)
			assert.Equal(t, tC.want, line.Instruction)
			assert.Equal(t, tC.length, line.Length)
		})
	}
}

func TestRange(t *testing.T) {
	code := memory{0x3E, 0x05, 0x3C, 0xC3, 0x00, 0x01}

	lines := Range(code, 0, 3)

	assert.Len(t, lines, 3)
	assert.Equal(t, uint16(0), lines[0].Address)
	assert.Equal(t, uint16(2), lines[1].Address)
	assert.Equal(t, uint16(3), lines[2].Address)
	assert.Equal(t, "0x0003: JP $0100", lines[2].String())
}

func TestEveryOpcodeHasAName(t *testing.T) {
	for i := 0; i < 256; i++ {
		assert.NotEmpty(t, Name(uint8(i)))
		assert.NotEmpty(t, CBName(uint8(i)))
	}
}
