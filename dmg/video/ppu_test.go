package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-dmg/dmg/addr"
)

type flatMemory struct {
	mem [0x10000]uint8
}

func (m *flatMemory) Read(address uint16) uint8 { return m.mem[address] }

type irqRecorder struct {
	requests map[addr.Interrupt]int
}

func (r *irqRecorder) Request(i addr.Interrupt) {
	if r.requests == nil {
		r.requests = map[addr.Interrupt]int{}
	}
	r.requests[i]++
}

func newTestPPU() (*PPU, *flatMemory, *irqRecorder) {
	mem := &flatMemory{}
	irq := &irqRecorder{}
	return New(mem, irq), mem, irq
}

// fillTile writes a tile whose pixels all have the given color index.
func (m *flatMemory) fillTile(address uint16, index ColorIndex) {
	var low, high uint8
	if index&1 != 0 {
		low = 0xFF
	}
	if index&2 != 0 {
		high = 0xFF
	}
	for row := uint16(0); row < 8; row++ {
		m.mem[address+row*2] = low
		m.mem[address+row*2+1] = high
	}
}

func (m *flatMemory) putSprite(index int, x, y int, tile, flags uint8) {
	base := addr.OAMStart + uint16(index*4)
	m.mem[base] = uint8(y + 16)
	m.mem[base+1] = uint8(x + 8)
	m.mem[base+2] = tile
	m.mem[base+3] = flags
}

func TestPPU_oneFrame(t *testing.T) {
	ppu, _, irq := newTestPPU()

	seen := map[uint8]bool{}
	frames := 0
	for cycles := uint64(1); cycles <= frameClocks/clocksPerCycle; cycles++ {
		if ppu.Tick(cycles) {
			frames++
			assert.Equal(t, uint8(144), ppu.LY())
		}
		seen[ppu.LY()] = true
		require.Less(t, ppu.LY(), uint8(totalLines))
	}

	assert.Equal(t, 1, frames)
	assert.Equal(t, 1, irq.requests[addr.VBlankInterrupt])
	assert.Equal(t, uint8(0), ppu.LY())
	assert.Len(t, seen, totalLines)
}

func TestPPU_modes(t *testing.T) {
	testCases := []struct {
		desc   string
		cycles uint64
		mode   Mode
		line   uint8
	}{
		{desc: "oam scan at line start", cycles: 10, mode: OAMScanMode},
		{desc: "transfer after 204 clocks", cycles: 51, mode: TransferMode},
		{desc: "hblank after 284 clocks", cycles: 71, mode: HBlankMode},
		{desc: "hblank at line end", cycles: 113, mode: HBlankMode},
		{desc: "next line starts with oam scan", cycles: 114, mode: OAMScanMode, line: 1},
		{desc: "vblank from line 144", cycles: 144 * 114, mode: VBlankMode, line: 144},
		{desc: "vblank on last line", cycles: 153*114 + 100, mode: VBlankMode, line: 153},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			ppu, _, _ := newTestPPU()

			ppu.Tick(tC.cycles)

			assert.Equal(t, tC.mode, ppu.Mode())
			assert.Equal(t, tC.line, ppu.LY())
			assert.Equal(t, uint8(tC.mode), ppu.Read(addr.STAT)&0x03)
		})
	}
}

func TestPPU_coincidenceInterrupt(t *testing.T) {
	ppu, _, irq := newTestPPU()
	ppu.Write(addr.LYC, 5)
	ppu.Write(addr.STAT, 0x40)

	ppu.Tick(4*114 + 10)
	assert.Zero(t, irq.requests[addr.LCDSTATInterrupt])
	assert.Zero(t, ppu.Read(addr.STAT)&0x04)

	ppu.Tick(5*114 + 10)
	assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt])
	assert.NotZero(t, ppu.Read(addr.STAT)&0x04)

	ppu.Tick(5*114 + 100)
	assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt], "only on line change")
}

func TestPPU_coincidenceWithoutInterrupt(t *testing.T) {
	ppu, _, irq := newTestPPU()
	ppu.Write(addr.LYC, 2)

	ppu.Tick(2*114 + 1)

	assert.NotZero(t, ppu.Read(addr.STAT)&0x04)
	assert.Zero(t, irq.requests[addr.LCDSTATInterrupt])
}

func TestPPU_modeInterrupt(t *testing.T) {
	ppu, _, irq := newTestPPU()
	ppu.Write(addr.STAT, 0x08) // hblank source

	ppu.Tick(50)
	assert.Zero(t, irq.requests[addr.LCDSTATInterrupt])

	ppu.Tick(80)
	assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt])
}

func TestPPU_registers(t *testing.T) {
	ppu, _, _ := newTestPPU()

	assert.Equal(t, uint8(0x91), ppu.Read(addr.LCDC))
	assert.Equal(t, uint8(0xFC), ppu.Read(addr.BGP))
	assert.Equal(t, uint8(0xFF), ppu.Read(addr.OBP0))
	assert.Equal(t, uint8(0xFF), ppu.Read(addr.OBP1))

	ppu.Write(addr.LY, 0x42)
	assert.Equal(t, uint8(0), ppu.Read(addr.LY), "LY is read-only")

	ppu.Write(addr.STAT, 0xFF)
	assert.Equal(t, uint8(0xF8)|uint8(ppu.Mode())|0x04, ppu.Read(addr.STAT), "mode and coincidence bits are read-only")

	for _, r := range []uint16{addr.SCY, addr.SCX, addr.LYC, addr.WY, addr.WX, addr.BGP, addr.OBP0, addr.OBP1, addr.LCDC} {
		ppu.Write(r, 0x5A)
		assert.Equal(t, uint8(0x5A), ppu.Read(r), "register 0x%04X", r)
	}
}

func TestPPU_backgroundTileAddressing(t *testing.T) {
	testCases := []struct {
		desc     string
		lcdc     uint8
		tile     uint8
		dataAddr uint16
	}{
		{desc: "unsigned tile 1", lcdc: 0x91, tile: 0x01, dataAddr: 0x8010},
		{desc: "unsigned tile 0x80", lcdc: 0x91, tile: 0x80, dataAddr: 0x8800},
		{desc: "signed tile 0", lcdc: 0x81, tile: 0x00, dataAddr: 0x9000},
		{desc: "signed tile -1", lcdc: 0x81, tile: 0xFF, dataAddr: 0x8FF0},
		{desc: "signed tile -128", lcdc: 0x81, tile: 0x80, dataAddr: 0x8800},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			ppu, mem, _ := newTestPPU()
			ppu.Write(addr.LCDC, tC.lcdc)
			mem.mem[addr.TileMap0] = tC.tile
			mem.fillTile(tC.dataAddr, 3)

			ppu.renderScanline(0)

			fb := ppu.FrameBuffer()
			assert.Equal(t, uint32(BlackColor), fb.GetPixel(0, 0))
			assert.Equal(t, uint32(BlackColor), fb.GetPixel(7, 0))
			assert.Equal(t, ColorIndex(3), ppu.bgLine[7])
		})
	}
}

func TestPPU_backgroundScroll(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	mem.mem[addr.TileMap0+1] = 1
	mem.mem[addr.TileMap0+32] = 2
	mem.fillTile(0x8010, 3)
	mem.fillTile(0x8020, 1)

	ppu.Write(addr.SCX, 8)
	ppu.renderScanline(0)
	assert.Equal(t, uint32(BlackColor), ppu.FrameBuffer().GetPixel(0, 0))
	assert.Equal(t, uint32(WhiteColor), ppu.FrameBuffer().GetPixel(8, 0))

	ppu.Write(addr.SCX, 0)
	ppu.Write(addr.SCY, 8)
	ppu.renderScanline(0)
	assert.Equal(t, ColorIndex(1), ppu.bgLine[0])
}

func TestPPU_window(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	ppu.Write(addr.LCDC, 0xF1) // window on, window map at 0x9C00
	ppu.Write(addr.WY, 0)
	ppu.Write(addr.WX, 7+80)
	mem.mem[addr.TileMap1] = 2
	mem.fillTile(0x8020, 3)

	ppu.renderScanline(0)

	fb := ppu.FrameBuffer()
	assert.Equal(t, uint32(WhiteColor), fb.GetPixel(79, 0))
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(80, 0))

	ppu.Write(addr.WY, 10)
	ppu.renderScanline(0)
	assert.Equal(t, uint32(WhiteColor), fb.GetPixel(80, 0), "above the window")
}

func TestPPU_spriteOrdering(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	ppu.Write(addr.LCDC, 0x93)
	ppu.Write(addr.OBP0, 0xE4)
	mem.fillTile(0x8010, 1)
	mem.fillTile(0x8020, 3)
	mem.putSprite(0, 14, 0, 2, 0)
	mem.putSprite(1, 10, 0, 1, 0)

	ppu.renderScanline(0)

	fb := ppu.FrameBuffer()
	assert.Equal(t, uint32(LightGreyColor), fb.GetPixel(12, 0))
	assert.Equal(t, uint32(LightGreyColor), fb.GetPixel(15, 0), "lower X wins the overlap")
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(19, 0))
	assert.Equal(t, uint32(WhiteColor), fb.GetPixel(22, 0))
}

func TestSpritesForLine(t *testing.T) {
	mem := &flatMemory{}
	mem.putSprite(0, 10, 0, 0, 0)
	mem.putSprite(1, 20, 0, 0, 0)
	mem.putSprite(2, 20, 4, 0, 0)
	mem.putSprite(3, 30, 50, 0, 0)

	var buf [spritesPerLine]Sprite
	sprites := SpritesForLine(mem, 5, 8, buf[:])

	require.Len(t, sprites, 3)
	assert.Equal(t, 20, sprites[0].X)
	assert.Equal(t, 1, sprites[0].OAMIndex)
	assert.Equal(t, 20, sprites[1].X)
	assert.Equal(t, 2, sprites[1].OAMIndex, "same X keeps OAM order")
	assert.Equal(t, 10, sprites[2].X)
}

func TestSpritesForLine_limit(t *testing.T) {
	mem := &flatMemory{}
	for i := 0; i < spriteCount; i++ {
		mem.putSprite(i, i, 0, 0, 0)
	}

	var buf [spritesPerLine]Sprite
	sprites := SpritesForLine(mem, 0, 8, buf[:])

	require.Len(t, sprites, spritesPerLine)
	assert.Equal(t, 9, sprites[0].X)
	assert.Equal(t, 0, sprites[9].X)
}

func TestSpritesForLine_tall(t *testing.T) {
	mem := &flatMemory{}
	mem.putSprite(0, 0, 0, 0, 0)

	var buf [spritesPerLine]Sprite
	assert.Empty(t, SpritesForLine(mem, 12, 8, buf[:]))
	assert.Len(t, SpritesForLine(mem, 12, 16, buf[:]), 1)
}

func TestPPU_spriteFlags(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	ppu.Write(addr.LCDC, 0x93)
	ppu.Write(addr.OBP0, 0xE4)
	ppu.Write(addr.OBP1, 0x1B) // inverted

	// tile 1: only the leftmost pixel of row 0 is set, color 3
	mem.mem[0x8010] = 0x80
	mem.mem[0x8011] = 0x80

	mem.putSprite(0, 0, 0, 1, 0x00)
	mem.putSprite(1, 20, 0, 1, 0x20)  // flip X
	mem.putSprite(2, 40, -7, 1, 0x40) // flip Y, row 7 becomes row 0 on line 0
	mem.putSprite(3, 60, 0, 1, 0x10)  // OBP1

	ppu.renderScanline(0)

	fb := ppu.FrameBuffer()
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(0, 0))
	assert.Equal(t, uint32(WhiteColor), fb.GetPixel(20, 0))
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(27, 0))
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(40, 0))
	assert.Equal(t, uint32(WhiteColor), fb.GetPixel(60, 0), "OBP1 maps index 3 to shade 0")
}

func TestPPU_spriteBehindBackground(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	ppu.Write(addr.LCDC, 0x93)
	ppu.Write(addr.OBP0, 0xE4)
	mem.mem[addr.TileMap0] = 1
	mem.fillTile(0x8010, 1)
	mem.putSprite(0, 4, 0, 1, 0x80)

	ppu.renderScanline(0)

	fb := ppu.FrameBuffer()
	assert.Equal(t, uint32(BlackColor), fb.GetPixel(5, 0), "background color 1-3 wins")
	assert.Equal(t, uint32(LightGreyColor), fb.GetPixel(9, 0), "sprite shows over color 0")
}

func TestPPU_spritesDisabled(t *testing.T) {
	ppu, mem, _ := newTestPPU()
	mem.fillTile(0x8010, 3)
	mem.putSprite(0, 0, 0, 1, 0)

	ppu.renderScanline(0)

	assert.Equal(t, uint32(WhiteColor), ppu.FrameBuffer().GetPixel(0, 0))
}

func TestPPU_lcdDisabled(t *testing.T) {
	ppu, mem, irq := newTestPPU()
	mem.mem[addr.TileMap0] = 1
	mem.fillTile(0x8010, 3)

	ppu.Tick(2 * 114)
	require.Equal(t, uint8(2), ppu.LY())

	ppu.Write(addr.LCDC, 0x11)
	assert.Equal(t, uint8(0), ppu.LY())

	frames := 0
	for cycles := uint64(2 * 114); cycles <= 2*17556; cycles++ {
		if ppu.Tick(cycles) {
			frames++
		}
	}

	assert.Equal(t, 2, frames)
	assert.Zero(t, irq.requests[addr.VBlankInterrupt])
	assert.Equal(t, uint8(0), ppu.LY())
	assert.Equal(t, uint32(WhiteColor), ppu.FrameBuffer().GetPixel(0, 0))
}

func TestPPU_lcdReenabled(t *testing.T) {
	ppu, _, irq := newTestPPU()

	ppu.Write(addr.LCDC, 0x11)
	ppu.Tick(150 * 114)
	ppu.Write(addr.LCDC, 0x91)

	assert.False(t, ppu.Tick(150*114+1), "no frame completes when the LCD comes back")
	assert.Zero(t, irq.requests[addr.VBlankInterrupt])
	assert.Equal(t, uint8(150), ppu.LY())

	ppu.Tick(151 * 114)
	assert.Equal(t, uint8(151), ppu.LY())
	assert.Zero(t, irq.requests[addr.VBlankInterrupt])
}

func TestPPU_powerOnCoincidence(t *testing.T) {
	ppu, _, _ := newTestPPU()

	assert.Equal(t, uint8(0x04), ppu.Read(addr.STAT)&0x04, "LY=0 matches LYC=0")

	ppu.Write(addr.LYC, 1)
	assert.Zero(t, ppu.Read(addr.STAT)&0x04)
}

func TestPalette(t *testing.T) {
	p := DecodePalette(0xE4)

	assert.Equal(t, Palette{0, 1, 2, 3}, p)
	assert.Equal(t, uint8(0xE4), p.Encode())
	assert.Equal(t, WhiteColor, p.Color(0))
	assert.Equal(t, BlackColor, p.Color(3))
	assert.True(t, ColorIndex(0).Transparent())
	assert.False(t, ColorIndex(1).Transparent())
}

func TestTileRow(t *testing.T) {
	row := TileRow{Low: 0x3C, High: 0x7E}

	want := []ColorIndex{0, 2, 3, 3, 3, 3, 2, 0}
	for x, w := range want {
		assert.Equal(t, w, row.Pixel(x), "pixel %d", x)
		assert.Equal(t, w, row.PixelFlipped(7-x), "flipped pixel %d", 7-x)
	}
}
