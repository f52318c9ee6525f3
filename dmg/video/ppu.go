// Package video implements the scanline PPU: LCD timing derived from the
// CPU cycle counter, background/window/sprite rendering and the LCD registers.
package video

import (
	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

// Mode is the PPU mode reported in STAT bits 1-0.
type Mode uint8

const (
	HBlankMode Mode = iota
	VBlankMode
	OAMScanMode
	TransferMode
)

func (m Mode) String() string {
	switch m {
	case HBlankMode:
		return "hblank"
	case VBlankMode:
		return "vblank"
	case OAMScanMode:
		return "oam"
	default:
		return "transfer"
	}
}

const (
	clocksPerCycle = 4
	lineClocks     = 456
	totalLines     = 154
	visibleLines   = 144
	frameClocks    = lineClocks * totalLines // 70224

	// mode boundaries within a line, in clocks
	oamScanEnd  = 204
	transferEnd = 284

	tileBytes   = 16
	tileMapSize = 32
)

// InterruptRequester raises interrupts on behalf of the PPU.
type InterruptRequester interface {
	Request(i addr.Interrupt)
}

// PPU holds the LCD state. Its timing is a pure function of the cycle count
// passed to Tick, so it cannot drift from the CPU.
type PPU struct {
	memory      MemoryReader
	irq         InterruptRequester
	framebuffer *FrameBuffer

	// LCDC
	lcdEnable         bool
	windowTileMapHigh bool
	windowEnable      bool
	unsignedTileData  bool
	bgTileMapHigh     bool
	tallSprites       bool
	spriteEnable      bool
	bgEnable          bool

	// STAT
	lycInterrupt    bool
	oamInterrupt    bool
	vblankInterrupt bool
	hblankInterrupt bool
	coincidence     bool
	mode            Mode

	scy, scx uint8
	ly, lyc  uint8
	wy, wx   uint8

	bgp, obp0, obp1 Palette

	lines     uint64 // absolute line count at the last tick
	resync    bool   // LCD was switched on, pick up the clock without replaying
	bgLine    [FramebufferWidth]ColorIndex
	spriteBuf [spritesPerLine]Sprite
}

// New returns a PPU with the power-on register values (LCDC=0x91, BGP=0xFC,
// OBP0=OBP1=0xFF).
func New(memory MemoryReader, irq InterruptRequester) *PPU {
	p := &PPU{
		memory:      memory,
		irq:         irq,
		framebuffer: NewFrameBuffer(),
		mode:        OAMScanMode,
	}
	p.Write(addr.LCDC, 0x91)
	p.Write(addr.BGP, 0xFC)
	p.Write(addr.OBP0, 0xFF)
	p.Write(addr.OBP1, 0xFF)
	p.resync = false
	p.updateCoincidence()
	return p
}

// Tick brings the PPU up to date with the CPU cycle counter. It returns true
// when the frame just completed, i.e. line 144 (VBlank) was entered.
func (p *PPU) Tick(cycles uint64) bool {
	clock := cycles * clocksPerCycle
	lines := clock / lineClocks
	line := uint8(lines % totalLines)
	dot := clock % lineClocks

	if !p.lcdEnable {
		frameDone := lines/totalLines != p.lines/totalLines
		p.lines = lines
		if frameDone {
			p.framebuffer.Clear(WhiteColor)
		}
		return frameDone
	}

	if p.resync {
		p.resync = false
		p.lines = lines
		p.ly = line
		p.updateCoincidence()
		p.setMode(modeAt(line, dot))
		return false
	}

	steps := (int(line) - int(p.ly) + totalLines) % totalLines
	if lines-p.lines >= totalLines {
		// a whole frame went by, replay it once
		p.ly = line
		steps = totalLines
	}
	p.lines = lines

	frameDone := false
	for ; steps > 0; steps-- {
		next := p.ly + 1
		if next == totalLines {
			next = 0
		}
		if p.enterLine(next) {
			frameDone = true
		}
	}

	p.setMode(modeAt(line, dot))

	return frameDone
}

// modeAt returns the mode for a position within the frame.
func modeAt(line uint8, dot uint64) Mode {
	switch {
	case line >= visibleLines:
		return VBlankMode
	case dot < oamScanEnd:
		return OAMScanMode
	case dot < transferEnd:
		return TransferMode
	default:
		return HBlankMode
	}
}

// enterLine moves LY to line, reporting whether VBlank started.
func (p *PPU) enterLine(line uint8) bool {
	p.ly = line
	p.updateCoincidence()
	if p.coincidence && p.lycInterrupt {
		p.irq.Request(addr.LCDSTATInterrupt)
	}

	if line < visibleLines {
		p.renderScanline(line)
		return false
	}

	if line == visibleLines {
		p.irq.Request(addr.VBlankInterrupt)
		return true
	}

	return false
}

func (p *PPU) updateCoincidence() {
	p.coincidence = p.ly == p.lyc
}

func (p *PPU) setMode(mode Mode) {
	if mode == p.mode {
		return
	}
	p.mode = mode

	var enabled bool
	switch mode {
	case HBlankMode:
		enabled = p.hblankInterrupt
	case VBlankMode:
		enabled = p.vblankInterrupt
	case OAMScanMode:
		enabled = p.oamInterrupt
	}
	if enabled {
		p.irq.Request(addr.LCDSTATInterrupt)
	}
}

func (p *PPU) renderScanline(line uint8) {
	windowX := int(p.wx) - 7
	useWindow := p.windowEnable && line >= p.wy

	for x := 0; x < FramebufferWidth; x++ {
		var index ColorIndex

		if p.bgEnable {
			if useWindow && x >= windowX {
				index = p.tilePixel(p.windowTileMap(), x-windowX, int(line-p.wy))
			} else {
				index = p.tilePixel(p.bgTileMap(), (x+int(p.scx))&0xFF, (int(line)+int(p.scy))&0xFF)
			}
		}

		p.bgLine[x] = index
		p.framebuffer.SetPixel(uint(x), uint(line), p.bgp.Color(index))
	}

	if p.spriteEnable {
		p.renderSprites(line)
	}
}

// tilePixel returns the color index at (x, y) of the 256x256 map at mapBase.
func (p *PPU) tilePixel(mapBase uint16, x, y int) ColorIndex {
	mapAddress := mapBase + uint16((y/8)*tileMapSize+x/8)
	tileNumber := p.memory.Read(mapAddress)
	row := FetchTileRow(p.memory, p.tileAddress(tileNumber), y%8)
	return row.Pixel(x % 8)
}

// tileAddress resolves a background/window tile number to its data address.
// With LCDC bit 4 clear tile numbers are signed and relative to 0x9000.
func (p *PPU) tileAddress(tileNumber uint8) uint16 {
	if p.unsignedTileData {
		return addr.TileData0 + uint16(tileNumber)*tileBytes
	}
	return uint16(int(addr.TileData2) + int(int8(tileNumber))*tileBytes)
}

func (p *PPU) bgTileMap() uint16 {
	if p.bgTileMapHigh {
		return addr.TileMap1
	}
	return addr.TileMap0
}

func (p *PPU) windowTileMap() uint16 {
	if p.windowTileMapHigh {
		return addr.TileMap1
	}
	return addr.TileMap0
}

func (p *PPU) spriteHeight() int {
	if p.tallSprites {
		return tallSpriteLines
	}
	return smallSpriteLines
}

func (p *PPU) renderSprites(line uint8) {
	height := p.spriteHeight()
	sprites := SpritesForLine(p.memory, int(line), height, p.spriteBuf[:])

	for _, sprite := range sprites {
		row := int(line) - sprite.Y
		if sprite.FlipY {
			row = height - 1 - row
		}

		tile := sprite.TileIndex
		if height == tallSpriteLines {
			tile &^= 1
		}
		data := FetchTileRow(p.memory, addr.TileData0+uint16(tile)*tileBytes, row)

		palette := p.obp0
		if sprite.PaletteOBP1 {
			palette = p.obp1
		}

		for px := 0; px < spriteWidth; px++ {
			x := sprite.X + px
			if x < 0 || x >= FramebufferWidth {
				continue
			}

			index := data.Pixel(px)
			if sprite.FlipX {
				index = data.PixelFlipped(px)
			}
			if index.Transparent() {
				continue
			}
			if sprite.BehindBG && p.bgLine[x] != 0 {
				continue
			}

			p.framebuffer.SetPixel(uint(x), uint(line), palette.Color(index))
		}
	}
}

// Read returns the value of an LCD register.
func (p *PPU) Read(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return p.readLCDC()
	case addr.STAT:
		return p.readSTAT()
	case addr.SCY:
		return p.scy
	case addr.SCX:
		return p.scx
	case addr.LY:
		return p.ly
	case addr.LYC:
		return p.lyc
	case addr.BGP:
		return p.bgp.Encode()
	case addr.OBP0:
		return p.obp0.Encode()
	case addr.OBP1:
		return p.obp1.Encode()
	case addr.WY:
		return p.wy
	case addr.WX:
		return p.wx
	}
	return 0xFF
}

// Write sets an LCD register. LY is read-only, STAT only takes the
// interrupt enable bits.
func (p *PPU) Write(address uint16, value uint8) {
	switch address {
	case addr.LCDC:
		p.writeLCDC(value)
	case addr.STAT:
		p.lycInterrupt = bit.IsSet(6, value)
		p.oamInterrupt = bit.IsSet(5, value)
		p.vblankInterrupt = bit.IsSet(4, value)
		p.hblankInterrupt = bit.IsSet(3, value)
	case addr.SCY:
		p.scy = value
	case addr.SCX:
		p.scx = value
	case addr.LYC:
		p.lyc = value
		p.updateCoincidence()
	case addr.BGP:
		p.bgp = DecodePalette(value)
	case addr.OBP0:
		p.obp0 = DecodePalette(value)
	case addr.OBP1:
		p.obp1 = DecodePalette(value)
	case addr.WY:
		p.wy = value
	case addr.WX:
		p.wx = value
	}
}

func (p *PPU) readLCDC() uint8 {
	var v uint8
	v = bit.SetTo(7, v, p.lcdEnable)
	v = bit.SetTo(6, v, p.windowTileMapHigh)
	v = bit.SetTo(5, v, p.windowEnable)
	v = bit.SetTo(4, v, p.unsignedTileData)
	v = bit.SetTo(3, v, p.bgTileMapHigh)
	v = bit.SetTo(2, v, p.tallSprites)
	v = bit.SetTo(1, v, p.spriteEnable)
	v = bit.SetTo(0, v, p.bgEnable)
	return v
}

func (p *PPU) writeLCDC(value uint8) {
	wasEnabled := p.lcdEnable

	p.lcdEnable = bit.IsSet(7, value)
	p.windowTileMapHigh = bit.IsSet(6, value)
	p.windowEnable = bit.IsSet(5, value)
	p.unsignedTileData = bit.IsSet(4, value)
	p.bgTileMapHigh = bit.IsSet(3, value)
	p.tallSprites = bit.IsSet(2, value)
	p.spriteEnable = bit.IsSet(1, value)
	p.bgEnable = bit.IsSet(0, value)

	if wasEnabled && !p.lcdEnable {
		p.ly = 0
		p.mode = HBlankMode
		p.updateCoincidence()
	}
	if !wasEnabled && p.lcdEnable {
		p.resync = true
	}
}

func (p *PPU) readSTAT() uint8 {
	v := uint8(0x80) | uint8(p.mode)
	v = bit.SetTo(6, v, p.lycInterrupt)
	v = bit.SetTo(5, v, p.oamInterrupt)
	v = bit.SetTo(4, v, p.vblankInterrupt)
	v = bit.SetTo(3, v, p.hblankInterrupt)
	v = bit.SetTo(2, v, p.coincidence)
	return v
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 { return p.ly }

// Mode returns the current PPU mode.
func (p *PPU) Mode() Mode { return p.mode }

// FrameBuffer returns the buffer the PPU renders into.
func (p *PPU) FrameBuffer() *FrameBuffer { return p.framebuffer }
