package video

import "github.com/valerio/go-dmg/dmg/bit"

// TileRow represents one row of a tile pattern (8 pixels).
//
// Each row uses 2 bytes in a bit-plane format: the low byte provides bit 0
// of each pixel's color index, the high byte provides bit 1. Bit 7 is the
// leftmost pixel.
//
//	Low  (0x3C): 0 0 1 1 1 1 0 0
//	High (0x7E): 0 1 1 1 1 1 1 0
//	            -----------------
//	Colors:      0 2 3 3 3 3 2 0
//
// A complete 8x8 tile occupies 16 bytes in VRAM.
type TileRow struct {
	Low  uint8
	High uint8
}

// Pixel extracts the color index of pixel x (0 is the leftmost).
func (t TileRow) Pixel(x int) ColorIndex {
	return t.pixelAtBit(uint8(7 - x))
}

// PixelFlipped extracts the color index of pixel x with horizontal flip.
func (t TileRow) PixelFlipped(x int) ColorIndex {
	return t.pixelAtBit(uint8(x))
}

func (t TileRow) pixelAtBit(index uint8) ColorIndex {
	return ColorIndex(bit.Value(index, t.Low) | bit.Value(index, t.High)<<1)
}

// MemoryReader is the read side of the address space the PPU fetches from.
type MemoryReader interface {
	Read(address uint16) uint8
}

// FetchTileRow reads row y of the tile starting at tileAddress.
func FetchTileRow(memory MemoryReader, tileAddress uint16, y int) TileRow {
	address := tileAddress + uint16(y*2)
	return TileRow{
		Low:  memory.Read(address),
		High: memory.Read(address + 1),
	}
}
