package video

import (
	"sort"

	"github.com/valerio/go-dmg/dmg/addr"
	"github.com/valerio/go-dmg/dmg/bit"
)

const (
	spriteCount      = 40
	spritesPerLine   = 10
	spriteBytes      = 4
	spriteYOffset    = 16
	spriteXOffset    = 8
	spriteWidth      = 8
	smallSpriteLines = 8
	tallSpriteLines  = 16
)

// Sprite is one decoded OAM entry. X and Y are screen coordinates, so they
// can be negative for sprites partially off the left or top edge.
type Sprite struct {
	Y         int
	X         int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int

	// parsed attribute flags
	PaletteOBP1 bool // false = OBP0, true = OBP1
	FlipX       bool
	FlipY       bool
	BehindBG    bool // only drawn over background color index 0
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
}

// ReadSprite decodes OAM entry index (0-39).
func ReadSprite(memory MemoryReader, index int) Sprite {
	base := addr.OAMStart + uint16(index*spriteBytes)

	sprite := Sprite{
		Y:         int(memory.Read(base)) - spriteYOffset,
		X:         int(memory.Read(base+1)) - spriteXOffset,
		TileIndex: memory.Read(base + 2),
		Flags:     memory.Read(base + 3),
		OAMIndex:  index,
	}
	sprite.parseFlags()

	return sprite
}

// SpritesForLine returns up to 10 sprites covering line, in draw order:
// sorted by descending X so that sprites further left are drawn last and end
// up on top. Sprites with the same X keep their OAM order.
func SpritesForLine(memory MemoryReader, line, height int, buf []Sprite) []Sprite {
	sprites := buf[:0]

	for i := 0; i < spriteCount && len(sprites) < spritesPerLine; i++ {
		sprite := ReadSprite(memory, i)
		if sprite.Y <= line && line < sprite.Y+height {
			sprites = append(sprites, sprite)
		}
	}

	sort.SliceStable(sprites, func(i, j int) bool {
		return sprites[i].X > sprites[j].X
	})

	return sprites
}
