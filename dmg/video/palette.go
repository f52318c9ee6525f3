package video

// ColorIndex is the 2 bit value stored in tile data, before palette mapping.
type ColorIndex uint8

// Transparent reports whether the index is see-through when used by a sprite.
func (c ColorIndex) Transparent() bool {
	return c == 0
}

// Shade is one of the four DMG grey levels, 0 is the lightest.
type Shade uint8

// shadeColors is the fixed RGB table used to display shades.
var shadeColors = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// Color returns the display color of the shade.
func (s Shade) Color() GBColor {
	return shadeColors[s&0x03]
}

// Palette maps a ColorIndex to a Shade. It is the decoded form of BGP, OBP0
// and OBP1: two bits per entry, index 0 in bits 1-0.
type Palette [4]Shade

// DecodePalette unpacks a palette register value.
func DecodePalette(value uint8) Palette {
	return Palette{
		Shade(value & 0x03),
		Shade((value >> 2) & 0x03),
		Shade((value >> 4) & 0x03),
		Shade((value >> 6) & 0x03),
	}
}

// Encode packs the palette back into its register form.
func (p Palette) Encode() uint8 {
	return uint8(p[0]&0x03) | uint8(p[1]&0x03)<<2 | uint8(p[2]&0x03)<<4 | uint8(p[3]&0x03)<<6
}

// Color returns the display color for index.
func (p Palette) Color(index ColorIndex) GBColor {
	return p[index&0x03].Color()
}
