package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-dmg/dmg/video"
)

// upperHalfBlock draws the top pixel in the foreground colour and the bottom
// one in the background colour, packing two rows into one terminal cell.
const upperHalfBlock = '▀'

var shadeColors = map[video.GBColor]tcell.Color{
	video.BlackColor:     tcell.ColorBlack,
	video.DarkGreyColor:  tcell.ColorGray,
	video.LightGreyColor: tcell.ColorSilver,
	video.WhiteColor:     tcell.ColorWhite,
}

// pixelColor maps a frame buffer pixel to a terminal colour. Unknown colours
// are shown as true colour.
func pixelColor(pixel uint32) tcell.Color {
	if c, ok := shadeColors[video.GBColor(pixel)]; ok {
		return c
	}
	return tcell.NewRGBColor(int32(pixel>>16&0xFF), int32(pixel>>8&0xFF), int32(pixel&0xFF))
}

// halfBlockCell returns the rune and style for the cell holding two
// vertically adjacent pixels.
func halfBlockCell(top, bottom uint32) (rune, tcell.Style) {
	style := tcell.StyleDefault.Foreground(pixelColor(top)).Background(pixelColor(bottom))
	return upperHalfBlock, style
}
