package backend

import "github.com/valerio/go-dmg/dmg/video"

// BytesPerPixel is the size of one pixel in the buffers FillRGBA writes.
const BytesPerPixel = 4

// NewPixelBuffer allocates a buffer large enough for one RGBA frame.
func NewPixelBuffer() []byte {
	return make([]byte, video.FramebufferWidth*video.FramebufferHeight*BytesPerPixel)
}

// FillRGBA converts the ARGB frame into R, G, B, A byte order, which is what
// both texture uploads and image.RGBA expect. dst must come from
// NewPixelBuffer.
func FillRGBA(dst []byte, frame *video.FrameBuffer) {
	for i, pixel := range frame.ToSlice() {
		p := dst[i*BytesPerPixel : i*BytesPerPixel+BytesPerPixel]
		p[0] = uint8(pixel >> 16)
		p[1] = uint8(pixel >> 8)
		p[2] = uint8(pixel)
		p[3] = uint8(pixel >> 24)
	}
}
