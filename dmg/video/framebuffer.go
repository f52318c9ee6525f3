package video

const (
	// FramebufferWidth is the visible width of the LCD in pixels.
	FramebufferWidth = 160
	// FramebufferHeight is the visible height of the LCD in pixels.
	FramebufferHeight = 144
)

// GBColor is an ARGB color value.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0xFFC0C0C0
	DarkGreyColor  GBColor = 0xFF808080
	BlackColor     GBColor = 0xFF000000
)

// FrameBuffer holds one 160x144 frame of ARGB pixels.
type FrameBuffer struct {
	buffer []uint32
}

// NewFrameBuffer creates a white frame buffer.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
	fb.Clear(WhiteColor)
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*FramebufferWidth+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*FramebufferWidth+x] = uint32(color)
}

// Clear fills the whole buffer with color.
func (fb *FrameBuffer) Clear(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice returns the pixels in row-major order. The slice aliases the buffer.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}
