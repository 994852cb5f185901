package renderer

import (
	"image"

	"github.com/df07/go-adaptive-pathtracer/pkg/core"
)

// FrameBuffer is the displayable 8-bit image of the accumulated pixels
type FrameBuffer struct {
	img *image.RGBA
}

// NewFrameBuffer creates a black, opaque frame buffer
func NewFrameBuffer(width, height int) *FrameBuffer {
	fb := &FrameBuffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
	fb.Clear()
	return fb
}

// Width returns the width in pixels
func (fb *FrameBuffer) Width() int { return fb.img.Rect.Dx() }

// Height returns the height in pixels
func (fb *FrameBuffer) Height() int { return fb.img.Rect.Dy() }

// toByte maps a linear channel to 8 bits after gamma 2
func toByte(value float64) uint8 {
	return uint8(255.99 * min(1.0, max(0.0, value)))
}

// Set writes the averaged linear color of a pixel, gamma corrected
func (fb *FrameBuffer) Set(x, y int, color core.Vec3) {
	corrected := color.Sqrt()
	offset := fb.img.PixOffset(x, y)
	fb.img.Pix[offset] = toByte(corrected.X)
	fb.img.Pix[offset+1] = toByte(corrected.Y)
	fb.img.Pix[offset+2] = toByte(corrected.Z)
	fb.img.Pix[offset+3] = 255
}

// SetPixel refreshes a pixel from its accumulator
func (fb *FrameBuffer) SetPixel(pixel *PixelWorkItem) {
	fb.Set(pixel.X, pixel.Y, pixel.GetColor())
}

// Clear resets every pixel to opaque black
func (fb *FrameBuffer) Clear() {
	pix := fb.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = 0
		pix[i+1] = 0
		pix[i+2] = 0
		pix[i+3] = 255
	}
}

// Image returns the underlying image. It is rewritten by every frame.
func (fb *FrameBuffer) Image() *image.RGBA {
	return fb.img
}

// Snapshot returns a copy of the current image
func (fb *FrameBuffer) Snapshot() *image.RGBA {
	snapshot := image.NewRGBA(fb.img.Rect)
	copy(snapshot.Pix, fb.img.Pix)
	return snapshot
}

// Packed returns the image as row-major 0xAARRGGBB words
func (fb *FrameBuffer) Packed() []uint32 {
	packed := make([]uint32, fb.Width()*fb.Height())
	pix := fb.img.Pix
	for i := range packed {
		offset := i * 4
		packed[i] = uint32(pix[offset+3])<<24 |
			uint32(pix[offset])<<16 |
			uint32(pix[offset+1])<<8 |
			uint32(pix[offset+2])
	}
	return packed
}
