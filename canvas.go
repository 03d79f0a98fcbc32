package fbspan

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"deedles.dev/ximage/format"
)

// bytesPerPixel is the size of one ARGB8888 pixel. The canvas and both
// surfaces share this format; conversion is out of scope.
const bytesPerPixel = 4

// A Canvas is the pair of full-frame pixel buffers that a rendering
// library draws into. Each buffer spans the combined width of both
// surfaces, so its stride is always the full virtual width regardless
// of where a given region will end up. Which buffer is being drawn
// into at any moment is decided by the rendering library's
// double-buffer contract, not by the canvas.
type Canvas struct {
	w, h  int
	front []byte
	back  []byte
}

// NewCanvas allocates a double-buffered canvas of w by h pixels.
func NewCanvas(w, h int) (*Canvas, error) {
	if (w <= 0) || (h <= 0) || (w > math.MaxInt32/bytesPerPixel/h) {
		return nil, CanvasSizeError{W: w, H: h}
	}

	size := w * h * bytesPerPixel
	return &Canvas{
		w:     w,
		h:     h,
		front: make([]byte, size),
		back:  make([]byte, size),
	}, nil
}

func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.w, c.h)
}

// Stride is the length of one row in bytes.
func (c *Canvas) Stride() int {
	return c.w * bytesPerPixel
}

// Size is the length of each buffer in bytes.
func (c *Canvas) Size() int {
	return c.w * c.h * bytesPerPixel
}

func (c *Canvas) Front() []byte {
	return c.front
}

func (c *Canvas) Back() []byte {
	return c.back
}

func (c *Canvas) image(pix []byte) draw.Image {
	return &format.Image{
		Format: format.ARGB8888,
		Rect:   c.Bounds(),
		Pix:    pix,
	}
}

// FrontImage returns a draw.Image view of the front buffer. The
// returned image shares the buffer's storage.
func (c *Canvas) FrontImage() draw.Image {
	return c.image(c.front)
}

// BackImage returns a draw.Image view of the back buffer. The returned
// image shares the buffer's storage.
func (c *Canvas) BackImage() draw.Image {
	return c.image(c.back)
}

// CanvasSizeError is returned by NewCanvas if the requested dimensions
// are not representable.
type CanvasSizeError struct {
	W, H int
}

func (err CanvasSizeError) Error() string {
	return fmt.Sprintf("bad canvas size: %vx%v", err.W, err.H)
}
