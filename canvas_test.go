package fbspan

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCanvas(t *testing.T) {
	c, err := NewCanvas(1920, 720)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 1920, 720), c.Bounds())
	assert.Equal(t, 1920*4, c.Stride())
	assert.Equal(t, 1920*720*4, c.Size())
	assert.Len(t, c.Front(), c.Size())
	assert.Len(t, c.Back(), c.Size())
}

func TestNewCanvasBadSize(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 720},
		{"zero height", 1920, 0},
		{"negative", -1, 720},
		{"overflow", 1 << 30, 1 << 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCanvas(tt.w, tt.h)
			var serr CanvasSizeError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.w, serr.W)
			assert.Equal(t, tt.h, serr.H)
		})
	}
}

func TestCanvasBuffersIndependent(t *testing.T) {
	c, err := NewCanvas(4, 4)
	require.NoError(t, err)

	c.Front()[0] = 0xAB
	assert.EqualValues(t, 0, c.Back()[0])
}

func TestCanvasImage(t *testing.T) {
	c, err := NewCanvas(8, 8)
	require.NoError(t, err)

	img := c.BackImage()
	img.Set(3, 5, color.RGBA{R: 0xFF, A: 0xFF})

	r, g, b, a := img.At(3, 5).RGBA()
	assert.EqualValues(t, 0xFFFF, r)
	assert.EqualValues(t, 0, g)
	assert.EqualValues(t, 0, b)
	assert.EqualValues(t, 0xFFFF, a)

	// The image is a view, not a copy.
	off := 5*c.Stride() + 3*4
	assert.NotEqual(t, []byte{0, 0, 0, 0}, c.Back()[off:off+4])
	assert.Equal(t, make([]byte, len(c.Front())), c.Front())
}
