package blit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pattern(i int) byte {
	return byte(i*7 + 3)
}

func TestDescriptorRun(t *testing.T) {
	const (
		width     = 5
		height    = 4
		bpp       = 4
		srcStride = 40
		dstStride = 24
	)

	src := make([]byte, srcStride*height)
	for i := range src {
		src[i] = pattern(i)
	}
	dst := make([]byte, dstStride*height)

	d := Descriptor{
		Src:       src,
		Dst:       dst,
		Width:     width,
		Height:    height,
		SrcStride: srcStride,
		DstStride: dstStride,
		BPP:       bpp,
	}
	d.Run()

	line := width * bpp
	for row := 0; row < height; row++ {
		assert.Equal(t, src[row*srcStride:row*srcStride+line], dst[row*dstStride:row*dstStride+line], "row %v", row)

		// Bytes between the end of a row and the next row's start
		// belong to other regions and must not be written.
		for i := row*dstStride + line; i < (row+1)*dstStride; i++ {
			assert.EqualValues(t, 0, dst[i], "padding byte %v", i)
		}
	}
}

func TestDescriptorRunEqualStrides(t *testing.T) {
	const size = 6 * 4 * 3

	src := make([]byte, size)
	for i := range src {
		src[i] = pattern(i)
	}
	dst := make([]byte, size)

	d := Descriptor{
		Src:       src,
		Dst:       dst,
		Width:     6,
		Height:    3,
		SrcStride: 24,
		DstStride: 24,
		BPP:       4,
	}
	d.Run()

	assert.Equal(t, src, dst)
}
