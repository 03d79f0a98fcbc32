// Package blit performs asynchronous rectangular copies between pixel
// buffers with independent strides, standing in for a 2D DMA engine.
package blit

// A Descriptor describes one rectangular copy job. Src and Dst are
// positioned at the first byte of the region's top-left pixel; rows
// are SrcStride and DstStride bytes apart in their respective buffers.
type Descriptor struct {
	Src       []byte
	Dst       []byte
	Width     int // pixels per row
	Height    int // rows
	SrcStride int // bytes
	DstStride int // bytes
	BPP       int // bytes per pixel

	// Notify, if non-nil, is called by the scheduler after the copy
	// has been performed and the slot released.
	Notify func()
}

// Run copies the described region. The copy is row by row: the source
// and destination strides generally differ, so a single flat copy
// would interleave bytes from outside the region whenever a row is
// narrower than its stride.
func (d *Descriptor) Run() {
	line := d.Width * d.BPP
	for row := 0; row < d.Height; row++ {
		copy(d.Dst[row*d.DstStride:][:line], d.Src[row*d.SrcStride:][:line])
	}
}
