// Package fbspan presents two physical display surfaces as a single
// virtual canvas twice as wide as either one. A rendering library
// draws into the canvas and reports damaged regions; fbspan splits
// each region at the seam between the surfaces, copies the pixels to
// the surfaces asynchronously, and signals the rendering library once
// all copies for that region have landed.
package fbspan

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	"deedles.dev/fbspan/blit"
	"deedles.dev/fbspan/internal/debug"
)

const (
	slotLeft = iota
	slotRight
)

// A Target is one physical scanout surface as the compositor needs to
// see it: a mapped pixel buffer with a fixed row stride. It is
// implemented by *fbdev.Surface.
type Target interface {
	// Pix is the surface's mapped pixel memory. The slice must stay
	// valid until Close.
	Pix() []byte

	// Stride is the number of bytes between vertically adjacent
	// pixels. It may exceed the width of a row.
	Stride() int

	Bounds() image.Rectangle

	// Close releases the surface. It must be idempotent.
	Close() error
}

// A Display is the rendering library's handle for the virtual screen.
// The compositor calls FlushComplete exactly once per flush it was
// handed, after every copy belonging to that flush has been performed.
// FlushComplete is called from the compositor's worker goroutine,
// except for a flush with no pixels to copy, which completes
// synchronously on the goroutine that called OnFlush.
type Display interface {
	FlushComplete()
}

// A FlushSink accepts damage reports against the virtual canvas. It is
// implemented by *Compositor; a rendering library calls OnFlush with
// the damaged region and the buffer it rendered into.
type FlushSink interface {
	OnFlush(r image.Rectangle, pix []byte) error
}

// A Compositor owns two targets and the canvas that spans them. It
// must be released with Destroy.
//
// The compositor never writes to target memory itself: all pixel
// writes happen on the blit worker, and each target has at most one
// copy in flight at a time.
type Compositor struct {
	left, right Target
	canvas      *Canvas
	seam        int
	sched       *blit.Scheduler

	mu      sync.Mutex
	display Display
}

// New builds a compositor over the two targets. The targets must have
// equal heights and rows wide enough for their declared bounds. New
// takes ownership of both targets immediately: on failure it closes
// them along with anything else already acquired.
func New(left, right Target) (c *Compositor, err error) {
	c = &Compositor{
		left:  left,
		right: right,
	}
	defer func() {
		if err != nil {
			c.Destroy()
		}
	}()

	lb, rb := left.Bounds(), right.Bounds()
	if lb.Dy() != rb.Dy() {
		return c, GeometryMismatchError{Left: lb, Right: rb}
	}
	if left.Stride() < lb.Dx()*bytesPerPixel {
		return c, StrideError{Bounds: lb, Stride: left.Stride()}
	}
	if right.Stride() < rb.Dx()*bytesPerPixel {
		return c, StrideError{Bounds: rb, Stride: right.Stride()}
	}

	canvas, err := NewCanvas(lb.Dx()+rb.Dx(), lb.Dy())
	if err != nil {
		return c, fmt.Errorf("allocate canvas: %w", err)
	}
	c.canvas = canvas
	c.seam = lb.Dx()
	c.sched = blit.NewScheduler(2)

	return c, nil
}

// Bind installs the rendering library's display handle. Completion
// notifications go to d until Bind is called again or the compositor
// is destroyed.
func (c *Compositor) Bind(d Display) {
	c.mu.Lock()
	c.display = d
	c.mu.Unlock()
}

// Bounds is the bounds of the virtual canvas.
func (c *Compositor) Bounds() image.Rectangle {
	return c.canvas.Bounds()
}

// Seam is the canvas x coordinate where the right surface begins.
func (c *Compositor) Seam() int {
	return c.seam
}

// Buffers returns the canvas's two full-frame buffers for the
// rendering library's double-buffering.
func (c *Compositor) Buffers() (front, back []byte) {
	return c.canvas.Front(), c.canvas.Back()
}

// FrontImage returns a draw.Image view of the canvas front buffer.
func (c *Compositor) FrontImage() draw.Image {
	return c.canvas.FrontImage()
}

// BackImage returns a draw.Image view of the canvas back buffer.
func (c *Compositor) BackImage() draw.Image {
	return c.canvas.BackImage()
}

// OnFlush copies the damaged region r of pix out to the surfaces it
// overlaps. pix must be one of the canvas buffers, or any buffer laid
// out identically. OnFlush only enqueues work: the copies run on the
// worker, and the bound display's FlushComplete is called after the
// last of them.
//
// A flush that produces no pixels still completes, immediately. A
// flush against a surface whose previous copy is in flight is
// rejected with a blit.SlotBusyError; the rendering library is
// expected to wait for FlushComplete before flushing again.
func (c *Compositor) OnFlush(r image.Rectangle, pix []byte) error {
	r = r.Intersect(c.canvas.Bounds())
	subs := SplitAtSeam(r, c.seam)
	if len(subs) == 0 {
		c.flushDone()
		return nil
	}

	for _, sub := range subs {
		slot := slotLeft
		if sub.Right {
			slot = slotRight
		}
		if c.sched.Busy(slot) {
			return blit.SlotBusyError{Slot: slot}
		}
	}

	debug.Printf("flush %v: %v copies", r, len(subs))
	for i, sub := range subs {
		target, slot := c.left, slotLeft
		srcX := sub.Rect.Min.X
		if sub.Right {
			target, slot = c.right, slotRight
			srcX += c.seam
		}

		d := blit.Descriptor{
			Src:       pix[(sub.Rect.Min.Y*c.canvas.w+srcX)*bytesPerPixel:],
			Dst:       target.Pix()[sub.Rect.Min.Y*target.Stride()+sub.Rect.Min.X*bytesPerPixel:],
			Width:     sub.Rect.Dx(),
			Height:    sub.Rect.Dy(),
			SrcStride: c.canvas.Stride(),
			DstStride: target.Stride(),
			BPP:       bytesPerPixel,
		}
		if i == len(subs)-1 {
			d.Notify = c.flushDone
		}

		err := c.sched.Submit(slot, &d)
		if err != nil {
			return fmt.Errorf("submit copy: %w", err)
		}
	}

	return nil
}

func (c *Compositor) flushDone() {
	c.mu.Lock()
	d := c.display
	c.mu.Unlock()

	if d != nil {
		d.FlushComplete()
	}
}

// Destroy releases everything the compositor acquired, in reverse
// order of acquisition: the display binding first, so that no further
// completion calls can reach the rendering library, then the
// scheduler, the canvas, and finally the targets. Destroy is
// idempotent and safe to call after a failed New. It must not be
// called while a flush is outstanding.
func (c *Compositor) Destroy() error {
	c.mu.Lock()
	c.display = nil
	c.mu.Unlock()

	if c.sched != nil {
		c.sched.Stop()
		c.sched = nil
	}
	c.canvas = nil

	var errs []error
	if c.left != nil {
		errs = append(errs, c.left.Close())
		c.left = nil
	}
	if c.right != nil {
		errs = append(errs, c.right.Close())
		c.right = nil
	}
	return errors.Join(errs...)
}

// GeometryMismatchError is returned by New if the two targets cannot
// tile side by side.
type GeometryMismatchError struct {
	Left, Right image.Rectangle
}

func (err GeometryMismatchError) Error() string {
	return fmt.Sprintf("surface geometries do not tile: left %v, right %v", err.Left, err.Right)
}

// StrideError is returned by New if a target's stride is too small
// for its declared bounds.
type StrideError struct {
	Bounds image.Rectangle
	Stride int
}

func (err StrideError) Error() string {
	return fmt.Sprintf("stride %v too small for surface %v", err.Stride, err.Bounds)
}
