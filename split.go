package fbspan

import "image"

// A SubRect is one piece of a damage rectangle after it has been
// clipped against the seam between the two surfaces. Rect is in the
// target surface's own coordinate space: for the right surface the
// seam offset has already been subtracted.
type SubRect struct {
	Rect  image.Rectangle
	Right bool
}

// SplitAtSeam clips r against the vertical seam at x = seam and
// returns the pieces that land on each surface, at most one per side.
// The left surface covers [0, seam) and the right surface covers
// [seam, ∞) in canvas coordinates. Empty pieces are never returned: a
// rectangle that only touches the seam produces a single SubRect.
func SplitAtSeam(r image.Rectangle, seam int) []SubRect {
	if r.Empty() {
		return nil
	}

	var subs []SubRect
	if r.Min.X < seam {
		left := r
		left.Max.X = min(left.Max.X, seam)
		subs = append(subs, SubRect{Rect: left})
	}
	if r.Max.X > seam {
		right := r
		right.Min.X = max(right.Min.X, seam)
		subs = append(subs, SubRect{
			Rect:  right.Sub(image.Pt(seam, 0)),
			Right: true,
		})
	}
	return subs
}
