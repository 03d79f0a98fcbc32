//go:build linux

package fbspan

import "deedles.dev/fbspan/fbdev"

var _ Target = (*fbdev.Surface)(nil)

// Create opens the two framebuffer devices and builds a compositor
// over them, left first. Any failure releases whatever was already
// acquired and returns without a compositor.
func Create(leftPath, rightPath string) (*Compositor, error) {
	left, err := fbdev.Open(leftPath)
	if err != nil {
		return nil, err
	}

	right, err := fbdev.Open(rightPath)
	if err != nil {
		left.Close()
		return nil, err
	}

	return New(left, right)
}
