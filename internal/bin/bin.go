// Package bin contains utilities for dealing with binary
// representations of pixels.
package bin

import "unsafe"

func Bytes[T ~int32 | ~uint32](v T) [4]byte {
	return *(*[4]byte)(unsafe.Pointer(&v))
}

func Value[T ~int32 | ~uint32](data [4]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}

// Put writes v's bytes at the start of p.
func Put[T ~int32 | ~uint32](p []byte, v T) {
	b := Bytes(v)
	copy(p, b[:])
}
