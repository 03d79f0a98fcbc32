//go:build linux

// Package fbdev binds Linux framebuffer devices for scanout.
package fbdev

import (
	"errors"
	"fmt"
	"image"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Geometry describes the pixel layout of an opened framebuffer. It is
// fixed for the lifetime of the Surface.
type Geometry struct {
	Width  int // pixels
	Height int // pixels
	Stride int // bytes per row
	Length int // mapped bytes
	BPP    int // bytes per pixel
}

// A Surface is one open, mapped framebuffer device. Its pixel memory
// stays mapped, at a stable address, until Close.
type Surface struct {
	path string
	file *os.File
	mmap Mmap
	geo  Geometry
}

// Open opens the framebuffer device at path read-write, queries its
// geometry, and maps its pixel memory. A failure at any step releases
// whatever the call had already acquired.
func Open(path string) (*Surface, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, OpenError{Path: path, Err: err}
	}

	geo, err := queryGeometry(file)
	if err != nil {
		file.Close()
		return nil, QueryError{Path: path, Err: err}
	}

	mmap, err := MapShared(file, geo.Length, unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		file.Close()
		return nil, MapError{Path: path, Err: err}
	}

	return &Surface{
		path: path,
		file: file,
		mmap: mmap,
		geo:  geo,
	}, nil
}

// Close unmaps the surface's memory and releases the device. It is
// idempotent.
func (s *Surface) Close() error {
	var errs []error
	if s.mmap != nil {
		errs = append(errs, s.mmap.Unmap())
		s.mmap = nil
	}
	if s.file != nil {
		errs = append(errs, s.file.Close())
		s.file = nil
	}
	return errors.Join(errs...)
}

func (s *Surface) Path() string {
	return s.path
}

func (s *Surface) Geometry() Geometry {
	return s.geo
}

// Pix is the surface's mapped pixel memory. It is nil after Close.
func (s *Surface) Pix() []byte {
	return s.mmap
}

func (s *Surface) Stride() int {
	return s.geo.Stride
}

func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.geo.Width, s.geo.Height)
}

// Framebuffer ioctl requests from linux/fb.h. x/sys/unix does not
// define them.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

// varScreenInfo is the kernel's fb_var_screeninfo.
type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          bitField
	Green        bitField
	Blue         bitField
	Transp       bitField
	Nonstd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	Pixclock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	Vmode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

type bitField struct {
	Offset   uint32
	Length   uint32
	MsbRight uint32
}

// fixScreenInfo is the kernel's fb_fix_screeninfo.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

func queryGeometry(file *os.File) (Geometry, error) {
	var vinfo varScreenInfo
	err := ioctl(file, fbioGetVScreenInfo, unsafe.Pointer(&vinfo))
	if err != nil {
		return Geometry{}, fmt.Errorf("get video info: %w", err)
	}

	var finfo fixScreenInfo
	err = ioctl(file, fbioGetFScreenInfo, unsafe.Pointer(&finfo))
	if err != nil {
		return Geometry{}, fmt.Errorf("get plane info: %w", err)
	}

	return Geometry{
		Width:  int(vinfo.XRes),
		Height: int(vinfo.YRes),
		Stride: int(finfo.LineLength),
		Length: int(finfo.SmemLen),
		BPP:    int(vinfo.BitsPerPixel) / 8,
	}, nil
}

func ioctl(file *os.File, req uint, arg unsafe.Pointer) error {
	sc, err := file.SyscallConn()
	if err != nil {
		return err
	}

	var ierr error
	cerr := sc.Control(func(fd uintptr) {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(req), uintptr(arg))
		if errno != 0 {
			ierr = errno
		}
	})
	if cerr != nil {
		return cerr
	}
	return ierr
}

// OpenError is returned by Open if the device itself cannot be
// opened.
type OpenError struct {
	Path string
	Err  error
}

func (err OpenError) Error() string {
	return fmt.Sprintf("open framebuffer %v: %v", err.Path, err.Err)
}

func (err OpenError) Unwrap() error { return err.Err }

// QueryError is returned by Open if the device's geometry cannot be
// read.
type QueryError struct {
	Path string
	Err  error
}

func (err QueryError) Error() string {
	return fmt.Sprintf("query framebuffer %v: %v", err.Path, err.Err)
}

func (err QueryError) Unwrap() error { return err.Err }

// MapError is returned by Open if the device's pixel memory cannot be
// mapped.
type MapError struct {
	Path string
	Err  error
}

func (err MapError) Error() string {
	return fmt.Sprintf("map framebuffer %v: %v", err.Path, err.Err)
}

func (err MapError) Unwrap() error { return err.Err }
