//go:build linux

package fbdev

import (
	"os"

	"golang.org/x/sys/unix"
)

type Mmap []byte

// MapShared maps size bytes of file into memory with shared
// read-write semantics, so that stores become visible to the device.
func MapShared(file *os.File, size int, prot int) (mmap Mmap, err error) {
	sc, err := file.SyscallConn()
	if err != nil {
		return nil, err
	}

	sc.Control(func(fd uintptr) {
		m, merr := unix.Mmap(int(fd), 0, size, prot, unix.MAP_SHARED)
		mmap, err = Mmap(m), merr
	})

	return mmap, err
}

func (mmap Mmap) Unmap() error {
	return unix.Munmap(mmap)
}
