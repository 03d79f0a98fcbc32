//go:build linux

// Package input passes touch events from evdev devices through to the
// rendering side. It does no coordinate mapping of its own: a device
// is expected to already report positions in virtual-canvas space.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/exp/maps"
	"golang.org/x/sys/unix"
)

// An Event is one touch state report.
type Event struct {
	X, Y    int
	Pressed bool
}

// A Handler receives events on a device's reader goroutine.
type Handler func(Event)

// Event codes from linux/input-event-codes.h. x/sys/unix defines the
// EV_* event types but not the per-type codes.
const (
	absX           = 0x00
	absY           = 0x01
	absMTPositionX = 0x35
	absMTPositionY = 0x36
	btnTouch       = 0x14a
)

// rawEvent is the kernel's struct input_event.
type rawEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// A Device is one open touch device with a running reader goroutine.
type Device struct {
	path  string
	file  *os.File
	close sync.Once
}

// Open opens the evdev device at path and delivers its events to h
// until the device is closed.
func Open(path string, h Handler) (*Device, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open touch device: %w", err)
	}

	dev := Device{
		path: path,
		file: file,
	}
	go dev.read(h)

	return &dev, nil
}

func (dev *Device) read(h Handler) {
	var cur Event
	buf := make([]byte, unsafe.Sizeof(rawEvent{}))

	for {
		_, err := io.ReadFull(dev.file, buf)
		if err != nil {
			return
		}
		ev := *(*rawEvent)(unsafe.Pointer(&buf[0]))

		switch ev.Type {
		case unix.EV_ABS:
			switch ev.Code {
			case absX, absMTPositionX:
				cur.X = int(ev.Value)
			case absY, absMTPositionY:
				cur.Y = int(ev.Value)
			}
		case unix.EV_KEY:
			if ev.Code == btnTouch {
				cur.Pressed = ev.Value != 0
			}
		case unix.EV_SYN:
			h(cur)
		}
	}
}

func (dev *Device) Path() string {
	return dev.path
}

// Close stops the reader and releases the device. It is idempotent.
func (dev *Device) Close() error {
	var err error
	dev.close.Do(func() { err = dev.file.Close() })
	return err
}

// A Manager tracks the open touch devices for one display.
type Manager struct {
	devs map[string]*Device
}

func NewManager() *Manager {
	return &Manager{
		devs: make(map[string]*Device),
	}
}

// Open opens the device at path and routes its events to h. A device
// that fails to open leaves the manager unchanged. Reopening a path
// closes the device previously opened for it.
func (m *Manager) Open(path string, h Handler) error {
	dev, err := Open(path, h)
	if err != nil {
		return err
	}

	if prev, ok := m.devs[path]; ok {
		prev.Close()
	}
	m.devs[path] = dev
	return nil
}

// Devices returns a snapshot of the open devices by path.
func (m *Manager) Devices() map[string]*Device {
	return maps.Clone(m.devs)
}

// Close closes every open device.
func (m *Manager) Close() error {
	var errs []error
	for path, dev := range m.devs {
		errs = append(errs, dev.Close())
		delete(m.devs, path)
	}
	return errors.Join(errs...)
}
