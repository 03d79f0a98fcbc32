//go:build linux

package input

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func abs(code uint16, v int32) rawEvent {
	return rawEvent{Type: unix.EV_ABS, Code: code, Value: v}
}

func key(code uint16, v int32) rawEvent {
	return rawEvent{Type: unix.EV_KEY, Code: code, Value: v}
}

func syn() rawEvent {
	return rawEvent{Type: unix.EV_SYN}
}

func rawBytes(evs []rawEvent) []byte {
	buf := make([]byte, 0, len(evs)*int(unsafe.Sizeof(rawEvent{})))
	for _, ev := range evs {
		b := (*[unsafe.Sizeof(rawEvent{})]byte)(unsafe.Pointer(&ev))
		buf = append(buf, b[:]...)
	}
	return buf
}

func writeEvents(t *testing.T, evs []rawEvent) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event0")
	require.NoError(t, os.WriteFile(path, rawBytes(evs), 0o644))
	return path
}

func TestDeviceRead(t *testing.T) {
	tests := []struct {
		name string
		raw  []rawEvent
		want []Event
	}{
		{
			name: "press move release",
			raw: []rawEvent{
				key(btnTouch, 1), abs(absX, 100), abs(absY, 50), syn(),
				abs(absX, 110), syn(),
				key(btnTouch, 0), syn(),
			},
			want: []Event{
				{X: 100, Y: 50, Pressed: true},
				{X: 110, Y: 50, Pressed: true},
				{X: 110, Y: 50, Pressed: false},
			},
		},
		{
			name: "multitouch positions",
			raw: []rawEvent{
				abs(absMTPositionX, 1200), abs(absMTPositionY, 300), key(btnTouch, 1), syn(),
			},
			want: []Event{
				{X: 1200, Y: 300, Pressed: true},
			},
		},
		{
			// ABS_MT_SLOT and BTN_LEFT must not disturb the state.
			name: "unrelated codes ignored",
			raw: []rawEvent{
				abs(0x2f, 1), key(0x110, 1), syn(),
			},
			want: []Event{{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := make(chan Event, len(tt.raw))
			dev, err := Open(writeEvents(t, tt.raw), func(ev Event) { events <- ev })
			require.NoError(t, err)
			defer dev.Close()

			var got []Event
			for range tt.want {
				select {
				case ev := <-events:
					got = append(got, ev)
				case <-time.After(5 * time.Second):
					t.Fatal("timed out waiting for events")
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeviceCloseIdempotent(t *testing.T) {
	dev, err := Open(writeEvents(t, nil), func(Event) {})
	require.NoError(t, err)

	require.NoError(t, dev.Close())
	require.NoError(t, dev.Close())
}

func TestManagerReopenClosesPrevious(t *testing.T) {
	path := writeEvents(t, nil)

	m := NewManager()
	require.NoError(t, m.Open(path, func(Event) {}))
	first := m.devs[path]

	require.NoError(t, m.Open(path, func(Event) {}))
	assert.NotSame(t, first, m.devs[path])
	assert.Len(t, m.Devices(), 1)

	_, err := first.file.Stat()
	assert.ErrorIs(t, err, os.ErrClosed, "replaced device must be closed")

	require.NoError(t, m.Close())
	assert.Empty(t, m.Devices())
}
