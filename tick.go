package fbspan

import "time"

var epoch = time.Now()

// Millis is a monotonic millisecond clock suitable for a rendering
// library's timer scheduling. The zero point is process start; only
// differences are meaningful.
func Millis() uint32 {
	return uint32(time.Since(epoch) / time.Millisecond)
}
