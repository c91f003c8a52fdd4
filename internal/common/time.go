package common

import "time"

// UnixNanos is an unsigned 64-bit nanosecond timestamp since the Unix
// epoch, the wire representation exchanged between the clock core and its
// consumers.
type UnixNanos uint64

// UnixNanosFromTime converts a time.Time into UnixNanos.
func UnixNanosFromTime(t time.Time) UnixNanos {
	return UnixNanos(t.UnixNano())
}

// AsTime converts back to a time.Time (UTC).
func (t UnixNanos) AsTime() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// AsF64Secs returns the timestamp as floating-point seconds, ns * 1e-9.
func (t UnixNanos) AsF64Secs() float64 {
	return float64(t) * 1e-9
}

// AsMillis returns the timestamp truncated to whole milliseconds.
func (t UnixNanos) AsMillis() uint64 {
	return uint64(t) / uint64(time.Millisecond)
}

// AsMicros returns the timestamp truncated to whole microseconds.
func (t UnixNanos) AsMicros() uint64 {
	return uint64(t) / uint64(time.Microsecond)
}
