// Package datatypes holds the value types that have a dedicated frame type enum.
package datatypes

import "time"

// Timestamp is a point in time stored as nanoseconds since the Unix epoch (UTC).
//
// It is a fixed 8-byte value on the wire and the natural row index type of
// time-series chunks.
type Timestamp int64

// NewTimestamp converts a time.Time into a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Nanos returns the number of nanoseconds since the Unix epoch.
func (ts Timestamp) Nanos() int64 {
	return int64(ts)
}

// Time converts the timestamp to a UTC time.Time.
func (ts Timestamp) Time() time.Time {
	return time.Unix(0, int64(ts)).UTC()
}

// Add returns ts shifted by d.
func (ts Timestamp) Add(d time.Duration) Timestamp {
	return ts + Timestamp(d)
}

// Sub returns the duration ts-other.
func (ts Timestamp) Sub(other Timestamp) time.Duration {
	return time.Duration(ts - other)
}

// Compare returns -1, 0 or +1 depending on whether ts is before, equal to or after other.
func (ts Timestamp) Compare(other Timestamp) int {
	switch {
	case ts < other:
		return -1
	case ts > other:
		return 1
	default:
		return 0
	}
}

// String formats the timestamp as RFC 3339 with nanoseconds.
func (ts Timestamp) String() string {
	return ts.Time().Format(time.RFC3339Nano)
}
