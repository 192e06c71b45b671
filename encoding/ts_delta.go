package encoding

import (
	"encoding/binary"
	"iter"

	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

// TimestampDeltaEncoder encodes int64 timestamps with delta-of-delta,
// zigzag and varint compression.
//
// The zero value is not usable; create encoders with NewTimestampDeltaEncoder.
//
// Note: The TimestampDeltaEncoder is NOT thread-safe.
type TimestampDeltaEncoder struct {
	prevTS    int64
	prevDelta int64
	buf       []byte
	count     int
}

// NewTimestampDeltaEncoder creates an encoder that appends to dst.
//
// Parameters:
//   - dst: Destination slice; encoded bytes are appended after its current length
//
// Returns:
//   - *TimestampDeltaEncoder: Encoder ready for Write/WriteSlice
func NewTimestampDeltaEncoder(dst []byte) *TimestampDeltaEncoder {
	return &TimestampDeltaEncoder{buf: dst}
}

// Write encodes a single timestamp.
func (e *TimestampDeltaEncoder) Write(ts int64) {
	e.count++

	var v int64
	switch e.count {
	case 1:
		v = ts
	case 2:
		e.prevDelta = ts - e.prevTS
		v = e.prevDelta
	default:
		delta := ts - e.prevTS
		v = delta - e.prevDelta
		e.prevDelta = delta
	}
	e.prevTS = ts

	e.buf = binary.AppendUvarint(e.buf, zigzag(v))
}

// WriteSlice encodes a slice of timestamps.
func (e *TimestampDeltaEncoder) WriteSlice(ts []int64) {
	for _, v := range ts {
		e.Write(v)
	}
}

// Bytes returns the destination slice with every encoded timestamp appended.
func (e *TimestampDeltaEncoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded timestamps.
func (e *TimestampDeltaEncoder) Len() int {
	return e.count
}

// TimestampDeltaSize returns the number of bytes TimestampDeltaEncoder
// produces for ts, without encoding.
func TimestampDeltaSize(ts []int64) int {
	size := 0
	var prevTS, prevDelta int64
	for i, cur := range ts {
		var v int64
		switch i {
		case 0:
			v = cur
		case 1:
			prevDelta = cur - prevTS
			v = prevDelta
		default:
			delta := cur - prevTS
			v = delta - prevDelta
			prevDelta = delta
		}
		prevTS = cur
		size += uvarintLen(zigzag(v))
	}

	return size
}

// TimestampDeltaDecoder decodes streams produced by TimestampDeltaEncoder.
// It is stateless and safe for concurrent use.
type TimestampDeltaDecoder struct{}

// NewTimestampDeltaDecoder creates a decoder.
func NewTimestampDeltaDecoder() TimestampDeltaDecoder {
	return TimestampDeltaDecoder{}
}

// Decode appends count timestamps decoded from data to dst.
//
// Returns:
//   - []int64: dst with the decoded timestamps appended
//   - int: Number of bytes consumed from data
//   - error: ErrCorruptInput if data ends early or holds a malformed varint
func (d TimestampDeltaDecoder) Decode(dst []int64, data []byte, count int) ([]int64, int, error) {
	if count < 0 {
		return dst, 0, errors.Wrapf(errs.ErrCorruptInput, "negative timestamp count %d", count)
	}

	offset := 0
	var prevTS, prevDelta int64
	for i := range count {
		u, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return dst, offset, errors.Wrapf(errs.ErrCorruptInput, "timestamp %d of %d at offset %d", i, count, offset)
		}
		offset += n

		v := unzigzag(u)
		switch i {
		case 0:
			prevTS = v
		case 1:
			prevDelta = v
			prevTS += v
		default:
			prevDelta += v
			prevTS += prevDelta
		}
		dst = append(dst, prevTS)
	}

	return dst, offset, nil
}

// All returns an iterator over count timestamps decoded from data.
// Iteration stops early on malformed input.
func (d TimestampDeltaDecoder) All(data []byte, count int) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		offset := 0
		var prevTS, prevDelta int64
		for i := range count {
			u, n := binary.Uvarint(data[offset:])
			if n <= 0 {
				return
			}
			offset += n

			v := unzigzag(u)
			switch i {
			case 0:
				prevTS = v
			case 1:
				prevDelta = v
				prevTS += v
			default:
				prevDelta += v
				prevTS += prevDelta
			}
			if !yield(prevTS) {
				return
			}
		}
	}
}

func zigzag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63) //nolint:gosec
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1) //nolint:gosec
}

func uvarintLen(u uint64) int {
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}

	return n
}
