package encoding

import (
	"encoding/binary"
	"iter"

	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

// VarStringEncoder encodes strings with a uvarint length prefix.
//
// Each string is encoded as:
//   - 1-10 bytes: length as uvarint
//   - N bytes: string data (UTF-8)
//
// Note: The VarStringEncoder is NOT thread-safe.
type VarStringEncoder struct {
	buf   []byte
	count int
}

// NewVarStringEncoder creates an encoder that appends to dst.
func NewVarStringEncoder(dst []byte) *VarStringEncoder {
	return &VarStringEncoder{buf: dst}
}

// Write encodes a single string.
func (e *VarStringEncoder) Write(s string) {
	e.count++
	e.buf = binary.AppendUvarint(e.buf, uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteSlice encodes a slice of strings with a single buffer growth.
func (e *VarStringEncoder) WriteSlice(ss []string) {
	if need := VarStringSize(ss); cap(e.buf)-len(e.buf) < need {
		grown := make([]byte, len(e.buf), len(e.buf)+need)
		copy(grown, e.buf)
		e.buf = grown
	}
	for _, s := range ss {
		e.Write(s)
	}
}

// Bytes returns the destination slice with every encoded string appended.
func (e *VarStringEncoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded strings.
func (e *VarStringEncoder) Len() int {
	return e.count
}

// VarStringSize returns the number of bytes VarStringEncoder produces for ss.
func VarStringSize(ss []string) int {
	size := 0
	for _, s := range ss {
		size += uvarintLen(uint64(len(s))) + len(s)
	}

	return size
}

// VarStringDecoder decodes streams produced by VarStringEncoder.
// It is stateless and safe for concurrent use.
type VarStringDecoder struct{}

// NewVarStringDecoder creates a decoder.
func NewVarStringDecoder() VarStringDecoder {
	return VarStringDecoder{}
}

// Decode appends count strings decoded from data to dst. The strings are
// copies and do not alias data.
//
// Returns:
//   - []string: dst with the decoded strings appended
//   - int: Number of bytes consumed from data
//   - error: ErrCorruptInput if a length prefix is malformed or exceeds the remaining data
func (d VarStringDecoder) Decode(dst []string, data []byte, count int) ([]string, int, error) {
	if count < 0 {
		return dst, 0, errors.Wrapf(errs.ErrCorruptInput, "negative string count %d", count)
	}

	offset := 0
	for i := range count {
		s, n, ok := readVarString(data[offset:])
		if !ok {
			return dst, offset, errors.Wrapf(errs.ErrCorruptInput, "string %d of %d at offset %d", i, count, offset)
		}
		offset += n
		dst = append(dst, s)
	}

	return dst, offset, nil
}

// All returns an iterator over count strings decoded from data.
// Iteration stops early on malformed input.
func (d VarStringDecoder) All(data []byte, count int) iter.Seq[string] {
	return func(yield func(string) bool) {
		offset := 0
		for range count {
			s, n, ok := readVarString(data[offset:])
			if !ok {
				return
			}
			offset += n
			if !yield(s) {
				return
			}
		}
	}
}

func readVarString(data []byte) (string, int, bool) {
	length, n := binary.Uvarint(data)
	if n <= 0 || length > uint64(len(data)-n) {
		return "", 0, false
	}
	end := n + int(length) //nolint:gosec

	return string(data[n:end]), end, true
}
