package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"
)

// S2Compressor provides S2 (Snappy-compatible extension) compression.
type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress appends the S2-compressed form of data to dst.
func (c S2Compressor) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	bound := s2.MaxEncodedLen(len(data))
	if bound < 0 {
		return dst, fmt.Errorf("s2: input too large (%d bytes)", len(data))
	}

	return appendBounded(dst, bound, func(tail []byte) ([]byte, error) {
		return s2.Encode(tail, data), nil
	})
}

// Decompress appends the S2-decompressed form of data to dst. The decoded
// length stored in the block is checked against the spare capacity of dst
// before any output is allocated.
func (c S2Compressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return dst, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if err := checkOutputLimit("s2", uint64(n), outputLimit(dst)); err != nil {
		return dst, err
	}

	return appendBounded(dst, n, func(tail []byte) ([]byte, error) {
		return s2.Decode(tail, data)
	})
}
