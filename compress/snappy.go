package compress

import (
	"fmt"

	"github.com/golang/snappy"
)

// SnappyCompressor provides Snappy block compression.
//
// Snappy frames are readable by any Snappy block decoder, which makes this
// codec the interoperable choice when another system consumes the payloads.
type SnappyCompressor struct{}

var _ Codec = (*SnappyCompressor)(nil)

// NewSnappyCompressor creates a new Snappy compressor.
func NewSnappyCompressor() SnappyCompressor {
	return SnappyCompressor{}
}

// Compress appends the Snappy-compressed form of data to dst.
func (c SnappyCompressor) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	bound := snappy.MaxEncodedLen(len(data))
	if bound < 0 {
		return dst, fmt.Errorf("snappy: input too large (%d bytes)", len(data))
	}

	return appendBounded(dst, bound, func(tail []byte) ([]byte, error) {
		return snappy.Encode(tail, data), nil
	})
}

// Decompress appends the Snappy-decompressed form of data to dst. The decoded
// length stored in the block is checked against the spare capacity of dst
// before any output is allocated.
func (c SnappyCompressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	n, err := snappy.DecodedLen(data)
	if err != nil {
		return dst, fmt.Errorf("snappy decompression failed: %w", err)
	}
	if err := checkOutputLimit("snappy", uint64(n), outputLimit(dst)); err != nil {
		return dst, err
	}

	return appendBounded(dst, n, func(tail []byte) ([]byte, error) {
		return snappy.Decode(tail, data)
	})
}
