package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/chunkframe/errs"
	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains internal state that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// errLZ4Incompressible is returned when the LZ4 block encoder gives up on the input.
var errLZ4Incompressible = errors.New("lz4: data is incompressible")

// lz4MaxDecompressedSize bounds the adaptive buffer growth of Decompress.
const lz4MaxDecompressedSize = 128 * 1024 * 1024 // 128MB safety limit

// LZ4Compressor provides LZ4 block compression.
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
//
// Returns:
//   - LZ4Compressor: New LZ4 compressor instance
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress appends the LZ4 block-compressed form of data to dst.
//
// Uses a pooled lz4.Compressor for better performance.
//
// Parameters:
//   - dst: Destination the compressed block is appended to
//   - data: Input data to compress
//
// Returns:
//   - []byte: dst extended by the compressed block
//   - error: errLZ4Incompressible when the block encoder produced no output
func (c LZ4Compressor) Compress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	return appendBounded(dst, lz4.CompressBlockBound(len(data)), func(tail []byte) ([]byte, error) {
		n, err := lc.CompressBlock(data, tail)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errLZ4Incompressible
		}

		return tail[:n], nil
	})
}

// Decompress appends the LZ4-decompressed form of data to dst.
//
// LZ4 blocks do not record their decompressed size. When dst has spare
// capacity it is the output limit; otherwise the buffer
// starts at 4x the compressed size and doubles on ErrInvalidSourceShortBuffer,
// up to a 128MB limit that guards against corrupted input.
//
// Parameters:
//   - dst: Destination, its spare capacity is the output limit
//   - data: Compressed block
//
// Returns:
//   - []byte: dst extended by the decompressed data
//   - error: decompression errors, ErrDecompressedSizeExceeded past the spare
//     capacity of dst, or ErrInvalidSourceShortBuffer past the 128MB limit
func (c LZ4Compressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	if limit := outputLimit(dst); limit > 0 {
		out, err := appendBounded(dst, limit, func(tail []byte) ([]byte, error) {
			n, err := lz4.UncompressBlock(data, tail)
			if err != nil {
				return nil, err
			}

			return tail[:n], nil
		})
		if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return dst, fmt.Errorf("lz4: output exceeds limit %d: %w", limit, errs.ErrDecompressedSizeExceeded)
		}

		return out, err
	}

	for bufSize := len(data) * 4; bufSize <= lz4MaxDecompressedSize; bufSize *= 2 {
		out, err := appendBounded(dst, bufSize, func(tail []byte) ([]byte, error) {
			n, err := lz4.UncompressBlock(data, tail)
			if err != nil {
				return nil, err
			}

			return tail[:n], nil
		})
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return dst, err
		}
	}

	// Buffer exceeded the limit - likely corrupted data or unreasonable compression ratio
	return dst, lz4.ErrInvalidSourceShortBuffer
}
