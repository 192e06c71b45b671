package compress

import (
	"fmt"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
)

// Compressor compresses frame payloads.
//
// Compressed bytes are appended to dst, which lets the serializer compress
// directly behind the raw-length prefix it has already written into its
// staging buffer. Implementations must not modify data.
type Compressor interface {
	// Compress appends the compressed form of data to dst and returns the
	// extended slice.
	//
	// An error means the payload should be stored uncompressed; dst is
	// returned unchanged in that case.
	Compress(dst, data []byte) ([]byte, error)
}

// Decompressor decompresses frame payloads.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress appends the decompressed form of data to dst and returns the
	// extended slice.
	//
	// Spare capacity in dst is a hard output limit: the serializer passes
	// a scratch buffer sized to the raw length recorded in the frame, and a
	// payload that would expand past it is rejected before the output is
	// allocated. A dst without spare capacity leaves the output unbounded.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or invalid
	//   - Returns error if data was compressed with an incompatible algorithm
	//   - Returns ErrDecompressedSizeExceeded past the limit
	Decompress(dst, data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone:   NewNoOpCompressor(),
	format.CompressionZstd:   NewZstdCompressor(),
	format.CompressionS2:     NewS2Compressor(),
	format.CompressionLZ4:    NewLZ4Compressor(),
	format.CompressionSnappy: NewSnappyCompressor(),
}

// GetCodec retrieves a built-in Codec for the specified compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type %s: %w", compressionType, errs.ErrInvalidCompression)
}

// outputLimit returns the output limit carried by dst, or 0 for none.
func outputLimit(dst []byte) int {
	return cap(dst) - len(dst)
}

// checkOutputLimit rejects a decoded length n above a positive limit.
func checkOutputLimit(name string, n uint64, limit int) error {
	if limit > 0 && n > uint64(limit) {
		return fmt.Errorf("%s: decoded length %d exceeds limit %d: %w", name, n, limit, errs.ErrDecompressedSizeExceeded)
	}

	return nil
}

// appendBounded runs fn over the spare capacity of dst, grown to at least
// bound bytes, and returns dst extended by the bytes fn produced.
//
// fn may return a slice that does not alias its argument; it is copied in.
func appendBounded(dst []byte, bound int, fn func(tail []byte) ([]byte, error)) ([]byte, error) {
	start := len(dst)
	if cap(dst)-start < bound {
		grown := make([]byte, start, start+bound)
		copy(grown, dst)
		dst = grown
	}

	tail := dst[start : start+bound]
	out, err := fn(tail)
	if err != nil {
		return dst[:start], err
	}
	if len(out) == 0 {
		return dst[:start], nil
	}
	if &out[0] != &tail[0] {
		return append(dst[:start], out...), nil
	}

	return dst[:start+len(out)], nil
}
