//go:build !gozstd || !cgo

package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/chunkframe/errs"
	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse to eliminate allocation overhead.
// The klauspost/compress/zstd decoder is designed to operate without
// allocations after a warmup, so decoders are kept and reused.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdBoundedDecoderPool pools decoders that stop at the capacity of the
// destination, used when the caller passes an output limit.
var zstdBoundedDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
			zstd.WithDecodeAllCapLimit(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create bounded zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse to eliminate allocation overhead.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			// This should never happen with valid options
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress appends the Zstandard-compressed form of data to dst.
func (c ZstdCompressor) Compress(dst, data []byte) ([]byte, error) {
	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	// EncodeAll is stateless - safe to use with pooled encoder
	return encoder.EncodeAll(data, dst), nil
}

// Decompress appends the decompressed form of data to dst.
//
// With spare capacity in dst the output stops at that capacity; a frame
// declaring or producing more is rejected with ErrDecompressedSizeExceeded.
// Returns an error if the data is corrupted or was not compressed with Zstd.
func (c ZstdCompressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	limit := outputLimit(dst)
	if _, err := checkZstdFrameSize(data, limit); err != nil {
		return dst, err
	}

	decoders := &zstdDecoderPool
	if limit > 0 {
		decoders = &zstdBoundedDecoderPool
	}
	decoder, _ := decoders.Get().(*zstd.Decoder)
	defer decoders.Put(decoder)

	// Even if this call fails, the decoder can be reused for next call
	out, err := decoder.DecodeAll(data, dst)
	if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
		return dst, fmt.Errorf("zstd: output exceeds limit %d: %w", limit, errs.ErrDecompressedSizeExceeded)
	}
	if err != nil {
		return dst, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return out, nil
}
