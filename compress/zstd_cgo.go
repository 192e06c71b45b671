//go:build gozstd && cgo

package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/chunkframe/errs"
	"github.com/valyala/gozstd"
)

const gozstdLevel = 3

// Compress appends the Zstandard-compressed form of data to dst using libzstd.
func (c ZstdCompressor) Compress(dst, data []byte) ([]byte, error) {
	return gozstd.CompressLevel(dst, data, gozstdLevel), nil
}

// Decompress appends the decompressed form of data to dst using libzstd.
//
// With spare capacity in dst the output stops at that capacity; a frame
// declaring or producing more is rejected with ErrDecompressedSizeExceeded.
func (c ZstdCompressor) Decompress(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	limit := outputLimit(dst)
	h, err := checkZstdFrameSize(data, limit)
	if err != nil {
		return dst, err
	}
	// gozstd streams frames without a content size into a growing buffer.
	if limit > 0 && !h.HasFCS {
		return decompressStreamBounded(dst, data, limit)
	}

	out, err := gozstd.Decompress(dst, data)
	if err != nil {
		return dst, fmt.Errorf("zstd decompression failed: %w", err)
	}
	if err := checkOutputLimit("zstd", uint64(len(out)-len(dst)), limit); err != nil {
		return dst, err
	}

	return out, nil
}

func decompressStreamBounded(dst, data []byte, limit int) ([]byte, error) {
	zr := gozstd.NewReader(bytes.NewReader(data))
	defer zr.Release()

	return appendBounded(dst, limit, func(tail []byte) ([]byte, error) {
		n, err := io.ReadFull(zr, tail)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return tail[:n], nil
		case err != nil:
			return nil, fmt.Errorf("zstd decompression failed: %w", err)
		}

		var extra [1]byte
		if k, _ := zr.Read(extra[:]); k > 0 {
			return nil, fmt.Errorf("zstd: output exceeds limit %d: %w", limit, errs.ErrDecompressedSizeExceeded)
		}

		return tail, nil
	})
}
