// Package chunkframe provides reference-counted columnar data views and a
// self-describing binary frame codec.
//
// # Core Features
//
//   - Reference-counted memory sources shared by any number of views
//   - Strided vector views and data blocks with structural sharing
//   - Bounded instance pools for views and blocks
//   - Frame codec with binary/text negotiation and optional compression
//     (Zstd, S2, LZ4, Snappy)
//
// # Basic Usage
//
// Sharing one buffer between views:
//
//	pools, _ := chunkframe.NewPools()
//	values, _ := chunkframe.NewVector(pools, []float64{1, 2, 3, 4, 5, 6})
//
//	// The block owns values from here on and disposes it with its columns.
//	block, _ := storage.NewMatrixBlock(pools, nil, values, 2)
//	defer block.Dispose()
//
// Encoding a value as a frame:
//
//	frame, _ := chunkframe.Marshal([]float64{1, 2, 3}, format.BinaryZstd)
//	values, _ := chunkframe.Unmarshal[[]float64](frame)
//
// # Package Structure
//
// This package wraps the storage and serializer packages for the common
// cases. Use them directly for header slots, staged payloads, registered
// codecs and pool tuning.
package chunkframe

import (
	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/memory"
	"github.com/arloliu/chunkframe/serializer"
	"github.com/arloliu/chunkframe/storage"
	"github.com/cockroachdb/errors"
)

// NewPools creates the view and block pools. See storage.NewPools.
func NewPools(opts ...storage.PoolOption) (*storage.Pools, error) {
	return storage.NewPools(opts...)
}

// NewSerializer creates a frame serializer. See serializer.New.
func NewSerializer(opts ...serializer.Option) (*serializer.Serializer, error) {
	return serializer.New(opts...)
}

// NewVector wraps data in a new memory source and returns a view over all of
// it. Disposing the view releases the source.
//
// Parameters:
//   - pools: Pools the view is allocated from, nil for storage.DefaultPools
//   - data: Backing elements, not copied
//
// Returns:
//   - *storage.VectorStorage: View of length len(data)
//   - error: Propagated from storage.Create
func NewVector[T any](pools *storage.Pools, data []T) (*storage.VectorStorage, error) {
	return storage.Create(pools, memory.NewBuffer(data), 0, len(data))
}

// Marshal encodes v as a complete frame with the default serializer.
//
// The format recorded in the frame may differ from f; see the serializer
// package for the fallback rules.
func Marshal[T any](v T, f format.Format) ([]byte, error) {
	return serializer.AppendFrame(nil, v, f)
}

// Unmarshal decodes a frame produced by Marshal.
//
// data must hold exactly one frame; trailing bytes are reported as
// ErrCorruptInput.
func Unmarshal[T any](data []byte) (T, error) {
	v, n, err := serializer.ReadFrame[T](data, false)
	if err != nil {
		return v, err
	}
	if n != len(data) {
		var zero T
		return zero, errors.Wrapf(errs.ErrCorruptInput, "%d trailing bytes after frame", len(data)-n)
	}

	return v, nil
}
