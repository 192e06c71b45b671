// Package storage provides pooled, reference-counted views over memory
// sources and the blocks that group them into physical chunks.
//
// # Vector storage
//
// A VectorStorage is a (start, length, stride) window over a memory.Source.
// Every VectorStorage holds its own pin on the source, unless it was created
// as externally owned, so the source buffer is freed exactly once, after the
// last view is disposed:
//
//	buf := memory.NewBuffer(make([]float64, 1024))
//	vs, err := storage.Create(pools, buf, 0, 1024)
//	if err != nil {
//		return err
//	}
//	defer vs.Dispose()
//
//	odd, err := vs.Slice(1, 1023, storage.WithStride(2))
//
// Disposing a VectorStorage twice panics with an assertion failure.
//
// # Data blocks
//
// A DataBlock aggregates a row index, a values vector, an optional column
// index and optional columns. Columns may alias the values source, which is
// how a row-major matrix exposes its columns without copying:
//
//	blk, err := storage.NewMatrixBlock(pools, rowIndex, values, 4)
//	blk.IsPureMatrix() // true
//
// A block does not own the block it links to through SetNextBlock.
//
// # Pools
//
// VectorStorage and DataBlock instances are recycled through bounded pools
// held by a Pools value. Pools are passed explicitly; DefaultPools exists
// for callers that do not need isolation.
package storage
