package storage

import (
	"testing"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/memory"
	"github.com/stretchr/testify/require"
)

func newVector[T any](t *testing.T, pools *Pools, data []T, opts ...ViewOption) *VectorStorage {
	t.Helper()

	vs, err := Create(pools, memory.NewBuffer(data), 0, len(data), opts...)
	require.NoError(t, err)

	return vs
}

func TestNewMatrixBlock(t *testing.T) {
	pools := newTestPools(t)
	released := 0
	buf := memory.NewBufferWithRelease(sequence(12), func([]int64) { released++ })

	values, err := Create(pools, buf, 0, 12)
	require.NoError(t, err)
	rowIndex := newVector(t, pools, []int64{100, 200, 300})

	blk, err := NewMatrixBlock(pools, rowIndex, values, 4)
	require.NoError(t, err)

	require.Len(t, blk.Columns(), 4)
	require.Equal(t, 3, blk.RowCount())
	require.Equal(t, 3, blk.RowLength())
	require.Equal(t, int32(5), buf.RefCount(), "values plus one pin per column")

	require.True(t, blk.IsValid())
	require.True(t, blk.IsPureMatrix())
	require.True(t, blk.IsAllColumnsShared())
	require.True(t, blk.IsAnyColumnShared())

	// Column 2 holds elements 2, 6, 10.
	col := blk.Columns()[2]
	for row, want := range []int64{2, 6, 10} {
		got, err := At[int64](col, row)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	blk.Dispose()
	require.Equal(t, 1, released)
	require.True(t, rowIndex.IsDisposed())
}

func TestNewMatrixBlock_Errors(t *testing.T) {
	pools := newTestPools(t)
	values := newVector(t, pools, sequence(10))
	defer values.Dispose()

	_, err := NewMatrixBlock(pools, nil, values, 3)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = NewMatrixBlock(pools, nil, values, 0)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestNewFrameBlock(t *testing.T) {
	pools := newTestPools(t)

	_, err := NewFrameBlock(pools, nil)
	require.ErrorIs(t, err, errs.ErrEmptyColumns)

	a := newVector(t, pools, []float64{1, 2, 3})
	b := newVector(t, pools, []string{"x", "y", "z"})
	rowIndex := newVector(t, pools, []int64{1, 2, 3})

	blk, err := NewFrameBlock(pools, rowIndex, a, b)
	require.NoError(t, err)
	require.True(t, blk.IsValid())
	require.False(t, blk.IsAnyColumnShared())
	require.False(t, blk.IsAllColumnsShared())
	require.False(t, blk.IsPureMatrix())
	require.Equal(t, 3, blk.RowCount())

	blk.Dispose()
	require.True(t, a.IsDisposed())
	require.True(t, b.IsDisposed())
	require.True(t, rowIndex.IsDisposed())
}

func TestDataBlock_IsValid(t *testing.T) {
	pools := newTestPools(t)

	t.Run("vector block", func(t *testing.T) {
		blk := NewVectorBlock(pools, newVector(t, pools, []int64{1, 2}), newVector(t, pools, []float64{1, 2}))
		defer blk.Dispose()
		require.True(t, blk.IsValid())
	})

	t.Run("row index length differs", func(t *testing.T) {
		blk := NewVectorBlock(pools, newVector(t, pools, []int64{1, 2, 3}), newVector(t, pools, []float64{1, 2}))
		defer blk.Dispose()
		require.False(t, blk.IsValid())
	})

	t.Run("columns differ in length", func(t *testing.T) {
		blk, err := NewFrameBlock(pools, nil,
			newVector(t, pools, []float64{1, 2}),
			newVector(t, pools, []float64{1, 2, 3}))
		require.NoError(t, err)
		defer blk.Dispose()
		require.False(t, blk.IsValid())
	})

	t.Run("values not shared by any column", func(t *testing.T) {
		blk, err := NewFrameBlock(pools, nil, newVector(t, pools, []float64{1, 2}))
		require.NoError(t, err)
		defer blk.Dispose()

		blk.SetValues(newVector(t, pools, []float64{3, 4}))
		require.False(t, blk.IsValid())
	})

	t.Run("values shared by some columns", func(t *testing.T) {
		values := newVector(t, pools, sequence(4))
		shared, err := values.Slice(0, 4, WithStride(2))
		require.NoError(t, err)
		other := newVector(t, pools, []int64{7, 8})

		blk, err := NewFrameBlock(pools, nil, shared, other)
		require.NoError(t, err)
		defer blk.Dispose()
		blk.SetValues(values)

		require.True(t, blk.IsValid())
		require.True(t, blk.IsAnyColumnShared())
		require.False(t, blk.IsAllColumnsShared())
		require.False(t, blk.IsPureMatrix())
	})

	t.Run("empty column set rejected", func(t *testing.T) {
		blk := NewVectorBlock(pools, nil, newVector(t, pools, []float64{1}))
		defer blk.Dispose()

		require.ErrorIs(t, blk.SetColumns([]*VectorStorage{}), errs.ErrEmptyColumns)
		require.NoError(t, blk.SetColumns(nil))
		require.True(t, blk.IsValid())
	})

	t.Run("empty block is not valid", func(t *testing.T) {
		blk := NewBlock(pools)
		defer blk.Dispose()
		require.True(t, blk.IsDisposed())
		require.False(t, blk.IsValid())
	})
}

func TestDataBlock_IsPureMatrixTypeMismatchPanics(t *testing.T) {
	pools := newTestPools(t)
	values := newVector(t, pools, sequence(4))
	col, err := values.Slice(0, 4)
	require.NoError(t, err)

	blk, err := NewFrameBlock(pools, nil, col)
	require.NoError(t, err)
	blk.SetValues(values)
	require.True(t, blk.IsPureMatrix())

	// A source whose Vec type changes between views cannot be built from a
	// Buffer, so corrupt the column directly.
	col.vec = memory.VecOf([]float64{0, 1, 2, 3})
	requireAssertionPanic(t, func() { blk.IsPureMatrix() })

	col.vec = values.vec
	blk.Dispose()
}

func TestDataBlock_TryGetNextBlock(t *testing.T) {
	pools := newTestPools(t)
	first := NewBlock(pools)
	second := NewBlock(pools)
	defer first.Dispose()
	defer second.Dispose()

	require.Nil(t, first.TryGetNextBlock(), "unknown without link or lookup")

	calls := 0
	first.SetNextBlockLookup(func(b *DataBlock) *DataBlock {
		calls++
		require.Same(t, first, b)
		return second
	})
	require.Same(t, second, first.TryGetNextBlock())
	require.Equal(t, 1, calls)

	third := NewBlock(pools)
	defer third.Dispose()
	first.SetNextBlock(third)
	require.Same(t, third, first.TryGetNextBlock())
	require.Equal(t, 1, calls, "a linked block skips the lookup")

	first.SetNextBlock(nil)
	first.ClearNextBlockLookup()
	require.Nil(t, first.TryGetNextBlock())
}

func TestDataBlock_DisposeDoesNotDisposeNextBlock(t *testing.T) {
	pools := newTestPools(t)
	next := NewVectorBlock(pools, nil, newVector(t, pools, []float64{1}))
	blk := NewVectorBlock(pools, nil, newVector(t, pools, []float64{2}))
	blk.SetNextBlock(next)

	blk.Dispose()
	require.False(t, next.IsDisposed())
	require.True(t, next.IsValid())

	next.Dispose()
}

func TestDataBlock_DisposeIdempotent(t *testing.T) {
	pools := newTestPools(t, WithBlockCapacity(1))
	shared := newVector(t, pools, []float64{1, 2})

	blk, err := NewFrameBlock(pools, nil, shared, shared)
	require.NoError(t, err)

	require.NotPanics(t, blk.Dispose, "a column listed twice is disposed once")
	require.True(t, shared.IsDisposed())
	require.NotPanics(t, blk.Dispose)

	require.Panics(t, func() { blk.SetRowLength(1) })
}

func TestDataBlock_UseAfterDisposePanics(t *testing.T) {
	pools := newTestPools(t)
	blk, err := NewMatrixBlock(pools, nil, newVector(t, pools, []float64{1, 2, 3, 4}), 2)
	require.NoError(t, err)
	blk.Dispose()

	tests := []struct {
		name string
		call func()
	}{
		{"RowIndex", func() { blk.RowIndex() }},
		{"Values", func() { blk.Values() }},
		{"ColumnIndex", func() { blk.ColumnIndex() }},
		{"Columns", func() { blk.Columns() }},
		{"RowLength", func() { blk.RowLength() }},
		{"RowCount", func() { blk.RowCount() }},
		{"Mutability", func() { blk.Mutability() }},
		{"TryGetNextBlock", func() { blk.TryGetNextBlock() }},
		{"ClearNextBlockLookup", blk.ClearNextBlockLookup},
		{"IsAnyColumnShared", func() { blk.IsAnyColumnShared() }},
		{"IsAllColumnsShared", func() { blk.IsAllColumnsShared() }},
		{"IsPureMatrix", func() { blk.IsPureMatrix() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireAssertionPanic(t, tt.call)
		})
	}

	require.True(t, blk.IsDisposed())
	require.False(t, blk.IsValid())
	require.NotPanics(t, blk.Dispose)
}

func TestDataBlock_Setters(t *testing.T) {
	pools := newTestPools(t)
	blk := NewBlock(pools)

	blk.SetMutability(AppendOnly)
	require.Equal(t, AppendOnly, blk.Mutability())
	require.Equal(t, "AppendOnly", blk.Mutability().String())

	values := newVector(t, pools, []int64{1, 2, 3})
	blk.SetValues(values)
	blk.SetRowLength(2)
	require.Equal(t, 2, blk.RowLength())
	require.Equal(t, 3, blk.RowCount())

	colIndex := newVector(t, pools, []string{"a"})
	blk.SetColumnIndex(colIndex)
	require.Same(t, colIndex, blk.ColumnIndex())

	blk.Dispose()
	require.True(t, values.IsDisposed())
	require.True(t, colIndex.IsDisposed())
}
