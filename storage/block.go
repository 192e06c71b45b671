package storage

import (
	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

// Mutability describes how the owner of a block may change it.
type Mutability uint8

const (
	// ReadOnly blocks are never modified.
	ReadOnly Mutability = iota
	// Mutable blocks may be modified in place.
	Mutable
	// AppendOnly blocks only grow at the end.
	AppendOnly
)

func (m Mutability) String() string {
	switch m {
	case ReadOnly:
		return "ReadOnly"
	case Mutable:
		return "Mutable"
	case AppendOnly:
		return "AppendOnly"
	default:
		return "Unknown"
	}
}

// NextBlockLookup is an out-of-band strategy that finds the block following b.
// It returns nil when it cannot answer cheaply.
type NextBlockLookup func(b *DataBlock) *DataBlock

// DataBlock is one physical chunk of a series or table.
//
// Every method except Dispose, IsDisposed and IsValid panics with an
// assertion failure once the block is disposed.
//
// A block owns its row index, values, column index and columns. It does not
// own the block linked with SetNextBlock; the container owns the chain.
//
// Columns may alias the values source (structural sharing). A block with
// values and columns is valid only if at least one column shares the values
// source, so values never duplicates column data.
type DataBlock struct {
	rowLength   int
	rowIndex    *VectorStorage
	values      *VectorStorage
	columnIndex *VectorStorage
	columns     []*VectorStorage

	nextBlock     *DataBlock
	lookup        NextBlockLookup
	lookupEnabled bool

	mutability Mutability
	live       bool
	pools      *Pools
}

// NewBlock returns an empty block from pools (nil selects DefaultPools).
func NewBlock(pools *Pools) *DataBlock {
	pools = resolvePools(pools)

	b := pools.blocks.Allocate()
	b.pools = pools
	b.live = true

	return b
}

// NewVectorBlock returns a block holding a single values vector and an
// optional row index. The block takes ownership of both.
func NewVectorBlock(pools *Pools, rowIndex, values *VectorStorage) *DataBlock {
	b := NewBlock(pools)
	b.rowIndex = rowIndex
	b.values = values
	b.rowLength = b.RowCount()

	return b
}

// NewMatrixBlock returns a block over a row-major matrix stored in values.
//
// One strided column is created per matrix column. Each column pins the
// values source independently, so the block is a pure matrix.
//
// Parameters:
//   - pools: Instance pools, nil selects DefaultPools
//   - rowIndex: Optional row index, one element per row
//   - values: Row-major matrix data; its window must hold a whole number of rows
//   - columnCount: Number of columns, at least 1
//
// Returns:
//   - *DataBlock: Block owning rowIndex, values and the created columns
//   - error: ErrOutOfRange if columnCount is invalid or the window is not a whole number of rows
func NewMatrixBlock(pools *Pools, rowIndex, values *VectorStorage, columnCount int) (*DataBlock, error) {
	values.mustBeLive()

	n := values.vec.Len()
	if columnCount < 1 || n%columnCount != 0 {
		return nil, errors.Wrapf(errs.ErrOutOfRange, "%d elements do not form rows of %d columns", n, columnCount)
	}

	columns := make([]*VectorStorage, columnCount)
	for j := range columns {
		col, err := values.Slice(j, n-j, WithStride(columnCount))
		if err != nil {
			for _, c := range columns[:j] {
				c.Dispose()
			}

			return nil, err
		}
		columns[j] = col
	}

	b := NewBlock(pools)
	b.rowIndex = rowIndex
	b.values = values
	b.columns = columns
	b.rowLength = b.RowCount()

	return b, nil
}

// NewFrameBlock returns a block of independent columns with an optional row index.
//
// Returns ErrEmptyColumns if no column is given.
func NewFrameBlock(pools *Pools, rowIndex *VectorStorage, columns ...*VectorStorage) (*DataBlock, error) {
	if len(columns) == 0 {
		return nil, errs.ErrEmptyColumns
	}

	b := NewBlock(pools)
	b.rowIndex = rowIndex
	b.columns = columns
	b.rowLength = b.RowCount()

	return b, nil
}

func (b *DataBlock) mustBeLive() {
	if !b.live {
		panic(errors.AssertionFailedf("storage: use of a disposed data block"))
	}
}

// RowIndex returns the row index vector, or nil.
func (b *DataBlock) RowIndex() *VectorStorage {
	b.mustBeLive()

	return b.rowIndex
}

// Values returns the values vector, or nil.
func (b *DataBlock) Values() *VectorStorage {
	b.mustBeLive()

	return b.values
}

// ColumnIndex returns the column index vector, or nil.
func (b *DataBlock) ColumnIndex() *VectorStorage {
	b.mustBeLive()

	return b.columnIndex
}

// Columns returns the columns, or nil. The slice must not be modified.
func (b *DataBlock) Columns() []*VectorStorage {
	b.mustBeLive()

	return b.columns
}

// RowLength returns the number of rows in use, which may be less than RowCount.
func (b *DataBlock) RowLength() int {
	b.mustBeLive()

	return b.rowLength
}

// Mutability returns the mutability of the block.
func (b *DataBlock) Mutability() Mutability {
	b.mustBeLive()

	return b.mutability
}

// SetRowLength sets the number of rows in use.
func (b *DataBlock) SetRowLength(n int) {
	b.mustBeLive()
	b.rowLength = n
}

// SetMutability sets the mutability of the block.
func (b *DataBlock) SetMutability(m Mutability) {
	b.mustBeLive()
	b.mutability = m
}

// SetRowIndex replaces the row index. The previous one is not disposed.
func (b *DataBlock) SetRowIndex(vs *VectorStorage) {
	b.mustBeLive()
	b.rowIndex = vs
}

// SetValues replaces the values vector. The previous one is not disposed.
func (b *DataBlock) SetValues(vs *VectorStorage) {
	b.mustBeLive()
	b.values = vs
}

// SetColumnIndex replaces the column index. The previous one is not disposed.
func (b *DataBlock) SetColumnIndex(vs *VectorStorage) {
	b.mustBeLive()
	b.columnIndex = vs
}

// SetColumns replaces the columns. A nil slice removes them; an empty
// non-nil slice is rejected with ErrEmptyColumns. The previous columns are
// not disposed.
func (b *DataBlock) SetColumns(columns []*VectorStorage) error {
	b.mustBeLive()
	if columns != nil && len(columns) == 0 {
		return errs.ErrEmptyColumns
	}
	b.columns = columns

	return nil
}

// SetNextBlock links the block that follows b. b does not take ownership of next.
func (b *DataBlock) SetNextBlock(next *DataBlock) {
	b.mustBeLive()
	b.nextBlock = next
}

// SetNextBlockLookup installs a fallback lookup used by TryGetNextBlock when
// no next block is linked. A nil fn disables the fallback.
func (b *DataBlock) SetNextBlockLookup(fn NextBlockLookup) {
	b.mustBeLive()
	b.lookup = fn
	b.lookupEnabled = fn != nil
}

// ClearNextBlockLookup removes the fallback lookup.
func (b *DataBlock) ClearNextBlockLookup() {
	b.mustBeLive()
	b.lookup = nil
	b.lookupEnabled = false
}

// TryGetNextBlock returns the block following b if it can be found cheaply.
//
// A nil result means unknown, not that b is the last block: callers must fall
// back to an authoritative lookup.
func (b *DataBlock) TryGetNextBlock() *DataBlock {
	b.mustBeLive()
	if b.nextBlock != nil {
		return b.nextBlock
	}
	if b.lookupEnabled {
		return b.lookup(b)
	}

	return nil
}

// RowCount returns the row capacity of the block: the length of the first
// column, else of values, else of the row index.
func (b *DataBlock) RowCount() int {
	b.mustBeLive()
	switch {
	case len(b.columns) > 0:
		return b.columns[0].Length()
	case b.values != nil:
		return b.values.Length()
	case b.rowIndex != nil:
		return b.rowIndex.Length()
	default:
		return 0
	}
}

// IsAnyColumnShared reports whether at least one column aliases the values source.
func (b *DataBlock) IsAnyColumnShared() bool {
	b.mustBeLive()
	if b.values == nil {
		return false
	}
	for _, col := range b.columns {
		if SharesSource(col, b.values) {
			return true
		}
	}

	return false
}

// IsAllColumnsShared reports whether every column aliases the values source.
// It is false when the block has no values or no columns.
func (b *DataBlock) IsAllColumnsShared() bool {
	b.mustBeLive()
	if b.values == nil || len(b.columns) == 0 {
		return false
	}
	for _, col := range b.columns {
		if !SharesSource(col, b.values) {
			return false
		}
	}

	return true
}

// IsPureMatrix reports whether the block is a dense row-major matrix: values
// is present and every column aliases its source.
//
// Panics if an aliased column has a different element type than values.
func (b *DataBlock) IsPureMatrix() bool {
	if !b.IsAllColumnsShared() {
		return false
	}
	for i, col := range b.columns {
		if col.Type() != b.values.Type() {
			panic(errors.AssertionFailedf("storage: column %d shares the values source with element type %s, values are %s",
				i, col.Type(), b.values.Type()))
		}
	}

	return true
}

// IsValid reports whether the block satisfies its structural invariants:
// all columns have equal length, values (when columns exist) shares its
// source with at least one column, and the row index length matches the row
// count. A disposed block is never valid.
func (b *DataBlock) IsValid() bool {
	if b.IsDisposed() || !b.live {
		return false
	}

	rows := -1
	if b.columns != nil {
		if len(b.columns) == 0 {
			return false
		}
		rows = b.columns[0].Length()
		for _, col := range b.columns[1:] {
			if col.Length() != rows {
				return false
			}
		}
		if b.values != nil && !b.IsAnyColumnShared() {
			return false
		}
	} else if b.values != nil {
		rows = b.values.Length()
	}

	if b.rowIndex != nil && b.rowIndex.Length() != rows {
		return false
	}

	return true
}

// IsDisposed reports whether the block holds neither values nor columns.
func (b *DataBlock) IsDisposed() bool {
	return b.values == nil && b.columns == nil
}

// Dispose disposes the columns, values, row index and column index, unlinks
// the next block without disposing it, and returns b to its pool.
//
// A vector that appears more than once in the block is disposed once.
// Calling Dispose again is a no-op.
func (b *DataBlock) Dispose() {
	if !b.live {
		return
	}

	disposed := make([]*VectorStorage, 0, len(b.columns)+3)
	dispose := func(vs *VectorStorage) {
		if vs == nil || containsVector(disposed, vs) {
			return
		}
		disposed = append(disposed, vs)
		if !vs.IsDisposed() {
			vs.Dispose()
		}
	}

	for _, col := range b.columns {
		dispose(col)
	}
	dispose(b.values)
	dispose(b.rowIndex)
	dispose(b.columnIndex)

	pools := b.pools
	*b = DataBlock{}
	pools.blocks.Free(b)
}

func containsVector(list []*VectorStorage, vs *VectorStorage) bool {
	for _, v := range list {
		if v == vs {
			return true
		}
	}

	return false
}
