package pool

import "sync"

// SlicePool recycles typed backing slices for memory buffers.
//
// Slices with a capacity above maxCap are not retained, so a single large
// chunk does not pin memory after it is released.
type SlicePool[T any] struct {
	pool   sync.Pool
	maxCap int
}

// NewSlicePool creates a SlicePool that retains slices up to maxCap elements.
// A non-positive maxCap retains every slice.
func NewSlicePool[T any](maxCap int) *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return &[]T{} },
		},
		maxCap: maxCap,
	}
}

// Get retrieves a slice of exactly size elements.
//
// If the pooled slice has insufficient capacity, a new slice is allocated.
// The contents of a reused slice are cleared.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []T: A zeroed slice with length equal to size
func (p *SlicePool[T]) Get(size int) []T {
	ptr, _ := p.pool.Get().(*[]T)
	slice := *ptr
	if cap(slice) < size {
		return make([]T, size)
	}

	slice = slice[:size]
	clear(slice)

	return slice
}

// Put returns a slice to the pool.
func (p *SlicePool[T]) Put(slice []T) {
	if slice == nil || (p.maxCap > 0 && cap(slice) > p.maxCap) {
		return
	}

	slice = slice[:0]
	p.pool.Put(&slice)
}
