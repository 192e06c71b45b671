package memory

import (
	"sync"
	"sync/atomic"

	"github.com/arloliu/chunkframe/internal/pool"
	"github.com/cockroachdb/errors"
)

// Source is a reference-counted owner of a contiguous buffer.
//
// Implementations must be pointer types: sources are compared by identity
// to decide whether two views share memory. The embedded Locker serializes
// disposal decisions of the views that pin the source.
type Source interface {
	sync.Locker
	Unpinner

	// Pin increments the reference count and returns a handle that releases it.
	// offset is the element offset the caller intends to access.
	Pin(offset int) Handle
	// Vec returns an untyped view over the whole buffer.
	Vec() Vec
	// RefCount returns the current number of pins.
	RefCount() int32
	// IsReleased reports whether the buffer has been freed.
	IsReleased() bool
}

// Unpinner releases one pin of a Source.
type Unpinner interface {
	Unpin()
}

// Handle is a release handle returned by Source.Pin.
//
// The zero Handle owns nothing and releasing it is a no-op, which lets views
// that borrow an existing pin share the disposal path with views that own one.
type Handle struct {
	owner  Unpinner
	offset int
}

// NewHandle creates a handle that releases one pin of owner.
// It is intended for Source implementations.
func NewHandle(owner Unpinner, offset int) Handle {
	return Handle{owner: owner, offset: offset}
}

// Release releases the pin held by h. Releasing twice through the same
// Handle value is a no-op.
func (h *Handle) Release() {
	if h.owner == nil {
		return
	}
	owner := h.owner
	h.owner = nil
	owner.Unpin()
}

// IsZero reports whether h holds no pin.
func (h Handle) IsZero() bool {
	return h.owner == nil
}

// Offset returns the offset passed to Pin.
func (h Handle) Offset() int {
	return h.offset
}

// Buffer is the in-memory Source implementation backed by a Go slice.
type Buffer[T any] struct {
	mu        sync.Mutex
	data      []T
	refs      atomic.Int32
	released  atomic.Bool
	onRelease func([]T)
}

var _ Source = (*Buffer[byte])(nil)

// NewBuffer wraps data in a reference-counted Buffer with no pins.
func NewBuffer[T any](data []T) *Buffer[T] {
	return &Buffer[T]{data: data}
}

// NewBufferWithRelease wraps data and calls onRelease with it when the last pin is released.
func NewBufferWithRelease[T any](data []T, onRelease func([]T)) *Buffer[T] {
	return &Buffer[T]{data: data, onRelease: onRelease}
}

// Lock locks the buffer's mutex.
func (b *Buffer[T]) Lock() {
	b.mu.Lock()
}

// Unlock unlocks the buffer's mutex.
func (b *Buffer[T]) Unlock() {
	b.mu.Unlock()
}

// Pin increments the reference count.
//
// Panics if the buffer has already been released.
func (b *Buffer[T]) Pin(offset int) Handle {
	if b.released.Load() {
		panic(errors.AssertionFailedf("memory: pin of a released buffer"))
	}
	b.refs.Add(1)

	return NewHandle(b, offset)
}

// Unpin decrements the reference count and frees the buffer when it reaches zero.
//
// Panics if the count drops below zero.
func (b *Buffer[T]) Unpin() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic(errors.AssertionFailedf("memory: buffer unpinned more times than pinned"))
	}

	if !b.released.CompareAndSwap(false, true) {
		panic(errors.AssertionFailedf("memory: buffer released twice"))
	}

	data := b.data
	b.data = nil
	if b.onRelease != nil {
		b.onRelease(data)
	}
}

// Vec returns an untyped view over the whole buffer, or an empty Vec after release.
func (b *Buffer[T]) Vec() Vec {
	return VecOf(b.data)
}

// Data returns the backing slice, nil after release.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Len returns the number of elements in the buffer.
func (b *Buffer[T]) Len() int {
	return len(b.data)
}

// RefCount returns the current number of pins.
func (b *Buffer[T]) RefCount() int32 {
	return b.refs.Load()
}

// IsReleased reports whether the last pin has been released.
func (b *Buffer[T]) IsReleased() bool {
	return b.released.Load()
}

// Allocator hands out Buffers whose backing slices are recycled once the
// buffer is released.
type Allocator[T any] struct {
	slices *pool.SlicePool[T]
}

// NewAllocator creates an Allocator that retains backing slices of up to maxLen elements.
// A non-positive maxLen retains every slice.
func NewAllocator[T any](maxLen int) *Allocator[T] {
	return &Allocator[T]{slices: pool.NewSlicePool[T](maxLen)}
}

// Allocate returns a zeroed Buffer of n elements.
func (a *Allocator[T]) Allocate(n int) *Buffer[T] {
	return NewBufferWithRelease(a.slices.Get(n), a.slices.Put)
}
