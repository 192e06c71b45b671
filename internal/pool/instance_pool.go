package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// DefaultInstanceCapacity returns the default capacity of an InstancePool,
// scaled to the number of usable CPUs.
func DefaultInstanceCapacity() int {
	return runtime.GOMAXPROCS(0) * 16
}

// Stats is a snapshot of InstancePool counters.
type Stats struct {
	// Allocated is the number of Allocate calls.
	Allocated uint64
	// Created is the number of instances built by the factory.
	Created uint64
	// Reused is the number of Allocate calls served from the free list.
	Reused uint64
	// Freed is the number of instances retained by Free.
	Freed uint64
	// Dropped is the number of instances discarded by Free because the pool was full.
	Dropped uint64
	// Idle is the number of instances currently held by the pool.
	Idle int
	// Capacity is the maximum number of idle instances.
	Capacity int
}

// InstancePool is a bounded, thread-safe free list of reusable instances.
//
// Unlike sync.Pool, instances are never reclaimed by the garbage collector
// while they sit in the pool, so a freed instance is guaranteed to be handed
// out by the next Allocate. The pool does not reset instances: callers must
// clear mutable fields before calling Free.
type InstancePool[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	factory  func() T

	allocated atomic.Uint64
	created   atomic.Uint64
	reused    atomic.Uint64
	freed     atomic.Uint64
	dropped   atomic.Uint64
}

// NewInstancePool creates a pool that retains at most capacity idle instances.
//
// Parameters:
//   - capacity: Maximum number of idle instances (non-positive selects DefaultInstanceCapacity)
//   - factory: Constructor used when the free list is empty
//
// Returns:
//   - *InstancePool[T]: Empty pool
func NewInstancePool[T any](capacity int, factory func() T) *InstancePool[T] {
	if capacity <= 0 {
		capacity = DefaultInstanceCapacity()
	}

	return &InstancePool[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
		factory:  factory,
	}
}

// Allocate pops an idle instance or constructs a new one.
func (p *InstancePool[T]) Allocate() T {
	p.allocated.Add(1)

	p.mu.Lock()
	if n := len(p.items); n > 0 {
		item := p.items[n-1]
		var zero T
		p.items[n-1] = zero
		p.items = p.items[:n-1]
		p.mu.Unlock()
		p.reused.Add(1)

		return item
	}
	p.mu.Unlock()

	p.created.Add(1)

	return p.factory()
}

// Free pushes an instance back if the pool is under capacity, otherwise
// drops it for the garbage collector.
//
// Returns:
//   - bool: true if the instance was retained
func (p *InstancePool[T]) Free(item T) bool {
	p.mu.Lock()
	if len(p.items) >= p.capacity {
		p.mu.Unlock()
		p.dropped.Add(1)

		return false
	}
	p.items = append(p.items, item)
	p.mu.Unlock()
	p.freed.Add(1)

	return true
}

// Capacity returns the maximum number of idle instances.
func (p *InstancePool[T]) Capacity() int {
	return p.capacity
}

// Stats returns a snapshot of the pool counters.
func (p *InstancePool[T]) Stats() Stats {
	p.mu.Lock()
	idle := len(p.items)
	p.mu.Unlock()

	return Stats{
		Allocated: p.allocated.Load(),
		Created:   p.created.Load(),
		Reused:    p.reused.Load(),
		Freed:     p.freed.Load(),
		Dropped:   p.dropped.Load(),
		Idle:      idle,
		Capacity:  p.capacity,
	}
}
