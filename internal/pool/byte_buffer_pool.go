package pool

import (
	"io"
	"sync"
)

// Default sizes of the staging and scratch buffer pools.
const (
	StagingBufferDefaultSize  = 1024 * 4        // 4KiB
	StagingBufferMaxThreshold = 1024 * 256      // 256KiB
	ScratchBufferDefaultSize  = 1024 * 16       // 16KiB
	ScratchBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
	growStep                  = 1024 * 4        // 4KiB
	largeBufferThreshold      = 1024 * 1024 * 1 // 1MiB
)

// ByteBuffer is a growable byte slice used to stage serialized payloads and
// to hold decompressed frames.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, but retains the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite writes data to the buffer, growing it if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// SetLength sets the length of the buffer to n.
// Panics if n is negative or greater than the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// ExtendOrGrow extends the buffer by n bytes, growing it if necessary, and
// returns the n-byte window that was added.
func (bb *ByteBuffer) ExtendOrGrow(n int) []byte {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]

	return bb.B[start:]
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
// If the buffer has sufficient capacity, Grow does nothing.
//
// The growth strategy is as follows:
//   - For small buffers (<1MiB), grow by at least 4KiB to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := growStep
	if cap(bb.B) > largeBufferThreshold {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally to manage the buffers.
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int // Optional maximum size threshold for buffers
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// GetWithCapacity retrieves a ByteBuffer with room for at least n bytes.
func (bbp *ByteBufferPool) GetWithCapacity(n int) *ByteBuffer {
	bb := bbp.Get()
	bb.Grow(n)

	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		// Discard overly large buffers to prevent memory bloat
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	stagingDefaultPool = NewByteBufferPool(StagingBufferDefaultSize, StagingBufferMaxThreshold)
	scratchDefaultPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)
)

// GetStagingBuffer retrieves a ByteBuffer for staging a serialized payload.
func GetStagingBuffer() *ByteBuffer {
	return stagingDefaultPool.Get()
}

// PutStagingBuffer returns a staging ByteBuffer to its pool.
func PutStagingBuffer(bb *ByteBuffer) {
	stagingDefaultPool.Put(bb)
}

// GetScratchBuffer retrieves a ByteBuffer with room for at least n bytes,
// used as decompression scratch space.
func GetScratchBuffer(n int) *ByteBuffer {
	return scratchDefaultPool.GetWithCapacity(n)
}

// PutScratchBuffer returns a scratch ByteBuffer to its pool.
func PutScratchBuffer(bb *ByteBuffer) {
	scratchDefaultPool.Put(bb)
}
