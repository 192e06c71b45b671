package storage

import (
	"iter"
	"reflect"
	"runtime"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/internal/options"
	"github.com/arloliu/chunkframe/memory"
	"github.com/cockroachdb/errors"
)

// VectorStorage is a pooled, strided view over a memory.Source.
//
// Each VectorStorage holds at most one pin on its source. The logical length
// is ceil(window/stride), optionally capped by WithElementLength, and
// logical index i maps to element i*stride of the window.
//
// A VectorStorage is not safe for concurrent mutation. Disposing distinct
// views that share a source concurrently is safe.
type VectorStorage struct {
	source memory.Source
	handle memory.Handle
	vec    memory.Vec
	offset int
	stride int
	length int
	pools  *Pools

	finalizer bool
}

type viewSpec struct {
	stride          int
	elementLength   int
	externallyOwned bool
}

// ViewOption configures Create and Slice.
type ViewOption = options.Option[*viewSpec]

// WithStride sets the element step between logical indices. Defaults to 1.
func WithStride(stride int) ViewOption {
	return options.NoError(func(s *viewSpec) {
		s.stride = stride
	})
}

// WithElementLength caps the logical length. -1, the default, means no cap.
func WithElementLength(n int) ViewOption {
	return options.NoError(func(s *viewSpec) {
		s.elementLength = n
	})
}

// ExternallyOwned creates the view without pinning the source: the caller
// asserts it already holds a pin that outlives the view.
func ExternallyOwned() ViewOption {
	return options.NoError(func(s *viewSpec) {
		s.externallyOwned = true
	})
}

// Create builds a VectorStorage over elements [start, start+length) of source.
//
// Parameters:
//   - pools: Instance pools, nil selects DefaultPools
//   - source: Memory source to view
//   - start: First element of the window
//   - length: Number of elements in the window
//   - opts: WithStride, WithElementLength, ExternallyOwned
//
// Returns:
//   - *VectorStorage: The new view, holding one pin on source unless externally owned
//   - error: ErrNilSource, or ErrOutOfRange for a bad window, stride or element length
func Create(pools *Pools, source memory.Source, start, length int, opts ...ViewOption) (*VectorStorage, error) {
	if source == nil {
		return nil, errs.ErrNilSource
	}
	if source.IsReleased() {
		return nil, errors.Wrap(errs.ErrNilSource, "source already released")
	}

	vec, err := source.Vec().Slice(start, length)
	if err != nil {
		return nil, err
	}

	return newView(resolvePools(pools), source, vec, start, opts)
}

// Slice builds a new VectorStorage over elements [start, start+length) of
// this view's window, sharing its source.
//
// The new view takes its own pin unless ExternallyOwned is given, so it may
// outlive vs. Stride and element length are not inherited.
func (vs *VectorStorage) Slice(start, length int, opts ...ViewOption) (*VectorStorage, error) {
	vs.mustBeLive()

	vec, err := vs.vec.Slice(start, length)
	if err != nil {
		return nil, err
	}

	return newView(vs.pools, vs.source, vec, vs.offset+start, opts)
}

func newView(pools *Pools, source memory.Source, vec memory.Vec, offset int, opts []ViewOption) (*VectorStorage, error) {
	spec := viewSpec{stride: 1, elementLength: -1}
	if err := options.Apply(&spec, opts...); err != nil {
		return nil, err
	}
	if spec.stride < 1 {
		return nil, errors.Wrapf(errs.ErrOutOfRange, "stride %d", spec.stride)
	}

	length := (vec.Len() + spec.stride - 1) / spec.stride
	switch {
	case spec.elementLength == -1:
	case spec.elementLength >= 0 && spec.elementLength <= length:
		length = spec.elementLength
	default:
		return nil, errors.Wrapf(errs.ErrOutOfRange, "element length %d exceeds capacity %d", spec.elementLength, length)
	}

	vs := pools.vectors.Allocate()
	vs.source = source
	vs.vec = vec
	vs.offset = offset
	vs.stride = spec.stride
	vs.length = length
	vs.pools = pools
	if !spec.externallyOwned {
		vs.handle = source.Pin(offset)
	}

	if pools.cfg.LeakDetection {
		vs.finalizer = true
		runtime.SetFinalizer(vs, (*VectorStorage).finalize)
	}

	return vs, nil
}

// Dispose releases the pin held by vs and returns it to its pool.
//
// The pin release and the transition to the disposed state happen under the
// source lock, so of several views sharing a source exactly one observes the
// final release. Panics if vs is already disposed.
func (vs *VectorStorage) Dispose() {
	src := vs.source
	if src == nil {
		panic(errors.AssertionFailedf("storage: dispose of a disposed vector storage"))
	}

	src.Lock()
	if vs.source == nil {
		src.Unlock()
		panic(errors.AssertionFailedf("storage: concurrent dispose of a vector storage"))
	}
	vs.handle.Release()
	vs.source = nil
	src.Unlock()

	pools := vs.pools
	vs.reset()
	pools.vectors.Free(vs)
}

// finalize is the leak safety net: it runs only for views that became
// unreachable without Dispose.
func (vs *VectorStorage) finalize() {
	src := vs.source
	if src == nil {
		return
	}

	pools := vs.pools
	pools.leaks.Add(1)
	pools.cfg.Logger.Warn("vector storage was not disposed",
		"type", vs.vec.Type(),
		"offset", vs.offset,
		"length", vs.length,
		"stride", vs.stride,
	)

	src.Lock()
	vs.handle.Release()
	vs.source = nil
	src.Unlock()
}

func (vs *VectorStorage) reset() {
	if vs.finalizer {
		runtime.SetFinalizer(vs, nil)
	}
	*vs = VectorStorage{}
}

func (vs *VectorStorage) mustBeLive() {
	if vs.source == nil {
		panic(errors.AssertionFailedf("storage: use of a disposed vector storage"))
	}
}

// IsDisposed reports whether vs has been disposed.
func (vs *VectorStorage) IsDisposed() bool {
	return vs.source == nil
}

// Length returns the logical number of elements.
func (vs *VectorStorage) Length() int {
	return vs.length
}

// Stride returns the element step between logical indices.
func (vs *VectorStorage) Stride() int {
	return vs.stride
}

// Type returns the element type of the underlying source.
func (vs *VectorStorage) Type() reflect.Type {
	return vs.vec.Type()
}

// Vec returns the raw, unstrided window.
func (vs *VectorStorage) Vec() memory.Vec {
	return vs.vec
}

// Source returns the memory source, nil once disposed.
func (vs *VectorStorage) Source() memory.Source {
	return vs.source
}

// Get returns the element at logical index i.
func (vs *VectorStorage) Get(i int) (any, error) {
	vs.mustBeLive()
	if uint(i) >= uint(vs.length) {
		return nil, errors.Wrapf(errs.ErrOutOfRange, "index %d of %d", i, vs.length)
	}

	return vs.vec.DangerousGet(i * vs.stride), nil
}

// Set stores value at logical index i.
//
// Returns ErrOutOfRange for a bad index and ErrTypeMismatch if value does
// not have the element type.
func (vs *VectorStorage) Set(i int, value any) error {
	vs.mustBeLive()
	if uint(i) >= uint(vs.length) {
		return errors.Wrapf(errs.ErrOutOfRange, "index %d of %d", i, vs.length)
	}

	return vs.vec.Set(i*vs.stride, value)
}

// DangerousGet returns the element at logical index i without validation.
func (vs *VectorStorage) DangerousGet(i int) any {
	return vs.vec.DangerousGet(i * vs.stride)
}

// DangerousSet stores value at logical index i without validation.
func (vs *VectorStorage) DangerousSet(i int, value any) {
	vs.vec.DangerousSet(i*vs.stride, value)
}

// SharesSource reports whether a and b are live views over the same source.
func SharesSource(a, b *VectorStorage) bool {
	if a == nil || b == nil || a.source == nil {
		return false
	}

	return a.source == b.source
}

func typedElems[T any](vs *VectorStorage) ([]T, error) {
	vs.mustBeLive()
	elems, ok := memory.Elems[T](vs.vec)
	if !ok {
		return nil, errors.Wrapf(errs.ErrTypeMismatch, "%s vector accessed as %s", vs.vec.Type(), reflect.TypeFor[T]())
	}

	return elems, nil
}

// At returns the element at logical index i as a T.
func At[T any](vs *VectorStorage, i int) (T, error) {
	var zero T
	elems, err := typedElems[T](vs)
	if err != nil {
		return zero, err
	}
	if uint(i) >= uint(vs.length) {
		return zero, errors.Wrapf(errs.ErrOutOfRange, "index %d of %d", i, vs.length)
	}

	return elems[i*vs.stride], nil
}

// DangerousAt returns the element at logical index i without validation.
// Panics if vs does not hold T elements.
func DangerousAt[T any](vs *VectorStorage, i int) T {
	elems, _ := memory.Elems[T](vs.vec)
	return elems[i*vs.stride]
}

// SetAt stores v at logical index i.
func SetAt[T any](vs *VectorStorage, i int, v T) error {
	ref, err := Ref[T](vs, i)
	if err != nil {
		return err
	}
	*ref = v

	return nil
}

// Ref returns a pointer to the element at logical index i. The pointer is
// valid only while vs, or another view of the same source, holds a pin.
func Ref[T any](vs *VectorStorage, i int) (*T, error) {
	elems, err := typedElems[T](vs)
	if err != nil {
		return nil, err
	}
	if uint(i) >= uint(vs.length) {
		return nil, errors.Wrapf(errs.ErrOutOfRange, "index %d of %d", i, vs.length)
	}

	return &elems[i*vs.stride], nil
}

// All returns an iterator over the logical elements of vs.
func All[T any](vs *VectorStorage) (iter.Seq2[int, T], error) {
	elems, err := typedElems[T](vs)
	if err != nil {
		return nil, err
	}
	length, stride := vs.length, vs.stride

	return func(yield func(int, T) bool) {
		for i := range length {
			if !yield(i, elems[i*stride]) {
				return
			}
		}
	}, nil
}
