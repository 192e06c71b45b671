package storage

import (
	"bytes"
	"log/slog"
	"reflect"
	"testing"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/memory"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func requireAssertionPanic(t *testing.T, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value must be an error, got %T", r)
		require.True(t, errors.IsAssertionFailure(err), "expected an assertion failure, got %v", err)
	}()
	fn()
}

func newTestPools(t *testing.T, opts ...PoolOption) *Pools {
	t.Helper()

	p, err := NewPools(opts...)
	require.NoError(t, err)

	return p
}

func sequence(n int) []int64 {
	s := make([]int64, n)
	for i := range s {
		s[i] = int64(i)
	}

	return s
}

func TestCreate_SlicingCapacity(t *testing.T) {
	pools := newTestPools(t)

	tests := []struct {
		name   string
		raw    int
		stride int
		want   int
	}{
		{"unit stride", 10, 1, 10},
		{"exact division", 9, 3, 3},
		{"rounds up", 10, 3, 4},
		{"stride larger than window", 2, 5, 1},
		{"empty window", 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := memory.NewBuffer(sequence(tt.raw))
			keep := buf.Pin(0)
			defer keep.Release()

			vs, err := Create(pools, buf, 0, tt.raw, WithStride(tt.stride))
			require.NoError(t, err)
			require.Equal(t, tt.want, vs.Length())
			vs.Dispose()

			exact, err := Create(pools, buf, 0, tt.raw, WithStride(tt.stride), WithElementLength(tt.want))
			require.NoError(t, err)
			require.Equal(t, tt.want, exact.Length())
			exact.Dispose()

			_, err = Create(pools, buf, 0, tt.raw, WithStride(tt.stride), WithElementLength(tt.want+1))
			require.ErrorIs(t, err, errs.ErrOutOfRange)
			require.Equal(t, int32(1), buf.RefCount(), "failed create must not pin")
		})
	}
}

func TestCreate_Errors(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(8))

	_, err := Create(pools, nil, 0, 1)
	require.ErrorIs(t, err, errs.ErrNilSource)

	_, err = Create(pools, buf, 4, 5)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = Create(pools, buf, 0, 8, WithStride(0))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	_, err = Create(pools, buf, 0, 8, WithElementLength(-2))
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	require.Zero(t, buf.RefCount())
}

func TestCreate_PinsAndReleases(t *testing.T) {
	pools := newTestPools(t)
	released := 0
	buf := memory.NewBufferWithRelease(sequence(16), func([]int64) { released++ })

	vs, err := Create(pools, buf, 0, 16)
	require.NoError(t, err)
	require.Equal(t, int32(1), buf.RefCount())

	sub, err := vs.Slice(4, 8)
	require.NoError(t, err)
	require.Equal(t, int32(2), buf.RefCount())
	require.True(t, SharesSource(vs, sub))

	vs.Dispose()
	require.Equal(t, 0, released, "slice must keep the source alive")

	v, err := At[int64](sub, 0)
	require.NoError(t, err)
	require.Equal(t, int64(4), v)

	sub.Dispose()
	require.Equal(t, 1, released)
	require.True(t, buf.IsReleased())
}

func TestCreate_ExternallyOwned(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(4))
	pin := buf.Pin(0)

	vs, err := Create(pools, buf, 0, 4, ExternallyOwned())
	require.NoError(t, err)
	require.Equal(t, int32(1), buf.RefCount())

	vs.Dispose()
	require.Equal(t, int32(1), buf.RefCount())

	pin.Release()
	require.True(t, buf.IsReleased())
}

func TestVectorStorage_StridedAccess(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(10))

	vs, err := Create(pools, buf, 0, 10, WithStride(3))
	require.NoError(t, err)
	defer vs.Dispose()

	require.Equal(t, 3, vs.Stride())
	require.Equal(t, reflect.TypeFor[int64](), vs.Type())

	got, err := vs.Get(3)
	require.NoError(t, err)
	require.Equal(t, int64(9), got)

	_, err = vs.Get(4)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	require.NoError(t, vs.Set(1, int64(30)))
	require.Equal(t, int64(30), buf.Data()[3])
	require.ErrorIs(t, vs.Set(1, "x"), errs.ErrTypeMismatch)
	require.ErrorIs(t, vs.Set(-1, int64(0)), errs.ErrOutOfRange)

	vs.DangerousSet(2, int64(60))
	require.Equal(t, int64(60), vs.DangerousGet(2))
	require.Equal(t, int64(60), DangerousAt[int64](vs, 2))

	require.NoError(t, SetAt(vs, 0, int64(-1)))
	ref, err := Ref[int64](vs, 0)
	require.NoError(t, err)
	require.Equal(t, int64(-1), *ref)

	_, err = At[float64](vs, 0)
	require.ErrorIs(t, err, errs.ErrTypeMismatch)
	_, err = At[int64](vs, 4)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	seq, err := All[int64](vs)
	require.NoError(t, err)
	var collected []int64
	for i, v := range seq {
		require.Equal(t, len(collected), i)
		collected = append(collected, v)
	}
	require.Equal(t, []int64{-1, 30, 60, 9}, collected)
}

func TestVectorStorage_SliceRelativeWindow(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(20))

	vs, err := Create(pools, buf, 5, 10)
	require.NoError(t, err)
	defer vs.Dispose()

	sub, err := vs.Slice(2, 6, WithStride(2), WithElementLength(3))
	require.NoError(t, err)
	defer sub.Dispose()

	require.Equal(t, 3, sub.Length())
	for i, want := range []int64{7, 9, 11} {
		got, err := At[int64](sub, i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = vs.Slice(8, 3)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	_, err = vs.Slice(0, 10, WithElementLength(11))
	require.ErrorIs(t, err, errs.ErrOutOfRange)
}

func TestVectorStorage_DoubleDisposePanics(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(4))

	vs, err := Create(pools, buf, 0, 4)
	require.NoError(t, err)

	vs.Dispose()
	require.True(t, vs.IsDisposed())
	requireAssertionPanic(t, vs.Dispose)
}

func TestVectorStorage_UseAfterDisposePanics(t *testing.T) {
	pools := newTestPools(t)
	buf := memory.NewBuffer(sequence(4))

	vs, err := Create(pools, buf, 0, 4)
	require.NoError(t, err)
	vs.Dispose()

	requireAssertionPanic(t, func() { _, _ = vs.Get(0) })
	requireAssertionPanic(t, func() { _, _ = vs.Slice(0, 1) })
	requireAssertionPanic(t, func() { _, _ = At[int64](vs, 0) })
}

func TestVectorStorage_ConcurrentDisposeReleasesOnce(t *testing.T) {
	const views = 64

	pools := newTestPools(t)
	released := 0
	buf := memory.NewBufferWithRelease(sequence(views), func([]int64) { released++ })

	parent, err := Create(pools, buf, 0, views)
	require.NoError(t, err)

	list := make([]*VectorStorage, views)
	for i := range list {
		list[i], err = parent.Slice(i, 1)
		require.NoError(t, err)
	}
	parent.Dispose()

	var g errgroup.Group
	for _, vs := range list {
		g.Go(func() error {
			vs.Dispose()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, 1, released)
	require.True(t, buf.IsReleased())
}

func TestSharesSource(t *testing.T) {
	pools := newTestPools(t)
	a := memory.NewBuffer(sequence(4))
	b := memory.NewBuffer(sequence(4))

	va, err := Create(pools, a, 0, 4)
	require.NoError(t, err)
	va2, err := Create(pools, a, 1, 2)
	require.NoError(t, err)
	vb, err := Create(pools, b, 0, 4)
	require.NoError(t, err)

	require.True(t, SharesSource(va, va2))
	require.False(t, SharesSource(va, vb))
	require.False(t, SharesSource(va, nil))

	va.Dispose()
	require.False(t, SharesSource(va, va2), "disposed views share nothing")

	va2.Dispose()
	vb.Dispose()
}

func TestVectorStorage_LeakFinalizer(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	pools := newTestPools(t, WithLeakDetection(true), WithLogger(logger))

	released := 0
	buf := memory.NewBufferWithRelease(sequence(4), func([]int64) { released++ })

	vs, err := Create(pools, buf, 0, 4)
	require.NoError(t, err)

	// Run the safety net directly; relying on the GC would make the test flaky.
	vs.finalize()

	require.Equal(t, uint64(1), pools.Leaks())
	require.Equal(t, 1, released)
	require.Contains(t, logs.String(), "vector storage was not disposed")

	vs.finalize()
	require.Equal(t, uint64(1), pools.Leaks(), "finalizer must run once")
}
