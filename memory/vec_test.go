package memory

import (
	"reflect"
	"testing"

	"github.com/arloliu/chunkframe/errs"
	"github.com/stretchr/testify/require"
)

func TestVec_TypedAccess(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	v := VecOf(data)

	require.Equal(t, 4, v.Len())
	require.Equal(t, reflect.TypeFor[float64](), v.Type())

	elems, ok := Elems[float64](v)
	require.True(t, ok)
	elems[0] = 10
	require.Equal(t, 10.0, data[0], "Elems must not copy")

	_, ok = Elems[int64](v)
	require.False(t, ok)
}

func TestVec_Slice(t *testing.T) {
	v := VecOf([]int{0, 1, 2, 3, 4, 5})

	sub, err := v.Slice(2, 3)
	require.NoError(t, err)
	require.Equal(t, 3, sub.Len())

	elems, _ := Elems[int](sub)
	require.Equal(t, []int{2, 3, 4}, elems)

	tests := []struct {
		name          string
		start, length int
	}{
		{"negative start", -1, 2},
		{"negative length", 0, -1},
		{"past end", 4, 3},
		{"start past end", 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Slice(tt.start, tt.length)
			require.ErrorIs(t, err, errs.ErrOutOfRange)
		})
	}

	empty, err := v.Slice(6, 0)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}

func TestVec_GetSet(t *testing.T) {
	v := VecOf([]int32{7, 8})

	got, err := v.Get(1)
	require.NoError(t, err)
	require.Equal(t, int32(8), got)

	require.NoError(t, v.Set(0, int32(70)))
	require.Equal(t, int32(70), v.DangerousGet(0))

	_, err = v.Get(2)
	require.ErrorIs(t, err, errs.ErrOutOfRange)
	require.ErrorIs(t, v.Set(-1, int32(1)), errs.ErrOutOfRange)
	require.ErrorIs(t, v.Set(0, "text"), errs.ErrTypeMismatch)

	v.DangerousSet(1, int32(80))
	require.Equal(t, int32(80), v.DangerousGet(1))
	requireAssertionPanic(t, func() { v.DangerousSet(1, 1.5) })
}

func TestVec_Zero(t *testing.T) {
	var v Vec
	require.True(t, v.IsZero())
	require.Equal(t, 0, v.Len())
	require.Nil(t, v.Type())

	_, err := v.Get(0)
	require.ErrorIs(t, err, errs.ErrOutOfRange)

	s, err := v.Slice(0, 0)
	require.NoError(t, err)
	require.True(t, s.IsZero())
}

func TestSameType(t *testing.T) {
	a := VecOf([]int64{1})
	b := VecOf([]int64{2, 3})
	c := VecOf([]float64{1})

	require.True(t, SameType(a, b))
	require.False(t, SameType(a, c))
}
