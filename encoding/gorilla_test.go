package encoding

import (
	"math"
	"slices"
	"testing"

	"github.com/arloliu/chunkframe/errs"
	"github.com/stretchr/testify/require"
)

func TestGorilla_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"single", []float64{42.5}},
		{"constant", slices.Repeat([]float64{1.25}, 100)},
		{"slowly changing", []float64{10, 10.5, 11, 11.5, 11.5, 12, 12.25}},
		{"sign changes", []float64{-1, 1, -1, 1}},
		{"specials", []float64{0, math.Inf(1), math.Inf(-1), math.MaxFloat64, math.SmallestNonzeroFloat64, -0.0}},
		{"wide xor", []float64{1, math.Float64frombits(1), math.Float64frombits(1 << 63), 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewGorillaEncoder([]byte{0xAA})
			enc.WriteSlice(tt.values)
			require.Equal(t, len(tt.values), enc.Len())

			data := enc.Bytes()
			require.Equal(t, byte(0xAA), data[0], "existing bytes must be kept")

			got, n, err := NewGorillaDecoder().Decode(nil, data[1:], len(tt.values))
			require.NoError(t, err)
			require.Equal(t, len(data)-1, n)
			require.Equal(t, len(tt.values), len(got))
			for i := range got {
				require.Equal(t, math.Float64bits(tt.values[i]), math.Float64bits(got[i]), "value %d", i)
			}

			iterated := slices.Collect(NewGorillaDecoder().All(data[1:], len(tt.values)))
			require.Equal(t, got, iterated)
		})
	}
}

func TestGorilla_ConstantValuesCompress(t *testing.T) {
	enc := NewGorillaEncoder(nil)
	enc.WriteSlice(slices.Repeat([]float64{99.9}, 1000))

	// 64 bits for the first value, one bit for each repeat.
	require.Len(t, enc.Bytes(), (64+999+7)/8)
}

func TestGorilla_Truncated(t *testing.T) {
	enc := NewGorillaEncoder(nil)
	enc.WriteSlice([]float64{1, 2, 3, 4.5})
	data := enc.Bytes()

	_, _, err := NewGorillaDecoder().Decode(nil, data[:len(data)-2], 4)
	require.ErrorIs(t, err, errs.ErrCorruptInput)

	_, _, err = NewGorillaDecoder().Decode(nil, data, 64)
	require.ErrorIs(t, err, errs.ErrCorruptInput)

	require.Len(t, slices.Collect(NewGorillaDecoder().All(data[:4], 4)), 0)
}

func TestGorilla_ReuseWithoutBlockIsCorrupt(t *testing.T) {
	// First value 0, then control bits 10 with no block header before.
	data := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0b10000000, 0}

	_, _, err := NewGorillaDecoder().Decode(nil, data, 2)
	require.ErrorIs(t, err, errs.ErrCorruptInput)
}
