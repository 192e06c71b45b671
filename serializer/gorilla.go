package serializer

import (
	"encoding/binary"

	"github.com/arloliu/chunkframe/encoding"
)

// GorillaCodec is a BinaryCodec for []float64 that applies Gorilla XOR
// compression, stored as [uvarint count][gorilla stream].
//
// It suits slowly changing series such as gauges. Register it to replace the
// built-in []float64 layout:
//
//	serializer.Register[[]float64](s, serializer.GorillaCodec{})
type GorillaCodec struct{}

var _ BinaryCodec[[]float64] = GorillaCodec{}

// FixedSize returns 0.
func (GorillaCodec) FixedSize() int { return 0 }

// AppendBinary appends the count and the Gorilla stream of v.
func (GorillaCodec) AppendBinary(dst []byte, v []float64) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(v)))
	enc := encoding.NewGorillaEncoder(dst)
	enc.WriteSlice(v)

	return enc.Bytes(), nil
}

// ReadBinary decodes a value written by AppendBinary.
func (GorillaCodec) ReadBinary(src []byte) ([]float64, int, error) {
	// Repeated values take one bit each.
	count, n, err := readCountDense(src, 8)
	if err != nil || count == 0 {
		return nil, n, err
	}

	out, m, err := encoding.NewGorillaDecoder().Decode(make([]float64, 0, count), src[n:], count)
	if err != nil {
		return nil, 0, err
	}

	return out, n + m, nil
}
