package serializer

import (
	"bytes"
	"encoding/binary"

	"github.com/arloliu/chunkframe/datatypes"
	"github.com/arloliu/chunkframe/encoding"
	"github.com/arloliu/chunkframe/endian"
	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
	"github.com/cockroachdb/errors"
)

// BinaryCodec is a binary representation of T.
//
// Codecs are registered with Register. A codec must be deterministic: the
// bytes appended for a value are what ReadBinary consumes to rebuild it.
// Violations of the size contract are programming errors and panic.
type BinaryCodec[T any] interface {
	// FixedSize returns the encoded size shared by every value, at most 255,
	// or 0 if the size depends on the value.
	FixedSize() int
	// AppendBinary appends the encoding of v to dst and returns the extended slice.
	// A variable-size codec must append at least one byte.
	AppendBinary(dst []byte, v T) ([]byte, error)
	// ReadBinary decodes one value from the start of src and returns the
	// number of bytes consumed. The value must not retain src.
	ReadBinary(src []byte) (T, int, error)
}

// builtinCodec returns the built-in variable-size codec for T, if any,
// together with the element enum recorded in the header.
func builtinCodec[T any]() (BinaryCodec[T], format.TypeEnum, bool) {
	var codec any
	var elem format.TypeEnum

	switch any(*new(T)).(type) {
	case string:
		codec = stringCodec{}
	case []byte:
		codec = bytesCodec{}
	case []int8:
		codec, elem = sliceCodec[int8]{size: 1}, format.TypeInt8
	case []int16:
		codec, elem = sliceCodec[int16]{size: 2}, format.TypeInt16
	case []int32:
		codec, elem = sliceCodec[int32]{size: 4}, format.TypeInt32
	case []int64:
		codec, elem = sliceCodec[int64]{size: 8}, format.TypeInt64
	case []uint16:
		codec, elem = sliceCodec[uint16]{size: 2}, format.TypeUint16
	case []uint32:
		codec, elem = sliceCodec[uint32]{size: 4}, format.TypeUint32
	case []uint64:
		codec, elem = sliceCodec[uint64]{size: 8}, format.TypeUint64
	case []float32:
		codec, elem = sliceCodec[float32]{size: 4}, format.TypeFloat32
	case []float64:
		codec, elem = sliceCodec[float64]{size: 8}, format.TypeFloat64
	case []bool:
		codec, elem = sliceCodec[bool]{size: 1}, format.TypeBool
	case []datatypes.Timestamp:
		codec, elem = timestampsCodec{}, format.TypeTimestamp
	case []string:
		codec, elem = stringsCodec{}, format.TypeString
	default:
		return nil, 0, false
	}

	typed, ok := codec.(BinaryCodec[T])

	return typed, elem, ok
}

type stringCodec struct{}

func (stringCodec) FixedSize() int { return 0 }

func (stringCodec) AppendBinary(dst []byte, v string) ([]byte, error) {
	return append(dst, v...), nil
}

func (stringCodec) ReadBinary(src []byte) (string, int, error) {
	return string(src), len(src), nil
}

type bytesCodec struct{}

func (bytesCodec) FixedSize() int { return 0 }

func (bytesCodec) AppendBinary(dst []byte, v []byte) ([]byte, error) {
	return append(dst, v...), nil
}

func (bytesCodec) ReadBinary(src []byte) ([]byte, int, error) {
	if len(src) == 0 {
		return nil, 0, nil
	}

	return bytes.Clone(src), len(src), nil
}

// sliceCodec stores a slice of fixed-size numbers as consecutive
// little-endian elements; the count follows from the payload length.
type sliceCodec[E any] struct {
	size int
}

func (sliceCodec[E]) FixedSize() int { return 0 }

func (c sliceCodec[E]) AppendBinary(dst []byte, v []E) ([]byte, error) {
	return binary.Append(dst, endian.GetFrameEngine(), v)
}

func (c sliceCodec[E]) ReadBinary(src []byte) ([]E, int, error) {
	if len(src)%c.size != 0 {
		return nil, 0, errors.Wrapf(errs.ErrCorruptInput, "%d bytes is not a multiple of element size %d", len(src), c.size)
	}
	if len(src) == 0 {
		return nil, 0, nil
	}

	out := make([]E, len(src)/c.size)
	n, err := binary.Decode(src, endian.GetFrameEngine(), out)
	if err != nil {
		return nil, 0, errs.Corrupt(err)
	}

	return out, n, nil
}

// timestampsCodec stores [uvarint count][delta-of-delta stream].
type timestampsCodec struct{}

func (timestampsCodec) FixedSize() int { return 0 }

func (timestampsCodec) AppendBinary(dst []byte, v []datatypes.Timestamp) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(v)))
	enc := encoding.NewTimestampDeltaEncoder(dst)
	for _, ts := range v {
		enc.Write(ts.Nanos())
	}

	return enc.Bytes(), nil
}

func (timestampsCodec) ReadBinary(src []byte) ([]datatypes.Timestamp, int, error) {
	count, n, err := readCount(src)
	if err != nil || count == 0 {
		return nil, n, err
	}

	raw, m, err := encoding.NewTimestampDeltaDecoder().Decode(make([]int64, 0, count), src[n:], count)
	if err != nil {
		return nil, 0, err
	}

	out := make([]datatypes.Timestamp, len(raw))
	for i, ts := range raw {
		out[i] = datatypes.Timestamp(ts)
	}

	return out, n + m, nil
}

// stringsCodec stores [uvarint count][uvarint length, bytes]...
type stringsCodec struct{}

func (stringsCodec) FixedSize() int { return 0 }

func (stringsCodec) AppendBinary(dst []byte, v []string) ([]byte, error) {
	dst = binary.AppendUvarint(dst, uint64(len(v)))
	enc := encoding.NewVarStringEncoder(dst)
	enc.WriteSlice(v)

	return enc.Bytes(), nil
}

func (stringsCodec) ReadBinary(src []byte) ([]string, int, error) {
	count, n, err := readCount(src)
	if err != nil || count == 0 {
		return nil, n, err
	}

	out, m, err := encoding.NewVarStringDecoder().Decode(make([]string, 0, count), src[n:], count)
	if err != nil {
		return nil, 0, err
	}

	return out, n + m, nil
}

// readCount reads a uvarint element count. Every element takes at least one
// byte, so a count larger than the remaining input is rejected before any
// allocation.
func readCount(src []byte) (int, int, error) {
	return readCountDense(src, 1)
}

// readCountDense is readCount for encodings that pack up to perByte
// elements into one byte.
func readCountDense(src []byte, perByte int) (int, int, error) {
	count, n := binary.Uvarint(src)
	if n <= 0 || count > uint64(len(src)-n)*uint64(perByte) { //nolint:gosec
		return 0, 0, errors.Wrap(errs.ErrCorruptInput, "malformed element count")
	}

	return int(count), n, nil //nolint:gosec // bounded by len(src)
}
