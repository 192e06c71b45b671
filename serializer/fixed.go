package serializer

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/arloliu/chunkframe/datatypes"
	"github.com/arloliu/chunkframe/endian"
	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

var le = endian.GetFrameEngine()

// putFixed writes the fixed layout of v into dst, which holds exactly the
// fixed size of T.
func putFixed[T any](dst []byte, v T) error {
	switch x := any(v).(type) {
	case int8:
		dst[0] = byte(x)
	case uint8:
		dst[0] = x
	case bool:
		dst[0] = 0
		if x {
			dst[0] = 1
		}
	case int16:
		le.PutUint16(dst, uint16(x)) //nolint:gosec
	case uint16:
		le.PutUint16(dst, x)
	case int32:
		le.PutUint32(dst, uint32(x)) //nolint:gosec
	case uint32:
		le.PutUint32(dst, x)
	case float32:
		le.PutUint32(dst, math.Float32bits(x))
	case int64:
		le.PutUint64(dst, uint64(x)) //nolint:gosec
	case uint64:
		le.PutUint64(dst, x)
	case float64:
		le.PutUint64(dst, math.Float64bits(x))
	case int:
		le.PutUint64(dst, uint64(x)) //nolint:gosec
	case uint:
		le.PutUint64(dst, uint64(x))
	case datatypes.Timestamp:
		le.PutUint64(dst, uint64(x)) //nolint:gosec
	default:
		// encoding/binary rejects platform sized kinds, named or not.
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.Int:
			le.PutUint64(dst, uint64(rv.Int())) //nolint:gosec
			return nil
		case reflect.Uint:
			le.PutUint64(dst, rv.Uint())
			return nil
		}
		if _, err := binary.Encode(dst, le, v); err != nil {
			return errors.Wrap(err, "encode fixed layout")
		}
	}

	return nil
}

// readFixed decodes the fixed layout of T from src, which holds exactly the
// fixed size of T.
func readFixed[T any](src []byte) (T, error) {
	var v T
	switch p := any(&v).(type) {
	case *int8:
		*p = int8(src[0]) //nolint:gosec
	case *uint8:
		*p = src[0]
	case *bool:
		*p = src[0] != 0
	case *int16:
		*p = int16(le.Uint16(src)) //nolint:gosec
	case *uint16:
		*p = le.Uint16(src)
	case *int32:
		*p = int32(le.Uint32(src)) //nolint:gosec
	case *uint32:
		*p = le.Uint32(src)
	case *float32:
		*p = math.Float32frombits(le.Uint32(src))
	case *int64:
		*p = int64(le.Uint64(src)) //nolint:gosec
	case *uint64:
		*p = le.Uint64(src)
	case *float64:
		*p = math.Float64frombits(le.Uint64(src))
	case *int:
		*p = int(int64(le.Uint64(src))) //nolint:gosec
	case *uint:
		*p = uint(le.Uint64(src))
	case *datatypes.Timestamp:
		*p = datatypes.Timestamp(le.Uint64(src)) //nolint:gosec
	default:
		switch rv := reflect.ValueOf(&v).Elem(); rv.Kind() {
		case reflect.Int:
			rv.SetInt(int64(le.Uint64(src))) //nolint:gosec
			return v, nil
		case reflect.Uint:
			rv.SetUint(le.Uint64(src))
			return v, nil
		}
		if _, err := binary.Decode(src, le, &v); err != nil {
			var zero T
			return zero, errs.Corrupt(errors.Wrap(err, "decode fixed layout"))
		}
	}

	return v, nil
}
