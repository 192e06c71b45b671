package serializer

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/arloliu/chunkframe/datatypes"
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/internal/hash"
	"github.com/arloliu/chunkframe/section"
)

var timestampType = reflect.TypeFor[datatypes.Timestamp]()

// scalarEnum maps fixed-size scalar types to their header enum and size.
// int and uint are encoded as 64-bit values.
func scalarEnum(t reflect.Type) (format.TypeEnum, int, bool) {
	if t == timestampType {
		return format.TypeTimestamp, 8, true
	}

	switch t.Kind() {
	case reflect.Int8:
		return format.TypeInt8, 1, true
	case reflect.Int16:
		return format.TypeInt16, 2, true
	case reflect.Int32:
		return format.TypeInt32, 4, true
	case reflect.Int64, reflect.Int:
		return format.TypeInt64, 8, true
	case reflect.Uint8:
		return format.TypeUint8, 1, true
	case reflect.Uint16:
		return format.TypeUint16, 2, true
	case reflect.Uint32:
		return format.TypeUint32, 4, true
	case reflect.Uint64, reflect.Uint:
		return format.TypeUint64, 8, true
	case reflect.Float32:
		return format.TypeFloat32, 4, true
	case reflect.Float64:
		return format.TypeFloat64, 8, true
	case reflect.Bool:
		return format.TypeBool, 1, true
	default:
		return format.TypeNone, 0, false
	}
}

// layoutSize returns the encoding/binary size of t, or -1 if t cannot be
// decoded with encoding/binary (platform sized ints, pointers, unexported
// fields).
func layoutSize(t reflect.Type) int {
	if !settable(t) {
		return -1
	}

	return binary.Size(reflect.Zero(t).Interface())
}

func settable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name != "_" && !f.IsExported() {
				return false
			}
			if !settable(f.Type) {
				return false
			}
		}

		return true
	case reflect.Array:
		return settable(t.Elem())
	default:
		return true
	}
}

// typeName is the stable name hashed into user type tags.
func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	return t.String()
}

// describe computes the type descriptor of t and its fixed binary payload
// size, 0 when t has no fixed-size binary layout.
//
// The returned header carries no format bits.
func describe(t reflect.Type) (section.Header, int) {
	if enum, size, ok := scalarEnum(t); ok {
		return section.NewHeader(enum, uint8(size), 0, format.Text), size
	}

	switch t.Kind() {
	case reflect.String:
		return section.NewHeader(format.TypeString, 0, 0, format.Text), 0
	case reflect.Slice:
		elem := t.Elem()
		if elem == reflect.TypeFor[byte]() {
			return section.NewHeader(format.TypeBytes, 0, 0, format.Text), 0
		}

		return section.NewHeader(format.TypeArray, 0, uint8(elementEnum(elem)), format.Text), 0
	case reflect.Array:
		if n := t.Len(); n > 0 && n <= math.MaxUint8 {
			elemSize := layoutSize(t.Elem())
			if elemSize > 0 && elemSize <= math.MaxUint8 {
				return section.NewHeader(format.TypeTupleTN, uint8(elemSize), uint8(n), format.Text), elemSize * n
			}
		}
	case reflect.Struct:
		if size := layoutSize(t); size > 0 && size <= math.MaxUint8 {
			return userHeader(t, uint8(size), 0), size
		}
	}

	return userHeader(t, 0, 0), 0
}

func elementEnum(t reflect.Type) format.TypeEnum {
	if enum, _, ok := scalarEnum(t); ok {
		return enum
	}
	if t.Kind() == reflect.String {
		return format.TypeString
	}

	return format.TypeUserType
}

// userHeader builds a user type descriptor. A zero tag selects the tag
// derived from the type name.
func userHeader(t reflect.Type, size uint8, tag uint8) section.Header {
	if tag == 0 {
		tag = hash.Tag(typeName(t))
	}

	return section.NewHeader(format.TypeUserType, size, tag, format.Text)
}
