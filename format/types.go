package format

type (
	// Format is the serialization format requested by a caller or recorded in a frame header.
	//
	// Bit 0-2 hold the CompressionType, bit 3 is the binary flag. A zero Format
	// means uncompressed text (JSON).
	Format uint8
	// CompressionType identifies the payload compression method.
	CompressionType uint8
	// TypeEnum identifies the category of a serialized value in the frame header.
	TypeEnum uint8
)

const (
	CompressionNone   CompressionType = 0x0 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x1 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x2 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x3 // CompressionLZ4 represents LZ4 block compression.
	CompressionSnappy CompressionType = 0x4 // CompressionSnappy represents Snappy block compression.
)

const (
	CompressionMask Format = 0x07 // CompressionMask selects the compression method bits.
	BinaryFlag      Format = 0x08 // BinaryFlag marks binary (non-text) payloads.
	FormatMask      Format = 0x0F // FormatMask selects every bit that belongs to Format.
)

// Predefined formats.
const (
	Text             Format = 0
	TextZstd         Format = Format(CompressionZstd)
	TextS2           Format = Format(CompressionS2)
	TextLZ4          Format = Format(CompressionLZ4)
	TextSnappy       Format = Format(CompressionSnappy)
	Binary           Format = BinaryFlag
	BinaryZstd       Format = BinaryFlag | Format(CompressionZstd)
	BinaryS2         Format = BinaryFlag | Format(CompressionS2)
	BinaryLZ4        Format = BinaryFlag | Format(CompressionLZ4)
	BinarySnappy     Format = BinaryFlag | Format(CompressionSnappy)
	DefaultFormat           = Binary
	maxCompressionID        = CompressionSnappy
)

// New builds a Format from its parts.
func New(binary bool, compression CompressionType) Format {
	f := Format(compression) & CompressionMask
	if binary {
		f |= BinaryFlag
	}

	return f
}

// IsBinary reports whether the binary flag is set.
func (f Format) IsBinary() bool {
	return f&BinaryFlag != 0
}

// Compression returns the compression method bits.
func (f Format) Compression() CompressionType {
	return CompressionType(f & CompressionMask)
}

// IsCompressed reports whether a compression method is set.
func (f Format) IsCompressed() bool {
	return f&CompressionMask != 0
}

// WithoutCompression returns f with the compression bits cleared.
func (f Format) WithoutCompression() Format {
	return f &^ CompressionMask
}

// WithoutBinary returns f with the binary flag cleared.
func (f Format) WithoutBinary() Format {
	return f &^ BinaryFlag
}

// IsValid reports whether f uses only known bits and a known compression method.
func (f Format) IsValid() bool {
	return f&^FormatMask == 0 && f.Compression().IsValid()
}

func (f Format) String() string {
	kind := "Text"
	if f.IsBinary() {
		kind = "Binary"
	}
	if !f.IsCompressed() {
		return kind
	}

	return kind + "+" + f.Compression().String()
}

// IsValid reports whether c is a known compression method.
func (c CompressionType) IsValid() bool {
	return c <= maxCompressionID
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

const (
	TypeNone      TypeEnum = 0x00
	TypeInt8      TypeEnum = 0x01
	TypeInt16     TypeEnum = 0x02
	TypeInt32     TypeEnum = 0x03
	TypeInt64     TypeEnum = 0x04
	TypeUint8     TypeEnum = 0x05
	TypeUint16    TypeEnum = 0x06
	TypeUint32    TypeEnum = 0x07
	TypeUint64    TypeEnum = 0x08
	TypeFloat32   TypeEnum = 0x09
	TypeFloat64   TypeEnum = 0x0A
	TypeBool      TypeEnum = 0x0B
	TypeTimestamp TypeEnum = 0x0C
	TypeString    TypeEnum = 0x10 // TypeString is UTF-8 text stored without a terminator.
	TypeBytes     TypeEnum = 0x11 // TypeBytes is an opaque byte slice.
	TypeArray     TypeEnum = 0x20 // TypeArray is a variable-length slice; header byte 3 holds the element enum.
	TypeTupleTN   TypeEnum = 0x21 // TypeTupleTN is a fixed array of N equal elements; header byte 3 holds N.
	TypeUserType  TypeEnum = 0x40 // TypeUserType is any other type; header byte 3 holds a tag derived from its name.
)

func (t TypeEnum) String() string {
	switch t {
	case TypeNone:
		return "None"
	case TypeInt8:
		return "Int8"
	case TypeInt16:
		return "Int16"
	case TypeInt32:
		return "Int32"
	case TypeInt64:
		return "Int64"
	case TypeUint8:
		return "Uint8"
	case TypeUint16:
		return "Uint16"
	case TypeUint32:
		return "Uint32"
	case TypeUint64:
		return "Uint64"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	case TypeBool:
		return "Bool"
	case TypeTimestamp:
		return "Timestamp"
	case TypeString:
		return "String"
	case TypeBytes:
		return "Bytes"
	case TypeArray:
		return "Array"
	case TypeTupleTN:
		return "TupleTN"
	case TypeUserType:
		return "UserType"
	default:
		return "Unknown"
	}
}
