package section

import (
	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
)

// Header is the fixed-size descriptor at the start of a frame.
//
// The zero Header is the "default" header: a header slot holding it may be
// overwritten by any write, while a slot holding any other value only accepts
// an identical header.
type Header struct {
	// VersionAndFlags packs the format bits (0-3) and the header version (4-7).
	VersionAndFlags uint8 // byte offset 0
	// TypeEnum is the category of the serialized value.
	TypeEnum format.TypeEnum // byte offset 1
	// TypeSize is the fixed size of one element in bytes, 0 for variable-size values.
	TypeSize uint8 // byte offset 2
	// ElementInfo is the element type enum for arrays, the element count for
	// tuples, or the type tag for user types.
	ElementInfo uint8 // byte offset 3
}

// NewHeader creates a header for the given type descriptor and format.
func NewHeader(typeEnum format.TypeEnum, typeSize uint8, elementInfo uint8, f format.Format) Header {
	h := Header{
		TypeEnum:    typeEnum,
		TypeSize:    typeSize,
		ElementInfo: elementInfo,
	}
	h.SetFormat(f)

	return h
}

// Format returns the serialization format recorded in the header.
func (h Header) Format() format.Format {
	return format.Format(h.VersionAndFlags & FormatMask)
}

// SetFormat replaces the format bits, keeping the version.
func (h *Header) SetFormat(f format.Format) {
	h.VersionAndFlags = (h.VersionAndFlags &^ FormatMask) | (uint8(f) & FormatMask)
}

// WithFormat returns a copy of h with the given format.
func (h Header) WithFormat(f format.Format) Header {
	h.SetFormat(f)
	return h
}

// Version returns the header version.
func (h Header) Version() uint8 {
	return h.VersionAndFlags >> VersionShift
}

// IsDefault reports whether h is the zero header.
func (h Header) IsDefault() bool {
	return h == Header{}
}

// IsFixedSize reports whether the frame body is a raw fixed-size value:
// a binary format and a non-zero type size. TypeSize alone only describes
// the type; a text frame of a fixed-size type is still length-prefixed.
func (h Header) IsFixedSize() bool {
	return h.TypeSize > 0 && h.Format().IsBinary()
}

// SameType reports whether h and other describe the same type, ignoring
// version and format bits.
func (h Header) SameType(other Header) bool {
	return h.TypeEnum == other.TypeEnum &&
		h.TypeSize == other.TypeSize &&
		h.ElementInfo == other.ElementInfo
}

// Put writes the header into the first HeaderSize bytes of b.
// Panics if b is shorter than HeaderSize.
func (h Header) Put(b []byte) {
	_ = b[HeaderSize-1]
	b[0] = h.VersionAndFlags
	b[1] = uint8(h.TypeEnum)
	b[2] = h.TypeSize
	b[3] = h.ElementInfo
}

// Bytes serializes the header into a new byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.Put(b)

	return b
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be at least 4 bytes)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is too short, ErrUnsupportedVersion
//     for unknown versions, ErrInvalidCompression for unknown compression bits
func (h *Header) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.VersionAndFlags = data[0]
	h.TypeEnum = format.TypeEnum(data[1])
	h.TypeSize = data[2]
	h.ElementInfo = data[3]

	return h.Validate()
}

// Validate checks the version and format bits.
func (h Header) Validate() error {
	if h.Version() > CurrentVersion {
		return errs.ErrUnsupportedVersion
	}
	if !h.Format().IsValid() {
		return errs.ErrInvalidCompression
	}

	return nil
}

// ParseHeader parses a Header from a byte slice.
//
// Parameters:
//   - data: Byte slice starting with a header
//
// Returns:
//   - Header: Parsed header
//   - error: see Header.Parse
func ParseHeader(data []byte) (Header, error) {
	h := Header{}
	if err := h.Parse(data); err != nil {
		return Header{}, err
	}

	return h, nil
}
