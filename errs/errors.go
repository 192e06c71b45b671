// Package errs defines the sentinel errors returned by chunkframe packages.
//
// Callers should compare with errors.Is, since most errors are wrapped with
// additional context before they are returned.
package errs

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Frame codec errors. These are recoverable and reported as return values,
// never as panics.
var (
	// ErrHeaderMismatch is returned by a write when the destination header slot
	// already holds a non-default header that differs from the computed one.
	ErrHeaderMismatch = errors.New("chunkframe: header mismatch")
	// ErrNotEnoughCapacity is returned when the destination buffer is too small.
	ErrNotEnoughCapacity = errors.New("chunkframe: not enough capacity")
	// ErrCorruptInput is returned when a frame cannot be decoded: malformed
	// length fields, incomplete decode or a type descriptor mismatch.
	ErrCorruptInput = errors.New("chunkframe: corrupt input")
	// ErrInvalidHeaderSize is returned when fewer than section.HeaderSize bytes are available.
	ErrInvalidHeaderSize = errors.New("chunkframe: invalid header size")
	// ErrInvalidCompression is returned for an unknown compression method.
	ErrInvalidCompression = errors.New("chunkframe: invalid compression type")
	// ErrDecompressedSizeExceeded is returned when a compressed payload expands
	// past the size limit given to the decompressor.
	ErrDecompressedSizeExceeded = errors.New("chunkframe: decompressed size exceeds limit")
	// ErrUnsupportedVersion is returned when a header carries a version newer than this package understands.
	ErrUnsupportedVersion = errors.New("chunkframe: unsupported header version")
)

// Vector and block errors.
var (
	// ErrOutOfRange is returned for index, stride or element length violations.
	// It is distinct from the codec errors above.
	ErrOutOfRange = errors.New("chunkframe: index out of range")
	// ErrTypeMismatch is returned when typed access does not match the vector element type.
	ErrTypeMismatch = errors.New("chunkframe: element type mismatch")
	// ErrEmptyColumns is returned when a block is given a present but empty column set.
	ErrEmptyColumns = errors.New("chunkframe: empty column set")
	// ErrNilSource is returned when a vector is created over a nil memory source.
	ErrNilSource = errors.New("chunkframe: nil memory source")
)

// Registry errors.
var (
	// ErrTypeAlreadyRegistered is returned when a codec is registered twice for the same type.
	ErrTypeAlreadyRegistered = errors.New("chunkframe: type already registered")
	// ErrTypeTagCollision is returned when two user types hash to the same header tag.
	ErrTypeTagCollision = errors.New("chunkframe: type tag collision")
	// ErrInvalidCodec is returned when a registered codec is unusable, e.g. nil.
	ErrInvalidCodec = errors.New("chunkframe: invalid codec")
)

// Configuration errors.
var (
	// ErrInvalidOption is returned when an option value is out of its valid range.
	ErrInvalidOption = errors.New("chunkframe: invalid option")
)

// Corrupt reports cause as ErrCorruptInput. The result matches both
// ErrCorruptInput and cause under errors.Is.
func Corrupt(cause error) error {
	return fmt.Errorf("%w: %w", ErrCorruptInput, cause)
}
