// Package encoding provides the variable-size element encodings used by the
// built-in binary codecs of the serializer package.
//
// # Timestamp delta-of-delta
//
// TimestampDeltaEncoder stores a sequence of int64 timestamps as:
//
//	[zigzag varint first][zigzag varint delta][zigzag varint delta-of-delta]...
//
// Regular intervals collapse to one byte per timestamp after the second one.
// The count is not part of the stream; callers store it next to the data.
//
// # Length-prefixed strings
//
// VarStringEncoder stores each string as a uvarint byte length followed by
// the raw UTF-8 bytes.
//
// Both encoders append to a caller supplied slice, so they can write directly
// into a staging buffer without an intermediate copy. Decoders never trust
// length fields and report malformed input with errs.ErrCorruptInput.
package encoding
