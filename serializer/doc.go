// Package serializer implements the self-describing frame codec.
//
// A frame is laid out as:
//
//	[4-byte header][int32 payload length][payload]
//
// The payload length is present only for variable-size values. A compressed
// payload is itself [int32 raw length][compressed bytes]. All integers are
// little-endian.
//
// # Dispatch
//
// For each Go type the Serializer resolves, once, how values are encoded:
//
//  1. Fixed-size binary: numbers, bool, datatypes.Timestamp, arrays and
//     structs of such values, and registered codecs that declare a fixed
//     size. Written raw, never length-prefixed, never compressed.
//  2. Variable-size binary: built-in codecs for string, []byte, slices of
//     numbers, []datatypes.Timestamp and []string, plus codecs added with
//     Register.
//  3. Text: everything else, and every value when text is requested, is
//     encoded with the configured TextCodec (JSON by default).
//
// The format actually used is recorded in the header and may differ from
// the requested one: binary falls back to text when no binary codec exists,
// and compression is dropped when the payload is below the threshold or does
// not shrink. Readers must rely on the header, never on the requested format.
//
// # Two-phase writes
//
// SizeOf returns the frame size and, for variable-size values, a staged
// Payload holding the already encoded bytes. Pass the Payload to Write or
// WriteFrame to avoid encoding twice:
//
//	codec := serializer.For[[]float64](s)
//	n, payload, err := codec.SizeOf(values, format.BinaryZstd, false)
//	if err != nil {
//		return err
//	}
//	buf := make([]byte, n)
//	if _, err := codec.WriteFrame(values, buf, payload, format.BinaryZstd); err != nil {
//		return err
//	}
//
// Write and WriteFrame always release the Payload they are given.
package serializer
