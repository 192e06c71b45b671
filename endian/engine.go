// Package endian provides the byte order used by chunkframe frames.
//
// Every multi-byte integer in a frame (length prefixes, raw lengths, fixed-size
// values) is written with the engine returned by GetFrameEngine, which is
// little-endian regardless of the host byte order.
//
// # Basic Usage
//
//	engine := endian.GetFrameEngine()
//	buf = engine.AppendUint32(buf, value)
//	endian.PutInt32(engine, dst, int32(len(payload)))
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetFrameEngine returns the engine used for every integer inside a frame.
func GetFrameEngine() EndianEngine {
	return binary.LittleEndian
}

// PutInt32 writes a signed 32-bit value into b[0:4].
func PutInt32(engine EndianEngine, b []byte, v int32) {
	engine.PutUint32(b, uint32(v)) //nolint:gosec // two's complement round trip
}

// Int32 reads a signed 32-bit value from b[0:4].
func Int32(engine EndianEngine, b []byte) int32 {
	return int32(engine.Uint32(b)) //nolint:gosec // two's complement round trip
}

// AppendInt32 appends a signed 32-bit value to b.
func AppendInt32(engine EndianEngine, b []byte, v int32) []byte {
	return engine.AppendUint32(b, uint32(v)) //nolint:gosec // two's complement round trip
}
