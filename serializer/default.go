package serializer

import (
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/section"
)

// SizeOf sizes v with the Default serializer. See Codec.SizeOf.
func SizeOf[T any](v T, f format.Format, noHeader bool) (int, *Payload, error) {
	return For[T](Default()).SizeOf(v, f, noHeader)
}

// Write writes the body of a frame for v with the Default serializer. See Codec.Write.
func Write[T any](v T, hdr *section.Header, dst []byte, payload *Payload, f format.Format) (int, error) {
	return For[T](Default()).Write(v, hdr, dst, payload, f)
}

// WriteFrame writes a complete frame for v with the Default serializer. See Codec.WriteFrame.
func WriteFrame[T any](v T, dst []byte, payload *Payload, f format.Format) (int, error) {
	return For[T](Default()).WriteFrame(v, dst, payload, f)
}

// AppendFrame appends a complete frame for v with the Default serializer.
func AppendFrame[T any](dst []byte, v T, f format.Format) ([]byte, error) {
	return For[T](Default()).AppendFrame(dst, v, f)
}

// Read decodes a frame body with the Default serializer. See Codec.Read.
func Read[T any](hdr section.Header, src []byte, skipTypeCheck bool) (T, int, error) {
	return For[T](Default()).Read(hdr, src, skipTypeCheck)
}

// ReadFrame decodes a complete frame with the Default serializer. See Codec.ReadFrame.
func ReadFrame[T any](src []byte, skipTypeCheck bool) (T, int, error) {
	return For[T](Default()).ReadFrame(src, skipTypeCheck)
}

// WarmUp resolves the dispatch of T in the Default serializer and returns
// the frame size of its zero value.
func WarmUp[T any]() int {
	return For[T](Default()).WarmUp()
}
