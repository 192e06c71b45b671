// Package compress provides the payload compression codecs used by chunkframe frames.
//
// Compression is the last stage of frame encoding: the serializer produces a
// raw payload (binary or JSON), then, when the requested format carries a
// compression method and the payload is large enough, compresses it behind a
// 4-byte raw length. If the compressed result is not smaller, the frame keeps
// the raw payload and clears the compression bits.
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(dst, data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(dst, data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// Both operations append to dst, so callers control allocation: the
// serializer compresses into a pooled staging buffer and decompresses into a
// scratch buffer sized to the raw length read from the frame, whose capacity
// bounds the decompressed output.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): copies the input; never written into a frame
//   - Zstd (format.CompressionZstd): best ratio, moderate speed
//   - S2 (format.CompressionS2): balanced ratio and speed
//   - LZ4 (format.CompressionLZ4): fastest decompression
//   - Snappy (format.CompressionSnappy): interoperable block format
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(nil, payload)
//	original, err := codec.Decompress(make([]byte, 0, len(payload)), compressed)
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use; internal
// encoders and decoders are pooled.
package compress
