package compress

// NoOpCompressor copies payloads without compression.
//
// The serializer never selects it for a frame (a zero compression method
// skips the compression stage entirely); it exists so that GetCodec covers
// every format.CompressionType and for baseline measurements.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress appends data to dst unchanged.
func (c NoOpCompressor) Compress(dst, data []byte) ([]byte, error) {
	return append(dst, data...), nil
}

// Decompress appends data to dst unchanged.
func (c NoOpCompressor) Decompress(dst, data []byte) ([]byte, error) {
	if err := checkOutputLimit("noop", uint64(len(data)), outputLimit(dst)); err != nil {
		return dst, err
	}

	return append(dst, data...), nil
}
