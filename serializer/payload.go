package serializer

import (
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/internal/pool"
)

// Payload is an encoded, possibly compressed, frame payload staged by SizeOf.
//
// The bytes live in a pooled buffer: a Payload must be passed to Write or
// WriteFrame, which release it, or released explicitly.
type Payload struct {
	buf    *pool.ByteBuffer
	format format.Format
}

func newPayload(buf *pool.ByteBuffer, f format.Format) *Payload {
	return &Payload{buf: buf, format: f}
}

// Bytes returns the staged payload, excluding the payload length prefix.
func (p *Payload) Bytes() []byte {
	if p == nil || p.buf == nil {
		return nil
	}

	return p.buf.Bytes()
}

// Len returns the staged payload length.
func (p *Payload) Len() int {
	if p == nil || p.buf == nil {
		return 0
	}

	return p.buf.Len()
}

// Format returns the format actually used to encode the payload.
func (p *Payload) Format() format.Format {
	if p == nil {
		return format.Text
	}

	return p.format
}

// Release returns the staging buffer to its pool. It is safe to call on a
// nil or already released Payload.
func (p *Payload) Release() {
	if p == nil || p.buf == nil {
		return
	}
	pool.PutStagingBuffer(p.buf)
	p.buf = nil
}
