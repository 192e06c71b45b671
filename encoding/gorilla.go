package encoding

import (
	"iter"
	"math"
	"math/bits"

	"github.com/arloliu/chunkframe/errs"
	"github.com/cockroachdb/errors"
)

// maxGorillaLeading is the largest leading zero count the 5-bit field holds.
const maxGorillaLeading = 31

// GorillaEncoder encodes float64 values with Gorilla XOR compression.
//
// The first value is stored verbatim in 64 bits. Each following value is
// XORed with its predecessor:
//   - equal value: a single 0 bit
//   - meaningful bits inside the previous block: bits 10 + meaningful bits
//   - otherwise: bits 11 + 5-bit leading zeros + 6-bit block size - 1 + meaningful bits
//
// Bits are packed most significant first. The count is not part of the
// stream.
//
// Note: The GorillaEncoder is NOT thread-safe.
type GorillaEncoder struct {
	w            bitWriter
	prev         uint64
	prevLeading  int
	prevTrailing int
	prevBlock    int // 0 until the first block header is written
	count        int
}

// NewGorillaEncoder creates an encoder that appends to dst.
func NewGorillaEncoder(dst []byte) *GorillaEncoder {
	return &GorillaEncoder{w: bitWriter{buf: dst}}
}

// Write encodes a single value.
func (e *GorillaEncoder) Write(val float64) {
	v := math.Float64bits(val)
	e.count++
	if e.count == 1 {
		e.prev = v
		e.w.writeBits(v, 64)

		return
	}

	xor := v ^ e.prev
	e.prev = v
	if xor == 0 {
		e.w.writeBits(0, 1)
		return
	}

	leading := min(bits.LeadingZeros64(xor), maxGorillaLeading)
	trailing := bits.TrailingZeros64(xor)

	if e.prevBlock > 0 && leading >= e.prevLeading && trailing >= e.prevTrailing {
		e.w.writeBits(0b10, 2)
		e.w.writeBits(xor>>e.prevTrailing, e.prevBlock)

		return
	}

	block := 64 - leading - trailing
	e.w.writeBits(0b11, 2)
	e.w.writeBits(uint64(leading), 5)  //nolint:gosec
	e.w.writeBits(uint64(block-1), 6) //nolint:gosec
	e.w.writeBits(xor>>trailing, block)

	e.prevLeading, e.prevTrailing, e.prevBlock = leading, trailing, block
}

// WriteSlice encodes a slice of values.
func (e *GorillaEncoder) WriteSlice(values []float64) {
	for _, v := range values {
		e.Write(v)
	}
}

// Bytes returns the destination slice extended by the encoded values. The
// last byte is zero padded.
func (e *GorillaEncoder) Bytes() []byte {
	return e.w.buf
}

// Len returns the number of encoded values.
func (e *GorillaEncoder) Len() int {
	return e.count
}

// GorillaDecoder decodes streams produced by GorillaEncoder.
//
// The decoder is stateless and safe for concurrent use.
type GorillaDecoder struct{}

// NewGorillaDecoder creates a decoder.
func NewGorillaDecoder() GorillaDecoder {
	return GorillaDecoder{}
}

// Decode appends count values decoded from data to dst.
//
// Returns:
//   - []float64: dst extended by the decoded values
//   - int: Bytes consumed from data, padding included
//   - error: ErrCorruptInput if data ends early or holds an invalid block
func (d GorillaDecoder) Decode(dst []float64, data []byte, count int) ([]float64, int, error) {
	it := gorillaIter{r: bitReader{data: data}}
	for i := range count {
		v, ok := it.next()
		if !ok {
			return dst, 0, errors.Wrapf(errs.ErrCorruptInput, "gorilla stream ends at value %d of %d", i, count)
		}
		dst = append(dst, v)
	}

	return dst, it.r.consumed(), nil
}

// All returns an iterator over count values decoded from data. Iteration
// stops early on malformed input.
func (d GorillaDecoder) All(data []byte, count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		it := gorillaIter{r: bitReader{data: data}}
		for range count {
			v, ok := it.next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

type gorillaIter struct {
	r        bitReader
	prev     uint64
	leading  int
	trailing int
	block    int
	started  bool
}

func (it *gorillaIter) next() (float64, bool) {
	if !it.started {
		v, ok := it.r.readBits(64)
		if !ok {
			return 0, false
		}
		it.started = true
		it.prev = v

		return math.Float64frombits(v), true
	}

	changed, ok := it.r.readBits(1)
	if !ok {
		return 0, false
	}
	if changed == 0 {
		return math.Float64frombits(it.prev), true
	}

	newBlock, ok := it.r.readBits(1)
	if !ok {
		return 0, false
	}
	if newBlock == 1 {
		leading, ok1 := it.r.readBits(5)
		size, ok2 := it.r.readBits(6)
		if !ok1 || !ok2 {
			return 0, false
		}
		it.leading = int(leading)
		it.block = int(size) + 1
		it.trailing = 64 - it.leading - it.block
		if it.trailing < 0 {
			return 0, false
		}
	} else if it.block == 0 {
		return 0, false
	}

	meaningful, ok := it.r.readBits(it.block)
	if !ok {
		return 0, false
	}
	it.prev ^= meaningful << it.trailing

	return math.Float64frombits(it.prev), true
}

// bitWriter appends bits to buf, most significant bit first.
type bitWriter struct {
	buf  []byte
	free uint // unused low bits of the last byte
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for n > 0 {
		if w.free == 0 {
			w.buf = append(w.buf, 0)
			w.free = 8
		}
		take := min(uint(n), w.free)
		chunk := (v >> (uint(n) - take)) & (1<<take - 1)
		w.buf[len(w.buf)-1] |= byte(chunk << (w.free - take))
		w.free -= take
		n -= int(take)
	}
}

type bitReader struct {
	data []byte
	pos  int // bit offset
}

func (r *bitReader) readBits(n int) (uint64, bool) {
	if r.pos+n > len(r.data)*8 {
		return 0, false
	}

	var v uint64
	for n > 0 {
		avail := 8 - r.pos%8
		take := min(n, avail)
		b := uint64(r.data[r.pos/8]) >> (avail - take) & (1<<take - 1)
		v = v<<take | b
		r.pos += take
		n -= take
	}

	return v, true
}

func (r *bitReader) consumed() int {
	return (r.pos + 7) / 8
}
