package serializer

import (
	"math"
	"reflect"

	"github.com/arloliu/chunkframe/compress"
	"github.com/arloliu/chunkframe/endian"
	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/internal/pool"
	"github.com/arloliu/chunkframe/section"
	"github.com/cockroachdb/errors"
)

type dispatch uint8

const (
	dispatchText        dispatch = iota // no binary representation
	dispatchFixed                       // encoding/binary fixed layout
	dispatchCustomFixed                 // BinaryCodec with FixedSize > 0
	dispatchCustom                      // variable-size BinaryCodec
)

// Codec is the resolved frame codec of one Go type. Obtain it with For.
//
// A Codec is safe for concurrent use.
type Codec[T any] struct {
	s        *Serializer
	typ      reflect.Type
	header   section.Header // type descriptor, format bits cleared
	dispatch dispatch
	size     int // payload size for the fixed dispatches
	binary   BinaryCodec[T]
	userType bool // binary is a registered codec, subject to contract checks
}

func newCodec[T any](s *Serializer, typ reflect.Type) *Codec[T] {
	c := &Codec[T]{s: s, typ: typ}

	if r, ok := s.lookup(typ); ok {
		codec, _ := r.codec.(BinaryCodec[T])
		c.binary = codec
		c.userType = true
		c.dispatch = dispatchCustom
		if fs := codec.FixedSize(); fs > 0 {
			c.dispatch = dispatchCustomFixed
			c.size = fs
		}
		c.header = userHeader(typ, uint8(c.size), r.tag) //nolint:gosec // at most 255, checked by Register

		return c
	}

	c.header, c.size = describe(typ)
	if c.size > 0 {
		c.dispatch = dispatchFixed
		return c
	}

	if codec, elem, ok := builtinCodec[T](); ok {
		c.binary = codec
		c.dispatch = dispatchCustom
		if c.header.TypeEnum == format.TypeArray {
			c.header.ElementInfo = uint8(elem)
		}
	}

	return c
}

// Header returns the type descriptor of T with the format bits set to f.
func (c *Codec[T]) Header(f format.Format) section.Header {
	return c.header.WithFormat(f)
}

// FixedSize returns the fixed binary payload size of T, or 0 if T is variable size.
func (c *Codec[T]) FixedSize() int {
	return c.size
}

func (c *Codec[T]) isFixed(f format.Format) bool {
	return f.IsBinary() && (c.dispatch == dispatchFixed || c.dispatch == dispatchCustomFixed)
}

// SizeOf returns the number of bytes needed to frame v.
//
// Variable-size values are encoded while sizing; the encoded bytes are
// returned as a Payload that must be handed to Write or WriteFrame, or
// released. Fixed-size binary values return a nil Payload.
//
// Parameters:
//   - v: Value to size
//   - f: Requested format; the format actually used is Payload.Format
//   - noHeader: Exclude the header from the returned size
//
// Returns:
//   - int: Header size (unless noHeader), plus the payload length prefix and
//     payload for variable-size values, or the fixed size
//   - *Payload: Staged payload, nil for fixed-size binary values
//   - error: ErrInvalidCompression for an invalid format, or an encoding error
func (c *Codec[T]) SizeOf(v T, f format.Format, noHeader bool) (int, *Payload, error) {
	if !f.IsValid() {
		return 0, nil, errors.Wrapf(errs.ErrInvalidCompression, "format 0x%02x", uint8(f))
	}

	hs := section.HeaderSize
	if noHeader {
		hs = 0
	}

	if c.isFixed(f) {
		return hs + c.size, nil, nil
	}

	p, err := c.stage(v, f)
	if err != nil {
		return 0, nil, err
	}

	return hs + section.PayloadLengthSize + p.Len(), p, nil
}

// stage encodes v into a pooled buffer and applies the compression policy.
func (c *Codec[T]) stage(v T, f format.Format) (*Payload, error) {
	buf := pool.GetStagingBuffer()

	var err error
	if f.IsBinary() && c.binary != nil {
		buf.B, err = c.appendBinary(buf.B, v)
	} else {
		f = f.WithoutBinary()
		buf.B, err = c.appendText(buf.B, v)
	}
	if err == nil && buf.Len() > math.MaxInt32 {
		err = errors.Wrapf(errs.ErrNotEnoughCapacity, "payload of %d bytes exceeds the frame limit", buf.Len())
	}
	if err != nil {
		pool.PutStagingBuffer(buf)
		return nil, err
	}

	return c.s.compress(buf, f), nil
}

func (c *Codec[T]) appendBinary(dst []byte, v T) ([]byte, error) {
	start := len(dst)
	out, err := c.binary.AppendBinary(dst, v)
	if err != nil {
		return dst, errors.Wrapf(err, "encode %s", c.typ)
	}
	if c.userType && len(out) == start {
		panic(errors.AssertionFailedf("serializer: %s codec encoded a value into zero bytes", c.typ))
	}

	return out, nil
}

func (c *Codec[T]) appendText(dst []byte, v T) ([]byte, error) {
	b, err := c.s.cfg.TextCodec.Marshal(v)
	if err != nil {
		return dst, errors.Wrapf(err, "%s encode %s", c.s.cfg.TextCodec.Name(), c.typ)
	}

	return append(dst, b...), nil
}

// Write writes the body of a frame for v into dst and the header into hdr.
//
// If hdr is nil no header is produced. If hdr holds a non-default header
// that differs from the computed one, Write fails with ErrHeaderMismatch and
// leaves both hdr and dst untouched; this guards against reusing a shared
// header slot for inconsistent values.
//
// payload is the Payload returned by SizeOf for the same value and format,
// or nil to encode v now. Write always releases payload.
//
// Parameters:
//   - v: Value to write
//   - hdr: Header slot, or nil
//   - dst: Destination for the body
//   - payload: Staged payload from SizeOf, or nil
//   - f: Requested format
//
// Returns:
//   - int: Bytes written into dst
//   - error: ErrHeaderMismatch, ErrNotEnoughCapacity, or an encoding error
func (c *Codec[T]) Write(v T, hdr *section.Header, dst []byte, payload *Payload, f format.Format) (int, error) {
	return c.write(v, hdr, dst, payload, f, true)
}

// WriteFrame writes a complete frame, header included, into dst.
//
// Unlike Write, the header position is always overwritten.
//
// Returns:
//   - int: Bytes written, equal to SizeOf(v, f, false)
//   - error: ErrNotEnoughCapacity, or an encoding error
func (c *Codec[T]) WriteFrame(v T, dst []byte, payload *Payload, f format.Format) (int, error) {
	if len(dst) < section.HeaderSize {
		payload.Release()
		return 0, errors.Wrapf(errs.ErrNotEnoughCapacity, "%d bytes for a frame header", len(dst))
	}

	var hdr section.Header
	n, err := c.write(v, &hdr, dst[section.HeaderSize:], payload, f, false)
	if err != nil {
		return 0, err
	}
	hdr.Put(dst)

	return section.HeaderSize + n, nil
}

// AppendFrame appends a complete frame for v to dst.
func (c *Codec[T]) AppendFrame(dst []byte, v T, f format.Format) ([]byte, error) {
	size, payload, err := c.SizeOf(v, f, false)
	if err != nil {
		return dst, err
	}

	start := len(dst)
	if cap(dst)-start < size {
		grown := make([]byte, start, start+size)
		copy(grown, dst)
		dst = grown
	}

	n, err := c.WriteFrame(v, dst[start:start+size], payload, f)
	if err != nil {
		return dst[:start], err
	}

	return dst[:start+n], nil
}

func (c *Codec[T]) write(v T, hdr *section.Header, dst []byte, payload *Payload, f format.Format, checkHeader bool) (int, error) {
	if !f.IsValid() {
		payload.Release()
		return 0, errors.Wrapf(errs.ErrInvalidCompression, "format 0x%02x", uint8(f))
	}

	if c.isFixed(f) {
		if payload != nil {
			payload.Release()
			panic(errors.AssertionFailedf("serializer: staged payload given for fixed-size %s", c.typ))
		}
		if len(dst) < c.size {
			return 0, errors.Wrapf(errs.ErrNotEnoughCapacity, "%d bytes for fixed-size %s of %d bytes", len(dst), c.typ, c.size)
		}
		// Fixed-size values are never compressed.
		if err := c.putHeader(hdr, c.header.WithFormat(format.Binary), checkHeader); err != nil {
			return 0, err
		}
		if err := c.writeFixed(dst[:c.size], v); err != nil {
			return 0, err
		}

		return c.size, nil
	}

	if payload == nil {
		var err error
		if payload, err = c.stage(v, f); err != nil {
			return 0, err
		}
	}
	defer payload.Release()

	n := section.PayloadLengthSize + payload.Len()
	if len(dst) < n {
		return 0, errors.Wrapf(errs.ErrNotEnoughCapacity, "%d bytes for a %d byte frame body", len(dst), n)
	}
	if err := c.putHeader(hdr, c.header.WithFormat(payload.Format()), checkHeader); err != nil {
		return 0, err
	}

	endian.PutInt32(le, dst, int32(payload.Len())) //nolint:gosec // bounded by stage
	copy(dst[section.PayloadLengthSize:n], payload.Bytes())

	return n, nil
}

func (c *Codec[T]) putHeader(hdr *section.Header, h section.Header, checkHeader bool) error {
	if hdr == nil {
		return nil
	}
	if checkHeader && !hdr.IsDefault() && *hdr != h {
		return errors.Wrapf(errs.ErrHeaderMismatch, "slot holds %v, computed %v", *hdr, h)
	}
	*hdr = h

	return nil
}

func (c *Codec[T]) writeFixed(dst []byte, v T) error {
	if c.dispatch == dispatchFixed {
		return putFixed(dst, v)
	}

	out, err := c.binary.AppendBinary(dst[:0], v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", c.typ)
	}
	if len(out) != c.size {
		panic(errors.AssertionFailedf("serializer: %s codec declares %d bytes but wrote %d", c.typ, c.size, len(out)))
	}
	copy(dst, out)

	return nil
}

// Read decodes a value of T from the frame body src described by hdr.
//
// Unless skipTypeCheck is set, the type descriptor in hdr must match T. On
// any error the zero value is returned and nothing is consumed.
//
// Parameters:
//   - hdr: Frame header
//   - src: Frame body, starting after the header
//   - skipTypeCheck: Do not compare the header descriptor with T
//
// Returns:
//   - T: Decoded value
//   - int: Bytes consumed from src
//   - error: ErrCorruptInput for malformed input or a descriptor mismatch
func (c *Codec[T]) Read(hdr section.Header, src []byte, skipTypeCheck bool) (T, int, error) {
	var zero T

	if err := hdr.Validate(); err != nil {
		return zero, 0, errs.Corrupt(err)
	}
	if !skipTypeCheck && !hdr.SameType(c.header) {
		return zero, 0, errors.Wrapf(errs.ErrCorruptInput, "header %v does not describe %s", hdr, c.typ)
	}

	fixed := hdr.IsFixedSize()
	if fixed != c.isFixed(hdr.Format()) {
		return zero, 0, errors.Wrapf(errs.ErrCorruptInput, "header %v frame layout does not match %s", hdr, c.typ)
	}
	if fixed {
		if c.size > len(src) {
			return zero, 0, errors.Wrapf(errs.ErrCorruptInput, "%d bytes for fixed-size %s of %d bytes", len(src), c.typ, c.size)
		}
		v, err := c.readFixed(src[:c.size])
		if err != nil {
			return zero, 0, err
		}

		return v, c.size, nil
	}

	return c.readVar(hdr.Format(), src)
}

// ReadFrame decodes a complete frame, header included.
//
// Returns:
//   - T: Decoded value
//   - int: Bytes consumed, header included
//   - error: ErrCorruptInput for malformed input or a descriptor mismatch
func (c *Codec[T]) ReadFrame(src []byte, skipTypeCheck bool) (T, int, error) {
	hdr, err := section.ParseHeader(src)
	if err != nil {
		var zero T
		return zero, 0, errs.Corrupt(err)
	}

	v, n, err := c.Read(hdr, src[section.HeaderSize:], skipTypeCheck)
	if err != nil {
		return v, 0, err
	}

	return v, section.HeaderSize + n, nil
}

func (c *Codec[T]) readFixed(src []byte) (T, error) {
	if c.dispatch == dispatchFixed {
		return readFixed[T](src)
	}

	v, n, err := c.binary.ReadBinary(src)
	if err != nil {
		var zero T
		return zero, errs.Corrupt(err)
	}
	if n != c.size {
		panic(errors.AssertionFailedf("serializer: %s codec declares %d bytes but read %d", c.typ, c.size, n))
	}

	return v, nil
}

func (c *Codec[T]) readVar(f format.Format, src []byte) (T, int, error) {
	var zero T

	if len(src) < section.PayloadLengthSize {
		return zero, 0, errors.Wrap(errs.ErrCorruptInput, "missing payload length")
	}
	plen := endian.Int32(le, src)
	if plen < 0 || int(plen) > len(src)-section.PayloadLengthSize {
		return zero, 0, errors.Wrapf(errs.ErrCorruptInput, "payload length %d with %d bytes available", plen, len(src)-section.PayloadLengthSize)
	}
	consumed := section.PayloadLengthSize + int(plen)
	body := src[section.PayloadLengthSize:consumed]

	if f.IsCompressed() {
		raw, scratch, err := c.decompress(f.Compression(), body)
		if scratch != nil {
			defer pool.PutScratchBuffer(scratch)
		}
		if err != nil {
			return zero, 0, err
		}
		body = raw
	}

	v, err := c.decode(f, body)
	if err != nil {
		return zero, 0, err
	}

	return v, consumed, nil
}

// decompress returns the raw payload of a compressed body. A negative raw
// length marks a payload stored verbatim despite the compression bits.
// The returned scratch buffer, if any, backs the raw payload and must be
// returned to its pool once the payload is decoded.
func (c *Codec[T]) decompress(ct format.CompressionType, body []byte) ([]byte, *pool.ByteBuffer, error) {
	if len(body) < section.RawLengthSize {
		return nil, nil, errors.Wrap(errs.ErrCorruptInput, "missing raw length")
	}
	rawLen := int(endian.Int32(le, body))
	data := body[section.RawLengthSize:]

	switch {
	case rawLen < 0:
		return data, nil, nil
	case rawLen == 0 || rawLen > c.s.cfg.MaxDecompressedSize:
		return nil, nil, errors.Wrapf(errs.ErrCorruptInput, "raw length %d", rawLen)
	}

	codec, err := compress.GetCodec(ct)
	if err != nil {
		return nil, nil, errs.Corrupt(err)
	}

	// The capacity of the slice handed to Decompress is its output limit.
	scratch := pool.GetScratchBuffer(rawLen)
	raw, err := codec.Decompress(scratch.B[:0:rawLen], data)
	if err != nil {
		return nil, scratch, errs.Corrupt(errors.Wrapf(err, "%s decompress", ct))
	}
	if len(raw) != rawLen {
		return nil, scratch, errors.Wrapf(errs.ErrCorruptInput, "decompressed %d bytes, frame declares %d", len(raw), rawLen)
	}

	return raw, scratch, nil
}

func (c *Codec[T]) decode(f format.Format, body []byte) (T, error) {
	var zero T

	if !f.IsBinary() {
		var v T
		if err := c.s.cfg.TextCodec.Unmarshal(body, &v); err != nil {
			return zero, errs.Corrupt(errors.Wrapf(err, "%s decode %s", c.s.cfg.TextCodec.Name(), c.typ))
		}

		return v, nil
	}

	if c.binary == nil {
		return zero, errors.Wrapf(errs.ErrCorruptInput, "binary frame for %s, which has no variable-size binary codec", c.typ)
	}

	v, n, err := c.binary.ReadBinary(body)
	if err != nil {
		return zero, errs.Corrupt(errors.Wrapf(err, "decode %s", c.typ))
	}
	if n != len(body) {
		return zero, errors.Wrapf(errs.ErrCorruptInput, "%s decoded %d of %d payload bytes", c.typ, n, len(body))
	}

	return v, nil
}

// WarmUp resolves the dispatch of T by sizing its zero value in binary
// format. It returns that size.
func (c *Codec[T]) WarmUp() int {
	var zero T
	size, payload, err := c.SizeOf(zero, format.Binary, false)
	payload.Release()
	if err != nil {
		return 0
	}

	return size
}
