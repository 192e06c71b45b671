package serializer

import (
	"math"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/arloliu/chunkframe/compress"
	"github.com/arloliu/chunkframe/endian"
	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/format"
	"github.com/arloliu/chunkframe/internal/collision"
	"github.com/arloliu/chunkframe/internal/hash"
	"github.com/arloliu/chunkframe/internal/options"
	"github.com/arloliu/chunkframe/internal/pool"
	"github.com/cockroachdb/errors"
)

// Serializer owns the configuration, the registered codecs and the resolved
// per-type dispatch of the frame codec.
//
// A Serializer is safe for concurrent use. Register codecs before the first
// For call for the same type: a resolved Codec keeps the dispatch it was
// created with.
type Serializer struct {
	cfg Config

	mu      sync.RWMutex
	custom  map[reflect.Type]registration
	tracker *collision.Tracker

	codecs sync.Map // reflect.Type -> *Codec[T]

	compressAttempts  atomic.Uint64
	compressFallbacks atomic.Uint64
}

type registration struct {
	codec any // BinaryCodec[T]
	tag   uint8
}

// Stats is a snapshot of the Serializer counters.
type Stats struct {
	// CompressionAttempts counts payloads handed to a compressor.
	CompressionAttempts uint64
	// CompressionFallbacks counts attempts whose result was discarded because
	// the compressor failed or the output did not shrink.
	CompressionFallbacks uint64
}

// New creates a Serializer.
//
// Parameters:
//   - opts: WithCompressionThreshold, WithMaxDecompressedSize, WithTextCodec, WithLogger
//
// Returns:
//   - *Serializer: Serializer without registered codecs
//   - error: ErrInvalidOption if an option is out of range
func New(opts ...Option) (*Serializer, error) {
	s := &Serializer{
		cfg:     defaultConfig(),
		custom:  make(map[reflect.Type]registration),
		tracker: collision.NewTracker(),
	}
	if err := options.Build(&s.cfg, opts...); err != nil {
		return nil, err
	}

	return s, nil
}

var defaultSerializer = sync.OnceValue(func() *Serializer {
	s, err := New()
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "serializer: default serializer"))
	}

	return s
})

// Default returns the process-wide Serializer used by the package-level functions.
func Default() *Serializer {
	return defaultSerializer()
}

// Config returns a copy of the effective configuration.
func (s *Serializer) Config() Config {
	return s.cfg
}

// Stats returns a snapshot of the compression counters.
func (s *Serializer) Stats() Stats {
	return Stats{
		CompressionAttempts:  s.compressAttempts.Load(),
		CompressionFallbacks: s.compressFallbacks.Load(),
	}
}

// RegisteredTypes returns the names of the types with a registered codec,
// in registration order.
func (s *Serializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.tracker.Names()...)
}

type registerConfig struct {
	tag uint8
}

// RegisterOption configures Register.
type RegisterOption = options.Option[*registerConfig]

// WithTypeTag sets the header tag of a registered type instead of deriving
// it from the type name. Use it to resolve ErrTypeTagCollision.
func WithTypeTag(tag uint8) RegisterOption {
	return options.New(func(c *registerConfig) error {
		if tag == 0 {
			return errors.Wrap(errs.ErrInvalidOption, "type tag 0 is reserved")
		}
		c.tag = tag

		return nil
	})
}

// Register adds a binary codec for T.
//
// The codec takes precedence over the built-in handling of T. Frames of T
// are described as a user type identified by a one-byte tag, so two
// registered types may not share a tag.
//
// Returns error if:
//   - codec is nil or declares a size outside [0, 255] (ErrInvalidCodec)
//   - T already has a registered codec (ErrTypeAlreadyRegistered)
//   - the tag is owned by another registered type (ErrTypeTagCollision)
func Register[T any](s *Serializer, codec BinaryCodec[T], opts ...RegisterOption) error {
	typ := reflect.TypeFor[T]()
	if codec == nil {
		return errors.Wrapf(errs.ErrInvalidCodec, "nil codec for %s", typ)
	}
	if fs := codec.FixedSize(); fs < 0 || fs > math.MaxUint8 {
		return errors.Wrapf(errs.ErrInvalidCodec, "%s codec declares fixed size %d", typ, fs)
	}

	var cfg registerConfig
	if err := options.Apply(&cfg, opts...); err != nil {
		return err
	}

	name := typeName(typ)
	if cfg.tag == 0 {
		cfg.tag = hash.Tag(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tracker.TrackType(name, cfg.tag); err != nil {
		return err
	}
	s.custom[typ] = registration{codec: codec, tag: cfg.tag}
	s.codecs.Delete(typ)

	return nil
}

func (s *Serializer) lookup(typ reflect.Type) (registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.custom[typ]

	return r, ok
}

// For returns the Codec of T, resolving and caching its dispatch on first use.
func For[T any](s *Serializer) *Codec[T] {
	typ := reflect.TypeFor[T]()
	if c, ok := s.codecs.Load(typ); ok {
		return c.(*Codec[T]) //nolint:forcetypeassert
	}

	c, _ := s.codecs.LoadOrStore(typ, newCodec[T](s, typ))

	return c.(*Codec[T]) //nolint:forcetypeassert
}

// compress applies the compression policy to a staged raw payload and
// returns the payload to frame. raw is consumed.
func (s *Serializer) compress(raw *pool.ByteBuffer, f format.Format) *Payload {
	if !f.IsCompressed() {
		return newPayload(raw, f)
	}
	if raw.Len() < s.cfg.CompressionThreshold {
		return newPayload(raw, f.WithoutCompression())
	}

	s.compressAttempts.Add(1)

	codec, err := compress.GetCodec(f.Compression())
	if err == nil {
		out := pool.GetStagingBuffer()
		out.B = endian.AppendInt32(le, out.B[:0], int32(raw.Len())) //nolint:gosec // checked by the caller
		out.B, err = codec.Compress(out.B, raw.Bytes())
		if err == nil && out.Len() < raw.Len() {
			pool.PutStagingBuffer(raw)
			return newPayload(out, f)
		}
		pool.PutStagingBuffer(out)
	}

	s.compressFallbacks.Add(1)
	s.cfg.Logger.Debug("payload stored uncompressed",
		"compression", f.Compression().String(),
		"raw", raw.Len(),
		"error", err,
	)

	return newPayload(raw, f.WithoutCompression())
}
