package serializer

import (
	"log/slog"
	"math"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/internal/options"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultCompressionThreshold is the smallest raw payload, in bytes, for
	// which compression is attempted.
	DefaultCompressionThreshold = 860
	// DefaultMaxDecompressedSize bounds the raw length a frame may declare.
	DefaultMaxDecompressedSize = 128 * 1024 * 1024
)

// Config holds the Serializer configuration.
type Config struct {
	// CompressionThreshold is the smallest raw payload length that is compressed.
	// Zero compresses every payload when a method is requested.
	CompressionThreshold int
	// MaxDecompressedSize is the largest raw length accepted when reading a
	// compressed frame. Larger declared lengths are reported as corrupt input.
	MaxDecompressedSize int
	// TextCodec encodes values that have no binary representation.
	TextCodec TextCodec
	// Logger receives debug events about compression fallbacks.
	Logger *slog.Logger
}

// Option configures a Serializer.
type Option = options.Option[*Config]

// WithCompressionThreshold sets the smallest raw payload length that is compressed.
func WithCompressionThreshold(n int) Option {
	return options.New(func(c *Config) error {
		if n < 0 {
			return errors.Wrapf(errs.ErrInvalidOption, "compression threshold %d", n)
		}
		c.CompressionThreshold = n

		return nil
	})
}

// WithMaxDecompressedSize sets the largest raw length accepted on read.
func WithMaxDecompressedSize(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 || n > math.MaxInt32 {
			return errors.Wrapf(errs.ErrInvalidOption, "max decompressed size %d", n)
		}
		c.MaxDecompressedSize = n

		return nil
	})
}

// WithTextCodec replaces the text codec. The codec name is not recorded in
// frames, so readers must use the same codec as writers.
func WithTextCodec(codec TextCodec) Option {
	return options.New(func(c *Config) error {
		if codec == nil {
			return errors.Wrap(errs.ErrInvalidOption, "nil text codec")
		}
		c.TextCodec = codec

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = logger
	})
}

func defaultConfig() Config {
	return Config{
		CompressionThreshold: DefaultCompressionThreshold,
		MaxDecompressedSize:  DefaultMaxDecompressedSize,
		TextCodec:            GoJSON{},
	}
}

// Validate fills the logger default.
func (c *Config) Validate() error {
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return nil
}
