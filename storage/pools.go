package storage

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/arloliu/chunkframe/errs"
	"github.com/arloliu/chunkframe/internal/options"
	"github.com/arloliu/chunkframe/internal/pool"
	"github.com/cockroachdb/errors"
)

// PoolConfig holds the configuration of a Pools value.
type PoolConfig struct {
	// VectorCapacity is the maximum number of idle VectorStorage instances.
	// Zero selects the default, scaled to GOMAXPROCS.
	VectorCapacity int
	// BlockCapacity is the maximum number of idle DataBlock instances.
	// Zero selects the default, scaled to GOMAXPROCS.
	BlockCapacity int
	// LeakDetection attaches a finalizer to every created VectorStorage that
	// reports and repairs views which were never disposed.
	LeakDetection bool
	// Logger receives leak reports. Defaults to a logger that discards everything.
	Logger *slog.Logger
}

// PoolOption configures a PoolConfig.
type PoolOption = options.Option[*PoolConfig]

// WithVectorCapacity sets the maximum number of idle VectorStorage instances.
func WithVectorCapacity(n int) PoolOption {
	return options.New(func(c *PoolConfig) error {
		if n < 0 {
			return errors.Wrapf(errs.ErrInvalidOption, "vector capacity %d", n)
		}
		c.VectorCapacity = n

		return nil
	})
}

// WithBlockCapacity sets the maximum number of idle DataBlock instances.
func WithBlockCapacity(n int) PoolOption {
	return options.New(func(c *PoolConfig) error {
		if n < 0 {
			return errors.Wrapf(errs.ErrInvalidOption, "block capacity %d", n)
		}
		c.BlockCapacity = n

		return nil
	})
}

// WithLeakDetection enables or disables the finalizer safety net for
// VectorStorage instances that are never disposed.
//
// It is meant for tests and debugging: the finalizer is never the primary
// release mechanism and adds GC overhead to every created view.
func WithLeakDetection(enabled bool) PoolOption {
	return options.NoError(func(c *PoolConfig) {
		c.LeakDetection = enabled
	})
}

// WithLogger sets the logger used for leak reports.
func WithLogger(logger *slog.Logger) PoolOption {
	return options.NoError(func(c *PoolConfig) {
		c.Logger = logger
	})
}

// Validate fills defaults.
func (c *PoolConfig) Validate() error {
	if c.VectorCapacity == 0 {
		c.VectorCapacity = pool.DefaultInstanceCapacity()
	}
	if c.BlockCapacity == 0 {
		c.BlockCapacity = pool.DefaultInstanceCapacity()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return nil
}

// Pools bundles the instance pools for VectorStorage and DataBlock.
//
// A Pools value is safe for concurrent use.
type Pools struct {
	cfg     PoolConfig
	vectors *pool.InstancePool[*VectorStorage]
	blocks  *pool.InstancePool[*DataBlock]
	leaks   atomic.Uint64
}

// PoolStats is a snapshot of the counters of a Pools value.
type PoolStats struct {
	Vectors pool.Stats
	Blocks  pool.Stats
	// Leaks is the number of views released by the leak finalizer.
	Leaks uint64
}

// NewPools creates a Pools value.
//
// Parameters:
//   - opts: Optional configuration (WithVectorCapacity, WithBlockCapacity, WithLeakDetection, WithLogger)
//
// Returns:
//   - *Pools: Ready to use pools
//   - error: ErrInvalidOption if an option is out of range
func NewPools(opts ...PoolOption) (*Pools, error) {
	p := &Pools{}
	if err := options.Build(&p.cfg, opts...); err != nil {
		return nil, err
	}

	p.vectors = pool.NewInstancePool(p.cfg.VectorCapacity, func() *VectorStorage {
		return &VectorStorage{}
	})
	p.blocks = pool.NewInstancePool(p.cfg.BlockCapacity, func() *DataBlock {
		return &DataBlock{}
	})

	return p, nil
}

var defaultPools = sync.OnceValue(func() *Pools {
	p, err := NewPools()
	if err != nil {
		panic(errors.NewAssertionErrorWithWrappedErrf(err, "storage: default pools"))
	}

	return p
})

// DefaultPools returns the process-wide Pools used when nil is passed to a constructor.
func DefaultPools() *Pools {
	return defaultPools()
}

func resolvePools(p *Pools) *Pools {
	if p == nil {
		return DefaultPools()
	}

	return p
}

// Config returns a copy of the effective configuration.
func (p *Pools) Config() PoolConfig {
	return p.cfg
}

// Leaks returns the number of views released by the leak finalizer.
func (p *Pools) Leaks() uint64 {
	return p.leaks.Load()
}

// Stats returns a snapshot of the pool counters.
func (p *Pools) Stats() PoolStats {
	return PoolStats{
		Vectors: p.vectors.Stats(),
		Blocks:  p.blocks.Stats(),
		Leaks:   p.leaks.Load(),
	}
}
