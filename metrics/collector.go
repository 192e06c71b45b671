// Package metrics exports chunkframe pool and codec counters to Prometheus.
package metrics

import (
	"github.com/arloliu/chunkframe/internal/pool"
	"github.com/arloliu/chunkframe/serializer"
	"github.com/arloliu/chunkframe/storage"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	poolVectors = "vector"
	poolBlocks  = "block"
)

// Collector is a prometheus.Collector reading the counters of a storage.Pools
// and a serializer.Serializer at scrape time.
//
// Either source may be nil, in which case its metrics are not exported.
type Collector struct {
	pools *storage.Pools
	codec *serializer.Serializer

	allocated *prometheus.Desc
	reused    *prometheus.Desc
	dropped   *prometheus.Desc
	idle      *prometheus.Desc
	leaks     *prometheus.Desc

	compressAttempts  *prometheus.Desc
	compressFallbacks *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector whose metric names start with namespace.
func NewCollector(namespace string, pools *storage.Pools, codec *serializer.Serializer) *Collector {
	name := func(subsystem, metric string) string {
		return prometheus.BuildFQName(namespace, subsystem, metric)
	}
	poolLabel := []string{"pool"}

	return &Collector{
		pools: pools,
		codec: codec,

		allocated: prometheus.NewDesc(name("pool", "allocations_total"),
			"Number of instances handed out by the pool.", poolLabel, nil),
		reused: prometheus.NewDesc(name("pool", "reused_total"),
			"Number of allocations served from the free list.", poolLabel, nil),
		dropped: prometheus.NewDesc(name("pool", "dropped_total"),
			"Number of freed instances discarded because the pool was full.", poolLabel, nil),
		idle: prometheus.NewDesc(name("pool", "idle"),
			"Number of instances currently held by the pool.", poolLabel, nil),
		leaks: prometheus.NewDesc(name("vector", "leaks_total"),
			"Number of vector views released by the leak finalizer instead of Dispose.", nil, nil),

		compressAttempts: prometheus.NewDesc(name("codec", "compression_attempts_total"),
			"Number of payloads handed to a compressor.", nil, nil),
		compressFallbacks: prometheus.NewDesc(name("codec", "compression_fallbacks_total"),
			"Number of payloads stored uncompressed after a compression attempt.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	if c.pools != nil {
		ch <- c.allocated
		ch <- c.reused
		ch <- c.dropped
		ch <- c.idle
		ch <- c.leaks
	}
	if c.codec != nil {
		ch <- c.compressAttempts
		ch <- c.compressFallbacks
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c.pools != nil {
		stats := c.pools.Stats()
		c.collectPool(ch, poolVectors, stats.Vectors)
		c.collectPool(ch, poolBlocks, stats.Blocks)
		ch <- prometheus.MustNewConstMetric(c.leaks, prometheus.CounterValue, float64(stats.Leaks))
	}

	if c.codec != nil {
		stats := c.codec.Stats()
		ch <- prometheus.MustNewConstMetric(c.compressAttempts, prometheus.CounterValue, float64(stats.CompressionAttempts))
		ch <- prometheus.MustNewConstMetric(c.compressFallbacks, prometheus.CounterValue, float64(stats.CompressionFallbacks))
	}
}

func (c *Collector) collectPool(ch chan<- prometheus.Metric, label string, s pool.Stats) {
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(s.Allocated), label)
	ch <- prometheus.MustNewConstMetric(c.reused, prometheus.CounterValue, float64(s.Reused), label)
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Dropped), label)
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(s.Idle), label)
}
