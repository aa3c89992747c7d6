package gpucache

import (
	"go.uber.org/zap"

	"github.com/djdv/gpucache/internal/metrics"
)

// Option configures a [Cache] at construction time.
type Option func(*Cache)

// WithLogger installs log for structured diagnostics: insertions (Debug),
// wrap recovery (Info), and over-budget events (Warn). Individual
// evictions are not logged. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// WithLimits sets the initial budgets, overriding [DefaultMaxCount] and
// [DefaultMaxBytes].
func WithLimits(maxCount int32, maxBytes uint64) Option {
	return func(c *Cache) {
		c.maxCount = maxCount
		c.maxBytes = maxBytes
	}
}

// WithMetrics mirrors the cache's occupancy into rec after every mutating
// operation.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(c *Cache) {
		c.metrics = rec
	}
}
