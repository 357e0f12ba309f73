// SPDX-License-Identifier: MIT

package resolution

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/katalvlaran/sseq/checkpoint"
)

// Option configures a Resolution.
type Option func(*options)

type options struct {
	log         *zap.Logger
	registerer  prometheus.Registerer
	store       checkpoint.Store
	compress    bool
	retry       checkpoint.RetryPolicy
	workers     int
	maxS, maxT  int
	name        string
	noPrefixing bool
}

func defaultOptions() options {
	return options{log: zap.NewNop(), workers: 1, maxS: -1, maxT: -1}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics registers the resolution collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithCheckpoints loads and saves bidegrees through st. Keys live below a
// per-configuration prefix (see checkpoint.ConfigPrefix) unless
// WithRawCheckpointKeys is also given.
func WithCheckpoints(st checkpoint.Store) Option {
	return func(o *options) { o.store = st }
}

// WithRawCheckpointKeys stores keys at the root of the checkpoint store.
func WithRawCheckpointKeys() Option {
	return func(o *options) { o.noPrefixing = true }
}

// WithCompression zstd-compresses record bodies.
func WithCompression(on bool) Option {
	return func(o *options) { o.compress = on }
}

// WithRetry sets the checkpoint write retry policy.
func WithRetry(p checkpoint.RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

// WithConcurrency sets the number of workers. n ≤ 1 selects serial mode.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.workers = n
	}
}

// WithCapacity bounds the resolution to s ≤ maxS and t ≤ maxT. Requests
// beyond it fail with bigraded.ErrDegreeRangeExceeded.
func WithCapacity(maxS, maxT int) Option {
	return func(o *options) { o.maxS, o.maxT = maxS, maxT }
}

// WithName overrides the configuration name used in errors and checkpoint
// prefixes. It defaults to the module name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}
