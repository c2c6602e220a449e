package gocube

import (
	"go.uber.org/zap"

	"github.com/SeamusWaldron/gocube_vision/internal/locator"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
	"github.com/SeamusWaldron/gocube_vision/internal/solver"
	"github.com/SeamusWaldron/gocube_vision/internal/storage"
)

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	locator locator.Locator
	solver  solver.Solver
	cache   solver.Cache
	history *storage.DB
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics sink. Without it nothing is recorded.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLocator replaces the configured sticker locator strategy.
func WithLocator(l locator.Locator) Option {
	return func(o *options) {
		o.locator = l
	}
}

// WithSolver replaces the configured external solver.
func WithSolver(s solver.Solver) Option {
	return func(o *options) {
		o.solver = s
	}
}

// WithCache caches solutions in c instead of the configured Redis server.
func WithCache(c solver.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithHistory records runs in db instead of the configured database. The
// pipeline does not close db.
func WithHistory(db *storage.DB) Option {
	return func(o *options) {
		o.history = db
	}
}
