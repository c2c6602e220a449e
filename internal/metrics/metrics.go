// Package metrics records pipeline counters and timings in a Prometheus
// registry that the CLI flushes to a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Face detection paths.
const (
	PathOrdered     = "ordered"
	PathFallback    = "fallback"
	PathPlaceholder = "placeholder"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	faces         *prometheus.CounterVec
	candidates    prometheus.Histogram
	faceDuration  prometheus.Histogram
	solves        *prometheus.CounterVec
	solveDuration prometheus.Histogram
	solveSteps    prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		faces: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gocube_vision_faces_total",
			Help: "Faces processed by detection path",
		}, []string{"path"}),
		candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gocube_vision_sticker_candidates",
			Help:    "Accepted sticker candidates per face before grid assembly",
			Buckets: []float64{0, 3, 6, 8, 9, 10, 12},
		}),
		faceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gocube_vision_face_duration_seconds",
			Help:    "Per-face detection duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		solves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gocube_vision_solves_total",
			Help: "Solve requests by result",
		}, []string{"result"}),
		solveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gocube_vision_solve_duration_seconds",
			Help:    "Solver call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		solveSteps: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gocube_vision_solution_steps",
			Help:    "Moves per solution",
			Buckets: prometheus.LinearBuckets(0, 5, 6),
		}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gocube_vision_solution_cache_total",
			Help: "Solution cache lookups by outcome",
		}, []string{"outcome"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFace records one processed face.
func (m *Metrics) ObserveFace(path string, candidates int, d time.Duration) {
	if m == nil {
		return
	}
	m.faces.WithLabelValues(path).Inc()
	if path != PathPlaceholder {
		m.candidates.Observe(float64(candidates))
		m.faceDuration.Observe(d.Seconds())
	}
}

// ObserveSolve records one solve request. result is "ok", "invalid" or
// "failed".
func (m *Metrics) ObserveSolve(result string, steps int, d time.Duration) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(result).Inc()
	m.solveDuration.Observe(d.Seconds())
	if result == "ok" {
		m.solveSteps.Observe(float64(steps))
	}
}

// CacheHit records a solution cache hit.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheLookups.WithLabelValues("hit").Inc()
	}
}

// CacheMiss records a solution cache miss.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
