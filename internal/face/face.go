// Package face runs sticker location and grid assembly for one face photo.
package face

import (
	"context"
	"errors"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/SeamusWaldron/gocube_vision/internal/grid"
	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/internal/locator"
	"github.com/SeamusWaldron/gocube_vision/internal/logging"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Result is the outcome of detecting one face.
type Result struct {
	Face   types.Face
	Matrix types.FaceMatrix
	// Observations are the located candidates, before grid assembly.
	Observations []types.Observation
	// Fallback is set when the matrix came from blind-grid sampling.
	Fallback bool
	// DecodeErr is set when the image could not be decoded; Matrix is then
	// the placeholder matrix.
	DecodeErr error
	// Image is the normalized image the matrix was read from.
	Image *image.RGBA
}

// Complete reports whether the face came from a decoded image.
func (r Result) Complete() bool {
	return r.DecodeErr == nil
}

// Detector turns face images into face matrices.
type Detector struct {
	locator   locator.Locator
	assembler *grid.Assembler
	size      int
	maxDim    int
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Detector.
type Option func(*Detector)

// WithSize sets the square edge images are resized to before location.
func WithSize(size int) Option {
	return func(d *Detector) {
		d.size = size
	}
}

// WithMaxDimension bounds the declared width and height of encoded images.
// Larger images fail to decode.
func WithMaxDimension(px int) Option {
	return func(d *Detector) {
		d.maxDim = px
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		d.logger = logging.OrNop(logger)
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// NewDetector creates a Detector.
func NewDetector(loc locator.Locator, assembler *grid.Assembler, opts ...Option) *Detector {
	d := &Detector{
		locator:   loc,
		assembler: assembler,
		size:      ingest.DefaultSize,
		maxDim:    ingest.DefaultMaxDimension,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect reads the face matrix from a decoded image. It always returns nine
// labels; a locator failure degrades to the blind-grid path. Only context
// cancellation is returned as an error.
func (d *Detector) Detect(ctx context.Context, f types.Face, img image.Image) (Result, error) {
	start := time.Now()
	logger := d.logger.With(zap.String("face", string(f)))

	norm := ingest.Normalize(img, d.size)

	obs, err := d.locator.Locate(ctx, norm)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Result{}, err
		}
		logger.Warn("sticker location failed, sampling blind grid", zap.Error(err))
		obs = nil
	}

	matrix, fallback := d.assembler.Assemble(obs, norm)

	path := metrics.PathOrdered
	if fallback {
		path = metrics.PathFallback
	}
	d.metrics.ObserveFace(path, len(obs), time.Since(start))
	logger.Debug("face detected",
		zap.Int("candidates", len(obs)),
		zap.Bool("fallback", fallback),
		zap.Duration("elapsed", time.Since(start)),
	)

	return Result{
		Face:         f,
		Matrix:       matrix,
		Observations: obs,
		Fallback:     fallback,
		Image:        norm,
	}, nil
}

// DetectEncoded decodes a base64 image, optionally carrying a data URL
// header, and detects its face. A decode failure yields the placeholder
// matrix and is reported in Result.DecodeErr, not as an error.
func (d *Detector) DetectEncoded(ctx context.Context, f types.Face, encoded string) (Result, error) {
	img, _, err := ingest.DecodeBase64(encoded, d.maxDim)
	if err != nil {
		d.logger.Warn("face image decode failed", zap.String("face", string(f)), zap.Error(err))
		d.metrics.ObserveFace(metrics.PathPlaceholder, 0, 0)
		return Result{Face: f, Matrix: types.PlaceholderMatrix(), DecodeErr: err}, nil
	}
	return d.Detect(ctx, f, img)
}

// DetectAll processes the given faces sequentially in U,R,F,D,L,B order.
// Faces absent from images are skipped.
func (d *Detector) DetectAll(ctx context.Context, images map[types.Face]string) ([]Result, error) {
	results := make([]Result, 0, len(images))
	for _, f := range types.FaceOrder {
		encoded, ok := images[f]
		if !ok {
			continue
		}
		res, err := d.DetectEncoded(ctx, f, encoded)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// State collects the matrices of results into a cube state.
func State(results []Result) types.CubeState {
	state := make(types.CubeState, len(results))
	for _, r := range results {
		state[r.Face] = r.Matrix.Slice()
	}
	return state
}
