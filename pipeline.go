package gocube

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/internal/config"
	"github.com/SeamusWaldron/gocube_vision/internal/face"
	"github.com/SeamusWaldron/gocube_vision/internal/grid"
	"github.com/SeamusWaldron/gocube_vision/internal/kociemba"
	"github.com/SeamusWaldron/gocube_vision/internal/locator"
	"github.com/SeamusWaldron/gocube_vision/internal/logging"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
	"github.com/SeamusWaldron/gocube_vision/internal/overlay"
	"github.com/SeamusWaldron/gocube_vision/internal/solution"
	"github.com/SeamusWaldron/gocube_vision/internal/solver"
	"github.com/SeamusWaldron/gocube_vision/internal/storage"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Result is the boundary envelope returned by every pipeline operation.
// Stage errors and panics are converted into Success=false and Error.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// Err is the underlying error for errors.Is checks. Not serialized.
	Err error `json:"-"`
}

// FaceReport summarizes how one face was read.
type FaceReport struct {
	Face         Face   `json:"face"`
	Stickers     int    `json:"stickers"`
	Fallback     bool   `json:"fallback"`
	DecodeFailed bool   `json:"decode_failed"`
	DecodeError  string `json:"decode_error,omitempty"`
}

// Recognition is the result of reading the face images.
type Recognition struct {
	RunID string       `json:"run_id"`
	Dir   string       `json:"dir"`
	State CubeState    `json:"state"`
	Faces []FaceReport `json:"faces"`
	Code  string       `json:"kociemba_code"`
}

// SolveReport is a solution together with the run it belongs to.
type SolveReport struct {
	RunID    string   `json:"run_id"`
	Dir      string   `json:"dir"`
	Solution Solution `json:"solution"`
	Verified bool     `json:"verified"`
}

// Health describes the pipeline's configured dependencies.
type Health struct {
	Strategy      string        `json:"strategy"`
	ModelLoaded   bool          `json:"model_loaded"`
	SolverCommand string        `json:"solver_command"`
	MaxDepth      int           `json:"max_depth"`
	Timeout       time.Duration `json:"timeout"`
	Cache         bool          `json:"cache"`
	History       bool          `json:"history"`
	ArtifactsDir  string        `json:"artifacts_dir"`
}

// Pipeline reads cube states from photographs and solves them. A Pipeline
// is safe for concurrent use; concurrent runs sharing an artifact directory
// without namespaces overwrite each other's files.
type Pipeline struct {
	cfg       config.Config
	detector  *face.Detector
	assembler *grid.Assembler
	solver    solver.Solver
	store     *artifact.Store
	runs      *storage.RunRepository
	model     *locator.LazyModel
	cached    bool
	metrics   *metrics.Metrics
	logger    *zap.Logger
	closers   []io.Closer
}

// New builds a pipeline from cfg. Components given as options take the
// place of the ones cfg describes.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Pipeline, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	p := &Pipeline{
		cfg:     cfg,
		store:   artifact.Open(cfg.Artifacts.Dir),
		metrics: o.metrics,
		logger:  logging.OrNop(o.logger),
	}

	cls := classifier.New(
		classifier.WithThreshold(cfg.Classifier.Threshold),
		classifier.WithAchromaticChroma(cfg.Classifier.AchromaticChroma),
	)
	p.assembler = grid.New(cls, cfg.Grid)

	loc := o.locator
	if loc == nil {
		switch cfg.Locator.Strategy {
		case config.StrategyModel:
			cmd := cfg.Locator.Model
			p.model = locator.NewLazyModel(func() (locator.BoxModel, error) {
				return &locator.CommandModel{Path: cmd.Command, Args: cmd.Args}, nil
			})
			p.closers = append(p.closers, p.model)
			loc = locator.NewModelLocator(p.model, cfg.Locator.Contour.Overlap)
		default:
			loc = locator.NewContourLocator(cls, cfg.Locator.Contour)
		}
	}
	p.detector = face.NewDetector(loc, p.assembler,
		face.WithSize(cfg.Ingest.Size),
		face.WithMaxDimension(cfg.Ingest.MaxDimension),
		face.WithLogger(p.logger),
		face.WithMetrics(p.metrics),
	)

	p.solver = o.solver
	if p.solver == nil {
		p.solver = solver.NewCommandSolver(cfg.Solver.Command, cfg.Solver.Args...)
	}
	cache := o.cache
	if cache == nil && cfg.Cache.RedisAddr != "" {
		client, err := solver.DialRedis(ctx, cfg.Cache.RedisAddr)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, client)
		cache = solver.NewRedisCache(client)
	}
	if cache != nil {
		p.solver = solver.NewCachedSolver(p.solver, cache, cfg.Cache.TTL, p.logger, p.metrics)
		p.cached = true
	}

	db := o.history
	if db == nil && cfg.Storage.Path != "" {
		var err error
		db, err = storage.Open(cfg.Storage.Path)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.closers = append(p.closers, db)
	}
	if db != nil {
		p.runs = storage.NewRunRepository(db)
	}

	return p, nil
}

// Close releases the model handle, cache client and history database the
// pipeline opened.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

// Store returns the pipeline's root artifact store.
func (p *Pipeline) Store() *artifact.Store {
	return p.store
}

// Runs returns the run history, or nil when history is disabled.
func (p *Pipeline) Runs() *storage.RunRepository {
	return p.runs
}

// Health reports the configured strategy, solver and optional backends.
func (p *Pipeline) Health() Health {
	h := Health{
		Strategy:      p.cfg.Locator.Strategy,
		SolverCommand: p.cfg.Solver.Command,
		MaxDepth:      p.cfg.Solver.MaxDepth,
		Timeout:       p.cfg.Solver.Timeout,
		Cache:         p.cached,
		History:       p.runs != nil,
		ArtifactsDir:  p.store.Dir(),
	}
	if p.model != nil {
		h.ModelLoaded = p.model.Loaded()
	}
	return h
}

// run executes fn at the boundary: errors become a failed Result, panics
// are recovered and reported the same way.
func run[T any](p *Pipeline, op, runID string, fn func(logger *zap.Logger) (T, error)) (res Result[T]) {
	logger := logging.WithOperation(p.logger, op, runID)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("stage panicked", zap.Any("panic", r), zap.Stack("stack"))
			err := logging.NewOperationError(op, runID, fmt.Errorf("internal error: %v", r))
			res = Result[T]{Error: err.Error(), Err: err}
		}
	}()

	data, err := fn(logger)
	if err != nil {
		err = logging.NewOperationError(op, runID, err)
		return Result[T]{Data: data, Error: err.Error(), Err: err}
	}
	return Result[T]{Success: true, Data: data}
}

func (p *Pipeline) newRun() (*artifact.Store, string) {
	if p.cfg.Artifacts.Namespace {
		return p.store.NewRun()
	}
	return p.store, uuid.NewString()
}

// Recognize reads a cube state from base64 face images keyed by face. Each
// image may carry a data URL header. An undecodable image yields a face of
// placeholder labels and is reported in the face's FaceReport.
func (p *Pipeline) Recognize(ctx context.Context, images map[Face]string) Result[Recognition] {
	return p.recognize(ctx, len(images), func(ctx context.Context, f Face) (face.Result, bool, error) {
		encoded, ok := images[f]
		if !ok {
			return face.Result{}, false, nil
		}
		res, err := p.detector.DetectEncoded(ctx, f, encoded)
		return res, true, err
	})
}

// RecognizeImages is Recognize for images that are already decoded.
func (p *Pipeline) RecognizeImages(ctx context.Context, images map[Face]image.Image) Result[Recognition] {
	return p.recognize(ctx, len(images), func(ctx context.Context, f Face) (face.Result, bool, error) {
		img, ok := images[f]
		if !ok {
			return face.Result{}, false, nil
		}
		res, err := p.detector.Detect(ctx, f, img)
		return res, true, err
	})
}

type detectFunc func(ctx context.Context, f Face) (face.Result, bool, error)

func (p *Pipeline) recognize(ctx context.Context, n int, detect detectFunc) Result[Recognition] {
	store, runID := p.newRun()

	res := run(p, "recognize", runID, func(logger *zap.Logger) (Recognition, error) {
		rec := Recognition{RunID: runID, Dir: store.Dir()}
		if n == 0 {
			return rec, ErrNoImages
		}

		results := make([]face.Result, 0, len(types.FaceOrder))
		for _, f := range types.FaceOrder {
			r, ok, err := detect(ctx, f)
			if err != nil {
				return rec, fmt.Errorf("face %s: %w", f, err)
			}
			if !ok {
				continue
			}
			results = append(results, r)
			rec.Faces = append(rec.Faces, report(r))

			if err := p.saveFace(store, r); err != nil {
				return rec, err
			}
		}

		rec.State = face.State(results)
		if err := store.SaveState(rec.State); err != nil {
			return rec, err
		}

		code, diags := kociemba.Encode(rec.State)
		rec.Code = code
		for _, d := range diags {
			logger.Debug("encode substitution", zap.String("detail", d.String()))
		}
		logger.Info("cube state recognized",
			zap.Int("faces", len(results)),
			zap.Int("unmapped", len(diags)),
		)
		return rec, nil
	})

	p.recordRecognition(ctx, res)
	return res
}

func report(r face.Result) FaceReport {
	fr := FaceReport{
		Face:     r.Face,
		Stickers: len(r.Observations),
		Fallback: r.Fallback,
	}
	if r.DecodeErr != nil {
		fr.DecodeFailed = true
		fr.DecodeError = r.DecodeErr.Error()
	}
	return fr
}

// saveFace writes the normalized image and its debug overlay.
func (p *Pipeline) saveFace(store *artifact.Store, r face.Result) error {
	if r.Image == nil {
		return nil
	}
	if _, err := store.SaveImage(r.Face, r.Image); err != nil {
		return err
	}

	var cells []image.Rectangle
	if r.Fallback {
		c := p.assembler.Cells(r.Image.Bounds())
		cells = c[:]
	}
	debug := overlay.Draw(r.Image, r.Observations, cells)
	_, err := store.SaveOverlay(r.Face, overlay.Suffix(len(r.Observations)), debug)
	return err
}

func (p *Pipeline) recordRecognition(ctx context.Context, res Result[Recognition]) {
	if p.runs == nil {
		return
	}
	rec := res.Data
	faces := len(rec.Faces)
	fallback := 0
	for _, f := range rec.Faces {
		if f.Fallback || f.DecodeFailed {
			fallback++
		}
	}
	r := storage.Run{
		RunID:         rec.RunID,
		Kind:          storage.KindRecognize,
		Success:       res.Success,
		Faces:         &faces,
		FallbackFaces: &fallback,
		ArtifactDir:   &rec.Dir,
	}
	if rec.Code != "" {
		r.KociembaCode = &rec.Code
	}
	if res.Error != "" {
		r.Error = &res.Error
	}
	p.record(ctx, r)
}

func (p *Pipeline) record(ctx context.Context, r storage.Run) {
	if _, err := p.runs.Create(ctx, r); err != nil {
		p.logger.Warn("failed to record run", zap.String("run_id", r.RunID), zap.Error(err))
	}
}

// Solve encodes, validates and solves a cube state.
func (p *Pipeline) Solve(ctx context.Context, state CubeState) Result[SolveReport] {
	code, diags := kociemba.Encode(state)
	for _, d := range diags {
		p.logger.Debug("encode substitution", zap.String("detail", d.String()))
	}
	return p.SolveCode(ctx, code)
}

// SolveCode validates and solves a Kociemba code. Codes that fail
// validation, or still contain unmapped facelets, are rejected before the
// solver runs.
func (p *Pipeline) SolveCode(ctx context.Context, code string) Result[SolveReport] {
	store, runID := p.newRun()
	start := time.Now()
	outcome := "failed"

	res := run(p, "solve", runID, func(logger *zap.Logger) (SolveReport, error) {
		rep := SolveReport{RunID: runID, Dir: store.Dir()}

		if err := kociemba.Validate(code); err != nil {
			outcome = "invalid"
			logger.Warn("cube state rejected", zap.Error(err))
			return rep, err
		}
		if strings.ContainsRune(code, kociemba.Unmapped) {
			outcome = "invalid"
			n := strings.Count(code, string(kociemba.Unmapped))
			return rep, fmt.Errorf("%w: %d unmapped facelets", ErrStateIncomplete, n)
		}
		if err := store.SaveCode(code); err != nil {
			return rep, err
		}

		raw, err := p.solver.Solve(ctx, code, p.cfg.Solver.MaxDepth, p.cfg.Solver.Timeout)
		if err != nil {
			logger.Error("solver failed", zap.Error(err))
			return rep, err
		}

		sol, err := solution.Decode(code, raw)
		if err != nil {
			return rep, fmt.Errorf("decode solver output %q: %w", raw, err)
		}
		moves, err := solution.Moves(sol)
		if err != nil {
			return rep, err
		}
		sol.Verified, err = Verify(code, moves)
		if err != nil {
			return rep, err
		}
		if !sol.Verified {
			logger.Warn("solution does not solve the cube", zap.String("solution", sol.RawSolution))
		}

		if err := store.SaveSolution(sol); err != nil {
			return rep, err
		}

		outcome = "ok"
		rep.Solution = sol
		rep.Verified = sol.Verified
		logger.Info("cube solved",
			zap.Int("steps", sol.StepCount),
			zap.Bool("verified", sol.Verified),
			zap.Duration("elapsed", time.Since(start)),
		)
		return rep, nil
	})

	p.metrics.ObserveSolve(outcome, res.Data.Solution.StepCount, time.Since(start))
	p.recordSolve(ctx, code, res)
	return res
}

func (p *Pipeline) recordSolve(ctx context.Context, code string, res Result[SolveReport]) {
	if p.runs == nil {
		return
	}
	rep := res.Data
	r := storage.Run{
		RunID:        rep.RunID,
		Kind:         storage.KindSolve,
		Success:      res.Success,
		KociembaCode: &code,
		ArtifactDir:  &rep.Dir,
	}
	if res.Success {
		steps := rep.Solution.StepCount
		r.StepCount = &steps
		r.RawSolution = &rep.Solution.RawSolution
	}
	if res.Error != "" {
		r.Error = &res.Error
	}
	p.record(ctx, r)
}
