package locator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"sync"

	"github.com/SeamusWaldron/gocube_vision/internal/grid"
	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// ErrModelClosed is returned by a LazyModel used after Close.
var ErrModelClosed = errors.New("model closed")

// Box is one detection produced by a box model.
type Box struct {
	Rect  image.Rectangle
	Label types.Label
	Score float64
}

// BoxModel is an external detector returning labelled boxes.
type BoxModel interface {
	Predict(ctx context.Context, img image.Image) ([]Box, error)
	Close() error
}

// ModelLocator adapts a BoxModel to the Locator interface.
type ModelLocator struct {
	model   BoxModel
	overlap float64
}

// NewModelLocator creates a locator backed by model.
func NewModelLocator(model BoxModel, overlap float64) *ModelLocator {
	if overlap <= 0 {
		overlap = DefaultConfig().Overlap
	}
	return &ModelLocator{model: model, overlap: overlap}
}

// Locate returns the nine highest-scoring palette boxes.
func (l *ModelLocator) Locate(ctx context.Context, img image.Image) ([]types.Observation, error) {
	boxes, err := l.model.Predict(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("box model: %w", err)
	}

	bounds := img.Bounds()
	obs := make([]types.Observation, 0, len(boxes))
	for _, b := range boxes {
		if !b.Label.IsPalette() {
			continue
		}
		r := b.Rect.Canon()
		obs = append(obs, types.Observation{
			Position: r.Min,
			Width:    r.Dx(),
			Height:   r.Dy(),
			Label:    b.Label,
			Sample:   grid.MeanColor(img, r.Intersect(bounds)),
			Score:    b.Score,
		})
	}
	return Select(obs, MaxStickers, l.overlap), nil
}

// Close releases the model.
func (l *ModelLocator) Close() error {
	return l.model.Close()
}

// LazyModel defers loading a BoxModel until its first prediction.
type LazyModel struct {
	load func() (BoxModel, error)

	once  sync.Once
	mu    sync.Mutex
	model BoxModel
	err   error
}

// NewLazyModel wraps a loader.
func NewLazyModel(load func() (BoxModel, error)) *LazyModel {
	return &LazyModel{load: load}
}

func (m *LazyModel) get() (BoxModel, error) {
	m.once.Do(func() {
		model, err := m.load()
		m.mu.Lock()
		m.model, m.err = model, err
		m.mu.Unlock()
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil && m.model == nil {
		return nil, ErrModelClosed
	}
	return m.model, m.err
}

// Predict loads the model if needed and delegates to it.
func (m *LazyModel) Predict(ctx context.Context, img image.Image) ([]Box, error) {
	model, err := m.get()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return model.Predict(ctx, img)
}

// Loaded reports whether the model is currently loaded.
func (m *LazyModel) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model != nil
}

// Close closes the model if it was loaded.
func (m *LazyModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.model == nil {
		return nil
	}
	err := m.model.Close()
	m.model = nil
	return err
}

// CommandModel runs an external detector per image. The PNG-encoded image
// is written to its stdin and a JSON array of boxes is read from stdout:
//
//	[{"x":10,"y":12,"w":40,"h":41,"label":"red","score":0.93}]
type CommandModel struct {
	Path string
	Args []string
}

type commandBox struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	W     int         `json:"w"`
	H     int         `json:"h"`
	Label types.Label `json:"label"`
	Score float64     `json:"score"`
}

// Predict runs the detector.
func (m *CommandModel) Predict(ctx context.Context, img image.Image) ([]Box, error) {
	data, err := ingest.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, m.Path, m.Args...)
	cmd.Stdin = bytes.NewReader(data)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", m.Path, err, bytes.TrimSpace(stderr.Bytes()))
	}

	var raw []commandBox
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse detector output: %w", err)
	}
	boxes := make([]Box, len(raw))
	for i, r := range raw {
		boxes[i] = Box{
			Rect:  image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H),
			Label: r.Label,
			Score: r.Score,
		}
	}
	return boxes, nil
}

// Close is a no-op.
func (m *CommandModel) Close() error { return nil }
