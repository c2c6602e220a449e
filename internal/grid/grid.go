// Package grid orders located stickers into a 3x3 face matrix, falling back
// to blind sampling of an assumed layout when detection is incomplete.
package grid

import (
	"image"
	"image/color"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Config controls the blind-grid fallback geometry.
type Config struct {
	// RegionFraction is the share of the shorter image dimension assumed to
	// be covered by the face, centred in the image.
	RegionFraction float64 `yaml:"region_fraction" json:"region_fraction" validate:"gt=0,lte=1"`
	// PatchFraction is the sampled patch edge as a share of one cell edge.
	PatchFraction float64 `yaml:"patch_fraction" json:"patch_fraction" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the standard fallback geometry.
func DefaultConfig() Config {
	return Config{
		RegionFraction: 0.6,
		PatchFraction:  0.3,
	}
}

// Assembler builds face matrices.
type Assembler struct {
	cls *classifier.Classifier
	cfg Config
}

// New creates an Assembler. The classifier is used by the fallback path in
// forced mode.
func New(cls *classifier.Classifier, cfg Config) *Assembler {
	if cfg.RegionFraction <= 0 || cfg.RegionFraction > 1 {
		cfg.RegionFraction = DefaultConfig().RegionFraction
	}
	if cfg.PatchFraction <= 0 || cfg.PatchFraction > 1 {
		cfg.PatchFraction = DefaultConfig().PatchFraction
	}
	return &Assembler{cls: cls, cfg: cfg}
}

// Assemble returns the face matrix for a set of observations. With exactly
// nine observations they are ordered by position; otherwise the image is
// blind-sampled. The second result reports whether the fallback ran.
func (a *Assembler) Assemble(obs []types.Observation, img image.Image) (types.FaceMatrix, bool) {
	if len(obs) == 9 {
		var m types.FaceMatrix
		for i, o := range Order(obs) {
			m[i] = o.Label
		}
		return m, false
	}
	return a.BlindSample(img), true
}

// Order sorts nine observations into row-major physical order: by vertical
// position into three rows, then by horizontal position within each row.
// The input slice is not modified.
func Order(obs []types.Observation) []types.Observation {
	out := make([]types.Observation, len(obs))
	copy(out, obs)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Center().Y < out[j].Center().Y
	})
	for row := 0; row*3 < len(out); row++ {
		end := min(row*3+3, len(out))
		r := out[row*3 : end]
		sort.SliceStable(r, func(i, j int) bool {
			return r[i].Center().X < r[j].Center().X
		})
	}
	return out
}

// Cells returns the nine cell rectangles of the assumed face region for an
// image with the given bounds, in row-major order.
func (a *Assembler) Cells(bounds image.Rectangle) [9]image.Rectangle {
	side := int(float64(min(bounds.Dx(), bounds.Dy())) * a.cfg.RegionFraction)
	side = max(side, 3)
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	cell := side / 3

	var cells [9]image.Rectangle
	for i := range cells {
		row, col := i/3, i%3
		minPt := image.Pt(x0+col*cell, y0+row*cell)
		cells[i] = image.Rectangle{Min: minPt, Max: minPt.Add(image.Pt(cell, cell))}
	}
	return cells
}

// BlindSample classifies a patch at the center of each assumed cell in
// forced mode. It always returns nine palette labels.
func (a *Assembler) BlindSample(img image.Image) types.FaceMatrix {
	var m types.FaceMatrix
	bounds := img.Bounds()
	for i, cell := range a.Cells(bounds) {
		patch := a.patch(cell).Intersect(bounds)
		rgb := MeanColor(img, patch)
		m[i], _ = a.cls.Classify(rgb, classifier.Forced)
	}
	return m
}

// patch returns the sampling rectangle centred in cell.
func (a *Assembler) patch(cell image.Rectangle) image.Rectangle {
	edge := max(int(float64(cell.Dx())*a.cfg.PatchFraction), 1)
	c := image.Pt(cell.Min.X+cell.Dx()/2, cell.Min.Y+cell.Dy()/2)
	half := edge / 2
	return image.Rect(c.X-half, c.Y-half, c.X-half+edge, c.Y-half+edge)
}

// MeanColor returns the per-channel mean of the pixels in r. An empty
// rectangle yields black.
func MeanColor(img image.Image, r image.Rectangle) [3]uint8 {
	if r.Empty() {
		return [3]uint8{}
	}
	n := r.Dx() * r.Dy()
	rs := make([]float64, 0, n)
	gs := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rs = append(rs, float64(c.R))
			gs = append(gs, float64(c.G))
			bs = append(bs, float64(c.B))
		}
	}
	return [3]uint8{
		clamp8(stat.Mean(rs, nil)),
		clamp8(stat.Mean(gs, nil)),
		clamp8(stat.Mean(bs, nil)),
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
