// Package locator finds candidate sticker regions in a face photo.
//
// Two strategies share the Locator interface: ContourLocator runs an edge and
// contour pipeline over the image, ModelLocator adapts an external box model.
// A pipeline uses exactly one of them.
package locator

import (
	"context"
	"errors"
	"image"
	"sort"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// ErrEmptyImage is returned for an image with no pixels.
var ErrEmptyImage = errors.New("empty image")

// MaxStickers is the number of stickers on one face.
const MaxStickers = 9

// Locator finds classified sticker observations in an image. Observations
// classified as unknown are never returned, and at most MaxStickers are.
type Locator interface {
	Locate(ctx context.Context, img image.Image) ([]types.Observation, error)
}

// Ranking selects how contour candidates are ordered when more than nine
// survive. The box-model strategy always ranks by the model's own score.
type Ranking string

const (
	// RankSaturation prefers the most saturated samples.
	RankSaturation Ranking = "saturation"
	// RankCentral prefers candidates closest to the image center.
	RankCentral Ranking = "central"
)

// Config holds the contour pipeline parameters.
type Config struct {
	Denoise          string  `yaml:"denoise" json:"denoise" validate:"oneof=bilateral blur none"`
	CannyLow         float32 `yaml:"canny_low" json:"canny_low" validate:"gte=0"`
	CannyHigh        float32 `yaml:"canny_high" json:"canny_high" validate:"gtfield=CannyLow"`
	DilateKernel     int     `yaml:"dilate_kernel" json:"dilate_kernel" validate:"gte=1"`
	Epsilon          float64 `yaml:"epsilon" json:"epsilon" validate:"gt=0,lt=1"`
	MinVertices      int     `yaml:"min_vertices" json:"min_vertices" validate:"gte=3"`
	MaxVertices      int     `yaml:"max_vertices" json:"max_vertices" validate:"gtefield=MinVertices"`
	MinAspect        float64 `yaml:"min_aspect" json:"min_aspect" validate:"gt=0"`
	MaxAspect        float64 `yaml:"max_aspect" json:"max_aspect" validate:"gtefield=MinAspect"`
	MinArea          float64 `yaml:"min_area" json:"min_area" validate:"gte=0"`
	MaxArea          float64 `yaml:"max_area" json:"max_area" validate:"gtfield=MinArea,lte=1"`
	KMeansIterations int     `yaml:"kmeans_iterations" json:"kmeans_iterations" validate:"gte=1"`
	Ranking          Ranking `yaml:"ranking" json:"ranking" validate:"oneof=saturation central"`
	// Overlap is the intersection-over-union above which two candidate boxes
	// are treated as the same sticker.
	Overlap float64 `yaml:"overlap" json:"overlap" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the standard contour pipeline parameters.
func DefaultConfig() Config {
	return Config{
		Denoise:          "bilateral",
		CannyLow:         30,
		CannyHigh:        150,
		DilateKernel:     3,
		Epsilon:          0.05,
		MinVertices:      4,
		MaxVertices:      6,
		MinAspect:        0.7,
		MaxAspect:        1.4,
		MinArea:          0.005,
		MaxArea:          0.15,
		KMeansIterations: 10,
		Ranking:          RankSaturation,
		Overlap:          0.5,
	}
}

// AcceptVertices reports whether an approximated polygon has a sticker-like
// vertex count.
func (c Config) AcceptVertices(n int) bool {
	return n >= c.MinVertices && n <= c.MaxVertices
}

// AcceptBox reports whether a bounding box is near-square and sized like a
// sticker relative to the image area.
func (c Config) AcceptBox(box image.Rectangle, imageArea int) bool {
	if box.Empty() || imageArea <= 0 {
		return false
	}
	aspect := float64(box.Dx()) / float64(box.Dy())
	if aspect < c.MinAspect || aspect > c.MaxAspect {
		return false
	}
	share := float64(box.Dx()*box.Dy()) / float64(imageArea)
	return share >= c.MinArea && share <= c.MaxArea
}

// IoU returns the intersection-over-union of two rectangles.
func IoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	i := inter.Dx() * inter.Dy()
	u := a.Dx()*a.Dy() + b.Dx()*b.Dy() - i
	if u <= 0 {
		return 0
	}
	return float64(i) / float64(u)
}

// Select orders candidates by descending Score, drops any whose box overlaps
// an already kept candidate by more than overlap, and keeps at most n.
func Select(obs []types.Observation, n int, overlap float64) []types.Observation {
	sorted := make([]types.Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	kept := make([]types.Observation, 0, min(n, len(sorted)))
	for _, o := range sorted {
		if len(kept) == n {
			break
		}
		dup := false
		for _, k := range kept {
			if IoU(o.Bounds(), k.Bounds()) > overlap {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, o)
		}
	}
	return kept
}

// centrality scores a box by closeness of its center to the image center,
// 1 at the center and 0 at a corner.
func centrality(box, bounds image.Rectangle) float64 {
	cx := float64(box.Min.X+box.Max.X) / 2
	cy := float64(box.Min.Y+box.Max.Y) / 2
	ix := float64(bounds.Min.X+bounds.Max.X) / 2
	iy := float64(bounds.Min.Y+bounds.Max.Y) / 2
	dx, dy := cx-ix, cy-iy
	hx, hy := float64(bounds.Dx())/2, float64(bounds.Dy())/2
	maxD := hx*hx + hy*hy
	if maxD == 0 {
		return 1
	}
	return 1 - (dx*dx+dy*dy)/maxD
}
