// Package classifier matches sampled sticker colours against the fixed
// palette using CIEDE2000 distance in Lab space.
package classifier

import (
	"image/color"
	"math"

	"github.com/SeamusWaldron/gocube_vision/internal/colorspace"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Mode selects how a poor match is reported.
type Mode int

const (
	// Strict rejects matches above the threshold as types.Unknown.
	Strict Mode = iota
	// Forced always returns the nearest palette colour.
	Forced
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Forced:
		return "forced"
	default:
		return "unknown"
	}
}

// DefaultThreshold is the strict-mode CIEDE2000 rejection distance.
const DefaultThreshold = 60.0

// DefaultAchromaticChroma is the C*ab below which a sample is treated as a
// neutral grey and only compared against neutral references.
const DefaultAchromaticChroma = 10.0

// DefaultReferences holds one representative sRGB value per palette colour.
var DefaultReferences = map[types.Label][3]uint8{
	types.White:  {255, 255, 255},
	types.Yellow: {255, 213, 0},
	types.Red:    {183, 18, 52},
	types.Orange: {255, 88, 0},
	types.Blue:   {0, 70, 173},
	types.Green:  {0, 155, 72},
}

type reference struct {
	label      types.Label
	rgb        [3]uint8
	lab        colorspace.Lab
	achromatic bool
}

// Classifier holds the precomputed reference table. It is read-only after
// construction and safe for concurrent use.
type Classifier struct {
	refs             []reference
	threshold        float64
	achromaticChroma float64
	hasNeutral       bool
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the strict-mode rejection distance.
func WithThreshold(d float64) Option {
	return func(c *Classifier) {
		c.threshold = d
	}
}

// WithAchromaticChroma sets the chroma below which samples are neutral.
func WithAchromaticChroma(chroma float64) Option {
	return func(c *Classifier) {
		c.achromaticChroma = chroma
	}
}

// WithReferences replaces the reference colours. Labels outside the palette
// are ignored.
func WithReferences(refs map[types.Label][3]uint8) Option {
	return func(c *Classifier) {
		c.refs = buildReferences(refs)
	}
}

// New creates a classifier with the default palette.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		threshold:        DefaultThreshold,
		achromaticChroma: DefaultAchromaticChroma,
	}
	c.refs = buildReferences(DefaultReferences)
	for _, opt := range opts {
		opt(c)
	}
	for i := range c.refs {
		c.refs[i].achromatic = c.refs[i].lab.Chroma() < c.achromaticChroma
		c.hasNeutral = c.hasNeutral || c.refs[i].achromatic
	}
	return c
}

func buildReferences(table map[types.Label][3]uint8) []reference {
	refs := make([]reference, 0, len(table))
	// iterate the palette so reference order is deterministic
	for _, label := range types.Palette {
		rgb, ok := table[label]
		if !ok {
			continue
		}
		lab := colorspace.FromRGB(rgb[0], rgb[1], rgb[2])
		refs = append(refs, reference{label: label, rgb: rgb, lab: lab})
	}
	return refs
}

// Threshold returns the strict-mode rejection distance.
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Classify returns the nearest palette colour for an RGB sample and its
// CIEDE2000 distance. In Strict mode a distance above the threshold yields
// types.Unknown. Forced mode never yields types.Unknown.
func (c *Classifier) Classify(rgb [3]uint8, mode Mode) (types.Label, float64) {
	lab := colorspace.FromRGB(rgb[0], rgb[1], rgb[2])
	neutral := lab.Chroma() < c.achromaticChroma

	best := types.Unknown
	bestDist := math.Inf(1)
	for _, ref := range c.refs {
		// a grey sample must never be labelled with a saturated hue
		if neutral && !ref.achromatic && c.hasNeutral {
			continue
		}
		d := colorspace.DeltaE2000(lab, ref.lab)
		if d < bestDist {
			best, bestDist = ref.label, d
		}
	}

	if mode == Strict && bestDist > c.threshold {
		return types.Unknown, bestDist
	}
	return best, bestDist
}

// ClassifyColor is Classify for an image/color value.
func (c *Classifier) ClassifyColor(col color.Color, mode Mode) (types.Label, float64) {
	return c.Classify(RGB(col), mode)
}

// Reference returns the reference sRGB value for a label.
func (c *Classifier) Reference(label types.Label) ([3]uint8, bool) {
	for _, ref := range c.refs {
		if ref.label == label {
			return ref.rgb, true
		}
	}
	return [3]uint8{}, false
}

// RGB converts any colour to 8-bit non-premultiplied RGB.
func RGB(col color.Color) [3]uint8 {
	n := color.NRGBAModel.Convert(col).(color.NRGBA)
	return [3]uint8{n.R, n.G, n.B}
}
