// Package overlay draws located stickers onto face images for debugging.
package overlay

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Suffixes appended to overlay file names.
const (
	SuffixOK      = "_ok"
	SuffixPartial = "_partial"
)

// Suffix returns the file name suffix for a face with n located stickers.
func Suffix(n int) string {
	if n == 9 {
		return SuffixOK
	}
	return SuffixPartial
}

const stroke = 2

var (
	textColor = color.RGBA{A: 255}
	textBack  = color.RGBA{R: 255, G: 255, B: 255, A: 200}
	gridColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// Draw returns a copy of img with each observation's box outlined in its
// palette colour and labelled with its name. When cells is non-empty those
// rectangles are outlined as well, marking the blind-grid sampling area.
func Draw(img image.Image, obs []types.Observation, cells []image.Rectangle) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, c := range cells {
		outline(dst, c, gridColor)
	}
	for _, o := range obs {
		box := o.Bounds()
		outline(dst, box, boxColor(o.Label))
		label(dst, box.Min.Add(image.Pt(stroke+1, stroke+1)), string(o.Label))
	}
	return dst
}

func boxColor(l types.Label) color.RGBA {
	rgb, ok := classifier.DefaultReferences[l]
	if !ok || l == types.White {
		// white boxes vanish on white stickers
		return color.RGBA{R: 40, G: 40, B: 40, A: 255}
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255}
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+stroke),
		image.Rect(r.Min.X, r.Max.Y-stroke, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+stroke, r.Max.Y),
		image.Rect(r.Max.X-stroke, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), src, image.Point{}, draw.Over)
	}
}

func label(dst *image.RGBA, at image.Point, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(textColor), Face: face}
	width := d.MeasureString(text).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()

	bg := image.Rect(at.X, at.Y, at.X+width+2, at.Y+height+2)
	draw.Draw(dst, bg.Intersect(dst.Bounds()), image.NewUniform(textBack), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(at.X + 1),
		Y: fixed.I(at.Y+1) + metrics.Ascent,
	}
	d.DrawString(text)
}
