package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

func TestSuffix(t *testing.T) {
	if Suffix(9) != SuffixOK {
		t.Errorf("Suffix(9) = %q", Suffix(9))
	}
	for _, n := range []int{0, 8, 10} {
		if Suffix(n) != SuffixPartial {
			t.Errorf("Suffix(%d) = %q", n, Suffix(n))
		}
	}
}

func TestDrawOutlinesBoxes(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 110, 110))
	obs := []types.Observation{{Position: image.Pt(20, 50), Width: 40, Height: 40, Label: types.Red}}
	cells := []image.Rectangle{image.Rect(0, 0, 30, 30)}

	out := Draw(src, obs, cells)

	if out.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	// bottom edge of the red box, away from the label
	if got := out.RGBAAt(40, 88); got != (color.RGBA{R: 183, G: 18, B: 52, A: 255}) {
		t.Errorf("box edge = %v", got)
	}
	if got := out.RGBAAt(15, 0); got != gridColor {
		t.Errorf("grid edge = %v", got)
	}
	// inside the box, below the label, untouched
	if got := out.RGBAAt(40, 80); got != (color.RGBA{}) {
		t.Errorf("interior = %v", got)
	}
	// the source is not modified
	if got := src.RGBAAt(30, 60); got != (color.RGBA{}) {
		t.Errorf("source modified: %v", got)
	}
}
