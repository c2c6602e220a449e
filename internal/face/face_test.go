package face

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/internal/grid"
	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

type stubLocator struct {
	obs []types.Observation
	err error
}

func (s stubLocator) Locate(context.Context, image.Image) ([]types.Observation, error) {
	return s.obs, s.err
}

func nineGreen() []types.Observation {
	obs := make([]types.Observation, 9)
	for i := range obs {
		obs[i] = types.Observation{
			Position: image.Pt(i%3*50, i/3*50),
			Width:    40,
			Height:   40,
			Label:    types.Green,
		}
	}
	return obs
}

func uniformPNG(t *testing.T, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newDetector(loc stubLocator) *Detector {
	return NewDetector(loc, grid.New(classifier.New(), grid.DefaultConfig()), WithSize(64), WithMetrics(metrics.New()))
}

func TestDetectOrdered(t *testing.T) {
	d := newDetector(stubLocator{obs: nineGreen()})
	res, err := d.Detect(context.Background(), types.FaceF, image.NewRGBA(image.Rect(0, 0, 10, 10)))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Fallback {
		t.Error("expected ordered path")
	}
	for i, l := range res.Matrix {
		if l != types.Green {
			t.Errorf("cell %d = %s, want green", i, l)
		}
	}
	if res.Image.Bounds().Dx() != 64 {
		t.Errorf("normalized width = %d, want 64", res.Image.Bounds().Dx())
	}
}

func TestDetectLocatorErrorFallsBack(t *testing.T) {
	d := newDetector(stubLocator{err: errors.New("opencv exploded")})
	res, err := d.DetectEncoded(context.Background(), types.FaceU, uniformPNG(t, color.RGBA{R: 250, G: 250, B: 250, A: 255}))
	if err != nil {
		t.Fatalf("DetectEncoded: %v", err)
	}
	if !res.Fallback {
		t.Error("expected fallback")
	}
	for i, l := range res.Matrix {
		if l != types.White {
			t.Errorf("cell %d = %s, want white", i, l)
		}
	}
}

func TestDetectCancelled(t *testing.T) {
	d := newDetector(stubLocator{err: context.Canceled})
	if _, err := d.Detect(context.Background(), types.FaceU, image.NewRGBA(image.Rect(0, 0, 4, 4))); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDetectEncodedDecodeFailure(t *testing.T) {
	d := newDetector(stubLocator{obs: nineGreen()})
	res, err := d.DetectEncoded(context.Background(), types.FaceR, "data:image/png;base64,@@@@")
	if err != nil {
		t.Fatalf("decode failure must not be fatal: %v", err)
	}
	if res.Complete() {
		t.Error("expected DecodeErr")
	}
	if res.Matrix != types.PlaceholderMatrix() {
		t.Errorf("matrix = %v, want placeholder", res.Matrix)
	}
}

func TestDetectEncodedOverLimit(t *testing.T) {
	d := NewDetector(stubLocator{obs: nineGreen()}, grid.New(classifier.New(), grid.DefaultConfig()),
		WithSize(64), WithMaxDimension(16))
	res, err := d.DetectEncoded(context.Background(), types.FaceR, uniformPNG(t, color.White))
	if err != nil {
		t.Fatalf("oversized image must not be fatal: %v", err)
	}
	if !errors.Is(res.DecodeErr, ingest.ErrTooLarge) {
		t.Errorf("DecodeErr = %v, want ErrTooLarge", res.DecodeErr)
	}
	if res.Matrix != types.PlaceholderMatrix() {
		t.Errorf("matrix = %v, want placeholder", res.Matrix)
	}
}

func TestDetectAllOrderAndState(t *testing.T) {
	d := newDetector(stubLocator{obs: nineGreen()})
	img := uniformPNG(t, color.White)
	images := map[types.Face]string{
		types.FaceB: img,
		types.FaceU: img,
		types.FaceF: "garbage!",
	}

	results, err := d.DetectAll(context.Background(), images)
	if err != nil {
		t.Fatalf("DetectAll: %v", err)
	}
	var order []types.Face
	for _, r := range results {
		order = append(order, r.Face)
	}
	want := []types.Face{types.FaceU, types.FaceF, types.FaceB}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}

	state := State(results)
	if len(state) != 3 {
		t.Errorf("state faces = %d, want 3", len(state))
	}
	if state[types.FaceF][4] != types.Placeholder {
		t.Errorf("F center = %s, want placeholder", state[types.FaceF][4])
	}
}
