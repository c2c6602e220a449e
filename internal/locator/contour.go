package locator

import (
	"context"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/internal/colorspace"
	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// ContourLocator finds stickers as near-square closed contours.
type ContourLocator struct {
	cfg Config
	cls *classifier.Classifier
}

// NewContourLocator creates a contour locator.
func NewContourLocator(cls *classifier.Classifier, cfg Config) *ContourLocator {
	return &ContourLocator{cfg: cfg, cls: cls}
}

// Locate runs the contour pipeline over img.
func (l *ContourLocator) Locate(ctx context.Context, img image.Image) ([]types.Observation, error) {
	bgr, err := toBGR(img)
	if err != nil {
		return nil, err
	}
	defer bgr.Close()

	boxes := l.candidateBoxes(bgr)
	imageBounds := image.Rect(0, 0, bgr.Cols(), bgr.Rows())

	var obs []types.Observation
	for _, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rgb := l.dominantColor(bgr, box)
		label, dist := l.cls.Classify(rgb, classifier.Strict)
		if label == types.Unknown {
			continue
		}

		o := types.Observation{
			Position: box.Min,
			Width:    box.Dx(),
			Height:   box.Dy(),
			Label:    label,
			Sample:   rgb,
			Distance: dist,
		}
		switch l.cfg.Ranking {
		case RankCentral:
			o.Score = centrality(box, imageBounds)
		default:
			o.Score = colorspace.FromRGB(rgb[0], rgb[1], rgb[2]).Chroma()
		}
		obs = append(obs, o)
	}

	return Select(obs, MaxStickers, l.cfg.Overlap), nil
}

// candidateBoxes returns the bounding boxes of contours that pass the
// polygon and geometry filters.
func (l *ContourLocator) candidateBoxes(bgr gocv.Mat) []image.Rectangle {
	denoised := gocv.NewMat()
	defer denoised.Close()
	switch l.cfg.Denoise {
	case "bilateral":
		gocv.BilateralFilter(bgr, &denoised, 9, 75, 75)
	case "blur":
		gocv.GaussianBlur(bgr, &denoised, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)
	default:
		bgr.CopyTo(&denoised)
	}
	if denoised.Empty() {
		gocv.GaussianBlur(bgr, &denoised, image.Point{X: 5, Y: 5}, 0, 0, gocv.BorderDefault)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(denoised, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: 3, Y: 3}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, l.cfg.CannyLow, l.cfg.CannyHigh)

	k := max(l.cfg.DilateKernel, 1)
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
	defer kernel.Close()
	gocv.Dilate(edges, &edges, kernel)

	contours := gocv.FindContours(edges, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	area := bgr.Cols() * bgr.Rows()
	var boxes []image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		epsilon := l.cfg.Epsilon * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		vertices := approx.Size()
		approx.Close()
		if !l.cfg.AcceptVertices(vertices) {
			continue
		}

		box := gocv.BoundingRect(contour)
		if l.cfg.AcceptBox(box, area) {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// dominantColor returns the single-cluster k-means center of the pixels in
// box, or their mean if clustering produces no usable center.
func (l *ContourLocator) dominantColor(bgr gocv.Mat, box image.Rectangle) [3]uint8 {
	region := bgr.Region(box)
	defer region.Close()

	rows, cols := region.Rows(), region.Cols()
	n := rows * cols
	if n == 0 {
		return [3]uint8{}
	}

	pixels := gocv.NewMatWithSize(n, 3, gocv.MatTypeCV32F)
	defer pixels.Close()
	rs := make([]float64, 0, n)
	gs := make([]float64, 0, n)
	bs := make([]float64, 0, n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			idx := y*cols + x
			vec := region.GetVecbAt(y, x)
			pixels.SetFloatAt(idx, 0, float32(vec[2]))
			pixels.SetFloatAt(idx, 1, float32(vec[1]))
			pixels.SetFloatAt(idx, 2, float32(vec[0]))
			rs = append(rs, float64(vec[2]))
			gs = append(gs, float64(vec[1]))
			bs = append(bs, float64(vec[0]))
		}
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, max(l.cfg.KMeansIterations, 1), 1.0)
	gocv.KMeans(pixels, 1, &labels, criteria, 1, gocv.KMeansPPCenters, &centers)

	if centers.Rows() >= 1 && centers.Cols() >= 3 {
		r := float64(centers.GetFloatAt(0, 0))
		g := float64(centers.GetFloatAt(0, 1))
		b := float64(centers.GetFloatAt(0, 2))
		if !math.IsNaN(r) && !math.IsNaN(g) && !math.IsNaN(b) {
			return [3]uint8{clamp8(r), clamp8(g), clamp8(b)}
		}
	}

	return [3]uint8{
		clamp8(stat.Mean(rs, nil)),
		clamp8(stat.Mean(gs, nil)),
		clamp8(stat.Mean(bs, nil)),
	}
}

// toBGR converts an image into a BGR Mat. The caller must Close it.
func toBGR(img image.Image) (gocv.Mat, error) {
	rgba := ingest.ToRGBA(img)
	b := rgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	pix := rgba.Pix[:min(len(rgba.Pix), 4*w*h)]
	if rgba.Stride != 4*w {
		pix = make([]byte, 0, 4*w*h)
		for y := 0; y < h; y++ {
			off := y * rgba.Stride
			pix = append(pix, rgba.Pix[off:off+4*w]...)
		}
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap image: %w", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
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
