package types

import "image"

// Label is a sticker colour name drawn from the fixed palette.
type Label string

const (
	White  Label = "white"
	Yellow Label = "yellow"
	Red    Label = "red"
	Orange Label = "orange"
	Blue   Label = "blue"
	Green  Label = "green"

	// Unknown marks a strict classification that matched nothing closely enough.
	Unknown Label = "unknown"
	// Placeholder fills a face whose image could not be decoded.
	Placeholder Label = "black"
)

// Palette lists the six sticker colours in canonical order.
var Palette = []Label{White, Yellow, Red, Orange, Blue, Green}

// IsPalette reports whether l is one of the six sticker colours.
func (l Label) IsPalette() bool {
	switch l {
	case White, Yellow, Red, Orange, Blue, Green:
		return true
	}
	return false
}

// centerFace is the canonical center colour -> face mapping.
var centerFace = map[Label]Face{
	White:  FaceU,
	Red:    FaceR,
	Green:  FaceF,
	Yellow: FaceD,
	Orange: FaceL,
	Blue:   FaceB,
}

// Face returns the face whose center carries this colour.
func (l Label) Face() (Face, bool) {
	f, ok := centerFace[l]
	return f, ok
}

// CenterColor returns the colour of a face's center sticker.
func (f Face) CenterColor() Label {
	for l, face := range centerFace {
		if face == f {
			return l
		}
	}
	return Unknown
}

// Observation is one located sticker candidate.
type Observation struct {
	Position image.Point `json:"position"` // top-left
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Label    Label       `json:"label"`
	Sample   [3]uint8    `json:"sample"` // dominant RGB
	Distance float64     `json:"distance"`
	// Score ranks candidates when more than nine are found. Saturation for
	// the contour locator, model confidence for the box-model locator.
	Score float64 `json:"score"`
}

// Bounds returns the observation's rectangle.
func (o Observation) Bounds() image.Rectangle {
	return image.Rect(o.Position.X, o.Position.Y, o.Position.X+o.Width, o.Position.Y+o.Height)
}

// Center returns the rectangle center.
func (o Observation) Center() image.Point {
	return image.Point{X: o.Position.X + o.Width/2, Y: o.Position.Y + o.Height/2}
}

// FaceMatrix is a row-major 3x3 grid of sticker labels:
//
//	0 1 2
//	3 4 5
//	6 7 8
type FaceMatrix [9]Label

// Rows returns the matrix as three rows.
func (m FaceMatrix) Rows() [3][3]Label {
	var rows [3][3]Label
	for i, l := range m {
		rows[i/3][i%3] = l
	}
	return rows
}

// Slice returns the labels as a slice.
func (m FaceMatrix) Slice() []Label {
	out := make([]Label, 9)
	copy(out, m[:])
	return out
}

// Center returns the center sticker.
func (m FaceMatrix) Center() Label {
	return m[4]
}

// PlaceholderMatrix returns the matrix used for an undecodable face image.
func PlaceholderMatrix() FaceMatrix {
	var m FaceMatrix
	for i := range m {
		m[i] = Placeholder
	}
	return m
}

// CubeState maps face letters to their sticker labels. A face may be absent
// or hold fewer than nine labels; validation happens at encode time.
type CubeState map[Face][]Label
