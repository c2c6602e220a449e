// Package state normalizes face colour data of varying shapes into cube
// states and reads and writes their persisted forms.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// ErrUnsupportedShape is returned for face data that is none of the
// recognised shapes.
var ErrUnsupportedShape = errors.New("unsupported face data shape")

// Shape tags the form a face's colour data arrived in.
type Shape int

const (
	ShapeUnsupported Shape = iota
	// ShapeNested is a 3x3 (or ragged) list of rows.
	ShapeNested
	// ShapeFlat is a list of colour names.
	ShapeFlat
	// ShapeChars is a list of single characters spelling colour names.
	ShapeChars
	// ShapeString is one concatenated string.
	ShapeString
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	case ShapeChars:
		return "chars"
	case ShapeString:
		return "string"
	default:
		return "unsupported"
	}
}

// words are matched during segmentation. The placeholder and unknown marker
// are included so persisted incomplete faces survive a round trip.
var words = []string{
	string(types.White), string(types.Yellow), string(types.Red),
	string(types.Orange), string(types.Blue), string(types.Green),
	string(types.Placeholder), string(types.Unknown),
}

// Normalize converts one face's colour data into a flat label list.
//
// Accepted values are a string, a list of strings, a list of lists of
// strings, and their []any equivalents as produced by encoding/json. Nine
// or fewer multi-character names are taken as is; a list made only of
// single characters, or a string, is re-segmented by scanning for colour
// names.
func Normalize(v any) ([]types.Label, Shape, error) {
	switch x := v.(type) {
	case string:
		return Segment(x), ShapeString, nil
	case types.FaceMatrix:
		return x.Slice(), ShapeFlat, nil
	case []types.Label:
		return fromTokens(labelsToStrings(x))
	case []string:
		return fromTokens(x)
	case [][]string:
		var flat []string
		for _, row := range x {
			flat = append(flat, row...)
		}
		labels, _, err := fromTokens(flat)
		return labels, ShapeNested, err
	case [][]types.Label:
		var flat []string
		for _, row := range x {
			flat = append(flat, labelsToStrings(row)...)
		}
		labels, _, err := fromTokens(flat)
		return labels, ShapeNested, err
	case []any:
		return fromAny(x)
	default:
		return nil, ShapeUnsupported, fmt.Errorf("%w: %T", ErrUnsupportedShape, v)
	}
}

func fromAny(items []any) ([]types.Label, Shape, error) {
	nested := len(items) > 0
	for _, it := range items {
		if _, ok := it.([]any); !ok {
			nested = false
			break
		}
	}

	var flat []string
	if nested {
		for _, row := range items {
			for _, cell := range row.([]any) {
				s, ok := cell.(string)
				if !ok {
					return nil, ShapeUnsupported, fmt.Errorf("%w: row cell %T", ErrUnsupportedShape, cell)
				}
				flat = append(flat, s)
			}
		}
		labels, _, err := fromTokens(flat)
		return labels, ShapeNested, err
	}

	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, ShapeUnsupported, fmt.Errorf("%w: element %T", ErrUnsupportedShape, it)
		}
		flat = append(flat, s)
	}
	return fromTokens(flat)
}

func fromTokens(tokens []string) ([]types.Label, Shape, error) {
	if len(tokens) == 0 {
		return nil, ShapeFlat, nil
	}

	single := true
	for _, t := range tokens {
		if len([]rune(strings.TrimSpace(t))) != 1 {
			single = false
			break
		}
	}
	if single {
		return Segment(strings.Join(tokens, "")), ShapeChars, nil
	}

	labels := make([]types.Label, len(tokens))
	for i, t := range tokens {
		labels[i] = types.Label(strings.ToLower(strings.TrimSpace(t)))
	}
	return labels, ShapeFlat, nil
}

// Segment scans s for colour names in order, skipping any characters that
// do not start one.
func Segment(s string) []types.Label {
	s = strings.ToLower(s)
	var out []types.Label
	for i := 0; i < len(s); {
		matched := false
		for _, w := range words {
			if strings.HasPrefix(s[i:], w) {
				out = append(out, types.Label(w))
				i += len(w)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return out
}

func labelsToStrings(labels []types.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}
