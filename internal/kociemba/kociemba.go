// Package kociemba encodes cube states into the 54-character facelet string
// consumed by two-phase solvers and validates such strings.
package kociemba

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Length is the number of facelets in a code.
const Length = 54

// Unmapped marks a facelet whose colour has no face letter.
const Unmapped = '?'

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid kociemba code")

// CenterIndex returns the code index of a face's center facelet.
func CenterIndex(f types.Face) int {
	for i, face := range types.FaceOrder {
		if face == f {
			return i*9 + 4
		}
	}
	return -1
}

// Diagnostic records a problem found while encoding.
type Diagnostic struct {
	Face    types.Face
	Index   int // facelet within the face, or -1 for the whole face
	Message string
}

func (d Diagnostic) String() string {
	if d.Index < 0 {
		return fmt.Sprintf("face %s: %s", d.Face, d.Message)
	}
	return fmt.Sprintf("face %s[%d]: %s", d.Face, d.Index, d.Message)
}

// Encode converts a state into a 54-character code in U,R,F,D,L,B order.
// Colours without a face letter become '?', as do all nine facelets of a
// face that is missing or has fewer than nine colours. Each substitution is
// reported as a diagnostic.
func Encode(state types.CubeState) (string, []Diagnostic) {
	var (
		b     strings.Builder
		diags []Diagnostic
	)
	b.Grow(Length)

	for _, f := range types.FaceOrder {
		labels, ok := state[f]
		switch {
		case !ok:
			b.WriteString(strings.Repeat(string(Unmapped), 9))
			diags = append(diags, Diagnostic{Face: f, Index: -1, Message: "missing"})
			continue
		case len(labels) < 9:
			b.WriteString(strings.Repeat(string(Unmapped), 9))
			diags = append(diags, Diagnostic{
				Face:    f,
				Index:   -1,
				Message: fmt.Sprintf("has %d colours, need 9", len(labels)),
			})
			continue
		}

		for i, l := range labels[:9] {
			face, ok := l.Face()
			if !ok {
				b.WriteByte(Unmapped)
				diags = append(diags, Diagnostic{Face: f, Index: i, Message: fmt.Sprintf("unknown colour %q", l)})
				continue
			}
			b.WriteString(string(face))
		}
	}
	return b.String(), diags
}

// ValidationError describes why a code was rejected.
type ValidationError struct {
	Length   int
	Face     types.Face
	Expected byte
	Actual   byte
}

func (e *ValidationError) Error() string {
	if e.Length != Length {
		return fmt.Sprintf("invalid length: need %d characters, got %d", Length, e.Length)
	}
	return fmt.Sprintf("center of face %s should be %c, got %c", e.Face, e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrInvalid) true for validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

// Validate checks the code length and that each face's center carries its
// own letter. The first failure is returned as a *ValidationError.
func Validate(code string) error {
	if len(code) != Length {
		return &ValidationError{Length: len(code)}
	}
	for _, f := range types.FaceOrder {
		idx := CenterIndex(f)
		if code[idx] != f[0] {
			return &ValidationError{Length: Length, Face: f, Expected: f[0], Actual: code[idx]}
		}
	}
	return nil
}

// Decode converts a code back into a cube state, mapping each face letter to
// its center colour. '?' and other characters become types.Unknown.
func Decode(code string) (types.CubeState, error) {
	if len(code) != Length {
		return nil, &ValidationError{Length: len(code)}
	}
	state := make(types.CubeState, 6)
	for fi, f := range types.FaceOrder {
		labels := make([]types.Label, 9)
		for i := range labels {
			letter := types.Face(code[fi*9+i : fi*9+i+1])
			if letter.Valid() {
				labels[i] = letter.CenterColor()
			} else {
				labels[i] = types.Unknown
			}
		}
		state[f] = labels
	}
	return state, nil
}
