package state

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// FaceError records a face whose data could not be normalized. The face is
// left out of the assembled state.
type FaceError struct {
	Face types.Face
	Err  error
}

func (e FaceError) Error() string {
	return fmt.Sprintf("face %s: %v", e.Face, e.Err)
}

func (e FaceError) Unwrap() error { return e.Err }

// Assemble normalizes each face of raw, keyed by face letter, into a cube
// state. Missing faces are simply absent, and so are faces whose data has
// an unsupported shape; those are returned as skipped, in face order. Keys
// that are not face letters are ignored.
func Assemble(raw map[string]any) (types.CubeState, []FaceError) {
	state := make(types.CubeState, len(raw))
	var skipped []FaceError
	for key, v := range raw {
		f := types.Face(strings.ToUpper(strings.TrimSpace(key)))
		if !f.Valid() {
			continue
		}
		labels, _, err := Normalize(v)
		if err != nil {
			skipped = append(skipped, FaceError{Face: f, Err: err})
			continue
		}
		state[f] = labels
	}
	slices.SortFunc(skipped, func(a, b FaceError) int {
		return slices.Index(types.FaceOrder, a.Face) - slices.Index(types.FaceOrder, b.Face)
	})
	return state, skipped
}

// DecodeJSON reads a JSON object keyed by face letter and assembles it. Only
// a document that is not a JSON object is an error; malformed faces are
// reported as skipped.
func DecodeJSON(r io.Reader) (types.CubeState, []FaceError, error) {
	var raw map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decode cube state: %w", err)
	}
	st, skipped := Assemble(raw)
	return st, skipped, nil
}

// Nested returns the state as rows of three labels per face, the persisted
// JSON form.
func Nested(state types.CubeState) map[types.Face][][]types.Label {
	out := make(map[types.Face][][]types.Label, len(state))
	for f, labels := range state {
		rows := make([][]types.Label, 0, 3)
		for i := 0; i < len(labels); i += 3 {
			end := min(i+3, len(labels))
			row := make([]types.Label, end-i)
			copy(row, labels[i:end])
			rows = append(rows, row)
		}
		out[f] = rows
	}
	return out
}

// EncodeJSON writes the state in nested form.
func EncodeJSON(w io.Writer, state types.CubeState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Nested(state))
}

// Complete reports whether every face is present with at least nine labels.
func Complete(state types.CubeState) bool {
	for _, f := range types.FaceOrder {
		if len(state[f]) < 9 {
			return false
		}
	}
	return true
}
