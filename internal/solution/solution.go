// Package solution parses raw solver output into normalized moves and
// readable steps.
package solution

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// ErrInvalidNotation is returned for a token that is not a face turn.
var ErrInvalidNotation = errors.New("invalid move notation")

// annotation matches parenthesized solver statistics such as "(19f)".
var annotation = regexp.MustCompile(`\(.*?\)`)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// ParseToken parses one move token. The face letter may be followed by
// nothing or "1" (clockwise), "2" (half turn), or "3", "'" or "`"
// (counter-clockwise). "2'" is accepted as a half turn.
func ParseToken(s string) (types.Move, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Move{}, ErrInvalidNotation
	}

	face := types.Face(strings.ToUpper(s[:1]))
	if !face.Valid() {
		return types.Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	turn := types.TurnCW
	switch s[1:] {
	case "", "1":
	case "2", "2'", "2`":
		turn = types.Turn180
	case "3", "'", "`":
		turn = types.TurnCCW
	default:
		return types.Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}
	return types.Move{Face: face, Turn: turn}, nil
}

// StripAnnotations removes parenthesized text and surrounding whitespace.
func StripAnnotations(raw string) string {
	return strings.TrimSpace(annotation.ReplaceAllString(raw, ""))
}

// Parse converts raw solver text into moves.
func Parse(raw string) ([]types.Move, error) {
	fields := strings.Fields(StripAnnotations(raw))
	moves := make([]types.Move, 0, len(fields))
	for _, tok := range fields {
		m, err := ParseToken(tok)
		if err != nil {
			return nil, err
		}
		moves = append(moves, m)
	}
	return moves, nil
}

// Notations returns the normalized notation of each move.
func Notations(moves []types.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Notation()
	}
	return out
}

// Readable returns the readable description of each move.
func Readable(moves []types.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.Readable()
	}
	return out
}

// Decode builds a Solution from the encoded state and the solver's raw
// output. Line breaks in raw are flattened to spaces before it is stored.
func Decode(code, raw string) (types.Solution, error) {
	raw = strings.TrimSpace(lineBreaks.Replace(raw))
	moves, err := Parse(raw)
	if err != nil {
		return types.Solution{}, err
	}
	notations := Notations(moves)
	return types.Solution{
		KociembaCode:  code,
		RawSolution:   raw,
		Moves:         notations,
		ReadableSteps: Readable(moves),
		StepCount:     len(notations),
	}, nil
}

// Moves parses a solution's normalized move list back into moves.
func Moves(sol types.Solution) ([]types.Move, error) {
	moves := make([]types.Move, len(sol.Moves))
	for i, s := range sol.Moves {
		m, err := ParseToken(s)
		if err != nil {
			return nil, err
		}
		moves[i] = m
	}
	return moves, nil
}
