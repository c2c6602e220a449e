package gocube

import (
	"strings"

	"github.com/SeamusWaldron/gocube_vision/internal/solution"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Face is a cube face letter.
type Face = types.Face

const (
	FaceU = types.FaceU // Up
	FaceR = types.FaceR // Right
	FaceF = types.FaceF // Front
	FaceD = types.FaceD // Down
	FaceL = types.FaceL // Left
	FaceB = types.FaceB // Back
)

// Turn is the direction and magnitude of a face turn.
type Turn = types.Turn

const (
	CW     = types.TurnCW  // Clockwise (90 degrees)
	CCW    = types.TurnCCW // Counter-clockwise (90 degrees)
	Double = types.Turn180 // Half turn (180 degrees)
)

// Move is a single face turn.
type Move = types.Move

// Label is a sticker colour name.
type Label = types.Label

// CubeState maps face letters to sticker labels.
type CubeState = types.CubeState

// Solution is a decoded solver result.
type Solution = types.Solution

// ParseMove parses one solver or standard notation token.
// Examples: R, R', R2, R3
func ParseMove(s string) (Move, error) {
	return solution.ParseToken(strings.TrimSpace(s))
}

// ParseMoves parses a space-separated sequence of moves. A trailing
// parenthesized annotation such as "(19f)" is ignored.
// Example: "R U R' U'"
func ParseMoves(s string) ([]Move, error) {
	return solution.Parse(s)
}

// FormatMoves formats a slice of moves as a space-separated notation string.
func FormatMoves(moves []Move) string {
	return strings.Join(solution.Notations(moves), " ")
}
