// Package types contains shared type definitions for the gocube_vision application.
package types

// Face represents a cube face in standard notation. The same letters are
// used as Kociemba facelet symbols.
type Face string

const (
	FaceU Face = "U" // Up
	FaceR Face = "R" // Right
	FaceF Face = "F" // Front
	FaceD Face = "D" // Down
	FaceL Face = "L" // Left
	FaceB Face = "B" // Back
)

// FaceOrder is the fixed Kociemba face order.
var FaceOrder = []Face{FaceU, FaceR, FaceF, FaceD, FaceL, FaceB}

// Valid reports whether f is one of the six face letters.
func (f Face) Valid() bool {
	switch f {
	case FaceU, FaceR, FaceF, FaceD, FaceL, FaceB:
		return true
	}
	return false
}

// Name returns the long face name used in readable solutions.
func (f Face) Name() string {
	switch f {
	case FaceU:
		return "Up"
	case FaceR:
		return "Right"
	case FaceF:
		return "Front"
	case FaceD:
		return "Down"
	case FaceL:
		return "Left"
	case FaceB:
		return "Back"
	default:
		return "Unknown"
	}
}

// Turn represents the direction and magnitude of a face turn.
type Turn int

const (
	TurnCW  Turn = 1  // Clockwise quarter turn
	TurnCCW Turn = -1 // Counter-clockwise quarter turn
	Turn180 Turn = 2  // 180 degree turn (half turn)
)

// Description returns the rotation label used in readable solutions.
func (t Turn) Description() string {
	switch t {
	case TurnCW:
		return "clockwise 90°"
	case TurnCCW:
		return "counter-clockwise 90°"
	case Turn180:
		return "180°"
	default:
		return "?"
	}
}

// Move represents a single face turn.
type Move struct {
	Face Face `json:"face"`
	Turn Turn `json:"turn"`
}

// Notation returns the normalized notation string for this move.
// Examples: R, R', R2, U, U', U2
func (m Move) Notation() string {
	suffix := ""
	switch m.Turn {
	case TurnCCW:
		suffix = "'"
	case Turn180:
		suffix = "2"
	}
	return string(m.Face) + suffix
}

// Readable returns a human-presentable description, e.g. "Front face counter-clockwise 90°".
func (m Move) Readable() string {
	return m.Face.Name() + " face " + m.Turn.Description()
}

// Inverse returns the inverse of this move.
func (m Move) Inverse() Move {
	inv := m
	switch m.Turn {
	case TurnCW:
		inv.Turn = TurnCCW
	case TurnCCW:
		inv.Turn = TurnCW
	// Turn180 is its own inverse
	}
	return inv
}
