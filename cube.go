package gocube

import (
	"fmt"
	"strings"

	"github.com/SeamusWaldron/gocube_vision/internal/kociemba"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Face slots in the facelet array, in Kociemba order.
const (
	slotU = iota
	slotR
	slotF
	slotD
	slotL
	slotB
)

func slotOf(f Face) int {
	switch f {
	case FaceU:
		return slotU
	case FaceR:
		return slotR
	case FaceF:
		return slotF
	case FaceD:
		return slotD
	case FaceL:
		return slotL
	case FaceB:
		return slotB
	default:
		return -1
	}
}

// Cube is a facelet model of a 3x3 cube. Each facelet holds the letter of
// the face whose center shares its colour, as in a Kociemba code. Each
// face has 9 facelets indexed as:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// The center (index 4) never moves.
type Cube struct {
	// Facelets[slot][position] in U,R,F,D,L,B order.
	Facelets [6][9]byte
}

// NewCube creates a solved cube.
func NewCube() *Cube {
	c := &Cube{}
	for slot, f := range types.FaceOrder {
		for i := 0; i < 9; i++ {
			c.Facelets[slot][i] = f[0]
		}
	}
	return c
}

// FromKociemba builds a cube from a validated Kociemba code.
func FromKociemba(code string) (*Cube, error) {
	if err := kociemba.Validate(code); err != nil {
		return nil, err
	}
	c := &Cube{}
	for i := 0; i < kociemba.Length; i++ {
		c.Facelets[i/9][i%9] = code[i]
	}
	return c, nil
}

// Kociemba returns the cube's 54-character code.
func (c *Cube) Kociemba() string {
	var b strings.Builder
	b.Grow(kociemba.Length)
	for slot := 0; slot < 6; slot++ {
		b.Write(c.Facelets[slot][:])
	}
	return b.String()
}

// Clone creates a deep copy of the cube.
func (c *Cube) Clone() *Cube {
	clone := *c
	return &clone
}

// IsSolved reports whether every facelet matches its face's center.
func (c *Cube) IsSolved() bool {
	for slot := 0; slot < 6; slot++ {
		center := c.Facelets[slot][4]
		for i := 0; i < 9; i++ {
			if c.Facelets[slot][i] != center {
				return false
			}
		}
	}
	return true
}

// rotateFaceCW rotates a face 90 degrees clockwise.
func (c *Cube) rotateFaceCW(slot int) {
	f := &c.Facelets[slot]
	// Corner rotation: 0->2->8->6->0
	// Edge rotation: 1->5->7->3->1
	temp := f[0]
	f[0] = f[6]
	f[6] = f[8]
	f[8] = f[2]
	f[2] = temp

	temp = f[1]
	f[1] = f[3]
	f[3] = f[7]
	f[7] = f[5]
	f[5] = temp
}

// MoveFace turns a face. turn: 1 = CW, -1 = CCW, 2 = 180 degrees.
func (c *Cube) MoveFace(f Face, turn Turn) {
	slot := slotOf(f)
	if slot < 0 {
		return
	}
	quarters := 0
	switch turn {
	case CW:
		quarters = 1
	case Double:
		quarters = 2
	case CCW:
		quarters = 3
	}
	for i := 0; i < quarters; i++ {
		c.rotateFaceCW(slot)
		c.cycleEdgesCW(slot)
	}
}

// cycleEdgesCW moves the adjacent facelet strips one step clockwise.
// Strips are listed in the order facelets travel.
func (c *Cube) cycleEdgesCW(slot int) {
	switch slot {
	case slotU:
		// F, L, B, R top rows
		c.cycle4(
			slotF, [3]int{0, 1, 2},
			slotL, [3]int{0, 1, 2},
			slotB, [3]int{0, 1, 2},
			slotR, [3]int{0, 1, 2},
		)
	case slotD:
		// F, R, B, L bottom rows
		c.cycle4(
			slotF, [3]int{6, 7, 8},
			slotR, [3]int{6, 7, 8},
			slotB, [3]int{6, 7, 8},
			slotL, [3]int{6, 7, 8},
		)
	case slotF:
		// U bottom, R left, D top, L right
		c.cycle4(
			slotU, [3]int{6, 7, 8},
			slotR, [3]int{0, 3, 6},
			slotD, [3]int{2, 1, 0},
			slotL, [3]int{8, 5, 2},
		)
	case slotB:
		// U top, L left, D bottom, R right
		c.cycle4(
			slotU, [3]int{2, 1, 0},
			slotL, [3]int{0, 3, 6},
			slotD, [3]int{6, 7, 8},
			slotR, [3]int{8, 5, 2},
		)
	case slotR:
		// U right, B left, D right, F right
		c.cycle4(
			slotU, [3]int{2, 5, 8},
			slotB, [3]int{6, 3, 0},
			slotD, [3]int{2, 5, 8},
			slotF, [3]int{2, 5, 8},
		)
	case slotL:
		// U left, F left, D left, B right
		c.cycle4(
			slotU, [3]int{0, 3, 6},
			slotF, [3]int{0, 3, 6},
			slotD, [3]int{0, 3, 6},
			slotB, [3]int{8, 5, 2},
		)
	}
}

// cycle4 moves strip 1 to 2, 2 to 3, 3 to 4 and 4 to 1.
func (c *Cube) cycle4(f1 int, i1 [3]int, f2 int, i2 [3]int, f3 int, i3 [3]int, f4 int, i4 [3]int) {
	// Save first strip
	t := [3]byte{
		c.Facelets[f1][i1[0]],
		c.Facelets[f1][i1[1]],
		c.Facelets[f1][i1[2]],
	}

	for k := 0; k < 3; k++ {
		// 1 <- 4
		c.Facelets[f1][i1[k]] = c.Facelets[f4][i4[k]]
		// 4 <- 3
		c.Facelets[f4][i4[k]] = c.Facelets[f3][i3[k]]
		// 3 <- 2
		c.Facelets[f3][i3[k]] = c.Facelets[f2][i2[k]]
		// 2 <- 1 (saved)
		c.Facelets[f2][i2[k]] = t[k]
	}
}

// Apply applies moves in order.
func (c *Cube) Apply(moves ...Move) {
	for _, m := range moves {
		c.MoveFace(m.Face, m.Turn)
	}
}

// ApplyNotation parses and applies a move sequence.
func (c *Cube) ApplyNotation(s string) error {
	moves, err := ParseMoves(s)
	if err != nil {
		return err
	}
	c.Apply(moves...)
	return nil
}

// String returns an unfolded net of the cube.
func (c *Cube) String() string {
	var b strings.Builder

	row := func(slot, r int) {
		for col := 0; col < 3; col++ {
			b.WriteByte(c.Facelets[slot][r*3+col])
			b.WriteByte(' ')
		}
	}

	// U face (indented)
	for r := 0; r < 3; r++ {
		b.WriteString("      ")
		row(slotU, r)
		b.WriteString("\n")
	}

	// L, F, R, B faces (side by side)
	for r := 0; r < 3; r++ {
		for _, slot := range []int{slotL, slotF, slotR, slotB} {
			row(slot, r)
		}
		b.WriteString("\n")
	}

	// D face (indented)
	for r := 0; r < 3; r++ {
		b.WriteString("      ")
		row(slotD, r)
		b.WriteString("\n")
	}

	return b.String()
}

// Debug returns a simple debug string.
func (c *Cube) Debug() string {
	return fmt.Sprintf("Solved: %v", c.IsSolved())
}

// Verify reports whether applying moves to the cube described by code
// leaves it solved.
func Verify(code string, moves []Move) (bool, error) {
	c, err := FromKociemba(code)
	if err != nil {
		return false, err
	}
	c.Apply(moves...)
	return c.IsSolved(), nil
}
