package gocube

import (
	"errors"
	"strings"
	"testing"
)

const solvedCode = "UUUUUUUUURRRRRRRRRFFFFFFFFFDDDDDDDDDLLLLLLLLLBBBBBBBBB"

func TestNewCubeIsSolved(t *testing.T) {
	c := NewCube()
	if !c.IsSolved() {
		t.Error("New cube should be solved")
	}
	if got := c.Kociemba(); got != solvedCode {
		t.Errorf("Kociemba() = %s, want %s", got, solvedCode)
	}
}

func TestSingleMoveBreaksSolved(t *testing.T) {
	c := NewCube()
	c.MoveFace(FaceR, CW)
	if c.IsSolved() {
		t.Error("Cube should not be solved after R move")
	}
}

func TestSingleMoveCodes(t *testing.T) {
	tests := []struct {
		move Move
		want string
	}{
		{R, "UUFUUFUUFRRRRRRRRRFFDFFDFFDDDBDDBDDBLLLLLLLLLUBBUBBUBB"},
		{U, "UUUUUUUUUBBBRRRRRRRRRFFFFFFDDDDDDDDDFFFLLLLLLLLLBBBBBB"},
	}
	for _, tt := range tests {
		c := NewCube()
		c.Apply(tt.move)
		if got := c.Kociemba(); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.move.Notation(), got, tt.want)
		}
	}
}

func TestFourQuarterTurnsReturnToSolved(t *testing.T) {
	for _, face := range []Face{FaceU, FaceR, FaceF, FaceD, FaceL, FaceB} {
		c := NewCube()
		for i := 0; i < 4; i++ {
			c.MoveFace(face, CW)
		}
		if !c.IsSolved() {
			t.Errorf("%v x 4 should return to solved", face)
			t.Log(c.String())
		}
	}
}

func TestDoubleTwiceReturnsToSolved(t *testing.T) {
	c := NewCube()
	c.Apply(R2, R2)
	if !c.IsSolved() {
		t.Error("R2 R2 should return to solved")
		t.Log(c.String())
	}
}

func TestPrimeUndoesMove(t *testing.T) {
	for _, m := range []Move{R, L, U, D, F, B} {
		c := NewCube()
		c.Apply(m, m.Inverse())
		if !c.IsSolved() {
			t.Errorf("%s %s should return to solved", m.Notation(), m.Inverse().Notation())
		}
	}
}

func TestSexyMove_6Times_ReturnsToSolved(t *testing.T) {
	c := NewCube()
	for i := 0; i < 6; i++ {
		c.Apply(SexyMove...)
	}
	if !c.IsSolved() {
		t.Error("Sexy move x 6 should return to solved")
		t.Log(c.String())
	}
}

func TestTPermTwiceReturnsToSolved(t *testing.T) {
	c := NewCube()
	c.Apply(TPerm...)
	if c.IsSolved() {
		t.Fatal("T-perm should change the cube")
	}
	c.Apply(TPerm...)
	if !c.IsSolved() {
		t.Error("T-perm x 2 should return to solved")
	}
}

func TestFromKociembaRoundTrip(t *testing.T) {
	c := NewCube()
	if err := c.ApplyNotation("R U F' D2 L B'"); err != nil {
		t.Fatal(err)
	}
	code := c.Kociemba()

	back, err := FromKociemba(code)
	if err != nil {
		t.Fatalf("FromKociemba: %v", err)
	}
	if back.Kociemba() != code {
		t.Errorf("round trip changed code: %s != %s", back.Kociemba(), code)
	}
}

func TestFromKociembaRejectsInvalid(t *testing.T) {
	_, err := FromKociemba("UUU")
	if !errors.Is(err, ErrStateInvalid) {
		t.Errorf("got %v, want ErrStateInvalid", err)
	}

	bad := []byte(solvedCode)
	bad[4] = 'R'
	_, err = FromKociemba(string(bad))
	if !errors.Is(err, ErrStateInvalid) {
		t.Errorf("got %v, want ErrStateInvalid", err)
	}
}

func TestVerify(t *testing.T) {
	scramble, err := ParseMoves("R U R' F2 D L' B")
	if err != nil {
		t.Fatal(err)
	}
	c := NewCube()
	c.Apply(scramble...)
	code := c.Kociemba()

	ok, err := Verify(code, Invert(scramble))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Error("inverse scramble should solve the cube")
	}

	ok, err = Verify(code, scramble)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Error("repeating the scramble should not solve the cube")
	}
}

func TestParseMovesSolverOutput(t *testing.T) {
	moves, err := ParseMoves("F3 D3 L3 U2 (4f)")
	if err != nil {
		t.Fatal(err)
	}
	if got := FormatMoves(moves); got != "F' D' L' U2" {
		t.Errorf("FormatMoves = %q", got)
	}

	if _, err := ParseMove("X"); !errors.Is(err, ErrInvalidNotation) {
		t.Errorf("ParseMove(X) error = %v, want ErrInvalidNotation", err)
	}
}

func TestStringNet(t *testing.T) {
	lines := strings.Split(strings.TrimRight(NewCube().String(), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want 9", len(lines))
	}
	if !strings.HasPrefix(lines[3], "L L L F F F R R R B B B") {
		t.Errorf("middle row = %q", lines[3])
	}
}
