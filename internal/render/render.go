// Package render draws cube states and solutions for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	StatusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	MoveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("226"))
)

const missingHex = "#3a3a3a"

// Hex returns the swatch colour for a label.
func Hex(l types.Label) string {
	rgb, ok := classifier.DefaultReferences[l]
	if !ok {
		return missingHex
	}
	c := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	return c.Hex()
}

// Initial returns the one-letter cell text for a label.
func Initial(l types.Label) string {
	switch l {
	case types.Unknown:
		return "?"
	case types.Placeholder:
		return "x"
	case "":
		return " "
	default:
		return strings.ToUpper(string(l)[:1])
	}
}

// cell renders one sticker.
func cell(l types.Label, selected bool) string {
	if selected {
		return cursorStyle.Render("[" + Initial(l) + "]")
	}
	bg := lipgloss.Color(Hex(l))
	fg := lipgloss.Color("#000000")
	if l == types.Blue || l == types.Red || l == types.Green || !l.IsPalette() {
		fg = lipgloss.Color("#ffffff")
	}
	return lipgloss.NewStyle().Background(bg).Foreground(fg).Render(" " + Initial(l) + " ")
}

// Cursor marks one sticker in a rendered net.
type Cursor struct {
	Face  types.Face
	Index int
}

// Face renders one face as three rows.
func Face(labels []types.Label, face types.Face, cursor *Cursor) string {
	rows := make([]string, 3)
	for r := 0; r < 3; r++ {
		var b strings.Builder
		for c := 0; c < 3; c++ {
			i := r*3 + c
			var l types.Label
			if i < len(labels) {
				l = labels[i]
			}
			selected := cursor != nil && cursor.Face == face && cursor.Index == i
			b.WriteString(cell(l, selected))
		}
		rows[r] = b.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Net renders the state as an unfolded cube:
//
//	  U
//	L F R B
//	  D
func Net(state types.CubeState, cursor *Cursor) string {
	face := func(f types.Face) string {
		return lipgloss.JoinVertical(lipgloss.Center, StatusStyle.Render(string(f)), Face(state[f], f, cursor))
	}
	gap := " "
	blank := lipgloss.NewStyle().Width(lipgloss.Width(face(types.FaceL)) + len(gap)).Render("")

	top := lipgloss.JoinHorizontal(lipgloss.Top, blank, face(types.FaceU))
	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		face(types.FaceL), gap, face(types.FaceF), gap, face(types.FaceR), gap, face(types.FaceB))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, blank, face(types.FaceD))
	return lipgloss.JoinVertical(lipgloss.Left, top, middle, bottom)
}

// Solution renders a numbered list of readable steps.
func Solution(sol types.Solution) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Solution: %d moves", sol.StepCount)))
	b.WriteString("\n")
	b.WriteString(MoveStyle.Render(strings.Join(sol.Moves, " ")))
	b.WriteString("\n\n")
	for i, step := range sol.ReadableSteps {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, step)
	}
	if sol.Verified {
		b.WriteString(StatusStyle.Render("verified on facelet model"))
		b.WriteString("\n")
	}
	return b.String()
}
