package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/kociemba"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var editCmd = &cobra.Command{
	Use:   "edit [state-file]",
	Short: "Correct misclassified stickers interactively",
	Long: `Open the cube state in an interactive editor.

Move between stickers with the arrow keys (or hjkl), switch faces with
tab, and set a sticker with w, y, r, o, b or g. Press s to save the state
back to the artifact directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	var (
		store *artifact.Store
		st    types.CubeState
		err   error
	)
	if len(args) == 1 {
		if store, err = openStore(); err != nil {
			return err
		}
		st, err = readStateFile(args[0])
	} else {
		if store, err = openStore(artifact.StateFiles...); err != nil {
			return err
		}
		st, err = loadStoreState(store)
	}
	if err != nil {
		return fmt.Errorf("failed to load cube state: %w", err)
	}

	model := newEditModel(st, store.SaveState)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("editor error: %w", err)
	}
	if model.saved {
		fmt.Printf("Saved cube state to %s\n", store.Dir())
	}
	return nil
}

type editKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	NextFace key.Binding
	PrevFace key.Binding
	Color    key.Binding
	Save     key.Binding
	Quit     key.Binding
}

func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFace, k.Color, k.Save, k.Quit}
}

func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextFace, k.PrevFace},
		{k.Color, k.Save, k.Quit},
	}
}

var editKeys = editKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	NextFace: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next face")),
	PrevFace: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev face")),
	Color:    key.NewBinding(key.WithKeys("w", "y", "r", "o", "b", "g"), key.WithHelp("w/y/r/o/b/g", "set colour")),
	Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// colorKeys maps editor keys to sticker colours.
var colorKeys = map[string]types.Label{
	"w": types.White,
	"y": types.Yellow,
	"r": types.Red,
	"o": types.Orange,
	"b": types.Blue,
	"g": types.Green,
}

// editModel is the sticker editor.
type editModel struct {
	state  types.CubeState
	cursor render.Cursor
	save   func(types.CubeState) error
	help   help.Model
	dirty  bool
	saved  bool
	status string
}

func newEditModel(st types.CubeState, save func(types.CubeState) error) *editModel {
	// Work on a full copy; missing faces and short faces are padded with
	// unknown so every sticker is editable.
	cp := make(types.CubeState, 6)
	for _, f := range types.FaceOrder {
		labels := make([]types.Label, 9)
		for i := range labels {
			labels[i] = types.Unknown
		}
		copy(labels, st[f])
		cp[f] = labels
	}
	return &editModel{
		state:  cp,
		cursor: render.Cursor{Face: types.FaceU},
		save:   save,
		help:   help.New(),
	}
}

func (m *editModel) Init() tea.Cmd {
	return nil
}

func (m *editModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	row, col := m.cursor.Index/3, m.cursor.Index%3
	switch {
	case key.Matches(keyMsg, editKeys.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, editKeys.Up):
		row = (row + 2) % 3
	case key.Matches(keyMsg, editKeys.Down):
		row = (row + 1) % 3
	case key.Matches(keyMsg, editKeys.Left):
		col = (col + 2) % 3
	case key.Matches(keyMsg, editKeys.Right):
		col = (col + 1) % 3
	case key.Matches(keyMsg, editKeys.NextFace):
		m.cursor.Face = stepFace(m.cursor.Face, 1)
	case key.Matches(keyMsg, editKeys.PrevFace):
		m.cursor.Face = stepFace(m.cursor.Face, -1)
	case key.Matches(keyMsg, editKeys.Color):
		m.state[m.cursor.Face][m.cursor.Index] = colorKeys[keyMsg.String()]
		m.dirty = true
		m.status = ""
	case key.Matches(keyMsg, editKeys.Save):
		if err := m.save(m.state); err != nil {
			m.status = render.ErrorStyle.Render("save failed: " + err.Error())
			return m, nil
		}
		m.dirty = false
		m.saved = true
		m.status = render.MoveStyle.Render("saved")
	}
	m.cursor.Index = row*3 + col
	return m, nil
}

func stepFace(f types.Face, delta int) types.Face {
	for i, g := range types.FaceOrder {
		if g == f {
			n := len(types.FaceOrder)
			return types.FaceOrder[(i+delta+n)%n]
		}
	}
	return types.FaceU
}

func (m *editModel) View() string {
	var b strings.Builder
	b.WriteString(render.TitleStyle.Render("Cube state editor"))
	b.WriteString("\n\n")
	b.WriteString(render.Net(m.state, &m.cursor))
	b.WriteString("\n\n")

	code, _ := kociemba.Encode(m.state)
	b.WriteString(fmt.Sprintf("%s  %s[%d]\n", code, m.cursor.Face, m.cursor.Index))
	if err := kociemba.Validate(code); err != nil {
		b.WriteString(render.ErrorStyle.Render(err.Error()))
	} else {
		b.WriteString(render.StatusStyle.Render("centers ok"))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	} else if m.dirty {
		b.WriteString(render.StatusStyle.Render("unsaved changes"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(editKeys))
	return b.String()
}
