package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var showCmd = &cobra.Command{
	Use:   "show [state-file]",
	Short: "Render the cube state and solution",
	Long:  `Render the saved cube state as a coloured net, followed by the saved solution if there is one.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		st, err := readStateFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to load cube state: %w", err)
		}
		fmt.Println(render.Net(st, nil))
		return nil
	}

	var st types.CubeState
	store, err := openStore(artifact.StateFiles...)
	if err == nil {
		st, err = loadStoreState(store)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No cube state found. Run 'gocube-vision recognize' first.")
			return nil
		}
		return err
	}
	fmt.Println(render.TitleStyle.Render("Cube state"))
	fmt.Println(render.Net(st, nil))

	sol, err := store.LoadSolution()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		fmt.Println(render.ErrorStyle.Render("solution.json: " + err.Error()))
		return nil
	}
	fmt.Println()
	fmt.Print(render.Solution(sol))
	return nil
}
