package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	gocube "github.com/SeamusWaldron/gocube_vision"
	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/internal/solution"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the saved solution file",
	Long: `Load solution.json from the artifact directory, check its required
fields and step count, and replay its moves on the saved Kociemba code.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	store, err := openStore(artifact.SolutionFile)
	if err != nil {
		return err
	}

	sol, err := store.LoadSolution()
	if err != nil {
		return err
	}
	fmt.Printf("solution.json: %d steps, fields ok\n", sol.StepCount)

	moves, err := solution.Moves(sol)
	if err != nil {
		return err
	}
	solved, err := gocube.Verify(sol.KociembaCode, moves)
	if err != nil {
		return err
	}
	if !solved {
		return fmt.Errorf("moves do not solve %s", sol.KociembaCode)
	}
	fmt.Println(render.MoveStyle.Render("moves solve the cube"))
	return nil
}
