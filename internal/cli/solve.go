package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/internal/state"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var solveCode string

var solveCmd = &cobra.Command{
	Use:   "solve [state-file]",
	Short: "Solve a recognized cube state",
	Long: `Encode, validate and solve a cube state.

The state is read from the given file (cube_state.json or cube_state.txt
format), from --code, or from the artifact directory when neither is given.
The solution is written to solution.json in the artifact directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVar(&solveCode, "code", "", "Solve a 54-character Kociemba code directly")
}

// readStateFile parses a state file by extension: .txt as text, anything
// else as JSON.
func readStateFile(path string) (types.CubeState, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return state.ParseText(f)
	}
	st, skipped, err := state.DecodeJSON(f)
	warnSkipped(skipped)
	return st, err
}

// loadStoreState reads the cube state saved in store.
func loadStoreState(store *artifact.Store) (types.CubeState, error) {
	st, skipped, err := store.LoadState()
	warnSkipped(skipped)
	return st, err
}

// warnSkipped reports faces left out of a loaded state on stderr. They
// encode as unknown facelets and fail validation later.
func warnSkipped(skipped []state.FaceError) {
	for _, e := range skipped {
		fmt.Fprintf(os.Stderr, "warning: %v; face left empty\n", e)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	code := strings.TrimSpace(solveCode)
	if code == "" {
		var st types.CubeState
		if len(args) == 1 {
			st, err = readStateFile(args[0])
		} else {
			var store *artifact.Store
			store, err = runStore(s.cfg, s.pipeline.Store(), artifact.StateFiles...)
			if err == nil {
				st, err = loadStoreState(store)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to load cube state: %w", err)
		}
		res := s.pipeline.Solve(ctx, st)
		if jsonOutput {
			return printJSON(res)
		}
		if !res.Success {
			return res.Err
		}
		fmt.Print(render.Solution(res.Data.Solution))
		return nil
	}

	res := s.pipeline.SolveCode(ctx, code)
	if jsonOutput {
		return printJSON(res)
	}
	if !res.Success {
		return res.Err
	}
	fmt.Print(render.Solution(res.Data.Solution))
	return nil
}
