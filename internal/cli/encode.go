package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/kociemba"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [state-file]",
	Short: "Print and validate the Kociemba code of a state",
	Long: `Encode a cube state as a 54-character Kociemba code and validate it.

Colours that map to no face, and faces that are missing or short, are
encoded as '?' and listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	var (
		st  types.CubeState
		err error
	)
	if len(args) == 1 {
		st, err = readStateFile(args[0])
	} else {
		store, serr := openStore(artifact.StateFiles...)
		if serr != nil {
			return serr
		}
		st, err = loadStoreState(store)
	}
	if err != nil {
		return fmt.Errorf("failed to load cube state: %w", err)
	}

	code, diags := kociemba.Encode(st)
	verr := kociemba.Validate(code)

	if jsonOutput {
		out := struct {
			Code        string   `json:"kociemba_code"`
			Valid       bool     `json:"valid"`
			Error       string   `json:"error,omitempty"`
			Diagnostics []string `json:"diagnostics,omitempty"`
		}{Code: code, Valid: verr == nil}
		if verr != nil {
			out.Error = verr.Error()
		}
		for _, d := range diags {
			out.Diagnostics = append(out.Diagnostics, d.String())
		}
		return printJSON(out)
	}

	fmt.Println(code)
	for _, d := range diags {
		fmt.Println(render.StatusStyle.Render("  " + d.String()))
	}
	if verr != nil {
		return verr
	}
	fmt.Println(render.MoveStyle.Render("valid"))
	return nil
}
