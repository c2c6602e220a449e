package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	gocube "github.com/SeamusWaldron/gocube_vision"
	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var recognizeSolve bool

var recognizeCmd = &cobra.Command{
	Use:   "recognize <images-dir|payload.json>",
	Short: "Read the cube state from face images",
	Long: `Read the cube state from six face images.

The argument is either a directory of face images or a JSON file mapping
face letters or colour names to base64 images (data URL headers allowed).
The state, decoded images and debug overlays are written to the artifact
directory. Use --solve to solve the recognized state straight away.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)
	recognizeCmd.Flags().BoolVar(&recognizeSolve, "solve", false, "Solve the recognized state")
}

func loadImages(src string) (map[types.Face]string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadPayload(src)
	}
	paths, err := faceImagePaths(src)
	if err != nil {
		return nil, err
	}
	return encodeFiles(paths)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	images, err := loadImages(args[0])
	if err != nil {
		return fmt.Errorf("failed to load images: %w", err)
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	res := s.pipeline.Recognize(ctx, images)
	if jsonOutput && !recognizeSolve {
		return printJSON(res)
	}
	if !res.Success {
		return res.Err
	}
	printRecognition(res.Data)

	if !recognizeSolve {
		return nil
	}
	sol := s.pipeline.Solve(ctx, res.Data.State)
	if jsonOutput {
		return printJSON(sol)
	}
	if !sol.Success {
		return sol.Err
	}
	fmt.Println()
	fmt.Print(render.Solution(sol.Data.Solution))
	return nil
}

func printRecognition(rec gocube.Recognition) {
	fmt.Println(render.TitleStyle.Render("Cube state"))
	fmt.Println(render.Net(rec.State, nil))
	fmt.Println()

	for _, fr := range rec.Faces {
		status := fmt.Sprintf("%d stickers", fr.Stickers)
		switch {
		case fr.DecodeFailed:
			status = render.ErrorStyle.Render("decode failed: " + fr.DecodeError)
		case fr.Fallback:
			status += ", grid fallback"
		}
		fmt.Printf("  %s %-6s %s\n", fr.Face, fr.Face.Name(), status)
	}
	fmt.Println()
	fmt.Printf("Kociemba: %s\n", rec.Code)
	fmt.Println(render.StatusStyle.Render("Artifacts: " + rec.Dir))
}
