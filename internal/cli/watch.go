package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/pkg/types"
)

var (
	watchSolve    bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <capture-dir>",
	Short: "Recognize the cube whenever face images change",
	Long: `Watch a capture directory and re-run recognition once all six face
images are present and no file has changed for the debounce window.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchSolve, "solve", false, "Solve after each recognition")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before recognizing")
}

// faceImageEvent reports whether ev touches a face image.
func faceImageEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	ext := filepath.Ext(name)
	if !isImageExt(strings.ToLower(ext)) {
		return false
	}
	_, ok := faceKey(strings.TrimSuffix(name, ext))
	return ok
}

func missingFaces(paths map[types.Face]string) []string {
	var missing []string
	for _, f := range types.FaceOrder {
		if _, ok := paths[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	return missing
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", dir)

	timer := time.NewTimer(watchDebounce)
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if faceImageEvent(ev) {
				s.logger.Debug("face image changed", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			recognizeDir(ctx, s, dir)
		}
	}
}

func recognizeDir(ctx context.Context, s *session, dir string) {
	paths, err := faceImagePaths(dir)
	if err != nil {
		fmt.Println(render.ErrorStyle.Render(err.Error()))
		return
	}
	if missing := missingFaces(paths); len(missing) > 0 {
		fmt.Println(render.StatusStyle.Render("waiting for faces: " + strings.Join(missing, " ")))
		return
	}
	images, err := encodeFiles(paths)
	if err != nil {
		fmt.Println(render.ErrorStyle.Render(err.Error()))
		return
	}

	fmt.Println(render.StatusStyle.Render(time.Now().Format("15:04:05") + " recognizing"))
	res := s.pipeline.Recognize(ctx, images)
	if !res.Success {
		fmt.Println(render.ErrorStyle.Render(res.Error))
		return
	}
	printRecognition(res.Data)

	if !watchSolve {
		return
	}
	sol := s.pipeline.Solve(ctx, res.Data.State)
	if !sol.Success {
		fmt.Println(render.ErrorStyle.Render(sol.Error))
		return
	}
	fmt.Println()
	fmt.Print(render.Solution(sol.Data.Solution))
}
