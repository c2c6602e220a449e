package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/gocube_vision/internal/render"
	"github.com/SeamusWaldron/gocube_vision/internal/storage"
)

var (
	historyLimit int
	historyKind  string
	historyPrune time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent recognition and solve runs",
	Long:  `Display recent runs from the history database with solve statistics.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to display")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "Only show runs of this kind (recognize, solve)")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "Delete runs older than this before listing")
}

func openDB() (*storage.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		return nil, fmt.Errorf("no history database: set storage.path or --db")
	}
	return storage.Open(cfg.Storage.Path)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewRunRepository(db)

	if historyPrune > 0 {
		n, err := repo.Prune(ctx, time.Now().Add(-historyPrune))
		if err != nil {
			return err
		}
		fmt.Printf("Pruned %d runs\n\n", n)
	}

	runs, err := repo.List(ctx, historyKind, historyLimit)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-36s  %-9s  %-19s  %-6s  %s\n", "RUN", "KIND", "WHEN", "STEPS", "RESULT")
	for _, r := range runs {
		steps := "-"
		if r.StepCount != nil {
			steps = fmt.Sprintf("%d", *r.StepCount)
		}
		result := render.MoveStyle.Render("ok")
		if !r.Success {
			result = "failed"
			if r.Error != nil {
				result = *r.Error
			}
			result = render.ErrorStyle.Render(result)
		}
		fmt.Printf("%-36s  %-9s  %-19s  %-6s  %s\n",
			r.RunID, r.Kind, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), steps, result)
	}

	stats, err := repo.SolveStats(ctx)
	if err != nil {
		return err
	}
	if stats.Solves > 0 {
		fmt.Println()
		fmt.Printf("Solves: %d (%d succeeded), average %.1f moves\n", stats.Solves, stats.Succeeded, stats.AverageSteps)
	}
	return nil
}
