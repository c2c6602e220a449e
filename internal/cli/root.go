// Package cli implements the command-line interface for gocube-vision.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocube "github.com/SeamusWaldron/gocube_vision"
	"github.com/SeamusWaldron/gocube_vision/internal/artifact"
	"github.com/SeamusWaldron/gocube_vision/internal/config"
	"github.com/SeamusWaldron/gocube_vision/internal/logging"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
	"github.com/SeamusWaldron/gocube_vision/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	configPath   string
	artifactsDir string
	dbPath       string
	verbose      bool
	jsonOutput   bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "gocube-vision",
	Short: "Rubik's Cube state recognition and solving",
	Long: `gocube-vision reads the state of a Rubik's Cube from six face photographs,
encodes it for a two-phase solver and prints the solution step by step.

Face images are named after their center colour (white.png, red.png,
green.png, yellow.png, orange.png, blue.png) or their face letter
(U.png, R.png, F.png, D.png, L.png, B.png).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "Artifact directory (default: cube_results)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "History database path (default: ~/.gocube_vision/history.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// loadConfig loads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if artifactsDir != "" {
		cfg.Artifacts.Dir = artifactsDir
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	if cfg.Storage.Path == "" {
		if path, err := storage.DefaultDBPath(); err == nil {
			cfg.Storage.Path = path
		}
	}
	return cfg, nil
}

// newLogger returns a console logger for interactive use, or a JSON logger
// at the configured level when --json is set.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	if jsonOutput {
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		return logging.NewLogger(level)
	}
	return logging.NewConsole(verbose)
}

// session bundles a pipeline with what it needs torn down.
type session struct {
	cfg      config.Config
	pipeline *gocube.Pipeline
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	p, err := gocube.New(ctx, cfg, gocube.WithLogger(logger), gocube.WithMetrics(m))
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("failed to start pipeline: %w", err)
	}
	return &session{cfg: cfg, pipeline: p, metrics: m, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.metrics.WriteTextfile(s.cfg.Metrics.Textfile); err != nil {
		s.logger.Warn("failed to write metrics textfile", zap.Error(err))
	}
	if err := s.pipeline.Close(); err != nil {
		s.logger.Warn("failed to close pipeline", zap.Error(err))
	}
	s.logger.Sync()
}

// openStore opens the artifact store without building a pipeline. See
// runStore for files.
func openStore(files ...string) (*artifact.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return runStore(cfg, artifact.Open(cfg.Artifacts.Dir), files...)
}

// runStore returns store itself unless runs are namespaced and files are
// named, in which case it returns the newest run directory holding one of
// them.
func runStore(cfg config.Config, store *artifact.Store, files ...string) (*artifact.Store, error) {
	if !cfg.Artifacts.Namespace || len(files) == 0 {
		return store, nil
	}
	latest, err := store.Latest(files...)
	if err != nil {
		return nil, fmt.Errorf("artifacts are namespaced per run: %w", err)
	}
	return latest, nil
}
