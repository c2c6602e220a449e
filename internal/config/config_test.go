package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/SeamusWaldron/gocube_vision/internal/locator"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Solver.MaxDepth != 20 || cfg.Solver.Timeout != 2*time.Second {
		t.Errorf("solver defaults = %d/%v", cfg.Solver.MaxDepth, cfg.Solver.Timeout)
	}
	if cfg.Grid.RegionFraction != 0.6 {
		t.Errorf("grid region = %v", cfg.Grid.RegionFraction)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "gocube.yaml", `
log_level: debug
locator:
  contour:
    ranking: central
    canny_low: 40
solver:
  command: /usr/local/bin/twophase
  timeout: 5s
artifacts:
  dir: /tmp/cube
  namespace: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Locator.Contour.Ranking != locator.RankCentral || cfg.Locator.Contour.CannyLow != 40 {
		t.Errorf("contour = %+v", cfg.Locator.Contour)
	}
	// untouched keys keep defaults
	if cfg.Locator.Contour.CannyHigh != 150 || cfg.Solver.MaxDepth != 20 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Solver.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Solver.Timeout)
	}
	if !cfg.Artifacts.Namespace || cfg.Artifacts.Dir != "/tmp/cube" {
		t.Errorf("artifacts = %+v", cfg.Artifacts)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "gocube.json", `{"classifier": {"threshold": 45}, "storage": {"path": "runs.db"}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Classifier.Threshold != 45 || cfg.Storage.Path != "runs.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad strategy":   "locator:\n  strategy: hsv\n",
		"model no cmd":   "locator:\n  strategy: model\n",
		"bad canny":      "locator:\n  contour:\n    canny_low: 200\n",
		"bad region":     "grid:\n  region_fraction: 1.5\n",
		"bad log level":  "log_level: loud\n",
		"bad redis addr": "cache:\n  redis_addr: nowhere\n",
		"score ranking":  "locator:\n  contour:\n    ranking: score\n",
		"tiny max dim":   "ingest:\n  max_dimension: 4\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, "c.yaml", content)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"GOCUBE_LOG_LEVEL":        "WARN",
		"GOCUBE_SOLVER_MAX_DEPTH": "24",
		"GOCUBE_SOLVER_TIMEOUT":   "750ms",
		"GOCUBE_REDIS_ADDR":       "localhost:6379",
		"GOCUBE_DB":               "history.db",
		"GOCUBE_INGEST_SIZE":      "not a number",
	}
	cfg := Default()
	applyEnv(&cfg, func(k string) string { return env[k] })

	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Solver.MaxDepth != 24 || cfg.Solver.Timeout != 750*time.Millisecond {
		t.Errorf("solver = %+v", cfg.Solver)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Storage.Path != "history.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.Size != 640 {
		t.Errorf("unparsable override applied: %d", cfg.Ingest.Size)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("GOCUBE_ARTIFACTS_DIR", "/from/env")
	cfg, err := Load(writeFile(t, "c.yaml", "artifacts:\n  dir: /from/file\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(cfg.Artifacts.Dir, "/from/env") {
		t.Errorf("dir = %q", cfg.Artifacts.Dir)
	}
}
