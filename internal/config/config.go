// Package config loads pipeline settings from defaults, an optional YAML or
// JSON file, and GOCUBE_* environment variables, in that order.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/gocube_vision/internal/classifier"
	"github.com/SeamusWaldron/gocube_vision/internal/grid"
	"github.com/SeamusWaldron/gocube_vision/internal/ingest"
	"github.com/SeamusWaldron/gocube_vision/internal/locator"
	"github.com/SeamusWaldron/gocube_vision/internal/solver"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GOCUBE_"

// Locator strategies.
const (
	StrategyContour = "contour"
	StrategyModel   = "model"
)

// Config is the full pipeline configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	Ingest     IngestConfig     `yaml:"ingest" json:"ingest"`
	Locator    LocatorConfig    `yaml:"locator" json:"locator"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Grid       grid.Config      `yaml:"grid" json:"grid"`
	Solver     SolverConfig     `yaml:"solver" json:"solver"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts" json:"artifacts"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	Cache      CacheConfig      `yaml:"cache" json:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
}

type IngestConfig struct {
	Size int `yaml:"size" json:"size" validate:"gte=16,lte=4096"`
	// MaxDimension rejects encoded images declaring a larger width or height.
	MaxDimension int `yaml:"max_dimension" json:"max_dimension" validate:"gte=16"`
}

type LocatorConfig struct {
	Strategy string         `yaml:"strategy" json:"strategy" validate:"oneof=contour model"`
	Contour  locator.Config `yaml:"contour" json:"contour"`
	Model    ModelConfig    `yaml:"model" json:"model"`
}

// ModelConfig configures the external box-model detector.
type ModelConfig struct {
	Command string   `yaml:"command" json:"command" validate:"required_if=Enabled true"`
	Args    []string `yaml:"args" json:"args"`
	Enabled bool     `yaml:"-" json:"-"`
}

type ClassifierConfig struct {
	Threshold        float64 `yaml:"threshold" json:"threshold" validate:"gt=0"`
	AchromaticChroma float64 `yaml:"achromatic_chroma" json:"achromatic_chroma" validate:"gte=0"`
}

type SolverConfig struct {
	Command  string        `yaml:"command" json:"command"`
	Args     []string      `yaml:"args" json:"args"`
	MaxDepth int           `yaml:"max_depth" json:"max_depth" validate:"gte=1,lte=30"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" validate:"gt=0"`
}

type ArtifactsConfig struct {
	Dir string `yaml:"dir" json:"dir" validate:"required"`
	// Namespace gives each run its own subdirectory.
	Namespace bool `yaml:"namespace" json:"namespace"`
}

type StorageConfig struct {
	Path string `yaml:"path" json:"path"`
}

type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr" json:"redis_addr" validate:"omitempty,hostname_port"`
	TTL       time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Ingest:   IngestConfig{Size: ingest.DefaultSize, MaxDimension: ingest.DefaultMaxDimension},
		Locator: LocatorConfig{
			Strategy: StrategyContour,
			Contour:  locator.DefaultConfig(),
		},
		Classifier: ClassifierConfig{
			Threshold:        classifier.DefaultThreshold,
			AchromaticChroma: classifier.DefaultAchromaticChroma,
		},
		Grid: grid.DefaultConfig(),
		Solver: SolverConfig{
			Command:  "kociemba",
			MaxDepth: solver.DefaultMaxDepth,
			Timeout:  solver.DefaultTimeout,
		},
		Artifacts: ArtifactsConfig{Dir: "cube_results"},
		Cache:     CacheConfig{TTL: 24 * time.Hour},
	}
}

// Load builds a configuration from defaults, the file at path when it is
// non-empty, and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	applyEnv(&cfg, os.Getenv)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	env := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := env("INGEST_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.Size = i
		}
	}
	if v := env("INGEST_MAX_DIMENSION"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.MaxDimension = i
		}
	}
	if v := env("LOCATOR_STRATEGY"); v != "" {
		cfg.Locator.Strategy = v
	}
	if v := env("LOCATOR_RANKING"); v != "" {
		cfg.Locator.Contour.Ranking = locator.Ranking(v)
	}
	if v := env("MODEL_COMMAND"); v != "" {
		cfg.Locator.Model.Command = v
	}
	if v := env("CLASSIFIER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Classifier.Threshold = f
		}
	}
	if v := env("SOLVER_COMMAND"); v != "" {
		cfg.Solver.Command = v
	}
	if v := env("SOLVER_MAX_DEPTH"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Solver.MaxDepth = i
		}
	}
	if v := env("SOLVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Solver.Timeout = d
		}
	}
	if v := env("ARTIFACTS_DIR"); v != "" {
		cfg.Artifacts.Dir = v
	}
	if v := env("ARTIFACTS_NAMESPACE"); v != "" {
		cfg.Artifacts.Namespace = v == "true" || v == "1"
	}
	if v := env("DB"); v != "" {
		cfg.Storage.Path = v
	}
	if v := env("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := env("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := env("METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.Textfile = v
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	c.Locator.Model.Enabled = c.Locator.Strategy == StrategyModel
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
