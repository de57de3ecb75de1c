// Package config loads the evaluator configuration from YAML, layering the
// file over tuned defaults so a partial file only overrides what it names.
package config

import (
	"fmt"
	"os"
	"time"

	"pose-gate/internal/generator"
	"pose-gate/internal/genloop"
	"pose-gate/internal/landmark"
	"pose-gate/internal/store"

	"gopkg.in/yaml.v3"
)

// Config aggregates every tunable in the pipeline.
type Config struct {
	Landmark  landmark.Config  `yaml:"landmark"`
	Loop      genloop.Params   `yaml:"loop"`
	Store     store.Config     `yaml:"store"`
	Generator generator.Config `yaml:"generator"`
}

// Default returns the full default configuration.
func Default() Config {
	return Config{
		Landmark:  landmark.DefaultConfig(),
		Loop:      genloop.DefaultParams(),
		Store:     store.DefaultConfig(),
		Generator: generator.DefaultConfig(),
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Loop.MaxAttempts < 1 {
		return fmt.Errorf("loop.max_attempts must be at least 1, got %d", c.Loop.MaxAttempts)
	}
	if c.Loop.GenerateTimeout < time.Second {
		return fmt.Errorf("loop.generate_timeout must be at least 1s, got %s", c.Loop.GenerateTimeout)
	}
	if t := c.Loop.Fidelity.ScoreThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("loop.fidelity.score_threshold must be in (0,1], got %g", t)
	}
	if t := c.Loop.Silhouette.PassThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("loop.silhouette.pass_threshold must be in (0,1], got %g", t)
	}
	return nil
}
