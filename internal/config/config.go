// Package config holds the explicit run configuration for the clustering
// pipeline. All pipeline stages receive a Config (or the fields they need)
// as an argument; there is no package-level mutable state.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultCutoff is the default dendrogram cut distance, applied both to the
// tree cut in the coherence evaluation and to the plotted reference line.
const DefaultCutoff = 0.7275

// Config is the full configuration for one clustering run.
type Config struct {
	ScoresDir  string  `yaml:"scores_dir"`
	LabelsDir  string  `yaml:"labels_dir"`
	OutputDir  string  `yaml:"output_dir"`
	Cutoff     float64 `yaml:"cutoff"`
	Parallel   int     `yaml:"parallel"`
	LogLevel   string  `yaml:"log_level"`
	LogFormat  string  `yaml:"log_format"`
	SummaryFmt string  `yaml:"summary_format"` // "ascii" or "markdown"
}

// Default returns a Config with all optional fields set to their defaults.
// Directory fields are left empty and must be supplied by the caller.
func Default() Config {
	return Config{
		Cutoff:     DefaultCutoff,
		Parallel:   1,
		LogLevel:   "info",
		LogFormat:  "text",
		SummaryFmt: "ascii",
	}
}

// LoadFile reads a YAML config file and merges it over the defaults.
// Fields absent from the file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration names usable inputs.
func (c Config) Validate() error {
	if c.ScoresDir == "" {
		return errors.New("scores directory is required")
	}
	if c.LabelsDir == "" {
		return errors.New("labels directory is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Cutoff < 0 {
		return fmt.Errorf("cutoff must be non-negative, got %g", c.Cutoff)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	for _, dir := range []string{c.ScoresDir, c.LabelsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("input directory %s: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input path %s is not a directory", dir)
		}
	}
	return nil
}
