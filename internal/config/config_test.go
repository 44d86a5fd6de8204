package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Cutoff != 0.7275 {
		t.Errorf("Cutoff = %g, want 0.7275", cfg.Cutoff)
	}
	if cfg.Parallel != 1 {
		t.Errorf("Parallel = %d, want 1", cfg.Parallel)
	}
}

func TestLoadFile_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	content := "scores_dir: /data/scores\nlabels_dir: /data/labels\noutput_dir: /data/out\ncutoff: 0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	want := Default()
	want.ScoresDir = "/data/scores"
	want.LabelsDir = "/data/labels"
	want.OutputDir = "/data/out"
	want.Cutoff = 0.5
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	in := t.TempDir()

	base := Default()
	base.ScoresDir = in
	base.LabelsDir = in
	base.OutputDir = filepath.Join(in, "out")

	if err := base.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing scores dir", func(c *Config) { c.ScoresDir = "" }},
		{"missing labels dir", func(c *Config) { c.LabelsDir = "" }},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }},
		{"negative cutoff", func(c *Config) { c.Cutoff = -0.1 }},
		{"zero parallel", func(c *Config) { c.Parallel = 0 }},
		{"nonexistent scores dir", func(c *Config) { c.ScoresDir = filepath.Join(in, "missing") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
