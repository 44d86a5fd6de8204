package lexicon

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cohere/internal/logging"
)

func init() {
	logging.Init(slog.LevelError, "text")
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture lays out a complete set of lexicon inputs for two entries.
func fixture(t *testing.T) Config {
	t.Helper()
	cfg := Config{
		DendrosDir: t.TempDir(),
		WeightsDir: t.TempDir(),
		ImagesDir:  t.TempDir(),
		OutputDir:  t.TempDir(),
	}
	write(t, cfg.DendrosDir, "anger-1.png", "png")
	write(t, cfg.DendrosDir, "joy-3.png", "png")
	write(t, cfg.WeightsDir, "anger-1.weights.txt", "angry 0.8123456789\nmad 0.6\n")
	write(t, cfg.WeightsDir, "joy-3.weights.txt", "happy 0.91\n")
	write(t, cfg.ImagesDir, "anger-1.jpg", "jpg")
	write(t, cfg.ImagesDir, "joy-3.jpg", "jpg")

	csvDir := t.TempDir()
	write(t, csvDir, "aus.csv", "image,AU1,AU4,AU12\nanger-1,0.2,0.9,0.1\njoy-3,0.1,0.0,0.8\n")
	cfg.AUWeights = filepath.Join(csvDir, "aus.csv")
	return cfg
}

func TestCompile(t *testing.T) {
	cfg := fixture(t)

	entries, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	e := entries[0]
	if e.Name != "anger-1" || e.TopLabel != "angry" {
		t.Errorf("entry = %+v, want anger-1/angry", e)
	}
	if e.Weight != 0.812346 {
		t.Errorf("Weight = %g, want 0.812346 (6 decimal digits)", e.Weight)
	}

	page, err := os.ReadFile(filepath.Join(cfg.OutputDir, "anger-1.md"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, want := range []string{"# anger-1", "**angry**", "AU4", "0.9", "dendrogram"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}

	index, err := os.ReadFile(filepath.Join(cfg.OutputDir, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	for _, want := range []string{"anger-1", "joy-3", "happy"} {
		if !strings.Contains(string(index), want) {
			t.Errorf("index missing %q:\n%s", want, index)
		}
	}
}

func TestCompile_MissingImageDegrades(t *testing.T) {
	cfg := fixture(t)
	if err := os.Remove(filepath.Join(cfg.ImagesDir, "anger-1.jpg")); err != nil {
		t.Fatal(err)
	}

	entries, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (missing image should not drop the entry)", len(entries))
	}
	if entries[0].Image != "" {
		t.Errorf("Image = %q, want empty", entries[0].Image)
	}
}

func TestCompile_MissingAUGroupDegrades(t *testing.T) {
	cfg := fixture(t)
	csvDir := t.TempDir()
	write(t, csvDir, "aus.csv", "image,AU1\njoy-3,0.1\n")
	cfg.AUWeights = filepath.Join(csvDir, "aus.csv")

	entries, err := Compile(cfg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(entries[0].AUHeader) != 0 {
		t.Errorf("anger-1 should have no AU columns, got %v", entries[0].AUHeader)
	}
	if len(entries[1].AUValues) != 1 {
		t.Errorf("joy-3 should keep its AU record, got %v", entries[1].AUValues)
	}
}

func TestCompile_EmptyInputsFatal(t *testing.T) {
	cfg := fixture(t)
	for _, f := range []string{"anger-1.jpg", "joy-3.jpg"} {
		if err := os.Remove(filepath.Join(cfg.ImagesDir, f)); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := Compile(cfg); !errors.Is(err, ErrEmptyInputs) {
		t.Errorf("err = %v, want ErrEmptyInputs", err)
	}
}

func TestCompile_CountMismatchFatal(t *testing.T) {
	cfg := fixture(t)
	if err := os.Remove(filepath.Join(cfg.WeightsDir, "joy-3.weights.txt")); err != nil {
		t.Fatal(err)
	}

	if _, err := Compile(cfg); !errors.Is(err, ErrCountMismatch) {
		t.Errorf("err = %v, want ErrCountMismatch", err)
	}
}

func TestTopLabelWeight_Malformed(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "bad.weights.txt", "onlyonefield\n")

	if _, _, err := topLabelWeight(filepath.Join(dir, "bad.weights.txt")); err == nil {
		t.Error("expected error for malformed weights line")
	}
}
