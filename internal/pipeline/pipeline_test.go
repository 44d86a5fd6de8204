package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"cohere/internal/config"
	"cohere/internal/dataset"
	"cohere/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// testConfig builds a runnable config around temp input dirs holding the
// given named label sets. Each set is (scores lines, labels lines).
func testConfig(t *testing.T, sets map[string][2]string) config.Config {
	t.Helper()
	scores := t.TempDir()
	labels := t.TempDir()
	for name, data := range sets {
		writeFile(t, filepath.Join(scores, name+".scores.txt"), data[0])
		writeFile(t, filepath.Join(labels, name+".labels.txt"), data[1])
	}

	cfg := config.Default()
	cfg.ScoresDir = scores
	cfg.LabelsDir = labels
	cfg.OutputDir = t.TempDir()
	return cfg
}

func init() {
	logging.Init(slog.LevelError, "text")
}

func TestRun_RoutesByThreshold(t *testing.T) {
	cfg := testConfig(t, map[string][2]string{
		// Two of three labels cluster: 66.67% routes to Pass but the
		// verdict text is fail.
		"anger-1": {"0.9\n0.9\n0.1\n", "angry\nmad\ncalm\n"},
		// All four labels end up in one cluster: pass everywhere.
		"joy-3": {"0.9\n0.9\n0.9\n0.9\n0.9\n0.1\n", "glad\nhappy\njoyful\nmerry\n"},
	})

	outcomes, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}

	for _, path := range []string{
		filepath.Join(cfg.OutputDir, "Dendrograms", "Pass", "anger-1.png"),
		filepath.Join(cfg.OutputDir, "Statistics", "Pass", "anger-1.txt"),
		filepath.Join(cfg.OutputDir, "Dendrograms", "Pass", "joy-3.png"),
		filepath.Join(cfg.OutputDir, "Statistics", "Pass", "joy-3.txt"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}

	var anger Outcome
	for _, o := range outcomes {
		if o.Name == "anger-1" {
			anger = o
		}
	}
	if anger.Verdict.Pass {
		t.Error("anger-1 verdict should fail the 75% test")
	}
	if !anger.Verdict.Routed {
		t.Error("anger-1 should route to Pass at 66.67%")
	}
}

func TestRun_RoutesFailBelowThreshold(t *testing.T) {
	// Two tight pairs far apart: the cut leaves two clusters of two, so
	// the largest holds 50% of the membership.
	cfg := testConfig(t, map[string][2]string{
		"split-2": {"0.95\n0.1\n0.1\n0.1\n0.1\n0.9\n", "a\nb\nc\nd\n"},
	})

	outcomes, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	o := outcomes[0]
	if o.Skipped {
		t.Fatalf("unexpected skip: %s", o.Reason)
	}
	if o.Verdict.Routed {
		t.Errorf("LargestPct = %g, expected routing to Fail", o.Verdict.LargestPct)
	}
	if o.Verdict.LargestPct != 50 {
		t.Errorf("LargestPct = %g, want 50", o.Verdict.LargestPct)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "Statistics", "Fail", "split-2.txt")); err != nil {
		t.Errorf("missing Fail statistics file: %v", err)
	}
}

func TestRun_SkipsShapeMismatch(t *testing.T) {
	cfg := testConfig(t, map[string][2]string{
		// Three labels need three scores; two provided.
		"broken-1": {"0.9\n0.8\n", "a\nb\nc\n"},
		"good-2":   {"0.9\n0.9\n0.1\n", "x\ny\nz\n"},
	})

	outcomes, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if Skipped(outcomes) != 1 {
		t.Fatalf("Skipped = %d, want 1", Skipped(outcomes))
	}
	results := Results(outcomes)
	if len(results) != 1 || results[0].Name != "good-2" {
		t.Errorf("Results = %+v, want only good-2", results)
	}
}

func TestRun_EmptyInputsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.ScoresDir = t.TempDir()
	cfg.LabelsDir = t.TempDir()
	cfg.OutputDir = t.TempDir()

	if _, err := Run(context.Background(), cfg); !errors.Is(err, dataset.ErrEmptyListing) {
		t.Errorf("err = %v, want ErrEmptyListing", err)
	}
}

func TestRun_Parallel(t *testing.T) {
	sets := map[string][2]string{
		"p1": {"0.9\n0.9\n0.1\n", "a\nb\nc\n"},
		"p2": {"0.9\n0.9\n0.1\n", "d\ne\nf\n"},
		"p3": {"0.9\n0.9\n0.1\n", "g\nh\ni\n"},
		"p4": {"0.9\n0.9\n0.1\n", "j\nk\nl\n"},
	}
	cfg := testConfig(t, sets)
	cfg.Parallel = 4

	outcomes, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != 4 || Skipped(outcomes) != 0 {
		t.Fatalf("outcomes = %d, skipped = %d", len(outcomes), Skipped(outcomes))
	}
	// Identical inputs give identical verdicts regardless of scheduling.
	for _, o := range outcomes[1:] {
		if o.Verdict.LargestPct != outcomes[0].Verdict.LargestPct {
			t.Errorf("verdicts diverge across parallel workers: %+v vs %+v",
				o.Verdict, outcomes[0].Verdict)
		}
	}
}

func TestRun_SingleLabelSkipped(t *testing.T) {
	cfg := testConfig(t, map[string][2]string{
		"solo-1": {"", "alone\n"},
	})

	outcomes, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcomes[0].Skipped {
		t.Error("single-label set should be skipped, not clustered")
	}
}
