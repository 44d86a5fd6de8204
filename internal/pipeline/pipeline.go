// Package pipeline drives one clustering run: pair the input files, push
// each label set through normalize -> linkage -> coherence, and route the
// rendered artifacts into Pass/Fail output directories.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"cohere/internal/coherence"
	"cohere/internal/config"
	"cohere/internal/dataset"
	"cohere/internal/dendrogram"
	"cohere/internal/distance"
	"cohere/internal/linkage"
	"cohere/internal/logging"
	"cohere/internal/report"
)

// Output directory names under the output root. Routing between Pass and
// Fail uses coherence.RouteThreshold, not the report verdict.
const (
	dendroDir = "Dendrograms"
	statsDir  = "Statistics"
	passDir   = "Pass"
	failDir   = "Fail"
)

// Outcome describes what happened to one label set.
type Outcome struct {
	Name    string
	Verdict coherence.Verdict
	Skipped bool   // shape mismatch or per-set failure; run continued
	Reason  string // human-readable skip reason
}

// Run processes every score/label pair under the configured directories.
// Input-listing problems are fatal and abort the run; per-set shape
// mismatches and write failures are logged and skipped. Label sets are
// independent, so up to cfg.Parallel of them are processed concurrently.
func Run(ctx context.Context, cfg config.Config) ([]Outcome, error) {
	logger := logging.New("pipeline")

	pairs, err := dataset.ListPairs(cfg.ScoresDir, cfg.LabelsDir)
	if err != nil {
		return nil, err
	}
	if err := scaffold(cfg.OutputDir); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcomes[i] = processPair(pair, cfg, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// processPair runs the full per-set pipeline. Every failure is local to
// this label set: it is logged and reported as a skip.
func processPair(pair dataset.Pair, cfg config.Config, logger *slog.Logger) Outcome {
	skip := func(reason string) Outcome {
		logger.Warn("skipping label set", "set", pair.Name, "reason", reason)
		return Outcome{Name: pair.Name, Skipped: true, Reason: reason}
	}

	scores, err := dataset.LoadScores(pair.ScoresPath)
	if err != nil {
		return skip(err.Error())
	}
	labels, err := dataset.LoadLabels(pair.LabelsPath)
	if err != nil {
		return skip(err.Error())
	}

	n := len(labels)
	if want := distance.CondensedLen(n); len(scores) != want || n < 2 {
		return skip(fmt.Sprintf("the number of values in %s is %d, but it should be %d for %d labels",
			pair.ScoresPath, len(scores), want, n))
	}

	dist, err := distance.Normalize(scores)
	if err != nil {
		return skip(err.Error())
	}
	tree, err := linkage.Build(dist, n)
	if err != nil {
		return skip(err.Error())
	}
	verdict, err := coherence.Evaluate(tree, dist, cfg.Cutoff)
	if err != nil {
		return skip(err.Error())
	}

	route := failDir
	if verdict.Routed {
		route = passDir
	}
	dendroPath := filepath.Join(cfg.OutputDir, dendroDir, route, pair.Name+".png")
	statsPath := filepath.Join(cfg.OutputDir, statsDir, route, pair.Name+".txt")

	// Write failures do not abort the run; the verdict still counts.
	if err := dendrogram.Render(tree, labels, cfg.Cutoff, pair.Name, dendroPath); err != nil {
		logger.Warn("unable to save dendrogram", "set", pair.Name, "error", err)
	}
	if err := os.WriteFile(statsPath, []byte(report.Stats(verdict)), 0o644); err != nil {
		logger.Warn("unable to save statistics", "set", pair.Name, "error", err)
	}

	logger.Info("clustered label set", "set", pair.Name,
		"labels", n, "clusters", len(verdict.Clusters),
		"largest_pct", verdict.LargestPct, "pass", verdict.Pass, "routing", route)
	return Outcome{Name: pair.Name, Verdict: verdict}
}

// Results converts the processed outcomes into summary rows, excluding
// skipped sets.
func Results(outcomes []Outcome) []report.Result {
	results := make([]report.Result, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Skipped {
			continue
		}
		results = append(results, report.Result{Name: o.Name, Verdict: o.Verdict})
	}
	return results
}

// scaffold creates the Pass/Fail output directory tree.
func scaffold(root string) error {
	for _, kind := range []string{dendroDir, statsDir} {
		for _, route := range []string{passDir, failDir} {
			if err := os.MkdirAll(filepath.Join(root, kind, route), 0o755); err != nil {
				return fmt.Errorf("pipeline: create output dir: %w", err)
			}
		}
	}
	return nil
}

// Skipped counts outcomes that did not complete.
func Skipped(outcomes []Outcome) int {
	count := 0
	for _, o := range outcomes {
		if o.Skipped {
			count++
		}
	}
	return count
}
