// Package dataset discovers and loads the parallel score/label inputs.
// The i-th file (lexicographically) in the scores directory corresponds to
// the i-th file in the labels directory, and the two must share the same
// first dot-delimited filename segment.
package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Fatal input conditions: the whole run aborts on these.
var (
	ErrEmptyListing  = errors.New("dataset: scores or labels file list is empty")
	ErrCountMismatch = errors.New("dataset: scores and labels file counts differ")
)

// Pair is one label set's pair of input files.
type Pair struct {
	Name       string // shared filename prefix (first dot-delimited segment)
	ScoresPath string
	LabelsPath string
}

// ListPairs enumerates both input directories, skips dotfiles and
// subdirectories, sorts lexicographically, and pairs entries positionally.
// Empty listings, count mismatches, and prefix mismatches are fatal.
func ListPairs(scoresDir, labelsDir string) ([]Pair, error) {
	scores, err := listFiles(scoresDir)
	if err != nil {
		return nil, err
	}
	labels, err := listFiles(labelsDir)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 || len(labels) == 0 {
		return nil, ErrEmptyListing
	}
	if len(scores) != len(labels) {
		return nil, fmt.Errorf("%w: %d scores files, %d labels files",
			ErrCountMismatch, len(scores), len(labels))
	}

	pairs := make([]Pair, len(scores))
	for i := range scores {
		sp := Prefix(scores[i])
		lp := Prefix(labels[i])
		if sp != lp {
			return nil, fmt.Errorf("dataset: paired files %s and %s have different prefixes (%s vs %s)",
				scores[i], labels[i], sp, lp)
		}
		pairs[i] = Pair{
			Name:       sp,
			ScoresPath: filepath.Join(scoresDir, scores[i]),
			LabelsPath: filepath.Join(labelsDir, labels[i]),
		}
	}
	return pairs, nil
}

// Prefix returns the first dot-delimited segment of a file name.
func Prefix(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset: list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// LoadScores reads a headerless one-score-per-line file.
func LoadScores(path string) ([]float64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(lines))
	for i, line := range lines {
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("dataset: %s line %d: %w", path, i+1, err)
		}
		scores = append(scores, v)
	}
	return scores, nil
}

// LoadLabels reads a headerless one-label-per-line file.
func LoadLabels(path string) ([]string, error) {
	return readLines(path)
}

// readLines returns the non-blank, whitespace-trimmed lines of a file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return lines, nil
}
