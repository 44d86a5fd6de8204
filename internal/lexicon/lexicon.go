// Package lexicon compiles the downstream lexicon: passing dendrograms are
// joined with summed label weights, expression images, and the AU/weights
// spreadsheet by shared filename prefix, then rendered as Markdown pages.
package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"cohere/internal/dataset"
	"cohere/internal/format"
	"cohere/internal/logging"
)

// Artifact extensions joined per entry.
const (
	DendroExt  = ".png"
	WeightsExt = ".weights.txt"
	ImageExt   = ".jpg"
)

// Fatal input conditions for lexicon compilation.
var (
	ErrEmptyInputs   = errors.New("lexicon: an input file list is empty")
	ErrCountMismatch = errors.New("lexicon: dendrogram and weights file counts differ")
)

// Config names the inputs and output of one compilation.
type Config struct {
	DendrosDir string // dendrograms that passed the clustering test
	WeightsDir string // summed label weight files
	ImagesDir  string // facial expression images
	AUWeights  string // CSV of AUs and weights, first column is the entry name
	OutputDir  string
}

// Entry is one compiled lexicon page.
type Entry struct {
	Name     string
	TopLabel string
	Weight   float64
	Dendro   string
	Image    string   // empty when no image was found
	AUHeader []string // AU column names, when the CSV has a row
	AUValues []string
}

// Compile joins the inputs into lexicon entries and writes one Markdown
// page per entry plus an index page. A missing image or AU row degrades
// that entry; a missing weights file skips it.
func Compile(cfg Config) ([]Entry, error) {
	logger := logging.New("lexicon")

	dendros, err := listWith(cfg.DendrosDir, DendroExt)
	if err != nil {
		return nil, err
	}
	weights, err := listWith(cfg.WeightsDir, WeightsExt)
	if err != nil {
		return nil, err
	}
	images, err := listWith(cfg.ImagesDir, ImageExt)
	if err != nil {
		return nil, err
	}
	if len(dendros) == 0 || len(weights) == 0 || len(images) == 0 {
		return nil, ErrEmptyInputs
	}
	if len(dendros) != len(weights) {
		return nil, fmt.Errorf("%w: %d dendrograms, %d weights files",
			ErrCountMismatch, len(dendros), len(weights))
	}

	auHeader, auRows, err := loadAUWeights(cfg.AUWeights)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("lexicon: create output dir: %w", err)
	}

	weightsByName := byPrefix(weights)
	imagesByName := byPrefix(images)

	var entries []Entry
	for _, dendro := range dendros {
		name := dataset.Prefix(dendro)

		wf, ok := weightsByName[name]
		if !ok {
			logger.Warn("no weights file for entry", "entry", name)
			continue
		}
		label, weight, err := topLabelWeight(filepath.Join(cfg.WeightsDir, wf))
		if err != nil {
			logger.Warn("unreadable weights file", "entry", name, "error", err)
			continue
		}

		entry := Entry{
			Name:     name,
			TopLabel: label,
			Weight:   weight,
			Dendro:   filepath.Join(cfg.DendrosDir, dendro),
		}
		if img, ok := imagesByName[name]; ok {
			entry.Image = filepath.Join(cfg.ImagesDir, img)
		} else {
			logger.Warn("no image for entry", "entry", name)
		}
		if vals, ok := auRows[name]; ok {
			entry.AUHeader = auHeader
			entry.AUValues = vals
		} else {
			logger.Warn("no AU record for entry", "entry", name)
		}

		if err := writePage(cfg.OutputDir, entry); err != nil {
			logger.Warn("unable to write lexicon page", "entry", name, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := writeIndex(cfg.OutputDir, entries); err != nil {
		return entries, err
	}
	return entries, nil
}

// byPrefix indexes file names by their first dot-delimited segment.
func byPrefix(names []string) map[string]string {
	m := make(map[string]string, len(names))
	for _, n := range names {
		m[dataset.Prefix(n)] = n
	}
	return m
}

// listWith returns the sorted files in dir carrying the extension.
func listWith(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("lexicon: list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// topLabelWeight reads the winning label and its summed weight from the
// first line of a weights file. The weight keeps 6 decimal digits.
func topLabelWeight(path string) (string, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("lexicon: malformed weights line %q in %s", line, path)
	}
	w, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("lexicon: weight in %s: %w", path, err)
	}
	return fields[0], math.Round(w*1e6) / 1e6, nil
}

// loadAUWeights parses the AU/weights CSV: a header row, then one row per
// entry with the entry name in the first column.
func loadAUWeights(path string) ([]string, map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("lexicon: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("lexicon: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("lexicon: %s has no header row", path)
	}

	header := records[0][1:]
	rows := make(map[string][]string, len(records)-1)
	for _, rec := range records[1:] {
		rows[rec[0]] = rec[1:]
	}
	return header, rows, nil
}

func writePage(dir string, e Entry) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", e.Name)
	fmt.Fprintf(&b, "Top label: **%s** (weight %s)\n\n", e.TopLabel, format.Float(e.Weight))
	if e.Image != "" {
		fmt.Fprintf(&b, "![expression](%s)\n\n", e.Image)
	}
	if len(e.AUHeader) > 0 {
		tb := format.NewTable(format.Markdown)
		header := make([]string, len(e.AUHeader))
		copy(header, e.AUHeader)
		tb.Header(header...)
		vals := make([]any, len(e.AUValues))
		for i, v := range e.AUValues {
			vals[i] = v
		}
		tb.Row(vals...)
		b.WriteString(tb.String())
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "![dendrogram](%s)\n", e.Dendro)

	return os.WriteFile(filepath.Join(dir, e.Name+".md"), []byte(b.String()), 0o644)
}

func writeIndex(dir string, entries []Entry) error {
	tb := format.NewTable(format.Markdown)
	tb.Header("Entry", "Top Label", "Weight")
	for _, e := range entries {
		tb.Row("["+e.Name+"]("+e.Name+".md)", e.TopLabel, format.Float(e.Weight))
	}

	content := "# Lexicon\n\n" + tb.String() + "\n"
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("lexicon: write index: %w", err)
	}
	return nil
}
