package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"cohere/internal/lexicon"
	"cohere/internal/logging"
)

var lexiconFlags struct {
	logLevel  string
	logFormat string
}

var lexiconCmd = &cobra.Command{
	Use:   "lexicon <dendros-dir> <weights-dir> <images-dir> <aus-csv> <output-dir>",
	Short: "Compile lexicon pages from passing label sets",
	Long: `Join passing dendrograms with summed label weights, expression images,
and the AU/weights spreadsheet, and write one Markdown page per entry plus
an index page.

Entries are matched by the first dot-delimited filename segment. A missing
image or AU record degrades that entry's page; a missing weights file skips
the entry with a message.`,
	Args: cobra.ExactArgs(5),
	RunE: runLexicon,
}

func init() {
	f := lexiconCmd.Flags()
	f.StringVar(&lexiconFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&lexiconFlags.logFormat, "log-format", "text", "Log format: text or json")
}

func runLexicon(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(lexiconFlags.logLevel)
	if err != nil {
		return err
	}
	logging.Init(level, lexiconFlags.logFormat)

	entries, err := lexicon.Compile(lexicon.Config{
		DendrosDir: args[0],
		WeightsDir: args[1],
		ImagesDir:  args[2],
		AUWeights:  args[3],
		OutputDir:  args[4],
	})
	if err != nil {
		return err
	}

	slog.Info("lexicon compiled", "entries", len(entries), "output", args[4])
	fmt.Fprintf(cmd.OutOrStdout(), "compiled %d lexicon entries into %s\n", len(entries), args[4])
	return nil
}
