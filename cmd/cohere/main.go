// cohere is the main CLI: cluster label sets by synonymy scores and compile
// the lexicon from the sets that pass.
//
// Usage:
//
//	cohere cluster <scores-dir> <labels-dir> <output-dir> [--cutoff=0.7275]
//	cohere lexicon <dendros-dir> <weights-dir> <images-dir> <aus-csv> <output-dir>
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "cohere",
	Short: "Coherence testing for synonym label sets",
	Long: "Cohere clusters sets of synonym labels by pairwise similarity,\n" +
		"decides whether each set forms one dominant semantic cluster, and\n" +
		"renders dendrograms and statistics routed into Pass/Fail directories.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(lexiconCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
