package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cohere/internal/config"
	"cohere/internal/format"
	"cohere/internal/logging"
	"cohere/internal/pipeline"
	"cohere/internal/report"
)

var clusterFlags struct {
	configPath string
	cutoff     float64
	parallel   int
	logLevel   string
	logFormat  string
	summaryFmt string
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <scores-dir> <labels-dir> <output-dir>",
	Short: "Cluster label sets and run the coherence test",
	Long: `Cluster each label set by its pairwise synonymy scores and test whether
the set forms one dominant semantic cluster.

Per label set, a dendrogram PNG and a statistics report are written under
<output-dir>/Dendrograms/{Pass,Fail} and <output-dir>/Statistics/{Pass,Fail}.
Directory routing uses the 66% largest-cluster threshold; the pass/fail
verdict inside the report uses 75%. The two thresholds are intentionally
distinct.

The i-th scores file (sorted) pairs with the i-th labels file, and both must
share the same first dot-delimited filename segment. A scores file whose
length is not n*(n-1)/2 for its n labels is skipped with a message; other
sets still run.`,
	Args: cobra.ExactArgs(3),
	RunE: runCluster,
}

func init() {
	f := clusterCmd.Flags()
	f.StringVar(&clusterFlags.configPath, "config", "", "Optional YAML config file (flags override it)")
	f.Float64Var(&clusterFlags.cutoff, "cutoff", config.DefaultCutoff, "Cut distance for the dendrogram and the coherence test")
	f.IntVar(&clusterFlags.parallel, "parallel", 1, "Label sets processed concurrently")
	f.StringVar(&clusterFlags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&clusterFlags.logFormat, "log-format", "text", "Log format: text or json")
	f.StringVar(&clusterFlags.summaryFmt, "summary", "ascii", "Summary table format: ascii or markdown")
}

func runCluster(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if clusterFlags.configPath != "" {
		loaded, err := config.LoadFile(clusterFlags.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ScoresDir = args[0]
	cfg.LabelsDir = args[1]
	cfg.OutputDir = args[2]
	flagOverrides(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat)

	outcomes, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	mode := format.ASCII
	if cfg.SummaryFmt == "markdown" {
		mode = format.Markdown
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Summary(pipeline.Results(outcomes), mode))
	if skipped := pipeline.Skipped(outcomes); skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d label set(s) skipped; see log for details\n", skipped)
	}
	return nil
}

// flagOverrides applies explicitly-set flags over the file-loaded config,
// so precedence is flag > file > default.
func flagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("cutoff") || cfg.Cutoff == 0 {
		cfg.Cutoff = clusterFlags.cutoff
	}
	if cmd.Flags().Changed("parallel") || cfg.Parallel == 0 {
		cfg.Parallel = clusterFlags.parallel
	}
	if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = clusterFlags.logLevel
	}
	if cmd.Flags().Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = clusterFlags.logFormat
	}
	if cmd.Flags().Changed("summary") || cfg.SummaryFmt == "" {
		cfg.SummaryFmt = clusterFlags.summaryFmt
	}
}
