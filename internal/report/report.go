// Package report renders coherence verdicts as human-readable text: the
// per-set statistics file and the end-of-run summary table.
package report

import (
	"sort"
	"strconv"
	"strings"

	"cohere/internal/coherence"
	"cohere/internal/format"
)

const rule = "---------------------------------------------------------------------------------"

// Stats renders the statistics printout for one label set. The layout is
// fixed: header, cophenetic coefficient, cluster membership table in
// cluster-id order, the largest-cluster summary sentence, and the literal
// pass/fail verdict.
func Stats(v coherence.Verdict) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("Agglomerative Hierarchical Clustering Statistics\n")
	b.WriteString(rule + "\n")
	b.WriteString("Cophenetic correlation coefficient: " + format.Float(v.Cophenetic) + "\n")
	b.WriteString("Cluster: Count\n")

	ids := make([]int, 0, len(v.Clusters))
	for id := range v.Clusters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		b.WriteString(strconv.Itoa(id) + ": " + strconv.Itoa(v.Clusters[id]) + "\n")
	}

	b.WriteString("Cluster " + strconv.Itoa(v.LargestID) + " with " +
		strconv.Itoa(v.Clusters[v.LargestID]) + " members has " +
		format.Float(v.LargestPct) + "% of the membership.\n")
	b.WriteString("Cluster coherence test: " + format.PassFail(v.Pass))
	return b.String()
}

// Result pairs a label set name with its verdict for the run summary.
type Result struct {
	Name    string
	Verdict coherence.Verdict
}

// Summary renders a one-row-per-set table for console output at the end of
// a run. Routing reflects the output directory (66% threshold), verdict the
// coherence test (75% threshold).
func Summary(results []Result, mode format.Mode) string {
	tb := format.NewTable(mode)
	tb.Header("Set", "Clusters", "Cophenetic", "Largest %", "Verdict", "Routing")
	tb.Columns(
		format.ColumnConfig{Number: 2, Align: format.AlignRight},
		format.ColumnConfig{Number: 3, Align: format.AlignRight},
		format.ColumnConfig{Number: 4, Align: format.AlignRight},
	)

	passed := 0
	for _, r := range results {
		v := r.Verdict
		routing := "Fail"
		if v.Routed {
			routing = "Pass"
		}
		tb.Row(r.Name, len(v.Clusters), format.Coeff(v.Cophenetic),
			format.Pct(v.LargestPct), format.PassFail(v.Pass), routing)
		if v.Pass {
			passed++
		}
	}
	tb.Footer("passed", "", "", "", strconv.Itoa(passed)+"/"+strconv.Itoa(len(results)), "")
	return tb.String()
}
