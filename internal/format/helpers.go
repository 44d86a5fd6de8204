package format

import (
	"fmt"
	"strconv"
)

// Pct formats a membership percentage with two decimal places.
func Pct(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

// Coeff formats a correlation coefficient with four decimal places.
func Coeff(c float64) string {
	return strconv.FormatFloat(c, 'f', 4, 64)
}

// Float renders a float in its shortest exact decimal form, the way the
// statistics report prints raw values.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Truncate shortens s to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PassFail returns the literal verdict string used in reports.
func PassFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
