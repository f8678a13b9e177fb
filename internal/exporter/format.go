package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatFloat formats a float64 value for CSV output with exactly 2
// decimal places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatRatio keeps four decimal places for percentages expressed as
// fractions, where two would round away most of the signal.
func formatRatio(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate renders a date cell, empty for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatOptFloat renders a nullable numeric cell. A nil pointer means
// the value is undefined and the cell stays empty rather than zero.
func formatOptFloat(f *float64, decimals int) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', decimals, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
