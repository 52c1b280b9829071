package exporter

import (
	"fmt"
	"strconv"
	"time"
)

// formatFloat formats a monetary value for CSV output with exactly 2 decimal
// places, so values like 13.4 appear as 13.40
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatFraction formats a fractional value (discount, profit margin) with
// 4 decimal places. An undefined fraction, such as the margin of a zero-sales
// group, is written as an empty cell rather than a misleading zero.
func formatFraction(f float64, defined bool) string {
	if !defined {
		return ""
	}
	return fmt.Sprintf("%.4f", f)
}

// formatDate formats a date for CSV output in ISO form
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
