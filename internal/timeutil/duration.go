// Package timeutil provides the small time/duration helpers the
// availability engine and its callers need: human-readable duration
// formatting and breakdown bucket labeling.
package timeutil

import "fmt"

// FormatDuration renders seconds as "<d>d <h>h <m>m <s>s". Negative
// inputs are absolutized; fractional seconds are truncated.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}

	days := seconds / 86400
	seconds -= days * 86400
	hours := seconds / 3600
	seconds -= hours * 3600
	minutes := seconds / 60
	seconds -= minutes * 60

	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
