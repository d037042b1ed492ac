package timeutil

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"
)

// BreakMode selects the breakdown granularity for a report.
type BreakMode int

const (
	BreakNone BreakMode = iota
	BreakDays
	BreakWeeks
	BreakMonths
)

// ParseBreakMode maps the config-level breakdown string to a BreakMode.
func ParseBreakMode(s string) (BreakMode, error) {
	switch s {
	case "", "none":
		return BreakNone, nil
	case "days":
		return BreakDays, nil
	case "weeks":
		return BreakWeeks, nil
	case "months":
		return BreakMonths, nil
	default:
		return BreakNone, fmt.Errorf("unknown breakdown mode %q", s)
	}
}

// BreakConfig returns the strftime pattern and the nominal advance (in
// seconds) for a breakdown mode. The month advance is a fixed 30-day
// stride, not a real calendar month. EnumerateLabels does not use the
// advance: it walks the window one day at a time and de-duplicates the
// formatted labels — see DESIGN.md's Open Question note on month
// strides.
func BreakConfig(mode BreakMode) (pattern string, advance int64) {
	switch mode {
	case BreakDays:
		return "%Y-%m-%d", 86400
	case BreakWeeks:
		return "%Y-KW%V", 86400 * 7
	case BreakMonths:
		return "%Y-%m", 86400 * 30
	default:
		return "", 0
	}
}

// BucketLabel returns the breakdown label covering timestamp t under
// mode. Subtracting one second biases the end instant of a half-open
// interval onto the prior bucket, per §4.A.
func BucketLabel(mode BreakMode, t int64) (string, error) {
	pattern, _ := BreakConfig(mode)
	if pattern == "" {
		return "", nil
	}
	return StrftimeLocal(pattern, t-1)
}

// StrftimeLocal formats the unix timestamp t in local time using an
// arbitrary strftime pattern, used both for breakdown labels and for
// the user-configurable `timeformat` option.
func StrftimeLocal(pattern string, t int64) (string, error) {
	return strftime.Format(pattern, time.Unix(t, 0)), nil
}

// LocalMidnightsBetween returns the monotonically increasing list of
// local-midnight unix timestamps strictly between start and end,
// advanced by 86400s per step (spec.md §4.F step 2). These are the
// engine's breakdown breakpoints — computed the same way regardless of
// breakdown granularity; only the label assigned to each segment
// differs by mode.
func LocalMidnightsBetween(start, end int64) []int64 {
	if end <= start {
		return nil
	}

	t := time.Unix(start, 0).Local()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	if !midnight.After(t) {
		midnight = midnight.Add(24 * time.Hour)
	}

	var out []int64
	for {
		ts := midnight.Unix()
		if ts >= end {
			break
		}
		if ts > start {
			out = append(out, ts)
		}
		midnight = midnight.Add(86400 * time.Second)
	}
	return out
}

// EnumerateLabels walks day-by-day from start to end (exclusive),
// de-duplicating consecutive identical labels, rather than striding by
// the breakdown's nominal advance — this avoids the off-by-one label
// gaps the 30-day month stride would otherwise produce, per the
// implementer's note in §9.
func EnumerateLabels(mode BreakMode, start, end int64) ([]string, error) {
	if mode == BreakNone || start >= end {
		return nil, nil
	}

	var labels []string
	var last string
	for t := start; t < end; t += 86400 {
		label, err := BucketLabel(mode, t+1)
		if err != nil {
			return nil, err
		}
		if label != last {
			labels = append(labels, label)
			last = label
		}
	}

	finalLabel, err := BucketLabel(mode, end)
	if err != nil {
		return nil, err
	}
	if finalLabel != last {
		labels = append(labels, finalLabel)
	}

	return labels, nil
}
