// Package report implements the per-entity time-bucket accumulator
// the availability engine feeds as it walks events (spec.md §4.E).
package report

import "monavail/internal/timeutil"

// Buckets holds one entity's accumulated seconds, keyed by bucket name
// (e.g. "time_ok", "scheduled_time_down", "time_indeterminate_nodata").
// Breakdown, when enabled, holds the same shape per period label.
type Buckets struct {
	Totals    map[string]int64
	Breakdown map[string]map[string]int64
}

// NewBuckets returns an empty accumulator, with breakdown sub-buckets
// pre-created for every label covering [start, end) when mode is not
// BreakNone, per spec.md §3 ("all buckets in the breakdown are
// pre-created for every label covering the interval").
func NewBuckets(mode timeutil.BreakMode, start, end int64) (*Buckets, error) {
	b := &Buckets{Totals: make(map[string]int64)}
	if mode == timeutil.BreakNone {
		return b, nil
	}

	labels, err := timeutil.EnumerateLabels(mode, start, end)
	if err != nil {
		return nil, err
	}
	b.Breakdown = make(map[string]map[string]int64, len(labels))
	for _, label := range labels {
		b.Breakdown[label] = make(map[string]int64)
	}
	return b, nil
}

// AddTime adds delta seconds to bucket, and — if inDowntime — also to
// its scheduled counterpart ("scheduled_"+bucket, unless
// scheduledBucket overrides that). If breakdown is enabled, the same
// increments are mirrored into the sub-bucket for label(date).
// data[bucket] (and its breakdown counterpart) is created on first use.
func (b *Buckets) AddTime(mode timeutil.BreakMode, date, delta int64, bucket string, inDowntime bool, scheduledBucket string) error {
	b.Totals[bucket] += delta

	if inDowntime {
		sb := scheduledBucket
		if sb == "" {
			sb = "scheduled_" + bucket
		}
		b.Totals[sb] += delta
	}

	if mode == timeutil.BreakNone {
		return nil
	}

	label, err := timeutil.BucketLabel(mode, date)
	if err != nil {
		return err
	}
	sub := b.Breakdown[label]
	if sub == nil {
		sub = make(map[string]int64)
		b.Breakdown[label] = sub
	}
	sub[bucket] += delta
	if inDowntime {
		sb := scheduledBucket
		if sb == "" {
			sb = "scheduled_" + bucket
		}
		sub[sb] += delta
	}

	return nil
}

// Sum returns the sum of every "time_*" bucket — the non-scheduled
// totals invariant 1 requires to equal E-S. Scheduled_* buckets are a
// parallel accounting (invariant 2: scheduled_time_X <= time_X) and
// are excluded here to avoid double-counting the same elapsed time.
func (b *Buckets) Sum() int64 {
	var total int64
	for k, v := range b.Totals {
		if len(k) >= 5 && k[:5] == "time_" {
			total += v
		}
	}
	return total
}
