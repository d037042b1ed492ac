package report

// SLAPercent computes the fraction of the report window an entity
// spent in a "good" state, as a percentage. Window time spent in a bad
// state (down/unreachable, or warning/critical/unknown) during
// scheduled downtime is excluded from the denominator; scheduled time
// in a good state is not excluded. isHost selects the host
// (up/down/unreachable) or service (ok/warning/critical/unknown)
// bucket set.
func SLAPercent(isHost bool, b *Buckets, start, end int64) float64 {
	window := end - start
	if window <= 0 {
		return 100
	}

	var good, scheduledBad int64
	if isHost {
		good = b.Totals["time_up"]
		scheduledBad = b.Totals["scheduled_time_down"] + b.Totals["scheduled_time_unreachable"]
	} else {
		good = b.Totals["time_ok"]
		scheduledBad = b.Totals["scheduled_time_warning"] + b.Totals["scheduled_time_critical"] + b.Totals["scheduled_time_unknown"]
	}

	available := window - scheduledBad
	if available <= 0 {
		return 100
	}
	return 100 * float64(good) / float64(available)
}
