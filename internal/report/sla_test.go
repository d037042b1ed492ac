package report

import "testing"

func TestSLAPercentFullyUp(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{"time_up": 1000}}
	if got := SLAPercent(true, b, 0, 1000); got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestSLAPercentExcludesScheduledDowntime(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{
		"time_up":                   800,
		"time_down":                 200,
		"scheduled_time_down":       200,
	}}
	// window 1000, scheduled-bad 200 -> available 800, good 800 -> 100%
	if got := SLAPercent(true, b, 0, 1000); got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestSLAPercentUnscheduledOutageLowersSLA(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{
		"time_up":   900,
		"time_down": 100,
	}}
	got := SLAPercent(true, b, 0, 1000)
	if got != 90 {
		t.Fatalf("got %v, want 90", got)
	}
}

func TestSLAPercentServiceBucketSet(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{
		"time_ok":       950,
		"time_critical": 50,
	}}
	got := SLAPercent(false, b, 0, 1000)
	if got != 95 {
		t.Fatalf("got %v, want 95", got)
	}
}

func TestSLAPercentZeroWindowReturns100(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{}}
	if got := SLAPercent(true, b, 500, 500); got != 100 {
		t.Fatalf("got %v, want 100", got)
	}
}

func TestSLAPercentFullyScheduledDowntimeReturns100(t *testing.T) {
	b := &Buckets{Totals: map[string]int64{
		"scheduled_time_down": 1000,
	}}
	if got := SLAPercent(true, b, 0, 1000); got != 100 {
		t.Fatalf("got %v, want 100 when available window is zero", got)
	}
}
