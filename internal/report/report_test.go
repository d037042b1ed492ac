package report

import (
	"testing"

	"monavail/internal/timeutil"
)

func TestAddTimeCreatesBucketOnFirstUse(t *testing.T) {
	b, err := NewBuckets(timeutil.BreakNone, 0, 0)
	if err != nil {
		t.Fatalf("NewBuckets: %v", err)
	}
	if err := b.AddTime(timeutil.BreakNone, 100, 50, "time_ok", false, ""); err != nil {
		t.Fatalf("AddTime: %v", err)
	}
	if b.Totals["time_ok"] != 50 {
		t.Fatalf("time_ok: got %d, want 50", b.Totals["time_ok"])
	}
}

func TestAddTimeScheduledMirror(t *testing.T) {
	b, _ := NewBuckets(timeutil.BreakNone, 0, 0)
	if err := b.AddTime(timeutil.BreakNone, 100, 30, "time_ok", true, ""); err != nil {
		t.Fatalf("AddTime: %v", err)
	}
	if b.Totals["time_ok"] != 30 {
		t.Fatalf("time_ok: got %d", b.Totals["time_ok"])
	}
	if b.Totals["scheduled_time_ok"] != 30 {
		t.Fatalf("scheduled_time_ok: got %d", b.Totals["scheduled_time_ok"])
	}
}

func TestAddTimeScheduledInvariant(t *testing.T) {
	b, _ := NewBuckets(timeutil.BreakNone, 0, 0)
	b.AddTime(timeutil.BreakNone, 100, 50, "time_ok", false, "")
	b.AddTime(timeutil.BreakNone, 200, 20, "time_ok", true, "")
	if b.Totals["scheduled_time_ok"] > b.Totals["time_ok"] {
		t.Fatalf("invariant 2 violated: scheduled=%d > time=%d", b.Totals["scheduled_time_ok"], b.Totals["time_ok"])
	}
}

func TestAddTimeBreakdownMirrorsTotals(t *testing.T) {
	start := int64(1263417384)
	end := start + 2*86400
	b, err := NewBuckets(timeutil.BreakDays, start, end)
	if err != nil {
		t.Fatalf("NewBuckets: %v", err)
	}
	if len(b.Breakdown) == 0 {
		t.Fatalf("expected pre-created breakdown labels")
	}
	if err := b.AddTime(timeutil.BreakDays, start+10, 5, "time_ok", false, ""); err != nil {
		t.Fatalf("AddTime: %v", err)
	}
	label, _ := timeutil.BucketLabel(timeutil.BreakDays, start+10)
	if b.Breakdown[label]["time_ok"] != 5 {
		t.Fatalf("breakdown[%s][time_ok]: got %d, want 5", label, b.Breakdown[label]["time_ok"])
	}
}

func TestSumOnlyCountsTimeBuckets(t *testing.T) {
	b, _ := NewBuckets(timeutil.BreakNone, 0, 0)
	b.AddTime(timeutil.BreakNone, 100, 40, "time_ok", true, "")
	b.AddTime(timeutil.BreakNone, 200, 10, "time_critical", false, "")
	if got, want := b.Sum(), int64(50); got != want {
		t.Fatalf("Sum: got %d, want %d (scheduled_time_ok should not be double-counted)", got, want)
	}
}
