package availability

import (
	"strings"
	"testing"

	"monavail/internal/availopts"
	"monavail/internal/eventlog"
)

func TestCondensedLogExcludesFullOnlyEntries(t *testing.T) {
	const host = "h1"
	const svc = "s1"
	start := int64(0)
	end := int64(1000)

	log := "[0000000001] Nagios 3.2.0 starting... (PID=1)\n" +
		"[0000000500] SERVICE ALERT: h1;s1;OK;HARD;1;ok\n"
	records := eventlog.IngestString(log)

	opts := mustOptions(t, availopts.NewOptions().
		Start(start).End(end).
		Services([]availopts.ServicePair{{Host: host, Service: svc}}))

	e := New(opts)
	if _, err := e.Calculate(records); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	full := e.FullLog()
	condensed := e.CondensedLog()
	if len(condensed) >= len(full) {
		t.Fatalf("condensed log should exclude full_only entries: full=%d condensed=%d", len(full), len(condensed))
	}
	for _, entry := range condensed {
		if entry.FullOnly {
			t.Fatalf("condensed log leaked a full_only entry: %+v", entry)
		}
	}

	var sawProgramStart bool
	for _, entry := range full {
		if strings.Contains(entry.Type, "PROGRAM") {
			sawProgramStart = true
		}
	}
	if !sawProgramStart {
		t.Fatalf("full log missing PROGRAM (RE)START entry")
	}
}

func TestFullLogFlagsEntryPastReportEnd(t *testing.T) {
	const host = "h1"
	const svc = "s1"
	start := int64(0)
	end := int64(1000)

	log := "[0000000500] SERVICE ALERT: h1;s1;CRITICAL;HARD;1;critical\n" +
		"[0000001500] SERVICE ALERT: h1;s1;OK;HARD;1;ok\n"
	records := eventlog.IngestString(log)

	opts := mustOptions(t, availopts.NewOptions().
		Start(start).End(end).
		Services([]availopts.ServicePair{{Host: host, Service: svc}}))

	e := New(opts)
	if _, err := e.Calculate(records); err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	full := e.FullLog()
	last := full[len(full)-1]
	if !strings.HasSuffix(last.Duration, "+") {
		t.Fatalf("expected trailing entry past report end to be suffixed with +, got %+v", last)
	}
}

func TestLogDisabledWhenScopeCoversMultipleEntities(t *testing.T) {
	start := int64(0)
	end := int64(1000)

	log := "[0000000500] HOST ALERT: h1;DOWN;HARD;1;down\n"
	records := eventlog.IngestString(log)

	opts := mustOptions(t, availopts.NewOptions().
		Start(start).End(end).
		Hosts([]string{"h1", "h2"}))

	e := New(opts)
	if _, err := e.Calculate(records); err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if len(e.FullLog()) != 0 {
		t.Fatalf("expected disabled build_log scope to produce no entries, got %d", len(e.FullLog()))
	}
}
