package availopts

import (
	"testing"

	"monavail/internal/timeutil"
)

func TestNewOptionsRequiresStartEnd(t *testing.T) {
	_, err := NewOptions().Normalize()
	if err == nil {
		t.Fatalf("expected ConfigError when start/end are missing")
	}
	if _, ok := err.(*ConfigError); !ok {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
}

func TestNewOptionsDefaults(t *testing.T) {
	opts, err := NewOptions().Start(1000).End(2000).Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if opts.Backtrack != 4 {
		t.Fatalf("backtrack default: got %d, want 4", opts.Backtrack)
	}
	if !opts.AssumeInitialStates || !opts.AssumeStateRetention || !opts.AssumeStatesDuringNotRunning {
		t.Fatalf("assume* defaults should be true, got %+v", opts)
	}
	if opts.IncludeSoftStates {
		t.Fatalf("includesoftstates default should be false")
	}
	if !opts.ShowScheduledDowntime {
		t.Fatalf("showscheduleddowntime default should be true")
	}
	if opts.InitialAssumedHostState != "unspecified" || opts.InitialAssumedServiceState != "unspecified" {
		t.Fatalf("initial assumed state defaults: got %q/%q", opts.InitialAssumedHostState, opts.InitialAssumedServiceState)
	}
	if opts.TimeFormat != "%s" {
		t.Fatalf("timeformat default: got %q", opts.TimeFormat)
	}
}

func TestNewOptionsRejectsNegativeBacktrack(t *testing.T) {
	_, err := NewOptions().Start(1000).End(2000).Backtrack(-1).Normalize()
	if err == nil {
		t.Fatalf("expected error for negative backtrack")
	}
}

func TestNewOptionsRejectsInvalidEnum(t *testing.T) {
	_, err := NewOptions().Start(1000).End(2000).InitialAssumedHostState("sideways").Normalize()
	if err == nil {
		t.Fatalf("expected error for invalid initialassumedhoststate")
	}
}

func TestNewOptionsRejectsEndBeforeStart(t *testing.T) {
	_, err := NewOptions().Start(2000).End(1000).Normalize()
	if err == nil {
		t.Fatalf("expected error for end < start")
	}
}

func TestNewOptionsCurrentStateRequiresInitialStates(t *testing.T) {
	_, err := NewOptions().Start(1000).End(2000).Hosts([]string{"h1"}).
		InitialAssumedHostState("current").Normalize()
	if err == nil {
		t.Fatalf("expected error when initial_states is missing for current state")
	}
}

func TestNewOptionsBreakdownEnum(t *testing.T) {
	opts, err := NewOptions().Start(1000).End(2000).Breakdown("days").Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if opts.Breakdown != timeutil.BreakDays {
		t.Fatalf("breakdown: got %v, want BreakDays", opts.Breakdown)
	}
}
