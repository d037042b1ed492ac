// Package availopts canonicalizes and validates the configuration a
// calculate invocation runs with, enforcing the recognized option set
// and supplying defaults (spec.md §4.D).
package availopts

import (
	"fmt"

	"monavail/internal/timeutil"
)

// ConfigError reports an unknown option, an invalid enum value, or any
// other malformed configuration. It is fatal to a calculate call.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: option %q: %s", e.Option, e.Reason)
}

// ServicePair identifies a single tracked service.
type ServicePair struct {
	Host    string
	Service string
}

// InitialStates supplies the "current" initial-assumed-state mapping,
// used only when InitialAssumedHostState/ServiceState is "current".
type InitialStates struct {
	Hosts    map[string]string
	Services map[string]map[string]string
}

// Options is the normalized, validated configuration the availability
// engine consumes. Once Normalize returns one, it must be treated as
// immutable (spec.md §5).
type Options struct {
	Start, End int64

	Hosts    []string
	Services []ServicePair

	InitialStates InitialStates

	Backtrack int

	RptTimeperiod string

	AssumeInitialStates          bool
	AssumeStateRetention         bool
	AssumeStatesDuringNotRunning bool
	IncludeSoftStates            bool
	ShowScheduledDowntime         bool

	InitialAssumedHostState    string
	InitialAssumedServiceState string

	TimeFormat string
	Breakdown  timeutil.BreakMode

	Verbose bool
	Logger  Logger
}

// Logger is the verbose-logging collaborator injected at construction
// (spec.md §9's design note: never a process-wide logging facility).
type Logger interface {
	Debug(msg string)
}

type noopLogger struct{}

func (noopLogger) Debug(string) {}

var validHostStates = map[string]bool{
	"unspecified": true, "current": true, "up": true, "down": true, "unreachable": true,
}

var validServiceStates = map[string]bool{
	"unspecified": true, "current": true, "ok": true, "warning": true, "unknown": true, "critical": true,
}

// rawOptions is the shape normalize accepts: a struct of optional
// (pointer or nil-able) fields, filled through Builder, so callers (CLI
// flags, HTTP JSON bodies, YAML config) can all funnel through the same
// validation without each owning a copy of the enum rules.
type rawOptions struct {
	Start, End                   *int64
	Hosts                        []string
	Services                     []ServicePair
	InitialStates                *InitialStates
	Backtrack                    *int
	RptTimeperiod                *string
	AssumeInitialStates          *bool
	AssumeStateRetention         *bool
	AssumeStatesDuringNotRunning *bool
	IncludeSoftStates            *bool
	InitialAssumedHostState      *string
	InitialAssumedServiceState   *string
	ShowScheduledDowntime        *bool
	TimeFormat                   *string
	Breakdown                    *string
	Verbose                      *bool
	Logger                       Logger
}

// normalize canonicalizes a raw option set, enforcing enums and
// supplying defaults; unknown or invalid options fail with
// *ConfigError. start and end are required. Reached only through
// Builder.Normalize, since rawOptions is an internal accumulator.
func normalize(raw rawOptions) (*Options, error) {
	if raw.Start == nil || raw.End == nil {
		return nil, &ConfigError{Option: "start/end", Reason: "both start and end are required"}
	}
	if *raw.End < *raw.Start {
		return nil, &ConfigError{Option: "end", Reason: "end must be >= start"}
	}

	opts := &Options{
		Start:                        *raw.Start,
		End:                          *raw.End,
		Hosts:                        raw.Hosts,
		Services:                     raw.Services,
		Backtrack:                    4,
		AssumeInitialStates:          true,
		AssumeStateRetention:         true,
		AssumeStatesDuringNotRunning: true,
		IncludeSoftStates:            false,
		ShowScheduledDowntime:        true,
		InitialAssumedHostState:      "unspecified",
		InitialAssumedServiceState:   "unspecified",
		TimeFormat:                   "%s",
		Breakdown:                    timeutil.BreakNone,
		Logger:                       noopLogger{},
	}

	if raw.InitialStates != nil {
		opts.InitialStates = *raw.InitialStates
	}
	if raw.Backtrack != nil {
		if *raw.Backtrack < 0 {
			return nil, &ConfigError{Option: "backtrack", Reason: "must be >= 0"}
		}
		opts.Backtrack = *raw.Backtrack
	}
	if raw.RptTimeperiod != nil {
		opts.RptTimeperiod = *raw.RptTimeperiod
	}
	if raw.AssumeInitialStates != nil {
		opts.AssumeInitialStates = *raw.AssumeInitialStates
	}
	if raw.AssumeStateRetention != nil {
		opts.AssumeStateRetention = *raw.AssumeStateRetention
	}
	if raw.AssumeStatesDuringNotRunning != nil {
		opts.AssumeStatesDuringNotRunning = *raw.AssumeStatesDuringNotRunning
	}
	if raw.IncludeSoftStates != nil {
		opts.IncludeSoftStates = *raw.IncludeSoftStates
	}
	if raw.ShowScheduledDowntime != nil {
		opts.ShowScheduledDowntime = *raw.ShowScheduledDowntime
	}
	if raw.InitialAssumedHostState != nil {
		if !validHostStates[*raw.InitialAssumedHostState] {
			return nil, &ConfigError{Option: "initialassumedhoststate", Reason: "invalid enum value"}
		}
		opts.InitialAssumedHostState = *raw.InitialAssumedHostState
	}
	if raw.InitialAssumedServiceState != nil {
		if !validServiceStates[*raw.InitialAssumedServiceState] {
			return nil, &ConfigError{Option: "initialassumedservicestate", Reason: "invalid enum value"}
		}
		opts.InitialAssumedServiceState = *raw.InitialAssumedServiceState
	}
	if raw.TimeFormat != nil {
		opts.TimeFormat = *raw.TimeFormat
	}
	if raw.Breakdown != nil {
		mode, err := timeutil.ParseBreakMode(*raw.Breakdown)
		if err != nil {
			return nil, &ConfigError{Option: "breakdown", Reason: err.Error()}
		}
		opts.Breakdown = mode
	}
	if raw.Verbose != nil {
		opts.Verbose = *raw.Verbose
	}
	if raw.Logger != nil {
		opts.Logger = raw.Logger
	}

	if opts.InitialAssumedHostState == "current" && len(opts.InitialStates.Hosts) == 0 && len(opts.Hosts) > 0 {
		return nil, &ConfigError{Option: "initial_states", Reason: "required when initialassumedhoststate is current"}
	}
	if opts.InitialAssumedServiceState == "current" && len(opts.InitialStates.Services) == 0 && len(opts.Services) > 0 {
		return nil, &ConfigError{Option: "initial_states", Reason: "required when initialassumedservicestate is current"}
	}

	return opts, nil
}

// NewOptions is the convenience constructor most callers use; it
// returns a builder with one setter per rawOptions field, every
// optional field starting as nil so callers only set what they need. Exported so internal/web and cmd/monavail can each build
// Options from their own request shapes.
func NewOptions() *Builder {
	return &Builder{}
}

// Builder accumulates option overrides before calling Normalize.
type Builder struct {
	raw rawOptions
}

func (b *Builder) Start(v int64) *Builder            { b.raw.Start = &v; return b }
func (b *Builder) End(v int64) *Builder              { b.raw.End = &v; return b }
func (b *Builder) Hosts(v []string) *Builder         { b.raw.Hosts = v; return b }
func (b *Builder) Services(v []ServicePair) *Builder { b.raw.Services = v; return b }
func (b *Builder) InitialStates(v InitialStates) *Builder {
	b.raw.InitialStates = &v
	return b
}
func (b *Builder) Backtrack(v int) *Builder                    { b.raw.Backtrack = &v; return b }
func (b *Builder) RptTimeperiod(v string) *Builder              { b.raw.RptTimeperiod = &v; return b }
func (b *Builder) AssumeInitialStates(v bool) *Builder          { b.raw.AssumeInitialStates = &v; return b }
func (b *Builder) AssumeStateRetention(v bool) *Builder         { b.raw.AssumeStateRetention = &v; return b }
func (b *Builder) AssumeStatesDuringNotRunning(v bool) *Builder {
	b.raw.AssumeStatesDuringNotRunning = &v
	return b
}
func (b *Builder) IncludeSoftStates(v bool) *Builder     { b.raw.IncludeSoftStates = &v; return b }
func (b *Builder) ShowScheduledDowntime(v bool) *Builder { b.raw.ShowScheduledDowntime = &v; return b }
func (b *Builder) InitialAssumedHostState(v string) *Builder {
	b.raw.InitialAssumedHostState = &v
	return b
}
func (b *Builder) InitialAssumedServiceState(v string) *Builder {
	b.raw.InitialAssumedServiceState = &v
	return b
}
func (b *Builder) TimeFormat(v string) *Builder { b.raw.TimeFormat = &v; return b }
func (b *Builder) Breakdown(v string) *Builder  { b.raw.Breakdown = &v; return b }
func (b *Builder) Verbose(v bool) *Builder      { b.raw.Verbose = &v; return b }
func (b *Builder) WithLogger(v Logger) *Builder { b.raw.Logger = v; return b }

// Normalize validates the accumulated overrides and returns Options.
func (b *Builder) Normalize() (*Options, error) {
	return normalize(b.raw)
}
