package availability

import (
	"fmt"
	"sort"

	"monavail/internal/timeutil"
)

// RenderedEntry is one line of the public condensed/full log (spec.md
// §4.G step 6).
type RenderedEntry struct {
	Start, End   string
	Duration     string
	Type         string
	Class        string
	PluginOutput string
	FullOnly     bool
}

// renderLog finishes post-processing entries recorded during the walk
// into e.rendered, per spec.md §4.G. Entries logged for events before
// the report start (the "pre-report boundary markers") are already
// present in e.entries from the normal per-event append calls, so no
// separate merge step is needed here.
func (e *Engine) renderLog() {
	if e.scope == scopeDisabled {
		return
	}

	sorted := make([]logEntry, len(e.entries))
	copy(sorted, e.entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	if assumed := e.assumedInitialEntry(sorted); assumed != nil {
		sorted = append([]logEntry{*assumed}, sorted...)
	}

	e.rendered = make([]RenderedEntry, 0, len(sorted))
	for i, entry := range sorted {
		end := e.opts.End
		suffix := ""
		if i+1 < len(sorted) {
			end = sorted[i+1].start
		} else if entry.start >= e.opts.End {
			suffix = "+"
		}

		startFmt, _ := timeutil.StrftimeLocal(e.opts.TimeFormat, entry.start)
		endFmt, _ := timeutil.StrftimeLocal(e.opts.TimeFormat, end)
		duration := timeutil.FormatDuration(end-entry.start) + suffix

		e.rendered = append(e.rendered, RenderedEntry{
			Start:        startFmt,
			End:          endFmt,
			Duration:     duration,
			Type:         entry.typ,
			Class:        entry.class,
			PluginOutput: entry.pluginOutput,
			FullOnly:     entry.fullOnly,
		})
	}
}

// assumedInitialEntry builds the faked "First ... State Assumed" entry
// prepended when the initial-assumed state is fixed (not "current")
// and exactly one entity is in scope.
func (e *Engine) assumedInitialEntry(sorted []logEntry) *logEntry {
	var kind, word string
	switch {
	case e.scope == scopeHostOnly && e.opts.AssumeInitialStates && e.opts.InitialAssumedHostState != "current":
		kind = "Host"
		word = e.opts.InitialAssumedHostState
	case e.scope == scopeServiceOnly && e.opts.AssumeInitialStates && e.opts.InitialAssumedServiceState != "current":
		kind = "Service"
		word = e.opts.InitialAssumedServiceState
	default:
		return nil
	}

	start := e.opts.Start
	if len(sorted) > 0 && sorted[0].start <= start {
		start = sorted[0].start - 1
	}

	return &logEntry{
		kind:  logGlobal,
		start: start,
		typ:   fmt.Sprintf("First %s State Assumed", kind),
		class: word,
	}
}

// CondensedLog returns the rendered log with full_only entries
// excluded, or an empty slice when the build-log scope is disabled
// (spec.md §6's condensed_log()).
func (e *Engine) CondensedLog() []RenderedEntry {
	var out []RenderedEntry
	for _, r := range e.rendered {
		if !r.FullOnly {
			out = append(out, r)
		}
	}
	return out
}

// FullLog returns every rendered entry, including full_only markers
// (spec.md §6's full_log()).
func (e *Engine) FullLog() []RenderedEntry {
	return e.rendered
}
