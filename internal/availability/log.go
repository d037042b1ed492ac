package availability

import "monavail/internal/eventlog"

type logKind int

const (
	logGlobal logKind = iota
	logHostKind
	logServiceKind
)

// logEntry is the engine-internal, unrendered record of something that
// happened — durations and timeformat are computed later, by the
// renderer, once every entry's end time is known (spec.md §4.G).
type logEntry struct {
	kind         logKind
	start        int64
	typ          string
	class        string
	pluginOutput string
	fullOnly     bool
}

func (e *Engine) recordable(kind logKind) bool {
	switch e.scope {
	case scopeDisabled:
		return false
	case scopeHostOnly:
		return kind != logServiceKind
	case scopeServiceOnly:
		return kind != logHostKind
	default:
		return false
	}
}

func (e *Engine) appendGlobalLog(start int64, typ, class string, fullOnly bool) {
	if !e.recordable(logGlobal) {
		return
	}
	e.entries = append(e.entries, logEntry{kind: logGlobal, start: start, typ: typ, class: class, fullOnly: fullOnly})
}

func (e *Engine) appendReportEndMarker(t int64) {
	e.appendGlobalLog(t, "REPORT END", "INDETERMINATE", true)
}

func hostStateWord(code int) string {
	switch code {
	case eventlog.HostUp:
		return "UP"
	case eventlog.HostDown:
		return "DOWN"
	case eventlog.HostUnreachable:
		return "UNREACHABLE"
	default:
		return "UNKNOWN"
	}
}

func serviceStateWord(code int) string {
	switch code {
	case eventlog.ServiceOK:
		return "OK"
	case eventlog.ServiceWarning:
		return "WARNING"
	case eventlog.ServiceCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (e *Engine) appendHostStateLog(rec *eventlog.Record) {
	if !e.recordable(logHostKind) {
		return
	}
	word := hostStateWord(rec.State)
	typ := "HOST " + word
	if rec.Hard {
		typ += " (HARD)"
	}
	e.entries = append(e.entries, logEntry{
		kind: logHostKind, start: rec.Time, typ: typ, class: word, pluginOutput: rec.PluginOutput,
	})
}

func (e *Engine) appendServiceStateLog(rec *eventlog.Record) {
	if !e.recordable(logServiceKind) {
		return
	}
	word := serviceStateWord(rec.State)
	typ := "SERVICE " + word
	if rec.Hard {
		typ += " (HARD)"
	}
	e.entries = append(e.entries, logEntry{
		kind: logServiceKind, start: rec.Time, typ: typ, class: word, pluginOutput: rec.PluginOutput,
	})
}
