package eventlog

import "strings"

// hostStateWords maps the textual state tokens a HOST ALERT / CURRENT
// HOST STATE / INITIAL HOST STATE line carries to the numeric host
// state space. Unmapped words cause the event to be dropped.
var hostStateWords = map[string]int{
	"UP":       HostUp,
	"OK":       HostUp,
	"RECOVERY": HostUp,
	"PENDING":  HostUp,
	"DOWN":     HostDown,
	"UNREACHABLE": HostUnreachable,
	"(unknown)":   ServiceUnknown,
}

// serviceStateWords is the service-side equivalent.
var serviceStateWords = map[string]int{
	"OK":          ServiceOK,
	"RECOVERY":    ServiceOK,
	"PENDING":     ServiceOK,
	"WARNING":     ServiceWarning,
	"CRITICAL":    ServiceCritical,
	"UNKNOWN":     ServiceUnknown,
	"(unknown)":   ServiceUnknown,
}

// hostScopedCommands is the fixed set of EXTERNAL COMMAND names that
// operate on a single host: the first field of the remainder is the
// host name.
var hostScopedCommands = map[string]bool{
	"ACKNOWLEDGE_HOST_PROBLEM":                        true,
	"REMOVE_HOST_ACKNOWLEDGEMENT":                     true,
	"SCHEDULE_HOST_DOWNTIME":                          true,
	"SCHEDULE_AND_PROPAGATE_HOST_DOWNTIME":            true,
	"SCHEDULE_AND_PROPAGATE_TRIGGERED_HOST_DOWNTIME":  true,
	"SCHEDULE_HOST_SVC_DOWNTIME":                      true,
	"SCHEDULE_FORCED_HOST_SVC_CHECKS":                 true,
	"SCHEDULE_HOST_SVC_CHECKS":                        true,
	"SCHEDULE_HOST_CHECK":                             true,
	"SCHEDULE_FORCED_HOST_CHECK":                       true,
	"ENABLE_HOST_CHECK":                               true,
	"DISABLE_HOST_CHECK":                              true,
	"ENABLE_HOST_NOTIFICATIONS":                       true,
	"DISABLE_HOST_NOTIFICATIONS":                      true,
	"ENABLE_HOST_SVC_NOTIFICATIONS":                   true,
	"DISABLE_HOST_SVC_NOTIFICATIONS":                  true,
	"ENABLE_HOST_SVC_CHECKS":                          true,
	"DISABLE_HOST_SVC_CHECKS":                         true,
	"SEND_CUSTOM_HOST_NOTIFICATION":                   true,
	"START_OBSESSING_OVER_HOST":                       true,
	"STOP_OBSESSING_OVER_HOST":                        true,
	"PROCESS_HOST_CHECK_RESULT":                       true,
	"DEL_HOST_DOWNTIME":                               true,
	"ENABLE_HOST_FLAP_DETECTION":                       true,
	"DISABLE_HOST_FLAP_DETECTION":                      true,
}

// serviceScopedCommands operate on a specific (host, service) pair:
// the first two fields of the remainder are host and service.
var serviceScopedCommands = map[string]bool{
	"ACKNOWLEDGE_SVC_PROBLEM":           true,
	"REMOVE_SVC_ACKNOWLEDGEMENT":        true,
	"SCHEDULE_SVC_DOWNTIME":             true,
	"SCHEDULE_SVC_CHECK":                true,
	"SCHEDULE_FORCED_SVC_CHECK":         true,
	"ENABLE_SVC_CHECK":                  true,
	"DISABLE_SVC_CHECK":                 true,
	"ENABLE_SVC_NOTIFICATIONS":          true,
	"DISABLE_SVC_NOTIFICATIONS":         true,
	"SEND_CUSTOM_SVC_NOTIFICATION":      true,
	"START_OBSESSING_OVER_SVC":          true,
	"STOP_OBSESSING_OVER_SVC":           true,
	"PROCESS_SERVICE_CHECK_RESULT":      true,
	"DEL_SVC_DOWNTIME":                  true,
	"ENABLE_SVC_FLAP_DETECTION":         true,
	"DISABLE_SVC_FLAP_DETECTION":        true,
}

// ExtractLine parses one textual log line of the form
// "[SSSSSSSSSS] TYPE: PAYLOAD" or "[SSSSSSSSSS] free text", returning
// nil when the line is malformed, when free text is not a process
// start/stop message, or when a known type's payload does not parse; a
// line with an unrecognized TYPE yields a Record carrying only
// its Type and PluginOutput, which the engine logs and ignores —
// extraction is best-effort by design; malformed lines are silently
// skipped, never an error (spec.md §7, ParseError never surfaces).
func ExtractLine(raw string) *Record {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	if len(raw) < 13 || raw[11] != ']' {
		return nil
	}

	tsField := raw[1:11]
	t, ok := parseDecimalSeconds(tsField)
	if !ok {
		return nil
	}

	rest := raw[13:] // skip "] "

	idx := strings.Index(rest, ": ")
	if idx < 0 {
		return extractProcessLifecycle(t, rest)
	}

	typ := rest[:idx]
	payload := rest[idx+2:]
	return dispatchTyped(t, typ, payload)
}

func parseDecimalSeconds(s string) (int64, bool) {
	if len(s) != 10 {
		return 0, false
	}
	var v int64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + int64(c-'0')
	}
	return v, true
}

func extractProcessLifecycle(t int64, text string) *Record {
	var ps ProcStart
	switch {
	case strings.Contains(text, " starting..."):
		ps = ProcNormalStart
	case strings.Contains(text, " restarting..."):
		ps = ProcRestart
	case strings.Contains(text, "shutting down..."):
		ps = ProcNormalStop
	case strings.Contains(text, "Bailing out"):
		ps = ProcErrorStop
	default:
		return nil
	}
	return &Record{Time: t, Type: "PROCESS", ProcStart: ps, HasProcStart: true}
}

func dispatchTyped(t int64, typ, payload string) *Record {
	switch typ {
	case "SERVICE ALERT", "CURRENT SERVICE STATE", "INITIAL SERVICE STATE":
		return extractServiceState(t, typ, payload)
	case "HOST ALERT", "CURRENT HOST STATE", "INITIAL HOST STATE":
		return extractHostState(t, typ, payload)
	case "HOST DOWNTIME ALERT":
		return extractHostDowntime(t, payload)
	case "SERVICE DOWNTIME ALERT":
		return extractServiceDowntime(t, payload)
	case "HOST NOTIFICATION":
		return extractHostNotification(t, payload)
	case "SERVICE NOTIFICATION":
		return extractServiceNotification(t, payload)
	case "EXTERNAL COMMAND":
		return extractExternalCommand(t, payload)
	default:
		if strings.HasPrefix(typ, "TIMEPERIOD TRANSITION") {
			return extractTimeperiodTransition(t, payload)
		}
		return &Record{Time: t, Type: typ, PluginOutput: payload}
	}
}

func splitN(s string, sep string, n int) []string {
	parts := strings.Split(s, sep)
	if len(parts) > n {
		// Rejoin the overflow into the last recognized field so that a
		// plugin_output containing the separator isn't truncated.
		head := parts[:n-1]
		tail := strings.Join(parts[n-1:], sep)
		return append(append([]string{}, head...), tail)
	}
	return parts
}

func extractServiceState(t int64, typ, payload string) *Record {
	parts := splitN(payload, ";", 6)
	if len(parts) < 4 {
		return nil
	}
	state, ok := MapServiceStateWord(parts[2])
	if !ok {
		return nil
	}
	r := &Record{
		Time:               t,
		Type:               typ,
		HostName:           parts[0],
		ServiceDescription: parts[1],
		State:              state,
		HasState:           true,
		Hard:               parts[3] == "HARD",
	}
	if len(parts) >= 6 {
		r.PluginOutput = parts[5]
	}
	return r
}

func extractHostState(t int64, typ, payload string) *Record {
	parts := splitN(payload, ";", 5)
	if len(parts) < 3 {
		return nil
	}
	state, ok := MapHostStateWord(parts[1])
	if !ok {
		return nil
	}
	r := &Record{
		Time:     t,
		Type:     typ,
		HostName: parts[0],
		State:    state,
		HasState: true,
		Hard:     parts[2] == "HARD",
	}
	if len(parts) >= 5 {
		r.PluginOutput = parts[4]
	}
	return r
}

// MapServiceStateWord maps a service-side textual state word to the
// numeric service state space. Exported so the engine can resolve
// "initial_states" configuration words using the same table the
// extractor uses for SERVICE ALERT payloads.
func MapServiceStateWord(word string) (int, bool) {
	v, ok := serviceStateWords[word]
	return v, ok
}

// MapHostStateWord is the host-side equivalent of MapServiceStateWord.
func MapHostStateWord(word string) (int, bool) {
	v, ok := hostStateWords[word]
	return v, ok
}

func extractHostDowntime(t int64, payload string) *Record {
	parts := splitN(payload, ";", 3)
	if len(parts) < 2 {
		return nil
	}
	return &Record{
		Time:             t,
		Type:             "HOST DOWNTIME ALERT",
		HostName:         parts[0],
		DowntimeStart:    parts[1] == "STARTED",
		HasDowntimeStart: true,
	}
}

func extractServiceDowntime(t int64, payload string) *Record {
	parts := splitN(payload, ";", 4)
	if len(parts) < 3 {
		return nil
	}
	return &Record{
		Time:               t,
		Type:               "SERVICE DOWNTIME ALERT",
		HostName:           parts[0],
		ServiceDescription: parts[1],
		DowntimeStart:      parts[2] == "STARTED",
		HasDowntimeStart:   true,
	}
}

func extractTimeperiodTransition(t int64, payload string) *Record {
	payload = strings.TrimPrefix(payload, "TIMEPERIOD TRANSITION: ")
	parts := splitN(payload, ";", 3)
	if len(parts) < 3 {
		return nil
	}
	return &Record{
		Time:       t,
		Type:       "TIMEPERIOD TRANSITION",
		Timeperiod: parts[0],
		From:       parts[1],
		To:         parts[2],
	}
}

func extractHostNotification(t int64, payload string) *Record {
	parts := splitN(payload, ";", 5)
	if len(parts) < 2 {
		return nil
	}
	r := &Record{
		Time:        t,
		Type:        "HOST NOTIFICATION",
		ContactName: parts[0],
		HostName:    parts[1],
	}
	if len(parts) >= 5 {
		r.PluginOutput = parts[4]
	}
	return r
}

func extractServiceNotification(t int64, payload string) *Record {
	parts := splitN(payload, ";", 6)
	if len(parts) < 3 {
		return nil
	}
	r := &Record{
		Time:               t,
		Type:               "SERVICE NOTIFICATION",
		ContactName:        parts[0],
		HostName:           parts[1],
		ServiceDescription: parts[2],
	}
	if len(parts) >= 6 {
		r.PluginOutput = parts[5]
	}
	return r
}

func extractExternalCommand(t int64, payload string) *Record {
	idx := strings.Index(payload, ";")
	var name, remainder string
	if idx < 0 {
		name = payload
	} else {
		name = payload[:idx]
		remainder = payload[idx+1:]
	}

	r := &Record{Time: t, Type: "EXTERNAL COMMAND", ExternalCommandName: name}

	switch {
	case serviceScopedCommands[name]:
		fields := strings.SplitN(remainder, ";", 3)
		if len(fields) >= 1 {
			r.HostName = fields[0]
		}
		if len(fields) >= 2 {
			r.ServiceDescription = fields[1]
		}
	case hostScopedCommands[name]:
		fields := strings.SplitN(remainder, ";", 2)
		if len(fields) >= 1 {
			r.HostName = fields[0]
		}
	}

	return r
}
