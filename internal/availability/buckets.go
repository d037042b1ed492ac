package availability

import "monavail/internal/eventlog"

const bucketIndeterminateNoData = "time_indeterminate_nodata"
const bucketIndeterminateNotRunning = "time_indeterminate_notrunning"
const bucketIndeterminateOutsideTimeperiod = "time_indeterminate_outside_timeperiod"

// stateBucket resolves the bucket an elapsed interval should credit
// given the entity kind and the state that held during the interval,
// along with whether a scheduled counterpart exists and, if so, its
// name override (empty means "scheduled_"+bucket), per spec.md §4.F's
// "advance the clock" bucket-selection rules.
func stateBucket(kind entityKind, s eventlog.State) (bucket string, hasScheduled bool, scheduledOverride string) {
	if s.IsUnspecified() {
		return bucketIndeterminateNoData, true, "scheduled_time_indeterminate"
	}
	if s.IsNotRunning() {
		return bucketIndeterminateNotRunning, false, ""
	}

	code, _ := s.IsConcrete()
	if kind == kindHost {
		switch code {
		case eventlog.HostUp:
			return "time_up", true, ""
		case eventlog.HostDown:
			return "time_down", true, ""
		case eventlog.HostUnreachable:
			return "time_unreachable", true, ""
		default:
			return "time_unknown", true, ""
		}
	}

	switch code {
	case eventlog.ServiceOK:
		return "time_ok", true, ""
	case eventlog.ServiceWarning:
		return "time_warning", true, ""
	case eventlog.ServiceCritical:
		return "time_critical", true, ""
	default:
		return "time_unknown", true, ""
	}
}
