package availability

import (
	"sort"

	"monavail/internal/availopts"
	"monavail/internal/eventlog"
	"monavail/internal/report"
	"monavail/internal/timeutil"
)

// Engine is the availability state machine: constructed once per
// calculate call from a normalized Options, it consumes a sorted event
// stream and produces per-entity bucket totals plus an optional log
// (spec.md §4.F, §4.G).
type Engine struct {
	opts     *availopts.Options
	tracking *trackingSet
	scope    buildScope

	hosts            map[string]*history
	services         map[string]*history // key: svcKey(host,service)
	servicesByHost   map[string][]string // host -> service names seen so far

	result *report.Result

	inTimeperiod *bool

	entries  []logEntry
	rendered []RenderedEntry
}

// New builds an Engine and pre-creates history/result buckets for
// every explicitly tracked host and service (spec.md §4.D's Hosts and
// Services fields). Entities discovered later, under "report on
// everything", are created lazily as they're first observed.
func New(opts *availopts.Options) *Engine {
	e := &Engine{
		opts:           opts,
		tracking:       newTrackingSet(opts),
		scope:          determineScope(opts),
		hosts:          make(map[string]*history),
		services:       make(map[string]*history),
		servicesByHost: make(map[string][]string),
		result:         report.NewResult(opts.Breakdown, opts.Start, opts.End),
	}

	for _, h := range opts.Hosts {
		e.hostHistory(h)
	}
	for _, sp := range opts.Services {
		e.serviceHistory(sp.Host, sp.Service)
	}

	return e
}

func (e *Engine) resolveInitialHostState(host string) eventlog.State {
	if !e.opts.AssumeInitialStates {
		return eventlog.Unspecified
	}
	switch e.opts.InitialAssumedHostState {
	case "up":
		return eventlog.Concrete(eventlog.HostUp)
	case "down":
		return eventlog.Concrete(eventlog.HostDown)
	case "unreachable":
		return eventlog.Concrete(eventlog.HostUnreachable)
	case "current":
		word, ok := e.opts.InitialStates.Hosts[host]
		if !ok {
			return eventlog.Unspecified
		}
		code, ok := eventlog.MapHostStateWord(word)
		if !ok {
			return eventlog.Unspecified
		}
		return eventlog.Concrete(code)
	default:
		return eventlog.Unspecified
	}
}

func (e *Engine) resolveInitialServiceState(host, service string) eventlog.State {
	if !e.opts.AssumeInitialStates {
		return eventlog.Unspecified
	}
	switch e.opts.InitialAssumedServiceState {
	case "ok":
		return eventlog.Concrete(eventlog.ServiceOK)
	case "warning":
		return eventlog.Concrete(eventlog.ServiceWarning)
	case "critical":
		return eventlog.Concrete(eventlog.ServiceCritical)
	case "unknown":
		return eventlog.Concrete(eventlog.ServiceUnknown)
	case "current":
		byHost, ok := e.opts.InitialStates.Services[host]
		if !ok {
			return eventlog.Unspecified
		}
		word, ok := byHost[service]
		if !ok {
			return eventlog.Unspecified
		}
		code, ok := eventlog.MapServiceStateWord(word)
		if !ok {
			return eventlog.Unspecified
		}
		return eventlog.Concrete(code)
	default:
		return eventlog.Unspecified
	}
}

// hostHistory returns (lazily creating) the per-host engine state and
// its result bucket accumulator. A host created lazily mid-walk is
// seeded with its initial assumed state (resolveInitialHostState; the
// Unspecified pseudo-state by default) and a lastStateTime of Start:
// its whole pre-observation span is credited, in one shot, to that
// state's bucket (time_indeterminate_nodata for Unspecified) on first
// use.
func (e *Engine) hostHistory(host string) (*history, *report.Buckets) {
	h, ok := e.hosts[host]
	if !ok {
		h = newHistory(e.resolveInitialHostState(host))
		h.lastStateTime = e.opts.Start
		e.hosts[host] = h
	}
	return h, e.result.HostBuckets(host)
}

func (e *Engine) serviceHistory(host, service string) (*history, *report.Buckets) {
	key := svcKey(host, service)
	h, ok := e.services[key]
	if !ok {
		h = newHistory(e.resolveInitialServiceState(host, service))
		h.lastStateTime = e.opts.Start
		e.services[key] = h
		e.servicesByHost[host] = append(e.servicesByHost[host], service)
	}
	return h, e.result.ServiceBuckets(host, service)
}

// Calculate walks the sorted event stream, synthesizing boundary
// events per spec.md §4.F, and returns the accumulated per-entity
// result.
func (e *Engine) Calculate(records []*eventlog.Record) (*report.Result, error) {
	sort.SliceStable(records, func(i, j int) bool { return records[i].Time < records[j].Time })

	var breakpoints []int64
	if e.opts.Breakdown != timeutil.BreakNone {
		breakpoints = timeutil.LocalMidnightsBetween(e.opts.Start, e.opts.End)
	}
	bpIdx := 0

	var lastTime int64 = minInt64

	for _, rec := range records {
		if e.shouldDrop(rec) {
			continue
		}
		t := rec.Time

		if lastTime < e.opts.Start && e.opts.Start < t {
			if err := e.synthesizeAllAt(e.opts.Start); err != nil {
				return nil, err
			}
			lastTime = e.opts.Start
		}

		for bpIdx < len(breakpoints) && lastTime < breakpoints[bpIdx] && breakpoints[bpIdx] < t {
			if err := e.synthesizeAllAt(breakpoints[bpIdx]); err != nil {
				return nil, err
			}
			lastTime = breakpoints[bpIdx]
			bpIdx++
		}

		if t >= e.opts.End && e.opts.End > lastTime {
			if err := e.synthesizeAllAt(e.opts.End); err != nil {
				return nil, err
			}
			e.appendReportEndMarker(e.opts.End)
			lastTime = e.opts.End
		}

		if err := e.processEvent(rec); err != nil {
			return nil, err
		}
		lastTime = t
	}

	if lastTime < e.opts.Start {
		if err := e.synthesizeAllAt(e.opts.Start); err != nil {
			return nil, err
		}
		lastTime = e.opts.Start
	}
	if lastTime < e.opts.End {
		if err := e.synthesizeAllAt(e.opts.End); err != nil {
			return nil, err
		}
		e.appendReportEndMarker(e.opts.End)
	}

	e.renderLog()

	return e.result, nil
}

const minInt64 = -1 << 63

// synthesizeAllAt processes a fake state event at t, using
// last_known_state (fallback last_state), for every entity already
// known to the engine — spec.md §4.F steps 3a-3c.
func (e *Engine) synthesizeAllAt(t int64) error {
	for host, h := range e.hosts {
		buckets := e.result.HostBuckets(host)
		if err := e.step(kindHost, h, buckets, h.knownOrLast(), t, h.inDowntime); err != nil {
			return err
		}
	}
	for host, services := range e.servicesByHost {
		hostHist, _ := e.hostHistory(host)
		for _, svc := range services {
			h := e.services[svcKey(host, svc)]
			buckets := e.result.ServiceBuckets(host, svc)
			scheduled := h.inDowntime || hostHist.inDowntime
			if err := e.step(kindService, h, buckets, h.knownOrLast(), t, scheduled); err != nil {
				return err
			}
		}
	}
	return nil
}

// step advances the clock for h up to t crediting the bucket for its
// current (pre-transition) state, then transitions to newState —
// unless newState is the UseCurrent pseudo-state, in which case the
// advance happens but last_state is left untouched (used for downtime
// events, which carry no state information of their own).
func (e *Engine) step(kind entityKind, h *history, buckets *report.Buckets, newState eventlog.State, t int64, scheduledActive bool) error {
	if err := e.advance(kind, h, buckets, h.lastState, scheduledActive, t); err != nil {
		return err
	}
	if newState.IsUseCurrent() {
		h.lastStateTime = t
		return nil
	}
	h.setState(newState, t)
	return nil
}

func (e *Engine) advance(kind entityKind, h *history, buckets *report.Buckets, basis eventlog.State, scheduledActive bool, t int64) error {
	if t <= e.opts.Start || t > e.opts.End {
		return nil
	}
	diff := t - h.lastStateTime
	if diff <= 0 {
		return nil
	}

	if e.inTimeperiod != nil && !*e.inTimeperiod {
		return buckets.AddTime(e.opts.Breakdown, t, diff, bucketIndeterminateOutsideTimeperiod, false, "")
	}
	if basis.IsNotRunning() {
		return buckets.AddTime(e.opts.Breakdown, t, diff, bucketIndeterminateNotRunning, false, "")
	}

	bucket, hasScheduled, override := stateBucket(kind, basis)
	active := scheduledActive && hasScheduled
	return buckets.AddTime(e.opts.Breakdown, t, diff, bucket, active, override)
}
