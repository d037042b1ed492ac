package report

import "monavail/internal/timeutil"

// Result is the public shape the call surface returns (spec.md §6):
// per-host and per-service bucket totals.
type Result struct {
	Hosts    map[string]*Buckets
	Services map[string]map[string]*Buckets // host -> service -> buckets

	mode       timeutil.BreakMode
	start, end int64
}

// NewResult returns an empty result container. mode/start/end are
// carried so buckets for entities discovered mid-walk (report "for
// everything") get their breakdown sub-buckets pre-created exactly
// like the initial skeleton's entities do.
func NewResult(mode timeutil.BreakMode, start, end int64) *Result {
	return &Result{
		Hosts:    make(map[string]*Buckets),
		Services: make(map[string]map[string]*Buckets),
		mode:     mode, start: start, end: end,
	}
}

// ServiceBuckets returns (creating if absent) the bucket accumulator
// for host/service, used when the engine first encounters an entity
// not named in the initial skeleton (e.g. "calculate for everything").
func (r *Result) ServiceBuckets(host, service string) *Buckets {
	byHost, ok := r.Services[host]
	if !ok {
		byHost = make(map[string]*Buckets)
		r.Services[host] = byHost
	}
	b, ok := byHost[service]
	if !ok {
		b, _ = NewBuckets(r.mode, r.start, r.end)
		byHost[service] = b
	}
	return b
}

// HostBuckets returns (creating if absent) the bucket accumulator for host.
func (r *Result) HostBuckets(host string) *Buckets {
	b, ok := r.Hosts[host]
	if !ok {
		b, _ = NewBuckets(r.mode, r.start, r.end)
		r.Hosts[host] = b
	}
	return b
}
