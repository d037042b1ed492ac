package availability

import "monavail/internal/eventlog"

// shouldDrop applies the filters that make an event invisible to the
// engine entirely — soft-state filtering, scheduled-downtime
// suppression, and entity-relevance — per spec.md §4.F and testable
// properties 4 and 5. A dropped event never advances last_time and
// never triggers boundary synthesis.
func (e *Engine) shouldDrop(rec *eventlog.Record) bool {
	if rec.HasState {
		if !e.opts.IncludeSoftStates && !rec.Hard {
			return true
		}
		if rec.ServiceDescription != "" {
			return !e.tracking.serviceRelevant(rec.HostName, rec.ServiceDescription)
		}
		return !e.tracking.hostRelevant(rec.HostName)
	}
	if rec.HasDowntimeStart {
		if !e.opts.ShowScheduledDowntime {
			return true
		}
		if rec.ServiceDescription != "" {
			return !e.tracking.serviceRelevant(rec.HostName, rec.ServiceDescription)
		}
		return !e.tracking.hostRelevant(rec.HostName)
	}
	return false
}

func (e *Engine) processEvent(rec *eventlog.Record) error {
	switch {
	case rec.HasProcStart:
		return e.processProcess(rec)
	case rec.Timeperiod != "":
		return e.processTimeperiod(rec)
	case rec.HasDowntimeStart && rec.ServiceDescription != "":
		return e.processDowntime(rec, false)
	case rec.HasDowntimeStart:
		return e.processDowntime(rec, true)
	case rec.HasState && rec.ServiceDescription != "":
		return e.processServiceState(rec)
	case rec.HasState:
		return e.processHostState(rec)
	default:
		e.opts.Logger.Debug("ignored event: " + rec.Type)
		return nil
	}
}

func (e *Engine) processHostState(rec *eventlog.Record) error {
	h, buckets := e.hostHistory(rec.HostName)
	newState := eventlog.Concrete(rec.State)
	if err := e.step(kindHost, h, buckets, newState, rec.Time, h.inDowntime); err != nil {
		return err
	}
	e.appendHostStateLog(rec)
	return nil
}

func (e *Engine) processServiceState(rec *eventlog.Record) error {
	hostHist, _ := e.hostHistory(rec.HostName)
	h, buckets := e.serviceHistory(rec.HostName, rec.ServiceDescription)
	newState := eventlog.Concrete(rec.State)
	scheduled := h.inDowntime || hostHist.inDowntime
	if err := e.step(kindService, h, buckets, newState, rec.Time, scheduled); err != nil {
		return err
	}
	e.appendServiceStateLog(rec)
	return nil
}

// processDowntime handles both HOST DOWNTIME ALERT and SERVICE
// DOWNTIME ALERT. A host downtime toggle also advances every service
// of that host with an advance-only (UseCurrent) event, so their
// scheduled time is credited at the moment the host's own downtime
// window opens or closes, per spec.md §4.F's "service inherits host
// downtime via OR" rule.
func (e *Engine) processDowntime(rec *eventlog.Record, isHost bool) error {
	if isHost {
		h, buckets := e.hostHistory(rec.HostName)
		if err := e.step(kindHost, h, buckets, eventlog.UseCurrent, rec.Time, h.inDowntime); err != nil {
			return err
		}
		for _, svc := range e.servicesByHost[rec.HostName] {
			svcHist := e.services[svcKey(rec.HostName, svc)]
			svcBuckets := e.result.ServiceBuckets(rec.HostName, svc)
			scheduled := svcHist.inDowntime || h.inDowntime
			if err := e.step(kindService, svcHist, svcBuckets, eventlog.UseCurrent, rec.Time, scheduled); err != nil {
				return err
			}
		}
		h.inDowntime = rec.DowntimeStart
		e.appendGlobalLog(rec.Time, downtimeLogType("HOST", rec.DowntimeStart), "INDETERMINATE", false)
		return nil
	}

	hostHist, _ := e.hostHistory(rec.HostName)
	h, buckets := e.serviceHistory(rec.HostName, rec.ServiceDescription)
	scheduled := h.inDowntime || hostHist.inDowntime
	if err := e.step(kindService, h, buckets, eventlog.UseCurrent, rec.Time, scheduled); err != nil {
		return err
	}
	h.inDowntime = rec.DowntimeStart
	e.appendGlobalLog(rec.Time, downtimeLogType("SERVICE", rec.DowntimeStart), "INDETERMINATE", false)
	return nil
}

func downtimeLogType(scope string, starting bool) string {
	if starting {
		return scope + " DOWNTIME START"
	}
	return scope + " DOWNTIME END"
}

// processProcess handles a PROCESS lifecycle line. The PROGRAM
// (RE)START / PROGRAM END log entry is always recorded; per-entity
// state synthesis only happens when assumestatesduringnotrunning is
// false, per spec.md §4.F.
func (e *Engine) processProcess(rec *eventlog.Record) error {
	if !e.opts.AssumeStatesDuringNotRunning {
		for host, h := range e.hosts {
			buckets := e.result.HostBuckets(host)
			if err := e.step(kindHost, h, buckets, processTargetState(h.lastKnownState, rec.ProcStart), rec.Time, h.inDowntime); err != nil {
				return err
			}
		}
		for host, services := range e.servicesByHost {
			hostHist := e.hosts[host]
			for _, svc := range services {
				h := e.services[svcKey(host, svc)]
				buckets := e.result.ServiceBuckets(host, svc)
				scheduled := h.inDowntime || hostHist.inDowntime
				if err := e.step(kindService, h, buckets, processTargetState(h.lastKnownState, rec.ProcStart), rec.Time, scheduled); err != nil {
					return err
				}
			}
		}
	}

	typ := "PROGRAM END"
	if rec.ProcStart == eventlog.ProcNormalStart || rec.ProcStart == eventlog.ProcRestart {
		typ = "PROGRAM (RE)START"
	}
	e.appendGlobalLog(rec.Time, typ, "INDETERMINATE", true)
	return nil
}

func processTargetState(lastKnown *int, ps eventlog.ProcStart) eventlog.State {
	switch ps {
	case eventlog.ProcNormalStart, eventlog.ProcRestart:
		if lastKnown != nil {
			return eventlog.Concrete(*lastKnown)
		}
		return eventlog.Unspecified
	default:
		return eventlog.NotRunning
	}
}

// processTimeperiod toggles in_timeperiod when the transition names
// the configured report timeperiod, re-synthesizing every tracked
// entity's state with its last_known_state so the next advance() call
// picks up the new in/out-of-timeperiod bucket immediately.
func (e *Engine) processTimeperiod(rec *eventlog.Record) error {
	if e.opts.RptTimeperiod == "" || rec.Timeperiod != e.opts.RptTimeperiod {
		return nil
	}
	in := rec.To != "0"
	e.inTimeperiod = &in

	for host, h := range e.hosts {
		buckets := e.result.HostBuckets(host)
		if err := e.step(kindHost, h, buckets, h.knownOrLast(), rec.Time, h.inDowntime); err != nil {
			return err
		}
	}
	for host, services := range e.servicesByHost {
		hostHist := e.hosts[host]
		for _, svc := range services {
			h := e.services[svcKey(host, svc)]
			buckets := e.result.ServiceBuckets(host, svc)
			scheduled := h.inDowntime || hostHist.inDowntime
			if err := e.step(kindService, h, buckets, h.knownOrLast(), rec.Time, scheduled); err != nil {
				return err
			}
		}
	}

	typ := "TIMEPERIOD STOP"
	if in {
		typ = "TIMEPERIOD START"
	}
	e.appendGlobalLog(rec.Time, typ, "INDETERMINATE", true)
	return nil
}
