package web

import (
	"monavail/internal/availability"
	"monavail/internal/availopts"
	"monavail/internal/report"
)

// ServicePairRequest mirrors availopts.ServicePair over JSON.
type ServicePairRequest struct {
	Host    string `json:"host"`
	Service string `json:"service"`
}

// LogSourceRequest selects how the engine should read its events.
type LogSourceRequest struct {
	Kind  string `json:"kind"` // "string", "file", "dir"
	Value string `json:"value"`
}

// ReportRequest shapes a POST /api/v1/reports body (SPEC_FULL.md §6).
type ReportRequest struct {
	Hosts    []string             `json:"hosts"`
	Services []ServicePairRequest `json:"services"`

	Start int64 `json:"start"`
	End   int64 `json:"end"`

	LogSource LogSourceRequest `json:"log_source"`

	Backtrack                    *int    `json:"backtrack,omitempty"`
	AssumeInitialStates          *bool   `json:"assume_initial_states,omitempty"`
	AssumeStateRetention         *bool   `json:"assume_state_retention,omitempty"`
	AssumeStatesDuringNotRunning *bool   `json:"assume_states_during_notrunning,omitempty"`
	IncludeSoftStates            *bool   `json:"include_soft_states,omitempty"`
	ShowScheduledDowntime        *bool   `json:"show_scheduled_downtime,omitempty"`
	InitialAssumedHostState      string  `json:"initial_assumed_host_state,omitempty"`
	InitialAssumedServiceState   string  `json:"initial_assumed_service_state,omitempty"`
	TimeFormat                   string  `json:"timeformat,omitempty"`
	Breakdown                    string  `json:"breakdown,omitempty"`
	IncludeLog                   bool    `json:"include_log"`
}

func (r *ReportRequest) toServicePairs() []availopts.ServicePair {
	pairs := make([]availopts.ServicePair, 0, len(r.Services))
	for _, s := range r.Services {
		pairs = append(pairs, availopts.ServicePair{Host: s.Host, Service: s.Service})
	}
	return pairs
}

// runStatus is the lifecycle of one report run kept in the result cache.
type runStatus string

const (
	statusRunning   runStatus = "running"
	statusCompleted runStatus = "completed"
	statusFailed    runStatus = "failed"
)

type reportRun struct {
	ID     string
	Status runStatus
	Err    string

	Result        *report.Result
	CondensedLog  []availability.RenderedEntry
	FullLog       []availability.RenderedEntry
}
