package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"monavail/internal/availability"
	"monavail/internal/availopts"
	"monavail/internal/catalog"
	"monavail/internal/eventlog"
	"monavail/internal/metrics"
	"monavail/internal/notify"
	"monavail/internal/report"
)

// bindStrictJSON decodes a request body rejecting unknown fields, so
// that a caller-supplied option typo fails loudly instead of being
// silently dropped. Every decode failure is a ConfigError: malformed
// JSON and unrecognized option names are both the caller's fault.
func bindStrictJSON(c *gin.Context, dst any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &availopts.ConfigError{Option: "body", Reason: err.Error()}
	}
	return nil
}

// POST /api/v1/reports launches a calculation and returns its run ID
// immediately; the caller polls GET .../log or follows the websocket
// at /ws/reports/:id for completion.
func (s *Server) createReport(c *gin.Context) {
	var req ReportRequest
	if err := bindStrictJSON(c, &req); err != nil {
		s.writeCalcError(c, err)
		return
	}

	opts, err := s.buildOptions(&req)
	if err != nil {
		s.writeCalcError(c, err)
		return
	}

	run := &reportRun{ID: uuid.New().String(), Status: statusRunning}
	s.cache.put(run)

	go func() {
		s.sem <- struct{}{}
		defer func() { <-s.sem }()
		s.runCalculation(run, opts, &req)
	}()

	c.JSON(http.StatusAccepted, gin.H{"id": run.ID, "status": run.Status})
}

func (s *Server) runCalculation(run *reportRun, opts *availopts.Options, req *ReportRequest) {
	metrics.ActiveReports.Inc()
	defer metrics.ActiveReports.Dec()
	start := time.Now()
	s.broadcast(run.ID, WSMessage{Type: "started", ReportID: run.ID})

	records, err := s.ingestFromSource(&req.LogSource)
	if err != nil {
		s.metrics.RecordCalculation("report", time.Since(start), err)
		run.Status = statusFailed
		run.Err = err.Error()
		s.cache.put(run)
		s.broadcast(run.ID, WSMessage{Type: "failed", ReportID: run.ID, Error: err.Error()})
		return
	}

	engine := availability.New(opts)
	result, err := engine.Calculate(records)
	s.metrics.RecordCalculation("report", time.Since(start), err)
	if err != nil {
		run.Status = statusFailed
		run.Err = err.Error()
		s.cache.put(run)
		s.broadcast(run.ID, WSMessage{Type: "failed", ReportID: run.ID, Error: err.Error()})
		return
	}

	run.Result = result
	if req.IncludeLog {
		run.CondensedLog = engine.CondensedLog()
		run.FullLog = engine.FullLog()
	}
	run.Status = statusCompleted
	s.cache.put(run)

	s.checkSLABreaches(opts, result)

	s.broadcast(run.ID, WSMessage{Type: "completed", ReportID: run.ID})
}

// checkSLABreaches compares each tracked entity's SLA percent against
// the configured floor and fires a notification for anything below it.
func (s *Server) checkSLABreaches(opts *availopts.Options, result *report.Result) {
	if !s.config.Notify.Enabled {
		return
	}
	floor := s.config.Notify.SLAFloor
	now := time.Now()

	for host, buckets := range result.Hosts {
		pct := report.SLAPercent(true, buckets, opts.Start, opts.End)
		if pct < floor {
			s.metrics.RecordSLABreach(host, "")
			s.notifier.NotifyBreach(notify.BreachEvent{Host: host, Percent: pct, Floor: floor, Timestamp: now})
		}
	}
	for host, byService := range result.Services {
		for svc, buckets := range byService {
			pct := report.SLAPercent(false, buckets, opts.Start, opts.End)
			if pct < floor {
				s.metrics.RecordSLABreach(host, svc)
				s.notifier.NotifyBreach(notify.BreachEvent{Host: host, Service: svc, Percent: pct, Floor: floor, Timestamp: now})
			}
		}
	}
}

// GET /api/v1/reports/:id/log returns the cached run, including its
// rendered log if the originating request asked for one.
func (s *Server) getReportLog(c *gin.Context) {
	id := c.Param("id")
	run, ok := s.cache.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found or expired"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            run.ID,
		"status":        run.Status,
		"error":         run.Err,
		"result":        run.Result,
		"condensed_log": run.CondensedLog,
		"full_log":      run.FullLog,
	})
}

// POST /api/v1/catalog/sync reconciles the catalog against the hosts
// and services present in the supplied log source.
func (s *Server) syncCatalog(c *gin.Context) {
	var req LogSourceRequest
	if err := bindStrictJSON(c, &req); err != nil {
		s.writeCalcError(c, err)
		return
	}

	records, err := s.ingestFromSource(&req)
	if err != nil {
		s.writeCalcError(c, err)
		return
	}

	hosts, services := discoverEntities(records)
	result, err := s.catalog.Sync(hosts, services)
	if err != nil {
		logrus.WithError(err).Error("catalog sync failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog sync failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) listCatalogHosts(c *gin.Context) {
	group := c.Query("group")
	hosts, err := s.catalog.ListHosts(catalog.HostFilters{Group: group})
	if err != nil {
		logrus.WithError(err).Error("failed to list catalog hosts")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list hosts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hosts, "count": len(hosts)})
}

func (s *Server) listCatalogServices(c *gin.Context) {
	host := c.Query("host")
	services, err := s.catalog.ListServices(catalog.ServiceFilters{Host: host})
	if err != nil {
		logrus.WithError(err).Error("failed to list catalog services")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": services, "count": len(services)})
}

// buildOptions canonicalizes a report request into validated Options,
// funneling through the same availopts.Builder the CLI uses.
func (s *Server) buildOptions(req *ReportRequest) (*availopts.Options, error) {
	if req.Start == 0 && req.End == 0 {
		return nil, &availopts.ConfigError{Option: "start/end", Reason: "both start and end are required"}
	}
	b := availopts.NewOptions().
		Start(req.Start).
		End(req.End).
		Hosts(req.Hosts).
		Services(req.toServicePairs())

	if req.Backtrack != nil {
		b.Backtrack(*req.Backtrack)
	}
	if req.AssumeInitialStates != nil {
		b.AssumeInitialStates(*req.AssumeInitialStates)
	}
	if req.AssumeStateRetention != nil {
		b.AssumeStateRetention(*req.AssumeStateRetention)
	}
	if req.AssumeStatesDuringNotRunning != nil {
		b.AssumeStatesDuringNotRunning(*req.AssumeStatesDuringNotRunning)
	}
	if req.IncludeSoftStates != nil {
		b.IncludeSoftStates(*req.IncludeSoftStates)
	}
	if req.ShowScheduledDowntime != nil {
		b.ShowScheduledDowntime(*req.ShowScheduledDowntime)
	}
	if req.InitialAssumedHostState != "" {
		b.InitialAssumedHostState(req.InitialAssumedHostState)
	}
	if req.InitialAssumedServiceState != "" {
		b.InitialAssumedServiceState(req.InitialAssumedServiceState)
	}
	if req.TimeFormat != "" {
		b.TimeFormat(req.TimeFormat)
	}
	if req.Breakdown != "" {
		b.Breakdown(req.Breakdown)
	}

	return b.Normalize()
}

// ingestFromSource reads event records per the request's log_source
// selector. An unknown kind is a ConfigError (400 in writeCalcError);
// every other error from this path is a file or directory read failure
// and maps to 502.
func (s *Server) ingestFromSource(src *LogSourceRequest) ([]*eventlog.Record, error) {
	switch src.Kind {
	case "string":
		return eventlog.IngestString(src.Value), nil
	case "file":
		return eventlog.IngestFile(src.Value)
	case "dir":
		return eventlog.IngestDir(src.Value)
	default:
		return nil, &availopts.ConfigError{Option: "log_source.kind", Reason: "must be one of string, file, dir"}
	}
}

// writeCalcError maps a calculate failure to a status code per the
// error-handling design: a *availopts.ConfigError is the caller's
// fault (400); everything else reaching here comes from
// ingestFromSource's os.ReadFile/os.ReadDir calls, reported as an
// upstream-dependency failure (502) rather than a server bug (500).
func (s *Server) writeCalcError(c *gin.Context, err error) {
	if cfgErr, ok := err.(*availopts.ConfigError); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": cfgErr.Error()})
		return
	}
	logrus.WithError(err).Error("calculation failed")
	c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("log source unavailable: %v", err)})
}

func discoverEntities(records []*eventlog.Record) ([]string, []catalog.Service) {
	hostSeen := make(map[string]bool)
	svcSeen := make(map[string]bool)
	var hosts []string
	var services []catalog.Service

	for _, rec := range records {
		if rec.HostName == "" {
			continue
		}
		if !hostSeen[rec.HostName] {
			hostSeen[rec.HostName] = true
			hosts = append(hosts, rec.HostName)
		}
		if rec.ServiceDescription == "" {
			continue
		}
		key := rec.HostName + "\x00" + rec.ServiceDescription
		if !svcSeen[key] {
			svcSeen[key] = true
			services = append(services, catalog.Service{Host: rec.HostName, Description: rec.ServiceDescription})
		}
	}
	return hosts, services
}
