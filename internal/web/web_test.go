package web

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"monavail/internal/availopts"
	"monavail/internal/eventlog"
)

func TestResultCachePutAndGet(t *testing.T) {
	c := newResultCache(time.Minute)
	run := &reportRun{ID: "abc", Status: statusRunning}
	c.put(run)

	got, ok := c.get("abc")
	if !ok {
		t.Fatal("expected cached run to be found")
	}
	if got.ID != "abc" {
		t.Fatalf("got ID %q, want abc", got.ID)
	}
}

func TestResultCacheMissing(t *testing.T) {
	c := newResultCache(time.Minute)
	if _, ok := c.get("nope"); ok {
		t.Fatal("expected no entry for unknown id")
	}
}

func TestResultCacheExpiresAfterTTL(t *testing.T) {
	c := newResultCache(time.Millisecond)
	c.put(&reportRun{ID: "abc"})

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.get("abc"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestResultCacheSweepRemovesExpired(t *testing.T) {
	c := newResultCache(time.Millisecond)
	c.put(&reportRun{ID: "abc"})
	time.Sleep(5 * time.Millisecond)

	c.sweep()

	c.mu.RLock()
	_, exists := c.entries["abc"]
	c.mu.RUnlock()
	if exists {
		t.Fatal("expected sweep to remove expired entry")
	}
}

func TestReportRequestToServicePairs(t *testing.T) {
	req := &ReportRequest{
		Services: []ServicePairRequest{
			{Host: "web1", Service: "http"},
			{Host: "web2", Service: "disk"},
		},
	}
	pairs := req.toServicePairs()
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if pairs[0].Host != "web1" || pairs[0].Service != "http" {
		t.Fatalf("pair 0: got %+v", pairs[0])
	}
}

func TestDiscoverEntitiesDedupesHostsAndServices(t *testing.T) {
	records := []*eventlog.Record{
		{HostName: "web1", ServiceDescription: "http"},
		{HostName: "web1", ServiceDescription: "http"},
		{HostName: "web1", ServiceDescription: "disk"},
		{HostName: "web2"},
		{HostName: ""},
	}

	hosts, services := discoverEntities(records)

	if len(hosts) != 2 {
		t.Fatalf("got %d hosts, want 2: %v", len(hosts), hosts)
	}
	if len(services) != 2 {
		t.Fatalf("got %d services, want 2: %v", len(services), services)
	}
}

func TestBuildOptionsRejectsMissingWindow(t *testing.T) {
	s := &Server{}
	req := &ReportRequest{}
	if _, err := s.buildOptions(req); err == nil {
		t.Fatal("expected a ConfigError for a zero start/end window")
	}
}

func TestBuildOptionsAppliesOverrides(t *testing.T) {
	s := &Server{}
	breakdown := "days"
	req := &ReportRequest{
		Start:     0,
		End:       86400,
		Hosts:     []string{"web1"},
		Breakdown: breakdown,
	}

	opts, err := s.buildOptions(req)
	if err != nil {
		t.Fatalf("buildOptions: %v", err)
	}
	if opts.Hosts[0] != "web1" {
		t.Fatalf("hosts not carried through: %+v", opts.Hosts)
	}
}

func TestIngestFromSourceUnknownKind(t *testing.T) {
	s := &Server{}
	if _, err := s.ingestFromSource(&LogSourceRequest{Kind: "nonsense"}); err == nil {
		t.Fatal("expected ConfigError for unknown log source kind")
	}
}

func TestBindStrictJSONRejectsUnknownField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := `{"start":0,"end":100,"bogus_option":true}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(body))

	var req ReportRequest
	err := bindStrictJSON(c, &req)
	if err == nil {
		t.Fatal("expected an error for an unknown field")
	}
	if _, ok := err.(*availopts.ConfigError); !ok {
		t.Fatalf("expected a *availopts.ConfigError, got %T: %v", err, err)
	}
}

func TestBindStrictJSONAcceptsKnownFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	body := `{"start":0,"end":100,"hosts":["h1"]}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest("POST", "/api/v1/reports", strings.NewReader(body))

	var req ReportRequest
	if err := bindStrictJSON(c, &req); err != nil {
		t.Fatalf("bindStrictJSON: %v", err)
	}
	if req.Start != 0 || req.End != 100 || len(req.Hosts) != 1 || req.Hosts[0] != "h1" {
		t.Fatalf("decoded request mismatch: %+v", req)
	}
}

func TestIngestFromSourceString(t *testing.T) {
	s := &Server{}
	records, err := s.ingestFromSource(&LogSourceRequest{Kind: "string", Value: ""})
	if err != nil {
		t.Fatalf("ingestFromSource: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records from empty input, want 0", len(records))
	}
}
