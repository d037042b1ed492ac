// Package metrics exposes prometheus vectors for the availability
// calculator, repurposed from the teacher's check-execution metrics to
// report-calculation metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"monavail/internal/catalog"
)

var (
	CalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "monavail_calculation_duration_seconds",
			Help:    "Time spent calculating an availability report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope", "status"},
	)

	ReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monavail_reports_total",
			Help: "Total number of availability reports calculated",
		},
		[]string{"scope", "status"},
	)

	SLABreachTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monavail_sla_breaches_total",
			Help: "Total number of SLA-floor breaches detected",
		},
		[]string{"host", "service"},
	)

	ActiveReports = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monavail_active_reports",
			Help: "Number of report calculations currently running",
		},
	)

	CatalogOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "monavail_catalog_operations_total",
			Help: "Total catalog store operations performed",
		},
		[]string{"operation", "status"},
	)

	ActiveCatalogHosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monavail_catalog_hosts_active",
			Help: "Number of enabled hosts in the catalog",
		},
	)

	ActiveCatalogServices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monavail_catalog_services_active",
			Help: "Number of enabled services in the catalog",
		},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "monavail_websocket_connections_active",
			Help: "Number of active WebSocket connections streaming report progress",
		},
	)
)

// Collector ties catalog reads to the gauges above, mirroring the
// teacher's Collector.UpdateSystemMetrics sweep.
type Collector struct {
	store *catalog.Store
}

func NewCollector(store *catalog.Store) *Collector {
	return &Collector{store: store}
}

func (c *Collector) RecordCalculation(scope string, dur time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	CalculationDuration.WithLabelValues(scope, status).Observe(dur.Seconds())
	ReportsTotal.WithLabelValues(scope, status).Inc()
}

func (c *Collector) RecordSLABreach(host, service string) {
	SLABreachTotal.WithLabelValues(host, service).Inc()
}

func (c *Collector) RecordWebSocketConnection(delta int) {
	WebSocketConnections.Add(float64(delta))
}

func (c *Collector) UpdateSystemMetrics(_ context.Context) error {
	hosts, err := c.store.ListHosts(catalog.HostFilters{})
	if err != nil {
		CatalogOperations.WithLabelValues("list_hosts", "error").Inc()
		return err
	}
	CatalogOperations.WithLabelValues("list_hosts", "success").Inc()

	enabledHosts := 0
	for _, h := range hosts {
		if h.Enabled {
			enabledHosts++
		}
	}
	ActiveCatalogHosts.Set(float64(enabledHosts))

	services, err := c.store.ListServices(catalog.ServiceFilters{})
	if err != nil {
		CatalogOperations.WithLabelValues("list_services", "error").Inc()
		return err
	}
	CatalogOperations.WithLabelValues("list_services", "success").Inc()

	enabledServices := 0
	for _, svc := range services {
		if svc.Enabled {
			enabledServices++
		}
	}
	ActiveCatalogServices.Set(float64(enabledServices))

	return nil
}
