// Package web exposes the availability calculator over HTTP: a JSON
// API to launch report runs, a websocket progress stream for
// long-running calculations, and a Prometheus metrics endpoint.
// Adapted from the teacher's internal/web/server.go.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"monavail/internal/catalog"
	"monavail/internal/config"
	"monavail/internal/metrics"
	"monavail/internal/notify"
)

type Server struct {
	config   *config.Config
	catalog  *catalog.Store
	metrics  *metrics.Collector
	notifier *notify.Service

	router    *gin.Engine
	server    *http.Server
	cache     *resultCache
	sem       chan struct{}
	stop      chan struct{}
	wsClients map[string]map[*WSClient]bool
	wsMu      sync.Mutex
}

func NewServer(cfg *config.Config, store *catalog.Store, collector *metrics.Collector, notifier *notify.Service) *Server {
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg.Web.CORSOrigins))

	s := &Server{
		config:    cfg,
		catalog:   store,
		metrics:   collector,
		notifier:  notifier,
		router:    router,
		cache:     newResultCache(cfg.Web.ResultCacheTTL),
		sem:       make(chan struct{}, cfg.Server.MaxConcurrentReports),
		stop:      make(chan struct{}),
		wsClients: make(map[string]map[*WSClient]bool),
	}

	s.setupRoutes()
	return s
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	logrus.WithField("port", s.config.Server.Port).Info("starting web server")

	go s.cache.runSweeper(time.Minute, s.stop)
	go s.updateMetricsRoutine(ctx)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	close(s.stop)
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")
	{
		api.POST("/reports", s.createReport)
		api.GET("/reports/:id/log", s.getReportLog)
		api.POST("/catalog/sync", s.syncCatalog)
		api.GET("/catalog/hosts", s.listCatalogHosts)
		api.GET("/catalog/services", s.listCatalogServices)
	}

	s.router.GET("/ws/reports/:id", s.handleReportWebSocket)
	s.router.GET("/health", s.healthCheck)

	if s.config.Prometheus.Enabled {
		s.router.GET(s.config.Prometheus.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

func (s *Server) updateMetricsRoutine(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.metrics.UpdateSystemMetrics(ctx); err != nil {
				logrus.WithError(err).Error("failed to update system metrics")
			}
		}
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowAll {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
