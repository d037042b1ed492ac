// cmd/monavail-server runs the availability calculator as a
// long-running HTTP daemon, mirroring cmd/raven/main.go's config load
// → store open → server → signal-driven shutdown shape, minus the
// monitoring engine the teacher wired alongside its web server (there
// are no live checks to schedule here).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"monavail/internal/catalog"
	"monavail/internal/config"
	"monavail/internal/metrics"
	"monavail/internal/notify"
	"monavail/internal/web"
)

func main() {
	configFile := flag.String("config", "config.yaml", "configuration file path")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg.Logging)

	logrus.WithFields(logrus.Fields{
		"config_file": *configFile,
		"port":        cfg.Server.Port,
	}).Info("starting monavail server")

	store, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		logrus.Fatalf("failed to open catalog: %v", err)
	}
	defer store.Close()

	collector := metrics.NewCollector(store)

	notifier, err := notify.New(&cfg.Notify)
	if err != nil {
		logrus.Fatalf("failed to initialize notification service: %v", err)
	}
	defer notifier.Close()

	server := web.NewServer(cfg, store, collector, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logrus.WithField("signal", sig).Info("received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logrus.WithError(err).Error("error during shutdown")
	}

	cancel()
	logrus.Info("shutdown complete")
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
