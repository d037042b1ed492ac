// cmd/monavail runs one availability report and exits, mirroring
// cmd/raven/main.go's flag parsing and logging setup but with no
// daemon lifecycle: report, print, done.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"monavail/internal/availability"
	"monavail/internal/availopts"
	"monavail/internal/config"
	"monavail/internal/eventlog"
)

// repeatedFlag collects every occurrence of a flag passed more than
// once, e.g. repeated -host or -service.
type repeatedFlag []string

func (r *repeatedFlag) String() string { return strings.Join(*r, ",") }
func (r *repeatedFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	configFile := flag.String("config", "config.yaml", "configuration file path")
	start := flag.Int64("start", 0, "report window start, unix seconds")
	end := flag.Int64("end", 0, "report window end, unix seconds")
	logPath := flag.String("log", "", "monitoring log file or directory to read")
	breakdown := flag.String("breakdown", "", "breakdown granularity: days, weeks, or months")
	format := flag.String("format", "text", "output format: text or json")

	var hosts repeatedFlag
	var services repeatedFlag
	flag.Var(&hosts, "host", "host to report on (repeatable)")
	flag.Var(&services, "service", "host/service pair to report on, e.g. web1/http (repeatable)")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	setupLogging(cfg.Logging)

	opts, err := buildOptions(*start, *end, hosts, services, *breakdown)
	if err != nil {
		logrus.Fatalf("%v", err)
	}

	records, err := ingest(*logPath)
	if err != nil {
		logrus.Fatalf("failed to read log source: %v", err)
	}

	engine := availability.New(opts)
	result, err := engine.Calculate(records)
	if err != nil {
		logrus.Fatalf("calculation failed: %v", err)
	}

	if err := printResult(result, *format); err != nil {
		logrus.Fatalf("failed to render result: %v", err)
	}
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

func buildOptions(start, end int64, hosts, services repeatedFlag, breakdown string) (*availopts.Options, error) {
	pairs := make([]availopts.ServicePair, 0, len(services))
	for _, s := range services {
		host, svc, ok := strings.Cut(s, "/")
		if !ok {
			return nil, fmt.Errorf("invalid -service %q, expected host/service", s)
		}
		pairs = append(pairs, availopts.ServicePair{Host: host, Service: svc})
	}

	b := availopts.NewOptions().
		Start(start).
		End(end).
		Hosts([]string(hosts)).
		Services(pairs)

	if breakdown != "" {
		b.Breakdown(breakdown)
	}

	return b.Normalize()
}

func ingest(path string) ([]*eventlog.Record, error) {
	if path == "" {
		return nil, fmt.Errorf("-log is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return eventlog.IngestDir(path)
	}
	return eventlog.IngestFile(path)
}

func printResult(result interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		fmt.Fprintf(os.Stdout, "%+v\n", result)
		return nil
	default:
		return fmt.Errorf("unknown -format %q, expected text or json", format)
	}
}
