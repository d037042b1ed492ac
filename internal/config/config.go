// Package config loads the top-level YAML configuration tying the
// catalog store, web API, notifications, and logging together.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Web        WebConfig        `yaml:"web"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Logging    LoggingConfig    `yaml:"logging"`
	Notify     NotifyConfig     `yaml:"notify"`
	Hosts      []HostConfig     `yaml:"hosts"`
	Services   []ServiceConfig  `yaml:"services"`
	Include    IncludeConfig    `yaml:"include"`
}

type ServerConfig struct {
	Port                string        `yaml:"port"`
	MaxConcurrentReports int          `yaml:"max_concurrent_reports"`
	ReadTimeout         time.Duration `yaml:"read_timeout"`
	WriteTimeout        time.Duration `yaml:"write_timeout"`
}

type WebConfig struct {
	ResultCacheTTL time.Duration `yaml:"result_cache_ttl"`
	CORSOrigins    []string      `yaml:"cors_origins"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type PrometheusConfig struct {
	Enabled     bool   `yaml:"enabled"`
	MetricsPath string `yaml:"metrics_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotifyConfig reconciles the teacher's two Pushover shapes
// (config.go's flatter NotificationConfig and pushover.go's richer
// quiet-hours variant) into one: the flat structure of the former,
// with the latter's QuietHours folded in as an optional field.
type NotifyConfig struct {
	Enabled  bool           `yaml:"enabled"`
	SLAFloor float64        `yaml:"sla_floor"` // percentage; breach fires when calculated SLA < this
	Pushover PushoverConfig `yaml:"pushover"`
}

type PushoverConfig struct {
	Enabled    bool        `yaml:"enabled"`
	APIToken   string      `yaml:"api_token"`
	UserKey    string      `yaml:"user_key"`
	Priority   int         `yaml:"priority"`
	Retry      int         `yaml:"retry"`
	Expire     int         `yaml:"expire"`
	Sound      string      `yaml:"sound"`
	Device     string      `yaml:"device"`
	Title      string      `yaml:"title"`
	Template   string      `yaml:"template"`
	QuietHours *QuietHours `yaml:"quiet_hours,omitempty"`
}

// QuietHours defines when notifications should be suppressed.
type QuietHours struct {
	Enabled   bool   `yaml:"enabled"`
	StartHour int    `yaml:"start_hour"`
	EndHour   int    `yaml:"end_hour"`
	Timezone  string `yaml:"timezone"`
}

type HostConfig struct {
	Name        string            `yaml:"name"`
	DisplayName string            `yaml:"display_name"`
	Group       string            `yaml:"group"`
	Tags        map[string]string `yaml:"tags"`
	Enabled     bool              `yaml:"enabled"`
}

type ServiceConfig struct {
	Host        string `yaml:"host"`
	Description string `yaml:"description"`
	Group       string `yaml:"group"`
	Enabled     bool   `yaml:"enabled"`
}

type IncludeConfig struct {
	Directory string `yaml:"directory"`
	Pattern   string `yaml:"pattern"`
	Enabled   bool   `yaml:"enabled"`
}

// PartialConfig is a partial configuration that can be merged from an
// include file, mirroring the teacher's split-config feature,
// generalized here to cover host/service catalog entries too.
type PartialConfig struct {
	Server     *ServerConfig     `yaml:"server,omitempty"`
	Web        *WebConfig        `yaml:"web,omitempty"`
	Catalog    *CatalogConfig    `yaml:"catalog,omitempty"`
	Prometheus *PrometheusConfig `yaml:"prometheus,omitempty"`
	Logging    *LoggingConfig    `yaml:"logging,omitempty"`
	Notify     *NotifyConfig     `yaml:"notify,omitempty"`
	Hosts      []HostConfig      `yaml:"hosts,omitempty"`
	Services   []ServiceConfig   `yaml:"services,omitempty"`
}

func Load(filename string) (*Config, error) {
	cfg, err := loadConfigFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load main config file: %w", err)
	}

	if cfg.Include.Enabled && cfg.Include.Directory != "" {
		if err := loadIncludes(cfg, filepath.Dir(filename)); err != nil {
			return nil, fmt.Errorf("failed to load includes: %w", err)
		}
	}

	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &cfg, nil
}

func loadIncludes(cfg *Config, baseDir string) error {
	includeDir := cfg.Include.Directory
	if !filepath.IsAbs(includeDir) {
		includeDir = filepath.Join(baseDir, includeDir)
	}

	if _, err := os.Stat(includeDir); os.IsNotExist(err) {
		return fmt.Errorf("include directory does not exist: %s", includeDir)
	}

	pattern := cfg.Include.Pattern
	if pattern == "" {
		pattern = "*.yaml"
	}

	matches, err := filepath.Glob(filepath.Join(includeDir, pattern))
	if err != nil {
		return fmt.Errorf("failed to glob include pattern: %w", err)
	}

	if pattern == "*.yaml" {
		ymlMatches, err := filepath.Glob(filepath.Join(includeDir, "*.yml"))
		if err != nil {
			return fmt.Errorf("failed to glob .yml files: %w", err)
		}
		matches = append(matches, ymlMatches...)
	}

	for i := 0; i < len(matches)-1; i++ {
		for j := i + 1; j < len(matches); j++ {
			if filepath.Base(matches[i]) > filepath.Base(matches[j]) {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}

	for _, match := range matches {
		if err := loadAndMergeInclude(cfg, match); err != nil {
			return fmt.Errorf("failed to load include file %s: %w", match, err)
		}
	}

	return nil
}

func loadAndMergeInclude(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read include file: %w", err)
	}

	var partial PartialConfig
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("failed to parse include file YAML: %w", err)
	}

	mergePartialConfig(cfg, &partial)
	return nil
}

func mergePartialConfig(cfg *Config, partial *PartialConfig) {
	if len(partial.Hosts) > 0 {
		cfg.Hosts = append(cfg.Hosts, partial.Hosts...)
	}
	if len(partial.Services) > 0 {
		cfg.Services = append(cfg.Services, partial.Services...)
	}
	if partial.Server != nil {
		mergeServerConfig(&cfg.Server, partial.Server)
	}
	if partial.Web != nil {
		mergeWebConfig(&cfg.Web, partial.Web)
	}
	if partial.Catalog != nil {
		mergeCatalogConfig(&cfg.Catalog, partial.Catalog)
	}
	if partial.Prometheus != nil {
		mergePrometheusConfig(&cfg.Prometheus, partial.Prometheus)
	}
	if partial.Logging != nil {
		mergeLoggingConfig(&cfg.Logging, partial.Logging)
	}
	if partial.Notify != nil {
		mergeNotifyConfig(&cfg.Notify, partial.Notify)
	}
}

func mergeServerConfig(main *ServerConfig, partial *ServerConfig) {
	if partial.Port != "" {
		main.Port = partial.Port
	}
	if partial.MaxConcurrentReports != 0 {
		main.MaxConcurrentReports = partial.MaxConcurrentReports
	}
	if partial.ReadTimeout != 0 {
		main.ReadTimeout = partial.ReadTimeout
	}
	if partial.WriteTimeout != 0 {
		main.WriteTimeout = partial.WriteTimeout
	}
}

func mergeWebConfig(main *WebConfig, partial *WebConfig) {
	if partial.ResultCacheTTL != 0 {
		main.ResultCacheTTL = partial.ResultCacheTTL
	}
	if len(partial.CORSOrigins) > 0 {
		main.CORSOrigins = append(main.CORSOrigins, partial.CORSOrigins...)
	}
}

func mergeCatalogConfig(main *CatalogConfig, partial *CatalogConfig) {
	if partial.Path != "" {
		main.Path = partial.Path
	}
}

func mergePrometheusConfig(main *PrometheusConfig, partial *PrometheusConfig) {
	main.Enabled = partial.Enabled
	if partial.MetricsPath != "" {
		main.MetricsPath = partial.MetricsPath
	}
}

func mergeLoggingConfig(main *LoggingConfig, partial *LoggingConfig) {
	if partial.Level != "" {
		main.Level = partial.Level
	}
	if partial.Format != "" {
		main.Format = partial.Format
	}
}

func mergeNotifyConfig(main *NotifyConfig, partial *NotifyConfig) {
	main.Enabled = partial.Enabled
	if partial.SLAFloor != 0 {
		main.SLAFloor = partial.SLAFloor
	}
	if partial.Pushover.APIToken != "" {
		main.Pushover.APIToken = partial.Pushover.APIToken
	}
	if partial.Pushover.UserKey != "" {
		main.Pushover.UserKey = partial.Pushover.UserKey
	}
	if partial.Pushover.Priority != 0 || !main.Pushover.Enabled {
		main.Pushover.Priority = partial.Pushover.Priority
	}
	if partial.Pushover.Retry != 0 {
		main.Pushover.Retry = partial.Pushover.Retry
	}
	if partial.Pushover.Expire != 0 {
		main.Pushover.Expire = partial.Pushover.Expire
	}
	if partial.Pushover.Sound != "" {
		main.Pushover.Sound = partial.Pushover.Sound
	}
	if partial.Pushover.Device != "" {
		main.Pushover.Device = partial.Pushover.Device
	}
	if partial.Pushover.Title != "" {
		main.Pushover.Title = partial.Pushover.Title
	}
	if partial.Pushover.Template != "" {
		main.Pushover.Template = partial.Pushover.Template
	}
	if partial.Pushover.QuietHours != nil {
		main.Pushover.QuietHours = partial.Pushover.QuietHours
	}
	main.Pushover.Enabled = partial.Pushover.Enabled
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8000"
	}
	if cfg.Server.MaxConcurrentReports == 0 {
		cfg.Server.MaxConcurrentReports = 4
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}

	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./data/monavail.db"
	}

	if cfg.Web.ResultCacheTTL == 0 {
		cfg.Web.ResultCacheTTL = 15 * time.Minute
	}

	if cfg.Include.Pattern == "" {
		cfg.Include.Pattern = "*.yaml"
	}

	if cfg.Prometheus.MetricsPath == "" {
		cfg.Prometheus.MetricsPath = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}

	if cfg.Notify.SLAFloor == 0 {
		cfg.Notify.SLAFloor = 99.9
	}
	if cfg.Notify.Pushover.Title == "" {
		cfg.Notify.Pushover.Title = "monavail SLA breach: {{.Host}}"
	}
	if cfg.Notify.Pushover.Template == "" {
		cfg.Notify.Pushover.Template = "{{.Entity}} availability {{.Percent}}% is below the configured floor of {{.Floor}}%"
	}
	if cfg.Notify.Pushover.Sound == "" {
		cfg.Notify.Pushover.Sound = "pushover"
	}
}

func validate(cfg *Config) error {
	if cfg.Server.MaxConcurrentReports < 1 {
		return fmt.Errorf("server.max_concurrent_reports must be at least 1")
	}
	if cfg.Catalog.Path == "" {
		return fmt.Errorf("catalog.path cannot be empty")
	}

	if cfg.Notify.Enabled && cfg.Notify.Pushover.Enabled {
		if cfg.Notify.Pushover.APIToken == "" {
			return fmt.Errorf("notify.pushover.api_token is required when Pushover is enabled")
		}
		if cfg.Notify.Pushover.UserKey == "" {
			return fmt.Errorf("notify.pushover.user_key is required when Pushover is enabled")
		}
		if cfg.Notify.Pushover.Priority < -2 || cfg.Notify.Pushover.Priority > 2 {
			return fmt.Errorf("notify.pushover.priority must be between -2 and 2")
		}
		if cfg.Notify.Pushover.Priority == 2 {
			if cfg.Notify.Pushover.Retry < 30 {
				return fmt.Errorf("notify.pushover.retry must be at least 30 seconds for emergency priority")
			}
			if cfg.Notify.Pushover.Expire < 60 {
				return fmt.Errorf("notify.pushover.expire must be at least 60 seconds for emergency priority")
			}
		}
		if cfg.Notify.Pushover.QuietHours != nil && cfg.Notify.Pushover.QuietHours.Enabled {
			if cfg.Notify.Pushover.QuietHours.StartHour < 0 || cfg.Notify.Pushover.QuietHours.StartHour > 23 {
				return fmt.Errorf("notify.pushover.quiet_hours.start_hour must be between 0 and 23")
			}
			if cfg.Notify.Pushover.QuietHours.EndHour < 0 || cfg.Notify.Pushover.QuietHours.EndHour > 23 {
				return fmt.Errorf("notify.pushover.quiet_hours.end_hour must be between 0 and 23")
			}
		}
	}

	if cfg.Include.Enabled {
		if cfg.Include.Directory == "" {
			return fmt.Errorf("include.directory must be specified when include.enabled is true")
		}
		if cfg.Include.Pattern != "" && !isValidGlobPattern(cfg.Include.Pattern) {
			return fmt.Errorf("include.pattern contains invalid glob pattern: %s", cfg.Include.Pattern)
		}
	}

	hostNames := make(map[string]bool)
	for _, h := range cfg.Hosts {
		if h.Name == "" {
			return fmt.Errorf("hosts entry has an empty name")
		}
		if hostNames[h.Name] {
			return fmt.Errorf("duplicate host name: %s", h.Name)
		}
		hostNames[h.Name] = true
	}

	for _, svc := range cfg.Services {
		if svc.Host == "" || svc.Description == "" {
			return fmt.Errorf("services entry requires both host and description")
		}
	}

	return nil
}

func isValidGlobPattern(pattern string) bool {
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "\\") {
		return false
	}
	_, err := filepath.Match(pattern, "test.yaml")
	return err == nil
}
