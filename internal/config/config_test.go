package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server:\n  port: \":9000\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != ":9000" {
		t.Fatalf("port: got %q, want :9000", cfg.Server.Port)
	}
	if cfg.Server.MaxConcurrentReports != 4 {
		t.Fatalf("max_concurrent_reports: got %d, want 4", cfg.Server.MaxConcurrentReports)
	}
	if cfg.Catalog.Path != "./data/monavail.db" {
		t.Fatalf("catalog.path: got %q, want default", cfg.Catalog.Path)
	}
	if cfg.Notify.SLAFloor != 99.9 {
		t.Fatalf("notify.sla_floor: got %v, want 99.9", cfg.Notify.SLAFloor)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "server: [this is not a map\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateRejectsZeroMaxConcurrentReports(t *testing.T) {
	cfg := &Config{Catalog: CatalogConfig{Path: "x.db"}, Server: ServerConfig{MaxConcurrentReports: 0}}
	if err := validate(cfg); err == nil {
		t.Fatal("expected error when max_concurrent_reports < 1")
	}
}

func TestValidateRequiresPushoverCredentials(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{MaxConcurrentReports: 1},
		Catalog: CatalogConfig{Path: "x.db"},
		Notify: NotifyConfig{
			Enabled:  true,
			Pushover: PushoverConfig{Enabled: true},
		},
	}
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for missing pushover api_token/user_key")
	}
}

func TestValidateRejectsDuplicateHostNames(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{MaxConcurrentReports: 1},
		Catalog: CatalogConfig{Path: "x.db"},
		Hosts:   []HostConfig{{Name: "web1"}, {Name: "web1"}},
	}
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for duplicate host name")
	}
}

func TestLoadMergesIncludes(t *testing.T) {
	dir := t.TempDir()
	includeDir := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(includeDir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, includeDir, "a-hosts.yaml", "hosts:\n  - name: web1\n")
	writeFile(t, includeDir, "b-hosts.yaml", "hosts:\n  - name: web2\n")

	main := writeFile(t, dir, "config.yaml", "include:\n  enabled: true\n  directory: conf.d\n")

	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Hosts) != 2 {
		t.Fatalf("hosts: got %d, want 2", len(cfg.Hosts))
	}
	if cfg.Hosts[0].Name != "web1" || cfg.Hosts[1].Name != "web2" {
		t.Fatalf("hosts not merged in lexical file order: %+v", cfg.Hosts)
	}
}

func TestMergeServerConfigOnlyOverridesSetFields(t *testing.T) {
	main := ServerConfig{Port: ":8000", MaxConcurrentReports: 4}
	mergeServerConfig(&main, &ServerConfig{Port: ":9000"})
	if main.Port != ":9000" {
		t.Fatalf("port not overridden: got %q", main.Port)
	}
	if main.MaxConcurrentReports != 4 {
		t.Fatalf("max_concurrent_reports should be left alone: got %d", main.MaxConcurrentReports)
	}
}

func TestIsValidGlobPattern(t *testing.T) {
	cases := []struct {
		pattern string
		want    bool
	}{
		{"*.yaml", true},
		{"*.yml", true},
		{"../escape.yaml", false},
		{"sub/dir.yaml", false},
	}
	for _, c := range cases {
		if got := isValidGlobPattern(c.pattern); got != c.want {
			t.Errorf("isValidGlobPattern(%q): got %v, want %v", c.pattern, got, c.want)
		}
	}
}
