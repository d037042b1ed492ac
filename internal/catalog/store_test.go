package catalog

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutAndGetHost(t *testing.T) {
	s := openTestStore(t)
	if err := s.PutHost(&Host{Name: "h1", Group: "web", Enabled: true}); err != nil {
		t.Fatalf("PutHost: %v", err)
	}
	h, err := s.GetHost("h1")
	if err != nil {
		t.Fatalf("GetHost: %v", err)
	}
	if h.Group != "web" || !h.Enabled {
		t.Fatalf("GetHost: got %+v", h)
	}
	if h.CreatedAt.IsZero() || h.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be stamped")
	}
}

func TestPutHostPreservesCreatedAt(t *testing.T) {
	s := openTestStore(t)
	s.PutHost(&Host{Name: "h1"})
	first, _ := s.GetHost("h1")

	s.PutHost(&Host{Name: "h1", Group: "db"})
	second, _ := s.GetHost("h1")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt should survive an update: first=%v second=%v", first.CreatedAt, second.CreatedAt)
	}
	if second.Group != "db" {
		t.Fatalf("expected update to apply, got group %q", second.Group)
	}
}

func TestListHostsFilters(t *testing.T) {
	s := openTestStore(t)
	s.PutHost(&Host{Name: "h1", Group: "web", Enabled: true})
	s.PutHost(&Host{Name: "h2", Group: "db", Enabled: false})

	webOnly, err := s.ListHosts(HostFilters{Group: "web"})
	if err != nil {
		t.Fatalf("ListHosts: %v", err)
	}
	if len(webOnly) != 1 || webOnly[0].Name != "h1" {
		t.Fatalf("ListHosts(Group=web): got %+v", webOnly)
	}

	enabled := true
	enabledOnly, err := s.ListHosts(HostFilters{Enabled: &enabled})
	if err != nil {
		t.Fatalf("ListHosts: %v", err)
	}
	if len(enabledOnly) != 1 || enabledOnly[0].Name != "h1" {
		t.Fatalf("ListHosts(Enabled=true): got %+v", enabledOnly)
	}
}

func TestDeleteHost(t *testing.T) {
	s := openTestStore(t)
	s.PutHost(&Host{Name: "h1"})
	if err := s.DeleteHost("h1"); err != nil {
		t.Fatalf("DeleteHost: %v", err)
	}
	if _, err := s.GetHost("h1"); err == nil {
		t.Fatalf("expected GetHost to fail after delete")
	}
}

func TestServicesScopedByHost(t *testing.T) {
	s := openTestStore(t)
	s.PutService(&Service{Host: "h1", Description: "ping"})
	s.PutService(&Service{Host: "h2", Description: "ping"})

	h1Services, err := s.ListServices(ServiceFilters{Host: "h1"})
	if err != nil {
		t.Fatalf("ListServices: %v", err)
	}
	if len(h1Services) != 1 || h1Services[0].Host != "h1" {
		t.Fatalf("ListServices(Host=h1): got %+v", h1Services)
	}
}

func TestSyncAddsAndRemoves(t *testing.T) {
	s := openTestStore(t)
	s.PutHost(&Host{Name: "stale"})
	s.PutService(&Service{Host: "stale", Description: "ping"})

	result, err := s.Sync([]string{"h1"}, []Service{{Host: "h1", Description: "http"}})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if result.HostsAdded != 1 || result.HostsRemoved != 1 {
		t.Fatalf("Sync hosts: got %+v", result)
	}
	if result.ServicesAdded != 1 || result.ServicesRemoved != 1 {
		t.Fatalf("Sync services: got %+v", result)
	}

	if _, err := s.GetHost("stale"); err == nil {
		t.Fatalf("stale host should have been removed")
	}
	if _, err := s.GetHost("h1"); err != nil {
		t.Fatalf("GetHost(h1): %v", err)
	}
}
