// Package catalog persists the host/service identities a calculation
// can be scoped to. It never stores a calculated report — spec.md
// Non-goal (e); see SPEC_FULL.md §9.C for the distinction this module is
// built around.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var (
	hostsBucket    = []byte("hosts")
	servicesBucket = []byte("services")
)

// Host is one monitored host's catalog identity. Name is the lookup key;
// ID is a stable identifier assigned on first write, matching the
// teacher's uuid.New() host-ID convention.
type Host struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Group       string            `json:"group"`
	Tags        map[string]string `json:"tags"`
	Enabled     bool              `json:"enabled"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Service is one monitored service's catalog identity, scoped to a host.
type Service struct {
	ID          string    `json:"id"`
	Host        string    `json:"host"`
	Description string    `json:"description"`
	Group       string    `json:"group"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store is the bbolt-backed catalog. Trimmed from the teacher's
// BoltStore: no checks/status/status-history buckets, since a
// calculated report is never persisted.
type Store struct {
	db *bbolt.DB
}

// Open creates (if needed) and opens the catalog at path, initializing
// its buckets, mirroring BoltStore.NewBoltStore's setup sequence.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("catalog: create data directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("catalog: open: %w", err)
	}

	s := &Store{db: db}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: init buckets: %w", err)
	}
	return s, nil
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{hostsBucket, servicesBucket} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", b, err)
			}
		}
		return nil
	})
}

func (s *Store) Close() error { return s.db.Close() }

// PutHost upserts a host identity, stamping CreatedAt on first write.
func (s *Store) PutHost(h *Host) error {
	now := time.Now()
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(hostsBucket)
		if existing := b.Get([]byte(h.Name)); existing != nil {
			var prev Host
			if err := json.Unmarshal(existing, &prev); err == nil {
				h.CreatedAt = prev.CreatedAt
				h.ID = prev.ID
			}
		} else {
			h.CreatedAt = now
			h.ID = uuid.New().String()
		}
		h.UpdatedAt = now

		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("marshal host: %w", err)
		}
		return b.Put([]byte(h.Name), data)
	})
}

func (s *Store) GetHost(name string) (*Host, error) {
	var h Host
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(hostsBucket).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("catalog: host %q not found", name)
		}
		return json.Unmarshal(v, &h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// HostFilters narrows ListHosts, mirroring the teacher's HostFilters shape.
type HostFilters struct {
	Group   string
	Enabled *bool
}

func (s *Store) ListHosts(filters HostFilters) ([]Host, error) {
	var hosts []Host
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(hostsBucket).ForEach(func(k, v []byte) error {
			var h Host
			if err := json.Unmarshal(v, &h); err != nil {
				return fmt.Errorf("unmarshal host %s: %w", k, err)
			}
			if filters.Group != "" && h.Group != filters.Group {
				return nil
			}
			if filters.Enabled != nil && h.Enabled != *filters.Enabled {
				return nil
			}
			hosts = append(hosts, h)
			return nil
		})
	})
	return hosts, err
}

func (s *Store) DeleteHost(name string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(hostsBucket).Delete([]byte(name))
	})
}

func serviceKey(host, description string) []byte {
	return []byte(host + "\x00" + description)
}

func (s *Store) PutService(svc *Service) error {
	now := time.Now()
	key := serviceKey(svc.Host, svc.Description)
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(servicesBucket)
		if existing := b.Get(key); existing != nil {
			var prev Service
			if err := json.Unmarshal(existing, &prev); err == nil {
				svc.CreatedAt = prev.CreatedAt
				svc.ID = prev.ID
			}
		} else {
			svc.CreatedAt = now
			svc.ID = uuid.New().String()
		}
		svc.UpdatedAt = now

		data, err := json.Marshal(svc)
		if err != nil {
			return fmt.Errorf("marshal service: %w", err)
		}
		return b.Put(key, data)
	})
}

// ServiceFilters narrows ListServices.
type ServiceFilters struct {
	Host    string
	Enabled *bool
}

func (s *Store) ListServices(filters ServiceFilters) ([]Service, error) {
	var services []Service
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(servicesBucket).ForEach(func(k, v []byte) error {
			var svc Service
			if err := json.Unmarshal(v, &svc); err != nil {
				return fmt.Errorf("unmarshal service %s: %w", k, err)
			}
			if filters.Host != "" && svc.Host != filters.Host {
				return nil
			}
			if filters.Enabled != nil && svc.Enabled != *filters.Enabled {
				return nil
			}
			services = append(services, svc)
			return nil
		})
	})
	return services, err
}

func (s *Store) DeleteService(host, description string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(servicesBucket).Delete(serviceKey(host, description))
	})
}
