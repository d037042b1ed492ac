package catalog

// SyncResult reports what Sync changed, mirroring the counts the
// teacher's purge handlers returned per purge kind.
type SyncResult struct {
	HostsAdded      int
	HostsRemoved    int
	ServicesAdded   int
	ServicesRemoved int
}

// Sync reconciles the catalog against an authoritative set of
// host/service names observed in a monitoring configuration or a log
// sweep — adapted from the teacher's purgeOrphanedHosts/
// purgeOrphanedChecks handlers, which discarded catalog entries no
// longer present upstream. Every listed service is added, whether or not
// its host is in hosts.
func (s *Store) Sync(hosts []string, services []Service) (SyncResult, error) {
	var result SyncResult

	wantHosts := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		wantHosts[h] = true
	}

	existingHosts, err := s.ListHosts(HostFilters{})
	if err != nil {
		return result, err
	}
	haveHosts := make(map[string]bool, len(existingHosts))
	for _, h := range existingHosts {
		haveHosts[h.Name] = true
		if !wantHosts[h.Name] {
			if err := s.DeleteHost(h.Name); err != nil {
				return result, err
			}
			result.HostsRemoved++
		}
	}
	for name := range wantHosts {
		if haveHosts[name] {
			continue
		}
		if err := s.PutHost(&Host{Name: name, Enabled: true}); err != nil {
			return result, err
		}
		result.HostsAdded++
	}

	wantServices := make(map[string]bool, len(services))
	for _, svc := range services {
		wantServices[string(serviceKey(svc.Host, svc.Description))] = true
	}

	existingServices, err := s.ListServices(ServiceFilters{})
	if err != nil {
		return result, err
	}
	haveServices := make(map[string]bool, len(existingServices))
	for _, svc := range existingServices {
		haveServices[string(serviceKey(svc.Host, svc.Description))] = true
		if !wantServices[string(serviceKey(svc.Host, svc.Description))] {
			if err := s.DeleteService(svc.Host, svc.Description); err != nil {
				return result, err
			}
			result.ServicesRemoved++
		}
	}
	for _, svc := range services {
		key := string(serviceKey(svc.Host, svc.Description))
		if haveServices[key] {
			continue
		}
		svc.Enabled = true
		if err := s.PutService(&svc); err != nil {
			return result, err
		}
		result.ServicesAdded++
	}

	return result, nil
}
