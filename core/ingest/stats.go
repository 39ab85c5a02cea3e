package ingest

import (
	"sort"

	"asset-importer/core/store"
)

// Collector accumulates the distinct identity domains seen in one run.
// It is not safe for concurrent use; a run is single-threaded.
type Collector struct {
	domains map[string]struct{}
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{domains: make(map[string]struct{})}
}

// Reset clears everything collected so far.
func (c *Collector) Reset() {
	clear(c.domains)
}

// Record adds the asset's domain. Assets without one are ignored.
func (c *Collector) Record(a *store.Asset) {
	if a == nil || a.ADDomain == nil {
		return
	}
	if d := NormalizeDomain(*a.ADDomain); d != "" {
		c.domains[d] = struct{}{}
	}
}

// Snapshot returns the distinct count and the sorted domain list.
func (c *Collector) Snapshot() (int, []string) {
	out := make([]string, 0, len(c.domains))
	for d := range c.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return len(out), out
}
