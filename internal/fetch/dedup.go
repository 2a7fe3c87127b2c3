// Package fetch provides the in-flight deduplication used by logical
// refresh operations. A key identifies one logical fetch (for example a
// calendar month); while a key is in flight, further requests for it are
// dropped instead of racing the first one.
package fetch

import (
	"sync"

	"github.com/wlp-app/wlp/internal/metrics"
)

// Group tracks in-flight keys for one class of operation.
type Group struct {
	name string

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGroup creates a deduplication group. name labels the skip metric.
func NewGroup(name string) *Group {
	return &Group{
		name:     name,
		inflight: make(map[string]struct{}),
	}
}

// Do runs fn unless key is already in flight, in which case it returns
// immediately without running anything. The key is removed when fn finishes,
// whether it succeeds or fails. fn's error is returned as-is; classification
// is the caller's concern.
func (g *Group) Do(key string, fn func() error) (started bool, err error) {
	g.mu.Lock()
	if _, busy := g.inflight[key]; busy {
		g.mu.Unlock()
		metrics.DedupSkippedTotal.WithLabelValues(g.name).Inc()
		return false, nil
	}
	g.inflight[key] = struct{}{}
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inflight, key)
		g.mu.Unlock()
	}()

	return true, fn()
}

// InFlight reports whether key is currently being fetched.
func (g *Group) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[key]
	return busy
}
