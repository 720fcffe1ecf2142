// Package snapshot keeps the network snapshot that queries run on, reloading
// it from storage once it is older than a TTL.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/eldarhac/GraphMind/pkg/common"
	"github.com/eldarhac/GraphMind/pkg/logger"
	"github.com/eldarhac/GraphMind/pkg/metrics"
	"github.com/eldarhac/GraphMind/pkg/store"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = time.Minute

// Provider hands out the current snapshot. Concurrent reloads are collapsed
// into one storage call. A failed reload keeps serving the previous
// snapshot when there is one.
type Provider struct {
	source store.GraphStorage
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	graph    common.Graph
	loadedAt time.Time
	loaded   bool

	group singleflight.Group
}

func NewProvider(source store.GraphStorage, ttl time.Duration) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{source: source, ttl: ttl, now: time.Now}
}

// Get returns the current snapshot. Callers must not modify it.
func (p *Provider) Get(ctx context.Context) (common.Graph, error) {
	p.mu.RLock()
	g, fresh, loaded := p.graph, p.now().Sub(p.loadedAt) < p.ttl, p.loaded
	p.mu.RUnlock()
	if loaded && fresh {
		return g, nil
	}

	v, err, _ := p.group.Do("load", func() (any, error) {
		return p.source.LoadGraph(ctx)
	})
	if err != nil {
		if loaded {
			logger.Warn("[Snapshot] Reload failed, serving previous snapshot", "err", err)
			return g, nil
		}
		return common.Graph{}, err
	}

	g = v.(common.Graph)
	p.mu.Lock()
	p.graph, p.loadedAt, p.loaded = g, p.now(), true
	p.mu.Unlock()

	metrics.SetSnapshotSize(len(g.Nodes), len(g.Edges))
	logger.Debug("[Snapshot] Loaded", "people", len(g.Nodes), "connections", len(g.Edges))
	return g, nil
}

// Invalidate forces the next Get to reload.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	p.loadedAt = time.Time{}
	p.mu.Unlock()
}
