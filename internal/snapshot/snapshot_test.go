package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eldarhac/GraphMind/pkg/common"
)

type countingSource struct {
	calls int
	graph common.Graph
	err   error
}

func (s *countingSource) LoadGraph(context.Context) (common.Graph, error) {
	s.calls++
	return s.graph, s.err
}

func TestProviderCachesUntilTTL(t *testing.T) {
	src := &countingSource{graph: common.Graph{Nodes: []common.Person{{ID: "1", Name: "Ann"}}}}
	p := NewProvider(src, time.Minute)
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		g, err := p.Get(context.Background())
		if err != nil || len(g.Nodes) != 1 {
			t.Fatalf("Get() = %+v, %v", g, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("LoadGraph called %d times, want 1", src.calls)
	}

	now = now.Add(time.Minute)
	_, _ = p.Get(context.Background())
	if src.calls != 2 {
		t.Fatalf("LoadGraph called %d times after ttl, want 2", src.calls)
	}

	p.Invalidate()
	_, _ = p.Get(context.Background())
	if src.calls != 3 {
		t.Fatalf("LoadGraph called %d times after Invalidate, want 3", src.calls)
	}
}

func TestProviderServesStaleOnError(t *testing.T) {
	src := &countingSource{graph: common.Graph{Nodes: []common.Person{{ID: "1"}}}}
	p := NewProvider(src, time.Minute)

	if _, err := p.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	src.err = errors.New("db down")
	src.graph = common.Graph{}
	p.Invalidate()

	g, err := p.Get(context.Background())
	if err != nil || len(g.Nodes) != 1 {
		t.Fatalf("Get() = %+v, %v, want previous snapshot", g, err)
	}
}

func TestProviderFirstLoadError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProvider(&countingSource{err: boom}, 0)
	if _, err := p.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Get() error = %v, want %v", err, boom)
	}
}
