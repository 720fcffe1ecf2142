package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/eldarhac/GraphMind/pkg/ai"
	"github.com/eldarhac/GraphMind/pkg/cache"
	"github.com/eldarhac/GraphMind/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is how long cached answers are reused.
	DefaultCacheTTL = 5 * time.Minute
	// cachedHistory is how many recent messages take part in a cache key.
	cachedHistory = 3
)

type cacheKeyParts struct {
	Kind    string   `json:"kind"`
	Text    string   `json:"text"`
	History []string `json:"history,omitempty"`
}

func cacheKey(kind, text string, history []ai.ChatMessage) string {
	parts := cacheKeyParts{Kind: kind, Text: text}
	if len(history) > cachedHistory {
		history = history[len(history)-cachedHistory:]
	}
	for _, m := range history {
		parts.History = append(parts.History, m.Role+": "+m.Message)
	}
	raw, _ := json.Marshal(parts)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

type cachedCall struct {
	name  string
	cache cache.Cache[string]
	ttl   time.Duration
	group singleflight.Group
}

// do answers from the cache or runs fn once per key, sharing the result with
// concurrent callers. fn runs detached from any single caller's
// cancellation; each caller stops waiting when its own ctx is done. Errors
// are never cached.
func (c *cachedCall) do(ctx context.Context, key string, fn func(ctx context.Context) (string, error)) (string, error) {
	if v, ok := c.cache.Get(key); ok {
		metrics.ObserveCacheLookup(c.name, true)
		return v, nil
	}
	metrics.ObserveCacheLookup(c.name, false)

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		text, err := fn(shared)
		if err != nil {
			return "", err
		}
		c.cache.Set(key, text, c.ttl)
		return text, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func newCachedCall(name string, c cache.Cache[string], ttl time.Duration) *cachedCall {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &cachedCall{name: name, cache: c, ttl: ttl}
}

// CachedGenerator reuses free-text answers for identical prompts.
type CachedGenerator struct {
	next TextGenerator
	call *cachedCall
}

// NewCachedGenerator wraps next with c. A non-positive ttl uses DefaultCacheTTL.
func NewCachedGenerator(next TextGenerator, c cache.Cache[string], ttl time.Duration) *CachedGenerator {
	return &CachedGenerator{next: next, call: newCachedCall("generator", c, ttl)}
}

func (g *CachedGenerator) GenerateFreeText(ctx context.Context, prompt string) (string, error) {
	return g.call.do(ctx, cacheKey("generate", prompt, nil), func(ctx context.Context) (string, error) {
		return g.next.GenerateFreeText(ctx, prompt)
	})
}

// CachedDelegate reuses answers for identical questions asked in the same
// recent conversation.
type CachedDelegate struct {
	next Delegate
	kind string
	call *cachedCall
}

// NewCachedDelegate wraps next with c. kind separates cache entries of
// different delegates sharing one cache.
func NewCachedDelegate(kind string, next Delegate, c cache.Cache[string], ttl time.Duration) *CachedDelegate {
	return &CachedDelegate{next: next, kind: kind, call: newCachedCall(kind, c, ttl)}
}

func (d *CachedDelegate) Answer(ctx context.Context, text string, history []ai.ChatMessage) (string, error) {
	return d.call.do(ctx, cacheKey(d.kind, text, history), func(ctx context.Context) (string, error) {
		return d.next.Answer(ctx, text, history)
	})
}
