// Package catalogcache memoizes catalog API calls for the lifetime of one run.
//
// A Cache is owned by the command that creates it; there is no process-wide
// state. Identical arguments resolve to the network at most once, even under
// concurrent callers. Errors are never cached, so a later call retries.
package catalogcache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"vistopia/internal/services/vistopia"
)

// Gateway is the subset of the API client the cache wraps.
type Gateway interface {
	Catalog(ctx context.Context, id int64) (*vistopia.Catalog, error)
	ContentShow(ctx context.Context, id int64) (*vistopia.Series, error)
	Search(ctx context.Context, keyword string) ([]vistopia.SearchResult, error)
	Subscriptions(ctx context.Context) ([]vistopia.Subscription, error)
}

// Cache implements Gateway on top of another Gateway with per-argument memoization.
type Cache struct {
	gateway Gateway
	group   singleflight.Group

	mu      sync.RWMutex
	entries map[string]any
}

var _ Gateway = (*Cache)(nil)

// New wraps gateway.
func New(gateway Gateway) *Cache {
	return &Cache{gateway: gateway, entries: make(map[string]any)}
}

// Catalog returns the memoized catalog for id.
func (c *Cache) Catalog(ctx context.Context, id int64) (*vistopia.Catalog, error) {
	return load(c, "catalog:"+strconv.FormatInt(id, 10), func() (*vistopia.Catalog, error) {
		return c.gateway.Catalog(ctx, id)
	})
}

// ContentShow returns the memoized series for id.
func (c *Cache) ContentShow(ctx context.Context, id int64) (*vistopia.Series, error) {
	return load(c, "content-show:"+strconv.FormatInt(id, 10), func() (*vistopia.Series, error) {
		return c.gateway.ContentShow(ctx, id)
	})
}

// Search returns the memoized results for keyword.
func (c *Cache) Search(ctx context.Context, keyword string) ([]vistopia.SearchResult, error) {
	return load(c, "search:"+keyword, func() ([]vistopia.SearchResult, error) {
		return c.gateway.Search(ctx, keyword)
	})
}

// Subscriptions returns the memoized subscription list.
func (c *Cache) Subscriptions(ctx context.Context) ([]vistopia.Subscription, error) {
	return load(c, "subscriptions", func() ([]vistopia.Subscription, error) {
		return c.gateway.Subscriptions(ctx)
	})
}

// Clear drops every memoized entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]any)
	c.mu.Unlock()
}

func load[T any](c *Cache, key string, fetch func() (T, error)) (T, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached.(T), nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}
		fetched, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = fetched
		c.mu.Unlock()
		return fetched, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return value.(T), nil
}
