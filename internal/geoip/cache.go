package geoip

import (
	"container/list"
	"context"
	"sync"

	"github.com/voltatlas/station-locator/internal/domain"
	"github.com/voltatlas/station-locator/internal/observability"
)

// Locator is the lookup the cache decorates; satisfied by *Client.
type Locator interface {
	Locate(ctx context.Context, ip string) (domain.Coordinate, error)
}

// CachedLocator wraps a Locator with an in-memory LRU cache keyed by IP.
// Successful lookups are cached; failures are not, so transient provider
// errors can be retried.
type CachedLocator struct {
	inner   Locator
	metrics *observability.Metrics

	mu         sync.Mutex
	maxEntries int
	order      *list.List // front = most recently used
	entries    map[string]*list.Element
}

type cacheEntry struct {
	ip    string
	coord domain.Coordinate
}

// NewCachedLocator creates a cache decorator around a locator.
func NewCachedLocator(inner Locator, maxEntries int, metrics *observability.Metrics) *CachedLocator {
	return &CachedLocator{
		inner:      inner,
		metrics:    metrics,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *CachedLocator) Locate(ctx context.Context, ip string) (domain.Coordinate, error) {
	if coord, ok := c.get(ip); ok {
		c.metrics.LocateCache.WithLabelValues("hit").Inc()
		return coord, nil
	}
	c.metrics.LocateCache.WithLabelValues("miss").Inc()

	coord, err := c.inner.Locate(ctx, ip)
	if err != nil {
		return domain.Coordinate{}, err
	}
	c.put(ip, coord)
	return coord, nil
}

func (c *CachedLocator) get(ip string) (domain.Coordinate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[ip]
	if !ok {
		return domain.Coordinate{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).coord, true
}

func (c *CachedLocator) put(ip string, coord domain.Coordinate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[ip]; ok {
		el.Value.(*cacheEntry).coord = coord
		c.order.MoveToFront(el)
		return
	}

	c.entries[ip] = c.order.PushFront(&cacheEntry{ip: ip, coord: coord})

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).ip)
	}
}
