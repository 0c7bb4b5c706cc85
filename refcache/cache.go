// Package refcache holds a short-lived, connection-scoped cache of the
// cross-cutting lookup data (users, groups, ownership types) needed to
// resolve owner references. Snapshots are immutable and replaced whole, so
// concurrent readers never observe a half-updated entry.
package refcache

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/acrylJonny/metasync/catalog"
)

const (
	// DefaultTTL bounds how stale a reference snapshot may be served.
	DefaultTTL = 5 * time.Minute

	defaultCapacity = 64
)

// Snapshot is one immutable fetch result for a connection.
type Snapshot struct {
	ConnectionID string
	Data         catalog.ReferenceData
	FetchedAt    time.Time
}

// FetchFunc retrieves fresh reference data for a connection from the remote
// catalog.
type FetchFunc func(ctx context.Context, connectionID string) (catalog.ReferenceData, error)

type Cache struct {
	fetch   FetchFunc
	ttl     time.Duration
	clock   func() time.Time
	entries *expirable.LRU[string, Snapshot]
	group   singleflight.Group
	log     logr.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func WithLogger(log logr.Logger) Option {
	return func(c *Cache) {
		c.log = log
	}
}

func New(fetch FetchFunc, opts ...Option) *Cache {
	cache := &Cache{
		fetch: fetch,
		ttl:   DefaultTTL,
		clock: time.Now,
		log:   logr.Discard(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cache)
	}
	// The LRU's own expiry is a memory backstop; staleness is decided by
	// the explicit FetchedAt check so tests can inject a clock.
	cache.entries = expirable.NewLRU[string, Snapshot](defaultCapacity, nil, cache.ttl)
	return cache
}

// GetOrRefresh returns the cached snapshot when it is younger than the TTL
// and fetches a replacement otherwise. Concurrent refreshes for the same
// connection collapse into one remote call; a refresh racing an Invalidate
// may fetch twice, which is benign because the replacement swap is atomic.
func (c *Cache) GetOrRefresh(ctx context.Context, connectionID string) (Snapshot, error) {
	if snapshot, ok := c.entries.Get(connectionID); ok {
		if c.clock().Sub(snapshot.FetchedAt) < c.ttl {
			return snapshot, nil
		}
	}

	result, err, _ := c.group.Do(connectionID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have already
		// replaced the entry.
		if snapshot, ok := c.entries.Get(connectionID); ok {
			if c.clock().Sub(snapshot.FetchedAt) < c.ttl {
				return snapshot, nil
			}
		}

		data, err := c.fetch(ctx, connectionID)
		if err != nil {
			return Snapshot{}, err
		}
		snapshot := Snapshot{
			ConnectionID: connectionID,
			Data:         data.Clone(),
			FetchedAt:    c.clock(),
		}
		c.entries.Add(connectionID, snapshot)
		c.log.V(1).Info("refreshed reference data", "connection", connectionID,
			"users", len(snapshot.Data.Users), "groups", len(snapshot.Data.Groups))
		return snapshot, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return result.(Snapshot), nil
}

// Invalidate drops the cached snapshot for a connection. The next read
// fetches fresh data.
func (c *Cache) Invalidate(connectionID string) {
	c.entries.Remove(connectionID)
}
