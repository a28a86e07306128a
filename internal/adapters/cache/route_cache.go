// Package cache memoises router results in front of the pathfinder.
package cache

import (
	"ht-planning-service/internal/domain"
	"ht-planning-service/internal/ports"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"
)

type routeKey struct {
	leg        domain.LegType
	start, end domain.Coordinate
}

// RouteCache implements ports.Router over another router. Lane routes depend only
// on the leg and its endpoints, so results are kept for the lifetime of the cache.
// Errors are not cached. Safe for concurrent use by parallel runs.
type RouteCache struct {
	next   ports.Router
	costs  *xsync.Map[routeKey, int]
	paths  *xsync.Map[routeKey, domain.Path]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewRouteCache(next ports.Router) *RouteCache {
	return &RouteCache{
		next:  next,
		costs: xsync.NewMap[routeKey, int](),
		paths: xsync.NewMap[routeKey, domain.Path](),
	}
}

func (c *RouteCache) Cost(leg domain.LegType, start, end domain.Coordinate) (int, error) {
	k := routeKey{leg: leg, start: start, end: end}
	if v, ok := c.costs.Load(k); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	v, err := c.next.Cost(leg, start, end)
	if err != nil {
		return 0, err
	}
	c.costs.Store(k, v)
	return v, nil
}

// Path returns a copy; callers may keep or modify it.
func (c *RouteCache) Path(leg domain.LegType, start, end domain.Coordinate) (domain.Path, error) {
	k := routeKey{leg: leg, start: start, end: end}
	if p, ok := c.paths.Load(k); ok {
		c.hits.Add(1)
		return slices.Clone(p), nil
	}
	c.misses.Add(1)

	p, err := c.next.Path(leg, start, end)
	if err != nil {
		return nil, err
	}
	c.paths.Store(k, slices.Clone(p))
	c.costs.Store(k, p.Steps())
	return p, nil
}

// Stats returns the hit and miss counts since creation.
func (c *RouteCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
