package world

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultRouteCacheSize bounds the number of cached routes.
const DefaultRouteCacheSize = 512

// routeKey identifies a query against one version of the map.
// A zero-value target with toShop set means "nearest break shop".
type routeKey struct {
	start   HexCoord
	target  HexCoord
	toShop  bool
	version uint64
}

type cachedRoute struct {
	route Route
	err   error
}

// Router answers the two queries the simulation needs and memoizes them.
// Entries are keyed by map version, so any write to the map makes older
// entries unreachable; the LRU evicts them over time.
type Router struct {
	m     *Map
	cache *lru.Cache[routeKey, cachedRoute]

	hits, misses uint64
}

// NewRouter creates a router over m holding up to size routes.
func NewRouter(m *Map, size int) (*Router, error) {
	if size <= 0 {
		size = DefaultRouteCacheSize
	}
	cache, err := lru.New[routeKey, cachedRoute](size)
	if err != nil {
		return nil, fmt.Errorf("route cache: %w", err)
	}
	return &Router{m: m, cache: cache}, nil
}

// NearestShop routes from start to the nearest break shop.
func (r *Router) NearestShop(start HexCoord) (Route, error) {
	key := routeKey{start: start, toShop: true, version: r.m.Version}
	return r.lookup(key, ShopPredicate(r.m))
}

// RouteTo routes from start to target.
func (r *Router) RouteTo(start, target HexCoord) (Route, error) {
	key := routeKey{start: start, target: target, version: r.m.Version}
	return r.lookup(key, TargetPredicate(target))
}

// Stats returns cache hit and miss counts.
func (r *Router) Stats() (hits, misses uint64) {
	return r.hits, r.misses
}

func (r *Router) lookup(key routeKey, isDest func(HexCoord) bool) (Route, error) {
	if c, ok := r.cache.Get(key); ok {
		r.hits++
		return cloneRoute(c.route), c.err
	}
	r.misses++
	route, err := FindRoute(r.m, key.start, isDest)
	r.cache.Add(key, cachedRoute{route: route, err: err})
	return cloneRoute(route), err
}

// cloneRoute copies the steps: travellers pop from their path.
func cloneRoute(r Route) Route {
	if r.Steps == nil {
		return r
	}
	steps := make([]HexCoord, len(r.Steps))
	copy(steps, r.Steps)
	return Route{Dest: r.Dest, Steps: steps}
}
