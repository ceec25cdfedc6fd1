package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// filledMap materializes every coordinate up to radius as Inactive, with the
// origin as an office.
func filledMap(radius int) *Map {
	m := NewMap()
	for r := 0; r <= radius; r++ {
		for _, c := range Ring(Origin, r) {
			m.Set(c, &Tile{Kind: TileInactive})
		}
	}
	m.Set(Origin, &Tile{Kind: TileActive})
	m.Rings = radius
	return m
}

func assertWalkable(t *testing.T, m *Map, start HexCoord, route Route) {
	t.Helper()
	require.NotEmpty(t, route.Steps)
	assert.Equal(t, route.Dest, route.Steps[0], "path starts with the destination")

	prev := start
	for i := len(route.Steps) - 1; i >= 0; i-- {
		step := route.Steps[i]
		assert.Equal(t, 1, Distance(prev, step), "step %v not adjacent to %v", step, prev)
		assert.True(t, m.Passable(step), "step %v not passable", step)
		prev = step
	}
}

func TestFindRouteAdjacentShop(t *testing.T) {
	m := filledMap(1)
	shop := Origin.Neighbors()[2]
	m.Set(shop, &Tile{Kind: TileBreakShop})

	route, err := FindRoute(m, Origin, ShopPredicate(m))
	require.NoError(t, err)
	assert.Equal(t, shop, route.Dest)
	assert.Equal(t, []HexCoord{shop}, route.Steps)
}

func TestFindRouteAroundObstacles(t *testing.T) {
	m := filledMap(3)
	shop := HexCoord{Q: 3, R: 0}
	m.Set(shop, &Tile{Kind: TileBreakShop})
	// Wall off the direct line.
	m.Set(HexCoord{Q: 1, R: 0}, &Tile{Kind: TileObstacle})
	m.Set(HexCoord{Q: 2, R: 0}, &Tile{Kind: TileObstacle})
	m.Set(HexCoord{Q: 1, R: -1}, &Tile{Kind: TileObstacle})

	route, err := FindRoute(m, Origin, ShopPredicate(m))
	require.NoError(t, err)
	assert.Equal(t, shop, route.Dest)
	assertWalkable(t, m, Origin, route)
	assert.Greater(t, route.Len(), Distance(Origin, shop))
}

func TestFindRouteNoRoute(t *testing.T) {
	m := filledMap(2)
	m.Set(HexCoord{Q: 2, R: 0}, &Tile{Kind: TileBreakShop})
	for _, nb := range Origin.Neighbors() {
		m.Set(nb, &Tile{Kind: TileObstacle})
	}

	_, err := FindRoute(m, Origin, ShopPredicate(m))
	assert.ErrorIs(t, err, ErrNoRoute)

	empty := filledMap(2)
	_, err = FindRoute(empty, Origin, ShopPredicate(empty))
	assert.ErrorIs(t, err, ErrNoRoute, "no shop at all")
}

func TestFindRouteNeverLeavesMap(t *testing.T) {
	m := filledMap(1)
	// Target outside the materialized map is unreachable.
	_, err := FindRoute(m, Origin, TargetPredicate(HexCoord{Q: 5, R: 0}))
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestFindRouteStartIsNotDestination(t *testing.T) {
	m := filledMap(2)
	m.Set(Origin, &Tile{Kind: TileBreakShop})
	other := HexCoord{Q: -2, R: 1}
	m.Set(other, &Tile{Kind: TileBreakShop})

	route, err := FindRoute(m, Origin, ShopPredicate(m))
	require.NoError(t, err)
	assert.Equal(t, other, route.Dest)
}

func TestFindRouteTieBreakFollowsNeighborOrder(t *testing.T) {
	m := filledMap(2)
	nb := Origin.Neighbors()
	// Two shops at the same distance; the one listed earlier wins.
	m.Set(nb[4], &Tile{Kind: TileBreakShop})
	m.Set(nb[1], &Tile{Kind: TileBreakShop})

	route, err := FindRoute(m, Origin, ShopPredicate(m))
	require.NoError(t, err)
	assert.Equal(t, nb[1], route.Dest)
}

func TestFindRouteLengthIsDepth(t *testing.T) {
	m := filledMap(4)
	shop := HexCoord{Q: -4, R: 2}
	m.Set(shop, &Tile{Kind: TileBreakShop})
	m.Set(HexCoord{Q: -1, R: 0}, &Tile{Kind: TileObstacle})
	m.Set(HexCoord{Q: -1, R: 1}, &Tile{Kind: TileObstacle})

	s := NewSearch(m.Passable, ShopPredicate(m), Origin)
	dest, ok := s.Find()
	require.True(t, ok)
	depth, ok := s.Depth(dest)
	require.True(t, ok)

	path := s.Path(dest)
	assert.Len(t, path, depth)
	assertWalkable(t, m, Origin, Route{Dest: dest, Steps: path})

	prev, ok := s.Backtrace(dest)
	require.True(t, ok)
	assert.Equal(t, path[1], prev)

	// Re-running from the first step gives a path one shorter.
	first := path[len(path)-1]
	again, err := FindRoute(m, first, ShopPredicate(m))
	require.NoError(t, err)
	assert.Len(t, again.Steps, len(path)-1)
}

func TestFindRouteFromFirstStepProperty(t *testing.T) {
	g := testGenerator(21)
	m := g.StartingMap()
	for i := 0; i < 5; i++ {
		g.NextRing(m)
	}

	checked := 0
	m.Each(func(c HexCoord, tile *Tile) {
		if tile.Kind != TileActive {
			return
		}
		route, err := FindRoute(m, c, ShopPredicate(m))
		if err != nil {
			return
		}
		assertWalkable(t, m, c, route)
		checked++
		if route.Len() < 2 {
			return
		}
		first := route.Steps[route.Len()-1]
		again, err := FindRoute(m, first, ShopPredicate(m))
		require.NoError(t, err)
		assert.Equal(t, route.Len()-1, again.Len(), "from %v via %v", c, first)
	})
	assert.Positive(t, checked)
}

func TestRouterCachesAndInvalidates(t *testing.T) {
	m := filledMap(3)
	far := HexCoord{Q: 3, R: -3}
	m.Set(far, &Tile{Kind: TileBreakShop})

	r, err := NewRouter(m, 16)
	require.NoError(t, err)

	first, err := r.NearestShop(Origin)
	require.NoError(t, err)
	assert.Equal(t, far, first.Dest)

	// Callers may consume their copy freely.
	first.Steps[0] = HexCoord{Q: 99, R: 99}
	second, err := r.NearestShop(Origin)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
	assert.Equal(t, far, second.Steps[0])

	hits, misses := r.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	near := Origin.Neighbors()[0]
	m.Set(near, &Tile{Kind: TileBreakShop})
	third, err := r.NearestShop(Origin)
	require.NoError(t, err)
	assert.Equal(t, near, third.Dest, "map write must invalidate cached routes")
}

func TestRouterRouteTo(t *testing.T) {
	m := filledMap(2)
	home := HexCoord{Q: -2, R: 0}
	m.Set(home, &Tile{Kind: TileActive})

	r, err := NewRouter(m, 0)
	require.NoError(t, err)

	route, err := r.RouteTo(Origin, home)
	require.NoError(t, err)
	assert.Equal(t, home, route.Dest)
	assert.Equal(t, 2, route.Len())

	_, err = r.RouteTo(Origin, HexCoord{Q: 9, R: 9})
	assert.ErrorIs(t, err, ErrNoRoute)
	_, err = r.RouteTo(Origin, HexCoord{Q: 9, R: 9})
	assert.ErrorIs(t, err, ErrNoRoute, "cached failures keep their error")
}
