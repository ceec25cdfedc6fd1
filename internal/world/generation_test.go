package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGenerator(seed int64) *Generator {
	cfg := DefaultGenConfig()
	cfg.Seed = seed
	return NewGenerator(cfg)
}

func TestStartingMap(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		m := testGenerator(seed).StartingMap()

		require.Equal(t, 1, m.Rings)
		require.Equal(t, 7, m.TileCount())
		assert.True(t, m.Is(Origin, TileActive), "origin must be an office")

		counts := map[TileKind]int{}
		for _, nb := range Origin.Neighbors() {
			k, ok := m.Kind(nb)
			require.True(t, ok)
			counts[k]++
		}
		assert.Equal(t, 1, counts[TileBreakShop], "seed %d", seed)
		assert.Equal(t, 2, counts[TileObstacle], "seed %d", seed)
		assert.Equal(t, 3, counts[TileInactive], "seed %d", seed)
	}
}

func TestStartingMapObstacleClamp(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 3
	cfg.StartObstacles = 9
	m := NewGenerator(cfg).StartingMap()

	counts := KindCounts(m)
	assert.Equal(t, 5, counts[TileObstacle])
	assert.Equal(t, 1, counts[TileBreakShop])
}

func TestNextRingHasNoHoles(t *testing.T) {
	g := testGenerator(42)
	m := g.StartingMap()

	for i := 0; i < 6; i++ {
		radius, added := g.NextRing(m)
		assert.Equal(t, m.Rings, radius)
		assert.Len(t, added, 6*radius)
	}

	for r := 0; r <= m.Rings; r++ {
		for _, c := range Ring(Origin, r) {
			_, ok := m.Get(c)
			assert.True(t, ok, "missing %v at radius %d", c, r)
		}
	}
	m.Each(func(c HexCoord, _ *Tile) {
		assert.LessOrEqual(t, Distance(Origin, c), m.Rings)
	})

	total := 1
	for r := 1; r <= m.Rings; r++ {
		total += 6 * r
	}
	assert.Equal(t, total, m.TileCount())
}

func TestNextRingIsDeterministic(t *testing.T) {
	a, b := testGenerator(7), testGenerator(7)
	ma, mb := a.StartingMap(), b.StartingMap()
	for i := 0; i < 4; i++ {
		a.NextRing(ma)
		b.NextRing(mb)
	}
	for _, c := range ma.Coords() {
		ka, _ := ma.Kind(c)
		kb, _ := mb.Kind(c)
		assert.Equal(t, ka, kb, "coordinate %v", c)
	}
}

func TestNextRingUsesPreviousRingSnapshot(t *testing.T) {
	// Row 0 always yields Obstacle, every other row always yields Inactive.
	// Ring 1 holds no obstacles, so every ring 2 tile must come out of row 0.
	// If same-ring tiles saw each other, the second tile onward would land in
	// row 1 and turn Inactive.
	cfg := DefaultGenConfig()
	cfg.Seed = 11
	cfg.Weights = WeightTable{
		{0, 0, 1},
		{1, 0, 0},
		{1, 0, 0},
	}
	g := NewGenerator(cfg)

	m := NewMap()
	m.Set(Origin, &Tile{Kind: TileActive})
	for _, nb := range Origin.Neighbors() {
		m.Set(nb, &Tile{Kind: TileInactive})
	}
	m.Rings = 1

	_, added := g.NextRing(m)
	for _, c := range added {
		k, _ := m.Kind(c)
		assert.Equal(t, TileObstacle, k, "coordinate %v", c)
	}
}

func TestNextRingWeightBuckets(t *testing.T) {
	// Bucket 0 -> Office, bucket 1 -> Inactive, bucket 2+ -> Obstacle.
	cfg := DefaultGenConfig()
	cfg.Seed = 5
	cfg.Weights = WeightTable{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 1},
	}
	g := NewGenerator(cfg)

	m := NewMap()
	m.Set(Origin, &Tile{Kind: TileActive})
	for _, nb := range Origin.Neighbors() {
		m.Set(nb, &Tile{Kind: TileObstacle})
	}
	m.Rings = 1

	_, added := g.NextRing(m)

	// Corners of ring 2 touch one ring-1 tile, edges touch two.
	for i, c := range added {
		k, _ := m.Kind(c)
		if i%2 == 0 {
			assert.Equal(t, TileInactive, k, "corner %v", c)
		} else {
			assert.Equal(t, TileObstacle, k, "edge %v", c)
		}
	}
}

func TestReliefInRange(t *testing.T) {
	g := testGenerator(9)
	m := g.StartingMap()
	g.NextRing(m)
	m.Each(func(c HexCoord, tile *Tile) {
		assert.GreaterOrEqual(t, tile.Relief, 0.0, "relief at %v", c)
		assert.LessOrEqual(t, tile.Relief, 1.0, "relief at %v", c)
	})
}
