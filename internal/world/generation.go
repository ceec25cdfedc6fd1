// Ring generation: the map grows one hex ring at a time, each new tile drawn
// from a weight table chosen by how many obstacles already surround it.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/breakroom/internal/entropy"
)

// RingChoices lists the kinds a ring tile can become, in weight-column order.
var RingChoices = [3]TileKind{TileInactive, TileActive, TileObstacle}

// WeightTable holds relative weights over RingChoices, one row per bucket of
// obstacle neighbours (0, 1, 2 or more).
type WeightTable [3][3]uint32

// DefaultWeights is the tuned table: open ground breeds offices, obstacles
// cluster.
var DefaultWeights = WeightTable{
	{40, 40, 20},
	{50, 10, 40},
	{25, 0, 75},
}

// GenConfig holds map generation parameters.
type GenConfig struct {
	Seed           int64       // Random seed (0 = random)
	StartObstacles int         // Obstacles among the origin's neighbours
	Weights        WeightTable // Ring weights by obstacle-neighbour bucket
}

// DefaultGenConfig returns the standard configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Seed:           0,
		StartObstacles: 2,
		Weights:        DefaultWeights,
	}
}

// Generator materializes the starting map and each following ring.
type Generator struct {
	cfg    GenConfig
	rng    *rand.Rand
	relief opensimplex.Noise
}

// NewGenerator creates a generator. Seed 0 picks a random seed.
func NewGenerator(cfg GenConfig) *Generator {
	seed := entropy.ResolveSeed(cfg.Seed)
	return &Generator{
		cfg:    cfg,
		rng:    entropy.New(seed, entropy.OffsetGenerator),
		relief: opensimplex.NewNormalized(seed),
	}
}

// StartingMap builds radius 1 by hand: an office at the origin, one break
// shop next to it, StartObstacles obstacles and the rest inactive.
func (g *Generator) StartingMap() *Map {
	m := NewMap()
	m.Set(Origin, g.newTile(Origin, TileActive))

	neigh := Origin.Neighbors()
	kinds := make([]TileKind, len(neigh))
	for i := range kinds {
		kinds[i] = TileInactive
	}
	obstacles := min(max(g.cfg.StartObstacles, 0), len(neigh)-1)

	perm := g.rng.Perm(len(neigh))
	kinds[perm[0]] = TileBreakShop
	for _, idx := range perm[1 : 1+obstacles] {
		kinds[idx] = TileObstacle
	}
	for i, c := range neigh {
		m.Set(c, g.newTile(c, kinds[i]))
	}
	m.Rings = 1
	return m
}

// NextRing grows the map by one ring and returns the new radius and the
// coordinates it added, in ring order.
//
// Every choice is computed against the map as it was before the ring, and
// only then committed: tiles of the same ring never see each other.
func (g *Generator) NextRing(m *Map) (int, []HexCoord) {
	radius := m.Rings + 1
	coords := Ring(Origin, radius)

	kinds := make([]TileKind, len(coords))
	for i, c := range coords {
		bucket := min(m.ObstacleNeighbors(c), len(g.cfg.Weights)-1)
		kinds[i] = g.pick(g.cfg.Weights[bucket])
	}

	for i, c := range coords {
		m.Set(c, g.newTile(c, kinds[i]))
	}
	m.Rings = radius
	return radius, coords
}

// pick samples one kind from a weight row.
func (g *Generator) pick(row [3]uint32) TileKind {
	var total uint32
	for _, w := range row {
		total += w
	}
	if total == 0 {
		return TileInactive
	}
	n := uint32(g.rng.Int63n(int64(total)))
	for i, w := range row {
		if n < w {
			return RingChoices[i]
		}
		n -= w
	}
	return RingChoices[len(RingChoices)-1]
}

func (g *Generator) newTile(c HexCoord, kind TileKind) *Tile {
	// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
	x := float64(c.Q) + float64(c.R)*0.5
	y := float64(c.R) * math.Sqrt(3.0) / 2.0
	return &Tile{
		Kind:   kind,
		Relief: octaveNoise(g.relief, x, y, 3, 0.15, 0.5),
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// KindCounts returns a summary of tile kind distribution.
func KindCounts(m *Map) map[TileKind]int {
	counts := make(map[TileKind]int)
	m.Each(func(_ HexCoord, t *Tile) {
		counts[t.Kind]++
	})
	return counts
}
