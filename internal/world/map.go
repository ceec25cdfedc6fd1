package world

import "fmt"

// TileKind is the role a tile plays in the settlement.
type TileKind uint8

const (
	TileInactive  TileKind = iota // Empty lot, can be upgraded into a break shop
	TileActive                    // Office, spawns workers
	TileBreakShop                 // Serves waiting workers
	TileObstacle                  // Impassable
)

// String returns a human-readable name for a tile kind.
func (k TileKind) String() string {
	switch k {
	case TileInactive:
		return "Inactive"
	case TileActive:
		return "Office"
	case TileBreakShop:
		return "BreakShop"
	case TileObstacle:
		return "Obstacle"
	default:
		return "Unknown"
	}
}

// Tile is the state stored at one coordinate. The position is the map key.
type Tile struct {
	Kind TileKind `json:"kind"`

	// Office: consecutive ticks without spawning a worker.
	TicksWithoutWorker uint32 `json:"ticks_without_worker,omitempty"`

	// Break shop: ticks left before it can serve again.
	ServiceCooldown uint32 `json:"service_cooldown,omitempty"`

	// Relief is a smooth noise value in [0, 1] for shading; no gameplay effect.
	Relief float64 `json:"relief"`
}

// Passable reports whether workers may step onto the tile.
func (t *Tile) Passable() bool {
	return t != nil && t.Kind != TileObstacle
}

// Map holds the settlement's tiles keyed by coordinate.
type Map struct {
	tiles map[HexCoord]*Tile
	order []HexCoord // insertion order, for deterministic iteration

	// Rings is the largest ring radius materialized so far.
	Rings int `json:"rings"`

	// Version increases on every write; caches key on it.
	Version uint64 `json:"version"`
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		tiles: make(map[HexCoord]*Tile),
	}
}

// Get returns the tile at the given coordinate. A missing tile is not an
// error: it simply has not been generated.
func (m *Map) Get(coord HexCoord) (*Tile, bool) {
	t, ok := m.tiles[coord]
	return t, ok
}

// Kind returns the kind at coord and whether the tile exists.
func (m *Map) Kind(coord HexCoord) (TileKind, bool) {
	t, ok := m.tiles[coord]
	if !ok {
		return 0, false
	}
	return t.Kind, true
}

// Set places a tile at the given coordinate, replacing any previous value.
// A replaced coordinate keeps its place in iteration order.
func (m *Map) Set(coord HexCoord, tile *Tile) {
	if _, exists := m.tiles[coord]; !exists {
		m.order = append(m.order, coord)
	}
	m.tiles[coord] = tile
	m.Version++
}

// Passable returns true if the coordinate holds a tile workers can walk on.
func (m *Map) Passable(coord HexCoord) bool {
	return m.tiles[coord].Passable()
}

// Is returns true if the coordinate holds a tile of the given kind.
func (m *Map) Is(coord HexCoord, kind TileKind) bool {
	t, ok := m.tiles[coord]
	return ok && t.Kind == kind
}

// Coords returns all coordinates in insertion order.
func (m *Map) Coords() []HexCoord {
	out := make([]HexCoord, len(m.order))
	copy(out, m.order)
	return out
}

// Each calls fn for every tile in insertion order.
func (m *Map) Each(fn func(HexCoord, *Tile)) {
	for _, c := range m.order {
		fn(c, m.tiles[c])
	}
}

// CountKind returns the number of tiles of the given kind.
func (m *Map) CountKind(kind TileKind) int {
	n := 0
	for _, t := range m.tiles {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// ObstacleNeighbors counts materialized Obstacle tiles around coord.
func (m *Map) ObstacleNeighbors(coord HexCoord) int {
	n := 0
	for _, nb := range coord.Neighbors() {
		if m.Is(nb, TileObstacle) {
			n++
		}
	}
	return n
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.tiles)
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(rings=%d, tiles=%d)", m.Rings, m.TileCount())
}
