package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/breakroom/internal/world"
)

// RequestUpgrade turns the Inactive tile at c into a break shop, consuming
// one unit of upgrade capacity. Anything else is a silent no-op reported as
// false: a missing or non-Inactive tile, exhausted capacity, or a finished run.
func (s *Simulation) RequestUpgrade(c world.HexCoord) bool {
	if s.over {
		return false
	}
	if s.capUsed >= s.capMax {
		return false
	}
	tile, ok := s.Map.Get(c)
	if !ok || tile.Kind != world.TileInactive {
		return false
	}

	s.capUsed++
	s.Map.Set(c, &world.Tile{Kind: world.TileBreakShop, Relief: tile.Relief})
	s.Stats.Upgrades++

	s.emit(Event{
		Kind:        EventTileUpgraded,
		Coord:       c,
		Description: fmt.Sprintf("break shop opened at %v", c),
	})
	slog.Info("tile upgraded", "coord", c, "capacity_used", s.capUsed, "capacity_max", s.capMax)
	return true
}

// CanUpgrade reports whether RequestUpgrade(c) would succeed.
func (s *Simulation) CanUpgrade(c world.HexCoord) bool {
	if s.over || s.capUsed >= s.capMax {
		return false
	}
	return s.Map.Is(c, world.TileInactive)
}
