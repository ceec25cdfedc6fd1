package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/breakroom/internal/world"
)

// spawnWorkers rolls every office's spawn chance. A successful roll resets
// the office streak even when no break shop is reachable.
func (s *Simulation) spawnWorkers(tick uint64) {
	s.Map.Each(func(c world.HexCoord, tile *world.Tile) {
		if tile.Kind != world.TileActive {
			return
		}
		if !s.spawner.Roll(tile.TicksWithoutWorker) {
			tile.TicksWithoutWorker++
			return
		}
		tile.TicksWithoutWorker = 0

		route, err := s.router.NearestShop(c)
		if err != nil {
			s.Stats.RouteFailures++
			slog.Debug("cannot find nearest break shop", "office", c, "error", err)
			return
		}

		w := s.spawner.Spawn(c, route, tick)
		s.workers = append(s.workers, w)
		s.Stats.Spawned++
		s.emit(Event{
			Kind:        EventWorkerSpawned,
			Coord:       c,
			Worker:      w.ID,
			Description: fmt.Sprintf("worker %d leaves %v for %v (%d steps)", w.ID, c, route.Dest, route.Len()),
		})
	})
}
