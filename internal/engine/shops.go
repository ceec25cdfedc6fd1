package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/breakroom/internal/agents"
	"github.com/talgya/breakroom/internal/world"
)

// serveWorkers lets every idle break shop serve at most one waiting worker.
// Shops are visited in map order and workers in spawn order; a worker
// claimed by one shop is not offered to another in the same tick.
func (s *Simulation) serveWorkers() {
	claimed := make(map[agents.WorkerID]struct{}, 2)

	s.Map.Each(func(c world.HexCoord, tile *world.Tile) {
		if tile.Kind != world.TileBreakShop {
			return
		}
		if tile.ServiceCooldown != 0 {
			tile.ServiceCooldown--
			return
		}

		for _, w := range s.workers {
			if w.State != agents.StateWaiting || w.CoffeeTarget != c {
				continue
			}
			if _, ok := claimed[w.ID]; ok {
				continue
			}

			route, err := s.router.RouteTo(c, w.Home)
			if err != nil {
				s.Stats.RouteFailures++
				slog.Warn("cannot route worker home", "worker", w.ID, "shop", c, "home", w.Home, "error", err)
				continue
			}

			claimed[w.ID] = struct{}{}
			s.serve(tile, w, route)
			return
		}
	})
}

func (s *Simulation) serve(shop *world.Tile, w *agents.Worker, home world.Route) {
	shop.ServiceCooldown = s.cfg.WaitTicksAfterServing

	w.State = agents.StateServed
	w.Heading = agents.HeadingHome
	w.HasBeenServed = true
	w.RemainingPath = home.Steps
	w.StepTicks = 0

	s.ledger.Credit(w.Reward)
	s.Stats.Served++
	s.Stats.Earned += w.Reward

	s.emit(Event{
		Kind:        EventWorkerServed,
		Coord:       w.CoffeeTarget,
		Worker:      w.ID,
		Description: fmt.Sprintf("worker %d served at %v after %d ticks", w.ID, w.CoffeeTarget, w.TicksWaited),
	})
	s.moneyChanged(int64(w.Reward), w.CoffeeTarget)
}

// moneyChanged reports a non-zero balance change.
func (s *Simulation) moneyChanged(delta int64, at world.HexCoord) {
	if delta == 0 {
		return
	}
	s.emit(Event{
		Kind:        EventMoneyChanged,
		Coord:       at,
		Delta:       delta,
		Description: fmt.Sprintf("balance %+d, now %d", delta, s.ledger.Balance()),
	})
}
