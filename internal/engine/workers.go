package engine

import (
	"fmt"

	"github.com/talgya/breakroom/internal/agents"
)

// expireWorkers ages every waiting worker and charges for those that waited
// too long. It returns false if a charge made the ledger insolvent.
func (s *Simulation) expireWorkers() bool {
	waiting := 0
	for _, w := range s.workers {
		if w.State != agents.StateWaiting {
			continue
		}
		w.TicksWaited++
		if w.TicksWaited < s.cfg.MaxWaitingTicks {
			waiting++
			continue
		}

		w.State = agents.StateExpired
		s.Stats.Expired++
		s.emit(Event{
			Kind:        EventWorkerExpired,
			Coord:       w.Position,
			Worker:      w.ID,
			Description: fmt.Sprintf("worker %d gave up waiting at %v", w.ID, w.CoffeeTarget),
		})

		err := s.ledger.Debit(s.cfg.OverwaitFee)
		w.State = agents.StateGone
		if err != nil {
			s.gameOver(err)
			return false
		}
		s.Stats.Penalties += s.cfg.OverwaitFee
		s.moneyChanged(-int64(s.cfg.OverwaitFee), w.Position)
	}
	s.Stats.PeakWaiting = max(s.Stats.PeakWaiting, waiting)
	return true
}

// moveWorkers advances every traveling worker by at most one tile.
func (s *Simulation) moveWorkers() {
	for _, w := range s.workers {
		if w.State == agents.StateServed {
			w.State = agents.StateTraveling
		}
		if w.State != agents.StateTraveling {
			continue
		}

		if w.StepTicks > 0 {
			w.StepTicks--
			continue
		}

		if next, ok := w.PopStep(); ok {
			w.Position = next
			if s.cfg.TicksPerStep > 0 {
				w.StepTicks = s.cfg.TicksPerStep - 1
			}
			s.emit(Event{
				Kind:   EventWorkerMoved,
				Coord:  next,
				Worker: w.ID,
			})
			continue
		}

		if w.HasBeenServed {
			w.State = agents.StateGone
			s.Stats.Returned++
			s.emit(Event{
				Kind:        EventWorkerReturned,
				Coord:       w.Position,
				Worker:      w.ID,
				Description: fmt.Sprintf("worker %d is back at %v", w.ID, w.Home),
			})
			continue
		}

		w.State = agents.StateWaiting
		w.TicksWaited = 0
		s.emit(Event{
			Kind:        EventWorkerArrived,
			Coord:       w.Position,
			Worker:      w.ID,
			Description: fmt.Sprintf("worker %d queues at %v", w.ID, w.CoffeeTarget),
		})
	}
}

// compactWorkers drops despawned workers, keeping spawn order.
func (s *Simulation) compactWorkers() {
	n := 0
	for _, w := range s.workers {
		if !w.Gone() {
			s.workers[n] = w
			n++
		}
	}
	clear(s.workers[n:])
	s.workers = s.workers[:n]
}
