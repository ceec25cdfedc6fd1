package engine

import (
	"github.com/talgya/breakroom/internal/agents"
	"github.com/talgya/breakroom/internal/world"
)

// EventKind identifies what happened.
type EventKind uint8

const (
	EventRingGenerated EventKind = iota
	EventMoneyChanged
	EventTileUpgraded
	EventWorkerSpawned
	EventWorkerMoved
	EventWorkerArrived
	EventWorkerServed
	EventWorkerReturned
	EventWorkerExpired
	EventGameOver
)

var eventNames = [...]string{
	EventRingGenerated:  "ring_generated",
	EventMoneyChanged:   "money_changed",
	EventTileUpgraded:   "tile_upgraded",
	EventWorkerSpawned:  "worker_spawned",
	EventWorkerMoved:    "worker_moved",
	EventWorkerArrived:  "worker_arrived",
	EventWorkerServed:   "worker_served",
	EventWorkerReturned: "worker_returned",
	EventWorkerExpired:  "worker_expired",
	EventGameOver:       "game_over",
}

// String returns the event kind's snake_case name.
func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Category groups event kinds the way logs and the archive report them.
func (k EventKind) Category() string {
	switch k {
	case EventRingGenerated, EventTileUpgraded:
		return "world"
	case EventMoneyChanged:
		return "economy"
	case EventGameOver:
		return "game"
	default:
		return "worker"
	}
}

// Event is a notable occurrence, handed to the caller after each step.
// Only the fields relevant to Kind are set.
type Event struct {
	Tick        uint64          `json:"tick"`
	Kind        EventKind       `json:"kind"`
	Coord       world.HexCoord  `json:"coord"`
	Worker      agents.WorkerID `json:"worker,omitempty"`
	Radius      int             `json:"radius,omitempty"`
	Delta       int64           `json:"delta,omitempty"`
	Description string          `json:"description"`
}

// Category is a shortcut for e.Kind.Category().
func (e Event) Category() string {
	return e.Kind.Category()
}

// emit queues an event for the next Drain.
func (s *Simulation) emit(e Event) {
	e.Tick = s.clock.Tick
	s.outbox = append(s.outbox, e)
}

// Drain returns the events queued since the last call and clears the queue.
func (s *Simulation) Drain() []Event {
	out := s.outbox
	s.outbox = nil
	return out
}
