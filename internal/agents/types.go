// Package agents provides the worker data model, spawning and reward policy.
package agents

import (
	"github.com/talgya/breakroom/internal/world"
)

// WorkerID is a unique identifier for a worker within one run.
type WorkerID uint64

// State is a worker's lifecycle stage.
type State uint8

const (
	StateTraveling State = iota
	StateWaiting
	StateServed
	StateExpired
	StateGone
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateTraveling:
		return "Traveling"
	case StateWaiting:
		return "Waiting"
	case StateServed:
		return "Served"
	case StateExpired:
		return "Expired"
	case StateGone:
		return "Gone"
	default:
		return "Unknown"
	}
}

// Heading is where a traveling worker is going.
type Heading uint8

const (
	HeadingCoffee Heading = iota
	HeadingHome
)

// String returns a human-readable heading.
func (h Heading) String() string {
	if h == HeadingHome {
		return "home"
	}
	return "coffee"
}

// Worker is one round trip from an office to a break shop and back.
// Home and CoffeeTarget are plain coordinates, looked up afresh each tick.
type Worker struct {
	ID WorkerID `json:"id"`

	Home         world.HexCoord `json:"home"`
	CoffeeTarget world.HexCoord `json:"coffee_target"`
	Position     world.HexCoord `json:"position"`

	// Destination first; the next step is at the back.
	RemainingPath []world.HexCoord `json:"remaining_path"`

	HasBeenServed bool   `json:"has_been_served"`
	Reward        uint64 `json:"reward"`

	State       State   `json:"state"`
	Heading     Heading `json:"heading"`
	TicksWaited uint32  `json:"ticks_waited"`
	StepTicks   uint32  `json:"step_ticks"` // ticks left before the next step

	SpawnedAt uint64 `json:"spawned_at"` // tick
}

// PopStep removes and returns the next coordinate on the path.
func (w *Worker) PopStep() (world.HexCoord, bool) {
	n := len(w.RemainingPath)
	if n == 0 {
		return world.HexCoord{}, false
	}
	next := w.RemainingPath[n-1]
	w.RemainingPath = w.RemainingPath[:n-1]
	return next, true
}

// Gone reports whether the worker has despawned.
func (w *Worker) Gone() bool {
	return w.State == StateGone
}

// Snapshot returns a copy safe to hand to callers.
func (w *Worker) Snapshot() Worker {
	c := *w
	c.RemainingPath = append([]world.HexCoord(nil), w.RemainingPath...)
	return c
}
