// Package engine runs the settlement simulation: a fixed-rate tick loop over
// the map, its workers and the ledger, plus the timer that grows the map.
package engine

import (
	"context"
	"log/slog"
	"time"
)

// DefaultTickRate is the number of simulation ticks per wall-clock second.
const DefaultTickRate = 8

// DefaultFrameInterval is how often Run wakes up to advance the simulation.
const DefaultFrameInterval = time.Second / 60

// Engine drives a Simulation forward in time.
type Engine struct {
	Sim *Simulation

	Speed         float64       // Multiplier: 1.0 = real-time, 0 = paused
	TickRate      float64       // Ticks per simulated second
	FrameInterval time.Duration // Real-time loop step
	Running       bool

	accumulator time.Duration

	// Callbacks, populated during setup.
	OnEvents func(events []Event) // After every Advance that produced events
	OnRing   func(radius int)     // After every expansion
}

// NewEngine creates an engine with default settings.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:           sim,
		Speed:         1.0,
		TickRate:      DefaultTickRate,
		FrameInterval: DefaultFrameInterval,
	}
}

// TickInterval returns the simulated time between ticks.
func (e *Engine) TickInterval() time.Duration {
	if e.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Duration(float64(time.Second) / e.TickRate)
}

// Advance moves simulated time forward by elapsed. The ring timer sees the
// whole span first and fires at most once; then as many fixed ticks run as
// fit in the accumulated time. It returns every event produced.
func (e *Engine) Advance(elapsed time.Duration) []Event {
	sim := e.Sim
	if over, _ := sim.Over(); over {
		return sim.Drain()
	}

	if sim.timer.Update(elapsed) {
		radius := sim.Expand()
		if e.OnRing != nil {
			e.OnRing(radius)
		}
	}

	var events []Event
	interval := e.TickInterval()
	e.accumulator += elapsed
	for e.accumulator >= interval {
		e.accumulator -= interval
		events = append(events, sim.Tick()...)
		if over, _ := sim.Over(); over {
			e.accumulator = 0
			break
		}
	}
	events = append(events, sim.Drain()...)

	if len(events) > 0 && e.OnEvents != nil {
		e.OnEvents(events)
	}
	return events
}

// Run advances the simulation in real time until ctx is done, Stop is called
// or the game ends. It returns ErrGameOver in the last case.
func (e *Engine) Run(ctx context.Context) error {
	e.Running = true
	defer func() { e.Running = false }()
	slog.Info("simulation engine started", "tick", e.Sim.CurrentTick(), "speed", e.Speed)

	last := time.Now()
	for e.Running {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Sim.CurrentTick(), "reason", ctx.Err())
			return nil
		default:
		}

		if e.Speed <= 0 {
			// Paused, sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			last = time.Now()
			continue
		}

		start := time.Now()
		e.Advance(time.Duration(float64(start.Sub(last)) * e.Speed))
		last = start

		if over, _ := e.Sim.Over(); over {
			slog.Info("simulation engine stopped", "tick", e.Sim.CurrentTick(), "reason", "game over")
			return ErrGameOver
		}

		// Sleep for the remainder of the frame.
		if spent := time.Since(start); spent < e.FrameInterval {
			time.Sleep(e.FrameInterval - spent)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Sim.CurrentTick())
	return nil
}

// Stop halts the Run loop.
func (e *Engine) Stop() {
	e.Running = false
}

// RunTicks runs n ticks without waiting, each one advancing simulated time
// by one tick interval. It returns ErrGameOver if the game ends first.
func (e *Engine) RunTicks(n int) error {
	interval := e.TickInterval()
	for i := 0; i < n; i++ {
		e.Advance(interval)
		if over, _ := e.Sim.Over(); over {
			return ErrGameOver
		}
	}
	return nil
}
