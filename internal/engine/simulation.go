// Simulation ties together the map, workers and ledger and runs them each tick.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/breakroom/internal/agents"
	"github.com/talgya/breakroom/internal/economy"
	"github.com/talgya/breakroom/internal/entropy"
	"github.com/talgya/breakroom/internal/world"
)

// ErrGameOver is returned by runners once the ledger has gone insolvent.
var ErrGameOver = errors.New("game over")

// Config holds every tunable of a run.
type Config struct {
	Seed int64

	Gen   world.GenConfig
	Spawn agents.SpawnConfig
	Clock ClockConfig

	RingTimer      time.Duration // first countdown
	RingMultiplier float64

	WaitTicksAfterServing uint32 // shop cooldown after serving
	MaxWaitingTicks       uint32 // a worker waiting this long expires
	OverwaitFee           uint64 // debited on expiry

	StartingBalance  uint64
	StartingCapacity uint32 // upgrade capacity before any ring grows
	MaxShopsIncrease int    // cap on capacity gained per ring

	TicksPerStep   uint32 // ticks a worker spends on each tile
	RouteCacheSize int
}

// DefaultConfig returns the tuning of a standard run.
func DefaultConfig() Config {
	return Config{
		Gen:                   world.DefaultGenConfig(),
		Spawn:                 agents.DefaultSpawnConfig(),
		Clock:                 DefaultClockConfig(),
		RingTimer:             10 * time.Second,
		RingMultiplier:        1.2,
		WaitTicksAfterServing: 3,
		MaxWaitingTicks:       50,
		OverwaitFee:           5,
		StartingBalance:       0,
		StartingCapacity:      1,
		MaxShopsIncrease:      3,
		TicksPerStep:          8,
		RouteCacheSize:        world.DefaultRouteCacheSize,
	}
}

// Stats tracks run totals.
type Stats struct {
	Spawned       uint64 `json:"spawned"`
	Served        uint64 `json:"served"`
	Returned      uint64 `json:"returned"`
	Expired       uint64 `json:"expired"`
	RouteFailures uint64 `json:"route_failures"`
	Upgrades      uint64 `json:"upgrades"`
	Earned        uint64 `json:"earned"`
	Penalties     uint64 `json:"penalties"`
	PeakWaiting   int    `json:"peak_waiting"`
}

// Simulation holds the complete run state. It is not safe for concurrent use.
type Simulation struct {
	cfg Config

	Map     *world.Map
	gen     *world.Generator
	router  *world.Router
	spawner *agents.Spawner
	ledger  *economy.Ledger
	clock   *Clock
	timer   *RingTimer

	workers []*agents.Worker // spawn order

	capUsed, capMax uint32

	over       bool
	overReason string

	outbox []Event
	Stats  Stats
}

// NewSimulation builds the starting map and everything that acts on it.
// Seed 0 in cfg picks a random seed; Seed reports the one in use.
func NewSimulation(cfg Config) (*Simulation, error) {
	cfg.Seed = entropy.ResolveSeed(cfg.Seed)
	cfg.Gen.Seed = cfg.Seed
	cfg.Spawn.Seed = cfg.Seed
	if cfg.RingMultiplier <= 1 {
		return nil, fmt.Errorf("ring multiplier %.2f must be greater than 1", cfg.RingMultiplier)
	}
	if cfg.RingTimer <= 0 {
		return nil, fmt.Errorf("ring timer %s must be positive", cfg.RingTimer)
	}

	gen := world.NewGenerator(cfg.Gen)
	m := gen.StartingMap()

	router, err := world.NewRouter(m, cfg.RouteCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	sim := &Simulation{
		cfg:     cfg,
		Map:     m,
		gen:     gen,
		router:  router,
		spawner: agents.NewSpawner(cfg.Spawn),
		ledger:  economy.NewLedger(cfg.StartingBalance),
		clock:   NewClock(cfg.Clock),
		timer:   NewRingTimer(cfg.RingTimer, cfg.RingMultiplier),
		capUsed: 1, // the starting break shop
		capMax:  max(cfg.StartingCapacity, 1),
	}

	slog.Info("simulation created",
		"seed", cfg.Seed,
		"tiles", m.TileCount(),
		"offices", m.CountKind(world.TileActive),
		"time", sim.clock.String(),
	)
	return sim, nil
}

// Tick runs one simulation tick and returns the events it produced, together
// with anything queued since the last drain. After game over it does nothing.
//
// Order: office spawns, shop service, expiry, travel. Service runs before
// expiry so a worker served this tick is never counted as waiting.
func (s *Simulation) Tick() []Event {
	if s.over {
		return s.Drain()
	}

	tick, newDay := s.clock.Advance()

	s.spawnWorkers(tick)
	s.serveWorkers()
	if !s.expireWorkers() {
		return s.Drain()
	}
	s.moveWorkers()
	s.compactWorkers()

	if newDay {
		s.dailyReport()
	}
	return s.Drain()
}

// gameOver ends the run. Every later tick and command is a no-op.
func (s *Simulation) gameOver(reason error) {
	s.over = true
	s.overReason = reason.Error()
	s.emit(Event{
		Kind:        EventGameOver,
		Description: fmt.Sprintf("game over: %s", reason),
	})
	slog.Info("game over",
		"tick", s.clock.Tick,
		"time", s.clock.String(),
		"reason", reason,
		"rings", s.Map.Rings,
		"served", s.Stats.Served,
	)
}

func (s *Simulation) dailyReport() {
	waiting := 0
	for _, w := range s.workers {
		if w.State == agents.StateWaiting {
			waiting++
		}
	}
	hits, misses := s.router.Stats()
	slog.Info("daily report",
		"tick", s.clock.Tick,
		"time", s.clock.String(),
		"balance", humanize.Comma(int64(s.ledger.Balance())),
		"rings", s.Map.Rings,
		"workers", len(s.workers),
		"waiting", waiting,
		"served", s.Stats.Served,
		"expired", s.Stats.Expired,
		"route_cache_hits", hits,
		"route_cache_misses", misses,
	)
}

// Tile returns a copy of the tile at c.
func (s *Simulation) Tile(c world.HexCoord) (world.Tile, bool) {
	t, ok := s.Map.Get(c)
	if !ok {
		return world.Tile{}, false
	}
	return *t, true
}

// TileView is one entry of a map snapshot.
type TileView struct {
	Coord world.HexCoord `json:"coord"`
	Tile  world.Tile     `json:"tile"`
}

// Tiles returns every materialized tile in insertion order.
func (s *Simulation) Tiles() []TileView {
	out := make([]TileView, 0, s.Map.TileCount())
	s.Map.Each(func(c world.HexCoord, t *world.Tile) {
		out = append(out, TileView{Coord: c, Tile: *t})
	})
	return out
}

// Rings returns the number of generated rings.
func (s *Simulation) Rings() int { return s.Map.Rings }

// Balance returns the ledger balance.
func (s *Simulation) Balance() uint64 { return s.ledger.Balance() }

// Ledger exposes lifetime totals.
func (s *Simulation) Ledger() *economy.Ledger { return s.ledger }

// TimeString returns the in-game day and time, e.g. "Day 1, 07:00".
func (s *Simulation) TimeString() string { return s.clock.String() }

// CurrentTick returns the number of ticks processed.
func (s *Simulation) CurrentTick() uint64 { return s.clock.Tick }

// Capacity returns how many upgrades have been used out of the maximum.
func (s *Simulation) Capacity() (used, limit uint32) { return s.capUsed, s.capMax }

// Workers returns a snapshot of live workers in spawn order.
func (s *Simulation) Workers() []agents.Worker {
	out := make([]agents.Worker, 0, len(s.workers))
	for _, w := range s.workers {
		if !w.Gone() {
			out = append(out, w.Snapshot())
		}
	}
	return out
}

// RingProgress returns the fraction of the ring countdown still left.
func (s *Simulation) RingProgress() float64 { return s.timer.Progress() }

// RingTimer exposes the expansion countdown.
func (s *Simulation) RingTimer() *RingTimer { return s.timer }

// Over reports whether the run has ended, and why.
func (s *Simulation) Over() (bool, string) { return s.over, s.overReason }

// Seed returns the seed the run was built from.
func (s *Simulation) Seed() int64 { return s.cfg.Seed }

// RouteStats returns route cache hits and misses.
func (s *Simulation) RouteStats() (hits, misses uint64) { return s.router.Stats() }
