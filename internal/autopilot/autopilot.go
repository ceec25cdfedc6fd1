// Package autopilot plays the upgrade command for headless runs: it opens a
// break shop next to whichever office is worst served.
package autopilot

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/talgya/breakroom/internal/engine"
	"github.com/talgya/breakroom/internal/entropy"
	"github.com/talgya/breakroom/internal/world"
)

// Config tunes the autopilot.
type Config struct {
	Seed int64
	// Offices whose nearest shop is closer than this are left alone.
	MinRouteLen int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{MinRouteLen: 3}
}

// Pilot decides and requests upgrades.
type Pilot struct {
	cfg Config
	rng *rand.Rand
}

// New creates a pilot. Seed 0 picks a random seed.
func New(cfg Config) *Pilot {
	return &Pilot{
		cfg: cfg,
		rng: entropy.New(entropy.ResolveSeed(cfg.Seed), entropy.OffsetAutopilot),
	}
}

const unreachable = int(^uint(0) >> 1)

// worstOffice returns the office with the longest or missing route to a
// break shop. Ties are broken at random.
func (p *Pilot) worstOffice(m *world.Map) (world.HexCoord, int, bool) {
	var (
		worst []world.HexCoord
		best  = -1
	)
	m.Each(func(c world.HexCoord, t *world.Tile) {
		if t.Kind != world.TileActive {
			return
		}
		n := unreachable
		route, err := world.FindRoute(m, c, world.ShopPredicate(m))
		if err == nil {
			n = route.Len()
		} else if !errors.Is(err, world.ErrNoRoute) {
			return
		}
		switch {
		case n > best:
			best = n
			worst = append(worst[:0], c)
		case n == best:
			worst = append(worst, c)
		}
	})
	if len(worst) == 0 {
		return world.HexCoord{}, 0, false
	}
	return worst[p.rng.Intn(len(worst))], best, true
}

// Pick chooses the tile to upgrade, if any.
func (p *Pilot) Pick(sim *engine.Simulation) (world.HexCoord, bool) {
	used, limit := sim.Capacity()
	if used >= limit {
		return world.HexCoord{}, false
	}

	office, dist, ok := p.worstOffice(sim.Map)
	if !ok || dist < p.cfg.MinRouteLen {
		return world.HexCoord{}, false
	}

	route, err := world.FindRoute(sim.Map, office, func(c world.HexCoord) bool {
		return sim.Map.Is(c, world.TileInactive)
	})
	if err != nil {
		slog.Debug("autopilot found no lot to upgrade", "office", office)
		return world.HexCoord{}, false
	}
	return route.Dest, true
}

// Step picks a tile and requests its upgrade. It reports whether an upgrade
// happened.
func (p *Pilot) Step(sim *engine.Simulation) bool {
	c, ok := p.Pick(sim)
	if !ok {
		return false
	}
	if !sim.RequestUpgrade(c) {
		return false
	}
	slog.Debug("autopilot upgraded", "coord", c)
	return true
}
