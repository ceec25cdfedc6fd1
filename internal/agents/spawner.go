package agents

import (
	"math/rand"

	"github.com/talgya/breakroom/internal/entropy"
	"github.com/talgya/breakroom/internal/world"
)

// SpawnConfig controls how often offices send out workers.
type SpawnConfig struct {
	Seed int64

	// Chance per tick is (BaseChance + ChanceIncrease*ticksWithoutWorker) / ChanceScale.
	BaseChance     uint32
	ChanceIncrease uint32
	ChanceScale    uint32

	Reward RewardPolicy
}

// DefaultSpawnConfig returns the spawn tuning of a fresh run.
func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		BaseChance:     9,
		ChanceIncrease: 1,
		ChanceScale:    200,
		Reward:         DefaultRewardPolicy(),
	}
}

// Spawner rolls spawn chances and creates workers.
type Spawner struct {
	cfg    SpawnConfig
	rng    *rand.Rand
	nextID WorkerID
}

// NewSpawner creates a worker spawner. Seed 0 picks a random seed.
func NewSpawner(cfg SpawnConfig) *Spawner {
	if cfg.ChanceScale == 0 {
		cfg.ChanceScale = 1
	}
	return &Spawner{
		cfg:    cfg,
		rng:    entropy.New(entropy.ResolveSeed(cfg.Seed), entropy.OffsetSpawner),
		nextID: 1,
	}
}

// Chance returns the spawn threshold for an office that has gone
// ticksWithout ticks without a worker, capped at the scale.
func (s *Spawner) Chance(ticksWithout uint32) uint32 {
	chance := uint64(s.cfg.BaseChance) + uint64(s.cfg.ChanceIncrease)*uint64(ticksWithout)
	if chance > uint64(s.cfg.ChanceScale) {
		return s.cfg.ChanceScale
	}
	return uint32(chance)
}

// Roll decides whether an office spawns a worker this tick.
func (s *Spawner) Roll(ticksWithout uint32) bool {
	return uint32(s.rng.Int63n(int64(s.cfg.ChanceScale))) < s.Chance(ticksWithout)
}

// Spawn creates a worker at home heading along route to a break shop.
func (s *Spawner) Spawn(home world.HexCoord, route world.Route, tick uint64) *Worker {
	id := s.nextID
	s.nextID++

	return &Worker{
		ID:            id,
		Home:          home,
		CoffeeTarget:  route.Dest,
		Position:      home,
		RemainingPath: route.Steps,
		Reward:        s.cfg.Reward.Reward(route.Len()),
		State:         StateTraveling,
		Heading:       HeadingCoffee,
		SpawnedAt:     tick,
	}
}

// Issued returns how many workers have been created.
func (s *Spawner) Issued() uint64 {
	return uint64(s.nextID - 1)
}
