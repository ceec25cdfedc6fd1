package agents

import "math"

// RewardPolicy maps a trip length to the amount credited on service.
// Reward = max(0, ceil(Base - Slope*length)).
type RewardPolicy struct {
	Base  float64 `yaml:"base" validate:"gte=0"`
	Slope float64 `yaml:"slope" validate:"gte=0"`
}

// DefaultRewardPolicy returns the policy used by a fresh run.
func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{Base: 2.5, Slope: 0.5}
}

// Reward returns the payout for a trip of pathLen steps. It never increases
// with length as long as Slope is non-negative, and is never negative.
func (p RewardPolicy) Reward(pathLen int) uint64 {
	v := math.Ceil(p.Base - p.Slope*float64(pathLen))
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return uint64(v)
}
