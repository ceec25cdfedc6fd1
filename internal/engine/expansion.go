package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/breakroom/internal/world"
)

// Expand grows the map by one ring and raises the upgrade capacity by
// min(rings-1, MaxShopsIncrease). It returns the new radius.
func (s *Simulation) Expand() int {
	if s.over {
		return s.Map.Rings
	}

	radius, added := s.gen.NextRing(s.Map)

	inc := min(radius-1, s.cfg.MaxShopsIncrease)
	if inc > 0 {
		s.capMax += uint32(inc)
	}

	s.emit(Event{
		Kind:        EventRingGenerated,
		Radius:      radius,
		Description: fmt.Sprintf("ring %d generated (%d tiles)", radius, len(added)),
	})

	slog.Info("ring generated",
		"radius", radius,
		"tiles", len(added),
		"offices", s.Map.CountKind(world.TileActive),
		"capacity_used", s.capUsed,
		"capacity_max", s.capMax,
		"next_in", s.timer.Duration(),
	)
	return radius
}
