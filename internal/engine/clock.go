package engine

import (
	"fmt"
	"math"
	"time"
)

// ClockConfig sets up the in-game day.
type ClockConfig struct {
	StartMinute    uint32 // minute of day at tick 0
	MinutesPerTick uint32
	MinutesPerDay  uint32
}

// DefaultClockConfig starts the day at 07:00 and advances one minute per tick.
func DefaultClockConfig() ClockConfig {
	return ClockConfig{
		StartMinute:    7 * 60,
		MinutesPerTick: 1,
		MinutesPerDay:  24 * 60,
	}
}

// Clock counts ticks and derives the day and time of day from them.
type Clock struct {
	Tick uint64 // monotonic, never resets
	cfg  ClockConfig
}

// NewClock creates a clock at tick 0.
func NewClock(cfg ClockConfig) *Clock {
	if cfg.MinutesPerDay == 0 {
		cfg.MinutesPerDay = 24 * 60
	}
	return &Clock{cfg: cfg}
}

// Advance moves the clock forward by one tick and reports whether the day
// rolled over.
func (c *Clock) Advance() (tick uint64, newDay bool) {
	before := c.Day()
	c.Tick++
	return c.Tick, c.Day() != before
}

func (c *Clock) minutes() uint64 {
	return uint64(c.cfg.StartMinute) + c.Tick*uint64(c.cfg.MinutesPerTick)
}

// Day returns the 1-based day number.
func (c *Clock) Day() uint64 {
	return c.minutes()/uint64(c.cfg.MinutesPerDay) + 1
}

// TimeOfDay returns the wall time within the current day.
func (c *Clock) TimeOfDay() (hours, minutes uint32) {
	m := uint32(c.minutes() % uint64(c.cfg.MinutesPerDay))
	return m / 60, m % 60
}

// HourMinute returns the time of day as HH:MM.
func (c *Clock) HourMinute() string {
	h, m := c.TimeOfDay()
	return fmt.Sprintf("%02d:%02d", h, m)
}

// String returns e.g. "Day 2, 07:15".
func (c *Clock) String() string {
	return fmt.Sprintf("Day %d, %s", c.Day(), c.HourMinute())
}

// RingTimer counts down wall-clock time to the next ring expansion. Each
// expiry stretches the next countdown by Multiplier.
type RingTimer struct {
	Initial    time.Duration
	Multiplier float64

	Remaining time.Duration
	Fired     int
}

// NewRingTimer creates a timer with a full first countdown.
func NewRingTimer(initial time.Duration, multiplier float64) *RingTimer {
	return &RingTimer{
		Initial:    initial,
		Multiplier: multiplier,
		Remaining:  initial,
	}
}

// Duration returns the length of the current countdown:
// Initial × Multiplier^Fired.
func (t *RingTimer) Duration() time.Duration {
	return time.Duration(float64(t.Initial) * math.Pow(t.Multiplier, float64(t.Fired)))
}

// Update subtracts elapsed and reports whether the timer expired. It fires at
// most once per call; time past the expiry is discarded.
func (t *RingTimer) Update(elapsed time.Duration) bool {
	t.Remaining -= elapsed
	if t.Remaining > 0 {
		return false
	}
	t.Fired++
	t.Remaining = t.Duration()
	return true
}

// Progress returns the fraction of the current countdown still left, in [0, 1].
func (t *RingTimer) Progress() float64 {
	d := t.Duration()
	if d <= 0 {
		return 0
	}
	return min(max(float64(t.Remaining)/float64(d), 0), 1)
}
