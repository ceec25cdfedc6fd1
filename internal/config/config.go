// Package config loads run settings: built-in defaults, then an optional YAML
// file, then BREAKROOM_* environment variables (a .env file is honoured).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/talgya/breakroom/internal/agents"
	"github.com/talgya/breakroom/internal/engine"
	"github.com/talgya/breakroom/internal/world"
)

// SpawnConfig tunes office spawn chances.
type SpawnConfig struct {
	BaseChance     uint32 `yaml:"base_chance"`
	ChanceIncrease uint32 `yaml:"chance_increase"`
	ChanceScale    uint32 `yaml:"chance_scale" validate:"gte=1"`
}

// Config holds the application configuration.
type Config struct {
	Seed int64 `yaml:"seed"` // 0 = random

	TickRate       float64 `yaml:"tick_rate" validate:"gt=0,lte=1000"`
	MinutesPerTick uint32  `yaml:"minutes_per_tick" validate:"gte=1,lte=1440"`
	StartMinute    uint32  `yaml:"start_minute" validate:"lt=1440"`
	TicksPerStep   uint32  `yaml:"ticks_per_step"`

	Spawn          SpawnConfig         `yaml:"spawn"`
	Reward         agents.RewardPolicy `yaml:"reward"`
	RingWeights    [3][3]uint32        `yaml:"ring_weights" validate:"dive,weightrow"`
	StartObstacles int                 `yaml:"start_obstacles" validate:"gte=0,lte=5"`

	WaitTicksAfterServing uint32 `yaml:"wait_ticks_after_serving"`
	MaxWaitingTicks       uint32 `yaml:"max_waiting_ticks" validate:"gte=1"`
	OverwaitFee           uint64 `yaml:"overwait_fee"`

	RingTimer      time.Duration `yaml:"ring_timer" validate:"gt=0"`
	RingMultiplier float64       `yaml:"ring_multiplier" validate:"gt=1"`

	StartingBalance  uint64 `yaml:"starting_balance"`
	StartingCapacity uint32 `yaml:"starting_capacity" validate:"gte=1"`
	MaxShopsIncrease int    `yaml:"max_shops_increase" validate:"gte=0"`
	RouteCacheSize   int    `yaml:"route_cache_size" validate:"gte=1"`

	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	ArchivePath string `yaml:"archive_path"`
	MetricsFile string `yaml:"metrics_file"`
	Autopilot   bool   `yaml:"autopilot"`
}

// Default returns the settings of a standard run.
func Default() *Config {
	ec := engine.DefaultConfig()
	return &Config{
		TickRate:       engine.DefaultTickRate,
		MinutesPerTick: ec.Clock.MinutesPerTick,
		StartMinute:    ec.Clock.StartMinute,
		TicksPerStep:   ec.TicksPerStep,
		Spawn: SpawnConfig{
			BaseChance:     ec.Spawn.BaseChance,
			ChanceIncrease: ec.Spawn.ChanceIncrease,
			ChanceScale:    ec.Spawn.ChanceScale,
		},
		Reward:                ec.Spawn.Reward,
		RingWeights:           ec.Gen.Weights,
		StartObstacles:        ec.Gen.StartObstacles,
		WaitTicksAfterServing: ec.WaitTicksAfterServing,
		MaxWaitingTicks:       ec.MaxWaitingTicks,
		OverwaitFee:           ec.OverwaitFee,
		RingTimer:             ec.RingTimer,
		RingMultiplier:        ec.RingMultiplier,
		StartingBalance:       ec.StartingBalance,
		StartingCapacity:      ec.StartingCapacity,
		MaxShopsIncrease:      ec.MaxShopsIncrease,
		RouteCacheSize:        ec.RouteCacheSize,
		LogLevel:              "info",
		ArchivePath:           "breakroom.db",
	}
}

// Load builds the configuration. path may be empty; a named file must exist.
func Load(path string) (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = strings.ToLower(getEnv("BREAKROOM_LOG_LEVEL", c.LogLevel))
	c.ArchivePath = getEnv("BREAKROOM_ARCHIVE", c.ArchivePath)
	c.MetricsFile = getEnv("BREAKROOM_METRICS_FILE", c.MetricsFile)

	if v, ok := os.LookupEnv("BREAKROOM_SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BREAKROOM_SEED value: %w", err)
		}
		c.Seed = seed
	}
	if v, ok := os.LookupEnv("BREAKROOM_TICK_RATE"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid BREAKROOM_TICK_RATE value: %w", err)
		}
		c.TickRate = rate
	}
	if v, ok := os.LookupEnv("BREAKROOM_STARTING_BALANCE"); ok {
		bal, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid BREAKROOM_STARTING_BALANCE value: %w", err)
		}
		c.StartingBalance = bal
	}
	if v, ok := os.LookupEnv("BREAKROOM_AUTOPILOT"); ok {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid BREAKROOM_AUTOPILOT value: %w", err)
		}
		c.Autopilot = on
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("weightrow", validateWeightRow)
	return v
}

// validateWeightRow rejects a weight row that sums to zero.
func validateWeightRow(fl validator.FieldLevel) bool {
	row := fl.Field()
	var total uint64
	for i := 0; i < row.Len(); i++ {
		total += row.Index(i).Uint()
	}
	return total > 0
}

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Engine converts the settings into simulation tuning.
func (c *Config) Engine() engine.Config {
	ec := engine.DefaultConfig()
	ec.Seed = c.Seed
	ec.Gen = world.GenConfig{
		Seed:           c.Seed,
		StartObstacles: c.StartObstacles,
		Weights:        world.WeightTable(c.RingWeights),
	}
	ec.Spawn = agents.SpawnConfig{
		Seed:           c.Seed,
		BaseChance:     c.Spawn.BaseChance,
		ChanceIncrease: c.Spawn.ChanceIncrease,
		ChanceScale:    c.Spawn.ChanceScale,
		Reward:         c.Reward,
	}
	ec.Clock.MinutesPerTick = c.MinutesPerTick
	ec.Clock.StartMinute = c.StartMinute
	ec.RingTimer = c.RingTimer
	ec.RingMultiplier = c.RingMultiplier
	ec.WaitTicksAfterServing = c.WaitTicksAfterServing
	ec.MaxWaitingTicks = c.MaxWaitingTicks
	ec.OverwaitFee = c.OverwaitFee
	ec.StartingBalance = c.StartingBalance
	ec.StartingCapacity = c.StartingCapacity
	ec.MaxShopsIncrease = c.MaxShopsIncrease
	ec.TicksPerStep = c.TicksPerStep
	ec.RouteCacheSize = c.RouteCacheSize
	return ec
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
