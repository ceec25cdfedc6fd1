package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/breakroom/internal/engine"
	"github.com/talgya/breakroom/internal/world"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BREAKROOM_LOG_LEVEL",
		"BREAKROOM_ARCHIVE",
		"BREAKROOM_METRICS_FILE",
		"BREAKROOM_SEED",
		"BREAKROOM_TICK_RATE",
		"BREAKROOM_STARTING_BALANCE",
		"BREAKROOM_AUTOPILOT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breakroom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults when nothing is set", func(t *testing.T) {
		clearEnvVars(t)

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, 8.0, cfg.TickRate)
		assert.Equal(t, uint32(9), cfg.Spawn.BaseChance)
		assert.Equal(t, uint32(200), cfg.Spawn.ChanceScale)
		assert.Equal(t, [3][3]uint32(world.DefaultWeights), cfg.RingWeights)
		assert.Equal(t, 10*time.Second, cfg.RingTimer)
		assert.Equal(t, 1.2, cfg.RingMultiplier)
		assert.Equal(t, uint32(50), cfg.MaxWaitingTicks)
		assert.Equal(t, uint64(5), cfg.OverwaitFee)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("yaml overlays defaults", func(t *testing.T) {
		clearEnvVars(t)
		path := writeFile(t, `
seed: 42
tick_rate: 16
ring_timer: 15s
ring_multiplier: 1.5
ring_weights:
  - [1, 1, 1]
  - [2, 0, 1]
  - [0, 0, 1]
spawn:
  base_chance: 20
  chance_scale: 100
reward:
  base: 4
  slope: 1
autopilot: true
`)

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, int64(42), cfg.Seed)
		assert.Equal(t, 16.0, cfg.TickRate)
		assert.Equal(t, 15*time.Second, cfg.RingTimer)
		assert.Equal(t, 1.5, cfg.RingMultiplier)
		assert.Equal(t, [3]uint32{2, 0, 1}, cfg.RingWeights[1])
		assert.Equal(t, uint32(20), cfg.Spawn.BaseChance)
		assert.Equal(t, uint32(1), cfg.Spawn.ChanceIncrease, "unset keys keep defaults")
		assert.Equal(t, 4.0, cfg.Reward.Base)
		assert.True(t, cfg.Autopilot)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearEnvVars(t)
		path := writeFile(t, "seed: 42\nlog_level: warn\n")
		t.Setenv("BREAKROOM_SEED", "7")
		t.Setenv("BREAKROOM_LOG_LEVEL", "DEBUG")
		t.Setenv("BREAKROOM_STARTING_BALANCE", "100")
		t.Setenv("BREAKROOM_AUTOPILOT", "true")
		t.Setenv("BREAKROOM_ARCHIVE", "/tmp/runs.db")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, int64(7), cfg.Seed)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, uint64(100), cfg.StartingBalance)
		assert.True(t, cfg.Autopilot)
		assert.Equal(t, "/tmp/runs.db", cfg.ArchivePath)
	})

	t.Run("returns error for invalid seed", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("BREAKROOM_SEED", "not-a-number")

		cfg, err := Load("")

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "BREAKROOM_SEED")
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		clearEnvVars(t)

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

		assert.Error(t, err)
	})

	t.Run("returns error for malformed yaml", func(t *testing.T) {
		clearEnvVars(t)
		path := writeFile(t, "ring_weights: [[1, 2]]\n")

		_, err := Load(path)

		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"multiplier must grow", func(c *Config) { c.RingMultiplier = 1 }, "RingMultiplier"},
		{"timer must be positive", func(c *Config) { c.RingTimer = 0 }, "RingTimer"},
		{"zero weight row", func(c *Config) { c.RingWeights[2] = [3]uint32{} }, "RingWeights[2]"},
		{"zero chance scale", func(c *Config) { c.Spawn.ChanceScale = 0 }, "ChanceScale"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "LogLevel"},
		{"too many obstacles", func(c *Config) { c.StartObstacles = 6 }, "StartObstacles"},
		{"negative reward", func(c *Config) { c.Reward.Slope = -1 }, "Slope"},
		{"tick rate", func(c *Config) { c.TickRate = 0 }, "TickRate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestEngineConversion(t *testing.T) {
	cfg := Default()
	cfg.Seed = 5
	cfg.OverwaitFee = 9
	cfg.StartObstacles = 3

	ec := cfg.Engine()
	assert.Equal(t, int64(5), ec.Seed)
	assert.Equal(t, int64(5), ec.Gen.Seed)
	assert.Equal(t, int64(5), ec.Spawn.Seed)
	assert.Equal(t, uint64(9), ec.OverwaitFee)
	assert.Equal(t, 3, ec.Gen.StartObstacles)

	// The defaults round-trip to the engine's own.
	want := engine.DefaultConfig()
	got := Default().Engine()
	assert.Equal(t, want, got)
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	for level, want := range map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
	} {
		cfg.LogLevel = level
		assert.Equal(t, want, cfg.SlogLevel().String())
	}
}
