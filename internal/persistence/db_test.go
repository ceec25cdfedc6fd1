package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/breakroom/internal/engine"
	"github.com/talgya/breakroom/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func run(id string, rings int, ticks uint64, ended int64) RunSummary {
	return RunSummary{
		ID:        id,
		Seed:      1,
		StartedAt: ended - 60,
		EndedAt:   ended,
		Ticks:     ticks,
		SimTime:   "Day 1, 08:00",
		Rings:     rings,
		Served:    ticks / 10,
		GameOver:  true,
		Reason:    "insolvent",
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)
	r := run(NewRunID(), 4, 900, 1_700_000_000)
	r.Autopilot = true
	require.NoError(t, db.SaveRun(r))

	got, err := db.GetRun(r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)
	assert.Equal(t, time.Minute, got.Duration())

	_, err = db.GetRun("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSaveRunReplaces(t *testing.T) {
	db := openTestDB(t)
	r := run("a", 2, 100, 10)
	require.NoError(t, db.SaveRun(r))
	r.Rings = 3
	require.NoError(t, db.SaveRun(r))

	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Rings)
}

func TestRecentAndBestRuns(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveRun(run("old-big", 6, 3000, 100)))
	require.NoError(t, db.SaveRun(run("mid", 3, 800, 200)))
	require.NoError(t, db.SaveRun(run("new-small", 2, 300, 300)))
	require.NoError(t, db.SaveRun(run("new-tie", 6, 2000, 250)))

	recent, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "new-small", recent[0].ID)
	assert.Equal(t, "new-tie", recent[1].ID)

	best, err := db.BestRuns(3)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, []string{"old-big", "new-tie", "mid"}, []string{best[0].ID, best[1].ID, best[2].ID})
}

func TestArchiveRunWithEvents(t *testing.T) {
	db := openTestDB(t)
	r := run(NewRunID(), 2, 50, 500)
	events := []engine.Event{
		{Tick: 3, Kind: engine.EventWorkerSpawned, Coord: world.Origin, Description: "worker 1 leaves"},
		{Tick: 9, Kind: engine.EventRingGenerated, Radius: 2, Description: "ring 2 generated"},
		{Tick: 50, Kind: engine.EventGameOver, Description: "game over: insolvent"},
	}
	require.NoError(t, db.ArchiveRun(r, events))

	got, err := db.RunEvents(r.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "worker_spawned", got[0].Kind)
	assert.Equal(t, "worker", got[0].Category)
	assert.Equal(t, "world", got[1].Category)
	assert.Equal(t, uint64(50), got[2].Tick)

	last, err := db.GetMeta("last_run")
	require.NoError(t, err)
	assert.Equal(t, r.ID, last)

	none, err := db.RunEvents("other", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSummarize(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Seed = 3
	sim, err := engine.NewSimulation(cfg)
	require.NoError(t, err)
	sim.Expand()
	for i := 0; i < 20; i++ {
		sim.Tick()
	}

	started := time.Unix(1000, 0)
	s := Summarize("x", sim, started, started.Add(5*time.Second), false)
	assert.Equal(t, int64(3), s.Seed)
	assert.Equal(t, uint64(20), s.Ticks)
	assert.Equal(t, 2, s.Rings)
	assert.Equal(t, "Day 1, 07:20", s.SimTime)
	assert.Equal(t, 5*time.Second, s.Duration())
	assert.False(t, s.GameOver)
}

func TestNewRunIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewRunID()
		assert.Len(t, id, 36)
		assert.False(t, seen[id])
		seen[id] = true
	}
}
