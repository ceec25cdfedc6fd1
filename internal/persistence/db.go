// Package persistence archives finished runs in SQLite. Nothing here is ever
// loaded back into a simulation; every run starts fresh.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/breakroom/internal/engine"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		sim_time TEXT NOT NULL,
		rings INTEGER NOT NULL,
		balance INTEGER NOT NULL,
		earned INTEGER NOT NULL,
		penalties INTEGER NOT NULL,
		spawned INTEGER NOT NULL,
		served INTEGER NOT NULL,
		returned INTEGER NOT NULL,
		expired INTEGER NOT NULL,
		upgrades INTEGER NOT NULL,
		game_over INTEGER NOT NULL,
		reason TEXT NOT NULL,
		autopilot INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		category TEXT NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, tick);
	CREATE INDEX IF NOT EXISTS idx_runs_ended ON runs(ended_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunSummary is the archived record of one run.
type RunSummary struct {
	ID        string `db:"id" json:"id"`
	Seed      int64  `db:"seed" json:"seed"`
	StartedAt int64  `db:"started_at" json:"started_at"` // unix seconds
	EndedAt   int64  `db:"ended_at" json:"ended_at"`
	Ticks     uint64 `db:"ticks" json:"ticks"`
	SimTime   string `db:"sim_time" json:"sim_time"`
	Rings     int    `db:"rings" json:"rings"`
	Balance   uint64 `db:"balance" json:"balance"`
	Earned    uint64 `db:"earned" json:"earned"`
	Penalties uint64 `db:"penalties" json:"penalties"`
	Spawned   uint64 `db:"spawned" json:"spawned"`
	Served    uint64 `db:"served" json:"served"`
	Returned  uint64 `db:"returned" json:"returned"`
	Expired   uint64 `db:"expired" json:"expired"`
	Upgrades  uint64 `db:"upgrades" json:"upgrades"`
	GameOver  bool   `db:"game_over" json:"game_over"`
	Reason    string `db:"reason" json:"reason"`
	Autopilot bool   `db:"autopilot" json:"autopilot"`
}

// Duration returns the wall-clock length of the run.
func (r RunSummary) Duration() time.Duration {
	return time.Duration(r.EndedAt-r.StartedAt) * time.Second
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Summarize captures the final state of sim.
func Summarize(id string, sim *engine.Simulation, started, ended time.Time, autopilot bool) RunSummary {
	over, reason := sim.Over()
	return RunSummary{
		ID:        id,
		Seed:      sim.Seed(),
		StartedAt: started.Unix(),
		EndedAt:   ended.Unix(),
		Ticks:     sim.CurrentTick(),
		SimTime:   sim.TimeString(),
		Rings:     sim.Rings(),
		Balance:   sim.Balance(),
		Earned:    sim.Stats.Earned,
		Penalties: sim.Stats.Penalties,
		Spawned:   sim.Stats.Spawned,
		Served:    sim.Stats.Served,
		Returned:  sim.Stats.Returned,
		Expired:   sim.Stats.Expired,
		Upgrades:  sim.Stats.Upgrades,
		GameOver:  over,
		Reason:    reason,
		Autopilot: autopilot,
	}
}

// SaveRun inserts or replaces a run record.
func (db *DB) SaveRun(r RunSummary) error {
	_, err := db.conn.NamedExec(`
		INSERT OR REPLACE INTO runs (
			id, seed, started_at, ended_at, ticks, sim_time, rings, balance,
			earned, penalties, spawned, served, returned, expired, upgrades,
			game_over, reason, autopilot
		) VALUES (
			:id, :seed, :started_at, :ended_at, :ticks, :sim_time, :rings, :balance,
			:earned, :penalties, :spawned, :served, :returned, :expired, :upgrades,
			:game_over, :reason, :autopilot
		)`, r)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	slog.Debug("run archived", "id", r.ID, "ticks", r.Ticks, "rings", r.Rings)
	return nil
}

// GetRun loads one run by ID.
func (db *DB) GetRun(id string) (RunSummary, error) {
	var r RunSummary
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	return r, err
}

// RecentRuns returns the most recently finished runs.
func (db *DB) RecentRuns(limit int) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY ended_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// BestRuns returns the runs that grew furthest, longest-lived first on ties.
func (db *DB) BestRuns(limit int) ([]RunSummary, error) {
	var runs []RunSummary
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY rings DESC, ticks DESC, balance DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// EventRecord is an archived event.
type EventRecord struct {
	RunID       string `db:"run_id" json:"run_id"`
	Tick        uint64 `db:"tick" json:"tick"`
	Kind        string `db:"kind" json:"kind"`
	Category    string `db:"category" json:"category"`
	Q           int    `db:"pos_q" json:"q"`
	R           int    `db:"pos_r" json:"r"`
	Description string `db:"description" json:"description"`
}

// SaveEvents appends a run's events to the database.
func (db *DB) SaveEvents(runID string, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO run_events (run_id, tick, kind, category, pos_q, pos_r, description) VALUES (?, ?, ?, ?, ?, ?, ?)",
			runID, e.Tick, e.Kind.String(), e.Category(), e.Coord.Q, e.Coord.R, e.Description,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RunEvents returns up to limit events of a run in tick order.
func (db *DB) RunEvents(runID string, limit int) ([]EventRecord, error) {
	var events []EventRecord
	err := db.conn.Select(&events,
		"SELECT run_id, tick, kind, category, pos_q, pos_r, description FROM run_events WHERE run_id = ? ORDER BY id LIMIT ?",
		runID, limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}

// ArchiveRun saves the run record, its events and the last-run pointer.
func (db *DB) ArchiveRun(r RunSummary, events []engine.Event) error {
	slog.Info("archiving run", "id", r.ID, "events", len(events))

	if err := db.SaveRun(r); err != nil {
		return err
	}
	if err := db.SaveEvents(r.ID, events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_run", r.ID); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	return nil
}
