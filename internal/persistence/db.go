// Package persistence provides SQLite-based world state storage: galaxy
// reference data, players and their energy ledger, mobile units, and the
// event log. It implements the store contracts consumed by the movement
// and detection engines.
package persistence

import (
	"fmt"
	"sync/atomic"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB

	// Most recently processed tick; stamped onto event rows.
	tick atomic.Int64
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

// SetTick records the tick stamped onto subsequent event rows.
func (db *DB) SetTick(tick int64) {
	db.tick.Store(tick)
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		energy INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS systems (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS planets (
		id INTEGER PRIMARY KEY,
		system_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		orbital_ring INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lanes (
		id INTEGER PRIMARY KEY,
		system_a INTEGER NOT NULL,
		system_b INTEGER NOT NULL,
		distance REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY,
		player_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		status INTEGER NOT NULL,
		location_json TEXT NOT NULL,
		movement_locked INTEGER NOT NULL,
		local_moves INTEGER NOT NULL,
		transit_end_tick INTEGER,
		disoriented INTEGER NOT NULL,
		has_interdictor INTEGER NOT NULL,
		members_json TEXT NOT NULL,
		pending_json TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		player_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		correlation_id TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_units_transit ON units(status, transit_end_tick);
	CREATE INDEX IF NOT EXISTS idx_units_player ON units(player_id);
	CREATE INDEX IF NOT EXISTS idx_planets_system ON planets(system_id);
	CREATE INDEX IF NOT EXISTS idx_lanes_a ON lanes(system_a);
	CREATE INDEX IF NOT EXISTS idx_lanes_b ON lanes(system_b);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_player ON events(player_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
