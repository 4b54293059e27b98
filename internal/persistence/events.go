package persistence

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/starhold/internal/units"
)

// Event is one notification row.
type Event struct {
	ID            int64  `db:"id" json:"id"`
	Tick          int64  `db:"tick" json:"tick"`
	PlayerID      int64  `db:"player_id" json:"player_id"`
	Message       string `db:"message" json:"message"`
	CorrelationID string `db:"correlation_id" json:"correlation_id"`
}

// LogEvent appends a notification for a player. Fire-and-forget: a write
// failure is logged and swallowed, never surfaced to the triggering
// operation.
func (db *DB) LogEvent(message string, player units.PlayerID) {
	ref := uuid.New().String()
	_, err := db.conn.Exec(
		"INSERT INTO events (tick, player_id, message, correlation_id) VALUES (?, ?, ?, ?)",
		db.tick.Load(), player, message, ref,
	)
	if err != nil {
		slog.Warn("event log write failed",
			"player_id", player, "message", message, "ref", ref, "error", err)
	}
}

// RecentEvents returns the most recent N events across all players.
func (db *DB) RecentEvents(limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT id, tick, player_id, message, correlation_id FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// PlayerEvents returns the most recent N events for one player.
func (db *DB) PlayerEvents(player units.PlayerID, limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT id, tick, player_id, message, correlation_id FROM events WHERE player_id = ? ORDER BY id DESC LIMIT ?",
		player, limit,
	)
	return events, err
}
