package persistence

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/talgya/starhold/internal/movement"
	"github.com/talgya/starhold/internal/units"
)

// Player is a player row with their energy balance.
type Player struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Energy int    `db:"energy" json:"energy"`
}

// CreatePlayer inserts a player with a starting energy balance.
func (db *DB) CreatePlayer(id units.PlayerID, name string, energy int) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO players (id, name, energy) VALUES (?, ?, ?)",
		id, name, energy,
	)
	if err != nil {
		return fmt.Errorf("create player %d: %w", id, err)
	}
	return nil
}

// GetEnergy returns a player's current energy balance.
func (db *DB) GetEnergy(player units.PlayerID) (int, error) {
	var energy int
	err := db.conn.Get(&energy, "SELECT energy FROM players WHERE id = ?", player)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("player %d: %w", player, movement.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("load energy of player %d: %w", player, err)
	}
	return energy, nil
}

// DebitEnergy subtracts the amount if the balance covers it, guarding the
// read-modify-write in a single conditional UPDATE. Returns false when the
// balance no longer covers the amount.
func (db *DB) DebitEnergy(player units.PlayerID, amount int) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("debit of %d is negative", amount)
	}
	res, err := db.conn.Exec(
		"UPDATE players SET energy = energy - ? WHERE id = ? AND energy >= ?",
		amount, player, amount,
	)
	if err != nil {
		return false, fmt.Errorf("debit player %d: %w", player, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("debit player %d: %w", player, err)
	}
	return affected == 1, nil
}

// CreditEnergy adds to a player's balance (accrual and reconciliation).
func (db *DB) CreditEnergy(player units.PlayerID, amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit of %d is negative", amount)
	}
	return db.mutatePlayer(player,
		"UPDATE players SET energy = energy + ? WHERE id = ?", amount, player)
}

// Players returns all players.
func (db *DB) Players() ([]Player, error) {
	var players []Player
	err := db.conn.Select(&players, "SELECT id, name, energy FROM players ORDER BY id")
	return players, err
}

func (db *DB) mutatePlayer(id units.PlayerID, query string, args ...any) error {
	res, err := db.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update player %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update player %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("player %d: %w", id, movement.ErrNotFound)
	}
	return nil
}
