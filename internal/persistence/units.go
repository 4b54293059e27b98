package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/movement"
	"github.com/talgya/starhold/internal/units"
)

// unitRow is the flat row shape of the units table.
type unitRow struct {
	ID             int64          `db:"id"`
	PlayerID       int64          `db:"player_id"`
	Name           string         `db:"name"`
	Status         int            `db:"status"`
	LocationJSON   string         `db:"location_json"`
	MovementLocked int            `db:"movement_locked"`
	LocalMoves     int            `db:"local_moves"`
	TransitEndTick sql.NullInt64  `db:"transit_end_tick"`
	Disoriented    int            `db:"disoriented"`
	HasInterdictor int            `db:"has_interdictor"`
	MembersJSON    string         `db:"members_json"`
	PendingJSON    sql.NullString `db:"pending_json"`
}

func (r *unitRow) toUnit() (*units.MobileUnit, error) {
	u := &units.MobileUnit{
		ID:             units.UnitID(r.ID),
		PlayerID:       units.PlayerID(r.PlayerID),
		Name:           r.Name,
		Status:         units.UnitStatus(r.Status),
		MovementLocked: r.MovementLocked != 0,
		LocalMoves:     r.LocalMoves,
		Disoriented:    r.Disoriented != 0,
		HasInterdictor: r.HasInterdictor != 0,
	}
	if err := json.Unmarshal([]byte(r.LocationJSON), &u.Loc); err != nil {
		return nil, fmt.Errorf("unit %d location: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.MembersJSON), &u.Members); err != nil {
		return nil, fmt.Errorf("unit %d members: %w", r.ID, err)
	}
	if r.TransitEndTick.Valid {
		end := r.TransitEndTick.Int64
		u.TransitEndTick = &end
	}
	if r.PendingJSON.Valid && r.PendingJSON.String != "" {
		var pt units.PendingTransit
		if err := json.Unmarshal([]byte(r.PendingJSON.String), &pt); err != nil {
			return nil, fmt.Errorf("unit %d pending transit: %w", r.ID, err)
		}
		u.Pending = &pt
	}
	return u, nil
}

const unitColumns = `id, player_id, name, status, location_json, movement_locked,
	local_moves, transit_end_tick, disoriented, has_interdictor, members_json, pending_json`

// LoadUnit returns one mobile unit.
func (db *DB) LoadUnit(id units.UnitID) (*units.MobileUnit, error) {
	var row unitRow
	err := db.conn.Get(&row, "SELECT "+unitColumns+" FROM units WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("unit %d: %w", id, movement.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load unit %d: %w", id, err)
	}
	u, err := row.toUnit()
	if err != nil {
		return nil, err
	}
	db.deriveCountdown(u)
	return u, nil
}

// SaveUnit writes a complete unit (insert or replace). Used by seeding and
// roster management; movement uses the narrower mutators below.
func (db *DB) SaveUnit(u *units.MobileUnit) error {
	locJSON, err := json.Marshal(u.Loc)
	if err != nil {
		return fmt.Errorf("marshal unit %d location: %w", u.ID, err)
	}
	membersJSON, err := json.Marshal(u.Members)
	if err != nil {
		return fmt.Errorf("marshal unit %d members: %w", u.ID, err)
	}

	var pendingJSON any
	if u.Pending != nil {
		raw, err := json.Marshal(u.Pending)
		if err != nil {
			return fmt.Errorf("marshal unit %d pending: %w", u.ID, err)
		}
		pendingJSON = string(raw)
	}

	var endTick any
	if u.TransitEndTick != nil {
		endTick = *u.TransitEndTick
	}

	_, err = db.conn.Exec(`INSERT OR REPLACE INTO units
		(id, player_id, name, status, location_json, movement_locked,
		 local_moves, transit_end_tick, disoriented, has_interdictor,
		 members_json, pending_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.PlayerID, u.Name, u.Status, string(locJSON), boolInt(u.MovementLocked),
		u.LocalMoves, endTick, boolInt(u.Disoriented), boolInt(u.HasInterdictor),
		string(membersJSON), pendingJSON,
	)
	if err != nil {
		return fmt.Errorf("save unit %d: %w", u.ID, err)
	}
	return nil
}

// SaveLocation applies a relocation and status change.
func (db *DB) SaveLocation(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error {
	locJSON, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	return db.mutateUnit(id,
		"UPDATE units SET location_json = ?, status = ? WHERE id = ?",
		string(locJSON), status, id)
}

// SavePendingTransit writes the pending-transit record and flips the unit
// into transit: status, lock, end tick, and the in-transit overlay location
// land in one write.
func (db *DB) SavePendingTransit(id units.UnitID, pt *units.PendingTransit, loc galaxy.Location, endTick int64) error {
	ptJSON, err := json.Marshal(pt)
	if err != nil {
		return fmt.Errorf("marshal pending transit: %w", err)
	}
	locJSON, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal transit location: %w", err)
	}
	return db.mutateUnit(id,
		`UPDATE units SET pending_json = ?, location_json = ?, status = ?,
			movement_locked = 1, transit_end_tick = ? WHERE id = ?`,
		string(ptJSON), string(locJSON), units.StatusTransit, endTick, id)
}

// ClearPendingTransit applies the arrival relocation and clears every
// transit field in one UPDATE, keeping arrival processing idempotent.
func (db *DB) ClearPendingTransit(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error {
	locJSON, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal arrival location: %w", err)
	}
	return db.mutateUnit(id,
		`UPDATE units SET pending_json = NULL, transit_end_tick = NULL,
			movement_locked = 0, location_json = ?, status = ? WHERE id = ?`,
		string(locJSON), status, id)
}

// SetLocalMoves sets the per-tick local move counter.
func (db *DB) SetLocalMoves(id units.UnitID, n int) error {
	return db.mutateUnit(id, "UPDATE units SET local_moves = ? WHERE id = ?", n, id)
}

// SetMovementLock sets or clears the movement lock.
func (db *DB) SetMovementLock(id units.UnitID, locked bool) error {
	return db.mutateUnit(id, "UPDATE units SET movement_locked = ? WHERE id = ?", boolInt(locked), id)
}

// DueTransits returns every transiting unit whose scheduled arrival has
// elapsed by the given tick.
func (db *DB) DueTransits(tick int64) ([]*units.MobileUnit, error) {
	var rows []unitRow
	err := db.conn.Select(&rows,
		"SELECT "+unitColumns+" FROM units WHERE status = ? AND transit_end_tick IS NOT NULL AND transit_end_tick <= ? ORDER BY id",
		units.StatusTransit, tick,
	)
	if err != nil {
		return nil, fmt.Errorf("load due transits: %w", err)
	}
	return db.rowsToUnits(rows)
}

// ActiveUnits returns every unit, for the per-tick detection sweep.
func (db *DB) ActiveUnits() ([]*units.MobileUnit, error) {
	var rows []unitRow
	err := db.conn.Select(&rows, "SELECT "+unitColumns+" FROM units ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	return db.rowsToUnits(rows)
}

// UnitsOfPlayer returns every unit owned by one player.
func (db *DB) UnitsOfPlayer(player units.PlayerID) ([]*units.MobileUnit, error) {
	var rows []unitRow
	err := db.conn.Select(&rows,
		"SELECT "+unitColumns+" FROM units WHERE player_id = ? ORDER BY id", player)
	if err != nil {
		return nil, fmt.Errorf("load units of player %d: %w", player, err)
	}
	return db.rowsToUnits(rows)
}

// ResetTickCounters zeroes every unit's local-move counter and clears the
// movement lock on everything not in transit. Runs at tick start.
func (db *DB) ResetTickCounters() error {
	_, err := db.conn.Exec(
		"UPDATE units SET local_moves = 0, movement_locked = CASE WHEN status = ? THEN movement_locked ELSE 0 END",
		units.StatusTransit,
	)
	if err != nil {
		return fmt.Errorf("reset tick counters: %w", err)
	}
	return nil
}

func (db *DB) rowsToUnits(rows []unitRow) ([]*units.MobileUnit, error) {
	result := make([]*units.MobileUnit, 0, len(rows))
	for i := range rows {
		u, err := rows[i].toUnit()
		if err != nil {
			return nil, err
		}
		db.deriveCountdown(u)
		result = append(result, u)
	}
	return result, nil
}

// deriveCountdown fills the transit countdown from the scheduled arrival and
// the current tick. Never stored; recomputed on every load so it cannot
// drift from transit_end_tick.
func (db *DB) deriveCountdown(u *units.MobileUnit) {
	if u.TransitEndTick == nil {
		return
	}
	if rem := *u.TransitEndTick - db.tick.Load(); rem > 0 {
		u.TicksRemaining = int(rem)
	}
}

// mutateUnit runs an UPDATE that must touch exactly one existing unit.
func (db *DB) mutateUnit(id units.UnitID, query string, args ...any) error {
	res, err := db.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update unit %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update unit %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("unit %d: %w", id, movement.ErrNotFound)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
