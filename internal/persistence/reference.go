package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/movement"
)

// System returns one star system.
func (db *DB) System(id galaxy.SystemID) (*galaxy.System, error) {
	var s galaxy.System
	err := db.conn.Get(&s, "SELECT id, name, x, y FROM systems WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("system %d: %w", id, movement.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load system %d: %w", id, err)
	}
	return &s, nil
}

// Planet returns one planet.
func (db *DB) Planet(id galaxy.PlanetID) (*galaxy.Planet, error) {
	var p galaxy.Planet
	err := db.conn.Get(&p, "SELECT id, system_id, name, orbital_ring FROM planets WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("planet %d: %w", id, movement.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load planet %d: %w", id, err)
	}
	return &p, nil
}

// LanesFromSystem returns every lane touching the given system.
func (db *DB) LanesFromSystem(id galaxy.SystemID) ([]galaxy.Lane, error) {
	var lanes []galaxy.Lane
	err := db.conn.Select(&lanes,
		"SELECT id, system_a, system_b, distance FROM lanes WHERE system_a = ? OR system_b = ?",
		id, id,
	)
	if err != nil {
		return nil, fmt.Errorf("load lanes for system %d: %w", id, err)
	}
	return lanes, nil
}

// Systems returns all star systems.
func (db *DB) Systems() ([]galaxy.System, error) {
	var systems []galaxy.System
	err := db.conn.Select(&systems, "SELECT id, name, x, y FROM systems ORDER BY id")
	return systems, err
}

// PlanetsInSystem returns the planets of one system ordered by ring.
func (db *DB) PlanetsInSystem(id galaxy.SystemID) ([]galaxy.Planet, error) {
	var planets []galaxy.Planet
	err := db.conn.Select(&planets,
		"SELECT id, system_id, name, orbital_ring FROM planets WHERE system_id = ? ORDER BY orbital_ring",
		id,
	)
	return planets, err
}

// HasGalaxy reports whether reference data has been seeded.
func (db *DB) HasGalaxy() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM systems"); err != nil {
		return false
	}
	return count > 0
}

// SaveGalaxy writes a generated galaxy (full replace of reference data).
func (db *DB) SaveGalaxy(g *galaxy.Galaxy) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"systems", "planets", "lanes"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}

	for _, s := range g.Systems {
		if _, err := tx.Exec(
			"INSERT INTO systems (id, name, x, y) VALUES (?, ?, ?, ?)",
			s.ID, s.Name, s.X, s.Y,
		); err != nil {
			return fmt.Errorf("insert system %d: %w", s.ID, err)
		}
	}
	for _, p := range g.Planets {
		if _, err := tx.Exec(
			"INSERT INTO planets (id, system_id, name, orbital_ring) VALUES (?, ?, ?, ?)",
			p.ID, p.SystemID, p.Name, p.OrbitalRing,
		); err != nil {
			return fmt.Errorf("insert planet %d: %w", p.ID, err)
		}
	}
	for _, l := range g.Lanes {
		if _, err := tx.Exec(
			"INSERT INTO lanes (id, system_a, system_b, distance) VALUES (?, ?, ?, ?)",
			l.ID, l.SystemA, l.SystemB, l.Distance,
		); err != nil {
			return fmt.Errorf("insert lane %d: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("galaxy saved",
		"systems", len(g.Systems), "planets", len(g.Planets), "lanes", len(g.Lanes))
	return nil
}
