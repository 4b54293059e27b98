package movement

import (
	"fmt"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// localMoveLimit is the per-tick local-move allowance: stealth-mode units
// reposition once, everything else twice.
func localMoveLimit(cfg tuning.Movement, status units.UnitStatus) int {
	if status == units.StatusStealthMode {
		return cfg.StealthLocalMovesPerTurn
	}
	return cfg.MaxLocalMovesPerTurn
}

// Validate runs the movement checks in order, short-circuiting on the first
// failure. A returned *ValidationError carries the reason shown to the
// player; no state is mutated here.
func Validate(ref Reference, cfg tuning.Movement, u *units.MobileUnit, dest galaxy.Location, player units.PlayerID, kind units.MovementKind) error {
	// Ownership.
	if u.PlayerID != player {
		return rejectf("unit %s is not yours to command", u.Name)
	}

	// Transit exclusivity.
	if u.Status == units.StatusTransit {
		return rejectf("unit %s is already in transit", u.Name)
	}

	// Crew.
	if len(u.Members) == 0 {
		return rejectf("unit %s has no members and cannot move", u.Name)
	}

	// Destination must differ.
	if u.Loc.Same(dest) {
		return rejectf("unit %s is already at that location", u.Name)
	}

	// Warp range cap.
	if kind == units.MoveWarp {
		if u.Loc.SystemID == nil || dest.SystemID == nil {
			return fmt.Errorf("validate: location without a system: %w", ErrNotFound)
		}
		dist, err := systemDistance(ref, *u.Loc.SystemID, *dest.SystemID)
		if err != nil {
			return err
		}
		if dist > cfg.WarpRangeLimit {
			return rejectf("destination is out of warp range (%.1f > %.1f)", dist, cfg.WarpRangeLimit)
		}
	}

	// A move is local iff it stays within the same system, regardless of
	// ring/planet/sector changes.
	local := u.Loc.SameSystem(dest)
	limit := localMoveLimit(cfg, u.Status)

	// A locked unit may still finish its local allowance, nothing more.
	if u.MovementLocked && !(local && u.LocalMoves < limit) {
		return rejectf("unit %s is movement-locked until next tick", u.Name)
	}

	// Per-tick local allowance.
	if local && u.LocalMoves >= limit {
		return rejectf("unit %s has reached its local move limit (%d per tick)", u.Name, limit)
	}

	// Dock/undock must use the planet's own orbital ring.
	if err := checkOrbitAdjacency(ref, u, dest); err != nil {
		return err
	}

	// Interstellar departure conditions.
	if !local {
		if u.LocalMoves > 0 {
			return rejectf("unit %s cannot depart the system after local moves this tick", u.Name)
		}
		if u.Loc.HasSector() {
			return rejectf("unit %s must leave its sector for open space before departing", u.Name)
		}
	}

	return nil
}

// checkOrbitAdjacency enforces that undocking targets the planet's stored
// orbital ring and that docking starts from it.
func checkOrbitAdjacency(ref Reference, u *units.MobileUnit, dest galaxy.Location) error {
	if !u.Loc.SameSystem(dest) {
		return nil
	}

	// Undock: leaving a planet for open space.
	if u.Loc.HasPlanet() && !dest.HasPlanet() {
		planet, err := ref.Planet(*u.Loc.PlanetID)
		if err != nil {
			return fmt.Errorf("validate: planet %d: %w", *u.Loc.PlanetID, err)
		}
		if dest.Ring != planet.OrbitalRing {
			return rejectf("undocking from %s must target its orbital ring %d", planet.Name, planet.OrbitalRing)
		}
	}

	// Dock: entering a planet from open space.
	if !u.Loc.HasPlanet() && dest.HasPlanet() {
		planet, err := ref.Planet(*dest.PlanetID)
		if err != nil {
			return fmt.Errorf("validate: planet %d: %w", *dest.PlanetID, err)
		}
		if u.Loc.Ring != planet.OrbitalRing {
			return rejectf("docking at %s requires approaching from its orbital ring %d", planet.Name, planet.OrbitalRing)
		}
	}

	return nil
}
