package movement

import (
	"fmt"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/units"
)

// Classify maps an (origin, destination) pair to a movement kind. Rules are
// priority-ordered; the first match wins:
//
//  1. Different systems: starlane if one is charted, warp otherwise.
//  2. Same planet on both ends: surface↔orbit when exactly one end has a
//     sector, sector-to-sector otherwise.
//  3. Exactly one end docked, and the planet's own orbital ring matches the
//     open end's ring: surface↔orbit. The planet's stored ring is
//     authoritative here — a unit's ring field can be stale right after
//     other transitions, and trusting it would misread a dock/undock as an
//     inter-ring jump.
//  4. Exactly one end docked on the same ring: surface↔orbit.
//  5. Different rings: inter-ring.
//  6. Same ring, different planets: inter-ring.
func Classify(ref Reference, origin, dest galaxy.Location) (units.MovementKind, error) {
	if origin.SystemID == nil || dest.SystemID == nil {
		return 0, fmt.Errorf("classify: location without a system: %w", ErrNotFound)
	}

	// Rule 1: interstellar.
	if *origin.SystemID != *dest.SystemID {
		lane, err := laneBetween(ref, *origin.SystemID, *dest.SystemID)
		if err != nil {
			return 0, err
		}
		if lane != nil {
			return units.MoveStarlane, nil
		}
		return units.MoveWarp, nil
	}

	// Rule 2: both ends at the same planet.
	if origin.PlanetID != nil && dest.PlanetID != nil && *origin.PlanetID == *dest.PlanetID {
		if origin.HasSector() != dest.HasSector() {
			return units.MoveSurfaceOrbit, nil
		}
		return units.MoveLocalSurface, nil
	}

	// Rules 3 and 4: exactly one end docked.
	if origin.HasPlanet() != dest.HasPlanet() {
		docked, open := origin, dest
		if dest.HasPlanet() {
			docked, open = dest, origin
		}
		planet, err := ref.Planet(*docked.PlanetID)
		if err != nil {
			return 0, fmt.Errorf("classify: planet %d: %w", *docked.PlanetID, err)
		}
		if planet.OrbitalRing == open.Ring {
			return units.MoveSurfaceOrbit, nil
		}
		if origin.Ring == dest.Ring {
			return units.MoveSurfaceOrbit, nil
		}
	}

	// Rule 5: ring change.
	if origin.Ring != dest.Ring {
		return units.MoveInterRing, nil
	}

	// Rule 6: same ring, different planets, no dock transition detected.
	return units.MoveInterRing, nil
}
