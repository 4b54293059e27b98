package movement

import (
	"fmt"
	"math"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// Cost computes the tick duration and energy price of a classified move.
// Ticks and energy are always non-negative; ticks is zero exactly for the
// instant kinds (local surface, surface↔orbit).
func Cost(ref Reference, cfg tuning.Movement, fleetSize int, origin, dest galaxy.Location, kind units.MovementKind, useBoost bool) (ticks, energy int, err error) {
	if fleetSize < 1 {
		fleetSize = 1
	}

	switch kind {
	case units.MoveLocalSurface, units.MoveSurfaceOrbit:
		return 0, 0, nil

	case units.MoveInterRing:
		span := origin.Ring - dest.Ring
		if span < 0 {
			span = -span
		}
		if span > cfg.LongHaulRingSpan {
			return 1, cfg.LongHaulEnergyPerShip * fleetSize, nil
		}
		return 1, 0, nil

	case units.MoveStarlane:
		dist, err := laneDistance(ref, origin, dest)
		if err != nil {
			return 0, 0, err
		}
		if dist <= cfg.LaneShortHopDistance {
			return 1, 0, nil
		}
		if useBoost {
			return 1, cfg.LaneBoostEnergyPerShip * fleetSize, nil
		}
		return cfg.LaneSlowTicks, 0, nil

	case units.MoveWarp:
		if origin.SystemID == nil || dest.SystemID == nil {
			return 0, 0, fmt.Errorf("warp cost: location without a system: %w", ErrNotFound)
		}
		dist, err := systemDistance(ref, *origin.SystemID, *dest.SystemID)
		if err != nil {
			return 0, 0, err
		}
		ticks = cfg.WarpBaseTicks + int(dist/cfg.WarpTickDistance)
		energy = int(math.Ceil(dist * float64(fleetSize)))
		// Jumping out of a gravity well costs double; ring 0 is deep space.
		if origin.Ring > galaxy.RingDeepSpace {
			energy *= cfg.GravityWellMultiplier
		}
		return ticks, energy, nil

	default:
		return 0, 0, fmt.Errorf("cost: unknown movement kind %d", kind)
	}
}

// laneDistance resolves the traversal distance of the lane connecting the
// two endpoint systems, falling back to the Euclidean system distance when
// the stored value is missing or still the import sentinel.
func laneDistance(ref Reference, origin, dest galaxy.Location) (float64, error) {
	if origin.SystemID == nil || dest.SystemID == nil {
		return 0, fmt.Errorf("lane distance: location without a system: %w", ErrNotFound)
	}
	lane, err := laneBetween(ref, *origin.SystemID, *dest.SystemID)
	if err != nil {
		return 0, err
	}
	if lane == nil {
		return 0, fmt.Errorf("no lane between systems %d and %d: %w", *origin.SystemID, *dest.SystemID, ErrNotFound)
	}
	a, err := ref.System(lane.SystemA)
	if err != nil {
		return 0, err
	}
	b, err := ref.System(lane.SystemB)
	if err != nil {
		return 0, err
	}
	return galaxy.EffectiveLaneDistance(*lane, *a, *b), nil
}
