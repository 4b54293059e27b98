// Package units provides the mobile-unit data model: rosters, statuses,
// and the pending-transit record carried while a unit is between locations.
package units

import (
	"github.com/talgya/starhold/internal/galaxy"
)

// UnitID is a unique identifier for a mobile unit.
type UnitID int64

// PlayerID identifies the owning player.
type PlayerID int64

// MaxMembers is the roster slot cap per unit.
const MaxMembers = 8

// UnitStatus is a unit's operating state.
type UnitStatus uint8

const (
	StatusGround       UnitStatus = iota // Landed in a planetary sector
	StatusSpace                          // In open space or orbit
	StatusTransit                        // Between locations
	StatusStealthMode                    // Running silent; harder to detect, slower to act
	StatusConstructing                   // Committed to a build task
)

// String returns the status name used in logs and API payloads.
func (s UnitStatus) String() string {
	switch s {
	case StatusGround:
		return "ground"
	case StatusSpace:
		return "space"
	case StatusTransit:
		return "transit"
	case StatusStealthMode:
		return "stealth"
	case StatusConstructing:
		return "constructing"
	default:
		return "unknown"
	}
}

// MovementKind classifies a traversal between two locations. It is stored
// on the pending-transit record and reported in movement outcomes.
type MovementKind uint8

const (
	MoveLocalSurface MovementKind = iota // Sector to sector on one planet
	MoveSurfaceOrbit                     // Dock/undock or enter/leave orbit
	MoveInterRing                        // Between rings of one system
	MoveStarlane                         // Charted lane between systems
	MoveWarp                             // Direct interstellar jump
)

// String returns the kind name used in logs and API payloads.
func (k MovementKind) String() string {
	switch k {
	case MoveLocalSurface:
		return "local_surface"
	case MoveSurfaceOrbit:
		return "surface_orbit"
	case MoveInterRing:
		return "inter_ring"
	case MoveStarlane:
		return "starlane"
	case MoveWarp:
		return "warp"
	default:
		return "unknown"
	}
}

// Instant reports whether this kind of movement completes within the
// requesting call rather than over scheduled ticks.
func (k MovementKind) Instant() bool {
	return k == MoveLocalSurface || k == MoveSurfaceOrbit
}

// MemberKind distinguishes the two roster slot types.
type MemberKind uint8

const (
	MemberCharacter MemberKind = iota
	MemberTroop
)

// TroopClass affects stealth difficulty when the unit is hiding.
type TroopClass uint8

const (
	TroopInfantry  TroopClass = iota
	TroopArmored
	TroopMech
	TroopAerospace
)

// Member is one roster slot: either a character reference or a troop
// reference. TroopClass is meaningful only for troop members.
type Member struct {
	Kind        MemberKind `json:"kind"`
	CharacterID *int64     `json:"character_id,omitempty"`
	TroopID     *int64     `json:"troop_id,omitempty"`
	TroopClass  TroopClass `json:"troop_class,omitempty"`
}

// PendingTransit is the ephemeral record carried by a unit while its status
// is StatusTransit. Created by the movement orchestrator, consumed exactly
// once by the arrival processor.
type PendingTransit struct {
	Destination   galaxy.Location `json:"destination"`
	TicksRequired int             `json:"ticks_required"`
	StartedAtTick int64           `json:"started_at_tick"`
	LaneID        *galaxy.LaneID  `json:"lane_id,omitempty"`
	Kind          MovementKind    `json:"kind"`
	Stealthed     bool            `json:"stealthed,omitempty"` // Departed in stealth mode; restored on arrival
}

// MobileUnit is the root movable entity: an owned, named roster of members
// at a location.
type MobileUnit struct {
	ID       UnitID     `json:"id"`
	PlayerID PlayerID   `json:"player_id"`
	Name     string     `json:"name"`
	Status   UnitStatus `json:"status"`

	Loc galaxy.Location `json:"location"`

	MovementLocked bool   `json:"movement_locked"`
	LocalMoves     int    `json:"local_moves_count"` // Resets to 0 each tick
	TransitEndTick *int64 `json:"transit_end_tick,omitempty"`
	// Derived from TransitEndTick and the current tick when loaded from the
	// store; never persisted.
	TicksRemaining int `json:"transit_ticks_remaining,omitempty"`
	Disoriented    bool   `json:"disoriented,omitempty"`

	// Fitted with an interdiction module; required to pull transiting
	// units off a lane.
	HasInterdictor bool `json:"has_interdictor,omitempty"`

	Members []Member        `json:"members"`
	Pending *PendingTransit `json:"pending_transit,omitempty"`
}

// FleetSize is the ship count used by cost and detection formulas. An empty
// unit still counts as one hull.
func (u *MobileUnit) FleetSize() int {
	if len(u.Members) < 1 {
		return 1
	}
	return len(u.Members)
}
