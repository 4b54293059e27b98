// Package galaxy provides the spatial reference model: star systems with
// planar coordinates, planets on orbital rings, starlanes, and the layered
// Location value type used by every mobile unit.
// See design doc "Location Model".
package galaxy

import "math"

// SystemID identifies a star system.
type SystemID int64

// PlanetID identifies a planet.
type PlanetID int64

// SectorID identifies a surface or orbital sector of a planet.
type SectorID int64

// LaneID identifies a starlane.
type LaneID int64

// Orbital ring bounds. Ring 0 is the deep space of a system; rings 1–6 are
// planetary orbits, increasing outward.
const (
	RingDeepSpace = 0
	RingOutermost = 6
)

// LaneDistanceSentinel is the placeholder distance written by early map
// imports. A lane carrying it has no measured distance; callers must fall
// back to the Euclidean distance between the endpoint systems.
const LaneDistanceSentinel = 1.0

// System is a star system on the galactic plane.
type System struct {
	ID   SystemID `json:"id" db:"id"`
	Name string   `json:"name" db:"name"`
	X    float64  `json:"x" db:"x"`
	Y    float64  `json:"y" db:"y"`
}

// Planet orbits a system on a fixed ring. OrbitalRing is the authoritative
// ring for dock/undock transitions, regardless of a unit's own ring field.
type Planet struct {
	ID          PlanetID `json:"id" db:"id"`
	SystemID    SystemID `json:"system_id" db:"system_id"`
	Name        string   `json:"name" db:"name"`
	OrbitalRing int      `json:"orbital_ring" db:"orbital_ring"`
}

// Lane is a pre-charted fast route between two systems.
type Lane struct {
	ID       LaneID   `json:"id" db:"id"`
	SystemA  SystemID `json:"system_a" db:"system_a"`
	SystemB  SystemID `json:"system_b" db:"system_b"`
	Distance float64  `json:"distance" db:"distance"`
}

// Connects reports whether the lane joins the two given systems, in either
// direction.
func (l Lane) Connects(a, b SystemID) bool {
	return (l.SystemA == a && l.SystemB == b) || (l.SystemA == b && l.SystemB == a)
}

// Distance returns the planar Euclidean distance between two systems.
func Distance(a, b System) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// EffectiveLaneDistance returns the distance to use for a lane traversal:
// the stored lane distance, unless it is missing or still the import
// sentinel, in which case the Euclidean distance between the endpoint
// systems.
func EffectiveLaneDistance(l Lane, a, b System) float64 {
	if l.Distance > 0 && l.Distance != LaneDistanceSentinel {
		return l.Distance
	}
	return Distance(a, b)
}
