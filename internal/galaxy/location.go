package galaxy

import "fmt"

// Location is a value describing where a mobile unit is. The model is
// layered: system → orbital ring → planet → sector, with an in-transit
// overlay for units between locations. SectorID set implies PlanetID set;
// violating that is a caller bug, not a runtime-checked error here.
// A transiting unit may have a nil SystemID (between systems).
type Location struct {
	SystemID *SystemID `json:"system_id,omitempty"`
	Ring     int       `json:"ring"`
	PlanetID *PlanetID `json:"planet_id,omitempty"`
	SectorID *SectorID `json:"sector_id,omitempty"`

	LaneID        *LaneID   `json:"lane_id,omitempty"`
	InTransit     bool      `json:"in_transit,omitempty"`
	TransitOrigin *SystemID `json:"transit_origin_system_id,omitempty"`
	TransitDest   *SystemID `json:"transit_destination_system_id,omitempty"`
}

// DeepSpace returns a location in the deep space (ring 0) of a system.
func DeepSpace(system SystemID) Location {
	return Location{SystemID: &system, Ring: RingDeepSpace}
}

// AtRing returns an open-space location on the given ring of a system.
func AtRing(system SystemID, ring int) Location {
	return Location{SystemID: &system, Ring: ring}
}

// AtPlanet returns a location docked at a planet, not yet resolved to a
// sector.
func AtPlanet(system SystemID, ring int, planet PlanetID) Location {
	return Location{SystemID: &system, Ring: ring, PlanetID: &planet}
}

// AtSector returns a location resolved to a specific sector of a planet.
func AtSector(system SystemID, ring int, planet PlanetID, sector SectorID) Location {
	return Location{SystemID: &system, Ring: ring, PlanetID: &planet, SectorID: &sector}
}

// OnLane returns an in-transit location on the given starlane.
func OnLane(lane LaneID, origin, dest SystemID) Location {
	return Location{LaneID: &lane, InTransit: true, TransitOrigin: &origin, TransitDest: &dest}
}

// HasPlanet reports whether the location is docked or landed at a planet.
func (l Location) HasPlanet() bool { return l.PlanetID != nil }

// HasSector reports whether the location is resolved to a planetary sector.
func (l Location) HasSector() bool { return l.SectorID != nil }

// SameSystem reports whether both locations carry the same non-nil system.
func (l Location) SameSystem(o Location) bool {
	return l.SystemID != nil && o.SystemID != nil && *l.SystemID == *o.SystemID
}

// Same reports location equality for co-location purposes. Two in-transit
// locations are the same iff they share a lane; two settled locations are
// the same iff system, ring, planet, and sector all match. A transiting and
// a settled location are never the same.
func (l Location) Same(o Location) bool {
	if l.InTransit != o.InTransit {
		return false
	}
	if l.InTransit {
		return l.LaneID != nil && o.LaneID != nil && *l.LaneID == *o.LaneID
	}
	return samePtr(l.SystemID, o.SystemID) &&
		l.Ring == o.Ring &&
		samePtr(l.PlanetID, o.PlanetID) &&
		samePtr(l.SectorID, o.SectorID)
}

func samePtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// GroupKey returns a string key grouping co-located units: settled units by
// (system, ring, planet, sector), transiting units by lane. A transit
// without a lane (warp, inter-ring) is on no shared route; its key must not
// be used for co-location grouping.
func (l Location) GroupKey() string {
	if l.InTransit {
		if l.LaneID == nil {
			return "transit:?"
		}
		return fmt.Sprintf("lane:%d", *l.LaneID)
	}
	sys := int64(-1)
	if l.SystemID != nil {
		sys = int64(*l.SystemID)
	}
	planet := int64(-1)
	if l.PlanetID != nil {
		planet = int64(*l.PlanetID)
	}
	sector := int64(-1)
	if l.SectorID != nil {
		sector = int64(*l.SectorID)
	}
	return fmt.Sprintf("loc:%d:%d:%d:%d", sys, l.Ring, planet, sector)
}

// String renders the location for log lines and notifications.
func (l Location) String() string {
	if l.InTransit {
		if l.LaneID != nil {
			return fmt.Sprintf("in transit (lane %d)", *l.LaneID)
		}
		return "in transit"
	}
	if l.SystemID == nil {
		return "unknown"
	}
	switch {
	case l.SectorID != nil:
		return fmt.Sprintf("system %d ring %d planet %d sector %d", *l.SystemID, l.Ring, *l.PlanetID, *l.SectorID)
	case l.PlanetID != nil:
		return fmt.Sprintf("system %d ring %d planet %d", *l.SystemID, l.Ring, *l.PlanetID)
	default:
		return fmt.Sprintf("system %d ring %d", *l.SystemID, l.Ring)
	}
}
