package movement

import (
	"fmt"
	"log/slog"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/units"
)

// ArrivalEvent records one completed transit, for notifications.
type ArrivalEvent struct {
	UnitID      units.UnitID   `json:"unit_id"`
	UnitName    string         `json:"unit_name"`
	PlayerID    units.PlayerID `json:"player_id"`
	Destination string         `json:"destination"`
}

// ProcessArrivals finalizes every transit due at the current tick. Each
// unit is handled at most once per tick: the relocation and the clearing of
// its pending-transit fields land in one store write, so a re-invocation
// within the same tick finds nothing due.
func (s *Service) ProcessArrivals(currentTick int64) ([]ArrivalEvent, error) {
	due, err := s.Units.DueTransits(currentTick)
	if err != nil {
		return nil, err
	}

	var events []ArrivalEvent
	for _, u := range due {
		if u.Pending == nil {
			slog.Warn("transit unit has no pending record", "unit_id", u.ID)
			continue
		}

		dest := u.Pending.Destination
		if dest.SystemID == nil {
			// Ring-only transits record no new system; the unit never left
			// its current one.
			dest.SystemID = currentSystem(u.Loc)
		}

		status := units.StatusSpace
		switch {
		case u.Pending.Stealthed:
			status = units.StatusStealthMode
		case dest.HasSector():
			status = units.StatusGround
		}

		if err := s.Units.ClearPendingTransit(u.ID, dest, status); err != nil {
			slog.Error("arrival finalization failed",
				"unit_id", u.ID, "destination", dest.String(), "error", err)
			continue
		}

		name := s.destinationName(dest)
		events = append(events, ArrivalEvent{
			UnitID:      u.ID,
			UnitName:    u.Name,
			PlayerID:    u.PlayerID,
			Destination: name,
		})
		s.Events.LogEvent(fmt.Sprintf("%s has arrived at %s", u.Name, name), u.PlayerID)
	}

	return events, nil
}

// currentSystem returns the system a transiting unit is associated with:
// the overlay system for in-system transits, the transit origin otherwise.
func currentSystem(loc galaxy.Location) *galaxy.SystemID {
	if loc.SystemID != nil {
		return loc.SystemID
	}
	return loc.TransitOrigin
}

// destinationName resolves a human-readable destination, degrading to the
// raw location string when reference data is missing.
func (s *Service) destinationName(dest galaxy.Location) string {
	if dest.PlanetID != nil {
		if p, err := s.Ref.Planet(*dest.PlanetID); err == nil {
			if dest.SectorID != nil {
				return fmt.Sprintf("%s sector %d", p.Name, *dest.SectorID)
			}
			return p.Name
		}
	}
	if dest.SystemID != nil {
		if sys, err := s.Ref.System(*dest.SystemID); err == nil {
			if dest.Ring == galaxy.RingDeepSpace {
				return fmt.Sprintf("%s deep space", sys.Name)
			}
			return fmt.Sprintf("%s ring %d", sys.Name, dest.Ring)
		}
	}
	return dest.String()
}
