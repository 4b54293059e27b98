package movement

import (
	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/units"
)

// Reference is the read-only map data the movement rules consult.
type Reference interface {
	System(id galaxy.SystemID) (*galaxy.System, error)
	Planet(id galaxy.PlanetID) (*galaxy.Planet, error)
	LanesFromSystem(id galaxy.SystemID) ([]galaxy.Lane, error)
}

// UnitStore persists mobile-unit state. Implementations must make
// ClearPendingTransit apply the relocation and clear the transit fields in
// one write, so arrival processing stays idempotent within a tick.
type UnitStore interface {
	LoadUnit(id units.UnitID) (*units.MobileUnit, error)
	SaveLocation(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error
	SavePendingTransit(id units.UnitID, pt *units.PendingTransit, loc galaxy.Location, endTick int64) error
	ClearPendingTransit(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error
	SetLocalMoves(id units.UnitID, n int) error
	SetMovementLock(id units.UnitID, locked bool) error
	DueTransits(tick int64) ([]*units.MobileUnit, error)
	ActiveUnits() ([]*units.MobileUnit, error)
}

// ResourceLedger is the player energy balance. DebitEnergy returns false
// when the balance no longer covers the amount.
type ResourceLedger interface {
	GetEnergy(player units.PlayerID) (int, error)
	DebitEnergy(player units.PlayerID, amount int) (bool, error)
}

// Notifier is a fire-and-forget event sink. Implementations must swallow
// their own failures; a lost notification never aborts a movement.
type Notifier interface {
	LogEvent(message string, player units.PlayerID)
}

// laneBetween returns the lane connecting two systems, or nil when none is
// charted.
func laneBetween(ref Reference, a, b galaxy.SystemID) (*galaxy.Lane, error) {
	lanes, err := ref.LanesFromSystem(a)
	if err != nil {
		return nil, err
	}
	for i := range lanes {
		if lanes[i].Connects(a, b) {
			return &lanes[i], nil
		}
	}
	return nil, nil
}

// systemDistance returns the Euclidean distance between two systems.
func systemDistance(ref Reference, a, b galaxy.SystemID) (float64, error) {
	sa, err := ref.System(a)
	if err != nil {
		return 0, err
	}
	sb, err := ref.System(b)
	if err != nil {
		return 0, err
	}
	return galaxy.Distance(*sa, *sb), nil
}
