package movement

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// Service ties classifier, cost, and validator together and owns the only
// mutating movement entry point.
type Service struct {
	Units  UnitStore
	Ledger ResourceLedger
	Ref    Reference
	Events Notifier
	Cfg    tuning.Tuning
}

// MovementOutcome is the success payload of MoveUnit.
type MovementOutcome struct {
	Success    bool               `json:"success"`
	Kind       units.MovementKind `json:"-"`
	KindName   string             `json:"kind"`
	Ticks      int                `json:"ticks"`
	EnergyCost int                `json:"energy_cost"`
	Instant    bool               `json:"instant"`
	Locked     bool               `json:"locked"`
}

// Estimate is the side-effect-free preview returned before committing a
// move.
type Estimate struct {
	Kind       units.MovementKind `json:"-"`
	KindName   string             `json:"kind"`
	Ticks      int                `json:"ticks"`
	EnergyCost int                `json:"energy_cost"`
	Valid      bool               `json:"valid"`
	Reason     string             `json:"reason,omitempty"`
}

// ClassifyAndEstimate previews the kind and cost of a move without touching
// any state. Validity here covers only what can be judged without a unit:
// distinct locations and the warp range cap.
func (s *Service) ClassifyAndEstimate(origin, dest galaxy.Location, fleetSize int, useBoost bool) (*Estimate, error) {
	if origin.Same(dest) {
		return &Estimate{Valid: false, Reason: "origin and destination are the same location"}, nil
	}

	kind, err := Classify(s.Ref, origin, dest)
	if err != nil {
		return nil, err
	}

	est := &Estimate{Kind: kind, KindName: kind.String(), Valid: true}

	if kind == units.MoveWarp {
		dist, err := systemDistance(s.Ref, *origin.SystemID, *dest.SystemID)
		if err != nil {
			return nil, err
		}
		if dist > s.Cfg.Movement.WarpRangeLimit {
			est.Valid = false
			est.Reason = fmt.Sprintf("destination is out of warp range (%.1f > %.1f)", dist, s.Cfg.Movement.WarpRangeLimit)
		}
	}

	est.Ticks, est.EnergyCost, err = Cost(s.Ref, s.Cfg.Movement, fleetSize, origin, dest, kind, useBoost)
	if err != nil {
		return nil, err
	}
	return est, nil
}

// MoveUnit validates, charges, and applies or schedules a move. The energy
// debit lands before the relocation write; a store failure after the debit
// is logged with full context and surfaced as a PersistenceError, with no
// automatic refund (reconciliation is a collaborator job).
func (s *Service) MoveUnit(unitID units.UnitID, dest galaxy.Location, player units.PlayerID, currentTick int64, useBoost bool) (*MovementOutcome, error) {
	u, err := s.Units.LoadUnit(unitID)
	if err != nil {
		return nil, err
	}

	kind, err := Classify(s.Ref, u.Loc, dest)
	if err != nil {
		return nil, err
	}

	if err := Validate(s.Ref, s.Cfg.Movement, u, dest, player, kind); err != nil {
		return nil, err
	}

	ticks, energy, err := Cost(s.Ref, s.Cfg.Movement, u.FleetSize(), u.Loc, dest, kind, useBoost)
	if err != nil {
		return nil, err
	}

	if energy > 0 {
		have, err := s.Ledger.GetEnergy(player)
		if err != nil {
			return nil, err
		}
		if have < energy {
			return nil, &InsufficientEnergyError{Required: energy, Available: have}
		}
		ok, err := s.Ledger.DebitEnergy(player, energy)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &InsufficientEnergyError{Required: energy, Available: have}
		}
	}

	outcome := &MovementOutcome{
		Success:    true,
		Kind:       kind,
		KindName:   kind.String(),
		Ticks:      ticks,
		EnergyCost: energy,
		Instant:    ticks == 0,
	}

	if ticks == 0 {
		locked, err := s.applyInstant(u, dest, kind)
		if err != nil {
			return nil, s.persistenceFailure("instant move", u, dest, energy, err)
		}
		outcome.Locked = locked
		return outcome, nil
	}

	if err := s.scheduleTransit(u, dest, kind, ticks, currentTick); err != nil {
		return nil, s.persistenceFailure("transit scheduling", u, dest, energy, err)
	}
	outcome.Locked = true
	return outcome, nil
}

// applyInstant relocates the unit now and advances the local-move counter.
// Returns whether the movement lock was set by this move.
func (s *Service) applyInstant(u *units.MobileUnit, dest galaxy.Location, kind units.MovementKind) (bool, error) {
	status := arrivalStatus(u.Status, dest)
	if err := s.Units.SaveLocation(u.ID, dest, status); err != nil {
		return false, err
	}

	prevMoves := u.LocalMoves
	if err := s.Units.SetLocalMoves(u.ID, prevMoves+1); err != nil {
		return false, err
	}

	// At least the second local move this tick sets the lock; by default
	// only when the move crossed an orbit boundary.
	orbitCrossing := kind == units.MoveSurfaceOrbit
	shouldLock := prevMoves >= 1 && (orbitCrossing || !s.Cfg.Movement.LockOnOrbitChangeOnly)
	if shouldLock && !u.MovementLocked {
		if err := s.Units.SetMovementLock(u.ID, true); err != nil {
			return false, err
		}
	}

	s.Events.LogEvent(fmt.Sprintf("%s repositioned to %s", u.Name, dest), u.PlayerID)
	return shouldLock || u.MovementLocked, nil
}

// scheduleTransit writes the pending-transit record and flips the unit into
// the in-transit overlay location.
func (s *Service) scheduleTransit(u *units.MobileUnit, dest galaxy.Location, kind units.MovementKind, ticks int, currentTick int64) error {
	pt := &units.PendingTransit{
		Destination:   dest,
		TicksRequired: ticks,
		StartedAtTick: currentTick,
		Kind:          kind,
		Stealthed:     u.Status == units.StatusStealthMode,
	}

	transitLoc := galaxy.Location{
		InTransit:     true,
		TransitOrigin: u.Loc.SystemID,
		TransitDest:   dest.SystemID,
	}
	if kind == units.MoveStarlane {
		lane, err := laneBetween(s.Ref, *u.Loc.SystemID, *dest.SystemID)
		if err != nil {
			return err
		}
		if lane == nil {
			return fmt.Errorf("no lane between systems %d and %d: %w", *u.Loc.SystemID, *dest.SystemID, ErrNotFound)
		}
		pt.LaneID = &lane.ID
		transitLoc.LaneID = &lane.ID
	}
	if kind == units.MoveInterRing {
		// Ring transits never leave the system.
		transitLoc.SystemID = u.Loc.SystemID
		transitLoc.Ring = u.Loc.Ring
	}

	if err := s.Units.SavePendingTransit(u.ID, pt, transitLoc, currentTick+int64(ticks)); err != nil {
		return err
	}

	s.Events.LogEvent(fmt.Sprintf("%s departed for %s (%d ticks)", u.Name, dest, ticks), u.PlayerID)
	return nil
}

// arrivalStatus derives the status at a destination: ground in a sector,
// space otherwise, with stealth mode carried through unchanged.
func arrivalStatus(current units.UnitStatus, dest galaxy.Location) units.UnitStatus {
	if current == units.StatusStealthMode {
		return units.StatusStealthMode
	}
	if dest.HasSector() {
		return units.StatusGround
	}
	return units.StatusSpace
}

// persistenceFailure logs the full context of a store write that failed
// after the energy debit and returns the generic caller-facing error.
func (s *Service) persistenceFailure(op string, u *units.MobileUnit, dest galaxy.Location, charged int, err error) error {
	ref := uuid.New()
	slog.Error("movement persistence failure",
		"ref", ref,
		"op", op,
		"unit_id", u.ID,
		"player_id", u.PlayerID,
		"destination", dest.String(),
		"energy_charged", charged,
		"error", err,
	)
	return &PersistenceError{Op: op, CorrelationID: ref, Err: err}
}
