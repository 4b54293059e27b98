package movement

import (
	"errors"
	"testing"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/units"
)

func TestMoveUnitInstantLocal(t *testing.T) {
	u := testUnit(1, galaxy.AtSector(1, 3, 10, 1), 2)
	u.Status = units.StatusGround
	store := newFakeStore(u)
	svc := newTestService(store, newFakeLedger())

	dest := galaxy.AtSector(1, 3, 10, 2)
	out, err := svc.MoveUnit(1, dest, 1, 100, false)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if !out.Instant || out.Ticks != 0 || out.EnergyCost != 0 {
		t.Errorf("local move: got %+v, want instant and free", out)
	}
	if out.Locked {
		t.Error("first local move must not lock")
	}
	if !u.Loc.Same(dest) {
		t.Errorf("unit not relocated: at %s", u.Loc)
	}
	if u.LocalMoves != 1 {
		t.Errorf("local move counter: got %d, want 1", u.LocalMoves)
	}
	if u.Status != units.StatusGround {
		t.Errorf("status: got %s, want ground", u.Status)
	}
}

// A sector hop, then an undock, locks the unit; a third local move in the
// same tick is rejected.
func TestMoveUnitLocalSequenceLocks(t *testing.T) {
	u := testUnit(1, galaxy.AtSector(1, 3, 10, 1), 2)
	u.Status = units.StatusGround
	store := newFakeStore(u)
	svc := newTestService(store, newFakeLedger())

	if _, err := svc.MoveUnit(1, galaxy.AtSector(1, 3, 10, 2), 1, 100, false); err != nil {
		t.Fatalf("first move: %v", err)
	}

	out, err := svc.MoveUnit(1, galaxy.AtPlanet(1, 3, 10), 1, 100, false)
	if err != nil {
		t.Fatalf("second move: %v", err)
	}
	if !out.Locked {
		t.Error("second local move crossing the surface must lock")
	}
	if !u.MovementLocked {
		t.Error("lock not persisted")
	}
	if u.LocalMoves != 2 {
		t.Errorf("local move counter: got %d, want 2", u.LocalMoves)
	}

	_, err = svc.MoveUnit(1, galaxy.AtRing(1, 3), 1, 100, false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("third local move: expected rejection, got %v", err)
	}
}

// Two sector hops on the surface count against the allowance but, under the
// shipped balance, never set the lock.
func TestMoveUnitSurfaceHopsDoNotLock(t *testing.T) {
	u := testUnit(1, galaxy.AtSector(1, 3, 10, 1), 2)
	u.Status = units.StatusGround
	store := newFakeStore(u)
	svc := newTestService(store, newFakeLedger())

	if _, err := svc.MoveUnit(1, galaxy.AtSector(1, 3, 10, 2), 1, 100, false); err != nil {
		t.Fatalf("first hop: %v", err)
	}
	out, err := svc.MoveUnit(1, galaxy.AtSector(1, 3, 10, 3), 1, 100, false)
	if err != nil {
		t.Fatalf("second hop: %v", err)
	}
	if out.Locked || u.MovementLocked {
		t.Error("surface-only hops must not lock under the default balance")
	}
}

func TestMoveUnitWarpOutOfRangeDebitsNothing(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 2)
	store := newFakeStore(u)
	ledger := newFakeLedger()
	ledger.energy[1] = 500
	svc := newTestService(store, ledger)

	// System 3 is 45 units away, past the warp cap.
	_, err := svc.MoveUnit(1, galaxy.DeepSpace(3), 1, 100, false)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a rejection, got %v", err)
	}
	if got := ledger.energy[1]; got != 500 {
		t.Errorf("energy touched on rejected move: %d", got)
	}
	if u.Status != units.StatusSpace || u.Pending != nil {
		t.Error("unit state touched on rejected move")
	}
}

func TestMoveUnitInsufficientEnergy(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 2)
	store := newFakeStore(u)
	ledger := newFakeLedger()
	ledger.energy[1] = 10 // Warp to system 5 needs 50 for two members.
	svc := newTestService(store, ledger)

	_, err := svc.MoveUnit(1, galaxy.DeepSpace(5), 1, 100, false)
	var ierr *InsufficientEnergyError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected insufficient energy, got %v", err)
	}
	if ierr.Required != 50 || ierr.Available != 10 {
		t.Errorf("got required %d available %d", ierr.Required, ierr.Available)
	}
	if ledger.energy[1] != 10 {
		t.Error("balance changed on a rejected debit")
	}
}

func TestMoveUnitSchedulesLaneTransit(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 3)
	store := newFakeStore(u)
	svc := newTestService(store, newFakeLedger())

	dest := galaxy.DeepSpace(2)
	out, err := svc.MoveUnit(1, dest, 1, 100, false)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.Instant || out.Ticks != 2 || !out.Locked {
		t.Errorf("lane transit: got %+v, want 2 ticks, locked", out)
	}
	if u.Status != units.StatusTransit {
		t.Errorf("status: got %s, want transit", u.Status)
	}
	if u.Pending == nil {
		t.Fatal("no pending transit recorded")
	}
	if !u.Pending.Destination.Same(dest) {
		t.Errorf("pending destination: %s", u.Pending.Destination)
	}
	if u.Pending.LaneID == nil || *u.Pending.LaneID != 1 {
		t.Error("pending transit missing lane 1")
	}
	if u.TransitEndTick == nil || *u.TransitEndTick != 102 {
		t.Errorf("transit end tick: %v", u.TransitEndTick)
	}
	if !u.Loc.InTransit || u.Loc.LaneID == nil || *u.Loc.LaneID != 1 {
		t.Errorf("overlay location: %s", u.Loc)
	}
}

func TestMoveUnitStealthSurvivesTransit(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 2)
	u.Status = units.StatusStealthMode
	store := newFakeStore(u)
	svc := newTestService(store, newFakeLedger())

	if _, err := svc.MoveUnit(1, galaxy.DeepSpace(2), 1, 100, false); err != nil {
		t.Fatalf("move: %v", err)
	}
	if u.Status != units.StatusTransit {
		t.Errorf("status during transit: got %s, want transit", u.Status)
	}
	if u.Pending == nil || !u.Pending.Stealthed {
		t.Error("stealth departure not recorded on the pending transit")
	}
}

func TestMoveUnitInterRingLongHaulCharges(t *testing.T) {
	u := testUnit(1, galaxy.AtRing(1, 2), 4)
	store := newFakeStore(u)
	ledger := newFakeLedger()
	ledger.energy[1] = 20
	svc := newTestService(store, ledger)

	out, err := svc.MoveUnit(1, galaxy.AtRing(1, 6), 1, 100, false)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.EnergyCost != 8 {
		t.Errorf("long haul, four members: charged %d, want 8", out.EnergyCost)
	}
	if ledger.energy[1] != 12 {
		t.Errorf("balance after debit: got %d, want 12", ledger.energy[1])
	}
	if u.Status != units.StatusTransit {
		t.Errorf("status: got %s, want transit", u.Status)
	}
	// Ring transits keep the unit inside its system.
	if u.Loc.SystemID == nil || *u.Loc.SystemID != 1 {
		t.Errorf("ring transit lost its system: %s", u.Loc)
	}
}

func TestMoveUnitPersistenceFailureAfterDebit(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 2)
	store := newFakeStore(u)
	store.failOps["SavePendingTransit"] = errors.New("disk full")
	ledger := newFakeLedger()
	ledger.energy[1] = 100
	svc := newTestService(store, ledger)

	_, err := svc.MoveUnit(1, galaxy.DeepSpace(5), 1, 100, false)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a persistence error, got %v", err)
	}
	// The debit is not rolled back; reconciliation happens out of band.
	if ledger.energy[1] != 50 {
		t.Errorf("balance: got %d, want 50 (debit kept)", ledger.energy[1])
	}
}

func TestClassifyAndEstimateIsPure(t *testing.T) {
	u := testUnit(1, galaxy.DeepSpace(1), 3)
	store := newFakeStore(u)
	ledger := newFakeLedger()
	svc := newTestService(store, ledger)

	est, err := svc.ClassifyAndEstimate(galaxy.DeepSpace(1), galaxy.DeepSpace(2), 3, true)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.Kind != units.MoveStarlane || est.Ticks != 1 || est.EnergyCost != 15 {
		t.Errorf("estimate: %+v", est)
	}
	if u.Status != units.StatusSpace || u.Pending != nil {
		t.Error("estimate touched unit state")
	}

	est, err = svc.ClassifyAndEstimate(galaxy.DeepSpace(1), galaxy.DeepSpace(3), 1, false)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.Valid {
		t.Error("out-of-range warp estimate reported valid")
	}
}
