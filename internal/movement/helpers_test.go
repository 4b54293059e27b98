package movement

import (
	"fmt"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// fakeRef is an in-memory Reference with a small fixed map:
//
//	system 1 at (0,0): planet 10 on ring 3, planet 11 on ring 5
//	system 2 at (20,0): lane 1 to system 1 (sentinel distance)
//	system 3 at (45,0): no lanes
//	system 4 at (10,0): lane 2 to system 1 (stored distance 10)
//	system 5 at (0,25): no lanes
type fakeRef struct {
	systems map[galaxy.SystemID]galaxy.System
	planets map[galaxy.PlanetID]galaxy.Planet
	lanes   []galaxy.Lane
}

func newFakeRef() *fakeRef {
	return &fakeRef{
		systems: map[galaxy.SystemID]galaxy.System{
			1: {ID: 1, Name: "Talos-001", X: 0, Y: 0},
			2: {ID: 2, Name: "Vela-002", X: 20, Y: 0},
			3: {ID: 3, Name: "Orion-003", X: 45, Y: 0},
			4: {ID: 4, Name: "Draco-004", X: 10, Y: 0},
			5: {ID: 5, Name: "Lyra-005", X: 0, Y: 25},
		},
		planets: map[galaxy.PlanetID]galaxy.Planet{
			10: {ID: 10, SystemID: 1, Name: "Talos-001 I", OrbitalRing: 3},
			11: {ID: 11, SystemID: 1, Name: "Talos-001 II", OrbitalRing: 5},
		},
		lanes: []galaxy.Lane{
			{ID: 1, SystemA: 1, SystemB: 2, Distance: galaxy.LaneDistanceSentinel},
			{ID: 2, SystemA: 1, SystemB: 4, Distance: 10},
		},
	}
}

func (r *fakeRef) System(id galaxy.SystemID) (*galaxy.System, error) {
	s, ok := r.systems[id]
	if !ok {
		return nil, fmt.Errorf("system %d: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (r *fakeRef) Planet(id galaxy.PlanetID) (*galaxy.Planet, error) {
	p, ok := r.planets[id]
	if !ok {
		return nil, fmt.Errorf("planet %d: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (r *fakeRef) LanesFromSystem(id galaxy.SystemID) ([]galaxy.Lane, error) {
	var out []galaxy.Lane
	for _, l := range r.lanes {
		if l.SystemA == id || l.SystemB == id {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeStore keeps units in memory and applies the same mutations the SQL
// store would.
type fakeStore struct {
	units   map[units.UnitID]*units.MobileUnit
	failOps map[string]error // op name → forced failure
}

func newFakeStore(us ...*units.MobileUnit) *fakeStore {
	s := &fakeStore{
		units:   make(map[units.UnitID]*units.MobileUnit),
		failOps: make(map[string]error),
	}
	for _, u := range us {
		s.units[u.ID] = u
	}
	return s
}

func (s *fakeStore) LoadUnit(id units.UnitID) (*units.MobileUnit, error) {
	u, ok := s.units[id]
	if !ok {
		return nil, fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	return u, nil
}

func (s *fakeStore) SaveLocation(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error {
	if err := s.failOps["SaveLocation"]; err != nil {
		return err
	}
	u, ok := s.units[id]
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	u.Loc = loc
	u.Status = status
	return nil
}

func (s *fakeStore) SavePendingTransit(id units.UnitID, pt *units.PendingTransit, loc galaxy.Location, endTick int64) error {
	if err := s.failOps["SavePendingTransit"]; err != nil {
		return err
	}
	u, ok := s.units[id]
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	u.Pending = pt
	u.Loc = loc
	u.Status = units.StatusTransit
	u.MovementLocked = true
	end := endTick
	u.TransitEndTick = &end
	return nil
}

func (s *fakeStore) ClearPendingTransit(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error {
	if err := s.failOps["ClearPendingTransit"]; err != nil {
		return err
	}
	u, ok := s.units[id]
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	u.Pending = nil
	u.TransitEndTick = nil
	u.MovementLocked = false
	u.Loc = loc
	u.Status = status
	return nil
}

func (s *fakeStore) SetLocalMoves(id units.UnitID, n int) error {
	if err := s.failOps["SetLocalMoves"]; err != nil {
		return err
	}
	u, ok := s.units[id]
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	u.LocalMoves = n
	return nil
}

func (s *fakeStore) SetMovementLock(id units.UnitID, locked bool) error {
	if err := s.failOps["SetMovementLock"]; err != nil {
		return err
	}
	u, ok := s.units[id]
	if !ok {
		return fmt.Errorf("unit %d: %w", id, ErrNotFound)
	}
	u.MovementLocked = locked
	return nil
}

func (s *fakeStore) DueTransits(tick int64) ([]*units.MobileUnit, error) {
	var due []*units.MobileUnit
	for _, u := range s.units {
		if u.Status == units.StatusTransit && u.TransitEndTick != nil && *u.TransitEndTick <= tick {
			due = append(due, u)
		}
	}
	return due, nil
}

func (s *fakeStore) ActiveUnits() ([]*units.MobileUnit, error) {
	var all []*units.MobileUnit
	for _, u := range s.units {
		all = append(all, u)
	}
	return all, nil
}

// fakeLedger is an in-memory energy balance per player.
type fakeLedger struct {
	energy map[units.PlayerID]int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{energy: make(map[units.PlayerID]int)}
}

func (l *fakeLedger) GetEnergy(player units.PlayerID) (int, error) {
	return l.energy[player], nil
}

func (l *fakeLedger) DebitEnergy(player units.PlayerID, amount int) (bool, error) {
	if l.energy[player] < amount {
		return false, nil
	}
	l.energy[player] -= amount
	return true, nil
}

// fakeNotifier records events.
type fakeNotifier struct {
	messages []string
}

func (n *fakeNotifier) LogEvent(message string, player units.PlayerID) {
	n.messages = append(n.messages, message)
}

func newTestService(store *fakeStore, ledger *fakeLedger) *Service {
	return &Service{
		Units:  store,
		Ledger: ledger,
		Ref:    newFakeRef(),
		Events: &fakeNotifier{},
		Cfg:    tuning.Defaults(),
	}
}

// testUnit builds a crewed unit owned by player 1.
func testUnit(id units.UnitID, loc galaxy.Location, members int) *units.MobileUnit {
	u := &units.MobileUnit{
		ID:       id,
		PlayerID: 1,
		Name:     fmt.Sprintf("Task Force %d", id),
		Status:   units.StatusSpace,
		Loc:      loc,
	}
	for i := 0; i < members; i++ {
		kind := units.MemberTroop
		if i == 0 {
			kind = units.MemberCharacter
		}
		u.Members = append(u.Members, units.Member{Kind: kind})
	}
	return u
}
