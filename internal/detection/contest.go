// Package detection resolves stealth contests between units sharing a
// location or lane, and governs interdiction of transiting units.
package detection

import (
	"github.com/talgya/starhold/internal/entropy"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// Context is the circumstance of a detection check. It shifts the
// defender's difficulty: passive sweeps are hardest, interdiction locks are
// easiest.
type Context uint8

const (
	ContextPassive Context = iota
	ContextActive
	ContextInterdiction
)

// String returns the context name used in audit logs.
func (c Context) String() string {
	switch c {
	case ContextPassive:
		return "passive"
	case ContextActive:
		return "active"
	case ContextInterdiction:
		return "interdiction"
	default:
		return "unknown"
	}
}

// Roller resolves one competitive check, returning success and the numeric
// margin. Implementations with fixed outcomes are used by tests.
type Roller interface {
	Resolve(merit, difficulty int) (success bool, margin int)
}

// contestDie is the swing of a contest roll.
const contestDie = 40

// ContestRoller is the production roller: merit plus a uniform die against
// the difficulty.
type ContestRoller struct {
	Rng *entropy.Source // nil falls back to crypto/rand
}

// Resolve implements Roller.
func (r *ContestRoller) Resolve(merit, difficulty int) (bool, int) {
	margin := merit + r.Rng.Roll(contestDie) - difficulty
	return margin >= 0, margin
}

// Merit is the detector's detection strength: a base, a per-member crew
// bonus, and a sensor bonus for sitting in open space or orbit rather than
// down in a sector.
func Merit(cfg tuning.Detection, detector *units.MobileUnit) int {
	merit := cfg.BaseMerit + cfg.MeritPerMember*len(detector.Members)
	if !detector.Loc.InTransit && !detector.Loc.HasSector() {
		merit += cfg.OpenSpaceBonus
	}
	return merit
}

// Difficulty is the defender's stealth resistance: a base, per-member-type
// signature modifiers, a transit penalty, and a group-size modifier, floored
// so nothing is ever trivially visible.
func Difficulty(cfg tuning.Detection, defender *units.MobileUnit) int {
	d := cfg.BaseDifficulty

	for _, m := range defender.Members {
		if m.Kind != units.MemberTroop {
			continue
		}
		switch m.TroopClass {
		case units.TroopAerospace:
			d += cfg.AerospaceMod
		case units.TroopInfantry:
			d += cfg.InfantryMod
		case units.TroopArmored:
			d += cfg.ArmoredMod
		case units.TroopMech:
			d += cfg.MechMod
		}
	}

	if defender.Status == units.StatusTransit || defender.Loc.InTransit {
		d += cfg.TransitMod
	}

	size := len(defender.Members)
	switch {
	case size <= cfg.SmallGroupSize:
		d += cfg.SmallGroupMod
	case size >= cfg.LargeGroupSize:
		d += cfg.LargeGroupMod
	}

	if d < cfg.DifficultyFloor {
		d = cfg.DifficultyFloor
	}
	return d
}

// contextMod returns the difficulty shift for a check context.
func contextMod(cfg tuning.Detection, ctx Context) int {
	switch ctx {
	case ContextPassive:
		return cfg.PassiveMod
	case ContextActive:
		return cfg.ActiveMod
	case ContextInterdiction:
		return cfg.InterdictionMod
	default:
		return 0
	}
}
