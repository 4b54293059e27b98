package detection

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/starhold/internal/galaxy"
	"github.com/talgya/starhold/internal/movement"
	"github.com/talgya/starhold/internal/tuning"
	"github.com/talgya/starhold/internal/units"
)

// UnitStore is the unit persistence the detection engine needs.
type UnitStore interface {
	LoadUnit(id units.UnitID) (*units.MobileUnit, error)
	ClearPendingTransit(id units.UnitID, loc galaxy.Location, status units.UnitStatus) error
	ActiveUnits() ([]*units.MobileUnit, error)
}

// Notifier is the fire-and-forget event sink.
type Notifier interface {
	LogEvent(message string, player units.PlayerID)
}

// Result is one directional detection check.
type Result struct {
	Detected     bool           `json:"detected"`
	DetectorID   units.UnitID   `json:"detector_id"`
	DetectedID   units.UnitID   `json:"detected_id"`
	DetectorName string         `json:"detector_name"`
	DetectedName string         `json:"detected_name"`
	Player       units.PlayerID `json:"player_id"`
	Context      Context        `json:"-"`
	ContextName  string         `json:"context"`
	Margin       int            `json:"margin"`
	CanInterdict bool           `json:"can_interdict"`
}

// EncounterOutcome classifies a mutual detection between two units.
type EncounterOutcome uint8

const (
	OutcomeConflict      EncounterOutcome = iota // Both sides detect
	OutcomeAmbushA                               // Only A detects B
	OutcomeAmbushB                               // Only B detects A
	OutcomeMutualStealth                         // Neither detects
)

// String returns the outcome name used in logs and API payloads.
func (o EncounterOutcome) String() string {
	switch o {
	case OutcomeConflict:
		return "conflict"
	case OutcomeAmbushA:
		return "ambush_a"
	case OutcomeAmbushB:
		return "ambush_b"
	case OutcomeMutualStealth:
		return "mutual_stealth"
	default:
		return "unknown"
	}
}

// Engine resolves detection contests. Contests carry no persistent state;
// every tick resolves fresh.
type Engine struct {
	Units  UnitStore
	Events Notifier
	Roller Roller
	Cfg    tuning.Detection
}

// Check runs one directional detection: detector against target, in the
// given context. No state is mutated.
func (e *Engine) Check(detector, target *units.MobileUnit, ctx Context) Result {
	merit := Merit(e.Cfg, detector)
	difficulty := Difficulty(e.Cfg, target) + contextMod(e.Cfg, ctx)

	success, margin := e.Roller.Resolve(merit, difficulty)

	return Result{
		Detected:     success,
		DetectorID:   detector.ID,
		DetectedID:   target.ID,
		DetectorName: detector.Name,
		DetectedName: target.Name,
		Player:       detector.PlayerID,
		Context:      ctx,
		ContextName:  ctx.String(),
		Margin:       margin,
		CanInterdict: success && e.interdictable(detector, target),
	}
}

// interdictable reports whether a successful detection could be pressed
// into an interdiction: the target transiting a lane the detector shares,
// with an interdiction module fitted.
func (e *Engine) interdictable(detector, target *units.MobileUnit) bool {
	if !detector.HasInterdictor {
		return false
	}
	if target.Status != units.StatusTransit {
		return false
	}
	return detector.Loc.InTransit && detector.Loc.Same(target.Loc)
}

// ResolveMutual runs both directional checks between two units and
// classifies the encounter. The two rolls are independent.
func (e *Engine) ResolveMutual(a, b *units.MobileUnit, ctx Context) (EncounterOutcome, Result, Result) {
	resA := e.Check(a, b, ctx)
	resB := e.Check(b, a, ctx)

	var outcome EncounterOutcome
	switch {
	case resA.Detected && resB.Detected:
		outcome = OutcomeConflict
	case resA.Detected:
		outcome = OutcomeAmbushA
	case resB.Detected:
		outcome = OutcomeAmbushB
	default:
		outcome = OutcomeMutualStealth
	}
	return outcome, resA, resB
}

// ResolveMutualDetection loads both units and resolves an active mutual
// detection between them.
func (e *Engine) ResolveMutualDetection(aID, bID units.UnitID) (EncounterOutcome, *Result, *Result, error) {
	a, err := e.Units.LoadUnit(aID)
	if err != nil {
		return 0, nil, nil, err
	}
	b, err := e.Units.LoadUnit(bID)
	if err != nil {
		return 0, nil, nil, err
	}
	outcome, resA, resB := e.ResolveMutual(a, b, ContextActive)
	return outcome, &resA, &resB, nil
}

// InterdictionResult is the outcome of an interdiction attempt.
type InterdictionResult struct {
	Success       bool         `json:"success"`
	InterdictorID units.UnitID `json:"interdictor_id"`
	TargetID      units.UnitID `json:"target_id"`
	Detection     Result       `json:"detection"`
	Message       string       `json:"message"`
}

// AttemptInterdiction tries to pull a transiting unit off its lane. On a
// successful interdiction-context detection, both the target and the
// interdictor drop out of transit at the current tick; on failure nothing
// changes beyond a notification.
func (e *Engine) AttemptInterdiction(interdictorID, targetID units.UnitID, player units.PlayerID, currentTick int64) (*InterdictionResult, error) {
	interdictor, err := e.Units.LoadUnit(interdictorID)
	if err != nil {
		return nil, err
	}
	target, err := e.Units.LoadUnit(targetID)
	if err != nil {
		return nil, err
	}

	if interdictor.PlayerID != player {
		return nil, &movement.ValidationError{Reason: fmt.Sprintf("unit %s is not yours to command", interdictor.Name)}
	}
	if !interdictor.HasInterdictor {
		return nil, &movement.ValidationError{Reason: fmt.Sprintf("unit %s has no interdiction module", interdictor.Name)}
	}
	if target.Status != units.StatusTransit {
		return nil, &movement.ValidationError{Reason: fmt.Sprintf("unit %s is not in transit", target.Name)}
	}
	if !interdictor.Loc.InTransit || !interdictor.Loc.Same(target.Loc) {
		return nil, &movement.ValidationError{Reason: fmt.Sprintf("unit %s is not on the same lane as %s", interdictor.Name, target.Name)}
	}

	res := e.Check(interdictor, target, ContextInterdiction)
	result := &InterdictionResult{
		Success:       res.Detected,
		InterdictorID: interdictorID,
		TargetID:      targetID,
		Detection:     res,
	}

	if !res.Detected {
		result.Message = fmt.Sprintf("%s slipped past the interdiction net of %s", target.Name, interdictor.Name)
		e.Events.LogEvent(result.Message, player)
		return result, nil
	}

	// Both units drop out of transit where the lane was cut.
	if err := e.pullFromTransit(target, currentTick); err != nil {
		return nil, err
	}
	if err := e.pullFromTransit(interdictor, currentTick); err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%s interdicted %s mid-transit", interdictor.Name, target.Name)
	e.Events.LogEvent(result.Message, player)
	e.Events.LogEvent(fmt.Sprintf("%s was pulled out of transit by %s", target.Name, interdictor.Name), target.PlayerID)
	slog.Info("interdiction", "interdictor", interdictorID, "target", targetID, "tick", currentTick, "margin", res.Margin)
	return result, nil
}

// pullFromTransit cancels a unit's pending transit and settles it in the
// deep space of the system the transit departed from.
func (e *Engine) pullFromTransit(u *units.MobileUnit, currentTick int64) error {
	system := u.Loc.TransitOrigin
	if system == nil {
		system = u.Loc.TransitDest
	}
	if system == nil && u.Loc.SystemID != nil {
		system = u.Loc.SystemID
	}
	if system == nil {
		return fmt.Errorf("unit %d transit has no resolvable system: %w", u.ID, movement.ErrNotFound)
	}

	loc := galaxy.DeepSpace(*system)
	status := units.StatusSpace
	if u.Pending != nil && u.Pending.Stealthed {
		status = units.StatusStealthMode
	}
	return e.Units.ClearPendingTransit(u.ID, loc, status)
}

// SweepEncounter is one cross-player encounter found by a scan sweep.
type SweepEncounter struct {
	UnitA   units.UnitID     `json:"unit_a"`
	UnitB   units.UnitID     `json:"unit_b"`
	Outcome EncounterOutcome `json:"-"`
	Name    string           `json:"outcome"`
}

// SweepTick runs the once-per-tick passive scan: settled units grouped by
// exact location, transiting units by lane. Warp and inter-ring transits
// ride no lane and share no route another unit can contest, so they are
// invisible to the sweep until they arrive. Every cross-player pair in a
// shared group gets a mutual detection, with each directional result logged
// for audit.
func (e *Engine) SweepTick(currentTick int64) ([]SweepEncounter, error) {
	all, err := e.Units.ActiveUnits()
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*units.MobileUnit)
	for _, u := range all {
		if u.Loc.InTransit && u.Loc.LaneID == nil {
			continue
		}
		key := u.Loc.GroupKey()
		groups[key] = append(groups[key], u)
	}

	// Deterministic sweep order keeps audit logs stable across runs.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var encounters []SweepEncounter
	for _, key := range keys {
		group := groups[key]
		if !crossPlayer(group) {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.PlayerID == b.PlayerID {
					continue
				}
				outcome, resA, resB := e.ResolveMutual(a, b, ContextPassive)
				e.auditResult(currentTick, key, resA)
				e.auditResult(currentTick, key, resB)
				e.notifyDetections(outcome, a, b)
				encounters = append(encounters, SweepEncounter{
					UnitA:   a.ID,
					UnitB:   b.ID,
					Outcome: outcome,
					Name:    outcome.String(),
				})
			}
		}
	}
	return encounters, nil
}

// crossPlayer reports whether a group holds units of at least two players.
func crossPlayer(group []*units.MobileUnit) bool {
	if len(group) < 2 {
		return false
	}
	first := group[0].PlayerID
	for _, u := range group[1:] {
		if u.PlayerID != first {
			return true
		}
	}
	return false
}

func (e *Engine) auditResult(tick int64, groupKey string, r Result) {
	slog.Info("detection check",
		"tick", tick,
		"group", groupKey,
		"detector", r.DetectorID,
		"target", r.DetectedID,
		"context", r.ContextName,
		"detected", r.Detected,
		"margin", r.Margin,
	)
}

// notifyDetections tells each player only what their side learned.
func (e *Engine) notifyDetections(outcome EncounterOutcome, a, b *units.MobileUnit) {
	if outcome == OutcomeConflict || outcome == OutcomeAmbushA {
		e.Events.LogEvent(fmt.Sprintf("%s detected %s at %s", a.Name, b.Name, b.Loc), a.PlayerID)
	}
	if outcome == OutcomeConflict || outcome == OutcomeAmbushB {
		e.Events.LogEvent(fmt.Sprintf("%s detected %s at %s", b.Name, a.Name, a.Loc), b.PlayerID)
	}
}
