package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/starhold/internal/detection"
	"github.com/talgya/starhold/internal/movement"
)

// ArrivalProcessor finalizes transits due at a tick.
type ArrivalProcessor interface {
	ProcessArrivals(tick int64) ([]movement.ArrivalEvent, error)
}

// Sweeper runs the per-tick detection scan.
type Sweeper interface {
	SweepTick(tick int64) ([]detection.SweepEncounter, error)
}

// TickStore is the persistence the cycle touches directly.
type TickStore interface {
	SetTick(tick int64)
	ResetTickCounters() error
	SaveMeta(key, value string) error
}

// Cycle runs the per-tick world update. Ordering is load-bearing: counters
// reset first, then arrivals finalize, then the sweep runs, so detection
// never sees a unit as both arriving and still in transit.
type Cycle struct {
	Store     TickStore
	Movement  ArrivalProcessor
	Detection Sweeper
}

// Advance processes one tick.
func (c *Cycle) Advance(tick int64) {
	c.Store.SetTick(tick)

	if err := c.Store.ResetTickCounters(); err != nil {
		slog.Error("tick counter reset failed", "tick", tick, "error", err)
	}

	arrivals, err := c.Movement.ProcessArrivals(tick)
	if err != nil {
		slog.Error("arrival processing failed", "tick", tick, "error", err)
	}

	encounters, err := c.Detection.SweepTick(tick)
	if err != nil {
		slog.Error("detection sweep failed", "tick", tick, "error", err)
	}

	if err := c.Store.SaveMeta("last_tick", fmt.Sprintf("%d", tick)); err != nil {
		slog.Error("tick metadata save failed", "tick", tick, "error", err)
	}

	if len(arrivals) > 0 || len(encounters) > 0 {
		slog.Info("tick processed",
			"tick", tick, "arrivals", len(arrivals), "encounters", len(encounters))
	}
}
