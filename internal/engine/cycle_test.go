package engine

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/talgya/starhold/internal/detection"
	"github.com/talgya/starhold/internal/movement"
)

// orderedWorld records the order of cycle calls across all three
// collaborators.
type orderedWorld struct {
	calls    []string
	resetErr error
}

func (w *orderedWorld) SetTick(tick int64) {
	w.calls = append(w.calls, "set_tick")
}

func (w *orderedWorld) ResetTickCounters() error {
	w.calls = append(w.calls, "reset")
	return w.resetErr
}

func (w *orderedWorld) SaveMeta(key, value string) error {
	w.calls = append(w.calls, "meta:"+key+"="+value)
	return nil
}

func (w *orderedWorld) ProcessArrivals(tick int64) ([]movement.ArrivalEvent, error) {
	w.calls = append(w.calls, "arrivals")
	return nil, nil
}

func (w *orderedWorld) SweepTick(tick int64) ([]detection.SweepEncounter, error) {
	w.calls = append(w.calls, "sweep")
	return nil, nil
}

func TestCycleOrdering(t *testing.T) {
	w := &orderedWorld{}
	c := &Cycle{Store: w, Movement: w, Detection: w}

	c.Advance(7)

	want := []string{"set_tick", "reset", "arrivals", "sweep", "meta:last_tick=7"}
	if len(w.calls) != len(want) {
		t.Fatalf("got calls %v, want %v", w.calls, want)
	}
	for i := range want {
		if w.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q (full order %v)", i, w.calls[i], want[i], w.calls)
		}
	}
}

// A failing counter reset must not stop the rest of the tick.
func TestCycleContinuesPastResetFailure(t *testing.T) {
	w := &orderedWorld{resetErr: errors.New("locked")}
	c := &Cycle{Store: w, Movement: w, Detection: w}

	c.Advance(8)

	found := map[string]bool{}
	for _, call := range w.calls {
		found[call] = true
	}
	if !found["arrivals"] || !found["sweep"] {
		t.Errorf("tick aborted after reset failure: %v", w.calls)
	}
}

func TestEngineStep(t *testing.T) {
	var seen []int64
	e := NewEngine(100)
	e.OnTick = func(tick int64) { seen = append(seen, tick) }

	e.Step()
	e.Step()

	if e.Tick() != 102 {
		t.Errorf("tick counter: got %d, want 102", e.Tick())
	}
	if len(seen) != 2 || seen[0] != 101 || seen[1] != 102 {
		t.Errorf("callback ticks: %v", seen)
	}
}

func TestEngineStepWithoutCallback(t *testing.T) {
	e := NewEngine(0)
	e.Step() // Must not panic with OnTick unset.
	if e.Tick() != 1 {
		t.Errorf("tick: got %d, want 1", e.Tick())
	}
}

// Concurrent steps (the loop plus the admin endpoint) must queue: every
// tick callback runs alone, and no tick number is skipped or repeated.
func TestEngineStepSerializes(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight int
		overlap  bool
		ticks    []int64
	)
	e := NewEngine(0)
	e.OnTick = func(tick int64) {
		mu.Lock()
		inFlight++
		if inFlight > 1 {
			overlap = true
		}
		ticks = append(ticks, tick)
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				e.Step()
			}
		}()
	}
	wg.Wait()

	if overlap {
		t.Error("tick callbacks overlapped")
	}
	if e.Tick() != 40 {
		t.Errorf("tick counter: got %d, want 40", e.Tick())
	}
	if len(ticks) != 40 {
		t.Fatalf("callbacks: got %d, want 40", len(ticks))
	}
	seen := make(map[int64]bool, len(ticks))
	for _, tick := range ticks {
		if seen[tick] {
			t.Fatalf("tick %d processed twice", tick)
		}
		seen[tick] = true
	}
}

func TestEngineSpeedControl(t *testing.T) {
	e := NewEngine(0)
	if e.Speed() != 1.0 {
		t.Errorf("default speed: got %v, want 1.0", e.Speed())
	}
	e.SetSpeed(0)
	if e.Speed() != 0 {
		t.Errorf("paused speed: got %v", e.Speed())
	}
	if e.Running() {
		t.Error("engine reports running before Run")
	}
}
