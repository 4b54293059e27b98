// Package engine provides the tick loop driving the world forward: one
// tick at a time, each tick running counter resets, transit arrivals, and
// the detection sweep in a fixed order.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Engine drives the simulation forward. The mutex spans each tick callback,
// so a manual step from the admin endpoint serializes with the loop and two
// ticks can never process concurrently.
type Engine struct {
	mu      sync.Mutex
	tick    int64   // Current tick counter (monotonic, never resets)
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	running bool

	Interval time.Duration // Base tick interval; set before Run

	// OnTick runs once per tick with the new tick number; set before Run.
	OnTick func(tick int64)
}

// NewEngine creates a tick engine with default settings.
func NewEngine(startTick int64) *Engine {
	return &Engine{
		tick:     startTick,
		speed:    1.0,
		Interval: time.Minute,
	}
}

// Tick returns the current tick counter.
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; 0 pauses the loop.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = speed
}

// Running reports whether the tick loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Run starts the tick loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.mu.Lock()
	e.running = true
	tick := e.tick
	e.mu.Unlock()
	slog.Info("tick engine started", "tick", tick, "interval", e.Interval)

	for e.Running() {
		speed := e.Speed()
		if speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("tick engine stopped", "tick", e.Tick())
}

// Stop halts the tick loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
}

// Step advances the world by exactly one tick. Exposed for the admin
// tick-advance endpoint and tests; the lock is held across the callback so
// concurrent steps queue rather than interleave.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick++
	if e.OnTick != nil {
		e.OnTick(e.tick)
	}
}
