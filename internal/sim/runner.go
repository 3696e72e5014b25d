// Runner drives the simulation in real time: one tick per interval, with
// a speed multiplier and an after-tick hook for autosave.
package sim

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Runner paces Tick calls against the wall clock. One real second equals
// one sim-minute at speed 1.
type Runner struct {
	Sim      *Simulation
	Interval time.Duration // base tick interval

	// AfterTick runs after every tick, outside the sim mutex.
	AfterTick func(*Simulation)

	// Speed is written by the API handler and read by the loop, so it
	// lives behind an atomic rather than a bare field.
	speed   atomic.Uint64 // Float64bits
	running atomic.Bool
}

// NewRunner creates a runner with the default pacing: ten ticks per real
// second.
func NewRunner(s *Simulation) *Runner {
	r := &Runner{
		Sim:      s,
		Interval: 100 * time.Millisecond,
	}
	r.SetSpeed(1.0)
	return r
}

// Speed returns the current time multiplier.
func (r *Runner) Speed() float64 {
	return math.Float64frombits(r.speed.Load())
}

// SetSpeed changes the time multiplier. Zero pauses the loop. Safe from
// any goroutine.
func (r *Runner) SetSpeed(v float64) {
	r.speed.Store(math.Float64bits(v))
}

// Run blocks, ticking the simulation until Stop is called.
func (r *Runner) Run() {
	r.running.Store(true)
	slog.Info("simulation started", "tick", r.Sim.CurrentTick(), "speed", r.Speed())

	for r.running.Load() {
		speed := r.Speed()
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		r.Sim.Tick(r.Interval.Seconds() * speed)
		if r.AfterTick != nil {
			r.AfterTick(r.Sim)
		}

		elapsed := time.Since(start)
		if elapsed < r.Interval {
			time.Sleep(r.Interval - elapsed)
		}
	}

	slog.Info("simulation stopped", "tick", r.Sim.CurrentTick())
}

// Stop halts the loop after the current tick. Safe from any goroutine.
func (r *Runner) Stop() {
	r.running.Store(false)
}
