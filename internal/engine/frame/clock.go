// Package frame drives the single-threaded frame loop: a monotonic clock,
// per-frame callbacks with scoped registration, and a queue through which
// other goroutines hand work to the loop thread.
package frame

import "time"

// State is the clock reading for one frame. Every callback run during a
// frame sees the same State.
type State struct {
	Elapsed float64 // seconds since the clock started
	Delta   float64 // seconds since the previous frame
	Frame   uint64  // 1 for the first frame
}

// Clock measures elapsed time. It is advanced exactly once per frame by
// Loop.Step and is not safe for concurrent use.
type Clock struct {
	now   func() time.Time
	step  time.Duration
	start time.Time
	state State
}

// NewClock returns a clock reading the wall clock. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// NewFixedClock returns a clock that advances by step every tick regardless
// of wall time, for headless runs and tests.
func NewFixedClock(step time.Duration) *Clock {
	return &Clock{step: step}
}

// Tick advances the clock and returns the new state. The first tick reads
// elapsed 0 on a wall clock and one step on a fixed clock.
func (c *Clock) Tick() State {
	prev := c.state.Elapsed
	if c.now != nil {
		t := c.now()
		if c.state.Frame == 0 {
			c.start = t
		}
		elapsed := t.Sub(c.start).Seconds()
		// Wall clocks may jump backwards; elapsed never does.
		if elapsed < prev {
			elapsed = prev
		}
		c.state.Elapsed = elapsed
	} else {
		c.state.Elapsed = float64(c.state.Frame+1) * c.step.Seconds()
	}
	c.state.Delta = c.state.Elapsed - prev
	c.state.Frame++
	return c.state
}

// State returns the reading of the last tick.
func (c *Clock) State() State {
	return c.state
}
