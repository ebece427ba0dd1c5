package frame

import "sync"

// Callback runs once per frame on the loop thread. It must not block.
type Callback func(State)

// Dispatcher accepts work to run on the loop thread.
type Dispatcher interface {
	Post(fn func())
}

// Loop runs registered callbacks once per Step.
//
// Step, Register and callbacks are driven from one goroutine. Post and
// Registration.Unregister may be called from any goroutine.
type Loop struct {
	clock *Clock

	mu     sync.Mutex
	posted []func()
	regs   []*Registration
	dirty  bool

	// scratch is the per-Step snapshot of regs, reused across frames.
	scratch []*Registration
}

// NewLoop returns a loop on the given clock. A nil clock uses the wall
// clock.
func NewLoop(clock *Clock) *Loop {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Loop{clock: clock}
}

// Clock returns the loop's clock.
func (l *Loop) Clock() *Clock {
	return l.clock
}

// Registration is the handle of one registered callback. Unregister it when
// its owner goes away.
type Registration struct {
	loop *Loop
	fn   Callback

	mu     sync.Mutex
	active bool
}

// Register adds a callback that runs on every Step from the next frame on.
func (l *Loop) Register(fn Callback) *Registration {
	r := &Registration{loop: l, fn: fn, active: true}
	l.mu.Lock()
	l.regs = append(l.regs, r)
	l.mu.Unlock()
	return r
}

// Unregister stops the callback. It takes effect immediately, including
// for callbacks not yet run in the current frame. Calling it again is a
// no-op.
func (r *Registration) Unregister() {
	if r == nil {
		return
	}
	r.mu.Lock()
	wasActive := r.active
	r.active = false
	r.mu.Unlock()

	if wasActive {
		r.loop.mu.Lock()
		r.loop.dirty = true
		r.loop.mu.Unlock()
	}
}

// Active reports whether the callback is still registered.
func (r *Registration) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

func (r *Registration) run(s State) {
	if r.Active() {
		r.fn(s)
	}
}

// Post queues fn to run on the loop thread at the start of the next Step.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Len returns the number of active callbacks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.regs {
		if r.Active() {
			n++
		}
	}
	return n
}

// Step runs one frame: it drains the posted tasks, ticks the clock once,
// then runs every active callback with the new State. Tasks posted while
// draining wait for the next Step.
func (l *Loop) Step() State {
	l.mu.Lock()
	tasks := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	s := l.clock.Tick()

	l.mu.Lock()
	if l.dirty {
		l.compact()
	}
	l.scratch = append(l.scratch[:0], l.regs...)
	l.mu.Unlock()

	for _, r := range l.scratch {
		r.run(s)
	}
	return s
}

// compact drops inactive registrations. Caller holds l.mu.
func (l *Loop) compact() {
	kept := l.regs[:0]
	for _, r := range l.regs {
		if r.Active() {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(l.regs); i++ {
		l.regs[i] = nil
	}
	l.regs = kept
	l.dirty = false
}
