// Package resource models an asynchronously loaded value as an explicit
// state machine: pending, then resolved or failed, never changing again.
package resource

import (
	"errors"
	"sync"

	"github.com/Faultbox/orbitfx/internal/engine/frame"
)

// ErrCanceled fails handles whose load was abandoned.
var ErrCanceled = errors.New("resource load canceled")

// State is the load state of a handle.
type State int

const (
	Pending State = iota
	Resolved
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Settled reports whether s is terminal.
func (s State) Settled() bool {
	return s == Resolved || s == Failed
}

// Waitable is the type-erased view of a handle used by code that waits on
// several resources of different types.
type Waitable interface {
	State() State
	Err() error
	Subscribe(fn func(State)) (cancel func())
}

// Handle holds a value that becomes available later.
//
// Resolve and Fail may be called from any goroutine. Subscribers are
// invoked through the dispatcher, so with a frame.Loop they run on the loop
// thread.
type Handle[T any] struct {
	name     string
	dispatch frame.Dispatcher

	mu    sync.Mutex
	state State
	value T
	err   error
	subs  map[uint64]func(State)
	next  uint64
}

// New returns a pending handle. A nil dispatcher invokes subscribers
// synchronously on the settling goroutine.
func New[T any](name string, d frame.Dispatcher) *Handle[T] {
	return &Handle[T]{name: name, dispatch: d}
}

// Name returns the identifier the handle was created with.
func (h *Handle[T]) Name() string {
	return h.name
}

// State returns the current state.
func (h *Handle[T]) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Get returns the value and true once resolved.
func (h *Handle[T]) Get() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value, h.state == Resolved
}

// Err returns the failure, or nil.
func (h *Handle[T]) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Resolve settles the handle with v. It reports false if the handle had
// already settled, in which case nothing changes.
func (h *Handle[T]) Resolve(v T) bool {
	return h.settle(Resolved, v, nil)
}

// Fail settles the handle with err. It reports false if the handle had
// already settled.
func (h *Handle[T]) Fail(err error) bool {
	var zero T
	if err == nil {
		err = errors.New("unknown failure")
	}
	return h.settle(Failed, zero, err)
}

// Settle resolves with v when err is nil and fails otherwise.
func (h *Handle[T]) Settle(v T, err error) bool {
	if err != nil {
		return h.Fail(err)
	}
	return h.Resolve(v)
}

func (h *Handle[T]) settle(s State, v T, err error) bool {
	h.mu.Lock()
	if h.state != Pending {
		h.mu.Unlock()
		return false
	}
	h.state, h.value, h.err = s, v, err
	ids := make([]uint64, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.notify(id, s)
	}
	return true
}

// Subscribe calls fn once when the handle settles, or soon after if it
// already has. The returned cancel stops a notification that has not yet
// run. Cancel may be called any number of times.
func (h *Handle[T]) Subscribe(fn func(State)) (cancel func()) {
	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[uint64]func(State))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	s := h.state
	h.mu.Unlock()

	if s.Settled() {
		h.notify(id, s)
	}
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// notify delivers s to subscriber id unless it was canceled in the
// meantime. Each subscriber is delivered at most once.
func (h *Handle[T]) notify(id uint64, s State) {
	deliver := func() {
		h.mu.Lock()
		fn, ok := h.subs[id]
		delete(h.subs, id)
		h.mu.Unlock()
		if ok {
			fn(s)
		}
	}
	if h.dispatch == nil {
		deliver()
		return
	}
	h.dispatch.Post(deliver)
}
