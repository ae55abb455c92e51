package kws

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrSleeping is returned by Engine.Run once the node has halted for idle
// and the wake timer fired. The caller must restart from initialization.
var ErrSleeping = errors.New("node entered deep sleep")

// PowerState is the node's power state.
type PowerState int32

const (
	Awake PowerState = iota
	Sleeping
)

func (s PowerState) String() string {
	switch s {
	case Awake:
		return "AWAKE"
	case Sleeping:
		return "SLEEPING"
	}
	return "UNKNOWN"
}

// WakeTimer is the only wake source. Arm is called once at startup; Halt
// stops the node until the armed timer fires.
type WakeTimer interface {
	Arm(d time.Duration) error
	Halt(ctx context.Context) error
}

// powerManager enters SLEEPING at most once per run.
type powerManager struct {
	timeout time.Duration
	state   atomic.Int32
}

func newPowerManager(timeout time.Duration) *powerManager {
	return &powerManager{timeout: timeout}
}

func (p *powerManager) State() PowerState { return PowerState(p.state.Load()) }

// idleExpired reports whether more than the timeout has passed since last.
func (p *powerManager) idleExpired(idle time.Duration) bool {
	return idle > p.timeout
}

// enterSleep moves AWAKE to SLEEPING and reports whether this call did it.
func (p *powerManager) enterSleep() bool {
	return p.state.CompareAndSwap(int32(Awake), int32(Sleeping))
}

// TimerWake is a host WakeTimer: Halt blocks until the armed duration has
// elapsed since the Halt call.
type TimerWake struct {
	mu    sync.Mutex
	after time.Duration
	armed bool
}

func (w *TimerWake) Arm(d time.Duration) error {
	if d <= 0 {
		return errors.New("wake duration must be > 0")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.after = d
	w.armed = true
	return nil
}

// Halt returns when the timer fires or ctx ends. Halting an unarmed timer
// is an error; the node would never wake.
func (w *TimerWake) Halt(ctx context.Context) error {
	w.mu.Lock()
	after, armed := w.after, w.armed
	w.mu.Unlock()
	if !armed {
		return errors.New("halt without an armed wake timer")
	}
	t := time.NewTimer(after)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
