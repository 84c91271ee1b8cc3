package store

import (
	"sync"
	"time"
)

// Timer is the part of *time.Timer the Debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Production code uses time.AfterFunc;
// tests inject a fake that fires on demand.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Debouncer coalesces Arm calls into one call of fn per delay window. At
// most one call is pending at a time; calls to fn never overlap.
type Debouncer struct {
	delay     time.Duration
	fn        func()
	afterFunc AfterFunc

	mu      sync.Mutex
	pending Timer
	// generation invalidates a timer that fired after Cancel or FlushNow
	// already took its place.
	generation uint64

	runMu sync.Mutex
}

func NewDebouncer(delay time.Duration, fn func(), afterFunc AfterFunc) *Debouncer {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Debouncer{delay: delay, fn: fn, afterFunc: afterFunc}
}

// Arm starts the window if none is pending. Calls while armed are no-ops.
func (d *Debouncer) Arm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		return
	}
	d.generation++
	generation := d.generation
	d.pending = d.afterFunc(d.delay, func() { d.fire(generation) })
}

// FlushNow cancels any pending window and runs fn synchronously.
func (d *Debouncer) FlushNow() {
	d.Cancel()
	d.run()
}

// Cancel disarms a pending window without running fn.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
	d.generation++
}

// Pending reports whether a window is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Wait blocks until an fn call already in progress has returned.
func (d *Debouncer) Wait() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
}

func (d *Debouncer) fire(generation uint64) {
	d.mu.Lock()
	if generation != d.generation || d.pending == nil {
		d.mu.Unlock()
		return
	}
	d.pending = nil
	d.mu.Unlock()

	d.run()
}

func (d *Debouncer) run() {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	d.fn()
}
