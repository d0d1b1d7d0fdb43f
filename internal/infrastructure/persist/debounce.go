package persist

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of writes per key. Scheduling a key that is
// already pending cancels the earlier call, so only the last one runs.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingCall
	stopped bool
}

type pendingCall struct {
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a debouncer that waits delay after the last Schedule
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pendingCall),
	}
}

// Schedule arranges for fn to run after the delay unless key is scheduled again
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	call := &pendingCall{fn: fn}
	call.timer = time.AfterFunc(d.delay, func() { d.fire(key, call) })
	d.pending[key] = call
}

// Cancel drops the pending call for key
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if call, ok := d.pending[key]; ok {
		call.timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll drops every pending call
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, call := range d.pending {
		call.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether key has a call waiting
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending call now. Each call runs at most once even if its
// timer is firing concurrently.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	calls := make([]*pendingCall, 0, len(d.pending))
	for key, call := range d.pending {
		call.timer.Stop()
		calls = append(calls, call)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, call := range calls {
		call.fn()
	}
}

// Stop flushes pending calls and rejects further scheduling
func (d *Debouncer) Stop() {
	d.Flush()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Debouncer) fire(key string, call *pendingCall) {
	d.mu.Lock()
	if d.pending[key] != call {
		// Superseded, cancelled or already flushed
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	call.fn()
}
