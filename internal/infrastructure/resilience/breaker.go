package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker. Zero values take the defaults in New.
type Settings struct {
	// Probes is how many calls a half-open breaker lets through, and how
	// many must succeed before it closes again
	Probes uint32
	// Window is how long a closed breaker accumulates counts before clearing them
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing
	Cooldown time.Duration
	// ShouldTrip decides, after a failure while closed, whether to open
	ShouldTrip func(counts Counts) bool
	// OnStateChange is called with the breaker lock held; keep it short
	OnStateChange func(name string, from State, to State)
}

// Counts holds the statistics for the current window
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Status is a point-in-time view of a breaker
type Status struct {
	Name      string
	State     State
	Counts    Counts
	OpenUntil time.Time
}

// Breaker stops calling a collaborator that keeps failing and probes it
// again after a cooldown
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu         sync.Mutex
	state      State     // Protected by mu
	counts     Counts    // Protected by mu
	deadline   time.Time // Protected by mu; window end when closed, cooldown end when open
	generation uint64    // Protected by mu; bumped on every reset
}

// New creates a breaker with the given settings
func New(name string, settings Settings) *Breaker {
	if settings.Probes == 0 {
		settings.Probes = 1
	}
	if settings.Window == 0 {
		settings.Window = time.Minute
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = time.Minute
	}
	if settings.ShouldTrip == nil {
		settings.ShouldTrip = func(counts Counts) bool {
			return counts.ConsecutiveFailures > 5
		}
	}

	b := &Breaker{
		name:     name,
		settings: settings,
		now:      time.Now,
	}
	b.deadline = b.now().Add(settings.Window)
	return b
}

// WithClock replaces the time source
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.now = now
	b.deadline = now().Add(b.settings.Window)
	return b
}

// Name returns the name of the breaker
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.advance(b.now())
}

// Counts returns a copy of the counts for the current window
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance(b.now())
	return b.counts
}

// Snapshot returns the state and counts read under one lock
func (b *Breaker) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := Status{
		Name:   b.name,
		State:  b.advance(b.now()),
		Counts: b.counts,
	}
	if status.State == StateOpen {
		status.OpenUntil = b.deadline
	}
	return status
}

// Call runs fn unless the breaker rejects it. fn's error is returned as is
// and counts as a failure; a panic counts as a failure and is re-raised.
func (b *Breaker) Call(fn func() error) error {
	generation, err := b.acquire()
	if err != nil {
		return err
	}

	succeeded := false
	defer func() {
		b.release(generation, succeeded)
	}()

	err = fn()
	succeeded = err == nil
	return err
}

func (b *Breaker) acquire() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.advance(b.now()) {
	case StateOpen:
		return 0, ErrCircuitOpen
	case StateHalfOpen:
		if b.counts.Requests >= b.settings.Probes {
			return 0, ErrTooManyRequests
		}
	}

	b.counts.Requests++
	return b.generation, nil
}

// release records an outcome. Outcomes from before the last reset are dropped.
func (b *Breaker) release(generation uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	state := b.advance(now)
	if generation != b.generation {
		return
	}

	if success {
		b.counts.TotalSuccesses++
		b.counts.ConsecutiveSuccesses++
		b.counts.ConsecutiveFailures = 0
		if state == StateHalfOpen && b.counts.ConsecutiveSuccesses >= b.settings.Probes {
			b.transition(StateClosed, now)
		}
		return
	}

	b.counts.TotalFailures++
	b.counts.ConsecutiveFailures++
	b.counts.ConsecutiveSuccesses = 0
	switch state {
	case StateClosed:
		if b.settings.ShouldTrip(b.counts) {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

// advance applies time-based transitions and returns the resulting state
func (b *Breaker) advance(now time.Time) State {
	switch b.state {
	case StateClosed:
		if now.After(b.deadline) {
			b.reset()
			b.deadline = now.Add(b.settings.Window)
		}
	case StateOpen:
		if now.After(b.deadline) {
			b.transition(StateHalfOpen, now)
		}
	}
	return b.state
}

func (b *Breaker) transition(to State, now time.Time) {
	if b.state == to {
		return
	}

	from := b.state
	b.state = to
	b.reset()

	switch to {
	case StateClosed:
		b.deadline = now.Add(b.settings.Window)
	case StateOpen:
		b.deadline = now.Add(b.settings.Cooldown)
	case StateHalfOpen:
		b.deadline = time.Time{}
	}

	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) reset() {
	b.counts = Counts{}
	b.generation++
}
