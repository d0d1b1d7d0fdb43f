package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func outcome(ok bool) func() error {
	return func() error {
		if ok {
			return nil
		}
		return errBoom
	}
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		calls    []bool // true = success
		expected State
	}{
		{name: "stays closed on successes", calls: []bool{true, true, true}, expected: StateClosed},
		{name: "success resets the failure streak", calls: []bool{false, false, true, false, false}, expected: StateClosed},
		{name: "opens after consecutive failures", calls: []bool{false, false, false}, expected: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", Settings{ShouldTrip: tripAfter(3)})
			for _, ok := range tt.calls {
				_ = b.Call(outcome(ok))
			}
			assert.Equal(t, tt.expected, b.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	b := New("test", Settings{})

	require.NoError(t, b.Call(outcome(true)))
	assert.ErrorIs(t, b.Call(outcome(false)), errBoom)

	counts := b.Counts()
	assert.Equal(t, uint32(2), counts.Requests)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerWindowClearsCounts(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Window: time.Minute, ShouldTrip: tripAfter(3)}).WithClock(clock.Now)

	_ = b.Call(outcome(false))
	_ = b.Call(outcome(false))
	clock.Advance(2 * time.Minute)
	_ = b.Call(outcome(false))

	assert.Equal(t, StateClosed, b.State(), "failures from the previous window do not count")
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
}

func TestBreakerOpenRejectsUntilCooldown(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Cooldown: 10 * time.Second, ShouldTrip: tripAfter(2)}).WithClock(clock.Now)

	_ = b.Call(outcome(false))
	_ = b.Call(outcome(false))
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	status := b.Snapshot()
	assert.Equal(t, "test", status.Name)
	assert.Equal(t, clock.Now().Add(10*time.Second), status.OpenUntil)

	clock.Advance(11 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())
	assert.True(t, b.Snapshot().OpenUntil.IsZero())
}

func TestBreakerHalfOpenProbes(t *testing.T) {
	clock := newFakeClock()
	open := func() *Breaker {
		b := New("test", Settings{Probes: 2, Cooldown: time.Second, ShouldTrip: tripAfter(1)}).WithClock(clock.Now)
		_ = b.Call(outcome(false))
		clock.Advance(2 * time.Second)
		require.Equal(t, StateHalfOpen, b.State())
		return b
	}

	t.Run("closes after enough successes", func(t *testing.T) {
		b := open()
		require.NoError(t, b.Call(outcome(true)))
		assert.Equal(t, StateHalfOpen, b.State())
		require.NoError(t, b.Call(outcome(true)))
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("reopens on a failed probe", func(t *testing.T) {
		b := open()
		_ = b.Call(outcome(false))
		assert.Equal(t, StateOpen, b.State())
	})

	t.Run("limits concurrent probes", func(t *testing.T) {
		b := open()
		release := make(chan struct{})
		started := make(chan struct{}, 2)

		var wg sync.WaitGroup
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = b.Call(func() error {
					started <- struct{}{}
					<-release
					return nil
				})
			}()
		}
		<-started
		<-started

		assert.ErrorIs(t, b.Call(outcome(true)), ErrTooManyRequests)
		close(release)
		wg.Wait()
		assert.Equal(t, StateClosed, b.State())
	})
}

func TestBreakerDropsStaleOutcomes(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{Window: time.Minute, ShouldTrip: tripAfter(1)}).WithClock(clock.Now)

	err := b.Call(func() error {
		// The window rolls over while the call is in flight
		clock.Advance(2 * time.Minute)
		return errBoom
	})

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, Counts{}, b.Counts())
}

func TestBreakerPanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{ShouldTrip: tripAfter(1)})

	assert.Panics(t, func() {
		_ = b.Call(func() error { panic("collaborator exploded") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerStateChangeCallback(t *testing.T) {
	clock := newFakeClock()
	var changes []string
	b := New("blob", Settings{
		Cooldown:   time.Second,
		ShouldTrip: tripAfter(1),
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, name+":"+from.String()+"->"+to.String())
		},
	}).WithClock(clock.Now)

	_ = b.Call(outcome(false))
	clock.Advance(2 * time.Second)
	_ = b.Call(outcome(true))

	assert.Equal(t, []string{
		"blob:closed->open",
		"blob:open->half-open",
		"blob:half-open->closed",
	}, changes)
}
