package apps

import (
	"context"
	"sync"
)

// Content is the body of one application window. The desktop mounts it once
// when the window opens, suspends and resumes it across minimize/restore and
// unmounts it when the window closes.
type Content interface {
	Mount(ctx context.Context) error
	Suspend()
	Resume()
	Unmount()
	View() interface{}
}

// Phase is the lifecycle phase of a content instance
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseMounted   Phase = "mounted"
	PhaseSuspended Phase = "suspended"
)

// UnlockFunc is called when a secret is discovered. code is empty when the
// unlock came from the terminal key rather than a game win.
type UnlockFunc func(code string)

// lifecycle tracks the phase and mount count shared by every content type
type lifecycle struct {
	mu     sync.Mutex
	phase  Phase
	mounts int
}

func (l *lifecycle) mount() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhaseMounted || l.phase == PhaseSuspended {
		return false
	}
	l.phase = PhaseMounted
	l.mounts++
	return true
}

func (l *lifecycle) suspend() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseMounted {
		return false
	}
	l.phase = PhaseSuspended
	return true
}

func (l *lifecycle) resume() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase != PhaseSuspended {
		return false
	}
	l.phase = PhaseMounted
	return true
}

func (l *lifecycle) unmount() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == PhaseIdle || l.phase == "" {
		return false
	}
	l.phase = PhaseIdle
	return true
}

// Phase returns the current lifecycle phase
func (l *lifecycle) Phase() Phase {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.phase == "" {
		return PhaseIdle
	}
	return l.phase
}

// Mounts returns how many times the content has been mounted
func (l *lifecycle) Mounts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounts
}
