package apps

import (
	"context"
	"sync"
	"time"
)

// Game parameters
const (
	GameDuration = 60
	GameNodes    = 3
	WinCode      = "CODE-42-STAR"
)

// GameState is the phase of one round
type GameState string

const (
	GameIdle    GameState = "idle"
	GameRunning GameState = "running"
	GameWon     GameState = "won"
	GameTimeUp  GameState = "timeup"
)

// GameView is the rendered game body
type GameView struct {
	State     GameState `json:"state"`
	TimeLeft  int       `json:"time_left"`
	Connected []bool    `json:"connected"`
	Code      string    `json:"code,omitempty"`
}

// Game is the node-connect puzzle: connect every node before the countdown ends
type Game struct {
	lifecycle

	tick     time.Duration
	onUnlock UnlockFunc

	mu        sync.Mutex
	state     GameState
	timeLeft  int
	connected [GameNodes]bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewGame creates a game that reports wins to onUnlock
func NewGame(onUnlock UnlockFunc) *Game {
	return &Game{
		tick:     time.Second,
		onUnlock: onUnlock,
		state:    GameIdle,
		timeLeft: GameDuration,
	}
}

// WithTick replaces the countdown interval
func (g *Game) WithTick(tick time.Duration) *Game {
	g.tick = tick
	return g
}

// Mount prepares a fresh round
func (g *Game) Mount(ctx context.Context) error {
	g.mount()
	return nil
}

// Suspend stops the countdown, keeping the time left
func (g *Game) Suspend() {
	if g.suspend() {
		g.stopLoop()
	}
}

// Resume restarts the countdown if a round is in progress
func (g *Game) Resume() {
	if !g.resume() {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == GameRunning {
		g.startLoopLocked()
	}
}

// Unmount stops the countdown and discards the round
func (g *Game) Unmount() {
	if !g.unmount() {
		return
	}
	g.stopLoop()

	g.mu.Lock()
	g.state = GameIdle
	g.timeLeft = GameDuration
	g.connected = [GameNodes]bool{}
	g.mu.Unlock()
}

// Start begins a new round
func (g *Game) Start() {
	g.stopLoop()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = GameRunning
	g.timeLeft = GameDuration
	g.connected = [GameNodes]bool{}
	if g.Phase() == PhaseMounted {
		g.startLoopLocked()
	}
}

// Connect links node. Connecting the last node wins the round.
func (g *Game) Connect(node int) (GameState, error) {
	if node < 0 || node >= GameNodes {
		return g.State(), ErrUnknownNode
	}

	g.mu.Lock()
	if g.state != GameRunning {
		state := g.state
		g.mu.Unlock()
		return state, ErrGameNotRunning
	}
	g.connected[node] = true
	for _, c := range g.connected {
		if !c {
			g.mu.Unlock()
			return GameRunning, nil
		}
	}
	g.mu.Unlock()

	_, err := g.Win()
	return g.State(), err
}

// Win ends a running round as won and returns the unlock code
func (g *Game) Win() (string, error) {
	g.mu.Lock()
	if g.state != GameRunning {
		g.mu.Unlock()
		return "", ErrGameNotRunning
	}
	g.state = GameWon
	for i := range g.connected {
		g.connected[i] = true
	}
	g.mu.Unlock()

	g.stopLoop()
	if g.onUnlock != nil {
		g.onUnlock(WinCode)
	}
	return WinCode, nil
}

// State returns the round phase
func (g *Game) State() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// TimeLeft returns the remaining seconds
func (g *Game) TimeLeft() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timeLeft
}

// Running reports whether the countdown goroutine is alive
func (g *Game) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cancel != nil
}

// View returns the round state
func (g *Game) View() interface{} {
	g.mu.Lock()
	defer g.mu.Unlock()

	view := GameView{
		State:     g.state,
		TimeLeft:  g.timeLeft,
		Connected: append([]bool(nil), g.connected[:]...),
	}
	if g.state == GameWon {
		view.Code = WinCode
	}
	return view
}

// startLoopLocked launches the countdown (must hold mu)
func (g *Game) startLoopLocked() {
	if g.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	g.cancel = cancel
	g.done = done
	go g.countdown(ctx, done)
}

// stopLoop cancels the countdown and waits for it to exit
func (g *Game) stopLoop() {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel, g.done = nil, nil
	g.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (g *Game) countdown(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mu.Lock()
			if g.state != GameRunning {
				g.mu.Unlock()
				return
			}
			g.timeLeft--
			if g.timeLeft <= 0 {
				g.timeLeft = 0
				g.state = GameTimeUp
				// The loop exits on its own; clear the handle so stopLoop
				// does not wait on it.
				if g.done == done {
					defer g.cancel()
					g.cancel, g.done = nil, nil
				}
				g.mu.Unlock()
				return
			}
			g.mu.Unlock()
		}
	}
}
