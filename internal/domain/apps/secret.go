package apps

import (
	"context"
	"sync"
)

const secretEntry = `i found it. the key was always in the code.

after months of searching through the system logs,
tracing patterns in the network, i finally understood.

the stellar network isn't just infrastructure.
it's alive. conscious. waiting.

and the code... CODE-42-STAR...
it's the bridge between worlds.`

// SecretView is the rendered secret room body
type SecretView struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Code  string `json:"code,omitempty"`
}

// SecretRoom is the hidden journal revealed by an unlock
type SecretRoom struct {
	lifecycle

	mu   sync.RWMutex
	code string
}

// NewSecretRoom creates the secret room showing code, if any
func NewSecretRoom(code string) *SecretRoom {
	return &SecretRoom{code: code}
}

func (s *SecretRoom) Mount(ctx context.Context) error { s.mount(); return nil }
func (s *SecretRoom) Suspend()                        { s.suspend() }
func (s *SecretRoom) Resume()                         { s.resume() }
func (s *SecretRoom) Unmount()                        { s.unmount() }

// SetCode records the code won in the game
func (s *SecretRoom) SetCode(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

// View returns the journal entry
func (s *SecretRoom) View() interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SecretView{
		Title: "Entry #7 - THE KEY",
		Body:  secretEntry,
		Code:  s.code,
	}
}
