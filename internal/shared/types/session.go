package types

import "time"

// Session represents a saved workspace state
type Session struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Workspace   Workspace              `json:"workspace"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// Workspace contains the complete desktop state
type Workspace struct {
	Registry       RegistryState `json:"registry"`
	SecretUnlocked bool          `json:"secret_unlocked"`
	GameCode       string        `json:"game_code,omitempty"`
}

// SessionMetadata contains summary information
type SessionMetadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	WindowCount int       `json:"window_count"`
}

// ToMetadata extracts metadata from session
func (s *Session) ToMetadata() SessionMetadata {
	return SessionMetadata{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		WindowCount: len(s.Workspace.Registry.Windows),
	}
}

// SessionStats contains desktop manager statistics
type SessionStats struct {
	ActiveDesktops int        `json:"active_desktops"`
	LastSaved      *time.Time `json:"last_saved,omitempty"`
	LastRestored   *time.Time `json:"last_restored,omitempty"`
}
