package types

// CredentialsRequest carries email/password for sign-up and sign-in
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PositionRequest moves a window
type PositionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SizeRequest resizes a window
type SizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PointerRequest is a pointer gesture event from the browser
type PointerRequest struct {
	Kind     string `json:"kind" binding:"required"`
	WindowID string `json:"window_id"`
	Target   string `json:"target"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// KeyRequest is a keyboard event from the browser
type KeyRequest struct {
	Key  string `json:"key" binding:"required"`
	Ctrl bool   `json:"ctrl"`
	Meta bool   `json:"meta"`
}

// CommandRequest is one terminal input line
type CommandRequest struct {
	Line string `json:"line"`
}

// NoteRequest replaces the notepad content
type NoteRequest struct {
	Content string `json:"content"`
}

// SessionSaveRequest names a workspace snapshot
type SessionSaveRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type     string          `json:"type"`
	WindowID string          `json:"window_id,omitempty"`
	Pointer  *PointerRequest `json:"pointer,omitempty"`
	Key      *KeyRequest     `json:"key,omitempty"`
}
