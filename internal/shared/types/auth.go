package types

import "time"

// User is an account known to the auth collaborator
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	IsGuest   bool      `json:"is_guest"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthSession is an active sign-in
type AuthSession struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResult is the uniform auth response shape
type AuthResult struct {
	User    *User        `json:"user"`
	Session *AuthSession `json:"session,omitempty"`
	IsGuest bool         `json:"is_guest,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// AuthEvent names a session change notification
type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
	EventExpired   AuthEvent = "SESSION_EXPIRED"
)

// Profile holds per-user preferences
type Profile struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	Preferences map[string]interface{} `json:"preferences"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}
