// Package auth implements email/password and guest accounts with bearer
// session tokens. Accounts and sessions live in SQLite; passwords are
// bcrypt hashed. Every call returns a types.AuthResult whose Error field
// carries a user-facing message instead of a Go error.
package auth
