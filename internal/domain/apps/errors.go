package apps

import "errors"

var (
	ErrNoteTooLarge   = errors.New("note exceeds maximum size")
	ErrGameNotRunning = errors.New("game is not running")
	ErrUnknownNode    = errors.New("unknown node")
	ErrStorageOffline = errors.New("file storage is not configured")
)
