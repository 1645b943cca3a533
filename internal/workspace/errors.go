package workspace

import "errors"

var (
	// ErrSessionNotFound is returned when no open session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrInvalidEvent is returned for device events that fail validation.
	ErrInvalidEvent = errors.New("invalid device event")

	// ErrInvalidCommand is returned for unknown mode or zoom commands.
	ErrInvalidCommand = errors.New("invalid command")
)
