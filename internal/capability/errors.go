package capability

import "errors"

// Dispatch errors. Both are reported inside a Result envelope rather than
// escaping to the caller.
var (
	// ErrUnknownCapability is returned when the requested tool name is not
	// part of the closed capability set.
	ErrUnknownCapability = errors.New("unknown capability")

	// ErrNotRunning is returned when dispatch is attempted before Start or
	// after Stop.
	ErrNotRunning = errors.New("capability server is not running")
)
