package periodic

import "github.com/pkg/errors"

// ErrCanceled is the status delivered to a callback whose pending firing was
// canceled, either by Cancel or by Adopt replacing the schedule. It ends the
// sequence regardless of the callback's return value. Waiter implementations
// may wrap it; the engine matches it with errors.Is.
var ErrCanceled = errors.New("periodic: timer canceled")

// ErrStopped is returned by Loop.Submit once the loop has been stopped.
var ErrStopped = errors.New("periodic: loop stopped")
