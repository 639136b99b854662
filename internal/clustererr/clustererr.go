// Package clustererr defines the two non-recoverable error categories that
// can surface from inside a cluster run: invariant violations detected by
// the staging ring or dispatcher, and usage errors detected at the Encrypt
// boundary before any core is forked.
package clustererr

import "fmt"

// InvariantError reports a violated internal invariant (a buffer size or
// layout constraint that should be impossible to reach from valid inputs).
// Anything that returns one is routed through clusterwrap's abort path
// rather than back to the Encrypt caller.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Msg)
}

// UsageError reports a precondition violated by the Encrypt caller: an
// unsupported cipher id, or a RAM device that does not match the wrapper's
// device.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %s", e.Msg)
}
