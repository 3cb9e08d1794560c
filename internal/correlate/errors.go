package correlate

import (
	"fmt"
	"time"
)

// ValidationError reports a malformed argument, rejected before any
// transport work happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateWaitError reports an ask on a thread that already has an
// unresolved wait. Concurrent questions on one thread are not supported.
type DuplicateWaitError struct {
	ThreadTS string
}

func (e *DuplicateWaitError) Error() string {
	return fmt.Sprintf("a question is already awaiting a reply in thread %s", e.ThreadTS)
}

// ResponseTimeoutError reports that no human reply arrived before the
// deadline. The thread stays active, so asking again on it is allowed.
type ResponseTimeoutError struct {
	ThreadTS string
	Timeout  time.Duration
}

func (e *ResponseTimeoutError) Error() string {
	return fmt.Sprintf("no human reply in thread %s within %s", e.ThreadTS, e.Timeout)
}

// TransportError wraps a chat transport failure raised while posting.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("slack %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
