package dispatch

import "errors"

// Domain errors for the dispatch package.
//
// Submit returns these directly: programming errors and backpressure are
// reported at the call site, never through the completion callback.
var (
	// ErrNilCallback is returned when a request has no completion callback.
	ErrNilCallback = errors.New("dispatch: completion callback is required")

	// ErrEmptySQL is returned when a request has no SQL text.
	ErrEmptySQL = errors.New("dispatch: sql text is required")

	// ErrQueueFull is returned when the bounded work queue is at capacity.
	ErrQueueFull = errors.New("dispatch: work queue full")

	// ErrClosed is returned when submitting after shutdown has begun.
	ErrClosed = errors.New("dispatch: dispatcher closed")
)
