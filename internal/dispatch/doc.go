// Package dispatch moves query requests from the caller's goroutine to a
// background worker pool and delivers each outcome through a one-shot
// completion callback.
//
// The pipeline per request:
//  1. Submit copies the SQL and parameters, assigns a request ID, and
//     enqueues the work. It never blocks beyond the enqueue; a full queue
//     is reported immediately as ErrQueueFull.
//  2. A worker runs the statement against the read-only handle and records
//     the outcome (result or error, never both).
//  3. A single delivery goroutine invokes the request's callback exactly
//     once. Delivery is serial across all requests, so callers never
//     observe overlapping or reentrant completions.
//
// Queue capacity and worker count are explicit configuration, not a shared
// process-wide default. With one worker (the default) requests execute in
// FIFO order against the handle.
//
// Engine errors are never fatal to the dispatcher; they surface only
// through the callback's error slot. Close drains every accepted request
// before returning, so a handle closed after dispatcher shutdown is never
// closed under in-flight work.
package dispatch
