package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nerrad567/roquery/internal/rodb"
)

// Default dispatcher sizing.
const (
	// defaultWorkers is the worker count when unset. One worker gives
	// strict FIFO execution against the handle.
	defaultWorkers = 1

	// defaultQueueSize is the bounded queue capacity when unset.
	defaultQueueSize = 64
)

// Executor is the interface the dispatcher needs from the rodb package.
type Executor interface {
	// Query runs one statement to completion and returns its result.
	Query(ctx context.Context, sqlText string, params []string) (*rodb.Result, error)
}

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Callback is a one-shot completion sink.
//
// Exactly one of err and result is non-nil, and the callback is invoked
// exactly once per accepted request, from the dispatcher's delivery
// goroutine. The result owns all of its memory.
type Callback func(err error, result *rodb.Result)

// Request is one asynchronous query submission.
type Request struct {
	// SQL is the statement text with ? placeholders.
	SQL string

	// Params are text parameter values bound in order. The slice is copied
	// at submission; the caller may reuse its buffer after Submit returns.
	Params []string

	// Done receives the outcome. Required.
	Done Callback
}

// Config contains dispatcher settings.
// These map to the dispatcher section of config.yaml.
type Config struct {
	// Workers is the number of execution goroutines. Values below 1 use
	// the default of 1. More than one worker removes the FIFO ordering
	// guarantee between requests; execution against the handle stays
	// serialised either way.
	Workers int

	// QueueSize is the bounded work queue capacity. Values below 1 use
	// the default of 64. A full queue rejects Submit with ErrQueueFull.
	QueueSize int
}

// pendingWork is one in-flight unit. It is owned by exactly one goroutine
// at a time: the submitter until enqueue, a worker during execution, then
// the delivery goroutine until the callback has run.
type pendingWork struct {
	id     uuid.UUID
	sql    string
	params []string
	done   Callback

	result *rodb.Result
	err    error
}

// Dispatcher schedules query requests onto background workers and delivers
// completions serially.
//
// Thread Safety: Submit is safe for concurrent use. Close may be called
// once from any goroutine; later calls are no-ops.
type Dispatcher struct {
	exec   Executor
	logger Logger

	mu     sync.RWMutex
	closed bool

	queue       chan *pendingWork
	completions chan *pendingWork

	workers      sync.WaitGroup
	deliveryDone chan struct{}
}

// New creates a dispatcher and starts its workers and delivery goroutine.
//
// Parameters:
//   - exec: Statement executor (typically *rodb.DB)
//   - cfg: Worker count and queue capacity (zero values use defaults)
//   - logger: Logger instance (may be nil)
//
// Returns:
//   - *Dispatcher: Running dispatcher accepting submissions
func New(exec Executor, cfg Config, logger Logger) *Dispatcher {
	if logger == nil {
		logger = noopLogger{}
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		exec:         exec,
		logger:       logger,
		queue:        make(chan *pendingWork, queueSize),
		completions:  make(chan *pendingWork, queueSize),
		deliveryDone: make(chan struct{}),
	}

	d.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	go d.deliver()

	d.logger.Debug("dispatcher started", "workers", workers, "queue_size", queueSize)
	return d
}

// Submit enqueues one query request.
//
// Submit never blocks beyond the cost of the enqueue. Validation and
// backpressure errors are returned directly; every accepted request is
// later completed exactly once through its callback.
//
// Parameters:
//   - req: The request; SQL and Done are required
//
// Returns:
//   - error: nil on acceptance, or:
//   - ErrNilCallback / ErrEmptySQL for malformed requests
//   - ErrQueueFull when the bounded queue is at capacity
//   - ErrClosed after shutdown has begun
func (d *Dispatcher) Submit(req Request) error {
	if req.Done == nil {
		return ErrNilCallback
	}
	if strings.TrimSpace(req.SQL) == "" {
		return ErrEmptySQL
	}

	work := &pendingWork{
		id:   uuid.New(),
		sql:  req.SQL,
		done: req.Done,
	}
	// Copy parameters at the boundary; the caller may reuse its slice.
	if len(req.Params) > 0 {
		work.params = append([]string(nil), req.Params...)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}

	select {
	case d.queue <- work:
		d.logger.Debug("query queued", "request_id", work.id)
		return nil
	default:
		return ErrQueueFull
	}
}

// worker executes queued requests until the queue is closed and drained.
func (d *Dispatcher) worker() {
	defer d.workers.Done()
	for work := range d.queue {
		work.result, work.err = d.exec.Query(context.Background(), work.sql, work.params)
		if work.err != nil {
			d.logger.Debug("query failed", "request_id", work.id, "error", work.err)
		} else {
			d.logger.Debug("query executed",
				"request_id", work.id,
				"rows", work.result.RowCount(),
			)
		}
		d.completions <- work
	}
}

// deliver invokes callbacks serially, one completed request at a time.
// Serial delivery is the dispatcher's reentrancy guarantee: no two
// callbacks ever run concurrently.
func (d *Dispatcher) deliver() {
	defer close(d.deliveryDone)
	for work := range d.completions {
		work.done(work.err, work.result)
	}
}

// Close stops intake and drains all accepted work.
//
// Every request accepted before Close still executes and is delivered
// exactly once. Close returns when delivery has finished or when ctx
// expires, whichever comes first; on expiry the remaining work continues
// in the background.
//
// Close is idempotent.
//
// Parameters:
//   - ctx: Bounds the wait for the drain
//
// Returns:
//   - error: nil on clean drain, or ctx's error if the wait was cut short
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	// Workers drain the queue, then the completions channel closes and the
	// delivery goroutine finishes any remaining callbacks.
	go func() {
		d.workers.Wait()
		close(d.completions)
	}()

	select {
	case <-d.deliveryDone:
		d.logger.Debug("dispatcher drained")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch: shutdown: %w", ctx.Err())
	}
}
