// Package tracker holds pending, in-flight and completed task records.
// It provides idempotent task identity: concurrent requests for identical
// work collapse onto a single task, and later callers receive a handle to
// the first task's eventual result.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"genmesh/core"
	"genmesh/logging"
)

// Handle references one tracked task. It stays valid across the task's
// whole lifetime; Response may be read once Done is closed.
type Handle struct {
	rec *record
}

// TaskID returns the tracked task's id.
func (h *Handle) TaskID() string { return h.rec.task.ID }

// Done is closed when the task reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.rec.done }

// Response returns the terminal AgentResponse. It is nil until Done is
// closed.
func (h *Handle) Response() *core.AgentResponse {
	select {
	case <-h.rec.done:
		return h.rec.resp
	default:
		return nil
	}
}

type record struct {
	task *core.Task
	done chan struct{}
	resp *core.AgentResponse // written once, before done is closed
}

// Options configures a Tracker.
type Options struct {
	// Logger receives state transition events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Tracker is the single source of truth for task state and
// deduplication. Check-and-insert is one atomic operation under the
// tracker's lock, so two callers can never both observe "no existing
// task" and double-submit.
type Tracker struct {
	mu      sync.Mutex
	records map[string]*record
	logger  logging.Logger
}

// New creates an empty tracker.
func New(optFns ...func(o *Options)) *Tracker {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tracker{records: make(map[string]*record), logger: opts.Logger}
}

// Enqueue registers the task as pending. If a non-terminal task with the
// same id already exists the call fails with ErrDuplicateTask and returns
// the existing task's handle, so the caller can await the in-flight
// result instead of spawning redundant work. A terminal record for the
// same id is replaced.
func (t *Tracker) Enqueue(task *core.Task) (*Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.records[task.ID]; ok && !existing.task.Status.Terminal() {
		return &Handle{rec: existing}, fmt.Errorf("enqueue %s: %w", task.ID, ErrDuplicateTask)
	}

	task.Status = core.TaskPending
	rec := &record{task: task, done: make(chan struct{})}
	t.records[task.ID] = rec
	t.logger.Debug("tracker enqueued task task_id=%s type=%s priority=%d", task.ID, task.Type, task.Priority)

	return &Handle{rec: rec}, nil
}

// Status is a non-blocking read of the task's current state.
func (t *Tracker) Status(taskID string) (core.TaskStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[taskID]
	if !ok {
		return 0, false
	}
	return rec.task.Status, true
}

// MarkRunning transitions the task to RUNNING. Only the executor calls
// this, on dispatch.
func (t *Tracker) MarkRunning(taskID string) error {
	return t.transition(taskID, core.TaskRunning, nil)
}

// Complete records a successful terminal response.
func (t *Tracker) Complete(taskID string, resp *core.AgentResponse) error {
	return t.transition(taskID, core.TaskCompleted, resp)
}

// Fail records a failed terminal response.
func (t *Tracker) Fail(taskID string, resp *core.AgentResponse) error {
	return t.transition(taskID, core.TaskFailed, resp)
}

// Timeout records a deadline-expired terminal response.
func (t *Tracker) Timeout(taskID string, resp *core.AgentResponse) error {
	return t.transition(taskID, core.TaskTimeout, resp)
}

func (t *Tracker) transition(taskID string, next core.TaskStatus, resp *core.AgentResponse) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[taskID]
	if !ok {
		return fmt.Errorf("transition %s: %w", taskID, ErrUnknownTask)
	}
	if !rec.task.Status.CanTransition(next) {
		return fmt.Errorf("transition %s: %s -> %s: %w", taskID, rec.task.Status, next, ErrInvalidTransition)
	}

	t.logger.Debug("tracker transition task_id=%s from=%s to=%s", taskID, rec.task.Status, next)
	rec.task.Status = next

	if next.Terminal() {
		rec.resp = resp
		close(rec.done)
	}

	return nil
}

// Await blocks until the task reaches a terminal state, the timeout
// elapses, or ctx is cancelled. A timeout or cancellation detaches only
// the caller's wait; the underlying work is unaffected. timeout <= 0
// means wait until ctx is done.
func (t *Tracker) Await(ctx context.Context, taskID string, timeout time.Duration) (*core.AgentResponse, error) {
	t.mu.Lock()
	rec, ok := t.records[taskID]
	t.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("await %s: %w", taskID, ErrUnknownTask)
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-rec.done:
		return rec.resp, nil
	case <-timeoutCh:
		return nil, fmt.Errorf("await %s after %s: %w", taskID, timeout, ErrAwaitTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("await %s: %w", taskID, ctx.Err())
	}
}
