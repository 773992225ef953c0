// Package executor runs agent invocations on a bounded worker pool with
// per-job deadlines. It owns the PENDING -> RUNNING -> terminal
// transitions of every task it accepts and produces exactly one terminal
// AgentResponse per accepted job. Retry policy deliberately lives above
// the executor (in the pipeline's caller), never inside it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"genmesh/core"
	"genmesh/logging"
	"genmesh/registry"
	"genmesh/tracker"
)

// SaturationPolicy selects the behavior of Submit when all worker slots
// are busy.
type SaturationPolicy int

const (
	// SaturationQueue queues jobs FIFO by priority (ties broken by
	// creation time ascending) until a slot frees. This is the default.
	SaturationQueue SaturationPolicy = iota
	// SaturationReject fails Submit with ErrPoolSaturated instead of
	// queueing.
	SaturationReject
)

// Options configures an Executor.
type Options struct {
	// MaxWorkers bounds concurrent agent invocations. Defaults to 3.
	MaxWorkers int
	// Policy selects queueing vs rejection on saturation. Defaults to
	// SaturationQueue.
	Policy SaturationPolicy
	// Logger receives dispatch and completion events. Defaults to
	// NoOpLogger.
	Logger logging.Logger
}

// Executor dispatches tasks to agents resolved from the registry,
// bounded by a weighted semaphore of MaxWorkers slots.
//
// Cancellation is best-effort: when a job's deadline expires the task is
// marked TIMEOUT and awaiting callers unblock immediately, but the pool
// slot is reclaimed only when the agent call actually returns. Agents
// must poll ctx to cooperate; a non-cooperative agent keeps consuming
// its slot until it finishes.
type Executor struct {
	registry *registry.Registry
	tracker  *tracker.Tracker
	sem      *semaphore.Weighted
	policy   SaturationPolicy
	logger   logging.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	queue  jobHeap
	seq    uint64
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// New creates an Executor and starts its dispatcher.
func New(reg *registry.Registry, trk *tracker.Tracker, optFns ...func(o *Options)) *Executor {
	opts := Options{
		MaxWorkers: 3,
		Policy:     SaturationQueue,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{
		registry: reg,
		tracker:  trk,
		sem:      semaphore.NewWeighted(int64(opts.MaxWorkers)),
		policy:   opts.Policy,
		logger:   opts.Logger,
		baseCtx:  ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	go e.dispatch()

	return e
}

// Submit accepts a previously enqueued task for execution by the named
// agent under the given deadline. Under SaturationQueue the job waits in
// priority order for a free slot; under SaturationReject it fails fast
// with ErrPoolSaturated when the pool is full.
func (e *Executor) Submit(task *core.Task, agentName string, timeout time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("submit %s: timeout must be positive", task.ID)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("submit %s: %w", task.ID, ErrExecutorClosed)
	}
	e.seq++
	j := &job{task: task, agentName: agentName, timeout: timeout, seq: e.seq}

	if e.policy == SaturationReject {
		e.mu.Unlock()
		if !e.sem.TryAcquire(1) {
			return fmt.Errorf("submit %s: %w", task.ID, ErrPoolSaturated)
		}
		go e.run(j)
		return nil
	}

	e.queue.push(j)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}

	return nil
}

// Close stops the dispatcher, cancels in-flight job contexts and fails
// all still-queued jobs so their awaiters unblock. It is safe to call
// once; subsequent submits fail with ErrExecutorClosed.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	abandoned := make([]*job, 0, e.queue.Len())
	for e.queue.Len() > 0 {
		abandoned = append(abandoned, e.queue.pop())
	}
	e.mu.Unlock()

	e.cancel()
	<-e.done

	for _, j := range abandoned {
		e.failPending(j, fmt.Errorf("job abandoned: %w", ErrExecutorClosed))
	}
}

// dispatch is the queue-policy scheduling loop: acquire a slot, pop the
// highest-priority queued job, run it.
func (e *Executor) dispatch() {
	defer close(e.done)

	for {
		e.mu.Lock()
		empty := e.queue.Len() == 0
		e.mu.Unlock()

		if empty {
			select {
			case <-e.baseCtx.Done():
				return
			case <-e.wake:
				continue
			}
		}

		if err := e.sem.Acquire(e.baseCtx, 1); err != nil {
			return
		}

		e.mu.Lock()
		j := e.queue.pop()
		e.mu.Unlock()

		if j == nil {
			e.sem.Release(1)
			continue
		}

		go e.run(j)
	}
}

// run executes one job holding one pool slot. The slot is released by
// the inner goroutine when the agent call returns, not when the deadline
// fires.
func (e *Executor) run(j *job) {
	agent, err := e.registry.Resolve(j.agentName)
	if err != nil {
		e.sem.Release(1)
		e.failPending(j, fmt.Errorf("resolve agent: %w", err))
		return
	}

	if err := e.tracker.MarkRunning(j.task.ID); err != nil {
		e.sem.Release(1)
		e.logger.Warn("executor could not mark task running task_id=%s: %v", j.task.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(e.baseCtx, j.timeout)
	defer cancel()

	type outcome struct {
		resp    *core.AgentResponse
		elapsed time.Duration
		err     error
	}

	process := Timed(agent.Process)
	outCh := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer e.sem.Release(1)
		resp, elapsed, err := process(ctx, j.task.Request)
		outCh <- outcome{resp: resp, elapsed: elapsed, err: err}
	}()

	select {
	case out := <-outCh:
		e.finish(j, out.resp, out.elapsed, out.err)
	case <-ctx.Done():
		elapsed := time.Since(start)
		if ctx.Err() == context.DeadlineExceeded {
			resp := &core.AgentResponse{
				AgentName:     j.agentName,
				ExecutionTime: elapsed,
				Error:         fmt.Sprintf("%s after %s", ErrJobTimeout, j.timeout),
			}
			if err := e.tracker.Timeout(j.task.ID, resp); err != nil {
				e.logger.Warn("executor timeout transition failed task_id=%s: %v", j.task.ID, err)
			}
			e.logger.Warn("executor job timed out task_id=%s agent=%s timeout=%s", j.task.ID, j.agentName, j.timeout)
			return
		}
		// Executor shutdown cancelled the job context.
		resp := &core.AgentResponse{
			AgentName:     j.agentName,
			ExecutionTime: elapsed,
			Error:         ctx.Err().Error(),
		}
		if err := e.tracker.Fail(j.task.ID, resp); err != nil {
			e.logger.Warn("executor cancel transition failed task_id=%s: %v", j.task.ID, err)
		}
	}
}

// finish records the terminal state for a job whose agent call returned.
func (e *Executor) finish(j *job, resp *core.AgentResponse, elapsed time.Duration, err error) {
	if err != nil {
		failure := &core.AgentResponse{
			AgentName:     j.agentName,
			ExecutionTime: elapsed,
			Error:         err.Error(),
		}
		// A cooperative agent surfaces the expired deadline itself; that
		// is a timeout, not an agent failure.
		if errors.Is(err, context.DeadlineExceeded) {
			failure.Error = fmt.Sprintf("%s after %s", ErrJobTimeout, j.timeout)
			if terr := e.tracker.Timeout(j.task.ID, failure); terr != nil {
				e.logger.Warn("executor timeout transition failed task_id=%s: %v", j.task.ID, terr)
			}
			return
		}
		if terr := e.tracker.Fail(j.task.ID, failure); terr != nil {
			e.logger.Warn("executor fail transition failed task_id=%s: %v", j.task.ID, terr)
		}
		e.logger.Error("executor job failed task_id=%s agent=%s duration=%s: %v", j.task.ID, j.agentName, elapsed, err)
		return
	}

	if resp == nil {
		resp = &core.AgentResponse{AgentName: j.agentName, ExecutionTime: elapsed, Error: "agent returned no response"}
	}
	if resp.AgentName == "" {
		resp.AgentName = j.agentName
	}

	if !resp.Success {
		if terr := e.tracker.Fail(j.task.ID, resp); terr != nil {
			e.logger.Warn("executor fail transition failed task_id=%s: %v", j.task.ID, terr)
		}
		return
	}

	if terr := e.tracker.Complete(j.task.ID, resp); terr != nil {
		e.logger.Warn("executor complete transition failed task_id=%s: %v", j.task.ID, terr)
		return
	}
	e.logger.Debug("executor job completed task_id=%s agent=%s duration=%s", j.task.ID, j.agentName, elapsed)
}

// failPending marks a never-dispatched job FAILED so awaiters unblock.
func (e *Executor) failPending(j *job, err error) {
	resp := &core.AgentResponse{AgentName: j.agentName, Error: err.Error()}
	if terr := e.tracker.Fail(j.task.ID, resp); terr != nil {
		e.logger.Warn("executor pending-fail transition failed task_id=%s: %v", j.task.ID, terr)
	}
}
