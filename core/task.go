package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task. Transitions are monotonic:
// Pending -> Running -> {Completed | Failed | Timeout}, never backwards.
type TaskStatus int

const (
	// TaskPending is the initial state after enqueue.
	TaskPending TaskStatus = iota
	// TaskRunning means the executor dispatched the job.
	TaskRunning
	// TaskCompleted is terminal: the agent returned a successful response.
	TaskCompleted
	// TaskFailed is terminal: the agent returned an error.
	TaskFailed
	// TaskTimeout is terminal: the job ran past its deadline.
	TaskTimeout
)

// String returns the lowercase name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskTimeout
}

// CanTransition reports whether moving from s to next respects the
// monotonic state machine.
func (s TaskStatus) CanTransition(next TaskStatus) bool {
	switch s {
	case TaskPending:
		return next == TaskRunning || next.Terminal()
	case TaskRunning:
		return next.Terminal()
	default:
		return false
	}
}

// Task is one unit of generation work. It is owned exclusively by the
// tracker from enqueue until a terminal state; all other components treat
// it as read-only. Status is only mutated by the tracker under its lock.
type Task struct {
	// ID is unique for the task's lifetime. The pipeline derives it from
	// the request fingerprint so identical concurrent work collapses onto
	// one task.
	ID string
	// Type mirrors Request.TaskType.
	Type string
	// Priority orders queued jobs; higher is dispatched first.
	Priority int
	// Request is the opaque payload handed to the agent.
	Request *Request
	// Neurotype is the personalization tag carried through to the result.
	Neurotype string
	// CreatedAt breaks priority ties, ascending.
	CreatedAt time.Time
	// Status is the current lifecycle state (tracker-owned).
	Status TaskStatus
}

// NewTask builds a pending task for the request, keyed by its
// fingerprint.
func NewTask(req *Request) *Task {
	created := req.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return &Task{
		ID:        req.Fingerprint(),
		Type:      req.TaskType,
		Priority:  req.Priority,
		Request:   req,
		Neurotype: req.Neurotype,
		CreatedAt: created,
		Status:    TaskPending,
	}
}

// NewID generates a unique identifier for tasks whose identity is
// caller-generated rather than fingerprint-derived.
func NewID() string { return uuid.NewString() }
