package tracker

import "errors"

var (
	// ErrDuplicateTask is returned by Enqueue when a non-terminal task
	// with the same id already exists. The returned handle still points
	// at the in-flight task so the caller can await its result.
	ErrDuplicateTask = errors.New("task already in flight")

	// ErrUnknownTask is returned for task ids the tracker has never seen.
	ErrUnknownTask = errors.New("unknown task")

	// ErrAwaitTimeout is returned by Await when the task does not reach a
	// terminal state within the caller's timeout.
	ErrAwaitTimeout = errors.New("await completion timed out")

	// ErrInvalidTransition is returned when a status change would violate
	// the monotonic task state machine.
	ErrInvalidTransition = errors.New("invalid task status transition")
)
