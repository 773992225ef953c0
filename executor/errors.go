package executor

import "errors"

var (
	// ErrPoolSaturated is returned by Submit under the reject policy when
	// all worker slots are busy.
	ErrPoolSaturated = errors.New("worker pool saturated")

	// ErrJobTimeout marks a job that ran past its deadline. It appears in
	// the terminal AgentResponse.Error of timed-out tasks.
	ErrJobTimeout = errors.New("job exceeded deadline")

	// ErrAgentExecution wraps a failure raised by agent processing, as
	// surfaced to callers reading a FAILED task's response.
	ErrAgentExecution = errors.New("agent execution failed")

	// ErrExecutorClosed is returned by Submit after Close.
	ErrExecutorClosed = errors.New("executor closed")
)
