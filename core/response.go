package core

import "time"

// AgentResponse is the terminal outcome of exactly one agent invocation.
// It is immutable once constructed: the executor builds it after the
// agent returns (or the deadline expires) and hands it to the tracker,
// where awaiting callers read it as a typed result rather than a raised
// fault.
type AgentResponse struct {
	// Success reports whether the agent produced usable content.
	Success bool
	// Content is the generated payload. Empty on failure.
	Content string
	// ExecutionTime is the measured wall-clock duration of the agent
	// call. Recorded even on failure and timeout.
	ExecutionTime time.Duration
	// AgentName identifies the agent that produced (or failed to
	// produce) the content.
	AgentName string
	// Error holds the failure description when Success is false.
	Error string
}
