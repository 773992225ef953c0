package core

import "context"

// Agent is the single capability the orchestrator requires from a
// generation backend: turn a content request into an AgentResponse.
//
// Implementations must:
//   - Respect context cancellation; Process is invoked under a per-job
//     deadline and a non-cooperative agent holds its pool slot until it
//     returns (see executor.Submit).
//   - Be safe for concurrent invocation when registered as reusable;
//     agents that keep per-call mutable state should be registered with
//     registry.WithTransient so a fresh instance is constructed per
//     resolution.
//
// Internal agent behavior (prompting, model choice, quality) is out of
// scope for the orchestrator.
type Agent interface {
	Name() string
	Process(ctx context.Context, req *Request) (*AgentResponse, error)
}

// AgentInfo carries identifying details about an agent used in logs and
// task records. Name is the external identifier; Type categorizes the
// implementation (e.g. "openai", "anthropic", "func").
type AgentInfo struct{ Name, Type string }
