// Package agent provides adapters for building core.Agent
// implementations: a function adapter for in-process agents and shared
// prompt assembly for the SDK-backed generators in the subpackages.
package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"genmesh/core"
)

// AgentFunc adapts a function to the core.Agent interface.
type AgentFunc struct {
	name string
	fn   func(ctx context.Context, req *core.Request) (*core.AgentResponse, error)
}

// NewAgentFunc wraps fn as a named agent.
func NewAgentFunc(name string, fn func(ctx context.Context, req *core.Request) (*core.AgentResponse, error)) *AgentFunc {
	return &AgentFunc{name: name, fn: fn}
}

// Name implements core.Agent.
func (a *AgentFunc) Name() string { return a.name }

// Process implements core.Agent.
func (a *AgentFunc) Process(ctx context.Context, req *core.Request) (*core.AgentResponse, error) {
	return a.fn(ctx, req)
}

// SystemPrompt renders the generation instructions for a request,
// folding in the personalization context and any string params.
func SystemPrompt(req *core.Request) string {
	var sb strings.Builder
	sb.WriteString("You generate ")
	if req.TaskType != "" {
		sb.WriteString(req.TaskType)
		sb.WriteString(" ")
	}
	sb.WriteString("content.")

	if req.Neurotype != "" {
		fmt.Fprintf(&sb, " Adapt structure, pacing and language for %s readers.", req.Neurotype)
	}

	keys := make([]string, 0, len(req.Params))
	for key := range req.Params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if s, ok := req.Params[key].(string); ok && s != "" {
			fmt.Fprintf(&sb, " %s: %s.", key, s)
		}
	}

	return sb.String()
}

// UserPrompt renders the user-facing prompt, falling back to the topic
// when no explicit prompt was given.
func UserPrompt(req *core.Request) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	return fmt.Sprintf("Write about: %s", req.Topic)
}
