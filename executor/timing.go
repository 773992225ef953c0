package executor

import (
	"context"
	"time"

	"genmesh/core"
)

// ProcessFunc is the capability-typed agent operation the executor
// measures and dispatches.
type ProcessFunc func(ctx context.Context, req *core.Request) (*core.AgentResponse, error)

// TimedProcessFunc is a ProcessFunc that additionally reports the
// measured wall-clock duration of the call.
type TimedProcessFunc func(ctx context.Context, req *core.Request) (*core.AgentResponse, time.Duration, error)

// Timed wraps fn with wall-clock timing. The duration is reported for
// every outcome, including errors, and is stamped onto a returned
// response when the agent left ExecutionTime unset.
func Timed(fn ProcessFunc) TimedProcessFunc {
	return func(ctx context.Context, req *core.Request) (*core.AgentResponse, time.Duration, error) {
		start := time.Now()
		resp, err := fn(ctx, req)
		elapsed := time.Since(start)
		if resp != nil && resp.ExecutionTime == 0 {
			resp.ExecutionTime = elapsed
		}
		return resp, elapsed, err
	}
}
