// Package pipeline chains the content-serving stages: exact cache
// lookup, near-match reuse, deduplicated generation, and persistence.
// Each stage either serves the request and short-circuits, or hands the
// request to the next stage. The pipeline runs on the caller's
// goroutine; only generation suspends, waiting on the executor's pool.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"genmesh/core"
	"genmesh/executor"
	"genmesh/logging"
	"genmesh/matcher"
	"genmesh/tracker"
)

// Stage identifies the pipeline stage that served (or failed) a request.
type Stage string

const (
	// StageCache served the request from the exact-key cache.
	StageCache Stage = "cache"
	// StageMatch served the request by reusing a near-match candidate.
	StageMatch Stage = "match"
	// StageGenerate served the request by running an agent.
	StageGenerate Stage = "generate"
	// StagePersist is the write-back stage. It never serves a request
	// but appears in StageError when a post-generation write fails.
	StagePersist Stage = "persist"
)

// Result is a served request.
type Result struct {
	// Stage names the stage that produced the content.
	Stage Stage
	// Content is the served content.
	Content string
	// Artifact is the cached or newly persisted artifact.
	Artifact *core.Artifact
	// Match carries the winning match when Stage == StageMatch.
	Match *core.MatchResult
	// Response carries the agent response when Stage == StageGenerate.
	Response *core.AgentResponse
	// TaskID is set when a generation task was involved.
	TaskID string
}

// Indexer receives successfully persisted artifacts, typically a
// semantic vector index.
type Indexer interface {
	Add(ctx context.Context, artifact *core.Artifact) error
}

// SourceFunc builds the candidate source for one request. It lets the
// match stage query a request-dependent backend, e.g. a vector index
// bound to the request's text.
type SourceFunc func(req *core.Request) core.CandidateSource

// Options configures a Pipeline.
type Options struct {
	// Cache is the exact-key artifact store. Required.
	Cache core.CacheStore
	// Matcher evaluates near-match reuse. Nil skips the match stage.
	Matcher *matcher.Matcher
	// Source supplies match candidates per request. Nil skips the match
	// stage. Use StaticSource to wrap a request-independent store.
	Source SourceFunc
	// Indexer receives persisted artifacts. Optional.
	Indexer Indexer
	// CandidateLimit caps candidates fetched per request. Defaults to 50.
	CandidateLimit int
	// JobTimeout is the per-generation deadline. Defaults to 60s.
	JobTimeout time.Duration
	// AwaitTimeout bounds the wait for a generation result, including
	// queue time. Defaults to 2x JobTimeout.
	AwaitTimeout time.Duration
	// Logger receives stage events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// StaticSource adapts a request-independent CandidateSource (such as
// cache.InMemoryStore) to a SourceFunc.
func StaticSource(src core.CandidateSource) SourceFunc {
	return func(*core.Request) core.CandidateSource { return src }
}

// Pipeline orchestrates request serving. It is safe for concurrent use;
// concurrent identical requests collapse onto one generation via the
// tracker's fingerprint identity.
type Pipeline struct {
	tracker  *tracker.Tracker
	executor *executor.Executor

	cache          core.CacheStore
	matcher        *matcher.Matcher
	source         SourceFunc
	indexer        Indexer
	candidateLimit int
	jobTimeout     time.Duration
	awaitTimeout   time.Duration
	logger         logging.Logger
}

// New creates a Pipeline.
func New(trk *tracker.Tracker, exec *executor.Executor, optFns ...func(o *Options)) (*Pipeline, error) {
	opts := Options{
		CandidateLimit: 50,
		JobTimeout:     60 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Cache == nil {
		return nil, fmt.Errorf("pipeline requires a cache store")
	}
	if opts.AwaitTimeout <= 0 {
		opts.AwaitTimeout = 2 * opts.JobTimeout
	}

	return &Pipeline{
		tracker:        trk,
		executor:       exec,
		cache:          opts.Cache,
		matcher:        opts.Matcher,
		source:         opts.Source,
		indexer:        opts.Indexer,
		candidateLimit: opts.CandidateLimit,
		jobTimeout:     opts.JobTimeout,
		awaitTimeout:   opts.AwaitTimeout,
		logger:         opts.Logger,
	}, nil
}

// Generate serves one request through the stage chain, running the named
// agent if neither the cache nor a near-match can serve it. Failures
// carry a *StageError naming the failing stage.
func (p *Pipeline) Generate(ctx context.Context, req *core.Request, agentName string) (*Result, error) {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	if res := p.fromCache(ctx, req); res != nil {
		return res, nil
	}

	res, err := p.fromMatch(ctx, req)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}

	return p.generate(ctx, req, agentName)
}

// fromCache is the exact-key stage. A miss returns nil.
func (p *Pipeline) fromCache(ctx context.Context, req *core.Request) *Result {
	start := time.Now()
	artifact, ok := p.cache.Get(ctx, req.CacheKey())
	if !ok {
		return nil
	}

	p.logger.Debug("pipeline cache hit key=%s duration=%s", artifact.Key, time.Since(start))

	return &Result{
		Stage:    StageCache,
		Content:  artifact.Content,
		Artifact: artifact,
	}
}

// fromMatch is the near-match stage. It is skipped without a matcher and
// source; a failing candidate backend degrades to a miss rather than
// failing the request. Matcher input errors (malformed items) do fail,
// with StageMatch attribution.
func (p *Pipeline) fromMatch(ctx context.Context, req *core.Request) (*Result, error) {
	if p.matcher == nil || p.source == nil {
		return nil, nil
	}

	start := time.Now()
	candidates, err := p.source(req).Candidates(ctx, req.Neurotype, p.candidateLimit)
	if err != nil {
		p.logger.Warn("pipeline candidate lookup failed, falling through to generation: %v", err)
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	matches, err := p.matcher.FindBestMatches(ctx, []core.MatchItem{req}, candidates)
	if err != nil {
		return nil, stageErr(StageMatch, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	artifact := p.retag(req, best.Candidate)
	if err := p.cache.Put(ctx, artifact.Key, artifact); err != nil {
		p.logger.Warn("pipeline could not cache matched artifact key=%s: %v", artifact.Key, err)
	}

	p.logger.Debug("pipeline match hit key=%s fuzzy=%.3f semantic=%.3f combined=%.3f duration=%s",
		artifact.Key, best.FuzzyScore, best.SemanticScore, best.CombinedScore, time.Since(start))

	return &Result{
		Stage:    StageMatch,
		Content:  artifact.Content,
		Artifact: artifact,
		Match:    &best,
	}, nil
}

// retag copies a matched candidate into an artifact keyed and tagged for
// the requesting personalization context. The original artifact is never
// mutated.
func (p *Pipeline) retag(req *core.Request, candidate core.MatchItem) *core.Artifact {
	artifact := &core.Artifact{
		Key:       req.CacheKey(),
		Title:     candidate.Title(),
		Content:   candidate.Body(),
		Neurotype: req.Neurotype,
		CreatedAt: time.Now(),
	}
	if src := core.ArtifactOf(candidate); src != nil {
		artifact.AgentName = src.AgentName
	}

	return artifact
}

// generate is the deduplicated generation stage plus write-back.
func (p *Pipeline) generate(ctx context.Context, req *core.Request, agentName string) (*Result, error) {
	task := core.NewTask(req)

	handle, err := p.tracker.Enqueue(task)
	if err != nil {
		if !errors.Is(err, tracker.ErrDuplicateTask) {
			return nil, stageErr(StageGenerate, err)
		}
		// Identical work is already in flight; await its result instead
		// of generating twice.
		p.logger.Debug("pipeline joining in-flight task task_id=%s", handle.TaskID())
		resp, err := p.tracker.Await(ctx, handle.TaskID(), p.awaitTimeout)
		if err != nil {
			return nil, stageErr(StageGenerate, err)
		}
		return p.finish(ctx, req, handle.TaskID(), resp, false)
	}

	if err := p.executor.Submit(task, agentName, p.jobTimeout); err != nil {
		// Unblock any caller that joined this task between Enqueue and
		// the failed Submit.
		failure := &core.AgentResponse{AgentName: agentName, Error: err.Error()}
		if terr := p.tracker.Fail(task.ID, failure); terr != nil {
			p.logger.Warn("pipeline could not fail unsubmitted task task_id=%s: %v", task.ID, terr)
		}
		return nil, stageErr(StageGenerate, err)
	}

	resp, err := p.tracker.Await(ctx, task.ID, p.awaitTimeout)
	if err != nil {
		return nil, stageErr(StageGenerate, err)
	}

	return p.finish(ctx, req, task.ID, resp, true)
}

// finish validates a terminal response and, for the generating caller,
// persists the artifact. Joining callers skip persistence: the first
// caller's pipeline owns the write-back.
func (p *Pipeline) finish(ctx context.Context, req *core.Request, taskID string, resp *core.AgentResponse, persist bool) (*Result, error) {
	if resp == nil {
		return nil, stageErr(StageGenerate, fmt.Errorf("task %s finished without a response", taskID))
	}
	if !resp.Success {
		return nil, stageErr(StageGenerate, fmt.Errorf("%w: agent %s: %s", executor.ErrAgentExecution, resp.AgentName, resp.Error))
	}

	artifact := &core.Artifact{
		Key:       req.CacheKey(),
		Title:     req.Topic,
		Content:   resp.Content,
		Neurotype: req.Neurotype,
		AgentName: resp.AgentName,
		CreatedAt: time.Now(),
	}

	if persist {
		if err := p.cache.Put(ctx, artifact.Key, artifact); err != nil {
			return nil, stageErr(StagePersist, err)
		}
		if p.indexer != nil {
			if err := p.indexer.Add(ctx, artifact); err != nil {
				// Index writes are an enrichment; a failure must not void
				// a successful generation.
				p.logger.Warn("pipeline index write failed key=%s: %v", artifact.Key, err)
			}
		}
	}

	return &Result{
		Stage:    StageGenerate,
		Content:  resp.Content,
		Artifact: artifact,
		Response: resp,
		TaskID:   taskID,
	}, nil
}
