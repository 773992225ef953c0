// Package genmesh provides a high-level façade over the content
// generation engine: agent registry, task tracker, bounded executor,
// match evaluation and the serving pipeline. Most applications interact
// with this package by:
//  1. Creating a GenMesh via New() (optionally overriding default in-memory services)
//  2. Registering one or more generation agents (SDK-backed or custom)
//  3. Serving requests through Generate()
//
// The façade delegates stage orchestration to pipeline.Pipeline while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply
// a bounded cache store, a semantic backend and a structured logger.
package genmesh

import (
	"context"
	"fmt"
	"time"

	"genmesh/cache"
	"genmesh/core"
	"genmesh/executor"
	"genmesh/logging"
	"genmesh/matcher"
	"genmesh/pipeline"
	"genmesh/registry"
	"genmesh/tracker"
)

// Options configures the GenMesh instance.
type Options struct {
	// MaxWorkers limits the number of agent invocations that can execute
	// simultaneously. This prevents resource exhaustion and provides
	// backpressure. Defaults to 3.
	MaxWorkers int

	// SaturationPolicy selects queueing vs rejection when all worker
	// slots are busy. Defaults to queueing.
	SaturationPolicy executor.SaturationPolicy

	// JobTimeout is the per-generation deadline. Defaults to 60s.
	JobTimeout time.Duration

	// Cache is the exact-key artifact store (defaults to an in-memory
	// implementation if not provided).
	Cache core.CacheStore

	// Source supplies near-match candidates. Defaults to the in-memory
	// cache when it is used; a custom Cache without candidate listing
	// disables the match stage unless a Source is supplied.
	Source pipeline.SourceFunc

	// Scorer is the optional semantic similarity backend. Nil degrades
	// matching to fuzzy-only mode.
	Scorer core.SimilarityScorer

	// Indexer receives persisted artifacts, typically a semantic index.
	Indexer pipeline.Indexer

	// FuzzyThreshold and SemanticThreshold are the inclusive match
	// acceptance bounds. Defaults: 0.8 and 0.75.
	FuzzyThreshold    float64
	SemanticThreshold float64

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// GenMesh is the high-level façade aggregating the registry, tracker,
// executor and pipeline.
type GenMesh struct {
	opts     Options
	registry *registry.Registry
	tracker  *tracker.Tracker
	executor *executor.Executor
	pipeline *pipeline.Pipeline
}

// New creates a new GenMesh instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*GenMesh, error) {
	opts := Options{
		MaxWorkers:        3,
		JobTimeout:        60 * time.Second,
		FuzzyThreshold:    0.8,
		SemanticThreshold: 0.75,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Cache == nil {
		store := cache.NewInMemoryStore()
		opts.Cache = store
		if opts.Source == nil {
			opts.Source = pipeline.StaticSource(store)
		}
	}
	if opts.Source == nil {
		if src, ok := opts.Cache.(core.CandidateSource); ok {
			opts.Source = pipeline.StaticSource(src)
		}
	}

	reg := registry.New(func(o *registry.Options) { o.Logger = opts.Logger })
	trk := tracker.New(func(o *tracker.Options) { o.Logger = opts.Logger })
	exec := executor.New(reg, trk, func(o *executor.Options) {
		o.MaxWorkers = opts.MaxWorkers
		o.Policy = opts.SaturationPolicy
		o.Logger = opts.Logger
	})

	m := matcher.New(func(o *matcher.Options) {
		o.FuzzyThreshold = opts.FuzzyThreshold
		o.SemanticThreshold = opts.SemanticThreshold
		o.Scorer = opts.Scorer
		o.Logger = opts.Logger
	})

	p, err := pipeline.New(trk, exec, func(o *pipeline.Options) {
		o.Cache = opts.Cache
		o.Matcher = m
		o.Source = opts.Source
		o.Indexer = opts.Indexer
		o.JobTimeout = opts.JobTimeout
		o.Logger = opts.Logger
	})
	if err != nil {
		exec.Close()
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return &GenMesh{
		opts:     opts,
		registry: reg,
		tracker:  trk,
		executor: exec,
		pipeline: p,
	}, nil
}

// RegisterAgent adds an agent to the underlying registry under its own
// name.
func (m *GenMesh) RegisterAgent(a core.Agent) error {
	return m.registry.Register(a.Name(), func() (core.Agent, error) { return a, nil })
}

// RegisterConstructor adds a lazily constructed agent to the registry.
func (m *GenMesh) RegisterConstructor(name string, ctor registry.Constructor, optFns ...func(o *registry.RegisterOptions)) error {
	return m.registry.Register(name, ctor, optFns...)
}

// Agents lists the registered agent names.
func (m *GenMesh) Agents() []string { return m.registry.Names() }

// Generate serves one request through the stage chain using the named
// agent for generation misses. Identical concurrent requests collapse
// onto a single generation.
func (m *GenMesh) Generate(ctx context.Context, req *core.Request, agentName string) (*pipeline.Result, error) {
	return m.pipeline.Generate(ctx, req, agentName)
}

// Status reports the tracked state of a generation task.
func (m *GenMesh) Status(taskID string) (core.TaskStatus, bool) {
	return m.tracker.Status(taskID)
}

// Close stops the executor. In-flight jobs are cancelled best-effort and
// queued jobs fail so their awaiters unblock.
func (m *GenMesh) Close() {
	m.executor.Close()
}
