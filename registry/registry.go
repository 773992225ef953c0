// Package registry maps agent identifiers to constructible agent
// instances. It is the sole authority for the name-to-instance mapping
// and performs no business logic.
package registry

import (
	"fmt"
	"sync"

	"genmesh/core"
	"genmesh/logging"
)

// Constructor builds a ready-to-use agent instance. Construction may be
// expensive (model/client initialization); the registry guarantees it
// runs at most once per name for reusable agents.
type Constructor func() (core.Agent, error)

// RegisterOptions configures a single Register call.
type RegisterOptions struct {
	// Overwrite replaces an existing registration instead of failing
	// with ErrDuplicateName.
	Overwrite bool
	// Transient marks the agent non-reusable: every Resolve constructs a
	// fresh instance instead of reusing a lazy singleton.
	Transient bool
}

// WithOverwrite allows replacing an existing registration.
func WithOverwrite() func(o *RegisterOptions) {
	return func(o *RegisterOptions) { o.Overwrite = true }
}

// WithTransient constructs a fresh instance per resolution.
func WithTransient() func(o *RegisterOptions) {
	return func(o *RegisterOptions) { o.Transient = true }
}

// Options configures a Registry.
type Options struct {
	// Logger receives registration and construction events. Defaults to
	// NoOpLogger.
	Logger logging.Logger
}

// Registry associates agent names with constructors and lazily built
// instances. All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  logging.Logger
}

type entry struct {
	ctor      Constructor
	transient bool

	mu       sync.Mutex
	instance core.Agent
}

// New creates an empty registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Registry{entries: make(map[string]*entry), logger: opts.Logger}
}

// Register associates name with a constructor. A second registration for
// the same name fails with ErrDuplicateName unless WithOverwrite is
// passed; overwriting discards any previously constructed instance.
func (r *Registry) Register(name string, ctor Constructor, optFns ...func(o *RegisterOptions)) error {
	if ctor == nil {
		return fmt.Errorf("register %s: nil constructor", name)
	}

	opts := RegisterOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists && !opts.Overwrite {
		return fmt.Errorf("register %s: %w", name, ErrDuplicateName)
	}

	r.entries[name] = &entry{ctor: ctor, transient: opts.Transient}
	r.logger.Debug("registry registered agent name=%s transient=%t", name, opts.Transient)

	return nil
}

// Resolve returns a ready-to-use agent instance for name, constructing
// one on first use and reusing it afterward (lazy singleton-per-name).
// Concurrent first resolutions block behind a single construction; a
// failed construction is not cached, so a later Resolve retries.
// Transient registrations construct a fresh instance every call.
func (r *Registry) Resolve(name string) (core.Agent, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("resolve %s: %w", name, ErrUnknownAgent)
	}

	if e.transient {
		a, err := e.ctor()
		if err != nil {
			return nil, fmt.Errorf("resolve %s: construct agent: %w", name, err)
		}
		return a, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.instance != nil {
		return e.instance, nil
	}

	a, err := e.ctor()
	if err != nil {
		return nil, fmt.Errorf("resolve %s: construct agent: %w", name, err)
	}

	e.instance = a
	r.logger.Debug("registry constructed agent name=%s", name)

	return a, nil
}

// Names returns a snapshot of the registered agent names in unspecified
// order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
