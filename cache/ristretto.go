package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"

	"genmesh/core"
)

// RistrettoOptions configures a RistrettoStore.
type RistrettoOptions struct {
	// NumCounters is the number of keys tracked for admission frequency.
	// Defaults to 10x MaxEntries per ristretto's guidance.
	NumCounters int64
	// MaxEntries bounds the number of cached artifacts. Defaults to 10000.
	MaxEntries int64
	// TTL is the per-entry time to live. Zero disables expiry.
	TTL time.Duration
}

// RistrettoStore is a size-bounded core.CacheStore backed by ristretto's
// TinyLFU admission policy. Unlike InMemoryStore it evicts under pressure,
// so a Put is not guaranteed to be observable by a later Get. It does not
// implement core.CandidateSource: ristretto has no enumeration API.
type RistrettoStore struct {
	cache *ristretto.Cache
	ttl   time.Duration

	mu     sync.Mutex
	closed bool
}

// NewRistrettoStore creates a bounded store.
func NewRistrettoStore(optFns ...func(o *RistrettoOptions)) (*RistrettoStore, error) {
	opts := RistrettoOptions{
		MaxEntries: 10000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.NumCounters <= 0 {
		opts.NumCounters = opts.MaxEntries * 10
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: opts.NumCounters,
		MaxCost:     opts.MaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}

	return &RistrettoStore{cache: cache, ttl: opts.TTL}, nil
}

// Get implements core.CacheStore.
func (s *RistrettoStore) Get(_ context.Context, key string) (*core.Artifact, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, false
	}
	s.mu.Unlock()

	value, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	artifact, ok := value.(*core.Artifact)
	if !ok {
		return nil, false
	}

	cp := *artifact
	return &cp, true
}

// Put implements core.CacheStore. Writes are buffered; Put calls Wait so
// the entry is admitted (or rejected) before returning.
func (s *RistrettoStore) Put(_ context.Context, key string, artifact *core.Artifact) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("ristretto store: %w", ErrStoreClosed)
	}
	s.mu.Unlock()

	cp := *artifact
	cp.Key = key

	if s.ttl > 0 {
		s.cache.SetWithTTL(key, &cp, 1, s.ttl)
	} else {
		s.cache.Set(key, &cp, 1)
	}
	s.cache.Wait()

	return nil
}

// Close releases the cache. Subsequent Puts fail and Gets miss.
func (s *RistrettoStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cache.Close()
}
