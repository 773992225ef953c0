package cache

import (
	"context"
	"sort"
	"sync"

	"genmesh/core"
)

// InMemoryStore is a mutex-guarded artifact store. It implements both
// core.CacheStore (keyed lookup) and core.CandidateSource (per-neurotype
// listing for match evaluation). Artifacts are copied on read and write
// so callers cannot mutate stored state.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]*core.Artifact
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		artifacts: make(map[string]*core.Artifact),
	}
}

// Get implements core.CacheStore.
func (s *InMemoryStore) Get(_ context.Context, key string) (*core.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.artifacts[key]
	if !ok {
		return nil, false
	}

	cp := *a
	return &cp, true
}

// Put implements core.CacheStore. A later Put for the same key replaces
// the stored artifact.
func (s *InMemoryStore) Put(_ context.Context, key string, artifact *core.Artifact) error {
	cp := *artifact
	cp.Key = key

	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts[key] = &cp

	return nil
}

// Candidates implements core.CandidateSource. It returns stored artifacts
// for the given neurotype, newest first, capped at limit (limit <= 0 means
// no cap). An empty neurotype matches every artifact.
func (s *InMemoryStore) Candidates(_ context.Context, neurotype string, limit int) ([]core.MatchItem, error) {
	s.mu.RLock()
	matched := make([]*core.Artifact, 0, len(s.artifacts))
	for _, a := range s.artifacts {
		if neurotype == "" || a.Neurotype == neurotype {
			cp := *a
			matched = append(matched, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Key < matched[j].Key
	})

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	items := make([]core.MatchItem, len(matched))
	for i, a := range matched {
		items[i] = a.Item()
	}

	return items, nil
}

// Len returns the number of stored artifacts.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.artifacts)
}
