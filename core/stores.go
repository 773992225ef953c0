package core

import (
	"context"
	"time"
)

// Artifact is a persisted unit of generated content. Artifacts are what
// the cache store holds and what candidate sources surface to the
// matcher.
type Artifact struct {
	Key       string
	Title     string
	Content   string
	Neurotype string
	AgentName string
	CreatedAt time.Time
}

// Item adapts the artifact to the matcher's MatchItem capability. The
// adapter is resolved once at the pipeline boundary, not per comparison.
func (a *Artifact) Item() MatchItem { return artifactItem{a} }

type artifactItem struct{ a *Artifact }

func (it artifactItem) Title() string       { return it.a.Title }
func (it artifactItem) Body() string        { return it.a.Content }
func (it artifactItem) Created() time.Time  { return it.a.CreatedAt }
func (it artifactItem) Artifact() *Artifact { return it.a }

// ArtifactOf unwraps the artifact behind a match item when the item was
// produced by Artifact.Item. Returns nil for foreign item types.
func ArtifactOf(item MatchItem) *Artifact {
	if u, ok := item.(interface{ Artifact() *Artifact }); ok {
		return u.Artifact()
	}
	return nil
}

// CacheStore is the external exact-key artifact store consulted by the
// pipeline's first stage and written by its last. Keys are derived
// deterministically from normalized request parameters (Request.CacheKey).
type CacheStore interface {
	// Get returns the cached artifact for key, or found == false on miss.
	Get(ctx context.Context, key string) (*Artifact, bool)
	// Put persists (or overwrites) the artifact under key.
	Put(ctx context.Context, key string, artifact *Artifact) error
}

// CandidateSource supplies near-match candidates for a personalization
// context. The pipeline consults it before falling back to generation.
type CandidateSource interface {
	// Candidates returns up to limit match items for the neurotype.
	// An empty neurotype means all candidates are eligible.
	Candidates(ctx context.Context, neurotype string, limit int) ([]MatchItem, error)
}

// SimilarityScorer is the optional embedding/semantic-similarity service.
// Absence (a nil scorer) degrades the matcher to fuzzy-only mode.
type SimilarityScorer interface {
	// Similarity returns a score in [0,1] for the semantic closeness of
	// the two texts.
	Similarity(ctx context.Context, a, b string) (float64, error)
}
