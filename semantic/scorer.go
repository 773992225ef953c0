package semantic

import (
	"context"
	"fmt"
	"math"

	"genmesh/core"
)

// EmbeddingScorer scores text similarity as the cosine of the texts'
// embeddings, clamped into [0,1]. It implements core.SimilarityScorer.
type EmbeddingScorer struct {
	embedder Embedder
}

// NewEmbeddingScorer wraps an embedder as a scorer.
func NewEmbeddingScorer(embedder Embedder) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: embedder}
}

// Similarity implements core.SimilarityScorer. Empty texts score 0
// without touching the embedding backend.
func (s *EmbeddingScorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	a = core.NormalizeText(a)
	b = core.NormalizeText(b)
	if a == "" || b == "" {
		return 0, nil
	}
	if a == b {
		return 1, nil
	}

	va, err := s.embedder.Embed(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("embed first text: %w", err)
	}
	vb, err := s.embedder.Embed(ctx, b)
	if err != nil {
		return 0, fmt.Errorf("embed second text: %w", err)
	}

	sim := Cosine(va, vb)
	if sim < 0 {
		sim = 0
	}

	return sim, nil
}

// Cosine computes the cosine similarity of two vectors. Mismatched
// lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// StaticScorer returns canned similarities for tests and offline runs.
// Unknown pairs score Default.
type StaticScorer struct {
	// Scores maps [2]string{a, b} (normalized texts, order-sensitive) to
	// similarities.
	Scores map[[2]string]float64
	// Default is returned for pairs absent from Scores.
	Default float64
}

// Similarity implements core.SimilarityScorer.
func (s *StaticScorer) Similarity(_ context.Context, a, b string) (float64, error) {
	if score, ok := s.Scores[[2]string{core.NormalizeText(a), core.NormalizeText(b)}]; ok {
		return score, nil
	}
	return s.Default, nil
}
