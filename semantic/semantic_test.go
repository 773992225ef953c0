package semantic

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genmesh/core"
)

// fakeEmbedder returns canned unit vectors per normalized text.
type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Degenerate inputs score 0.
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1}))
	assert.Zero(t, Cosine(nil, nil))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}))
}

func TestEmbeddingScorer_Similarity(t *testing.T) {
	half := float32(math.Sqrt(0.5))
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a story about mars": {1, 0, 0},
		"life on mars":       {half, half, 0},
		"tax law":            {0, 0, 1},
	}}
	scorer := NewEmbeddingScorer(emb)

	sim, err := scorer.Similarity(context.Background(), "A Story  About MARS", "life on mars")
	require.NoError(t, err)
	assert.InDelta(t, math.Sqrt(0.5), sim, 1e-6)

	sim, err = scorer.Similarity(context.Background(), "a story about mars", "tax law")
	require.NoError(t, err)
	assert.Zero(t, sim)
}

func TestEmbeddingScorer_ShortCircuits(t *testing.T) {
	emb := &fakeEmbedder{}
	scorer := NewEmbeddingScorer(emb)

	// Empty and identical texts never touch the backend.
	sim, err := scorer.Similarity(context.Background(), "", "something")
	require.NoError(t, err)
	assert.Zero(t, sim)

	sim, err = scorer.Similarity(context.Background(), "same text", "  SAME   text ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, sim)

	assert.Zero(t, emb.calls)
}

func TestEmbeddingScorer_NegativeClampedToZero(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"up":   {0, 1, 0},
		"down": {0, -1, 0},
	}}
	scorer := NewEmbeddingScorer(emb)

	sim, err := scorer.Similarity(context.Background(), "up", "down")
	require.NoError(t, err)
	assert.Zero(t, sim)
}

func TestEmbeddingScorer_BackendError(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("rate limited")}
	scorer := NewEmbeddingScorer(emb)

	_, err := scorer.Similarity(context.Background(), "a", "b")
	assert.Error(t, err)
}

func TestStaticScorer(t *testing.T) {
	scorer := &StaticScorer{
		Scores:  map[[2]string]float64{{"a", "b"}: 0.9},
		Default: 0.1,
	}

	sim, err := scorer.Similarity(context.Background(), " A ", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.9, sim)

	sim, err = scorer.Similarity(context.Background(), "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 0.1, sim)
}

func TestIndex_AddAndQuery(t *testing.T) {
	ctx := context.Background()
	half := float32(math.Sqrt(0.5))
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"a calm story about space travel": {1, 0, 0},
		"rockets and orbits":              {half, half, 0},
		"baking sourdough bread":          {0, 0, 1},
		"space adventures":                {0.96, 0.28, 0},
	}}

	idx, err := NewIndex(emb)
	require.NoError(t, err)
	assert.Zero(t, idx.Count())

	// Empty index queries return nothing rather than erroring.
	items, err := idx.Query(ctx, "anything", "", 5)
	require.NoError(t, err)
	assert.Empty(t, items)

	now := time.Unix(1000, 0)
	artifacts := []*core.Artifact{
		{Key: "k1", Title: "Space Travel", Content: "a calm story about space travel", Neurotype: "adhd", AgentName: "writer", CreatedAt: now},
		{Key: "k2", Title: "Rockets", Content: "rockets and orbits", Neurotype: "adhd", AgentName: "writer", CreatedAt: now},
		{Key: "k3", Title: "Bread", Content: "baking sourdough bread", Neurotype: "autism", AgentName: "writer", CreatedAt: now},
	}
	for _, a := range artifacts {
		require.NoError(t, idx.Add(ctx, a))
	}
	assert.Equal(t, 3, idx.Count())

	// Nearest neighbour first; limit larger than the collection is fine.
	items, err = idx.Query(ctx, "space adventures", "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "Space Travel", items[0].Title())

	// Neurotype filter excludes other neurotypes.
	items, err = idx.Query(ctx, "space adventures", "autism", 10)
	require.NoError(t, err)
	for _, it := range items {
		artifact := core.ArtifactOf(it)
		require.NotNil(t, artifact)
		assert.Equal(t, "autism", artifact.Neurotype)
	}

	// Metadata round-trips through the index.
	items, err = idx.Query(ctx, "a calm story about space travel", "adhd", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	artifact := core.ArtifactOf(items[0])
	require.NotNil(t, artifact)
	assert.Equal(t, "k1", artifact.Key)
	assert.Equal(t, "writer", artifact.AgentName)
	assert.True(t, artifact.CreatedAt.Equal(now))
}

func TestIndex_ForQuerySource(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"dinosaur facts": {1, 0, 0},
		"dinosaurs":      {1, 0, 0},
	}}

	idx, err := NewIndex(emb)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx, &core.Artifact{
		Key: "k", Title: "Dinosaurs", Content: "dinosaur facts", Neurotype: "adhd",
	}))

	var source core.CandidateSource = idx.ForQuery("dinosaurs")
	items, err := source.Candidates(ctx, "adhd", 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Dinosaurs", items[0].Title())
}
