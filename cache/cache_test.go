package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genmesh/core"
)

func storyArtifact(key, title, neurotype string, created time.Time) *core.Artifact {
	return &core.Artifact{
		Key:       key,
		Title:     title,
		Content:   "content of " + title,
		Neurotype: neurotype,
		AgentName: "writer",
		CreatedAt: created,
	}
}

func TestInMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	a := storyArtifact("k1", "Space Travel", "adhd", time.Unix(1, 0))
	require.NoError(t, store.Put(ctx, "k1", a))

	got, ok := store.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "Space Travel", got.Title)
	assert.Equal(t, "k1", got.Key)

	// Mutating the returned copy must not affect the stored artifact.
	got.Title = "mutated"
	again, ok := store.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "Space Travel", again.Title)
}

func TestInMemoryStore_PutReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Put(ctx, "k", storyArtifact("k", "v1", "adhd", time.Unix(1, 0))))
	require.NoError(t, store.Put(ctx, "k", storyArtifact("k", "v2", "adhd", time.Unix(2, 0))))

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, 1, store.Len())
}

func TestInMemoryStore_CandidatesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Put(ctx, "a", storyArtifact("a", "old adhd", "adhd", time.Unix(100, 0))))
	require.NoError(t, store.Put(ctx, "b", storyArtifact("b", "new adhd", "adhd", time.Unix(200, 0))))
	require.NoError(t, store.Put(ctx, "c", storyArtifact("c", "autism item", "autism", time.Unix(300, 0))))

	items, err := store.Candidates(ctx, "adhd", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new adhd", items[0].Title())
	assert.Equal(t, "old adhd", items[1].Title())

	// Limit caps the newest-first listing.
	items, err = store.Candidates(ctx, "adhd", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new adhd", items[0].Title())

	// Empty neurotype matches everything.
	items, err = store.Candidates(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestInMemoryStore_CandidateUnwrap(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	require.NoError(t, store.Put(ctx, "k", storyArtifact("k", "T", "adhd", time.Unix(1, 0))))

	items, err := store.Candidates(ctx, "adhd", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	artifact := core.ArtifactOf(items[0])
	require.NotNil(t, artifact)
	assert.Equal(t, "k", artifact.Key)
}

func TestRistrettoStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewRistrettoStore()
	require.NoError(t, err)
	defer store.Close()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k1", storyArtifact("k1", "Space Travel", "adhd", time.Unix(1, 0))))

	got, ok := store.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "Space Travel", got.Title)
}

func TestRistrettoStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store, err := NewRistrettoStore(func(o *RistrettoOptions) {
		o.TTL = 20 * time.Millisecond
	})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Put(ctx, "k", storyArtifact("k", "T", "adhd", time.Unix(1, 0))))

	_, ok := store.Get(ctx, "k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := store.Get(ctx, "k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestRistrettoStore_Closed(t *testing.T) {
	ctx := context.Background()
	store, err := NewRistrettoStore()
	require.NoError(t, err)

	store.Close()
	store.Close() // idempotent

	err = store.Put(ctx, "k", storyArtifact("k", "T", "adhd", time.Unix(1, 0)))
	assert.ErrorIs(t, err, ErrStoreClosed)

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
}
