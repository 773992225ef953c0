package semantic

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"genmesh/core"
)

// IndexOptions configures an Index.
type IndexOptions struct {
	// Collection names the chromem collection. Defaults to "artifacts".
	Collection string
	// PersistPath, when set, stores the index on disk instead of in
	// memory only.
	PersistPath string
}

// Index stores generated artifacts in a chromem-go vector collection,
// tagged with neurotype metadata. The pipeline adds every persisted
// artifact; match evaluation retrieves nearest neighbours through
// ForQuery, which binds a query text to a core.CandidateSource.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewIndex creates an index backed by the given embedder.
func NewIndex(embedder Embedder, optFns ...func(o *IndexOptions)) (*Index, error) {
	opts := IndexOptions{
		Collection: "artifacts",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	var db *chromem.DB
	var err error
	if opts.PersistPath != "" {
		db, err = chromem.NewPersistentDB(filepath.Join(opts.PersistPath, "index.gob"), false)
		if err != nil {
			return nil, fmt.Errorf("create persistent index: %w", err)
		}
	} else {
		db = chromem.NewDB()
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(opts.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Index{db: db, collection: collection}, nil
}

// Add indexes an artifact, keyed by its cache key. Re-adding a key
// replaces the stored document.
func (idx *Index) Add(ctx context.Context, artifact *core.Artifact) error {
	err := idx.collection.AddDocument(ctx, chromem.Document{
		ID:      artifact.Key,
		Content: artifact.Content,
		Metadata: map[string]string{
			"title":      artifact.Title,
			"neurotype":  artifact.Neurotype,
			"agent":      artifact.AgentName,
			"created_at": artifact.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("index artifact %s: %w", artifact.Key, err)
	}

	return nil
}

// Count returns the number of indexed artifacts.
func (idx *Index) Count() int {
	return idx.collection.Count()
}

// Query returns up to limit artifacts nearest to the query text,
// filtered by neurotype metadata when neurotype is non-empty.
func (idx *Index) Query(ctx context.Context, query, neurotype string, limit int) ([]core.MatchItem, error) {
	if limit <= 0 {
		limit = 10
	}
	// chromem rejects nResults beyond the (filtered) collection size.
	if count := idx.collection.Count(); limit > count {
		if count == 0 {
			return nil, nil
		}
		limit = count
	}

	var where map[string]string
	if neurotype != "" {
		where = map[string]string{"neurotype": neurotype}
	}

	results, err := idx.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	items := make([]core.MatchItem, 0, len(results))
	for _, res := range results {
		artifact := &core.Artifact{
			Key:       res.ID,
			Title:     res.Metadata["title"],
			Content:   res.Content,
			Neurotype: res.Metadata["neurotype"],
			AgentName: res.Metadata["agent"],
		}
		if created, err := time.Parse(time.RFC3339Nano, res.Metadata["created_at"]); err == nil {
			artifact.CreatedAt = created
		}
		items = append(items, artifact.Item())
	}

	return items, nil
}

// ForQuery binds a query text to the index, yielding a
// core.CandidateSource usable by the match stage.
func (idx *Index) ForQuery(query string) core.CandidateSource {
	return querySource{idx: idx, query: query}
}

type querySource struct {
	idx   *Index
	query string
}

// Candidates implements core.CandidateSource.
func (s querySource) Candidates(ctx context.Context, neurotype string, limit int) ([]core.MatchItem, error) {
	return s.idx.Query(ctx, s.query, neurotype, limit)
}
