package semantic

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Embedder generates a vector embedding for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbedderOptions configures an OpenAIEmbedder.
type EmbedderOptions struct {
	// Model is the embedding model. Defaults to text-embedding-3-small.
	Model openai.EmbeddingModel
	// APIKey overrides the OPENAI_API_KEY environment variable.
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string
	// CacheSize bounds the embedding LRU cache. Defaults to 10000.
	CacheSize int
}

// OpenAIEmbedder generates embeddings through the OpenAI API. Results
// are memoized in an LRU cache keyed by model and text, so repeated
// scoring of the same artifact body costs one API call.
type OpenAIEmbedder struct {
	client openai.Client
	model  openai.EmbeddingModel
	cache  *lru.Cache[string, []float32]
}

// NewOpenAIEmbedder creates an embedder.
func NewOpenAIEmbedder(optFns ...func(o *EmbedderOptions)) (*OpenAIEmbedder, error) {
	opts := EmbedderOptions{
		Model:     openai.EmbeddingModelTextEmbedding3Small,
		CacheSize: 10000,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	cache, err := lru.New[string, []float32](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAIEmbedder{
		client: openai.NewClient(reqOpts...),
		model:  opts.Model,
		cache:  cache,
	}, nil
}

// Embed implements Embedder.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := string(e.model) + "\x00" + text
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contains no data")
	}

	embedding := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		embedding[i] = float32(v)
	}

	e.cache.Add(key, embedding)

	return embedding, nil
}
