// Package semantic provides embedding-based similarity backends: an
// OpenAI embedder with LRU caching, a cosine SimilarityScorer, and a
// chromem-go vector index for candidate retrieval. Everything here is
// optional; matching degrades to fuzzy-only mode without it.
package semantic
