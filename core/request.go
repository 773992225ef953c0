package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Request describes one unit of personalized content to produce. The
// same logical request must always yield the same Fingerprint so that
// cache lookups and in-flight deduplication are deterministic.
type Request struct {
	// TaskType is the enumerated kind of work (e.g. "story", "exercise").
	TaskType string
	// Topic is the title-like subject of the content. Used by the
	// matcher's lexical comparison.
	Topic string
	// Prompt is the opaque body-like payload handed to the agent. Used by
	// the matcher's semantic comparison.
	Prompt string
	// Neurotype is the optional personalization dimension influencing
	// matching and generation.
	Neurotype string
	// Params carries additional opaque request parameters.
	Params map[string]any
	// Priority orders queued jobs; higher is scheduled first.
	Priority int
	// CreatedAt breaks priority ties (earlier first) and feeds the
	// matcher's recency tie-break for request-derived items.
	CreatedAt time.Time
}

// Fingerprint returns a deterministic identity for the request derived
// from its normalized type, topic and neurotype. Two requests for
// identical work share a fingerprint, which is what the tracker
// deduplicates on.
func (r *Request) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{r.TaskType, r.Topic, r.Neurotype} {
		h.Write([]byte(NormalizeText(part)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey returns the exact-match cache key for the request.
func (r *Request) CacheKey() string { return "content:" + r.Fingerprint() }

// Title implements MatchItem for request-side comparison.
func (r *Request) Title() string { return r.Topic }

// Body implements MatchItem for request-side comparison.
func (r *Request) Body() string { return r.Prompt }

// Created implements MatchItem.
func (r *Request) Created() time.Time { return r.CreatedAt }

// NormalizeText case-folds and whitespace-collapses s. It is the shared
// normalization applied before fingerprinting and lexical comparison.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
