// Package matcher decides whether a cached or in-flight content item can
// substitute for a fresh generation. It combines a lexical (fuzzy) title
// score with an optional semantic body score and accepts a candidate when
// either signal clears its threshold: a false-positive match is cheaper
// to correct downstream than an unnecessary full regeneration, so the
// gate favors recall over precision.
package matcher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"genmesh/core"
	"genmesh/logging"
)

// Options configures a Matcher.
type Options struct {
	// FuzzyThreshold is the inclusive lexical acceptance bound. Defaults
	// to 0.8.
	FuzzyThreshold float64
	// SemanticThreshold is the inclusive semantic acceptance bound.
	// Defaults to 0.75.
	SemanticThreshold float64
	// FuzzyWeight and SemanticWeight shape the combined score. Both
	// default to 0.5 (equal weights).
	FuzzyWeight    float64
	SemanticWeight float64
	// Scorer is the optional embedding similarity backend. A nil scorer
	// degrades matching to fuzzy-only mode: semantic scores are 0 and
	// only the fuzzy threshold applies.
	Scorer core.SimilarityScorer
	// Logger receives match evaluation events. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Matcher scores candidates against request items. Matching is
// deterministic: fixed texts and configuration always produce identical
// scores and ordering.
type Matcher struct {
	fuzzyThreshold    float64
	semanticThreshold float64
	fuzzyWeight       float64
	semanticWeight    float64
	scorer            core.SimilarityScorer
	logger            logging.Logger
}

// New creates a Matcher. Thresholds are clamped into [0,1]; non-positive
// weight pairs fall back to equal weights.
func New(optFns ...func(o *Options)) *Matcher {
	opts := Options{
		FuzzyThreshold:    0.8,
		SemanticThreshold: 0.75,
		FuzzyWeight:       0.5,
		SemanticWeight:    0.5,
		Logger:            logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FuzzyWeight <= 0 && opts.SemanticWeight <= 0 {
		opts.FuzzyWeight, opts.SemanticWeight = 0.5, 0.5
	}
	return &Matcher{
		fuzzyThreshold:    clamp01(opts.FuzzyThreshold),
		semanticThreshold: clamp01(opts.SemanticThreshold),
		fuzzyWeight:       opts.FuzzyWeight,
		semanticWeight:    opts.SemanticWeight,
		scorer:            opts.Scorer,
		logger:            opts.Logger,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FindBestMatches scores every candidate against the request items and
// returns the accepted matches ordered by combined score descending,
// ties broken by more recent candidate creation time. Each candidate is
// scored against its best-matching request item. A candidate is accepted
// when fuzzy >= FuzzyThreshold OR semantic >= SemanticThreshold, both
// bounds inclusive. Nil items fail with ErrInvalidField.
func (m *Matcher) FindBestMatches(
	ctx context.Context,
	requests []core.MatchItem,
	candidates []core.MatchItem,
) ([]core.MatchResult, error) {
	for _, r := range requests {
		if r == nil {
			return nil, fmt.Errorf("request item: %w", ErrInvalidField)
		}
	}
	for _, c := range candidates {
		if c == nil {
			return nil, fmt.Errorf("candidate item: %w", ErrInvalidField)
		}
	}

	start := time.Now()
	results := make([]core.MatchResult, 0, len(candidates))

	for _, cand := range candidates {
		var best core.MatchResult
		for i, req := range requests {
			res := m.score(ctx, req, cand)
			if i == 0 || betterResult(res, best) {
				best = res
			}
		}
		if best.Accepted {
			results = append(results, best)
		}
	}

	// Deterministic ranking: combined score descending, then recency.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		return results[i].Candidate.Created().After(results[j].Candidate.Created())
	})

	bestScore := 0.0
	if len(results) > 0 {
		bestScore = results[0].CombinedScore
	}
	m.logger.Debug("matcher evaluated candidates count=%d accepted=%d best=%.3f duration=%s",
		len(candidates), len(results), bestScore, time.Since(start))

	return results, nil
}

// betterResult prefers accepted pairings, then higher combined scores.
func betterResult(a, b core.MatchResult) bool {
	if a.Accepted != b.Accepted {
		return a.Accepted
	}
	return a.CombinedScore > b.CombinedScore
}

// score computes one request/candidate pairing.
func (m *Matcher) score(ctx context.Context, req, cand core.MatchItem) core.MatchResult {
	fuzzy := FuzzyScore(req.Title(), cand.Title())

	semantic := 0.0
	if m.scorer != nil {
		s, err := m.scorer.Similarity(ctx, req.Body(), cand.Body())
		if err != nil {
			// Degrade gracefully: a failing semantic backend must never
			// fail the match call.
			m.logger.Warn("matcher semantic scorer failed, using fuzzy only: %v", err)
		} else {
			semantic = clamp01(s)
		}
	}

	combined := (m.fuzzyWeight*fuzzy + m.semanticWeight*semantic) / (m.fuzzyWeight + m.semanticWeight)

	return core.MatchResult{
		Candidate:     cand,
		FuzzyScore:    fuzzy,
		SemanticScore: semantic,
		CombinedScore: combined,
		Accepted:      fuzzy >= m.fuzzyThreshold || semantic >= m.semanticThreshold,
	}
}
