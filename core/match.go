package core

import "time"

// MatchItem is the capability the matcher requires from anything it
// compares: a title field and a content field, plus a creation time for
// tie-breaking. Heterogeneous cached/request item shapes are adapted to
// this interface once at the pipeline boundary rather than per
// comparison.
type MatchItem interface {
	Title() string
	Body() string
	Created() time.Time
}

// MatchResult scores one candidate against one request. It is ephemeral:
// it exists only for the duration of one matching call.
type MatchResult struct {
	// Candidate references the scored item. The matcher never mutates it.
	Candidate MatchItem
	// FuzzyScore is the lexical similarity of the titles, in [0,1].
	FuzzyScore float64
	// SemanticScore is the embedding similarity of the bodies, in [0,1].
	// Zero when no semantic backend is configured.
	SemanticScore float64
	// CombinedScore is the weighted combination of the two sub-scores.
	CombinedScore float64
	// Accepted reports whether either sub-score met its threshold
	// (inclusive OR-gate).
	Accepted bool
}
