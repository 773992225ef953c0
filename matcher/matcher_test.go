package matcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genmesh/core"
)

// item is a minimal MatchItem for tests.
type item struct {
	title   string
	body    string
	created time.Time
}

func (i item) Title() string      { return i.title }
func (i item) Body() string       { return i.body }
func (i item) Created() time.Time { return i.created }

// pairScorer returns canned similarities keyed by body pair.
type pairScorer struct {
	scores map[[2]string]float64
	err    error
}

func (s *pairScorer) Similarity(_ context.Context, a, b string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.scores[[2]string{a, b}], nil
}

func TestFuzzyScore(t *testing.T) {
	assert.Equal(t, 1.0, FuzzyScore("Space Travel", "  space   TRAVEL "))
	assert.Equal(t, 0.0, FuzzyScore("", "anything"))
	assert.Equal(t, 1.0, FuzzyScore("", ""))

	// Near-verbatim titles score high via edit distance.
	assert.Greater(t, FuzzyScore("space travel", "space travels"), 0.9)
	// Reordered tokens score high via token overlap.
	assert.GreaterOrEqual(t, FuzzyScore("travel space", "space travel"), 1.0)
	// Unrelated titles score low.
	assert.Less(t, FuzzyScore("space travel", "banana bread recipe"), 0.4)
}

func TestFindBestMatches_FuzzyOnlyAcceptance(t *testing.T) {
	m := New(func(o *Options) { o.FuzzyThreshold = 0.8 })

	req := []core.MatchItem{item{title: "dinosaur adventure", body: "a story"}}
	cands := []core.MatchItem{
		item{title: "dinosaur adventures", body: "b"},
		item{title: "tax law summary", body: "c"},
	}

	results, err := m.FindBestMatches(context.Background(), req, cands)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "dinosaur adventures", results[0].Candidate.Title())
	assert.True(t, results[0].Accepted)
	assert.Zero(t, results[0].SemanticScore)
}

func TestFindBestMatches_ThresholdBoundaryInclusive(t *testing.T) {
	// "abcde" vs "abcdX": distance 1 over length 5 = fuzzy exactly 0.8.
	m := New(func(o *Options) { o.FuzzyThreshold = 0.8 })

	results, err := m.FindBestMatches(
		context.Background(),
		[]core.MatchItem{item{title: "abcde"}},
		[]core.MatchItem{item{title: "abcdx"}},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.8, results[0].FuzzyScore, 1e-9)
	assert.True(t, results[0].Accepted)
}

func TestFindBestMatches_SemanticORGate(t *testing.T) {
	scorer := &pairScorer{scores: map[[2]string]float64{
		{"req body", "cand body"}: 0.9,
	}}
	m := New(func(o *Options) {
		o.FuzzyThreshold = 0.8
		o.SemanticThreshold = 0.75
		o.Scorer = scorer
	})

	// Lexically unrelated but semantically close: the OR-gate accepts.
	results, err := m.FindBestMatches(
		context.Background(),
		[]core.MatchItem{item{title: "volcanoes explained", body: "req body"}},
		[]core.MatchItem{item{title: "all about magma", body: "cand body"}},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.9, results[0].SemanticScore)
	assert.True(t, results[0].Accepted)
}

func TestFindBestMatches_ScorerErrorDegradesGracefully(t *testing.T) {
	m := New(func(o *Options) {
		o.Scorer = &pairScorer{err: errors.New("embedding service down")}
	})

	results, err := m.FindBestMatches(
		context.Background(),
		[]core.MatchItem{item{title: "space travel", body: "x"}},
		[]core.MatchItem{item{title: "space travel", body: "y"}},
	)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].SemanticScore)
	assert.True(t, results[0].Accepted) // fuzzy 1.0 carries it
}

func TestFindBestMatches_Deterministic(t *testing.T) {
	m := New()
	req := []core.MatchItem{item{title: "space travel", body: "b"}}
	cands := []core.MatchItem{
		item{title: "space travel", body: "x", created: time.Unix(1, 0)},
		item{title: "space travel guide", body: "y", created: time.Unix(2, 0)},
	}

	first, err := m.FindBestMatches(context.Background(), req, cands)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.FindBestMatches(context.Background(), req, cands)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestFindBestMatches_OrderingAndRecencyTieBreak(t *testing.T) {
	m := New(func(o *Options) { o.FuzzyThreshold = 0.3 })

	older := item{title: "space travel", body: "a", created: time.Unix(100, 0)}
	newer := item{title: "space travel", body: "b", created: time.Unix(200, 0)}
	weaker := item{title: "space", body: "c", created: time.Unix(300, 0)}

	results, err := m.FindBestMatches(
		context.Background(),
		[]core.MatchItem{item{title: "space travel"}},
		[]core.MatchItem{older, weaker, newer},
	)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Equal combined scores: the more recent candidate ranks first.
	assert.Equal(t, newer, results[0].Candidate)
	assert.Equal(t, older, results[1].Candidate)
	assert.Equal(t, weaker, results[2].Candidate)
}

func TestFindBestMatches_NilItem(t *testing.T) {
	m := New()
	_, err := m.FindBestMatches(context.Background(), []core.MatchItem{nil}, nil)
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = m.FindBestMatches(context.Background(),
		[]core.MatchItem{item{title: "t"}}, []core.MatchItem{nil})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestNewFields_Validation(t *testing.T) {
	created := time.Unix(42, 0)
	f, err := NewFields(map[string]any{"title": "T", "content": "C", "created_at": created}, "title", "content")
	require.NoError(t, err)
	assert.Equal(t, "T", f.Title())
	assert.Equal(t, "C", f.Body())
	assert.Equal(t, created, f.Created())

	_, err = NewFields(map[string]any{"content": "C"}, "title", "content")
	assert.ErrorIs(t, err, ErrInvalidField)

	_, err = NewFields(map[string]any{"title": 7, "content": "C"}, "title", "content")
	assert.ErrorIs(t, err, ErrInvalidField)
}
