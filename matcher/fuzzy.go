package matcher

import (
	"strings"

	"genmesh/core"
)

// FuzzyScore computes the lexical similarity of two titles in [0,1].
// Both inputs are case-folded and whitespace-collapsed first. The score
// is the maximum of the normalized edit-distance ratio and the token
// overlap (Jaccard), which keeps recall high for both near-verbatim and
// reworded titles.
func FuzzyScore(a, b string) float64 {
	a = core.NormalizeText(a)
	b = core.NormalizeText(b)

	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	edit := editRatio(a, b)
	overlap := tokenOverlap(a, b)
	if overlap > edit {
		return overlap
	}
	return edit
}

// editRatio is 1 - levenshtein(a,b)/max(len(a),len(b)) over runes.
func editRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes the edit distance with a rolling two-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// tokenOverlap is the Jaccard index of the whitespace token sets.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
