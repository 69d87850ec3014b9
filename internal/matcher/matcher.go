// Package matcher scores approximate string similarity between a normalized
// query and a candidate set, used at the fuzzy stages of the cascade.
package matcher

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Match is a scored candidate. Score is in [0,100].
type Match struct {
	Key   string
	Score int
}

// BestMatch returns the highest-scoring candidate for query, or false when
// the query is empty, the candidate set is empty, or no candidate reaches
// threshold. Ties break on the first candidate encountered, so callers that
// need run-to-run determinism must pass a stably ordered slice.
func BestMatch(query string, candidates []string, threshold int) (Match, bool) {
	if query == "" || len(candidates) == 0 {
		return Match{}, false
	}

	best := Match{Score: -1}
	for _, candidate := range candidates {
		if score := WeightedRatio(query, candidate); score > best.Score {
			best = Match{Key: candidate, Score: score}
		}
	}

	if best.Score < threshold {
		return Match{}, false
	}
	return best, true
}

// WeightedRatio scores similarity of two strings in [0,100]. It takes the
// maximum of the plain edit-distance ratio, a transposition-tolerant ratio
// (swapped adjacent letters count as one edit, not two) and the token-sort
// and token-set ratios (tolerant to word reordering), and when one string
// is much shorter than the other additionally considers the best substring
// alignment at a 0.9 weight.
func WeightedRatio(a, b string) int {
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}

	score := ratio(a, b)
	if s := transpositionRatio(a, b); s > score {
		score = s
	}
	if s := tokenSortRatio(a, b); s > score {
		score = s
	}
	if s := tokenSetRatio(a, b); s > score {
		score = s
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(longer) > 0 && float64(len(shorter))/float64(len(longer)) < 0.7 {
		if s := partialRatio(shorter, longer) * 9 / 10; s > score {
			score = s
		}
	}

	return score
}

// ratio is the straight edit-distance similarity: 1 - dist/maxLen, scaled
// to [0,100].
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	return int(float64(maxLen-dist) / float64(maxLen) * 100)
}

// transpositionRatio scores like ratio but with adjacent transpositions as
// a single edit, so a swapped-letter typo on a short name is not penalized
// twice and can still clear the city threshold.
func transpositionRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 100
	}
	dist := osaDistance(ra, rb)
	return int(float64(maxLen-dist) / float64(maxLen) * 100)
}

// osaDistance is the optimal-string-alignment distance: edit distance where
// swapping two adjacent runes costs one operation.
func osaDistance(a, b []rune) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev2 := make([]int, lb+1)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d = min(d, prev2[j-2]+1)
			}
			cur[j] = d
		}
		prev2, prev, cur = prev, cur, prev2
	}

	return prev[lb]
}

// tokenSortRatio compares the strings with their words sorted, so word
// order does not matter.
func tokenSortRatio(a, b string) int {
	return ratio(sortTokens(a), sortTokens(b))
}

// tokenSetRatio splits both strings into token sets and compares the
// shared core against each side's remainder, which tolerates one string
// carrying extra words.
func tokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)

	var common, onlyA, onlyB []string
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if _, ok := ta[tok]; !ok {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(common, " ")
	withA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	withB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	score := ratio(base, withA)
	if s := ratio(base, withB); s > score {
		score = s
	}
	if s := ratio(withA, withB); s > score {
		score = s
	}
	return score
}

// partialRatio finds the best alignment of the shorter string against any
// equally sized substring of the longer one.
func partialRatio(shorter, longer string) int {
	rs := []rune(shorter)
	rl := []rune(longer)
	if len(rs) == 0 {
		return 0
	}
	if len(rs) >= len(rl) {
		return ratio(shorter, longer)
	}

	best := 0
	for i := 0; i+len(rs) <= len(rl); i++ {
		if s := ratio(shorter, string(rl[i:i+len(rs)])); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
