package match

import (
	"sort"
)

// SuggestThreshold is the minimum NameSimilarity for a name to be offered as
// a "did you mean" suggestion.
const SuggestThreshold = 0.6

// Candidate is a name scored against a wanted name.
type Candidate struct {
	Name  string
	Score float64
}

// CandidateList is ordered by descending score, then name.
type CandidateList []Candidate

func (c CandidateList) Len() int      { return len(c) }
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Name < c[j].Name
}

// Rank scores every name against want.
func Rank(want string, names []string) CandidateList {
	out := make(CandidateList, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{Name: n, Score: NameSimilarity(want, n)})
	}

	sort.Sort(out)

	return out
}

// Top returns at most n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n < len(c) {
		return c[:n]
	}

	return c
}

// AboveThreshold keeps the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList
	for _, cand := range c {
		if cand.Score >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// Best returns the single clear winner: the top candidate scoring at least
// minScore and beating the runner-up by minGap.
func (c CandidateList) Best(minScore, minGap float64) (Candidate, bool) {
	if len(c) == 0 || c[0].Score < minScore {
		return Candidate{}, false
	}

	if len(c) > 1 && c[0].Score-c[1].Score < minGap {
		return Candidate{}, false
	}

	return c[0], true
}

// Names returns the candidate names.
func (c CandidateList) Names() []string {
	out := make([]string, len(c))
	for i, cand := range c {
		out[i] = cand.Name
	}

	return out
}

// Suggest returns up to three names close to want.
func Suggest(want string, names []string) []string {
	return Rank(want, names).AboveThreshold(SuggestThreshold).Top(3).Names()
}
