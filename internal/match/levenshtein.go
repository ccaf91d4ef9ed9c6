package match

// Levenshtein returns the edit distance between a and b, counted in bytes.
func Levenshtein(a, b string) int {
	if len(a) > len(b) {
		a, b = b, a
	}

	if a == "" {
		return len(b)
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// Similarity scores a against b between 0 (nothing in common) and 1
// (equal).
func Similarity(a, b string) float64 {
	n := max(len(a), len(b))
	if n == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(a, b))/float64(n)
}

// NameSimilarity is Similarity of the normalized identifiers, taking the
// better of the plain and id-stripped forms.
func NameSimilarity(a, b string) float64 {
	return max(
		Similarity(NormalizeIdent(a), NormalizeIdent(b)),
		Similarity(NormalizeField(a), NormalizeField(b)),
	)
}
