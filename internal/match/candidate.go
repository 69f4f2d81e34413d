package match

import "sort"

// Candidate is a header column that may be what a rule meant by a name.
type Candidate struct {
	Column string
	Index  int
	Score  float64
}

// CandidateList is a list of candidates with ranking functionality.
type CandidateList []Candidate

// RankCandidates scores every non-empty header cell against name.
// Returns candidates sorted by score (descending).
func RankCandidates(name string, header []string) CandidateList {
	candidates := make(CandidateList, 0, len(header))

	for i, col := range header {
		if col == "" {
			continue
		}

		candidates = append(candidates, Candidate{
			Column: col,
			Index:  i,
			Score:  HeaderSimilarity(name, col),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Len implements sort.Interface.
func (c CandidateList) Len() int { return len(c) }

// Swap implements sort.Interface.
func (c CandidateList) Swap(i, j int) { c[i], c[j] = c[j], c[i] }

// Less implements sort.Interface.
// Sorts by score descending, then by column position for determinism.
func (c CandidateList) Less(i, j int) bool {
	if c[i].Score != c[j].Score {
		return c[i].Score > c[j].Score
	}

	return c[i].Index < c[j].Index
}

// Top returns the top n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if no candidates.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within the threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var result CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			result = append(result, cand)
		}
	}

	return result
}

// Names returns the column names of the candidates.
func (c CandidateList) Names() []string {
	names := make([]string, len(c))
	for i, cand := range c {
		names[i] = cand.Column
	}

	return names
}

// Thresholds for suggestions.
const (
	// DefaultSuggestScore is the minimum score for a "did you mean" hint.
	DefaultSuggestScore = 0.6
	// DefaultSuggestCount caps the number of hints per column.
	DefaultSuggestCount = 3
	// DefaultAmbiguityThreshold is the score difference that marks ambiguity.
	DefaultAmbiguityThreshold = 0.1
)
