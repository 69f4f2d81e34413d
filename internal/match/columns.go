package match

import (
	"sort"
	"strings"
)

// Columns indexes a header row for name lookups.
type Columns struct {
	header     []string
	exact      map[string]int
	normalized map[string][]int
}

// NewColumns indexes header. When a name repeats, the first occurrence
// wins.
func NewColumns(header []string) *Columns {
	c := &Columns{
		header:     header,
		exact:      make(map[string]int, len(header)),
		normalized: make(map[string][]int, len(header)),
	}

	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}

		if _, seen := c.exact[h]; !seen {
			c.exact[h] = i
		}

		norm := NormalizeHeader(h)
		c.normalized[norm] = append(c.normalized[norm], i)
	}

	return c
}

// Header returns the indexed header row.
func (c *Columns) Header() []string {
	return c.header
}

// Lookup returns the position of the column called name. An exact
// (trimmed) match is preferred; otherwise a normalized match is accepted
// when it is unambiguous. exact reports which of the two was used.
//
// Several headers can share a normalized form ("Drop Rate", "drop_rate").
// The one whose raw spelling is closest to name then wins, unless the
// runner-up is within DefaultAmbiguityThreshold of it.
func (c *Columns) Lookup(name string) (index int, exact bool, ok bool) {
	name = strings.TrimSpace(name)

	if i, found := c.exact[name]; found {
		return i, true, true
	}

	candidates := c.spellings(name, c.normalized[NormalizeHeader(name)])
	if candidates.IsAmbiguous(DefaultAmbiguityThreshold) {
		return -1, false, false
	}

	if best := candidates.Best(); best != nil {
		return best.Index, false, true
	}

	return -1, false, false
}

// spellings scores the headers at positions by raw, case-sensitive
// similarity to name.
func (c *Columns) spellings(name string, positions []int) CandidateList {
	candidates := make(CandidateList, 0, len(positions))

	for _, i := range positions {
		col := strings.TrimSpace(c.header[i])
		candidates = append(candidates, Candidate{
			Column: col,
			Index:  i,
			Score:  LevenshteinNormalized(name, col),
		})
	}

	sort.Sort(candidates)

	return candidates
}

// Suggest returns up to count header names scoring at least minScore
// against name, best first. Non-positive arguments fall back to
// DefaultSuggestScore and DefaultSuggestCount.
func (c *Columns) Suggest(name string, minScore float64, count int) []string {
	if minScore <= 0 {
		minScore = DefaultSuggestScore
	}

	if count <= 0 {
		count = DefaultSuggestCount
	}

	return RankCandidates(name, c.header).
		AboveThreshold(minScore).
		Top(count).
		Names()
}
