package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankCandidates(t *testing.T) {
	header := []string{"id", "base", "Name", "", "Names", "Level"}

	candidates := RankCandidates("name", header)

	// the empty header cell is skipped
	require.Len(t, candidates, 5)

	best := candidates.Best()
	require.NotNil(t, best)
	assert.Equal(t, "Name", best.Column)
	assert.Equal(t, 2, best.Index)
	assert.InDelta(t, 1.0, best.Score, 0.001)

	assert.Equal(t, "Names", candidates[1].Column)
	assert.True(t, candidates.IsAmbiguous(0.5))
	assert.False(t, candidates.IsAmbiguous(0.1))
}

func TestCandidateListHelpers(t *testing.T) {
	list := CandidateList{
		{Column: "a", Index: 0, Score: 0.9},
		{Column: "b", Index: 1, Score: 0.5},
		{Column: "c", Index: 2, Score: 0.2},
	}

	assert.Equal(t, []string{"a", "b"}, list.Top(2).Names())
	assert.Len(t, list.Top(10), 3)
	assert.Equal(t, []string{"a", "b"}, list.AboveThreshold(0.5).Names())
	assert.Nil(t, CandidateList{}.Best())
	assert.False(t, CandidateList{{Column: "x"}}.IsAmbiguous(1))
}

func TestRankCandidatesTieBreaksOnPosition(t *testing.T) {
	candidates := RankCandidates("ab", []string{"xb", "ax"})

	require.Len(t, candidates, 2)
	assert.Equal(t, "xb", candidates[0].Column)
}
