package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Path
		wantErr  bool
	}{
		{
			name:     "simple property",
			input:    "name",
			expected: Path{Key("name")},
		},
		{
			name:     "nested property",
			input:    "stats.hp",
			expected: Path{Key("stats"), Key("hp")},
		},
		{
			name:     "bracket index",
			input:    "pos[1]",
			expected: Path{Key("pos"), Index(1)},
		},
		{
			name:     "dotted index",
			input:    "pos.1",
			expected: Path{Key("pos"), Index(1)},
		},
		{
			name:     "append",
			input:    "tags[]",
			expected: Path{Key("tags"), Append()},
		},
		{
			name:     "grid",
			input:    "grid[0][2].cost",
			expected: Path{Key("grid"), Index(0), Index(2), Key("cost")},
		},
		{
			name:     "index then append",
			input:    "drops[1][]",
			expected: Path{Key("drops"), Index(1), Append()},
		},
		{
			name:     "unicode property",
			input:    "名前",
			expected: Path{Key("名前")},
		},
		{
			name:    "empty path",
			input:   "",
			wantErr: true,
		},
		{
			name:    "empty segment",
			input:   "stats..hp",
			wantErr: true,
		},
		{
			name:    "leading index",
			input:   "[0]",
			wantErr: true,
		},
		{
			name:    "append not last",
			input:   "tags[].name",
			wantErr: true,
		},
		{
			name:    "unbalanced bracket",
			input:   "pos[1",
			wantErr: true,
		},
		{
			name:    "non numeric index",
			input:   "pos[x]",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPathString(t *testing.T) {
	for _, s := range []string{"name", "stats.hp", "pos[1]", "tags[]", "grid[0][2].cost"} {
		assert.Equal(t, s, MustParsePath(s).String())
	}

	assert.Equal(t, "pos[1]", MustParsePath("pos.1").String())
}

func TestPathHelpers(t *testing.T) {
	p := MustParsePath("stats.tags[]")

	assert.True(t, p.Appends())
	assert.Equal(t, MustParsePath("stats.tags"), p.Parent())
	assert.NotEqual(t, MustParsePath("stats.tags"), p)
	assert.True(t, Path{}.IsEmpty())

	joined := MustParsePath("rewards").Concat(Path{Index(0), Key("id")})
	assert.Equal(t, "rewards[0].id", joined.String())
}

func TestMustParsePathPanics(t *testing.T) {
	assert.Panics(t, func() { MustParsePath("") })
}
