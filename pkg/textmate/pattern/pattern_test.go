package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/scopelight/pkg/textmate/pattern"
)

func TestCompileInvalidSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unbalanced paren", `(abc`},
		{"trailing backslash", `abc\`},
		{"bad repetition", `*abc`},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := pattern.Compile(testCase.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, pattern.ErrInvalidSyntax)
		})
	}
}

func TestCompileSharesIdenticalSources(t *testing.T) {
	t.Parallel()

	a, err := pattern.Compile(`shared-[0-9]+`)
	require.NoError(t, err)
	b, err := pattern.Compile(`shared-[0-9]+`)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestStartAnchor(t *testing.T) {
	t.Parallel()

	reg := pattern.MustCompile(`\Ahello`)

	assert.NotNil(t, reg.MatchAt("hello", 0, true, false))
	assert.Nil(t, reg.MatchAt("hello", 0, false, false))
	// Even on the first line the anchor only holds at position zero.
	assert.Nil(t, reg.Search("xhello", 1, true, false))
}

func TestContinuationAnchor(t *testing.T) {
	t.Parallel()

	reg := pattern.MustCompile(`\Ghello`)

	assert.NotNil(t, reg.MatchAt("xxhello", 2, false, true))
	assert.Nil(t, reg.MatchAt("xxhello", 2, false, false))
	// The anchor is pinned to the scan position, not a later one.
	assert.Nil(t, reg.Search("xxhello", 0, false, true))
}

func TestEndOfBufferAnchorNeverMatches(t *testing.T) {
	t.Parallel()

	assert.Nil(t, pattern.MustCompile(`hello\z`).Search("hello", 0, true, true))
	assert.Nil(t, pattern.MustCompile(`hello\Z`).Search("hello", 0, true, true))
}

func TestEscapedBackslashIsNotAnAnchor(t *testing.T) {
	t.Parallel()

	reg := pattern.MustCompile(`\\A`)
	assert.NotNil(t, reg.Search(`x\Ay`, 0, false, false))
}

func TestNeverMatch(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "a", "hello world"} {
		assert.Nil(t, pattern.NeverMatch.Search(line, 0, true, true))
	}
}

func TestSearchReportsRuneOffsets(t *testing.T) {
	t.Parallel()

	reg := pattern.MustCompile(`b+`)
	m := reg.Search("éébb", 0, false, false)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Start())
	assert.Equal(t, 4, m.End())
	assert.Equal(t, "bb", m.Text())
}

func TestGroupSpan(t *testing.T) {
	t.Parallel()

	reg := pattern.MustCompile(`(a+)(z)?(b+)`)
	m := reg.MatchAt("aabb", 0, false, false)
	require.NotNil(t, m)

	start, end, ok := m.GroupSpan(1)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	_, _, ok = m.GroupSpan(2)
	assert.False(t, ok, "optional group did not participate")

	_, _, ok = m.GroupSpan(9)
	assert.False(t, ok, "group does not exist")

	assert.Equal(t, "bb", m.GroupText(3))
	assert.Equal(t, "", m.GroupText(2))
}

func TestSetSearch(t *testing.T) {
	t.Parallel()

	set, err := pattern.CompileSet([]string{`bbb`, `a+`, `ab`})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())

	// Earliest start wins.
	idx, m := set.Search("xxabbb", 0, false, false)
	require.NotNil(t, m)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, m.Start())

	// Ties go to the lowest index.
	idx, m = set.Search("ab", 0, false, false)
	require.NotNil(t, m)
	assert.Equal(t, 1, idx)

	// No alternative matches.
	idx, m = set.Search("zzz", 0, false, false)
	assert.Equal(t, -1, idx)
	assert.Nil(t, m)
}

func TestSetSearchEmpty(t *testing.T) {
	t.Parallel()

	set, err := pattern.CompileSet(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())

	idx, m := set.Search("anything", 0, true, true)
	assert.Equal(t, -1, idx)
	assert.Nil(t, m)
}
