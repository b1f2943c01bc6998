package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_EmptyPatternMatchesNothing(t *testing.T) {
	m, err := Compile("")
	require.NoError(t, err)
	assert.Nil(t, m)

	for _, name := range []string{"", "orders", "__consumer_offsets", ".*"} {
		assert.False(t, m.Excludes(name), "empty pattern must not exclude %q", name)
	}
	assert.Equal(t, "", m.String())
}

func TestMatcher_FullStringMatch(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		input    string
		expected bool
	}{
		{name: "exact", pattern: "orders", input: "orders", expected: true},
		{name: "substring is not a match", pattern: "order", input: "orders", expected: false},
		{name: "prefix wildcard", pattern: "internal.*", input: "internal-x", expected: true},
		{name: "explicit anchors", pattern: "^internal.*", input: "internal-x", expected: true},
		{name: "anchored prefix misses", pattern: "^internal.*", input: "x-internal", expected: false},
		{name: "alternation anchors every branch", pattern: "a|b", input: "ab", expected: false},
		{name: "alternation branch", pattern: "a|b", input: "b", expected: true},
		{name: "dunder topics", pattern: "__.*", input: "__consumer_offsets", expected: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Compile(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.Excludes(tc.input))
			assert.Equal(t, tc.pattern, m.String())
		})
	}
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile("(unclosed")
	require.Error(t, err)

	var patternErr *InvalidPatternError
	require.ErrorAs(t, err, &patternErr)
	assert.Equal(t, "(unclosed", patternErr.Pattern)
	assert.NotNil(t, patternErr.Unwrap())
}

func TestNewPolicy(t *testing.T) {
	t.Run("defaults accept everything", func(t *testing.T) {
		p, err := NewPolicy("", "")
		require.NoError(t, err)
		assert.True(t, p.Accept("orders", "g1"))
		assert.True(t, p.Accept("", ""))
	})

	t.Run("topic excluded regardless of group", func(t *testing.T) {
		p, err := NewPolicy("^internal.*", "")
		require.NoError(t, err)
		assert.False(t, p.Accept("internal-x", "g1"))
		assert.True(t, p.Accept("orders", "g1"))
	})

	t.Run("group excluded", func(t *testing.T) {
		p, err := NewPolicy("", "console-consumer-.*")
		require.NoError(t, err)
		assert.False(t, p.Accept("orders", "console-consumer-123"))
		assert.True(t, p.Accept("orders", "billing"))
	})

	t.Run("both patterns", func(t *testing.T) {
		p, err := NewPolicy("tmp-.*", "test-.*")
		require.NoError(t, err)
		assert.False(t, p.Accept("tmp-1", "billing"))
		assert.False(t, p.Accept("orders", "test-1"))
		assert.True(t, p.Accept("orders", "billing"))
	})

	t.Run("invalid topic pattern", func(t *testing.T) {
		_, err := NewPolicy("[", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "topic filter")
	})

	t.Run("invalid group pattern", func(t *testing.T) {
		_, err := NewPolicy("", "[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "group filter")
	})
}

func TestNilPolicyAcceptsEverything(t *testing.T) {
	var p *Policy
	assert.True(t, p.Accept("anything", "anyone"))
}

func TestExcludeHelpers(t *testing.T) {
	assert.False(t, ExcludeTopic("orders", ""))
	assert.True(t, ExcludeTopic("internal-x", "^internal.*"))
	assert.False(t, ExcludeTopic("orders", "["))

	assert.False(t, ExcludeGroup("g1", ""))
	assert.True(t, ExcludeGroup("g1", "g[0-9]+"))
	assert.False(t, ExcludeGroup("g1x", "g[0-9]+"))
}
