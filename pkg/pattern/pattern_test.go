package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMatching(t *testing.T) {
	tests := []struct {
		pattern string
		code    string
		want    bool
	}{
		{"CS2100", "CS2100", true},
		{"CS2100", "CS2101", false},
		{"CS2100", "CS21000", false}, // exact, no substring match
		{"CS2*", "CS2100", true},
		{"CS2*", "CS2040S", true},
		{"CS2*", "CS1101S", false},
		{"CS2*", "GER1000", false},
		{"CSxxxx", "CS2100", true},
		{"CSxxxx", "CS210A", false}, // x matches digits only
		{"CSxxxx", "CS210", false},
		{"*", "ANYTHING123", true},
		{"GEx*", "GE3101", true},
		{"GEx*", "GEA101", false},
	}
	for _, tc := range tests {
		re, err := Compile(tc.pattern)
		require.NoError(t, err, tc.pattern)
		assert.Equal(t, tc.want, re.MatchString(tc.code), "%s vs %s", tc.pattern, tc.code)
	}
}

func TestCompileJoinsAlternatives(t *testing.T) {
	re, err := Compile("CS1101S", "CS1231S")
	require.NoError(t, err)
	assert.True(t, re.MatchString("CS1101S"))
	assert.True(t, re.MatchString("CS1231S"))
	assert.False(t, re.MatchString("CS1010"))
}

func TestCompileRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"", "cs2100", "CS 2100", "CS21-00", "CS?"} {
		_, err := Compile(bad)
		assert.ErrorIs(t, err, ErrBadPattern, "pattern %q", bad)
	}
	_, err := Compile()
	assert.ErrorIs(t, err, ErrBadPattern)
}

func TestParseInequality(t *testing.T) {
	q, err := ParseInequality(">=8")
	require.NoError(t, err)
	assert.Equal(t, Inequality{Direction: AtLeast, Threshold: 8}, q)

	q, err = ParseInequality("<=160")
	require.NoError(t, err)
	assert.Equal(t, Inequality{Direction: AtMost, Threshold: 160}, q)

	assert.Equal(t, ">=8", Inequality{AtLeast, 8}.String())
}

func TestParseInequalityRejectsBadInput(t *testing.T) {
	for _, bad := range []string{"", ">8", "=8", ">=", ">=x", ">= 8", "8>=", "<=-1"} {
		_, err := ParseInequality(bad)
		assert.ErrorIs(t, err, ErrBadInequality, "input %q", bad)
	}
}
