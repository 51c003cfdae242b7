package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcheck/modcheck/pkg/module"
)

var plan = module.List{
	{Code: "CS2100", Credits: 4},
	{Code: "CS2040S", Credits: 4},
	{Code: "GER1000", Credits: 4},
}

func mustPattern(t *testing.T, pat string, excludes []string, info string) *Rule {
	t.Helper()
	r, err := NewPattern(pat, excludes, info)
	require.NoError(t, err)
	return r
}

func TestPatternLeafPartitions(t *testing.T) {
	r := mustPattern(t, "CS2*", nil, "")
	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.True(t, out.Ok)
	assert.Equal(t, []string{"CS2100", "CS2040S"}, out.Matched.Codes())
	assert.Equal(t, []string{"GER1000"}, out.Remaining.Codes())
}

func TestPatternLeafExcludes(t *testing.T) {
	r := mustPattern(t, "CS2*", []string{"CS2040S"}, "")
	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.Equal(t, []string{"CS2100"}, out.Matched.Codes())
	assert.Equal(t, []string{"CS2040S", "GER1000"}, out.Remaining.Codes())
}

func TestInfoOnlyAttachedWhenMatched(t *testing.T) {
	hit := mustPattern(t, "GER1000", nil, "GER note")
	out, err := Evaluate(plan, hit)
	require.NoError(t, err)
	assert.Equal(t, []string{"GER note"}, out.Infos)

	miss := mustPattern(t, "MA1521", nil, "irrelevant note")
	out, err = Evaluate(plan, miss)
	require.NoError(t, err)
	assert.False(t, out.Ok)
	assert.Empty(t, out.Infos)
}

func TestAndThreadsLeftToRight(t *testing.T) {
	// Both children could match CS2100; the left sibling consumes it first.
	a := mustPattern(t, "CS2100", nil, "")
	b := mustPattern(t, "CS2*", nil, "")
	r, err := And(a, b)
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.True(t, out.Ok)
	assert.Equal(t, []string{"CS2100", "CS2040S"}, out.Matched.Codes())
	assert.Equal(t, []string{"GER1000"}, out.Remaining.Codes())
}

func TestAndFailureContributesNothing(t *testing.T) {
	a := mustPattern(t, "CS2*", nil, "")
	b := mustPattern(t, "MA1521", nil, "")
	r, err := And(a, b)
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.False(t, out.Ok)
	assert.Empty(t, out.Matched)
	assert.Equal(t, plan.Codes(), out.Remaining.Codes())
}

func TestOrNeedsOneMatch(t *testing.T) {
	a := mustPattern(t, "MA1521", nil, "")
	b := mustPattern(t, "GER1000", nil, "")
	r, err := Or(a, b)
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.True(t, out.Ok)
	assert.Equal(t, []string{"GER1000"}, out.Matched.Codes())
	assert.Equal(t, []string{"CS2100", "CS2040S"}, out.Remaining.Codes())
}

func TestOrAllMiss(t *testing.T) {
	a := mustPattern(t, "MA1521", nil, "")
	b := mustPattern(t, "MA1101R", nil, "")
	r, err := Or(a, b)
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.False(t, out.Ok)
	assert.Empty(t, out.Matched)
	assert.Equal(t, plan.Codes(), out.Remaining.Codes())
}

func TestEmptyBranchesRejected(t *testing.T) {
	_, err := And()
	assert.ErrorIs(t, err, ErrBadRule)
	_, err = Or()
	assert.ErrorIs(t, err, ErrBadRule)
}

func TestModuleConservation(t *testing.T) {
	a := mustPattern(t, "CS2*", []string{"CS2040S"}, "")
	b := mustPattern(t, "GER1000", nil, "")
	r, err := Or(a, b)
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.Len(t, append(out.Matched, out.Remaining...), len(plan))
	assert.Empty(t, plan.Minus(module.Concat(out.Matched, out.Remaining)))
}

func TestPredicateRule(t *testing.T) {
	r, err := NewPredicate(`code.startsWith("CS") && credits >= 4.0`, "cs note")
	require.NoError(t, err)

	out, err := Evaluate(plan, r)
	require.NoError(t, err)
	assert.True(t, out.Ok)
	assert.Equal(t, []string{"CS2100", "CS2040S"}, out.Matched.Codes())
	assert.Equal(t, []string{"cs note"}, out.Infos)
}

func TestPredicateMustBeBoolean(t *testing.T) {
	_, err := NewPredicate(`credits + 1.0`, "")
	assert.ErrorIs(t, err, ErrBadRule)

	_, err = NewPredicate(`nonsense(`, "")
	assert.ErrorIs(t, err, ErrBadRule)
}
