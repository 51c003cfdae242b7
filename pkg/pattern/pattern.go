// Package pattern compiles the module-code glob grammar and parses credit
// inequalities. Both grammars are tiny and fixed:
//
//   - patterns are non-empty strings over {A-Z, 0-9, x, *}, where x matches
//     any single digit and * matches any (possibly empty) alphanumeric run;
//   - inequalities are ">=n" or "<=n" with a non-negative integer threshold.
//
// Malformed inputs are construction-time errors: they indicate a broken
// requirement document and must be fixed upstream, never during evaluation.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadPattern reports a pattern outside the ^[A-Z0-9x*]+$ grammar.
var ErrBadPattern = errors.New("pattern: malformed module-code pattern")

// ErrBadInequality reports an inequality outside the ^[<>]=\d+$ grammar.
var ErrBadInequality = errors.New("pattern: malformed inequality")

var (
	patternGrammar    = regexp.MustCompile(`^[A-Z0-9x*]+$`)
	inequalityGrammar = regexp.MustCompile(`^([<>])=(\d+)$`)
)

// Compile translates one or more module-code patterns into a single anchored
// regular expression; a code matches if it matches any of the patterns.
// Matching is exact and case-sensitive. Passing no patterns is a caller
// contract violation.
func Compile(patterns ...string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns given", ErrBadPattern)
	}
	alts := make([]string, len(patterns))
	for i, p := range patterns {
		if !patternGrammar.MatchString(p) {
			return nil, fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
		alt := strings.ReplaceAll(p, "x", "[0-9]")
		alt = strings.ReplaceAll(alt, "*", "[A-Z0-9]*")
		alts[i] = alt
	}
	re, err := regexp.Compile("^(" + strings.Join(alts, "|") + ")$")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	return re, nil
}

// Direction says which side of the threshold an inequality accepts.
type Direction int

const (
	// AtLeast accepts credit sums >= threshold.
	AtLeast Direction = iota + 1
	// AtMost accepts credit sums <= threshold.
	AtMost
)

func (d Direction) String() string {
	switch d {
	case AtLeast:
		return ">="
	case AtMost:
		return "<="
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Inequality is a parsed credit-sum constraint.
type Inequality struct {
	Direction Direction
	Threshold int
}

// ParseInequality parses ">=n" or "<=n".
func ParseInequality(s string) (Inequality, error) {
	m := inequalityGrammar.FindStringSubmatch(s)
	if m == nil {
		return Inequality{}, fmt.Errorf("%w: %q", ErrBadInequality, s)
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Inequality{}, fmt.Errorf("%w: %q: %v", ErrBadInequality, s, err)
	}
	dir := AtLeast
	if m[1] == "<" {
		dir = AtMost
	}
	return Inequality{Direction: dir, Threshold: n}, nil
}

func (q Inequality) String() string {
	return fmt.Sprintf("%s%d", q.Direction, q.Threshold)
}
