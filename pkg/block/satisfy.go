package block

import (
	"errors"
	"fmt"

	"github.com/modcheck/modcheck/pkg/pattern"
)

// ErrBadSatisfyRule reports an ill-shaped satisfy rule at construction time.
var ErrBadSatisfyRule = errors.New("block: ill-shaped satisfy rule")

// SatisfyKind identifies the satisfy-rule variant.
type SatisfyKind int

const (
	// SatisfyReference requires another block, by ID, to be satisfied by the
	// modules assigned here.
	SatisfyReference SatisfyKind = iota + 1
	// SatisfyCredits constrains the credit sum of the assigned modules.
	SatisfyCredits
	// SatisfyAnd requires every child rule to hold.
	SatisfyAnd
	// SatisfyOr requires at least one child rule to hold.
	SatisfyOr
)

// SatisfyRule is a compiled quantitative/structural rule. Construct through
// Reference, Credits, AndRules, and OrRules.
type SatisfyRule struct {
	kind    SatisfyKind
	ref     string
	credits pattern.Inequality
	rules   []*SatisfyRule
}

// Kind returns the rule variant.
func (r *SatisfyRule) Kind() SatisfyKind { return r.kind }

// Reference builds a block-reference rule.
func Reference(id string) (*SatisfyRule, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty block reference", ErrBadSatisfyRule)
	}
	return &SatisfyRule{kind: SatisfyReference, ref: id}, nil
}

// Credits builds a credit-sum rule from an inequality string such as ">=8".
func Credits(inequality string) (*SatisfyRule, error) {
	q, err := pattern.ParseInequality(inequality)
	if err != nil {
		return nil, err
	}
	return &SatisfyRule{kind: SatisfyCredits, credits: q}, nil
}

// AndRules builds a conjunction; at least one child is required.
func AndRules(rules ...*SatisfyRule) (*SatisfyRule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty and", ErrBadSatisfyRule)
	}
	return &SatisfyRule{kind: SatisfyAnd, rules: rules}, nil
}

// OrRules builds a disjunction; at least one child is required.
func OrRules(rules ...*SatisfyRule) (*SatisfyRule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty or", ErrBadSatisfyRule)
	}
	return &SatisfyRule{kind: SatisfyOr, rules: rules}, nil
}
