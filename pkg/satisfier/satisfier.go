// Package satisfier implements the requirement-satisfaction interpreter.
//
// A Satisfier is a tree of four node kinds built fresh for every
// verification and discarded afterwards:
//
//   - assign leaves move modules from the remaining pool into the assigned
//     pool; a leaf that assigns nothing fails and leaves both pools intact;
//   - constraint leaves gate on the assigned pool without touching it;
//   - filter leaves evict assigned modules back into the remaining pool and
//     always succeed;
//   - branches run their children strictly left to right, each child seeing
//     the pools its predecessor left behind, and optionally reduce the child
//     results to an overall verdict. A failed branch reverts wholesale to its
//     pre-evaluation pools, so no partial effect leaks out.
//
// Evaluation is total over well-constructed trees: an unsatisfied node is
// normal data (Result.Satisfied=false plus a message), not an error.
package satisfier

import (
	"fmt"

	"github.com/modcheck/modcheck/pkg/module"
)

// Kind identifies the satisfier node variant.
type Kind int

const (
	// KindAssign moves matched modules from remaining into assigned.
	KindAssign Kind = iota + 1
	// KindConstraint gates on the assigned pool.
	KindConstraint
	// KindFilter evicts assigned modules back into remaining.
	KindFilter
	// KindBranch sequences child satisfiers.
	KindBranch
)

// AssignFunc inspects the remaining pool and marks, by parallel mask, the
// modules to assign. Infos are surfaced on the node result.
type AssignFunc func(remaining module.List) (mask []bool, infos []string, err error)

// ConstraintFunc reports whether the assigned pool satisfies the constraint.
type ConstraintFunc func(assigned module.List) (bool, error)

// FilterFunc marks, by parallel mask, the assigned modules to keep; the rest
// are evicted back into the remaining pool.
type FilterFunc func(assigned module.List) (keep []bool, err error)

// ReduceFunc folds child results into the branch verdict.
type ReduceFunc func(children []*Result) bool

// Satisfier is one node of a satisfier tree. Construct through NewAssign,
// NewConstraint, NewFilter, NewBranch, or the And/Or/Sequence combinators;
// the zero value is invalid.
type Satisfier struct {
	kind       Kind
	name       string
	message    string // reported when the node fails
	info       string
	assign     AssignFunc
	constraint ConstraintFunc
	filter     FilterFunc
	children   []*Satisfier
	reduce     ReduceFunc
}

// Kind returns the node variant.
func (s *Satisfier) Kind() Kind { return s.kind }

// Name returns the node's display name.
func (s *Satisfier) Name() string { return s.name }

// WithInfo attaches a human-readable note surfaced on the node's result.
func (s *Satisfier) WithInfo(info string) *Satisfier {
	s.info = info
	return s
}

// NewAssign builds an assign leaf. message is reported when nothing could be
// assigned.
func NewAssign(name string, fn AssignFunc, message string) *Satisfier {
	return &Satisfier{kind: KindAssign, name: name, assign: fn, message: message}
}

// NewConstraint builds a constraint leaf. message is reported on failure.
func NewConstraint(name string, fn ConstraintFunc, message string) *Satisfier {
	return &Satisfier{kind: KindConstraint, name: name, constraint: fn, message: message}
}

// NewFilter builds a filter leaf. Filters cannot fail, only shrink.
func NewFilter(name string, fn FilterFunc) *Satisfier {
	return &Satisfier{kind: KindFilter, name: name, filter: fn}
}

// NewBranch builds a branch over children. reduce may be nil, in which case
// the branch is a pure sequencer and always succeeds; message is reported
// when reduce rejects the child results.
func NewBranch(name string, children []*Satisfier, reduce ReduceFunc, message string) *Satisfier {
	return &Satisfier{kind: KindBranch, name: name, children: children, reduce: reduce, message: message}
}

// Sequence builds a reduce-less branch that keeps whatever state its
// children leave behind.
func Sequence(name string, children ...*Satisfier) *Satisfier {
	return NewBranch(name, children, nil, "")
}

// And builds a branch satisfied iff every child is satisfied.
func And(name, message string, children ...*Satisfier) *Satisfier {
	return NewBranch(name, children, func(results []*Result) bool {
		for _, r := range results {
			if !r.Satisfied {
				return false
			}
		}
		return true
	}, message)
}

// Or builds a branch satisfied iff at least one child is satisfied. Children
// still run sequentially, so later alternatives only see modules earlier
// ones left unconsumed.
func Or(name, message string, children ...*Satisfier) *Satisfier {
	return NewBranch(name, children, func(results []*Result) bool {
		for _, r := range results {
			if r.Satisfied {
				return true
			}
		}
		return false
	}, message)
}

// Result mirrors the satisfier tree shape and explains, per node, what was
// assigned, what remained, what the node added or removed, and whether it was
// satisfied. The caller always receives a complete tree, failing plans
// included.
type Result struct {
	Name      string       `json:"name"`
	Assigned  module.List  `json:"assigned,omitempty"`
	Remaining module.List  `json:"remaining,omitempty"`
	Added     module.List  `json:"added,omitempty"`
	Removed   module.List  `json:"removed,omitempty"`
	Satisfied bool         `json:"isSatisfied"`
	Message   string       `json:"message,omitempty"`
	Info      string       `json:"info,omitempty"`
	Infos     []string     `json:"infos,omitempty"`
	Children  []*Result    `json:"results,omitempty"`
}

// Evaluate interprets s against the given pools and returns the result tree.
// The input lists are never mutated. An error is only possible when a
// user-supplied node func fails (for example a CEL predicate runtime error);
// ordinary unsatisfied outcomes are carried on the Result.
func Evaluate(assigned, remaining module.List, s *Satisfier) (*Result, error) {
	switch s.kind {
	case KindAssign:
		return evalAssign(assigned, remaining, s)
	case KindConstraint:
		return evalConstraint(assigned, remaining, s)
	case KindFilter:
		return evalFilter(assigned, remaining, s)
	case KindBranch:
		return evalBranch(assigned, remaining, s)
	default:
		// Unreachable through the constructors.
		return nil, fmt.Errorf("satisfier: invalid node kind %d", s.kind)
	}
}

func evalAssign(assigned, remaining module.List, s *Satisfier) (*Result, error) {
	mask, infos, err := s.assign(remaining)
	if err != nil {
		return nil, fmt.Errorf("satisfier: assign %s: %w", s.name, err)
	}
	added, rest := remaining.Partition(mask)
	if len(added) == 0 {
		return &Result{
			Name:      s.name,
			Assigned:  assigned,
			Remaining: remaining,
			Satisfied: false,
			Message:   s.message,
			Info:      s.info,
		}, nil
	}
	return &Result{
		Name:      s.name,
		Assigned:  module.Concat(assigned, added),
		Remaining: rest,
		Added:     added,
		Satisfied: true,
		Info:      s.info,
		Infos:     infos,
	}, nil
}

func evalConstraint(assigned, remaining module.List, s *Satisfier) (*Result, error) {
	ok, err := s.constraint(assigned)
	if err != nil {
		return nil, fmt.Errorf("satisfier: constraint %s: %w", s.name, err)
	}
	res := &Result{
		Name:      s.name,
		Assigned:  assigned,
		Remaining: remaining,
		Satisfied: ok,
		Info:      s.info,
	}
	if !ok {
		res.Message = s.message
	}
	return res, nil
}

func evalFilter(assigned, remaining module.List, s *Satisfier) (*Result, error) {
	keep, err := s.filter(assigned)
	if err != nil {
		return nil, fmt.Errorf("satisfier: filter %s: %w", s.name, err)
	}
	kept, removed := assigned.Partition(keep)
	return &Result{
		Name:      s.name,
		Assigned:  kept,
		Remaining: module.Concat(remaining, removed),
		Removed:   removed,
		Satisfied: true,
		Info:      s.info,
	}, nil
}

func evalBranch(assigned, remaining module.List, s *Satisfier) (*Result, error) {
	curAssigned, curRemaining := assigned, remaining
	results := make([]*Result, 0, len(s.children))
	for _, child := range s.children {
		sub, err := Evaluate(curAssigned, curRemaining, child)
		if err != nil {
			return nil, err
		}
		results = append(results, sub)
		curAssigned, curRemaining = sub.Assigned, sub.Remaining
	}
	ok := true
	if s.reduce != nil {
		ok = s.reduce(results)
	}
	if !ok {
		return &Result{
			Name:      s.name,
			Assigned:  assigned,
			Remaining: remaining,
			Satisfied: false,
			Message:   s.message,
			Info:      s.info,
			Children:  results,
		}, nil
	}
	return &Result{
		Name:      s.name,
		Assigned:  curAssigned,
		Remaining: curRemaining,
		Added:     curAssigned.Minus(assigned),
		Removed:   assigned.Minus(curAssigned),
		Satisfied: true,
		Info:      s.info,
		Children:  results,
	}, nil
}
