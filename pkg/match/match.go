// Package match evaluates eligibility rules over module lists. A rule is an
// explicit tagged union (pattern leaf, CEL predicate leaf, and, or) built once
// by the document loader; evaluation partitions a module list into the
// modules the rule matched and the complement, never mutating modules.
//
// Sibling rules under and/or are threaded strictly left to right: each child
// only sees the modules its predecessors left unmatched. This ordering is
// part of the observable contract; when two overlapping patterns both match a
// module, the earlier sibling wins.
package match

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/modcheck/modcheck/pkg/module"
	"github.com/modcheck/modcheck/pkg/pattern"
)

// ErrBadRule reports an ill-shaped rule at construction time.
var ErrBadRule = errors.New("match: ill-shaped rule")

// Kind identifies the rule variant.
type Kind int

const (
	// KindPattern matches module codes against a glob pattern, minus excludes.
	KindPattern Kind = iota + 1
	// KindPredicate matches modules against a compiled CEL expression.
	KindPredicate
	// KindAnd requires every child to match at least one module.
	KindAnd
	// KindOr requires at least one child to match at least one module.
	KindOr
)

// Rule is a compiled eligibility rule. Construct through NewPattern,
// NewPredicate, And, and Or; the zero value is invalid.
type Rule struct {
	kind     Kind
	re       *regexp.Regexp
	exclude  *regexp.Regexp // nil when the leaf has no exclusions
	prg      cel.Program
	expr     string
	info     string
	children []*Rule
}

// Kind returns the rule variant.
func (r *Rule) Kind() Kind { return r.kind }

// NewPattern compiles a pattern leaf. Modules match when their code matches
// pat and none of the excludes. info, when non-empty, is surfaced on results
// whenever the leaf matched at least one module.
func NewPattern(pat string, excludes []string, info string) (*Rule, error) {
	re, err := pattern.Compile(pat)
	if err != nil {
		return nil, err
	}
	r := &Rule{kind: KindPattern, re: re, info: info}
	if len(excludes) > 0 {
		ex, err := pattern.Compile(excludes...)
		if err != nil {
			return nil, err
		}
		r.exclude = ex
	}
	return r, nil
}

var (
	predicateEnvOnce sync.Once
	predicateEnv     *cel.Env
	predicateEnvErr  error
)

func celEnv() (*cel.Env, error) {
	predicateEnvOnce.Do(func() {
		predicateEnv, predicateEnvErr = cel.NewEnv(
			cel.Variable("code", cel.StringType),
			cel.Variable("credits", cel.DoubleType),
		)
	})
	return predicateEnv, predicateEnvErr
}

// NewPredicate compiles a CEL predicate leaf. The expression sees two
// variables, code (string) and credits (double), and must evaluate to bool.
func NewPredicate(expr, info string) (*Rule, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("match: cel environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: cel compile %q: %v", ErrBadRule, expr, issues.Err())
	}
	if ast.OutputType().String() != cel.BoolType.String() {
		return nil, fmt.Errorf("%w: cel expression %q is not boolean", ErrBadRule, expr)
	}
	prg, err := env.Program(ast,
		cel.InterruptCheckFrequency(100),
		cel.CostLimit(10000),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: cel program %q: %v", ErrBadRule, expr, err)
	}
	return &Rule{kind: KindPredicate, prg: prg, expr: expr, info: info}, nil
}

// And combines children; satisfied iff every child matched at least one
// module. At least one child is required.
func And(rules ...*Rule) (*Rule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty and", ErrBadRule)
	}
	return &Rule{kind: KindAnd, children: rules}, nil
}

// Or combines children; satisfied iff at least one child matched.
func Or(rules ...*Rule) (*Rule, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("%w: empty or", ErrBadRule)
	}
	return &Rule{kind: KindOr, children: rules}, nil
}

// Outcome is the result of evaluating a rule against a module list. Matched
// and Remaining always partition the input.
type Outcome struct {
	Matched   module.List
	Remaining module.List
	Ok        bool
	Infos     []string
}

// Evaluate partitions modules by r. The only evaluation-time error source is
// a CEL predicate whose runtime evaluation fails (for example a bad regex
// inside matches()); pattern-only rule trees never return an error.
func Evaluate(modules module.List, r *Rule) (Outcome, error) {
	switch r.kind {
	case KindPattern:
		return evalLeaf(modules, r, func(m module.Module) (bool, error) {
			if !r.re.MatchString(m.Code) {
				return false, nil
			}
			if r.exclude != nil && r.exclude.MatchString(m.Code) {
				return false, nil
			}
			return true, nil
		})
	case KindPredicate:
		return evalLeaf(modules, r, func(m module.Module) (bool, error) {
			out, _, err := r.prg.Eval(map[string]any{
				"code":    m.Code,
				"credits": m.Credits,
			})
			if err != nil {
				return false, fmt.Errorf("match: cel eval %q on %s: %w", r.expr, m.Code, err)
			}
			ok, isBool := out.Value().(bool)
			if !isBool {
				return false, fmt.Errorf("match: cel eval %q on %s: result not bool", r.expr, m.Code)
			}
			return ok, nil
		})
	case KindAnd, KindOr:
		return evalBranch(modules, r)
	default:
		return Outcome{}, fmt.Errorf("%w: kind %d", ErrBadRule, r.kind)
	}
}

func evalLeaf(modules module.List, r *Rule, accept func(module.Module) (bool, error)) (Outcome, error) {
	var out Outcome
	for _, m := range modules {
		ok, err := accept(m)
		if err != nil {
			return Outcome{}, err
		}
		if ok {
			out.Matched = append(out.Matched, m)
		} else {
			out.Remaining = append(out.Remaining, m)
		}
	}
	out.Ok = len(out.Matched) > 0
	if out.Ok && r.info != "" {
		out.Infos = []string{r.info}
	}
	return out, nil
}

func evalBranch(modules module.List, r *Rule) (Outcome, error) {
	cur := modules
	var matched module.List
	var infos []string
	anyOk := true
	if r.kind == KindOr {
		anyOk = false
	}
	for _, child := range r.children {
		sub, err := Evaluate(cur, child)
		if err != nil {
			return Outcome{}, err
		}
		switch r.kind {
		case KindAnd:
			if !sub.Ok {
				// A failed conjunction contributes nothing.
				return Outcome{Remaining: modules, Ok: false}, nil
			}
		case KindOr:
			anyOk = anyOk || sub.Ok
		}
		matched = append(matched, sub.Matched...)
		infos = append(infos, sub.Infos...)
		cur = sub.Remaining
	}
	if !anyOk {
		return Outcome{Remaining: modules, Ok: false}, nil
	}
	return Outcome{Matched: matched, Remaining: cur, Ok: true, Infos: infos}, nil
}
