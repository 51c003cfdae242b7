package block

import (
	"errors"
	"fmt"

	"github.com/modcheck/modcheck/pkg/match"
	"github.com/modcheck/modcheck/pkg/module"
	"github.com/modcheck/modcheck/pkg/pattern"
	"github.com/modcheck/modcheck/pkg/satisfier"
)

// ErrReferenceCycle reports a cycle of block references discovered while
// compiling a satisfier tree. Blocks form a tree structurally, but assign and
// satisfy rules may reference arbitrary block IDs; a cycle among those
// references would otherwise recurse without bound.
var ErrReferenceCycle = errors.New("block: block reference cycle")

// BuildSatisfier resolves id relative to prefix in dir and compiles the
// block's satisfier tree: an assign stage pulling modules from referenced
// blocks, a match stage restricting to eligible modules, and a satisfy stage
// enforcing the block's own rules, in that fixed order. Only the satisfy
// stage can fail the block.
func BuildSatisfier(dir *Directory, prefix, id string) (*satisfier.Satisfier, error) {
	return buildSatisfier(dir, prefix, id, make(map[string]bool))
}

func buildSatisfier(dir *Directory, prefix, id string, path map[string]bool) (*satisfier.Satisfier, error) {
	canon, b, err := dir.Resolve(prefix, id)
	if err != nil {
		return nil, err
	}
	if path[canon] {
		return nil, fmt.Errorf("%w: at %q", ErrReferenceCycle, canon)
	}
	path[canon] = true
	defer delete(path, canon)

	var children []*satisfier.Satisfier
	satisfyIdx := -1

	if len(b.Assign) > 0 {
		stage, err := buildAssignStage(dir, canon, b.Assign, path)
		if err != nil {
			return nil, err
		}
		children = append(children, stage)
	}
	if b.Match != nil {
		children = append(children, buildMatchStage(canon, b.Match))
	}
	if b.Satisfy != nil {
		stage, err := buildSatisfyRule(dir, canon, b.Satisfy, path)
		if err != nil {
			return nil, err
		}
		satisfyIdx = len(children)
		children = append(children, stage)
	}

	// assign and match alone never fail the block; only an unsatisfied
	// satisfy stage does.
	idx := satisfyIdx
	reduce := func(results []*satisfier.Result) bool {
		if idx < 0 {
			return true
		}
		return results[idx].Satisfied
	}
	node := satisfier.NewBranch(canon, children, reduce,
		fmt.Sprintf("block %s is not satisfied", canon))
	if b.Info != "" {
		node.WithInfo(b.Info)
	}
	return node, nil
}

// buildAssignStage compiles one assign leaf per referenced block. Each leaf
// runs the referenced block's satisfier against the remaining pool purely to
// find out which modules that block would take, then relocates exactly those
// into this block's pool.
func buildAssignStage(dir *Directory, prefix string, refs []string, path map[string]bool) (*satisfier.Satisfier, error) {
	leaves := make([]*satisfier.Satisfier, 0, len(refs))
	for _, ref := range refs {
		sub, err := buildSatisfier(dir, prefix, ref, path)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, satisfier.NewAssign(
			"assign "+ref,
			func(remaining module.List) ([]bool, []string, error) {
				res, err := satisfier.Evaluate(nil, remaining, sub)
				if err != nil {
					return nil, nil, err
				}
				return membershipMask(remaining, res.Assigned), nil, nil
			},
			fmt.Sprintf("no modules assignable from %s", ref),
		))
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return satisfier.Sequence("assign", leaves...), nil
}

func buildMatchStage(prefix string, rule *match.Rule) *satisfier.Satisfier {
	return satisfier.NewAssign(
		"match",
		func(remaining module.List) ([]bool, []string, error) {
			out, err := match.Evaluate(remaining, rule)
			if err != nil {
				return nil, nil, err
			}
			return membershipMask(remaining, out.Matched), out.Infos, nil
		},
		fmt.Sprintf("no eligible modules for %s", prefix),
	)
}

func buildSatisfyRule(dir *Directory, prefix string, r *SatisfyRule, path map[string]bool) (*satisfier.Satisfier, error) {
	switch r.kind {
	case SatisfyReference:
		sub, err := buildSatisfier(dir, prefix, r.ref, path)
		if err != nil {
			return nil, err
		}
		return satisfier.NewConstraint(
			"satisfy "+r.ref,
			func(assigned module.List) (bool, error) {
				res, err := satisfier.Evaluate(nil, assigned, sub)
				if err != nil {
					return false, err
				}
				return res.Satisfied, nil
			},
			fmt.Sprintf("referenced block %s is not satisfied", r.ref),
		), nil

	case SatisfyCredits:
		q := r.credits
		switch q.Direction {
		case pattern.AtLeast:
			return satisfier.NewConstraint(
				fmt.Sprintf("mc %s", q),
				func(assigned module.List) (bool, error) {
					return assigned.Credits() >= float64(q.Threshold), nil
				},
				fmt.Sprintf("modules do not meet minimum MC requirement of %d", q.Threshold),
			), nil
		case pattern.AtMost:
			// Truncation, not re-optimization: walk in assignment order and
			// evict everything once the budget is reached.
			return satisfier.NewFilter(
				fmt.Sprintf("mc %s", q),
				func(assigned module.List) ([]bool, error) {
					keep := make([]bool, len(assigned))
					var sum float64
					for i, m := range assigned {
						if sum+m.Credits >= float64(q.Threshold) {
							break
						}
						keep[i] = true
						sum += m.Credits
					}
					return keep, nil
				},
			), nil
		default:
			return nil, fmt.Errorf("%w: inequality %v", ErrBadSatisfyRule, q)
		}

	case SatisfyAnd, SatisfyOr:
		children := make([]*satisfier.Satisfier, 0, len(r.rules))
		for _, sub := range r.rules {
			s, err := buildSatisfyRule(dir, prefix, sub, path)
			if err != nil {
				return nil, err
			}
			children = append(children, s)
		}
		if r.kind == SatisfyAnd {
			return satisfier.And("satisfy all",
				fmt.Sprintf("not all requirements of %s are satisfied", prefix),
				children...), nil
		}
		return satisfier.Or("satisfy any",
			fmt.Sprintf("no requirement alternative of %s is satisfied", prefix),
			children...), nil

	default:
		return nil, fmt.Errorf("%w: kind %d", ErrBadSatisfyRule, r.kind)
	}
}

// membershipMask marks, per position in pool, whether the module is present
// in taken. Duplicates are honored as a multiset: each occurrence in taken
// claims at most one position in pool.
func membershipMask(pool, taken module.List) []bool {
	budget := make(map[module.Module]int, len(taken))
	for _, m := range taken {
		budget[m]++
	}
	mask := make([]bool, len(pool))
	for i, m := range pool {
		if budget[m] > 0 {
			budget[m]--
			mask[i] = true
		}
	}
	return mask
}

// VerifyPlan checks whether modules satisfy the block registered under id:
// it compiles the block's satisfier and evaluates it with an empty assigned
// pool. The returned result tree is complete even when the plan fails;
// the error is non-nil only for construction-time problems (unknown id,
// reference cycle, rule runtime failure).
func VerifyPlan(modules module.List, dir *Directory, id string) (*satisfier.Result, error) {
	sat, err := BuildSatisfier(dir, "", id)
	if err != nil {
		return nil, err
	}
	return satisfier.Evaluate(nil, modules, sat)
}
