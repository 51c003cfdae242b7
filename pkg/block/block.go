// Package block holds the requirement hierarchy: Block nodes, the flattened
// Directory namespace, and the compiler that turns a block into a satisfier
// tree. VerifyPlan is the engine entry point.
package block

import (
	"github.com/modcheck/modcheck/pkg/match"
)

// Block is one node of a requirement hierarchy. A block has no identity of
// its own; it becomes addressable only when a Directory flattens it under a
// slash-separated path.
type Block struct {
	// Name is the human-readable title, e.g. "Computer Science Major".
	Name string
	// AcademicYear is the catalogue year this block was authored for.
	AcademicYear string
	// Assign lists block IDs whose matched modules are pulled into this
	// block's pool before its own match and satisfy rules run.
	Assign []string
	// Match restricts this block to eligible modules; nil means no
	// eligibility restriction.
	Match *match.Rule
	// Satisfy is this block's quantitative/structural rule; nil means the
	// block is satisfied whenever it is structurally valid.
	Satisfy *SatisfyRule
	// URL and Info are pass-through documentation for UIs.
	URL  string
	Info string
	// Selectable marks blocks offered to users as top-level programmes.
	Selectable bool
	// Subblocks are the named children; keys must not contain "/".
	Subblocks map[string]*Block
}
