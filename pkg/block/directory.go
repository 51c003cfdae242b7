package block

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Directory-level construction errors.
var (
	ErrDuplicateBlock = errors.New("block: duplicate block id")
	ErrBlockNotFound  = errors.New("block: no such block")
	ErrBadBlockID     = errors.New("block: malformed block id")
)

// Directory is the flattened, duplicate-checked registry of every block
// loaded for one requirement class. It is populated during the load phase and
// read-only during evaluation.
type Directory struct {
	blocks     map[string]*Block
	selectable []string
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{blocks: make(map[string]*Block)}
}

// AddBlock registers b under prefix and, recursively, every subblock under
// "prefix/name". Registering an already-present path fails with
// ErrDuplicateBlock; subblock names must not contain the "/" separator.
func (d *Directory) AddBlock(prefix string, b *Block) error {
	if prefix == "" {
		return fmt.Errorf("%w: empty prefix", ErrBadBlockID)
	}
	if _, dup := d.blocks[prefix]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateBlock, prefix)
	}
	d.blocks[prefix] = b
	if b.Selectable {
		d.selectable = append(d.selectable, prefix)
	}

	// Deterministic registration order so duplicate errors are stable.
	names := make([]string, 0, len(b.Subblocks))
	for name := range b.Subblocks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("%w: subblock key %q under %q", ErrBadBlockID, name, prefix)
		}
		if err := d.AddBlock(prefix+"/"+name, b.Subblocks[name]); err != nil {
			return err
		}
	}
	return nil
}

// Find resolves id relative to prefix with two-tier lookup: the
// prefix-relative path "prefix/id" wins, falling back to id as an absolute
// path. References inside a block therefore resolve within its own tree
// before reaching for unrelated top-level blocks.
func (d *Directory) Find(prefix, id string) (*Block, error) {
	_, b, err := d.Resolve(prefix, id)
	return b, err
}

// Resolve is Find plus the canonical path the id resolved to.
func (d *Directory) Resolve(prefix, id string) (string, *Block, error) {
	if id == "" {
		return "", nil, fmt.Errorf("%w: empty id", ErrBadBlockID)
	}
	joined := id
	if prefix != "" {
		joined = prefix + "/" + id
	}
	if b, ok := d.blocks[joined]; ok {
		return joined, b, nil
	}
	if joined != id {
		if b, ok := d.blocks[id]; ok {
			return id, b, nil
		}
		return "", nil, fmt.Errorf("%w: %q (also tried %q)", ErrBlockNotFound, joined, id)
	}
	return "", nil, fmt.Errorf("%w: %q", ErrBlockNotFound, id)
}

// Selectable returns the IDs of every registered block flagged selectable,
// sorted. Callers use it to offer a programme picklist; the evaluation core
// does not.
func (d *Directory) Selectable() []string {
	out := make([]string, len(d.selectable))
	copy(out, d.selectable)
	sort.Strings(out)
	return out
}

// Len reports how many blocks are registered.
func (d *Directory) Len() int { return len(d.blocks) }
