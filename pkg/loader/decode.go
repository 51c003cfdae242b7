package loader

import (
	"fmt"
	"sort"

	"github.com/modcheck/modcheck/pkg/block"
	"github.com/modcheck/modcheck/pkg/match"
)

// reserved keys of the requirement DSL; every other mapping key names a
// subblock.
var reservedKeys = map[string]bool{
	"name":         true,
	"ay":           true,
	"requires":     true,
	"assign":       true,
	"match":        true,
	"satisfy":      true,
	"url":          true,
	"info":         true,
	"isSelectable": true,
}

// decodeBlock converts a validated document mapping into a block tree. at is
// the path used in error messages ("" for the document root).
func decodeBlock(doc map[string]any, at string) (*block.Block, error) {
	b := &block.Block{}
	b.Name, _ = doc["name"].(string)
	b.AcademicYear, _ = doc["ay"].(string)
	b.URL, _ = doc["url"].(string)
	b.Info, _ = doc["info"].(string)
	b.Selectable, _ = doc["isSelectable"].(bool)

	if v, ok := doc["assign"]; ok {
		refs, err := decodeStrings(v)
		if err != nil {
			return nil, errAt(at, "assign", err)
		}
		b.Assign = refs
	}
	if v, ok := doc["match"]; ok {
		rule, err := decodeMatch(v)
		if err != nil {
			return nil, errAt(at, "match", err)
		}
		b.Match = rule
	}
	if v, ok := doc["satisfy"]; ok {
		rule, err := decodeSatisfy(v)
		if err != nil {
			return nil, errAt(at, "satisfy", err)
		}
		b.Satisfy = rule
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		sub, ok := doc[k].(map[string]any)
		if !ok {
			return nil, errAt(at, k, fmt.Errorf("%w: subblock is not a mapping", ErrInvalidDocument))
		}
		child, err := decodeBlock(sub, joinPath(at, k))
		if err != nil {
			return nil, err
		}
		if b.Subblocks == nil {
			b.Subblocks = make(map[string]*block.Block)
		}
		b.Subblocks[k] = child
	}
	return b, nil
}

// decodeMatch converts one match-rule value into its tagged form. An array
// is sugar for an implicit or.
func decodeMatch(v any) (*match.Rule, error) {
	switch val := v.(type) {
	case string:
		return match.NewPattern(val, nil, "")

	case []any:
		rules, err := decodeMatchList(val)
		if err != nil {
			return nil, err
		}
		if len(rules) == 1 {
			return rules[0], nil
		}
		return match.Or(rules...)

	case map[string]any:
		if list, ok := val["and"]; ok {
			rules, err := decodeMatchList(asList(list))
			if err != nil {
				return nil, err
			}
			return match.And(rules...)
		}
		if list, ok := val["or"]; ok {
			rules, err := decodeMatchList(asList(list))
			if err != nil {
				return nil, err
			}
			return match.Or(rules...)
		}
		info, _ := val["info"].(string)
		if expr, ok := val["cel"].(string); ok {
			return match.NewPredicate(expr, info)
		}
		if pat, ok := val["pattern"].(string); ok {
			var excludes []string
			if ex, present := val["exclude"]; present {
				var err error
				excludes, err = decodeStrings(ex)
				if err != nil {
					return nil, err
				}
			}
			return match.NewPattern(pat, excludes, info)
		}
		return nil, fmt.Errorf("%w: match rule has none of pattern/cel/and/or", ErrInvalidDocument)

	default:
		return nil, fmt.Errorf("%w: match rule of type %T", ErrInvalidDocument, v)
	}
}

func decodeMatchList(items []any) ([]*match.Rule, error) {
	rules := make([]*match.Rule, 0, len(items))
	for _, item := range items {
		r, err := decodeMatch(item)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// decodeSatisfy converts one satisfy-rule value into its tagged form. A bare
// string is a block reference; an array is sugar for an implicit and.
func decodeSatisfy(v any) (*block.SatisfyRule, error) {
	switch val := v.(type) {
	case string:
		return block.Reference(val)

	case []any:
		rules, err := decodeSatisfyList(val)
		if err != nil {
			return nil, err
		}
		if len(rules) == 1 {
			return rules[0], nil
		}
		return block.AndRules(rules...)

	case map[string]any:
		if mc, ok := val["mc"].(string); ok {
			return block.Credits(mc)
		}
		if list, ok := val["and"]; ok {
			rules, err := decodeSatisfyList(asList(list))
			if err != nil {
				return nil, err
			}
			return block.AndRules(rules...)
		}
		if list, ok := val["or"]; ok {
			rules, err := decodeSatisfyList(asList(list))
			if err != nil {
				return nil, err
			}
			return block.OrRules(rules...)
		}
		return nil, fmt.Errorf("%w: satisfy rule has none of mc/and/or", ErrInvalidDocument)

	default:
		return nil, fmt.Errorf("%w: satisfy rule of type %T", ErrInvalidDocument, v)
	}
}

func decodeSatisfyList(items []any) ([]*block.SatisfyRule, error) {
	rules := make([]*block.SatisfyRule, 0, len(items))
	for _, item := range items {
		r, err := decodeSatisfy(item)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// decodeStrings accepts a bare string or a list of strings.
func decodeStrings(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidDocument, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: expected string or string list, got %T", ErrInvalidDocument, v)
	}
}

func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return []any{v}
}

func joinPath(at, key string) string {
	if at == "" {
		return key
	}
	return at + "/" + key
}

func errAt(at, key string, err error) error {
	return fmt.Errorf("at %q: %w", joinPath(at, key), err)
}
