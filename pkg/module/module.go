// Package module defines the course-module value type shared by the
// requirement-satisfaction engine. A module is an immutable (code, credits)
// pair; lists of modules are ordered and order is semantically significant
// (see the satisfier package).
package module

import "fmt"

// Module is a single taken course-module: a code like "CS2040S" and its
// modular-credit weight.
type Module struct {
	Code    string  `json:"code" yaml:"code"`
	Credits float64 `json:"credits" yaml:"credits"`
}

// String renders the module as "CODE(credits)".
func (m Module) String() string {
	return fmt.Sprintf("%s(%g)", m.Code, m.Credits)
}

// List is an ordered sequence of modules. The engine treats codes as unique
// within one evaluation but does not enforce uniqueness; duplicates are all
// eligible for matching.
type List []Module

// Credits returns the sum of credit weights over the list.
func (l List) Credits() float64 {
	var sum float64
	for _, m := range l {
		sum += m.Credits
	}
	return sum
}

// Codes returns the module codes in list order.
func (l List) Codes() []string {
	codes := make([]string, len(l))
	for i, m := range l {
		codes[i] = m.Code
	}
	return codes
}

// Partition splits the list by a parallel boolean mask: kept receives the
// modules whose mask entry is true, evicted the rest. Relative order is
// preserved on both sides. The mask must be exactly as long as the list.
func (l List) Partition(mask []bool) (kept, evicted List) {
	if len(mask) != len(l) {
		panic(fmt.Sprintf("module: partition mask length %d != list length %d", len(mask), len(l)))
	}
	for i, m := range l {
		if mask[i] {
			kept = append(kept, m)
		} else {
			evicted = append(evicted, m)
		}
	}
	return kept, evicted
}

// Minus returns the multiset difference l \ other: each occurrence in other
// cancels at most one occurrence in l. Order of the surviving modules follows l.
func (l List) Minus(other List) List {
	budget := make(map[Module]int, len(other))
	for _, m := range other {
		budget[m]++
	}
	var out List
	for _, m := range l {
		if budget[m] > 0 {
			budget[m]--
			continue
		}
		out = append(out, m)
	}
	return out
}

// Concat returns a new list holding l followed by others.
func Concat(lists ...List) List {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make(List, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
