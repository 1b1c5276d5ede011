// Package redistribute keeps a set of bounded percentages summing to 100
// after a single item is edited. The other items absorb the change in
// proportion to their previous share and are clamped to their own bounds.
package redistribute

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ciceromayk/parametrico/pkg/mathutil"
)

var (
	// ErrMultipleChanges is returned when more than one item differs
	// between the previous and the current set.
	ErrMultipleChanges = errors.New("more than one percentage changed")

	// ErrMismatchedSets is returned when the two sets do not hold the same items.
	ErrMismatchedSets = errors.New("percentage sets hold different items")
)

// changeTolerance is how far two values may drift before an item counts as changed.
const changeTolerance = 1e-9

// Set maps an item name to its percentage.
type Set map[string]float64

// Range is the closed interval an item's percentage must stay in.
type Range struct {
	Min float64
	Max float64
}

// Bounds holds the range of every item. Items without an entry use DefaultRange.
type Bounds map[string]Range

// DefaultRange applies to items missing from Bounds.
var DefaultRange = Range{Min: 0, Max: 100}

// Result is the outcome of one redistribution.
type Result struct {
	Set           Set
	Changed       string
	Redistributed bool
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Sum returns the total of all percentages, summed in name order so the
// result does not depend on map iteration.
func Sum(s Set) float64 {
	total := 0.0
	for _, name := range sortedNames(s) {
		total += s[name]
	}
	return total
}

// Clamp limits v to r.
func Clamp(v float64, r Range) float64 {
	return mathutil.Clamp(v, r.Min, r.Max)
}

func (b Bounds) rangeOf(name string) Range {
	if r, ok := b[name]; ok {
		return r
	}
	return DefaultRange
}

// Redistribute compares previous and current, which must hold the same
// items and differ in at most one of them. The changed item keeps its new
// value; each other item moves by -delta weighted by its previous share of
// the others' total and is then clamped. When the others previously summed
// to zero they are left as they were. The total is not renormalized after
// clamping.
func Redistribute(previous, current Set, bounds Bounds) (Result, error) {
	if len(previous) != len(current) {
		return Result{}, fmt.Errorf("%w: %d previous items, %d current", ErrMismatchedSets, len(previous), len(current))
	}

	var changed []string
	for _, name := range sortedNames(current) {
		old, ok := previous[name]
		if !ok {
			return Result{}, fmt.Errorf("%w: %q has no previous value", ErrMismatchedSets, name)
		}
		if !mathutil.WithinTolerance(current[name], old, changeTolerance) {
			changed = append(changed, name)
		}
	}

	switch len(changed) {
	case 0:
		return Result{Set: current.Clone()}, nil
	case 1:
	default:
		return Result{}, fmt.Errorf("%w: %v", ErrMultipleChanges, changed)
	}

	name := changed[0]
	delta := current[name] - previous[name]

	totalOthers := 0.0
	for _, other := range sortedNames(previous) {
		if other != name {
			totalOthers += previous[other]
		}
	}

	out := make(Set, len(current))
	out[name] = current[name]
	for other, prev := range previous {
		if other == name {
			continue
		}
		if totalOthers > 0 {
			out[other] = Clamp(prev-delta*(prev/totalOthers), bounds.rangeOf(other))
		} else {
			out[other] = prev
		}
	}

	return Result{Set: out, Changed: name, Redistributed: true}, nil
}

func sortedNames(s Set) []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
