package redistribute

import "fmt"

// Tracker remembers the last settled set so that each single-item edit can
// be redistributed against it.
type Tracker struct {
	previous Set
	bounds   Bounds
}

// NewTracker starts tracking from initial.
func NewTracker(initial Set, bounds Bounds) *Tracker {
	return &Tracker{previous: initial.Clone(), bounds: bounds}
}

// Current returns a copy of the settled set.
func (t *Tracker) Current() Set {
	return t.previous.Clone()
}

// Reset replaces the settled set without redistributing.
func (t *Tracker) Reset(set Set) {
	t.previous = set.Clone()
}

// Set applies value to name, redistributes the others and records the
// outcome as the new settled set.
func (t *Tracker) Set(name string, value float64) (Result, error) {
	if _, ok := t.previous[name]; !ok {
		return Result{}, fmt.Errorf("%w: unknown item %q", ErrMismatchedSets, name)
	}
	current := t.previous.Clone()
	current[name] = value

	res, err := Redistribute(t.previous, current, t.bounds)
	if err != nil {
		return Result{}, err
	}
	t.previous = res.Set.Clone()
	return res, nil
}
