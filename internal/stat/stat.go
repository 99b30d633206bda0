// Package stat computes derived numeric attributes from a base value and an
// ordered set of modifiers.
//
// Composition order is fixed: flat bonuses first, then all additive
// percentages summed into one step, then each multiplicative percentage as
// its own factor in insertion order. An additive group is flushed before
// every multiplicative modifier and once more at the end.
//
// The engine never clamps and never fails: NaN or negative inputs simply
// propagate. Stats are not safe for concurrent use.
package stat

import "slices"

// Stat is one derived attribute owned by exactly one entity.
type Stat struct {
	base      float64
	modifiers []Modifier

	cached float64
	dirty  bool

	recomputes uint64
	listeners  []func(*Stat)
}

// New creates a stat with the given base value.
func New(base float64) *Stat {
	return &Stat{
		base:      base,
		modifiers: make([]Modifier, 0, 4),
		dirty:     true,
	}
}

// Base returns the current base value.
func (s *Stat) Base() float64 {
	return s.base
}

// SetBase replaces the base value. The stat is only marked dirty when the
// value actually changes.
func (s *Stat) SetBase(v float64) {
	if s.base == v {
		return
	}
	s.base = v
	s.markDirty()
}

// AddModifier appends m and keeps the sequence sorted by kind.
// Sorting is stable, so modifiers of one kind keep insertion order.
func (s *Stat) AddModifier(m Modifier) {
	s.modifiers = append(s.modifiers, m)
	slices.SortStableFunc(s.modifiers, func(a, b Modifier) int {
		return int(a.Kind) - int(b.Kind)
	})
	s.markDirty()
}

// RemoveModifiersFromSource drops every modifier applied by src and returns
// how many were removed. Removing an unknown source is a no-op.
func (s *Stat) RemoveModifiersFromSource(src *Source) int {
	before := len(s.modifiers)
	s.modifiers = slices.DeleteFunc(s.modifiers, func(m Modifier) bool {
		return m.Source == src
	})
	removed := before - len(s.modifiers)
	if removed > 0 {
		s.markDirty()
	}
	return removed
}

// Modifiers returns a copy of the sorted modifier sequence.
func (s *Stat) Modifiers() []Modifier {
	return slices.Clone(s.modifiers)
}

// Value returns the derived value, recomputing only when dirty.
func (s *Stat) Value() float64 {
	if !s.dirty {
		return s.cached
	}
	s.cached = Compose(s.base, s.modifiers)
	s.dirty = false
	s.recomputes++
	return s.cached
}

// Dirty reports whether the next Value call will recompute.
func (s *Stat) Dirty() bool {
	return s.dirty
}

// Recomputes returns how many composition passes have run.
func (s *Stat) Recomputes() uint64 {
	return s.recomputes
}

// OnChange subscribes fn to mutations. fn runs after the stat has been marked
// dirty, so calling Value inside it yields the new result.
func (s *Stat) OnChange(fn func(*Stat)) {
	if fn == nil {
		return
	}
	s.listeners = append(s.listeners, fn)
}

func (s *Stat) markDirty() {
	s.dirty = true
	for _, fn := range s.listeners {
		fn(s)
	}
}

// Compose folds modifiers (already sorted by kind) onto base.
func Compose(base float64, modifiers []Modifier) float64 {
	result := base
	pending := 0.0
	for _, m := range modifiers {
		switch m.Kind {
		case Flat:
			result += m.Value
		case Additive:
			pending += m.Value
		case Multiplicative:
			result *= 1 + pending
			pending = 0
			result *= 1 + m.Value
		}
	}
	return result * (1 + pending)
}
