package stat

import "fmt"

// Attribute names one stat slot on an entity.
type Attribute uint8

const (
	MaxHealth Attribute = iota
	Damage
	Speed
	Cooldown
	Radius
	Area
	Duration
	ProjectileCount
	Armor

	AttributeCount
)

var attributeNames = [AttributeCount]string{
	MaxHealth:       "max_health",
	Damage:          "damage",
	Speed:           "speed",
	Cooldown:        "cooldown",
	Radius:          "radius",
	Area:            "area",
	Duration:        "duration",
	ProjectileCount: "projectile_count",
	Armor:           "armor",
}

// String returns the catalog name of the attribute.
func (a Attribute) String() string {
	if a >= AttributeCount {
		return fmt.Sprintf("Attribute(%d)", uint8(a))
	}
	return attributeNames[a]
}

// ParseAttribute converts a catalog name into an Attribute.
func ParseAttribute(s string) (Attribute, error) {
	for i, name := range attributeNames {
		if name == s {
			return Attribute(i), nil
		}
	}
	return 0, fmt.Errorf("unknown attribute %q", s)
}

// Bonus is one modifier destined for a specific attribute.
type Bonus struct {
	Attribute Attribute
	Value     float64
	Kind      ModKind
}

// Sheet holds every stat of one entity.
// Stats for attributes that were never seeded are created lazily with base 0.
type Sheet struct {
	stats [AttributeCount]*Stat
}

// NewSheet creates a sheet seeded with the given base values.
func NewSheet(bases map[Attribute]float64) *Sheet {
	sh := &Sheet{}
	for attr, base := range bases {
		if attr >= AttributeCount {
			continue
		}
		sh.stats[attr] = New(base)
	}
	return sh
}

// Stat returns the stat for attr, creating it if needed.
// Out-of-range attributes yield a detached zero stat.
func (sh *Sheet) Stat(attr Attribute) *Stat {
	if attr >= AttributeCount {
		return New(0)
	}
	if sh.stats[attr] == nil {
		sh.stats[attr] = New(0)
	}
	return sh.stats[attr]
}

// Value is shorthand for Stat(attr).Value().
func (sh *Sheet) Value(attr Attribute) float64 {
	return sh.Stat(attr).Value()
}

// Apply attaches all bonuses under one source. Re-applying the same source
// stacks; callers replacing an upgrade must RemoveSource first.
func (sh *Sheet) Apply(src *Source, bonuses []Bonus) {
	for _, b := range bonuses {
		if b.Attribute >= AttributeCount {
			continue
		}
		sh.Stat(b.Attribute).AddModifier(Modifier{Value: b.Value, Kind: b.Kind, Source: src})
	}
}

// Replace removes everything src contributed and applies bonuses in its place.
func (sh *Sheet) Replace(src *Source, bonuses []Bonus) {
	sh.RemoveSource(src)
	sh.Apply(src, bonuses)
}

// RemoveSource strips src from every stat and returns the number of
// modifiers removed.
func (sh *Sheet) RemoveSource(src *Source) int {
	removed := 0
	for _, st := range sh.stats {
		if st == nil {
			continue
		}
		removed += st.RemoveModifiersFromSource(src)
	}
	return removed
}

// Snapshot returns the current value of every seeded attribute.
func (sh *Sheet) Snapshot() map[Attribute]float64 {
	out := make(map[Attribute]float64, AttributeCount)
	for i, st := range sh.stats {
		if st == nil {
			continue
		}
		out[Attribute(i)] = st.Value()
	}
	return out
}
