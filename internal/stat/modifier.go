package stat

import "fmt"

// ModKind defines how a modifier contributes to a stat.
// The numeric order is also the composition order.
type ModKind int8

const (
	Flat           ModKind = iota // +N added to the base (e.g. +10 damage)
	Additive                      // percentage summed with other additive bonuses (0.2 = +20%)
	Multiplicative                // percentage applied as its own factor (0.5 = x1.5)
)

// String returns the kind name used in catalogs and logs.
func (k ModKind) String() string {
	switch k {
	case Flat:
		return "flat"
	case Additive:
		return "additive"
	case Multiplicative:
		return "multiplicative"
	default:
		return fmt.Sprintf("ModKind(%d)", int8(k))
	}
}

// ParseModKind converts a catalog name into a ModKind.
func ParseModKind(s string) (ModKind, error) {
	switch s {
	case "flat":
		return Flat, nil
	case "additive", "add":
		return Additive, nil
	case "multiplicative", "mul":
		return Multiplicative, nil
	default:
		return 0, fmt.Errorf("unknown modifier kind %q", s)
	}
}

// SourceKind classifies who applied a modifier. Diagnostic only.
type SourceKind uint8

const (
	SourceUnknown SourceKind = iota
	SourceEquipment
	SourceLevel
	SourceBuff
	SourceEffect
)

// Source is the identity of whatever applied a modifier: one equipped weapon,
// one buff instance, one level-up grant. Two sources are the same only if they
// are the same pointer; Kind and Name never take part in comparisons.
type Source struct {
	Kind SourceKind
	Name string
	ID   uint64
}

// NewSource allocates a fresh source identity.
func NewSource(kind SourceKind, name string) *Source {
	return &Source{Kind: kind, Name: name}
}

// String implements fmt.Stringer for logging.
func (s *Source) String() string {
	if s == nil {
		return "<nil>"
	}
	if s.ID != 0 {
		return fmt.Sprintf("%s#%d", s.Name, s.ID)
	}
	return s.Name
}

// Modifier is a single contribution to a stat. Immutable once created.
type Modifier struct {
	Value  float64
	Kind   ModKind
	Source *Source
}

// NewModifier is a convenience constructor.
func NewModifier(value float64, kind ModKind, src *Source) Modifier {
	return Modifier{Value: value, Kind: kind, Source: src}
}
