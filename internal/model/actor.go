package model

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// ActorKind distinguishes what an actor is in the simulation.
type ActorKind uint8

const (
	KindBoss ActorKind = iota
	KindTarget
)

func (k ActorKind) String() string {
	switch k {
	case KindBoss:
		return "boss"
	case KindTarget:
		return "target"
	default:
		return "unknown"
	}
}

// Actor is a living entity with a position, hit points and a stat sheet.
// Max health, speed and armor are read from the sheet on every use, so
// equipment changes apply immediately.
//
// Actors are owned by the tick goroutine and are not safe for concurrent use.
type Actor struct {
	id    uint32
	name  string
	kind  ActorKind
	pos   cp.Vector
	hp    float64
	sheet *stat.Sheet
}

// NewActor creates an actor at full health. A nil sheet gets an empty one.
func NewActor(id uint32, name string, kind ActorKind, pos cp.Vector, sheet *stat.Sheet) *Actor {
	if sheet == nil {
		sheet = stat.NewSheet(nil)
	}
	a := &Actor{
		id:    id,
		name:  name,
		kind:  kind,
		pos:   pos,
		sheet: sheet,
	}
	a.hp = a.MaxHP()
	return a
}

// ID returns the actor's identifier.
func (a *Actor) ID() uint32 { return a.id }

// Name returns the display name.
func (a *Actor) Name() string { return a.name }

// Kind returns the actor kind.
func (a *Actor) Kind() ActorKind { return a.kind }

// Sheet returns the actor's stat sheet.
func (a *Actor) Sheet() *stat.Sheet { return a.sheet }

// Position returns the current position.
func (a *Actor) Position() cp.Vector { return a.pos }

// SetPosition teleports the actor.
func (a *Actor) SetPosition(p cp.Vector) { a.pos = p }

// DistanceTo returns the distance between two actors.
func (a *Actor) DistanceTo(other *Actor) float64 {
	return a.pos.Distance(other.pos)
}

// MoveToward moves at most Speed*dt toward dest, stopping at stop distance
// from it. Returns true once within stop distance.
func (a *Actor) MoveToward(dest cp.Vector, stop, dt float64) bool {
	delta := dest.Sub(a.pos)
	dist := delta.Length()
	if dist <= stop {
		return true
	}
	step := a.sheet.Value(stat.Speed) * dt
	if step <= 0 {
		return false
	}
	if step >= dist-stop {
		step = dist - stop
	}
	a.pos = a.pos.Add(delta.Normalize().Mult(step))
	return dist-step <= stop
}

// MaxHP returns the current max-health stat value.
func (a *Actor) MaxHP() float64 {
	return a.sheet.Value(stat.MaxHealth)
}

// HP returns current hit points.
func (a *Actor) HP() float64 { return a.hp }

// SetHP sets hit points, clamped to [0, MaxHP].
func (a *Actor) SetHP(hp float64) {
	a.hp = math.Max(0, math.Min(hp, a.MaxHP()))
}

// HealthFraction returns HP / MaxHP, or 0 when MaxHP is not positive.
func (a *Actor) HealthFraction() float64 {
	m := a.MaxHP()
	if m <= 0 {
		return 0
	}
	return a.hp / m
}

// IsDead reports whether HP reached zero.
func (a *Actor) IsDead() bool { return a.hp <= 0 }

// TakeDamage applies raw damage reduced by armor and returns the damage
// actually dealt. Armor reduces damage by armor/(armor+100).
func (a *Actor) TakeDamage(raw float64) float64 {
	if raw <= 0 || a.IsDead() {
		return 0
	}
	dealt := raw
	if armor := a.sheet.Value(stat.Armor); armor > 0 {
		dealt = raw * (1 - armor/(armor+100))
	}
	dealt = math.Min(dealt, a.hp)
	a.hp -= dealt
	return dealt
}

// Heal restores HP up to MaxHP and returns the amount restored.
func (a *Actor) Heal(amount float64) float64 {
	if amount <= 0 || a.IsDead() {
		return 0
	}
	before := a.hp
	a.SetHP(a.hp + amount)
	return a.hp - before
}
