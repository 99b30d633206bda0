package model

import (
	"github.com/jakecoffman/cp"
)

// Effect is a pooled area effect: a telegraph mark, an impact burst, a nova
// ring segment. It is inert until Activate is called.
type Effect struct {
	active    bool
	destroyed bool

	kind      string
	owner     uint32
	pos       cp.Vector
	radius    float64
	magnitude float64
	ttl       float64
}

// NewEffect creates an inert effect of the given kind. It is meant to be used
// as a pool factory.
func NewEffect(kind string) *Effect {
	return &Effect{kind: kind}
}

// Activate places the effect and makes it live for ttl seconds.
func (e *Effect) Activate(owner uint32, pos cp.Vector, radius, magnitude, ttl float64) {
	e.active = true
	e.owner = owner
	e.pos = pos
	e.radius = radius
	e.magnitude = magnitude
	e.ttl = ttl
}

// Deactivate implements pool.Instance.
func (e *Effect) Deactivate() {
	e.active = false
	e.radius = 0
	e.magnitude = 0
	e.ttl = 0
}

// Detach implements pool.Detacher. It drops the owner reference.
func (e *Effect) Detach() {
	e.owner = 0
	e.pos = cp.Vector{}
}

// Destroy implements pool.Destroyer.
func (e *Effect) Destroy() {
	e.Deactivate()
	e.destroyed = true
}

// Step advances the effect's lifetime. Returns false once expired.
func (e *Effect) Step(dt float64) bool {
	if !e.active {
		return false
	}
	e.ttl -= dt
	return e.ttl > 0
}

// Hits reports whether a point lies inside an active effect.
func (e *Effect) Hits(p cp.Vector) bool {
	return e.active && e.pos.Distance(p) <= e.radius
}

func (e *Effect) Kind() string        { return e.kind }
func (e *Effect) Active() bool        { return e.active }
func (e *Effect) Destroyed() bool     { return e.destroyed }
func (e *Effect) Owner() uint32       { return e.owner }
func (e *Effect) Position() cp.Vector { return e.pos }
func (e *Effect) Radius() float64     { return e.radius }
func (e *Effect) Magnitude() float64  { return e.magnitude }
func (e *Effect) TimeLeft() float64   { return e.ttl }
