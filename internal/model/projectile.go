package model

import (
	"github.com/jakecoffman/cp"
)

// Projectile is a pooled moving hitbox launched by a boss action.
// After launch it is owned by a spawner, not by the action that fired it.
type Projectile struct {
	active    bool
	destroyed bool

	owner  uint32
	pos    cp.Vector
	vel    cp.Vector
	damage float64
	radius float64
	ttl    float64
	hits   int
}

// NewProjectile creates an inert projectile. It is meant to be used as a pool
// factory.
func NewProjectile() *Projectile {
	return &Projectile{}
}

// Launch fires the projectile from pos along dir. dir need not be normalized.
func (p *Projectile) Launch(owner uint32, pos, dir cp.Vector, speed, damage, radius, ttl float64) {
	if dir.LengthSq() > 0 {
		dir = dir.Normalize()
	}
	p.active = true
	p.owner = owner
	p.pos = pos
	p.vel = dir.Mult(speed)
	p.damage = damage
	p.radius = radius
	p.ttl = ttl
	p.hits = 0
}

// Step moves the projectile and burns its lifetime. Returns false once
// expired or deactivated.
func (p *Projectile) Step(dt float64) bool {
	if !p.active {
		return false
	}
	p.pos = p.pos.Add(p.vel.Mult(dt))
	p.ttl -= dt
	return p.ttl > 0
}

// Collide checks target against the projectile and applies damage on
// contact. A projectile hits once and then goes inert.
func (p *Projectile) Collide(target *Actor) float64 {
	if !p.active || target.IsDead() {
		return 0
	}
	if p.pos.Distance(target.Position()) > p.radius {
		return 0
	}
	p.hits++
	p.active = false
	return target.TakeDamage(p.damage)
}

// Deactivate implements pool.Instance.
func (p *Projectile) Deactivate() {
	p.active = false
	p.vel = cp.Vector{}
	p.ttl = 0
}

// Detach implements pool.Detacher.
func (p *Projectile) Detach() {
	p.owner = 0
}

// Destroy implements pool.Destroyer.
func (p *Projectile) Destroy() {
	p.Deactivate()
	p.destroyed = true
}

func (p *Projectile) Active() bool        { return p.active }
func (p *Projectile) Destroyed() bool     { return p.destroyed }
func (p *Projectile) Owner() uint32       { return p.owner }
func (p *Projectile) Position() cp.Vector { return p.pos }
func (p *Projectile) Velocity() cp.Vector { return p.vel }
func (p *Projectile) Damage() float64     { return p.damage }
func (p *Projectile) Hits() int           { return p.hits }
