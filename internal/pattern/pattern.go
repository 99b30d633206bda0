// Package pattern provides the concrete boss action bodies, registered by
// kind so the action catalog can refer to them by name.
//
// Every body resolves its boss from the run's actor id and its target as the
// nearest living target in the world. Instances spawned through the run are
// released when the action ends; projectiles and lingering effects are
// handed to the spawner.
package pattern

import (
	"errors"
	"fmt"

	"github.com/jakecoffman/cp"

	"github.com/Rim-SeungJae/eternal-survival/internal/action"
	"github.com/Rim-SeungJae/eternal-survival/internal/model"
	"github.com/Rim-SeungJae/eternal-survival/internal/pool"
	"github.com/Rim-SeungJae/eternal-survival/internal/spawn"
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
	"github.com/Rim-SeungJae/eternal-survival/internal/world"
)

// Pool tags used by the built-in patterns.
const (
	TagMark   = "mark"
	TagImpact = "impact"
	TagBolt   = "bolt"
	TagNova   = "nova"
)

// Kinds of the built-in patterns.
const (
	KindStrike  = "strike"
	KindBarrage = "barrage"
	KindNova    = "nova"
	KindScript  = "script"
)

// ScriptLoader returns the source of a named script.
type ScriptLoader func(name string) ([]byte, error)

// Deps are the collaborators pattern bodies need at run time.
type Deps struct {
	World   *world.World
	Spawner *spawn.Spawner
	Scripts ScriptLoader
}

// Register adds every built-in kind to reg.
func Register(reg *action.Registry, deps Deps) error {
	if deps.World == nil {
		return errors.New("registering patterns: nil world")
	}
	kinds := []struct {
		kind    string
		factory action.BodyFactory
	}{
		{KindStrike, deps.strike},
		{KindBarrage, deps.barrage},
		{KindNova, deps.nova},
		{KindScript, deps.script},
	}
	for _, k := range kinds {
		if err := reg.Register(k.kind, k.factory); err != nil {
			return fmt.Errorf("registering patterns: %w", err)
		}
	}
	return nil
}

// RegisterPools creates the arenas the built-in patterns spawn from.
// prewarm maps a tag to its initial size; missing tags start empty.
func RegisterPools(p *pool.Pool, prewarm map[string]int) error {
	factories := map[string]pool.Factory{
		TagMark:   func() pool.Instance { return model.NewEffect(TagMark) },
		TagImpact: func() pool.Instance { return model.NewEffect(TagImpact) },
		TagNova:   func() pool.Instance { return model.NewEffect(TagNova) },
		TagBolt:   func() pool.Instance { return model.NewProjectile() },
	}
	for _, tag := range []string{TagMark, TagImpact, TagNova, TagBolt} {
		if err := p.Register(tag, factories[tag], prewarm[tag]); err != nil {
			return fmt.Errorf("registering pattern pools: %w", err)
		}
	}
	return nil
}

// engage resolves the run's boss and its current target.
func (d Deps) engage(r *action.Run) (*model.Actor, *model.Actor, error) {
	boss, ok := d.World.Actor(uint32(r.Actor()))
	if !ok {
		return nil, nil, fmt.Errorf("%w: actor %d not in world", action.ErrAbort, r.Actor())
	}
	target := d.World.NearestTarget(boss)
	if target == nil {
		return boss, nil, fmt.Errorf("%w: no living target", action.ErrAbort)
	}
	return boss, target, nil
}

// damageArea hits every living target within radius of center.
func (d Deps) damageArea(center cp.Vector, radius, amount float64) (hits int, dealt float64) {
	if amount <= 0 {
		return 0, 0
	}
	d.World.ForEach(model.KindTarget, func(t *model.Actor) bool {
		if t.IsDead() || t.Position().Distance(center) > radius {
			return true
		}
		hits++
		dealt += t.TakeDamage(amount)
		return true
	})
	return hits, dealt
}

// placeEffect spawns an effect through the run and activates it. The run
// keeps it until the action ends unless it is passed to leave.
func placeEffect(r *action.Run, tag string, pos cp.Vector, radius, magnitude, ttl float64) (pool.Handle, *model.Effect, bool) {
	h, inst, ok := r.Spawn(tag)
	if !ok {
		return pool.Handle{}, nil, false
	}
	e, ok := inst.(*model.Effect)
	if !ok {
		return pool.Handle{}, nil, false
	}
	e.Activate(uint32(r.Actor()), pos, radius, magnitude, ttl)
	return h, e, true
}

// leave hands h to the spawner, which releases it on its own ttl. Without a
// spawner the run keeps it.
func (d Deps) leave(r *action.Run, h pool.Handle) {
	if d.Spawner != nil && r.Handoff(h) {
		d.Spawner.Adopt(h)
	}
}

// statOr reads attr from the run's sheet, falling back to def when the
// stat is not positive.
func statOr(r *action.Run, attr stat.Attribute, def float64) float64 {
	if v := r.Stat(attr); v > 0 {
		return v
	}
	return def
}

const scratchTarget = "target"

func rememberTarget(r *action.Run, pos cp.Vector) {
	r.Scratch()[scratchTarget] = pos
}

func recallTarget(r *action.Run) (cp.Vector, bool) {
	v, ok := r.Scratch()[scratchTarget].(cp.Vector)
	return v, ok
}
