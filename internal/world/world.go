// Package world tracks the actors of one simulation and allocates their ids.
package world

import (
	"fmt"
	"math"
	"slices"

	"github.com/Rim-SeungJae/eternal-survival/internal/model"
)

// World is the actor registry of one simulation.
// Iteration order is insertion order so ticks stay deterministic.
// Not safe for concurrent use; owned by the tick goroutine.
type World struct {
	actors map[uint32]*model.Actor
	order  []uint32
}

// New creates an empty world.
func New() *World {
	return &World{actors: make(map[uint32]*model.Actor, 16)}
}

// Add registers an actor. Returns error if the id is taken or lies outside
// the range of the actor's kind.
func (w *World) Add(a *model.Actor) error {
	if !idFitsKind(a.ID(), a.Kind()) {
		return fmt.Errorf("adding actor %d: id outside the %s range", a.ID(), a.Kind())
	}
	if _, ok := w.actors[a.ID()]; ok {
		return fmt.Errorf("adding actor %d: id already in use", a.ID())
	}
	w.actors[a.ID()] = a
	w.order = append(w.order, a.ID())
	return nil
}

// Remove drops an actor. Unknown ids are ignored.
func (w *World) Remove(id uint32) {
	if _, ok := w.actors[id]; !ok {
		return
	}
	delete(w.actors, id)
	w.order = slices.DeleteFunc(w.order, func(v uint32) bool { return v == id })
}

// Actor returns the actor by id.
func (w *World) Actor(id uint32) (*model.Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// Len returns the number of actors.
func (w *World) Len() int { return len(w.actors) }

// ForEach calls fn for every actor of kind in insertion order.
// Iteration stops when fn returns false.
func (w *World) ForEach(kind model.ActorKind, fn func(*model.Actor) bool) {
	for _, id := range w.order {
		a := w.actors[id]
		if a.Kind() != kind {
			continue
		}
		if !fn(a) {
			return
		}
	}
}

// NearestTarget returns the closest living target to from, or nil.
// Equal distances resolve to the earlier inserted target.
func (w *World) NearestTarget(from *model.Actor) *model.Actor {
	var best *model.Actor
	bestDist := math.Inf(1)
	w.ForEach(model.KindTarget, func(a *model.Actor) bool {
		if a.IsDead() {
			return true
		}
		if d := from.DistanceTo(a); d < bestDist {
			best, bestDist = a, d
		}
		return true
	})
	return best
}

func idFitsKind(id uint32, kind model.ActorKind) bool {
	switch kind {
	case model.KindBoss:
		return IsBossID(id)
	case model.KindTarget:
		return IsTargetID(id)
	default:
		return false
	}
}
