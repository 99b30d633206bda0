package action

import (
	"github.com/Rim-SeungJae/eternal-survival/internal/stat"
)

// ActorID identifies an actor registered with the scheduler.
type ActorID uint32

// Definition holds the tunables of one action an actor can perform.
// Range and health windows are inclusive on both ends.
type Definition struct {
	Name          string
	Cooldown      float64 // seconds, measured from the start of execution
	Priority      int
	MinRange      float64
	MaxRange      float64
	MinHealthFrac float64
	MaxHealthFrac float64
	Interruptible bool
}

// ActorState is what the actor's controller observes each tick.
type ActorState struct {
	DistanceToTarget float64
	HealthFraction   float64
	// TargetAlive is false when the actor currently has no living target.
	// Bodies use it to abort; eligibility does not look at it.
	TargetAlive bool
}

// NewActorState derives the health fraction from the current health and the
// actor's max-health stat. A non-positive max health yields 0.
func NewActorState(distance, health float64, maxHealth *stat.Stat) ActorState {
	frac := 0.0
	if maxHealth != nil {
		if m := maxHealth.Value(); m > 0 {
			frac = health / m
		}
	}
	return ActorState{
		DistanceToTarget: distance,
		HealthFraction:   frac,
		TargetAlive:      true,
	}
}

// InRange reports whether distance lies in [MinRange, MaxRange].
func (d Definition) InRange(distance float64) bool {
	return distance >= d.MinRange && distance <= d.MaxRange
}

// InHealthWindow reports whether frac lies in [MinHealthFrac, MaxHealthFrac].
func (d Definition) InHealthWindow(frac float64) bool {
	return frac >= d.MinHealthFrac && frac <= d.MaxHealthFrac
}
